package sqlite

import (
	"database/sql"

	"github.com/aussiebroadwan/blog/internal/blog/store"
)

type txStore struct {
	tx *sql.Tx
}

func (t *txStore) Users() store.Users   { return &usersRepo{db: t.tx} }
func (t *txStore) Drafts() store.Drafts { return &draftsRepo{db: t.tx} }
