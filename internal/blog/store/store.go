package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/blog/internal/blog/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Drivers implement it and expose
// one sub-repository per aggregate so transactions cannot be nested by
// accident.
type Store interface {
	Users() Users
	Drafts() Drafts

	ApplyMigrations() error

	// WithTx runs fn in a read/write transaction, committing when fn
	// returns nil and rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transaction scoped view of the repositories.
type Tx interface {
	Users() Users
	Drafts() Drafts
}

type Users interface {
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// CreateUser inserts u. A taken username yields ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateProfile replaces the profile fields and sets updated_at to at.
	UpdateProfile(ctx context.Context, username string, p domain.Profile, at time.Time) error

	IsEmpty(ctx context.Context) (bool, error)
}

type Drafts interface {
	GetDraftByID(ctx context.Context, id string) (domain.Draft, error)

	// ListDraftsByUsername returns the user's drafts, newest first.
	ListDraftsByUsername(ctx context.Context, username string) ([]domain.Draft, error)

	CreateDraft(ctx context.Context, d domain.Draft) error

	// UpdateDraft rewrites title and body and sets updated_at to at. A
	// missing id yields ErrNotFound.
	UpdateDraft(ctx context.Context, id, title, body string, at time.Time) error

	// DeleteDraft removes the draft. A missing id yields ErrNotFound.
	DeleteDraft(ctx context.Context, id string) error

	// DraftOwner returns the username owning the draft.
	DraftOwner(ctx context.Context, id string) (string, error)
}
