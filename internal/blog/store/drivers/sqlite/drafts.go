package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/blog/internal/blog/domain"
)

type draftsRepo struct {
	db dbtx
}

const draftColumns = `id, username, title, body, link, created_at, updated_at`

func scanDraft(row interface{ Scan(...any) error }) (domain.Draft, error) {
	var d domain.Draft
	err := row.Scan(&d.ID, &d.Username, &d.Title, &d.Body, &d.Link, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

func (r *draftsRepo) GetDraftByID(ctx context.Context, id string) (domain.Draft, error) {
	d, err := scanDraft(r.db.QueryRowContext(ctx,
		`SELECT `+draftColumns+` FROM drafts WHERE id = ?`, id))
	if err != nil {
		return domain.Draft{}, mapNotFound(err)
	}
	return d, nil
}

func (r *draftsRepo) ListDraftsByUsername(ctx context.Context, username string) ([]domain.Draft, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+draftColumns+` FROM drafts WHERE username = ? ORDER BY created_at DESC, id DESC`,
		username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	drafts := make([]domain.Draft, 0)
	for rows.Next() {
		d, err := scanDraft(rows)
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, d)
	}
	return drafts, rows.Err()
}

func (r *draftsRepo) CreateDraft(ctx context.Context, d domain.Draft) error {
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	if d.UpdatedAt.IsZero() {
		d.UpdatedAt = d.CreatedAt
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO drafts (`+draftColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Username, d.Title, d.Body, d.Link, d.CreatedAt, d.UpdatedAt,
	)
	return mapConstraint(err)
}

func (r *draftsRepo) UpdateDraft(ctx context.Context, id, title, body string, at time.Time) error {
	return expectAffected(r.db.ExecContext(ctx,
		`UPDATE drafts SET title = ?, body = ?, updated_at = ? WHERE id = ?`,
		title, body, at.UTC(), id,
	))
}

func (r *draftsRepo) DeleteDraft(ctx context.Context, id string) error {
	return expectAffected(r.db.ExecContext(ctx, `DELETE FROM drafts WHERE id = ?`, id))
}

func (r *draftsRepo) DraftOwner(ctx context.Context, id string) (string, error) {
	var owner string
	if err := r.db.QueryRowContext(ctx,
		`SELECT username FROM drafts WHERE id = ?`, id).Scan(&owner); err != nil {
		return "", mapNotFound(err)
	}
	return owner, nil
}
