package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/blog/internal/blog/domain"
)

type usersRepo struct {
	db dbtx
}

const userColumns = `id, username, password_hash, role, totp_secret,
	name, bio, email, telegram, instagram, twitter, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (domain.User, error) {
	var u domain.User
	var role string
	err := row.Scan(
		&u.ID, &u.Username, &u.PasswordHash, &role, &u.TOTPSecret,
		&u.Profile.Name, &u.Profile.Bio, &u.Profile.Email,
		&u.Profile.Telegram, &u.Profile.Instagram, &u.Profile.Twitter,
		&u.CreatedAt, &u.UpdatedAt,
	)
	u.Role = domain.Role(role)
	return u, err
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username)

	u, err := scanUser(row)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = u.CreatedAt
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.PasswordHash, string(u.Role), u.TOTPSecret,
		u.Profile.Name, u.Profile.Bio, u.Profile.Email,
		u.Profile.Telegram, u.Profile.Instagram, u.Profile.Twitter,
		u.CreatedAt, u.UpdatedAt,
	)
	return mapConstraint(err)
}

func (r *usersRepo) UpdateProfile(ctx context.Context, username string, p domain.Profile, at time.Time) error {
	return expectAffected(r.db.ExecContext(ctx, `
		UPDATE users
		SET name = ?, bio = ?, email = ?, telegram = ?, instagram = ?, twitter = ?, updated_at = ?
		WHERE username = ?`,
		p.Name, p.Bio, p.Email, p.Telegram, p.Instagram, p.Twitter, at.UTC(), username,
	))
}

func (r *usersRepo) IsEmpty(ctx context.Context) (bool, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return false, err
	}
	return count == 0, nil
}
