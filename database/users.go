package database

import (
	"context"
	"database/sql"

	"github.com/Yuki-gilty/drone-manager/models"
)

// CreateUser inserts a user. A taken username or email yields ErrDuplicate.
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	ts := now()
	user.CreatedAt = ts
	var email sql.NullString
	if user.Email != "" {
		email = sql.NullString{String: user.Email, Valid: true}
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, username, email, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, user.ID, user.Username, email, user.PasswordHash, ts, ts)
	return mapError(err)
}

// GetUserByUsername returns nil when no such user exists.
func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getUser(ctx, "username = ?", username)
}

func (r *Repository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return r.getUser(ctx, "id = ?", id)
}

func (r *Repository) getUser(ctx context.Context, where string, arg any) (*models.User, error) {
	var user models.User
	var email sql.NullString
	err := r.db.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash, created_at
		FROM users WHERE `+where, arg).Scan(
		&user.ID, &user.Username, &email, &user.PasswordHash, &user.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	user.Email = email.String
	return &user, nil
}
