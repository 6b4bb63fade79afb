package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/tgienger/taskdeck/internal/models"
)

const userColumns = "id, username, email, first_name, last_name, bio, avatar, created_at"

// CreateUser stores a new account with a bcrypt hash of password. It returns
// false when the username is taken.
func (db *DB) CreateUser(ctx context.Context, u models.User, password string) (bool, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	result, err := db.ExecContext(ctx, `
		INSERT INTO users (id, username, email, password_hash, first_name, last_name, bio, avatar, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(username) DO NOTHING
	`, u.ID, u.Username, u.Email, string(hash), u.FirstName, u.LastName, u.Bio, u.Avatar, u.CreatedAt)
	if err != nil {
		return false, err
	}
	return affected(result)
}

// Authenticate returns the user when username and password match, or nil
func (db *DB) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	var (
		id   string
		hash string
	)
	err := db.QueryRowContext(ctx, "SELECT id, password_hash FROM users WHERE username = ?", username).Scan(&id, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, nil
	}
	return db.GetUser(ctx, id)
}

// GetUser retrieves a user by ID. The password hash is never loaded.
func (db *DB) GetUser(ctx context.Context, id string) (*models.User, error) {
	u := &models.User{}
	err := db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id).
		Scan(&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.Bio, &u.Avatar, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateUser applies a partial update. It returns false when the id is unknown.
func (db *DB) UpdateUser(ctx context.Context, id string, patch models.UserPatch) (bool, error) {
	u, err := db.GetUser(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	patch.Apply(u)
	result, err := db.ExecContext(ctx, `
		UPDATE users SET email = ?, first_name = ?, last_name = ?, bio = ?, avatar = ?
		WHERE id = ?
	`, u.Email, u.FirstName, u.LastName, u.Bio, u.Avatar, id)
	if err != nil {
		return false, err
	}
	return affected(result)
}
