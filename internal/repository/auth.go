// Package repository provides persistence for users and their tasks, backed
// either by PostgreSQL or by process memory.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atinyakov/GophTasks/internal/models"
)

// PostgresUserRepository stores accounts in a PostgreSQL database.
type PostgresUserRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresUserRepository creates a PostgresUserRepository with the given database connection.
func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{DB: db}
}

// CreateUser inserts a new account and returns it with its assigned id.
// If the username is taken, the ON CONFLICT clause suppresses the insert and
// ErrUserExists is returned.
func (r *PostgresUserRepository) CreateUser(ctx context.Context, username string, passwordHash []byte) (models.User, error) {
	u := models.User{Username: username, PasswordHash: passwordHash}
	err := r.DB.QueryRowContext(
		ctx,
		`INSERT INTO users (username, password_hash) VALUES ($1, $2) ON CONFLICT (username) DO NOTHING RETURNING id`,
		username, passwordHash,
	).Scan(&u.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserExists
	}
	if err != nil {
		return models.User{}, fmt.Errorf("CreateUser: %w", err)
	}
	return u, nil
}

// GetUserByUsername loads an account by its login name.
func (r *PostgresUserRepository) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	var u models.User
	err := r.DB.QueryRowContext(
		ctx,
		`SELECT id, username, password_hash FROM users WHERE username = $1`,
		username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("GetUserByUsername: %w", err)
	}
	return u, nil
}
