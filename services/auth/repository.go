package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type CredentialRepository interface {
	// FindCredentials returns sql.ErrNoRows wrapped when username is unknown.
	FindCredentials(ctx context.Context, username string) (*Credentials, error)
}

// SQLCredentialRepository reads credentials through database/sql with the lib/pq driver.
type SQLCredentialRepository struct {
	db *sql.DB
}

func NewCredentialRepository(db *sql.DB) *SQLCredentialRepository {
	return &SQLCredentialRepository{db: db}
}

var errUnknownUser = fmt.Errorf("unknown user: %w", sql.ErrNoRows)

func (r *SQLCredentialRepository) FindCredentials(ctx context.Context, username string) (*Credentials, error) {
	var c Credentials
	err := r.db.QueryRowContext(ctx, `
		SELECT username, password_hash, role
		FROM customers
		WHERE username = $1
	`, username).Scan(&c.Username, &c.PasswordHash, &c.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errUnknownUser
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query credentials: %w", err)
	}
	return &c, nil
}
