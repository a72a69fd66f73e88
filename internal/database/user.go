// internal/database/user.go
package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrUserNotFound = errors.New("user not found")

// UserStore is a read-only view of the account table. Only the username is read.
type UserStore struct {
	pool *pgxpool.Pool
}

func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

// DisplayName returns the stored username for id.
func (s *UserStore) DisplayName(ctx context.Context, id uuid.UUID) (string, error) {
	var username string
	q := `SELECT username FROM users WHERE id=$1`
	err := s.pool.QueryRow(ctx, q, id).Scan(&username)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up user %s: %w", id, err)
	}
	return username, nil
}
