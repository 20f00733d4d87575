package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrUserNotFound is returned when no account exists for a username.
var ErrUserNotFound = errors.New("user not found")

type pgUserStore struct {
	pool *pgxpool.Pool
}

// NewUserStore constructs a UserStore backed by PostgreSQL.
func NewUserStore(pool *pgxpool.Pool) UserStore {
	return &pgUserStore{pool: pool}
}

func (s *pgUserStore) GetByUsername(ctx context.Context, username string) (*User, error) {
	u := &User{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, username, password_hash, created_at
		FROM users
		WHERE lower(username) = lower($1)
		LIMIT 1`,
		username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("look up user %q: %w", username, err)
	}
	return u, nil
}

func (s *pgUserStore) Create(ctx context.Context, username, passwordHash string) (*User, error) {
	u := &User{ID: uuid.NewString(), Username: username, PasswordHash: passwordHash}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO users (id, username, password_hash)
		VALUES ($1, $2, $3)
		RETURNING created_at`,
		u.ID, u.Username, u.PasswordHash,
	).Scan(&u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create user %q: %w", username, err)
	}
	return u, nil
}
