package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/umputun/feedkeeper/pkg/domain"
)

// UserRepository handles user accounts
type UserRepository struct {
	db sqlx.ExtContext
}

type userSQL struct {
	Username     string `db:"username"`
	PasswordHash string `db:"password_hash"`
	CreatedAt    int64  `db:"created_at"`
}

// NewUserRepository creates a new user repository
func NewUserRepository(db sqlx.ExtContext) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts user, taken username is reported as domain.ErrUserExists
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	query := r.db.Rebind("INSERT INTO users (username, password_hash, created_at) VALUES (?, ?, ?)")
	if _, err := r.db.ExecContext(ctx, query, user.Username, user.PasswordHash, toUnix(user.CreatedAt)); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create user %s: %w", user.Username, domain.ErrUserExists)
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// Get retrieves user by username
func (r *UserRepository) Get(ctx context.Context, username string) (*domain.User, error) {
	var u userSQL
	query := r.db.Rebind("SELECT username, password_hash, created_at FROM users WHERE username = ?")
	err := sqlx.GetContext(ctx, r.db, &u, query, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", username, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &domain.User{Username: u.Username, PasswordHash: u.PasswordHash, CreatedAt: fromUnix(u.CreatedAt)}, nil
}

// Delete removes user, subscriptions and read markers cascade
func (r *UserRepository) Delete(ctx context.Context, username string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM users WHERE username = ?"), username)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return requireAffected(res, "user "+username)
}
