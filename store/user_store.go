package store

import (
	"context"
	"database/sql"
	"fmt"

	"velocars/api/models"

	"go.uber.org/zap"
)

type UserStore struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewUserStore(db *sql.DB, logger *zap.Logger) *UserStore {
	return &UserStore{db: db, logger: logger}
}

var ErrUserNotFound = fmt.Errorf("user not found")
var ErrUserExists = fmt.Errorf("user already exists")

// CreateUser inserts a new account. New signups are customers; admins are
// promoted out of band.
func (s *UserStore) CreateUser(ctx context.Context, email, name string, hashedPassword []byte) (*models.User, error) {
	user := &models.User{}
	query := `
		INSERT INTO users (email, name, role, hashed_password)
		VALUES ($1, $2, 'customer', $3)
		RETURNING id, email, name, role, created_at, updated_at;
	`
	err := s.db.QueryRowContext(ctx, query, email, name, hashedPassword).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if err.Error() == `pq: duplicate key value violates unique constraint "users_email_key"` ||
			err.Error() == `pq: duplicate key value violates unique constraint "idx_users_email"` {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user created", zap.Int("id", user.ID), zap.String("email", user.Email))
	return user, nil
}

func (s *UserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, email, name, role, hashed_password, created_at, updated_at
		FROM users
		WHERE email = $1;
	`
	err := s.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.Role,
		&user.HashedPassword,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}
