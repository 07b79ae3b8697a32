package storage

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"fsm-backend/internal/models"
)

// GetUserByEmail returns (nil, nil) when no user exists; errors mean the
// store itself failed.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, name, email, password_hash, role, is_active, organization, created_at
		FROM users
		WHERE email = $1
	`

	var user models.User
	if err := s.db.GetContext(ctx, &user, query, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return &user, nil
}

// CreateUser inserts the record and fills in its generated fields. A
// duplicate email surfaces as ErrEmailTaken via the unique index.
func (s *Storage) CreateUser(ctx context.Context, user *models.User) error {
	user.ID = uuid.NewString()

	query := `
		INSERT INTO users (id, name, email, password_hash, role, is_active, organization)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.IsActive,
		user.Organization,
	).Scan(&user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		return err
	}

	return nil
}
