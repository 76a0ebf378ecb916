package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"eventease/internal/domain"
)

const userColumns = `id, email, password_hash, salt, name, created_at, updated_at`

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) domain.UserRepository {
	return &userRepository{DB: db}
}

// Create inserts the user and sets its generated ID. A taken email maps to ErrDuplicateEmail.
func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO users (email, password_hash, salt, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		u.Email, u.PasswordHash, u.Salt, u.Name, u.CreatedAt, u.UpdatedAt,
	).Scan(&u.ID)
	switch {
	case hasCode(err, codeUniqueViolation):
		return domain.ErrDuplicateEmail
	case err != nil:
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *userRepository) getOne(ctx context.Context, query, arg string) (*domain.User, error) {
	var u domain.User
	err := r.DB.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Salt, &u.Name, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// AssignRole grants a role; granting it twice is a no-op.
func (r *userRepository) AssignRole(ctx context.Context, userID, roleID string) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO user_roles (user_id, role_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, role_id) DO NOTHING`, userID, roleID)
	if hasCode(err, codeForeignKeyViolation) {
		entity := referencedEntity(err)
		if entity == "" {
			entity = "role"
		}
		return &domain.InvalidReferenceError{Entity: entity, ID: userID + "/" + roleID}
	}
	if err != nil {
		return fmt.Errorf("assign role: %w", err)
	}
	return nil
}
