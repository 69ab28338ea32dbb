package datastore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/coreybb/todo-api/models"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, full_name, email, password_hash, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.FullName, user.Email, user.PasswordHash,
		user.IsActive, toMillis(user.CreatedAt), toMillis(user.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// GetUserByID retrieves a user by their ID. Returns sql.ErrNoRows (wrapped)
// when no such user exists.
func (r *UserRepository) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	query := `
		SELECT id, full_name, email, password_hash, is_active, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by their login identifier. Returns
// sql.ErrNoRows (wrapped) when the email is not registered.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, full_name, email, password_hash, is_active, created_at, updated_at
		FROM users
		WHERE email = $1
	`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

// UpdateProfile writes the mutable profile fields.
func (r *UserRepository) UpdateProfile(ctx context.Context, userID, fullName, email string, updatedAt time.Time) error {
	query := `
		UPDATE users
		SET full_name = $1, email = $2, updated_at = $3
		WHERE id = $4
	`
	result, err := r.db.ExecContext(ctx, query, fullName, email, toMillis(updatedAt), userID)
	if err != nil {
		return fmt.Errorf("failed to update user profile: %w", err)
	}
	return requireRowAffected(result, "update user profile")
}

// UpdatePassword replaces the stored password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, userID, passwordHash string, updatedAt time.Time) error {
	query := `
		UPDATE users
		SET password_hash = $1, updated_at = $2
		WHERE id = $3
	`
	result, err := r.db.ExecContext(ctx, query, passwordHash, toMillis(updatedAt), userID)
	if err != nil {
		return fmt.Errorf("failed to update user password: %w", err)
	}
	return requireRowAffected(result, "update user password")
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanUser is the single row-to-entity mapping for the users table.
func scanUser(row rowScanner) (*models.User, error) {
	var user models.User
	var createdAt, updatedAt int64
	err := row.Scan(
		&user.ID, &user.FullName, &user.Email, &user.PasswordHash,
		&user.IsActive, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.CreatedAt = fromMillis(createdAt)
	user.UpdatedAt = fromMillis(updatedAt)
	return &user, nil
}

// requireRowAffected converts a zero-row write into sql.ErrNoRows so callers
// can treat missing rows uniformly across reads and writes.
func requireRowAffected(result sql.Result, op string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows for %s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, sql.ErrNoRows)
	}
	return nil
}
