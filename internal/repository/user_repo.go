package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/plaxtilineas/catalog_api/internal/models"
)

const userColumns = `id, username, email, password_hash, role, is_active, created_at, updated_at`

// UserRepository handles data access for catalog users.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetActiveByEmail returns the active user with email, or nil when none exists.
func (r *UserRepository) GetActiveByEmail(ctx context.Context, email string) (*models.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE email = $1 AND is_active = TRUE`
	return r.getOne(ctx, q, email)
}

// GetActiveByID returns the active user with id, or nil when none exists.
func (r *UserRepository) GetActiveByID(ctx context.Context, id int) (*models.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND is_active = TRUE`
	return r.getOne(ctx, q, id)
}

func (r *UserRepository) getOne(ctx context.Context, q string, arg interface{}) (*models.User, error) {
	var u models.User
	if err := r.db.GetContext(ctx, &u, q, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// ExistsByEmailOrUsername reports whether either identifier is already taken.
func (r *UserRepository) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1 OR username = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, q, email, username); err != nil {
		return false, err
	}
	return exists, nil
}

// Create inserts user and fills its generated fields.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	const q = `
		INSERT INTO users (username, email, password_hash, role, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRowxContext(ctx, q, user.Username, user.Email, user.PasswordHash, user.Role, user.IsActive).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}
