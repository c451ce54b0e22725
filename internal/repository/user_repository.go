package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"vidquiz/internal/domain"
	"vidquiz/internal/repository/models"

	"github.com/jmoiron/sqlx"
)

// SQLXUserRepository implements domain.UserRepository using sqlx.DB
type SQLXUserRepository struct {
	db *sqlx.DB
}

// NewSQLXUserRepository creates a new instance of SQLXUserRepository
func NewSQLXUserRepository(db *sqlx.DB) domain.UserRepository {
	return &SQLXUserRepository{db: db}
}

const userColumns = `
	id "id",
	google_id "google_id",
	email "email",
	name "name",
	profile_picture "profile_picture",
	created_at "created_at",
	updated_at "updated_at",
	deleted_at "deleted_at"`

// CreateUser implements domain.UserRepository
func (r *SQLXUserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	exec := GetExecutor(ctx, r.db)
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `INSERT INTO users (
		id, google_id, email, name, profile_picture, created_at, updated_at
	) VALUES (
		:1, :2, :3, :4, :5, :6, :7
	)`

	_, err := exec.ExecContext(ctx, query,
		user.ID,
		user.GoogleID,
		user.Email,
		user.Name,
		user.ProfilePicture,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// GetUserByID implements domain.UserRepository. Returns (nil, nil) when no
// user matches.
func (r *SQLXUserRepository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	exec := GetExecutor(ctx, r.db)

	var modelUser models.User
	query := `SELECT ` + userColumns + `
	FROM users
	WHERE id = :1
	AND deleted_at IS NULL`

	err := exec.GetContext(ctx, &modelUser, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by ID %s: %w", id, err)
	}
	return toDomainUser(&modelUser), nil
}

// GetUserByGoogleID implements domain.UserRepository. Returns (nil, nil) when
// no user matches.
func (r *SQLXUserRepository) GetUserByGoogleID(ctx context.Context, googleID string) (*domain.User, error) {
	exec := GetExecutor(ctx, r.db)

	var modelUser models.User
	query := `SELECT ` + userColumns + `
	FROM users
	WHERE google_id = :1
	AND deleted_at IS NULL`

	err := exec.GetContext(ctx, &modelUser, query, googleID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by google_id: %w", err)
	}
	return toDomainUser(&modelUser), nil
}

// UpdateUser implements domain.UserRepository
func (r *SQLXUserRepository) UpdateUser(ctx context.Context, user *domain.User) error {
	exec := GetExecutor(ctx, r.db)
	user.UpdatedAt = time.Now()

	query := `UPDATE users SET
		email = :1,
		name = :2,
		profile_picture = :3,
		updated_at = :4
	WHERE id = :5
	AND deleted_at IS NULL`

	_, err := exec.ExecContext(ctx, query,
		user.Email,
		user.Name,
		user.ProfilePicture,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user %s: %w", user.ID, err)
	}
	return nil
}

func toDomainUser(m *models.User) *domain.User {
	return &domain.User{
		ID:             m.ID,
		GoogleID:       m.GoogleID,
		Email:          m.Email,
		Name:           m.Name,
		ProfilePicture: m.ProfilePicture.String,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}
