package models

import (
	"database/sql"
	"time"
)

// User is the database model for users
type User struct {
	ID             string         `db:"id"`
	GoogleID       string         `db:"google_id"`
	Email          string         `db:"email"`
	Name           string         `db:"name"`
	ProfilePicture sql.NullString `db:"profile_picture"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
	DeletedAt      sql.NullTime   `db:"deleted_at"`
}
