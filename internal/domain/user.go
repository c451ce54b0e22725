package domain

import "time"

// User represents an authenticated user of the service
type User struct {
	ID             string
	GoogleID       string
	Email          string
	Name           string
	ProfilePicture string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Validate validates the user
func (u *User) Validate() error {
	if u.GoogleID == "" {
		return NewValidationError("google ID is required")
	}
	if u.Email == "" {
		return NewValidationError("email is required")
	}
	return nil
}
