package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents the account held by the identity provider.
type User struct {
	ID                  uuid.UUID
	Email               string
	EmailVerified       bool
	Name                *string
	Disabled            bool
	FailedLoginAttempts int
	LockedUntil         *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
	DeletedAt           *time.Time
}

// IsLocked returns true if the account is currently locked.
func (u *User) IsLocked() bool {
	if u.LockedUntil == nil {
		return false
	}
	return time.Now().Before(*u.LockedUntil)
}

// DisplayName returns the name or an empty string.
func (u *User) DisplayName() string {
	if u.Name == nil {
		return ""
	}
	return *u.Name
}

// Session builds the live session view of the account.
func (u *User) Session() *Session {
	return &Session{
		UserID:        u.ID,
		Email:         u.Email,
		DisplayName:   u.DisplayName(),
		EmailVerified: u.EmailVerified,
	}
}

// UserPassword stores password credentials separately from user profile.
type UserPassword struct {
	UserID            uuid.UUID
	PasswordHash      string
	PasswordUpdatedAt time.Time
}
