package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Session is the live, possibly unverified, authenticated identity of a page.
type Session struct {
	UserID        uuid.UUID
	Email         string
	DisplayName   string
	EmailVerified bool
}

// Clone returns a copy of the session, nil-safe.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

// Label is the display name, falling back to the email address.
func (s *Session) Label() string {
	if s.DisplayName != "" {
		return s.DisplayName
	}
	return s.Email
}

// SessionRecord is a persisted refresh session.
type SessionRecord struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	TokenHash  string
	CreatedAt  time.Time
	ExpiresAt  time.Time
	RevokedAt  *time.Time
	LastSeenAt *time.Time
	Metadata   json.RawMessage
}

// SessionMetadata holds optional session context.
type SessionMetadata struct {
	IP        string `json:"ip,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
}

// IsValid checks if the session is valid (not expired and not revoked).
func (s *SessionRecord) IsValid() bool {
	if s.RevokedAt != nil {
		return false
	}
	return time.Now().Before(s.ExpiresAt)
}

// TokenPair represents the access and refresh token pair.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int       `json:"expires_in"`
	ExpiresAt    time.Time `json:"expires_at"`
}
