package domain

import (
	"time"

	"github.com/google/uuid"
)

// Anonymous is the actor recorded for events without a trusted identity.
const Anonymous = "anonymous"

// ActivityTag names a logged event.
type ActivityTag string

const (
	ActivityLogin                  ActivityTag = "login"
	ActivitySuccessfulLogin        ActivityTag = "successful_login"
	ActivityFailedLoginAttempt     ActivityTag = "failed_login_attempt"
	ActivityLogout                 ActivityTag = "logout"
	ActivityAccountCreated         ActivityTag = "account_created"
	ActivityContactFormSubmitted   ActivityTag = "contact_form_submitted"
	ActivityPasswordResetRequested ActivityTag = "password_reset_requested"
	ActivityPasswordResetCompleted ActivityTag = "password_reset_completed"
	ActivityEmailVerified          ActivityTag = "email_verified"
	ActivityProfileUpdated         ActivityTag = "profile_updated"
)

// ActivityRecord is an append-only audit entry.
type ActivityRecord struct {
	ID        uuid.UUID
	Actor     string
	Activity  ActivityTag
	Detail    string
	Timestamp time.Time
	UserAgent string
	IP        string
}

// PageView is an append-only analytics entry.
type PageView struct {
	ID        uuid.UUID
	Actor     string
	Path      string
	Timestamp time.Time
	UserAgent string
	Referrer  string
}

// ActorFor returns the session's user ID, or Anonymous for a nil session.
func ActorFor(s *Session) string {
	if s == nil {
		return Anonymous
	}
	return s.UserID.String()
}
