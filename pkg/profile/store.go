// Package profile stores per-user profile documents and the append-only
// activity, page view, contact and password reset logs.
package profile

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/portfolio-gate/pkg/domain"
)

// Store is the profile store used by the page flow.
type Store interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*domain.Profile, error)
	// CreateProfileIfAbsent creates the profile unless one exists and
	// reports whether it did.
	CreateProfileIfAbsent(ctx context.Context, id uuid.UUID, seed domain.ProfileSeed) (bool, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, patch domain.ProfilePatch) (*domain.Profile, error)
	// RecordLogin adds one to loginCount and sets lastLogin.
	RecordLogin(ctx context.Context, id uuid.UUID, at time.Time, emailVerified bool) error
	ListProfiles(ctx context.Context) ([]*domain.Profile, error)

	AppendActivity(ctx context.Context, rec domain.ActivityRecord) error
	ListActivities(ctx context.Context, actor string, limit int) ([]*domain.ActivityRecord, error)
	AppendPageView(ctx context.Context, view domain.PageView) error
	SaveContactSubmission(ctx context.Context, sub *domain.ContactSubmission) error
	AppendPasswordResetRequest(ctx context.Context, req domain.PasswordResetRequest) error
}

// DefaultActivityLimit is used when ListActivities is called with limit <= 0.
const DefaultActivityLimit = 10

const avatarBase = "https://ui-avatars.com/api/?name="

// AvatarFor returns a generated avatar URL for a display name.
func AvatarFor(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return avatarBase + "User&background=00d4ff&color=fff&size=128"
	}
	return avatarBase + escapeComponent(name) + "&background=00d4ff&color=fff&size=128&rounded=true&bold=true"
}

func escapeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// newProfile builds the document written on first sign-up or sign-in.
func newProfile(id uuid.UUID, seed domain.ProfileSeed, now time.Time) *domain.Profile {
	avatar := seed.AvatarURL
	if avatar == "" {
		avatar = AvatarFor(seed.DisplayName)
	}
	return &domain.Profile{
		ID:              id,
		DisplayName:     seed.DisplayName,
		Email:           seed.Email,
		AvatarURL:       avatar,
		CreatedAt:       now,
		LastLogin:       now,
		LoginCount:      0,
		IsEmailVerified: seed.EmailVerified,
		Preferences:     domain.DefaultPreferences(),
	}
}

// stamp fills the server-assigned fields of an append-only record.
func stamp(id *uuid.UUID, ts *time.Time, now func() time.Time) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
	if ts.IsZero() {
		*ts = now()
	}
}

func activityLimit(limit int) int {
	if limit <= 0 {
		return DefaultActivityLimit
	}
	return limit
}
