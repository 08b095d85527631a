package domain

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the durable per-user record, independent of any single session.
type Profile struct {
	ID              uuid.UUID
	DisplayName     string
	Email           string
	AvatarURL       string
	CreatedAt       time.Time
	LastLogin       time.Time
	LoginCount      int
	IsEmailVerified bool
	Details         ProfileDetails
	Preferences     Preferences
	UpdatedAt       *time.Time
}

// ProfileDetails holds the freeform "about" sub-fields.
type ProfileDetails struct {
	Bio      string `json:"bio"`
	Company  string `json:"company"`
	Location string `json:"location"`
	Website  string `json:"website"`
}

// Preferences holds per-user site preferences.
type Preferences struct {
	Theme         string `json:"theme"`
	Notifications bool   `json:"notifications"`
}

// DefaultPreferences are applied to freshly created profiles.
func DefaultPreferences() Preferences {
	return Preferences{Theme: "dark", Notifications: true}
}

// ProfileSeed carries the values used when a profile is first created.
type ProfileSeed struct {
	DisplayName   string
	Email         string
	AvatarURL     string
	EmailVerified bool
}

// ProfilePatch is an explicit profile edit. Nil fields are left untouched.
type ProfilePatch struct {
	DisplayName *string
	AvatarURL   *string
	Details     *ProfileDetails
	Preferences *Preferences
}

// IsEmpty reports whether the patch changes nothing.
func (p ProfilePatch) IsEmpty() bool {
	return p.DisplayName == nil && p.AvatarURL == nil && p.Details == nil && p.Preferences == nil
}

// Apply writes the patch onto a profile.
func (p ProfilePatch) Apply(profile *Profile, now time.Time) {
	if p.DisplayName != nil {
		profile.DisplayName = *p.DisplayName
	}
	if p.AvatarURL != nil {
		profile.AvatarURL = *p.AvatarURL
	}
	if p.Details != nil {
		profile.Details = *p.Details
	}
	if p.Preferences != nil {
		profile.Preferences = *p.Preferences
	}
	profile.UpdatedAt = &now
}
