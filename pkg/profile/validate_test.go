package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tendant/portfolio-gate/pkg/domain"
)

func strPtr(s string) *string { return &s }

func TestValidatePatch(t *testing.T) {
	tests := []struct {
		name    string
		patch   domain.ProfilePatch
		wantErr bool
	}{
		{name: "empty", patch: domain.ProfilePatch{}, wantErr: true},
		{name: "display name", patch: domain.ProfilePatch{DisplayName: strPtr("Ana")}, wantErr: false},
		{name: "blank display name", patch: domain.ProfilePatch{DisplayName: strPtr("  ")}, wantErr: true},
		{name: "avatar url", patch: domain.ProfilePatch{AvatarURL: strPtr("https://example.com/a.png")}, wantErr: false},
		{name: "bad avatar url", patch: domain.ProfilePatch{AvatarURL: strPtr("not a url")}, wantErr: true},
		{
			name:    "details with website",
			patch:   domain.ProfilePatch{Details: &domain.ProfileDetails{Bio: "hi", Website: "https://ana.dev"}},
			wantErr: false,
		},
		{
			name:    "details with bad website",
			patch:   domain.ProfilePatch{Details: &domain.ProfileDetails{Website: "ana dev"}},
			wantErr: true,
		},
		{
			name:    "light theme",
			patch:   domain.ProfilePatch{Preferences: &domain.Preferences{Theme: "light"}},
			wantErr: false,
		},
		{
			name:    "unknown theme",
			patch:   domain.ProfilePatch{Preferences: &domain.Preferences{Theme: "neon"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePatch(tt.patch)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	assert.ErrorIs(t, ValidatePatch(domain.ProfilePatch{}), ErrEmptyPatch)
}
