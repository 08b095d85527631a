package portal_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/tendant/portfolio-gate/pkg/domain"
	"github.com/tendant/portfolio-gate/pkg/identity"
	"github.com/tendant/portfolio-gate/pkg/identity/identitytest"
	"github.com/tendant/portfolio-gate/pkg/portal"
	"github.com/tendant/portfolio-gate/pkg/profile"
)

func TestDecide(t *testing.T) {
	id := uuid.New()
	tests := []struct {
		name    string
		session *domain.Session
		want    portal.Visibility
	}{
		{"signed out", nil, portal.Hidden},
		{"unverified", &domain.Session{UserID: id, Email: "a@b.co"}, portal.Hidden},
		{"verified", &domain.Session{UserID: id, Email: "a@b.co", EmailVerified: true}, portal.Visible},
		{"verified without name", &domain.Session{UserID: id, EmailVerified: true}, portal.Visible},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, portal.Decide(tt.session))
			assert.Equal(t, tt.want, portal.Decide(tt.session), "same input, same answer")
		})
	}
}

func TestGate_UnprotectedPageIsLeftAlone(t *testing.T) {
	b := identitytest.New()
	b.AddUser("ana@example.com", "secret1", "Ana", true)
	client := identitytest.NewService(b).NewClient(identity.ClientOpts{})
	presenter := portal.NewRecordingPresenter()
	page := portal.NewPage(portal.Deps{
		Provider:  client,
		Store:     profile.NewMemoryStore(),
		Presenter: presenter,
		Scheduler: &portal.ManualScheduler{},
		Logger:    discardLogger(),
	}, portal.PageContext{Path: "/index.html"})
	ctx := context.Background()
	page.Observer.Start(ctx)
	defer page.Observer.Stop()

	assert.False(t, presenter.Snapshot().GateApplied)

	_, err := client.SignIn(ctx, "ana@example.com", "secret1")
	assert.NoError(t, err)

	snap := presenter.Snapshot()
	assert.False(t, snap.GateApplied)
	assert.True(t, snap.Identity.Visible)
	assert.Equal(t, portal.Visible, page.Gate.Refresh())
}

func TestBanner_UsesStoredAvatar(t *testing.T) {
	h := newHarness(t)
	user := h.backend.AddUser("ana@example.com", "secret1", "", true)
	ctx := context.Background()
	_, err := h.store.CreateProfileIfAbsent(ctx, user.ID, domain.ProfileSeed{AvatarURL: "https://cdn.example.com/ana.png"})
	assert.NoError(t, err)

	assert.NoError(t, h.page.Controller.SignIn(ctx, "ana@example.com", "secret1"))

	view := h.snapshot().Identity
	assert.Equal(t, "Welcome, ana@example.com", view.Greeting)
	assert.Equal(t, "Hi, User!", view.BodyGreeting)
	assert.Equal(t, "https://cdn.example.com/ana.png", view.AvatarURL)
}
