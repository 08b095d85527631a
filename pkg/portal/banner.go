package portal

import (
	"context"
	"log/slog"

	"github.com/tendant/portfolio-gate/pkg/profile"
)

// Banner shows who is signed in. It stays hidden until the address is
// verified.
type Banner struct {
	state     *SessionState
	store     profile.Store
	presenter Presenter
	logger    *slog.Logger
}

// NewBanner returns a banner reading from state.
func NewBanner(state *SessionState, store profile.Store, presenter Presenter, logger *slog.Logger) *Banner {
	return &Banner{state: state, store: store, presenter: presenter, logger: logger}
}

// Refresh re-renders the banner from the mirrored session.
func (b *Banner) Refresh(ctx context.Context) IdentityView {
	s := b.state.Current()
	if s == nil || !s.EmailVerified {
		b.presenter.RefreshIdentity(IdentityView{})
		return IdentityView{}
	}

	name := s.DisplayName
	if name == "" {
		name = "User"
	}
	view := IdentityView{
		Visible:      true,
		Greeting:     "Welcome, " + s.Label(),
		BodyGreeting: "Hi, " + name + "!",
		AvatarURL:    profile.AvatarFor(s.DisplayName),
	}
	if p, err := b.store.GetProfile(ctx, s.UserID); err == nil && p.AvatarURL != "" {
		view.AvatarURL = p.AvatarURL
	} else if err != nil {
		b.logger.Debug("profile unavailable for banner", "error", err, "user_id", s.UserID)
	}

	b.presenter.RefreshIdentity(view)
	return view
}

func (b *Banner) OnSessionChange(ctx context.Context, _ Change) {
	b.Refresh(ctx)
}
