package portal

import (
	"context"

	"github.com/tendant/portfolio-gate/pkg/domain"
)

// Visibility is the gate decision for protected content.
type Visibility int

const (
	Hidden Visibility = iota
	Visible
)

func (v Visibility) String() string {
	if v == Visible {
		return "visible"
	}
	return "hidden"
}

// Decide shows protected content only to a signed-in user with a verified
// email address.
func Decide(s *domain.Session) Visibility {
	if s != nil && s.EmailVerified {
		return Visible
	}
	return Hidden
}

// Gate applies Decide to the page. It does nothing on pages without
// protected content.
type Gate struct {
	state     *SessionState
	presenter Presenter
	protected bool
}

// NewGate returns a gate reading from state.
func NewGate(state *SessionState, presenter Presenter, protected bool) *Gate {
	return &Gate{state: state, presenter: presenter, protected: protected}
}

// Refresh re-evaluates the gate against the mirrored session.
func (g *Gate) Refresh() Visibility {
	v := Decide(g.state.Current())
	if !g.protected {
		return v
	}
	if v == Visible {
		g.presenter.ShowContent()
	} else {
		g.presenter.ShowLoginPrompt()
	}
	return v
}

func (g *Gate) OnSessionChange(_ context.Context, _ Change) {
	g.Refresh()
}
