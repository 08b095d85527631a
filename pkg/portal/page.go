// Package portal runs the gated portfolio page: it mirrors the identity
// provider's session, decides whether protected content is shown, keeps
// profile bookkeeping in step and drives the login prompt flows.
package portal

import (
	"log/slog"
	"time"

	"github.com/tendant/portfolio-gate/pkg/identity"
	"github.com/tendant/portfolio-gate/pkg/profile"
)

// Deps are the collaborators shared by every page.
type Deps struct {
	Provider  identity.Provider
	Store     profile.Store
	Presenter Presenter
	Scheduler Scheduler
	Logger    *slog.Logger
	Metrics   Metrics
	Config    Config
	// Latches is shared across pages. A nil Latches gives the page its own.
	Latches *Latches
}

// Page is one assembled page.
type Page struct {
	State      *SessionState
	Observer   *Observer
	Gate       *Gate
	Banner     *Banner
	Controller *Controller
}

// NewPage wires a page. Subscribers run in the order profile sync, gate,
// banner. Call Observer.Start or Observer.Resume to attach it.
func NewPage(deps Deps, pc PageContext) *Page {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Metrics == nil {
		deps.Metrics = NopMetrics{}
	}
	if deps.Scheduler == nil {
		deps.Scheduler = TimerScheduler{}
	}
	if deps.Latches == nil {
		deps.Latches = NewLatches()
	}
	cfg := deps.Config.withDefaults()

	state := NewSessionState()
	gate := NewGate(state, deps.Presenter, pc.Protected)
	banner := NewBanner(state, deps.Store, deps.Presenter, deps.Logger)
	ps := NewProfileSync(deps.Store, pc, deps.Logger, deps.Metrics)
	observer := NewObserver(deps.Provider, state, ps, gate, banner)

	return &Page{
		State:    state,
		Observer: observer,
		Gate:     gate,
		Banner:   banner,
		Controller: &Controller{
			cfg:       cfg,
			provider:  deps.Provider,
			store:     deps.Store,
			observer:  observer,
			presenter: deps.Presenter,
			scheduler: deps.Scheduler,
			page:      pc,
			logger:    deps.Logger,
			metrics:   deps.Metrics,
			now:       time.Now,
			latches:   deps.Latches,
			tab:       TabLogin,
		},
	}
}
