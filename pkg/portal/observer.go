package portal

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/tendant/portfolio-gate/pkg/domain"
	"github.com/tendant/portfolio-gate/pkg/identity"
	"github.com/tendant/portfolio-gate/pkg/profile"
)

// Change is one session notification.
type Change struct {
	Session *domain.Session
	// Heartbeat is set for real provider notifications. Resynchronisation
	// refreshes the page without recording a login.
	Heartbeat bool
}

// Subscriber reacts to session changes. Subscribers run in registration
// order, after the session state has been updated.
type Subscriber interface {
	OnSessionChange(ctx context.Context, change Change)
}

// Observer is the single writer of SessionState. It mirrors provider
// notifications and fans them out to subscribers.
type Observer struct {
	provider    identity.Provider
	state       *SessionState
	subscribers []Subscriber

	mu          sync.Mutex
	sub         identity.Subscription
	skipInitial bool
	initialised bool
}

// NewObserver returns an observer that feeds subscribers in order.
func NewObserver(provider identity.Provider, state *SessionState, subscribers ...Subscriber) *Observer {
	return &Observer{provider: provider, state: state, subscribers: subscribers}
}

// Start subscribes to the provider. The initial notification counts as a
// page load and records a heartbeat.
func (o *Observer) Start(ctx context.Context) {
	o.subscribe(ctx, false)
}

// Resume subscribes without recording a heartbeat for the initial
// notification. Later notifications are recorded as usual.
func (o *Observer) Resume(ctx context.Context) {
	o.subscribe(ctx, true)
}

func (o *Observer) subscribe(ctx context.Context, quietInitial bool) {
	o.mu.Lock()
	if o.sub != nil {
		o.mu.Unlock()
		return
	}
	o.skipInitial = quietInitial
	o.initialised = false
	o.mu.Unlock()

	sub := o.provider.Subscribe(ctx, o.onNotify)

	o.mu.Lock()
	o.sub = sub
	o.mu.Unlock()
}

func (o *Observer) onNotify(ctx context.Context, s *domain.Session) {
	o.mu.Lock()
	heartbeat := true
	if !o.initialised {
		o.initialised = true
		heartbeat = !o.skipInitial
	}
	o.mu.Unlock()

	o.publish(ctx, Change{Session: s, Heartbeat: heartbeat})
}

// Resync pushes a freshly reloaded session through the subscribers without
// a heartbeat.
func (o *Observer) Resync(ctx context.Context, s *domain.Session) {
	o.publish(ctx, Change{Session: s})
}

// Stop unsubscribes from the provider.
func (o *Observer) Stop() {
	o.mu.Lock()
	sub := o.sub
	o.sub = nil
	o.mu.Unlock()
	if sub != nil {
		sub.Unsubscribe()
	}
}

func (o *Observer) publish(ctx context.Context, change Change) {
	o.state.set(change.Session)
	for _, sub := range o.subscribers {
		sub.OnSessionChange(ctx, change)
	}
}

// PageContext describes the page a flow runs on.
type PageContext struct {
	Path      string
	UserAgent string
	Referrer  string
	IP        string
	// SessionKey identifies the browser session the page belongs to. Pages
	// with the same key share their in-flight latches.
	SessionKey string
	// Protected is set when the page carries gated content.
	Protected bool
}

// ProfileSync keeps the profile and the activity logs in step with every
// heartbeat. Failures are logged and never reach the user.
type ProfileSync struct {
	store   profile.Store
	page    PageContext
	logger  *slog.Logger
	metrics Metrics
	now     func() time.Time
}

// NewProfileSync returns a ProfileSync for one page.
func NewProfileSync(store profile.Store, page PageContext, logger *slog.Logger, metrics Metrics) *ProfileSync {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &ProfileSync{store: store, page: page, logger: logger, metrics: metrics, now: time.Now}
}

func (p *ProfileSync) OnSessionChange(ctx context.Context, change Change) {
	s := change.Session
	if s == nil || !change.Heartbeat {
		return
	}
	now := p.now()
	actor := domain.ActorFor(s)

	seed := domain.ProfileSeed{DisplayName: s.DisplayName, Email: s.Email, EmailVerified: s.EmailVerified}
	if _, err := p.store.CreateProfileIfAbsent(ctx, s.UserID, seed); err != nil {
		p.failed("create_profile", err, s)
	}
	if err := p.store.RecordLogin(ctx, s.UserID, now, s.EmailVerified); err != nil {
		p.failed("record_login", err, s)
	}
	if err := p.store.AppendActivity(ctx, domain.ActivityRecord{
		Actor:     actor,
		Activity:  domain.ActivityLogin,
		Timestamp: now,
		UserAgent: p.page.UserAgent,
		IP:        p.page.IP,
	}); err != nil {
		p.failed("activity", err, s)
	}
	if err := p.store.AppendPageView(ctx, domain.PageView{
		Actor:     actor,
		Path:      p.page.Path,
		Timestamp: now,
		UserAgent: p.page.UserAgent,
		Referrer:  p.page.Referrer,
	}); err != nil {
		p.failed("page_view", err, s)
	}
}

func (p *ProfileSync) failed(kind string, err error, s *domain.Session) {
	p.metrics.BookkeepingFailed(kind)
	p.logger.Warn("bookkeeping write failed", "kind", kind, "error", err, "user_id", s.UserID)
}
