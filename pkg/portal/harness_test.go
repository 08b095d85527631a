package portal_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/tendant/portfolio-gate/pkg/identity"
	"github.com/tendant/portfolio-gate/pkg/identity/identitytest"
	"github.com/tendant/portfolio-gate/pkg/portal"
	"github.com/tendant/portfolio-gate/pkg/profile"
)

// countingPresenter counts how often protected content was revealed.
type countingPresenter struct {
	*portal.RecordingPresenter
	shown atomic.Int32
}

func (p *countingPresenter) ShowContent() {
	p.shown.Add(1)
	p.RecordingPresenter.ShowContent()
}

type countingMetrics struct {
	bookkeeping atomic.Int32
	mu          sync.Mutex
	flows       []string
}

func (m *countingMetrics) FlowCompleted(op, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flows = append(m.flows, op+":"+outcome)
}

func (m *countingMetrics) BookkeepingFailed(string) { m.bookkeeping.Add(1) }

func (m *countingMetrics) Flows() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.flows...)
}

type harness struct {
	backend   *identitytest.Backend
	service   *identity.Service
	client    *identity.Client
	store     *profile.MemoryStore
	presenter *countingPresenter
	scheduler *portal.ManualScheduler
	metrics   *countingMetrics
	page      *portal.Page
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	b := identitytest.New()
	h := &harness{
		backend: b,
		service: identitytest.NewService(b),
		store:   profile.NewMemoryStore(),
	}
	h.client = h.service.NewClient(identity.ClientOpts{IP: "127.0.0.1", UserAgent: "test-agent"})
	h.openPage(t, h.client)
	return h
}

// openPage assembles a fresh protected page over client and starts it.
func (h *harness) openPage(t *testing.T, client identity.Provider) {
	t.Helper()
	h.presenter = &countingPresenter{RecordingPresenter: portal.NewRecordingPresenter()}
	h.scheduler = &portal.ManualScheduler{}
	h.metrics = &countingMetrics{}
	h.page = portal.NewPage(portal.Deps{
		Provider:  client,
		Store:     h.store,
		Presenter: h.presenter,
		Scheduler: h.scheduler,
		Logger:    discardLogger(),
		Metrics:   h.metrics,
	}, portal.PageContext{
		Path:      "/portfolio.html",
		UserAgent: "test-agent",
		Referrer:  "http://portfolio.test/index.html",
		IP:        "127.0.0.1",
		Protected: true,
	})
	h.page.Observer.Start(context.Background())
	t.Cleanup(h.page.Observer.Stop)
}

// reload simulates a fresh page load carrying the current tokens.
func (h *harness) reload(t *testing.T) {
	t.Helper()
	tokens := h.client.Tokens()
	h.page.Observer.Stop()
	h.client = h.service.NewClient(identity.ClientOpts{IP: "127.0.0.1", UserAgent: "test-agent"})
	h.client.Restore(context.Background(), tokens.AccessToken, tokens.RefreshToken)
	h.openPage(t, h.client)
}

func (h *harness) snapshot() portal.Snapshot {
	return h.presenter.Snapshot()
}
