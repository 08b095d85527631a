package profile

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/portfolio-gate/pkg/domain"
)

// MemoryStore is an in-process Store for tests and single-node demos.
type MemoryStore struct {
	mu          sync.Mutex
	profiles    map[uuid.UUID]*domain.Profile
	activities  []domain.ActivityRecord
	pageViews   []domain.PageView
	contacts    []domain.ContactSubmission
	resets      []domain.PasswordResetRequest
	failAppends error
	now         func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles: make(map[uuid.UUID]*domain.Profile),
		now:      time.Now,
	}
}

// FailAppends makes every append-only write and RecordLogin return err.
// Pass nil to restore normal behaviour.
func (m *MemoryStore) FailAppends(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failAppends = err
}

func (m *MemoryStore) GetProfile(_ context.Context, id uuid.UUID) (*domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	c := *p
	return &c, nil
}

func (m *MemoryStore) CreateProfileIfAbsent(_ context.Context, id uuid.UUID, seed domain.ProfileSeed) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.profiles[id]; ok {
		return false, nil
	}
	m.profiles[id] = newProfile(id, seed, m.now())
	return true, nil
}

func (m *MemoryStore) UpdateProfile(_ context.Context, id uuid.UUID, patch domain.ProfilePatch) (*domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	patch.Apply(p, m.now())
	c := *p
	return &c, nil
}

func (m *MemoryStore) RecordLogin(_ context.Context, id uuid.UUID, at time.Time, emailVerified bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAppends != nil {
		return m.failAppends
	}
	p, ok := m.profiles[id]
	if !ok {
		return domain.ErrProfileNotFound
	}
	p.LoginCount++
	p.LastLogin = at
	p.IsEmailVerified = emailVerified
	return nil
}

func (m *MemoryStore) ListProfiles(_ context.Context) ([]*domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Profile, 0, len(m.profiles))
	for _, p := range m.profiles {
		c := *p
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStore) AppendActivity(_ context.Context, rec domain.ActivityRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAppends != nil {
		return m.failAppends
	}
	stamp(&rec.ID, &rec.Timestamp, m.now)
	m.activities = append(m.activities, rec)
	return nil
}

func (m *MemoryStore) ListActivities(_ context.Context, actor string, limit int) ([]*domain.ActivityRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	limit = activityLimit(limit)
	var out []*domain.ActivityRecord
	for i := len(m.activities) - 1; i >= 0 && len(out) < limit; i-- {
		if m.activities[i].Actor == actor {
			rec := m.activities[i]
			out = append(out, &rec)
		}
	}
	return out, nil
}

func (m *MemoryStore) AppendPageView(_ context.Context, view domain.PageView) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAppends != nil {
		return m.failAppends
	}
	stamp(&view.ID, &view.Timestamp, m.now)
	m.pageViews = append(m.pageViews, view)
	return nil
}

func (m *MemoryStore) SaveContactSubmission(_ context.Context, sub *domain.ContactSubmission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stamp(&sub.ID, &sub.Timestamp, m.now)
	if sub.Status == "" {
		sub.Status = domain.ContactStatusNew
	}
	m.contacts = append(m.contacts, *sub)
	return nil
}

func (m *MemoryStore) AppendPasswordResetRequest(_ context.Context, req domain.PasswordResetRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAppends != nil {
		return m.failAppends
	}
	stamp(&req.ID, &req.Timestamp, m.now)
	if req.Status == "" {
		req.Status = domain.PasswordResetStatusRequested
	}
	m.resets = append(m.resets, req)
	return nil
}

// Activities returns every activity record, oldest first.
func (m *MemoryStore) Activities() []domain.ActivityRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.ActivityRecord(nil), m.activities...)
}

// CountActivities returns how many records carry the tag.
func (m *MemoryStore) CountActivities(tag domain.ActivityTag) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, a := range m.activities {
		if a.Activity == tag {
			n++
		}
	}
	return n
}

// PageViews returns every page view, oldest first.
func (m *MemoryStore) PageViews() []domain.PageView {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.PageView(nil), m.pageViews...)
}

// ContactSubmissions returns every stored submission.
func (m *MemoryStore) ContactSubmissions() []domain.ContactSubmission {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.ContactSubmission(nil), m.contacts...)
}

// PasswordResetRequests returns every logged reset request.
func (m *MemoryStore) PasswordResetRequests() []domain.PasswordResetRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.PasswordResetRequest(nil), m.resets...)
}
