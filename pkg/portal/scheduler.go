package portal

import (
	"sort"
	"sync"
	"time"
)

// TransitionKind is what a deferred transition does.
type TransitionKind string

const (
	TransitionTab      TransitionKind = "tab"
	TransitionMessage  TransitionKind = "message"
	TransitionRedirect TransitionKind = "redirect"
)

// Transition is a UI change applied after a delay.
type Transition struct {
	Kind     TransitionKind
	After    time.Duration
	Tab      Tab
	Headline *Headline
	Message  *Message
	Path     string
}

// Scheduler runs deferred transitions. A transition is never cancelled,
// even if a later action makes it stale.
type Scheduler interface {
	Schedule(t Transition, apply func())
}

// TimerScheduler applies transitions on a timer goroutine.
type TimerScheduler struct{}

func (TimerScheduler) Schedule(t Transition, apply func()) {
	time.AfterFunc(t.After, apply)
}

// RecordingScheduler collects transitions without applying them, for a
// client that runs its own timers.
type RecordingScheduler struct {
	mu          sync.Mutex
	transitions []Transition
}

func (s *RecordingScheduler) Schedule(t Transition, _ func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transitions = append(s.transitions, t)
}

// Transitions returns the scheduled transitions in order.
func (s *RecordingScheduler) Transitions() []Transition {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Transition, len(s.transitions))
	copy(out, s.transitions)
	return out
}

// ManualScheduler holds transitions until Advance moves its clock past them.
type ManualScheduler struct {
	mu      sync.Mutex
	now     time.Duration
	pending []scheduled
}

type scheduled struct {
	at    time.Duration
	t     Transition
	apply func()
}

func (s *ManualScheduler) Schedule(t Transition, apply func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, scheduled{at: s.now + t.After, t: t, apply: apply})
}

// Pending returns the transitions not yet applied.
func (s *ManualScheduler) Pending() []Transition {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Transition, 0, len(s.pending))
	for _, p := range s.pending {
		out = append(out, p.t)
	}
	return out
}

// Advance moves the clock by d and applies every transition that is due,
// earliest first.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	s.now += d
	var due, rest []scheduled
	for _, p := range s.pending {
		if p.at <= s.now {
			due = append(due, p)
		} else {
			rest = append(rest, p)
		}
	}
	s.pending = rest
	s.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool { return due[i].at < due[j].at })
	for _, p := range due {
		p.apply()
	}
}
