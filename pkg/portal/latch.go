package portal

import "sync"

// Form names a submittable form. Each one holds its own in-flight latch.
type Form string

const (
	FormSignIn  Form = "sign_in"
	FormSignUp  Form = "sign_up"
	FormReset   Form = "reset"
	FormResend  Form = "resend"
	FormSignOut Form = "sign_out"
)

// Latches tracks the forms in flight for every page session. A single
// Latches is shared by all pages that can see each other's submissions.
type Latches struct {
	mu   sync.Mutex
	busy map[latchKey]struct{}
}

type latchKey struct {
	session string
	form    Form
}

// NewLatches returns an empty latch registry.
func NewLatches() *Latches {
	return &Latches{busy: make(map[latchKey]struct{})}
}

// Acquire marks form busy for session and returns the func that clears it.
// It fails with ErrRequestInFlight while the form is already busy.
func (l *Latches) Acquire(session string, form Form) (func(), error) {
	key := latchKey{session: session, form: form}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.busy[key]; ok {
		return nil, ErrRequestInFlight
	}
	l.busy[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.busy, key)
			l.mu.Unlock()
		})
	}, nil
}

// InFlight reports whether form is busy for session.
func (l *Latches) InFlight(session string, form Form) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.busy[latchKey{session: session, form: form}]
	return ok
}
