package portal

import (
	"sync"
)

// IdentityView is what the identity banner shows. The zero value hides it.
type IdentityView struct {
	Visible      bool   `json:"visible"`
	Greeting     string `json:"greeting,omitempty"`
	BodyGreeting string `json:"body_greeting,omitempty"`
	AvatarURL    string `json:"avatar_url,omitempty"`
}

// Presenter renders flow outcomes. Implementations must be safe for use
// from timer goroutines.
type Presenter interface {
	ShowContent()
	ShowLoginPrompt()
	RefreshIdentity(view IdentityView)
	Notify(msg Message)
	ShowTab(tab Tab, headline Headline)
	Redirect(path string)
}

// RecordingPresenter keeps the last rendered state. The HTTP layer turns it
// into a page response.
type RecordingPresenter struct {
	mu          sync.Mutex
	contentSet  bool
	content     bool
	loginPrompt bool
	identity    IdentityView
	messages    []Message
	tab         Tab
	headline    Headline
	redirect    string
}

// NewRecordingPresenter returns an empty RecordingPresenter.
func NewRecordingPresenter() *RecordingPresenter {
	return &RecordingPresenter{}
}

func (p *RecordingPresenter) ShowContent() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.contentSet, p.content, p.loginPrompt = true, true, false
}

func (p *RecordingPresenter) ShowLoginPrompt() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.contentSet, p.content, p.loginPrompt = true, false, true
}

func (p *RecordingPresenter) RefreshIdentity(view IdentityView) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.identity = view
}

func (p *RecordingPresenter) Notify(msg Message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, msg)
}

func (p *RecordingPresenter) ShowTab(tab Tab, headline Headline) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tab, p.headline = tab, headline
}

func (p *RecordingPresenter) Redirect(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.redirect = path
}

// Snapshot is a point-in-time copy of a RecordingPresenter.
type Snapshot struct {
	// GateApplied is false when the gate never ran, e.g. on a page without
	// protected content.
	GateApplied    bool
	ContentVisible bool
	LoginPrompt    bool
	Identity       IdentityView
	Messages       []Message
	Tab            Tab
	Headline       Headline
	Redirect       string
}

// Snapshot returns the current state.
func (p *RecordingPresenter) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	msgs := make([]Message, len(p.messages))
	copy(msgs, p.messages)
	return Snapshot{
		GateApplied:    p.contentSet,
		ContentVisible: p.content,
		LoginPrompt:    p.loginPrompt,
		Identity:       p.identity,
		Messages:       msgs,
		Tab:            p.tab,
		Headline:       p.headline,
		Redirect:       p.redirect,
	}
}

// LastMessage returns the most recent message, if any.
func (s Snapshot) LastMessage() (Message, bool) {
	if len(s.Messages) == 0 {
		return Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}
