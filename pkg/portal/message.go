package portal

import (
	"encoding/json"
	"time"
)

// Severity is the tone of a page message.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
)

// Auto-dismiss intervals. Warnings stay up longer.
const (
	DismissWarning = 6 * time.Second
	DismissDefault = 4 * time.Second
)

// Message is a transient toast shown to the user. On the wire the dismiss
// interval is whole milliseconds.
type Message struct {
	Severity     Severity
	Text         string
	DismissAfter time.Duration
}

type messageJSON struct {
	Severity       Severity `json:"severity"`
	Text           string   `json:"text"`
	DismissAfterMS int64    `json:"dismiss_after_ms"`
}

func (m Message) MarshalJSON() ([]byte, error) {
	return json.Marshal(messageJSON{
		Severity:       m.Severity,
		Text:           m.Text,
		DismissAfterMS: m.DismissAfter.Milliseconds(),
	})
}

func (m *Message) UnmarshalJSON(data []byte) error {
	var v messageJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*m = Message{
		Severity:     v.Severity,
		Text:         v.Text,
		DismissAfter: time.Duration(v.DismissAfterMS) * time.Millisecond,
	}
	return nil
}

// NewMessage builds a message with the severity's dismiss interval.
func NewMessage(severity Severity, text string) Message {
	dismiss := DismissDefault
	if severity == SeverityWarning {
		dismiss = DismissWarning
	}
	return Message{Severity: severity, Text: text, DismissAfter: dismiss}
}

func success(text string) Message { return NewMessage(SeveritySuccess, text) }
func warning(text string) Message { return NewMessage(SeverityWarning, text) }
func info(text string) Message    { return NewMessage(SeverityInfo, text) }
