package notification

import "context"

// Sender delivers a single HTML email.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}
