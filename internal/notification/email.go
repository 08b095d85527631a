package notification

import (
	"context"
	"fmt"
	"html"
	"sort"
	"strings"

	"github.com/tendant/portfolio-gate/pkg/domain"
)

// EmailService renders and sends the application's emails.
type EmailService struct {
	sender Sender
}

func NewEmailService(sender Sender) *EmailService {
	return &EmailService{sender: sender}
}

func (s *EmailService) SendVerificationEmail(ctx context.Context, to, verifyURL string) error {
	subject := "Verify Your Email Address"
	body := fmt.Sprintf(`<html><body>
		<h2>Verify Your Email Address</h2>
		<p>Thanks for signing up! Please verify your email address to unlock the portfolio.</p>
		<p><a href="%s">Click here to verify your email</a></p>
		<p>Or copy this link to your browser: %s</p>
		<p>This link will expire in 24 hours.</p>
	</body></html>`, verifyURL, verifyURL)
	return s.sender.Send(ctx, to, subject, body)
}

func (s *EmailService) SendPasswordResetEmail(ctx context.Context, to, resetURL string) error {
	subject := "Reset Your Password"
	body := fmt.Sprintf(`<html><body>
		<h2>Reset Your Password</h2>
		<p>A password reset has been requested for your account.</p>
		<p><a href="%s">Click here to reset your password</a></p>
		<p>Or copy this link to your browser: %s</p>
		<p>This link will expire in 1 hour.</p>
		<p>If you did not request this password reset, please ignore this email.</p>
	</body></html>`, resetURL, resetURL)
	return s.sender.Send(ctx, to, subject, body)
}

// SendContactNotification forwards a contact submission to the site owner.
func (s *EmailService) SendContactNotification(ctx context.Context, to string, sub *domain.ContactSubmission) error {
	subject := "New contact message"
	if sub.Subject != "" {
		subject += ": " + sub.Subject
	}

	var extra strings.Builder
	keys := make([]string, 0, len(sub.Fields))
	for k := range sub.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&extra, "<li><b>%s</b>: %s</li>", html.EscapeString(k), html.EscapeString(sub.Fields[k]))
	}

	body := fmt.Sprintf(`<html><body>
		<h2>New contact message</h2>
		<p><b>From:</b> %s &lt;%s&gt;</p>
		<p><b>Account:</b> %s</p>
		<p>%s</p>
		<ul>%s</ul>
	</body></html>`,
		html.EscapeString(sub.Name), html.EscapeString(sub.Email),
		html.EscapeString(sub.Requester.UserID),
		html.EscapeString(sub.Message),
		extra.String(),
	)
	return s.sender.Send(ctx, to, subject, body)
}
