// Package contact handles contact form submissions.
package contact

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/tendant/portfolio-gate/pkg/auth"
	"github.com/tendant/portfolio-gate/pkg/domain"
	"github.com/tendant/portfolio-gate/pkg/profile"
)

// Messages shown after a submission.
const (
	SuccessMessage = "Message sent successfully! I'll get back to you soon."
	FailureMessage = "Failed to send message. Please try again."
)

// Form is a contact form as posted by the page. Extra holds any additional
// fields, which are stored as-is.
type Form struct {
	Name    string            `json:"name"`
	Email   string            `json:"email"`
	Subject string            `json:"subject"`
	Message string            `json:"message"`
	Extra   map[string]string `json:"extra,omitempty"`
}

// Validate checks the form.
func (f Form) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&f.Email, validation.Required, validation.Length(3, 254), is.Email),
		validation.Field(&f.Subject, validation.Length(0, 200)),
		validation.Field(&f.Message, validation.Required, validation.Length(1, 5000)),
		validation.Field(&f.Extra, validation.Length(0, 20)),
	)
}

// Meta is what the server knows about the requester.
type Meta struct {
	Session   *domain.Session
	UserAgent string
	Referrer  string
	IP        string
}

// Notifier forwards submissions to the site owner.
type Notifier interface {
	SendContactNotification(ctx context.Context, to string, sub *domain.ContactSubmission) error
}

// Service stores contact submissions.
type Service struct {
	store    profile.Store
	notifier Notifier
	notifyTo string
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a contact service. notifier may be nil, and no owner
// email is sent when notifyTo is empty.
func NewService(store profile.Store, notifier Notifier, notifyTo string, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		notifier: notifier,
		notifyTo: notifyTo,
		logger:   logger,
		now:      time.Now,
	}
}

// Submit validates and stores a submission. Signed-in requesters also get a
// contact_form_submitted activity. The owner email and the activity are
// best effort.
func (s *Service) Submit(ctx context.Context, form Form, meta Meta) (*domain.ContactSubmission, error) {
	form.Name = auth.SanitizeName(strings.TrimSpace(form.Name))
	form.Email = auth.NormalizeEmail(form.Email)
	form.Subject = auth.SanitizeInput(strings.TrimSpace(form.Subject))
	form.Message = strings.TrimSpace(form.Message)
	if err := form.Validate(); err != nil {
		return nil, err
	}

	sub := &domain.ContactSubmission{
		Name:      form.Name,
		Email:     form.Email,
		Subject:   form.Subject,
		Message:   form.Message,
		Fields:    auth.SanitizeFields(form.Extra),
		Timestamp: s.now(),
		Status:    domain.ContactStatusNew,
		Requester: requester(form, meta),
	}

	if err := s.store.SaveContactSubmission(ctx, sub); err != nil {
		return nil, fmt.Errorf("save contact submission: %w", err)
	}

	if meta.Session != nil {
		err := s.store.AppendActivity(ctx, domain.ActivityRecord{
			Actor:     meta.Session.UserID.String(),
			Activity:  domain.ActivityContactFormSubmitted,
			Timestamp: sub.Timestamp,
			UserAgent: meta.UserAgent,
			IP:        meta.IP,
		})
		if err != nil {
			s.logger.Warn("failed to log contact activity", "error", err, "user_id", meta.Session.UserID)
		}
	}

	if s.notifier != nil && s.notifyTo != "" {
		if err := s.notifier.SendContactNotification(ctx, s.notifyTo, sub); err != nil {
			s.logger.Error("failed to send contact notification", "error", err, "submission_id", sub.ID)
		}
	}

	s.logger.Info("contact submission stored", "submission_id", sub.ID, "user_id", sub.Requester.UserID)
	return sub, nil
}

func requester(form Form, meta Meta) domain.Requester {
	r := domain.Requester{
		UserID:    domain.ActorFor(meta.Session),
		UserEmail: form.Email,
		UserAgent: meta.UserAgent,
		Referrer:  meta.Referrer,
	}
	if meta.Session != nil {
		r.UserEmail = meta.Session.Email
	}
	return r
}
