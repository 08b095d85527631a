package contact

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/tendant/portfolio-gate/internal/http/middleware"
	"github.com/tendant/portfolio-gate/internal/httputil"
	"github.com/tendant/portfolio-gate/pkg/contact"
	"github.com/tendant/portfolio-gate/pkg/domain"
)

// Submitter stores contact submissions.
type Submitter interface {
	Submit(ctx context.Context, form contact.Form, meta contact.Meta) (*domain.ContactSubmission, error)
}

// Handler handles the contact form.
type Handler struct {
	logger   *slog.Logger
	service  Submitter
	onResult func(ok bool)
}

// NewHandler creates a new contact handler. onResult, when set, is called
// with the outcome of every well-formed submission.
func NewHandler(logger *slog.Logger, service Submitter, onResult func(ok bool)) *Handler {
	if onResult == nil {
		onResult = func(bool) {}
	}
	return &Handler{logger: logger, service: service, onResult: onResult}
}

// SubmitResponse acknowledges a stored submission.
type SubmitResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// ValidationResponse lists per-field problems.
type ValidationResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

// Submit handles a contact form submission. Signed-in requesters are
// attributed to their account.
// POST /v1/contact
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var form contact.Form
	if !httputil.DecodeJSON(w, r, &form) {
		return
	}

	meta := contact.Meta{
		UserAgent: r.UserAgent(),
		Referrer:  r.Referer(),
		IP:        r.RemoteAddr,
	}
	if claims, ok := middleware.GetClaims(r.Context()); ok {
		if s, err := claims.Session(); err == nil {
			meta.Session = s
		}
	}

	sub, err := h.service.Submit(r.Context(), form, meta)
	if err != nil {
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			fields := make(map[string]string, len(verrs))
			for field, ferr := range verrs {
				fields[field] = ferr.Error()
			}
			httputil.JSON(w, http.StatusBadRequest, ValidationResponse{
				Error:  contact.FailureMessage,
				Fields: fields,
			})
			return
		}
		h.onResult(false)
		h.logger.Error("failed to store contact submission", "error", err)
		httputil.Error(w, http.StatusInternalServerError, contact.FailureMessage)
		return
	}

	h.onResult(true)
	httputil.JSON(w, http.StatusCreated, SubmitResponse{
		ID:      sub.ID.String(),
		Message: contact.SuccessMessage,
	})
}
