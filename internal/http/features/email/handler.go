package email

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/portfolio-gate/internal/httputil"
	"github.com/tendant/portfolio-gate/pkg/domain"
)

// Verifier consumes email verification tokens.
type Verifier interface {
	VerifyEmailToken(ctx context.Context, rawToken string) (uuid.UUID, error)
}

// ActivityLog records audit entries.
type ActivityLog interface {
	AppendActivity(ctx context.Context, rec domain.ActivityRecord) error
}

type Handler struct {
	logger      *slog.Logger
	verifier    Verifier
	activities  ActivityLog
	landingPath string
}

func NewHandler(
	logger *slog.Logger,
	verifier Verifier,
	activities ActivityLog,
	landingPath string,
) *Handler {
	return &Handler{
		logger:      logger,
		verifier:    verifier,
		activities:  activities,
		landingPath: landingPath,
	}
}

type VerifyEmailRequest struct {
	Token string `json:"token"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// VerifyEmail handles email verification.
// POST /v1/auth/verify-email
func (h *Handler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	// Support both query parameter and JSON body
	token := r.URL.Query().Get("token")
	if token == "" {
		var req VerifyEmailRequest
		if !httputil.DecodeJSON(w, r, &req) {
			return
		}
		token = req.Token
	}

	if token == "" {
		httputil.Error(w, http.StatusBadRequest, "token is required")
		return
	}

	if _, err := h.verify(r, token); err != nil {
		status, msg := h.describe(err)
		httputil.Error(w, status, msg)
		return
	}

	httputil.JSON(w, http.StatusOK, MessageResponse{
		Message: "Email verified successfully",
	})
}

// Landing is the target of the link in the verification email. It
// consumes the token and sends the browser to the landing page with the
// outcome in the query string.
// GET /auth/verify-email?token=
func (h *Handler) Landing(w http.ResponseWriter, r *http.Request) {
	q := url.Values{}
	token := r.URL.Query().Get("token")
	if token == "" {
		q.Set("verify_error", "token is required")
	} else if _, err := h.verify(r, token); err != nil {
		_, msg := h.describe(err)
		q.Set("verify_error", msg)
	} else {
		q.Set("verified", "1")
	}
	http.Redirect(w, r, h.landingPath+"?"+q.Encode(), http.StatusSeeOther)
}

func (h *Handler) verify(r *http.Request, token string) (uuid.UUID, error) {
	userID, err := h.verifier.VerifyEmailToken(r.Context(), token)
	if err != nil {
		return uuid.Nil, err
	}

	if err := h.activities.AppendActivity(r.Context(), domain.ActivityRecord{
		Actor:     userID.String(),
		Activity:  domain.ActivityEmailVerified,
		Timestamp: time.Now(),
		UserAgent: r.UserAgent(),
		IP:        r.RemoteAddr,
	}); err != nil {
		h.logger.Warn("failed to log email verification", "error", err, "user_id", userID)
	}

	h.logger.Info("email verified", "user_id", userID)
	return userID, nil
}

func (h *Handler) describe(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrVerificationTokenInvalid),
		errors.Is(err, domain.ErrVerificationTokenNotFound):
		return http.StatusBadRequest, "invalid verification token"
	case errors.Is(err, domain.ErrVerificationTokenExpired):
		return http.StatusBadRequest, "verification token expired"
	case errors.Is(err, domain.ErrVerificationTokenConsumed):
		return http.StatusBadRequest, "verification token already used"
	default:
		h.logger.Error("failed to verify email", "error", err)
		return http.StatusInternalServerError, "verification failed"
	}
}
