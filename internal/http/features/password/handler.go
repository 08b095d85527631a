package password

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/portfolio-gate/internal/httputil"
	"github.com/tendant/portfolio-gate/pkg/domain"
)

// ResetTokens validates and consumes password reset tokens.
type ResetTokens interface {
	ValidatePasswordResetToken(ctx context.Context, rawToken string) (uuid.UUID, error)
	ConsumePasswordResetToken(ctx context.Context, rawToken string) error
}

// Passwords changes stored passwords.
type Passwords interface {
	ChangePassword(ctx context.Context, userID uuid.UUID, newPassword string) error
}

// SessionRevoker revokes every session of a user.
type SessionRevoker interface {
	RevokeAllSessions(ctx context.Context, userID uuid.UUID) error
}

// ActivityLog records audit entries.
type ActivityLog interface {
	AppendActivity(ctx context.Context, rec domain.ActivityRecord) error
}

// Handler completes password resets started from the login prompt.
type Handler struct {
	logger     *slog.Logger
	tokens     ResetTokens
	passwords  Passwords
	sessions   SessionRevoker
	activities ActivityLog
}

// NewHandler creates a new password handler.
func NewHandler(
	logger *slog.Logger,
	tokens ResetTokens,
	passwords Passwords,
	sessions SessionRevoker,
	activities ActivityLog,
) *Handler {
	return &Handler{
		logger:     logger,
		tokens:     tokens,
		passwords:  passwords,
		sessions:   sessions,
		activities: activities,
	}
}

// PasswordResetRequest represents a password reset confirmation.
type PasswordResetRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// MessageResponse is a plain confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// ResetPassword handles password resets.
// POST /v1/auth/password/reset
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req PasswordResetRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}

	if req.Token == "" {
		httputil.Error(w, http.StatusBadRequest, "token is required")
		return
	}

	if req.NewPassword == "" {
		httputil.Error(w, http.StatusBadRequest, "new password is required")
		return
	}

	userID, err := h.tokens.ValidatePasswordResetToken(r.Context(), req.Token)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrVerificationTokenInvalid),
			errors.Is(err, domain.ErrVerificationTokenNotFound):
			httputil.Error(w, http.StatusBadRequest, "invalid reset token")
		case errors.Is(err, domain.ErrVerificationTokenExpired):
			httputil.Error(w, http.StatusBadRequest, "reset token expired")
		case errors.Is(err, domain.ErrVerificationTokenConsumed):
			httputil.Error(w, http.StatusBadRequest, "reset token already used")
		default:
			h.logger.Error("failed to validate password reset token", "error", err)
			httputil.Error(w, http.StatusInternalServerError, "validation failed")
		}
		return
	}

	if err := h.passwords.ChangePassword(r.Context(), userID, req.NewPassword); err != nil {
		if errors.Is(err, domain.ErrWeakPassword) {
			httputil.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to change password", "error", err, "user_id", userID)
		httputil.Error(w, http.StatusInternalServerError, "failed to change password")
		return
	}

	// The password is already changed, so the remaining steps only log.
	if err := h.tokens.ConsumePasswordResetToken(r.Context(), req.Token); err != nil {
		h.logger.Error("failed to consume password reset token", "error", err, "user_id", userID)
	}
	if err := h.sessions.RevokeAllSessions(r.Context(), userID); err != nil {
		h.logger.Error("failed to revoke sessions", "error", err, "user_id", userID)
	}
	if err := h.activities.AppendActivity(r.Context(), domain.ActivityRecord{
		Actor:     userID.String(),
		Activity:  domain.ActivityPasswordResetCompleted,
		Timestamp: time.Now(),
		UserAgent: r.UserAgent(),
		IP:        r.RemoteAddr,
	}); err != nil {
		h.logger.Warn("failed to log password reset", "error", err, "user_id", userID)
	}

	h.logger.Info("password reset successful", "user_id", userID)

	httputil.JSON(w, http.StatusOK, MessageResponse{
		Message: "Password reset successful",
	})
}
