package me

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"
	"github.com/tendant/portfolio-gate/internal/http/middleware"
	"github.com/tendant/portfolio-gate/internal/httputil"
	"github.com/tendant/portfolio-gate/pkg/domain"
	"github.com/tendant/portfolio-gate/pkg/profile"
)

// NameUpdater keeps the account name in step with the profile.
type NameUpdater interface {
	UpdateName(ctx context.Context, userID uuid.UUID, name string) error
}

// Handler handles user profile endpoints.
type Handler struct {
	logger *slog.Logger
	store  profile.Store
	users  NameUpdater
}

// NewHandler creates a new me handler.
func NewHandler(logger *slog.Logger, store profile.Store, users NameUpdater) *Handler {
	return &Handler{
		logger: logger,
		store:  store,
		users:  users,
	}
}

// ProfileResponse represents the user profile response.
type ProfileResponse struct {
	ID              string                `json:"id"`
	DisplayName     string                `json:"display_name"`
	Email           string                `json:"email"`
	AvatarURL       string                `json:"avatar_url"`
	CreatedAt       time.Time             `json:"created_at"`
	LastLogin       time.Time             `json:"last_login"`
	LoginCount      int                   `json:"login_count"`
	IsEmailVerified bool                  `json:"is_email_verified"`
	Profile         domain.ProfileDetails `json:"profile"`
	Preferences     domain.Preferences    `json:"preferences"`
	UpdatedAt       *time.Time            `json:"updated_at,omitempty"`
}

// UpdateRequest represents a profile edit. Omitted fields are unchanged.
type UpdateRequest struct {
	DisplayName *string                `json:"display_name,omitempty"`
	AvatarURL   *string                `json:"avatar_url,omitempty"`
	Profile     *domain.ProfileDetails `json:"profile,omitempty"`
	Preferences *domain.Preferences    `json:"preferences,omitempty"`
}

// ActivityResponse is one audit entry.
type ActivityResponse struct {
	Activity  domain.ActivityTag `json:"activity"`
	Detail    string             `json:"detail,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
	UserAgent string             `json:"user_agent,omitempty"`
}

// ValidationResponse lists per-field problems.
type ValidationResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

func toResponse(p *domain.Profile) ProfileResponse {
	avatar := p.AvatarURL
	if avatar == "" {
		avatar = profile.AvatarFor(p.DisplayName)
	}
	return ProfileResponse{
		ID:              p.ID.String(),
		DisplayName:     p.DisplayName,
		Email:           p.Email,
		AvatarURL:       avatar,
		CreatedAt:       p.CreatedAt,
		LastLogin:       p.LastLogin,
		LoginCount:      p.LoginCount,
		IsEmailVerified: p.IsEmailVerified,
		Profile:         p.Details,
		Preferences:     p.Preferences,
		UpdatedAt:       p.UpdatedAt,
	}
}

// GetMe returns the current user's profile, creating it from the token
// claims if the user has never loaded a page.
// GET /v1/me
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	session, err := claims.Session()
	if err != nil {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	seed := domain.ProfileSeed{
		DisplayName:   session.DisplayName,
		Email:         session.Email,
		EmailVerified: session.EmailVerified,
	}
	if _, err := h.store.CreateProfileIfAbsent(r.Context(), session.UserID, seed); err != nil {
		h.logger.Error("failed to create profile", "error", err, "user_id", session.UserID)
		httputil.Error(w, http.StatusInternalServerError, "failed to load profile")
		return
	}

	p, err := h.store.GetProfile(r.Context(), session.UserID)
	if err != nil {
		h.logger.Error("failed to load profile", "error", err, "user_id", session.UserID)
		httputil.Error(w, http.StatusInternalServerError, "failed to load profile")
		return
	}

	httputil.JSON(w, http.StatusOK, toResponse(p))
}

// UpdateMe applies an explicit profile edit.
// PATCH /v1/me
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req UpdateRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}

	patch := domain.ProfilePatch{
		DisplayName: req.DisplayName,
		AvatarURL:   req.AvatarURL,
		Details:     req.Profile,
		Preferences: req.Preferences,
	}
	if err := profile.ValidatePatch(patch); err != nil {
		var verrs validation.Errors
		switch {
		case errors.Is(err, profile.ErrEmptyPatch):
			httputil.Error(w, http.StatusBadRequest, err.Error())
		case errors.As(err, &verrs):
			httputil.JSON(w, http.StatusBadRequest, ValidationResponse{
				Error:  "invalid profile",
				Fields: flatten("", verrs),
			})
		default:
			httputil.Error(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	p, err := h.store.UpdateProfile(r.Context(), userID, patch)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			httputil.Error(w, http.StatusNotFound, "profile not found")
			return
		}
		h.logger.Error("failed to update profile", "error", err, "user_id", userID)
		httputil.Error(w, http.StatusInternalServerError, "failed to update profile")
		return
	}

	if req.DisplayName != nil && h.users != nil {
		if err := h.users.UpdateName(r.Context(), userID, *req.DisplayName); err != nil {
			h.logger.Error("failed to update account name", "error", err, "user_id", userID)
		}
	}

	if err := h.store.AppendActivity(r.Context(), domain.ActivityRecord{
		Actor:     userID.String(),
		Activity:  domain.ActivityProfileUpdated,
		Timestamp: time.Now(),
		UserAgent: r.UserAgent(),
		IP:        r.RemoteAddr,
	}); err != nil {
		h.logger.Warn("failed to log profile update", "error", err, "user_id", userID)
	}

	httputil.JSON(w, http.StatusOK, toResponse(p))
}

// ListActivity returns the current user's recent activity, newest first.
// GET /v1/me/activity?limit=
func (h *Handler) ListActivity(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			httputil.Error(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	records, err := h.store.ListActivities(r.Context(), userID.String(), limit)
	if err != nil {
		h.logger.Error("failed to list activities", "error", err, "user_id", userID)
		httputil.Error(w, http.StatusInternalServerError, "failed to list activity")
		return
	}

	out := make([]ActivityResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, ActivityResponse{
			Activity:  rec.Activity,
			Detail:    rec.Detail,
			Timestamp: rec.Timestamp,
			UserAgent: rec.UserAgent,
		})
	}
	httputil.JSON(w, http.StatusOK, map[string]any{"activities": out})
}

// flatten turns nested validation errors into dotted field names.
func flatten(prefix string, errs validation.Errors) map[string]string {
	out := make(map[string]string)
	for field, err := range errs {
		name := field
		if prefix != "" {
			name = prefix + "." + field
		}
		var nested validation.Errors
		if errors.As(err, &nested) {
			for k, v := range flatten(name, nested) {
				out[k] = v
			}
			continue
		}
		out[name] = err.Error()
	}
	return out
}
