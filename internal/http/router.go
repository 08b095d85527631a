package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/tendant/portfolio-gate/internal/config"
	"github.com/tendant/portfolio-gate/internal/http/features/contact"
	"github.com/tendant/portfolio-gate/internal/http/features/email"
	"github.com/tendant/portfolio-gate/internal/http/features/me"
	"github.com/tendant/portfolio-gate/internal/http/features/password"
	pagefeature "github.com/tendant/portfolio-gate/internal/http/features/portal"
	"github.com/tendant/portfolio-gate/internal/http/features/session"
	"github.com/tendant/portfolio-gate/internal/http/middleware"
	"github.com/tendant/portfolio-gate/internal/httputil"
	"github.com/tendant/portfolio-gate/internal/metrics"
	"github.com/tendant/portfolio-gate/pkg/auth"
	contactsvc "github.com/tendant/portfolio-gate/pkg/contact"
	"github.com/tendant/portfolio-gate/pkg/identity"
	"github.com/tendant/portfolio-gate/pkg/portal"
	"github.com/tendant/portfolio-gate/pkg/profile"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Logger              *slog.Logger
	Identity            *identity.Service
	PasswordService     *auth.PasswordService
	SessionService      *auth.SessionService
	VerificationService *auth.VerificationService
	ProfileStore        profile.Store
	ContactService      *contactsvc.Service
	Portal              config.PortalConfig
	RateLimitConfig     config.RateLimitConfig
	SecurityHeaders     config.SecurityHeadersConfig
	Validation          config.ValidationConfig
	MinPasswordLength   int
	CookieSecure        bool
}

// NewRouter creates a new HTTP router with all routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recover(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(metrics.Middleware)
	r.Use(middleware.SecurityHeaders(cfg.SecurityHeaders))
	r.Use(middleware.RequestSizeLimit(cfg.Validation.MaxRequestBodySize))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	rateLimiters := middleware.CreateRateLimiters(cfg.RateLimitConfig, cfg.Logger)

	cookieConfig := httputil.DefaultCookieConfig()
	cookieConfig.Secure = cfg.CookieSecure

	// Page flows
	flow := portal.DefaultConfig()
	if cfg.Portal.LandingPath != "" {
		flow.LandingPath = cfg.Portal.LandingPath
	}
	flow.ResetReturnDelay = cfg.Portal.ResetReturnDelay
	flow.LogoutRedirectDelay = cfg.Portal.LogoutRedirectDelay
	flow.VerificationHintDelay = cfg.Portal.VerificationHintDelay
	flow.MinPasswordLength = cfg.MinPasswordLength

	pageHandler := pagefeature.NewHandler(cfg.Logger, cfg.Identity, cfg.ProfileStore, metrics.Flows{}, pagefeature.Config{
		Flow:            flow,
		ProtectedPaths:  cfg.Portal.ProtectedPaths,
		AccessTokenTTL:  cfg.SessionService.AccessTokenTTL(),
		RefreshTokenTTL: cfg.SessionService.RefreshTokenTTL(),
		Cookie:          cookieConfig,
	})
	r.Get("/v1/page", pageHandler.Page)
	r.Post("/v1/auth/tab", pageHandler.Tab)
	r.Post("/v1/auth/close", pageHandler.Close)
	r.Post("/v1/auth/logout", pageHandler.Logout)
	r.Group(func(r chi.Router) {
		r.Use(rateLimiters["auth"])
		r.Post("/v1/auth/login", pageHandler.Login)
		r.Post("/v1/auth/signup", pageHandler.Signup)
	})
	r.Group(func(r chi.Router) {
		r.Use(rateLimiters["reset"])
		r.Post("/v1/auth/forgot", pageHandler.Forgot)
	})
	r.Group(func(r chi.Router) {
		r.Use(rateLimiters["verify"])
		r.Post("/v1/auth/resend-verification", pageHandler.ResendVerification)
		r.Post("/v1/auth/check-verification", pageHandler.CheckVerification)
	})

	// Email links
	emailHandler := email.NewHandler(cfg.Logger, cfg.VerificationService, cfg.ProfileStore, flow.LandingPath)
	r.Group(func(r chi.Router) {
		r.Use(rateLimiters["verify"])
		r.Get("/auth/verify-email", emailHandler.Landing)
		r.Post("/v1/auth/verify-email", emailHandler.VerifyEmail)
	})

	passwordHandler := password.NewHandler(
		cfg.Logger,
		cfg.VerificationService,
		cfg.PasswordService,
		cfg.SessionService,
		cfg.ProfileStore,
	)
	r.With(rateLimiters["reset"]).Post("/v1/auth/password/reset", passwordHandler.ResetPassword)

	// Session routes
	sessionHandler := session.NewHandler(cfg.SessionService, cookieConfig)
	r.With(rateLimiters["auth"]).Post("/v1/auth/refresh", sessionHandler.Refresh)
	r.With(middleware.Auth(cfg.SessionService)).Post("/v1/auth/logout/all", sessionHandler.LogoutAll)

	// Contact form, open to anonymous visitors
	contactHandler := contact.NewHandler(cfg.Logger, cfg.ContactService, metrics.RecordContactSubmission)
	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalAuth(cfg.SessionService))
		r.Use(rateLimiters["contact"])
		r.Post("/v1/contact", contactHandler.Submit)
	})

	// Profile routes
	meHandler := me.NewHandler(cfg.Logger, cfg.ProfileStore, cfg.PasswordService)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.SessionService))
		r.Use(middleware.RequireVerified())
		r.Use(rateLimiters["profile"])
		r.Get("/v1/me", meHandler.GetMe)
		r.Patch("/v1/me", meHandler.UpdateMe)
		r.Get("/v1/me/activity", meHandler.ListActivity)
	})

	return r
}
