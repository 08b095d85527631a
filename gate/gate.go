// Package gate assembles the gated portfolio backend: identity, profiles,
// page flows, contact form and the HTTP routes that serve them.
//
// Setup:
//
//  1. Run migrations (portfolio-gate migrate up, or serve --migrate)
//  2. Create a Gate and serve its handler
//
// Basic usage:
//
//	db, _ := sql.Open("postgres", "postgres://localhost/portfolio?sslmode=disable")
//
//	cfg, _ := config.Load()
//	g, err := gate.New(gate.Config{DB: db, App: cfg})
//	if err != nil {
//	    log.Fatal(err) // Will fail if migrations haven't been run
//	}
//	http.ListenAndServe(cfg.Addr(), g.Handler())
package gate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/portfolio-gate/internal/config"
	httpserver "github.com/tendant/portfolio-gate/internal/http"
	"github.com/tendant/portfolio-gate/internal/http/middleware"
	"github.com/tendant/portfolio-gate/internal/notification"
	"github.com/tendant/portfolio-gate/pkg/auth"
	"github.com/tendant/portfolio-gate/pkg/contact"
	"github.com/tendant/portfolio-gate/pkg/identity"
	"github.com/tendant/portfolio-gate/pkg/profile"
	"github.com/tendant/portfolio-gate/pkg/repository"
)

// Config holds the configuration for a Gate.
type Config struct {
	// DB is the database connection (required).
	DB *sql.DB

	// App is the loaded application configuration (required).
	App *config.Config

	// Sender delivers outgoing email. Defaults to SMTP when configured and
	// to a logging no-op sender otherwise.
	Sender notification.Sender

	// Logger is the structured logger (default: slog.Default()).
	Logger *slog.Logger
}

// Gate is an assembled backend.
type Gate struct {
	config              Config
	sessionsRepo        *repository.SessionsRepository
	passwordService     *auth.PasswordService
	sessionService      *auth.SessionService
	verificationService *auth.VerificationService
	identity            *identity.Service
	store               profile.Store
	contacts            *contact.Service
	handler             http.Handler
}

// New creates a Gate. It returns an error if required database tables
// don't exist.
func New(cfg Config) (*Gate, error) {
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)

	if err := validateSchema(cfg.DB); err != nil {
		return nil, err
	}

	app := cfg.App
	db := cfg.DB

	usersRepo := repository.NewUsersRepository(db)
	credsRepo := repository.NewCredentialsRepository(db)
	sessionsRepo := repository.NewSessionsRepository(db)
	tokensRepo := repository.NewVerificationTokensRepository(db)

	passwordService := auth.NewPasswordService(
		db,
		usersRepo,
		credsRepo,
		auth.NewPasswordPolicy(app.PasswordPolicy),
		app.Validation.StrictEmailValidation,
		app.Validation.BlockDisposableEmail,
	)
	sessionService := auth.NewSessionService(auth.SessionConfig{
		AccessTokenTTL:  app.AccessTokenTTL,
		RefreshTokenTTL: app.RefreshTokenTTL,
		JWTSecret:       []byte(app.JWTSecret),
		Issuer:          app.JWTIssuer,
	}, sessionsRepo, usersRepo)
	verificationService := auth.NewVerificationService(auth.VerificationConfig{
		EmailVerificationTTL: app.EmailVerificationTTL,
		PasswordResetTTL:     app.PasswordResetTTL,
	}, db, tokensRepo, usersRepo)

	emailService := notification.NewEmailService(cfg.Sender)

	idp := identity.NewService(identity.Config{
		BaseURL: app.Portal.AppBaseURL,
	}, passwordService, sessionService, verificationService, emailService, cfg.Logger)

	store := profile.NewPostgresStore(
		repository.NewProfilesRepository(db),
		repository.NewActivitiesRepository(db),
		repository.NewPageViewsRepository(db),
		repository.NewContactSubmissionsRepository(db),
		repository.NewPasswordResetsRepository(db),
	)
	contacts := contact.NewService(store, emailService, app.ContactNotifyEmail, cfg.Logger)

	handler := httpserver.NewRouter(httpserver.RouterConfig{
		Logger:              cfg.Logger,
		Identity:            idp,
		PasswordService:     passwordService,
		SessionService:      sessionService,
		VerificationService: verificationService,
		ProfileStore:        store,
		ContactService:      contacts,
		Portal:              app.Portal,
		RateLimitConfig:     app.RateLimit,
		SecurityHeaders:     app.SecurityHeaders,
		Validation:          app.Validation,
		MinPasswordLength:   app.PasswordPolicy.MinLength,
		CookieSecure:        app.CookieSecure,
	})

	return &Gate{
		config:              cfg,
		sessionsRepo:        sessionsRepo,
		passwordService:     passwordService,
		sessionService:      sessionService,
		verificationService: verificationService,
		identity:            idp,
		store:               store,
		contacts:            contacts,
		handler:             handler,
	}, nil
}

// Handler returns the HTTP handler with every route registered.
func (g *Gate) Handler() http.Handler {
	return g.handler
}

// Identity returns the identity service for advanced usage.
func (g *Gate) Identity() *identity.Service {
	return g.identity
}

// Store returns the profile store.
func (g *Gate) Store() profile.Store {
	return g.store
}

// AuthMiddleware returns middleware that validates JWT tokens.
// Use this to protect your own routes:
//
//	r.Group(func(r chi.Router) {
//	    r.Use(g.AuthMiddleware())
//	    r.Get("/protected", handler)
//	})
func (g *Gate) AuthMiddleware() func(http.Handler) http.Handler {
	return middleware.Auth(g.sessionService)
}

// PurgeExpiredSessions deletes sessions that expired or were revoked more
// than olderThan ago.
func (g *Gate) PurgeExpiredSessions(ctx context.Context, olderThan time.Duration) (int64, error) {
	return g.sessionsRepo.DeleteExpired(ctx, olderThan)
}

// RunSessionJanitor purges stale sessions every interval until ctx is done.
func (g *Gate) RunSessionJanitor(ctx context.Context, interval, olderThan time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := g.PurgeExpiredSessions(ctx, olderThan)
			if err != nil {
				g.config.Logger.Error("failed to purge sessions", "error", err)
				continue
			}
			if n > 0 {
				g.config.Logger.Info("purged stale sessions", "count", n)
			}
		}
	}
}

// GetUserID extracts the user ID from a request.
// Use after AuthMiddleware:
//
//	userID, ok := gate.GetUserID(r)
func GetUserID(r *http.Request) (uuid.UUID, bool) {
	return middleware.GetUserID(r.Context())
}

func validateConfig(cfg *Config) error {
	if cfg.DB == nil {
		return errors.New("gate: DB is required")
	}
	if cfg.App == nil {
		return errors.New("gate: App config is required")
	}
	if cfg.App.JWTSecret == "" {
		return errors.New("gate: JWT secret is required")
	}
	if len(cfg.App.JWTSecret) < 32 {
		return errors.New("gate: JWT secret must be at least 32 characters")
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Sender == nil {
		cfg.Sender = DefaultSender(cfg.App, cfg.Logger)
	}
}

// DefaultSender returns the SMTP sender when SMTP is configured and a
// logging no-op sender otherwise.
func DefaultSender(app *config.Config, logger *slog.Logger) notification.Sender {
	if !app.HasSMTP() {
		logger.Warn("SMTP not configured, outgoing email will only be logged")
		return notification.NewNoopSender(logger)
	}
	return notification.NewSMTPSender(notification.EmailConfig{
		Host:     app.SMTPHost,
		Port:     app.SMTPPort,
		User:     app.SMTPUser,
		Password: app.SMTPPassword,
		From:     app.SMTPFrom,
		FromName: app.SMTPFromName,
	})
}

// requiredTables are created by the embedded migrations.
var requiredTables = []string{
	"users",
	"user_password",
	"sessions",
	"verification_tokens",
	"profiles",
	"user_activities",
	"page_views",
	"contact_submissions",
	"password_resets",
}

// validateSchema checks that required database tables exist.
func validateSchema(db *sql.DB) error {
	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public' AND table_name = $1
	`

	for _, table := range requiredTables {
		var name string
		err := db.QueryRow(query, table).Scan(&name)
		if err == sql.ErrNoRows {
			return fmt.Errorf("gate: missing table '%s' - run migrations first (portfolio-gate migrate up)", table)
		}
		if err != nil {
			return fmt.Errorf("gate: failed to check schema: %w", err)
		}
	}

	return nil
}
