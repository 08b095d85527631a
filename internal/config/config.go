package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	// Server
	ServerAddr string
	ServerPort int
	LogLevel   slog.Level

	// Database
	DBHost      string
	DBPort      int
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string
	AutoMigrate bool

	// JWT
	JWTSecret       string
	JWTIssuer       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// Verification tokens
	EmailVerificationTTL time.Duration
	PasswordResetTTL     time.Duration

	// SMTP (optional; email is logged when SMTPHost is empty)
	SMTPHost           string
	SMTPPort           int
	SMTPUser           string
	SMTPPassword       string
	SMTPFrom           string
	SMTPFromName       string
	ContactNotifyEmail string

	CookieSecure bool

	Portal          PortalConfig
	RateLimit       RateLimitConfig
	SecurityHeaders SecurityHeadersConfig
	Validation      ValidationConfig
	PasswordPolicy  PasswordPolicyConfig
}

// PortalConfig holds the page flow settings.
type PortalConfig struct {
	AppBaseURL            string
	LandingPath           string
	ProtectedPaths        []string
	ResetReturnDelay      time.Duration
	LogoutRedirectDelay   time.Duration
	VerificationHintDelay time.Duration
}

// RateLimitConfig holds per-endpoint-group rate limits.
type RateLimitConfig struct {
	Enabled                  bool
	AuthRequestsPerMinute    int
	AuthWindowMinutes        int
	ResetRequestsPerWindow   int
	ResetWindowMinutes       int
	VerifyRequestsPerWindow  int
	VerifyWindowMinutes      int
	ContactRequestsPerWindow int
	ContactWindowMinutes     int
	ProfileRequestsPerMinute int
	ProfileWindowMinutes     int
}

// SecurityHeadersConfig holds response security header values.
type SecurityHeadersConfig struct {
	Enabled            bool
	CSP                string
	HSTSMaxAge         int
	FrameOptions       string
	ContentTypeOptions string
	XSSProtection      string
	ReferrerPolicy     string
	PermissionsPolicy  string
	CacheControl       string
}

// ValidationConfig holds request validation settings.
type ValidationConfig struct {
	MaxRequestBodySize    int64
	StrictEmailValidation bool
	BlockDisposableEmail  bool
}

// PasswordPolicyConfig holds password complexity requirements.
type PasswordPolicyConfig struct {
	MinLength        int
	RequireUppercase bool
	RequireLowercase bool
	RequireNumber    bool
	RequireSpecial   bool
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		ServerAddr: getEnv("SERVER_ADDR", "0.0.0.0"),
		ServerPort: getEnvInt("SERVER_PORT", 8080),
		LogLevel:   getEnvLogLevel("LOG_LEVEL", slog.LevelInfo),

		// Database defaults (matches podman setup: make postgres-start)
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnvInt("DB_PORT", 25432),
		DBUser:      getEnv("DB_USER", "postgres"),
		DBPassword:  getEnv("DB_PASSWORD", "postgres"),
		DBName:      getEnv("DB_NAME", "portfolio_gate"),
		DBSSLMode:   getEnv("DB_SSLMODE", "disable"),
		AutoMigrate: getEnvBool("AUTO_MIGRATE", false),

		JWTSecret:       getEnv("JWT_SECRET", ""),
		JWTIssuer:       getEnv("JWT_ISSUER", "portfolio-gate"),
		AccessTokenTTL:  getEnvDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL: getEnvDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),

		EmailVerificationTTL: getEnvDuration("EMAIL_VERIFICATION_TTL", 24*time.Hour),
		PasswordResetTTL:     getEnvDuration("PASSWORD_RESET_TTL", time.Hour),

		SMTPHost:           getEnv("SMTP_HOST", ""),
		SMTPPort:           getEnvInt("SMTP_PORT", 587),
		SMTPUser:           getEnv("SMTP_USER", ""),
		SMTPPassword:       getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:           getEnv("SMTP_FROM", "noreply@localhost"),
		SMTPFromName:       getEnv("SMTP_FROM_NAME", "Portfolio"),
		ContactNotifyEmail: getEnv("CONTACT_NOTIFY_EMAIL", ""),

		CookieSecure: getEnvBool("COOKIE_SECURE", false),

		Portal: PortalConfig{
			AppBaseURL:            strings.TrimRight(getEnv("APP_BASE_URL", "http://localhost:8080"), "/"),
			LandingPath:           getEnv("LANDING_PATH", "/index.html"),
			ProtectedPaths:        getEnvList("PROTECTED_PATHS", []string{"/portfolio.html"}),
			ResetReturnDelay:      getEnvDuration("RESET_RETURN_DELAY", 3*time.Second),
			LogoutRedirectDelay:   getEnvDuration("LOGOUT_REDIRECT_DELAY", time.Second),
			VerificationHintDelay: getEnvDuration("VERIFICATION_HINT_DELAY", 3*time.Second),
		},

		RateLimit: RateLimitConfig{
			Enabled:                  getEnvBool("RATE_LIMIT_ENABLED", true),
			AuthRequestsPerMinute:    getEnvInt("RATE_LIMIT_AUTH_REQUESTS", 10),
			AuthWindowMinutes:        getEnvInt("RATE_LIMIT_AUTH_WINDOW_MINUTES", 1),
			ResetRequestsPerWindow:   getEnvInt("RATE_LIMIT_RESET_REQUESTS", 3),
			ResetWindowMinutes:       getEnvInt("RATE_LIMIT_RESET_WINDOW_MINUTES", 60),
			VerifyRequestsPerWindow:  getEnvInt("RATE_LIMIT_VERIFY_REQUESTS", 5),
			VerifyWindowMinutes:      getEnvInt("RATE_LIMIT_VERIFY_WINDOW_MINUTES", 60),
			ContactRequestsPerWindow: getEnvInt("RATE_LIMIT_CONTACT_REQUESTS", 5),
			ContactWindowMinutes:     getEnvInt("RATE_LIMIT_CONTACT_WINDOW_MINUTES", 60),
			ProfileRequestsPerMinute: getEnvInt("RATE_LIMIT_PROFILE_REQUESTS", 30),
			ProfileWindowMinutes:     getEnvInt("RATE_LIMIT_PROFILE_WINDOW_MINUTES", 1),
		},

		SecurityHeaders: SecurityHeadersConfig{
			Enabled:            getEnvBool("SECURITY_HEADERS_ENABLED", true),
			CSP:                getEnv("SECURITY_HEADERS_CSP", "default-src 'self'"),
			HSTSMaxAge:         getEnvInt("SECURITY_HEADERS_HSTS_MAX_AGE", 31536000),
			FrameOptions:       getEnv("SECURITY_HEADERS_FRAME_OPTIONS", "DENY"),
			ContentTypeOptions: getEnv("SECURITY_HEADERS_CONTENT_TYPE_OPTIONS", "nosniff"),
			XSSProtection:      getEnv("SECURITY_HEADERS_XSS_PROTECTION", "1; mode=block"),
			ReferrerPolicy:     getEnv("SECURITY_HEADERS_REFERRER_POLICY", "strict-origin-when-cross-origin"),
			PermissionsPolicy:  getEnv("SECURITY_HEADERS_PERMISSIONS_POLICY", ""),
			CacheControl:       getEnv("SECURITY_HEADERS_CACHE_CONTROL", "no-store"),
		},

		Validation: ValidationConfig{
			MaxRequestBodySize:    int64(getEnvInt("MAX_REQUEST_BODY_SIZE", 1<<20)),
			StrictEmailValidation: getEnvBool("STRICT_EMAIL_VALIDATION", true),
			BlockDisposableEmail:  getEnvBool("BLOCK_DISPOSABLE_EMAIL", false),
		},

		PasswordPolicy: PasswordPolicyConfig{
			MinLength:        getEnvInt("PASSWORD_MIN_LENGTH", 6),
			RequireUppercase: getEnvBool("PASSWORD_REQUIRE_UPPERCASE", false),
			RequireLowercase: getEnvBool("PASSWORD_REQUIRE_LOWERCASE", false),
			RequireNumber:    getEnvBool("PASSWORD_REQUIRE_NUMBER", false),
			RequireSpecial:   getEnvBool("PASSWORD_REQUIRE_SPECIAL", false),
		},
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if !strings.HasPrefix(cfg.Portal.LandingPath, "/") {
		return nil, fmt.Errorf("LANDING_PATH must start with /")
	}

	return cfg, nil
}

// HasSMTP returns true if outbound email is configured.
func (c *Config) HasSMTP() bool {
	return c.SMTPHost != ""
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.ServerAddr, c.ServerPort)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnvLogLevel(key string, defaultValue slog.Level) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(os.Getenv(key))); err != nil {
		return defaultValue
	}
	return level
}
