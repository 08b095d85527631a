package config

import (
	"log/slog"
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	// Set required JWT_SECRET
	os.Setenv("JWT_SECRET", "test-secret-key")
	defer os.Unsetenv("JWT_SECRET")

	// Clear any other env vars that might interfere
	envVars := []string{"SERVER_ADDR", "SERVER_PORT", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSLMODE"}
	for _, v := range envVars {
		os.Unsetenv(v)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Check defaults
	if cfg.ServerAddr != "0.0.0.0" {
		t.Errorf("ServerAddr = %q, want %q", cfg.ServerAddr, "0.0.0.0")
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d, want %d", cfg.ServerPort, 8080)
	}
	if cfg.DBHost != "localhost" {
		t.Errorf("DBHost = %q, want %q", cfg.DBHost, "localhost")
	}
	if cfg.DBPort != 25432 {
		t.Errorf("DBPort = %d, want %d", cfg.DBPort, 25432)
	}
	if cfg.DBSSLMode != "disable" {
		t.Errorf("DBSSLMode = %q, want %q", cfg.DBSSLMode, "disable")
	}
	if cfg.AccessTokenTTL != 15*time.Minute {
		t.Errorf("AccessTokenTTL = %v, want %v", cfg.AccessTokenTTL, 15*time.Minute)
	}
	if cfg.RefreshTokenTTL != 7*24*time.Hour {
		t.Errorf("RefreshTokenTTL = %v, want %v", cfg.RefreshTokenTTL, 7*24*time.Hour)
	}
}

func TestLoad_RequiredJWTSecret(t *testing.T) {
	os.Unsetenv("JWT_SECRET")

	_, err := Load()
	if err == nil {
		t.Error("Load should fail when JWT_SECRET is not set")
	}
}

func TestLoad_CustomValues(t *testing.T) {
	os.Setenv("JWT_SECRET", "custom-secret")
	os.Setenv("SERVER_PORT", "9090")
	os.Setenv("DB_HOST", "db.example.com")
	os.Setenv("ACCESS_TOKEN_TTL", "30m")
	defer func() {
		os.Unsetenv("JWT_SECRET")
		os.Unsetenv("SERVER_PORT")
		os.Unsetenv("DB_HOST")
		os.Unsetenv("ACCESS_TOKEN_TTL")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ServerPort != 9090 {
		t.Errorf("ServerPort = %d, want %d", cfg.ServerPort, 9090)
	}
	if cfg.DBHost != "db.example.com" {
		t.Errorf("DBHost = %q, want %q", cfg.DBHost, "db.example.com")
	}
	if cfg.AccessTokenTTL != 30*time.Minute {
		t.Errorf("AccessTokenTTL = %v, want %v", cfg.AccessTokenTTL, 30*time.Minute)
	}
}

func TestHasSMTP(t *testing.T) {
	if (&Config{}).HasSMTP() {
		t.Error("HasSMTP() should be false without SMTP_HOST")
	}
	if !(&Config{SMTPHost: "smtp.example.com"}).HasSMTP() {
		t.Error("HasSMTP() should be true with SMTP_HOST")
	}
}

func TestLoad_PortalDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-key")
	t.Setenv("LANDING_PATH", "")
	t.Setenv("PROTECTED_PATHS", "")
	t.Setenv("PASSWORD_MIN_LENGTH", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Portal.LandingPath != "/index.html" {
		t.Errorf("LandingPath = %q, want /index.html", cfg.Portal.LandingPath)
	}
	if cfg.Portal.ResetReturnDelay != 3*time.Second {
		t.Errorf("ResetReturnDelay = %v, want 3s", cfg.Portal.ResetReturnDelay)
	}
	if cfg.Portal.LogoutRedirectDelay != time.Second {
		t.Errorf("LogoutRedirectDelay = %v, want 1s", cfg.Portal.LogoutRedirectDelay)
	}
	if cfg.Portal.VerificationHintDelay != 3*time.Second {
		t.Errorf("VerificationHintDelay = %v, want 3s", cfg.Portal.VerificationHintDelay)
	}
	if cfg.PasswordPolicy.MinLength != 6 {
		t.Errorf("PasswordPolicy.MinLength = %d, want 6", cfg.PasswordPolicy.MinLength)
	}
	if len(cfg.Portal.ProtectedPaths) != 1 || cfg.Portal.ProtectedPaths[0] != "/portfolio.html" {
		t.Errorf("ProtectedPaths = %v", cfg.Portal.ProtectedPaths)
	}
}

func TestLoad_InvalidLandingPath(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-key")
	t.Setenv("LANDING_PATH", "index.html")

	if _, err := Load(); err == nil {
		t.Error("Load should reject a relative LANDING_PATH")
	}
}

func TestGetEnvList(t *testing.T) {
	t.Setenv("TEST_LIST", " /a.html, ,/b.html ")

	got := getEnvList("TEST_LIST", nil)
	if len(got) != 2 || got[0] != "/a.html" || got[1] != "/b.html" {
		t.Errorf("getEnvList() = %v", got)
	}
	if def := getEnvList("TEST_LIST_UNSET", []string{"x"}); len(def) != 1 || def[0] != "x" {
		t.Errorf("getEnvList() default = %v", def)
	}
}

func TestGetEnvLogLevel(t *testing.T) {
	t.Setenv("TEST_LEVEL", "debug")
	if got := getEnvLogLevel("TEST_LEVEL", slog.LevelInfo); got != slog.LevelDebug {
		t.Errorf("getEnvLogLevel() = %v, want DEBUG", got)
	}
	t.Setenv("TEST_LEVEL", "loud")
	if got := getEnvLogLevel("TEST_LEVEL", slog.LevelWarn); got != slog.LevelWarn {
		t.Errorf("getEnvLogLevel() = %v, want WARN", got)
	}
}

func TestGetEnvBool_InvalidValue(t *testing.T) {
	t.Setenv("TEST_BOOL", "maybe")
	if !getEnvBool("TEST_BOOL", true) {
		t.Error("getEnvBool should return default for invalid value")
	}
}

func TestGetEnvInt_InvalidValue(t *testing.T) {
	os.Setenv("TEST_INT", "not-a-number")
	defer os.Unsetenv("TEST_INT")

	result := getEnvInt("TEST_INT", 42)
	if result != 42 {
		t.Errorf("getEnvInt should return default for invalid value, got %d", result)
	}
}

func TestGetEnvDuration_InvalidValue(t *testing.T) {
	os.Setenv("TEST_DURATION", "invalid")
	defer os.Unsetenv("TEST_DURATION")

	result := getEnvDuration("TEST_DURATION", 5*time.Minute)
	if result != 5*time.Minute {
		t.Errorf("getEnvDuration should return default for invalid value, got %v", result)
	}
}
