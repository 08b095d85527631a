package gate

import (
	"database/sql"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/tendant/portfolio-gate/internal/config"
	"github.com/tendant/portfolio-gate/internal/notification"
)

func TestValidateConfig(t *testing.T) {
	db := &sql.DB{}
	longSecret := strings.Repeat("s", 32)

	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"missing db", Config{App: &config.Config{JWTSecret: longSecret}}, "DB is required"},
		{"missing app", Config{DB: db}, "App config is required"},
		{"missing secret", Config{DB: db, App: &config.Config{}}, "JWT secret is required"},
		{"short secret", Config{DB: db, App: &config.Config{JWTSecret: "short"}}, "at least 32 characters"},
		{"ok", Config{DB: db, App: &config.Config{JWTSecret: longSecret}}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateConfig(&tt.cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultSender(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	if _, ok := DefaultSender(&config.Config{}, logger).(*notification.NoopSender); !ok {
		t.Error("expected the no-op sender without SMTP")
	}
	if _, ok := DefaultSender(&config.Config{SMTPHost: "smtp.example.com", SMTPPort: 587}, logger).(*notification.SMTPSender); !ok {
		t.Error("expected the SMTP sender when SMTP is configured")
	}
}
