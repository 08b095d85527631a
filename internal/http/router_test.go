package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tendant/portfolio-gate/internal/config"
	"github.com/tendant/portfolio-gate/pkg/auth"
	"github.com/tendant/portfolio-gate/pkg/contact"
	"github.com/tendant/portfolio-gate/pkg/identity/identitytest"
	"github.com/tendant/portfolio-gate/pkg/profile"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := profile.NewMemoryStore()
	return NewRouter(RouterConfig{
		Logger:   logger,
		Identity: identitytest.NewService(identitytest.New()),
		SessionService: auth.NewSessionService(auth.SessionConfig{
			JWTSecret: []byte("test-secret-at-least-32-characters!!"),
			Issuer:    "portfolio-gate",
		}, nil, nil),
		ProfileStore:   store,
		ContactService: contact.NewService(store, nil, "", logger),
		Portal: config.PortalConfig{
			LandingPath:    "/index.html",
			ProtectedPaths: []string{"/work.html"},
		},
		Validation:        config.ValidationConfig{MaxRequestBodySize: 1 << 20},
		MinPasswordLength: 6,
	})
}

func TestRouter_Routes(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{"health", http.MethodGet, "/health", "", http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", "", http.StatusOK},
		{"page", http.MethodGet, "/v1/page?path=/work.html", "", http.StatusOK},
		{"tab", http.MethodPost, "/v1/auth/tab", `{"tab":"signup"}`, http.StatusOK},
		{"me requires auth", http.MethodGet, "/v1/me", "", http.StatusUnauthorized},
		{"activity requires auth", http.MethodGet, "/v1/me/activity", "", http.StatusUnauthorized},
		{"logout all requires auth", http.MethodPost, "/v1/auth/logout/all", "", http.StatusUnauthorized},
		{"contact anonymous", http.MethodPost, "/v1/contact", `{"name":"Ana","email":"ana@example.com","message":"Hello"}`, http.StatusCreated},
		{"unknown route", http.MethodGet, "/v1/nope", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body io.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			req := httptest.NewRequest(tt.method, tt.path, body)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("%s %s: status = %d, want %d", tt.method, tt.path, rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestRouter_PageGatesProtectedPath(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/page?path=/work.html", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var resp struct {
		ContentVisible bool `json:"content_visible"`
		LoginPrompt    bool `json:"login_prompt"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ContentVisible || !resp.LoginPrompt {
		t.Errorf("anonymous visitor should see the login prompt, got %+v", resp)
	}
}
