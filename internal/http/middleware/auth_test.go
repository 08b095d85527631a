package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/tendant/portfolio-gate/pkg/auth"
)

type fakeValidator struct {
	claims map[string]*auth.AccessTokenClaims
}

func (f fakeValidator) ValidateAccessToken(token string) (*auth.AccessTokenClaims, error) {
	if c, ok := f.claims[token]; ok {
		return c, nil
	}
	return nil, errors.New("invalid token")
}

func newValidator(verifiedID, unverifiedID uuid.UUID) fakeValidator {
	return fakeValidator{claims: map[string]*auth.AccessTokenClaims{
		"verified": {
			RegisteredClaims: jwt.RegisteredClaims{Subject: verifiedID.String()},
			Email:            "ana@example.com",
			EmailVerified:    true,
		},
		"unverified": {
			RegisteredClaims: jwt.RegisteredClaims{Subject: unverifiedID.String()},
			Email:            "bob@example.com",
		},
		"bad-subject": {
			RegisteredClaims: jwt.RegisteredClaims{Subject: "not-a-uuid"},
		},
	}}
}

func TestAuth(t *testing.T) {
	verifiedID, unverifiedID := uuid.New(), uuid.New()
	validator := newValidator(verifiedID, unverifiedID)

	var gotID uuid.UUID
	handler := Auth(validator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = GetUserID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		header     string
		cookie     string
		wantStatus int
		wantID     uuid.UUID
	}{
		{"missing", "", "", http.StatusUnauthorized, uuid.Nil},
		{"bearer", "Bearer verified", "", http.StatusOK, verifiedID},
		{"lowercase scheme", "bearer verified", "", http.StatusOK, verifiedID},
		{"cookie", "", "unverified", http.StatusOK, unverifiedID},
		{"invalid", "Bearer nope", "", http.StatusUnauthorized, uuid.Nil},
		{"bad subject", "Bearer bad-subject", "", http.StatusUnauthorized, uuid.Nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotID = uuid.Nil
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "access_token", Value: tt.cookie})
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if gotID != tt.wantID {
				t.Errorf("user id = %v, want %v", gotID, tt.wantID)
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	verifiedID := uuid.New()
	validator := newValidator(verifiedID, uuid.New())

	var attached bool
	handler := OptionalAuth(validator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, attached = GetClaims(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	for _, tc := range []struct {
		header string
		want   bool
	}{
		{"", false},
		{"Bearer nope", false},
		{"Bearer verified", true},
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("%q: status = %d", tc.header, w.Code)
		}
		if attached != tc.want {
			t.Errorf("%q: claims attached = %v, want %v", tc.header, attached, tc.want)
		}
	}
}

func TestRequireVerified(t *testing.T) {
	validator := newValidator(uuid.New(), uuid.New())
	handler := Auth(validator)(RequireVerified()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	for token, want := range map[string]int{
		"verified":   http.StatusOK,
		"unverified": http.StatusForbidden,
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != want {
			t.Errorf("%s: status = %d, want %d", token, w.Code, want)
		}
	}
}
