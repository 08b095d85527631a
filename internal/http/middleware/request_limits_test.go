package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tendant/portfolio-gate/internal/httputil"
)

type contactForm struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

func TestRequestSizeLimit(t *testing.T) {
	const limit = 256

	handler := RequestSizeLimit(limit)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var form contactForm
		if !httputil.DecodeJSON(w, r, &form) {
			return
		}
		httputil.JSON(w, http.StatusCreated, map[string]string{"email": form.Email})
	}))

	body := func(message string) string {
		return `{"name":"Ana","email":"ana@example.com","message":"` + message + `"}`
	}

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"short message", body("Hello there"), http.StatusCreated},
		{"message over the limit", body(strings.Repeat("a", limit)), http.StatusRequestEntityTooLarge},
		{"malformed json", `{"name":`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/contact", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("got status %d, want %d (%s)", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestRequestSizeLimit_Disabled(t *testing.T) {
	var read int
	handler := RequestSizeLimit(0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		n, _ := buf.ReadFrom(r.Body)
		read = int(n)
	}))

	req := httptest.NewRequest(http.MethodPost, "/v1/contact", bytes.NewReader(make([]byte, 4096)))
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if read != 4096 {
		t.Errorf("read %d bytes, want 4096", read)
	}
}

func TestRequestSizeLimit_NoBody(t *testing.T) {
	called := false
	handler := RequestSizeLimit(16)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/page", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if !called {
		t.Error("GET without a body should pass through")
	}
}
