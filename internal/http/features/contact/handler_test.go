package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/portfolio-gate/internal/http/middleware"
	"github.com/tendant/portfolio-gate/pkg/auth"
	"github.com/tendant/portfolio-gate/pkg/contact"
	"github.com/tendant/portfolio-gate/pkg/domain"
	"github.com/tendant/portfolio-gate/pkg/profile"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const validForm = `{"name":"Ana","email":"ana@example.com","subject":"Hi","message":"Loved the portfolio."}`

func TestSubmit_Anonymous(t *testing.T) {
	store := profile.NewMemoryStore()
	var outcomes []bool
	h := NewHandler(discard(), contact.NewService(store, nil, "", discard()), func(ok bool) { outcomes = append(outcomes, ok) })

	req := httptest.NewRequest(http.MethodPost, "/v1/contact", bytes.NewBufferString(validForm))
	req.Header.Set("User-Agent", "test-agent")
	rec := httptest.NewRecorder()
	h.Submit(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp SubmitResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, contact.SuccessMessage, resp.Message)

	subs := store.ContactSubmissions()
	require.Len(t, subs, 1)
	assert.Equal(t, domain.Anonymous, subs[0].Requester.UserID)
	assert.Equal(t, "test-agent", subs[0].Requester.UserAgent)
	assert.Equal(t, []bool{true}, outcomes)
}

func TestSubmit_SignedInThroughOptionalAuth(t *testing.T) {
	store := profile.NewMemoryStore()
	h := NewHandler(discard(), contact.NewService(store, nil, "", discard()), nil)

	userID := uuid.New()
	claims := &auth.AccessTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: userID.String()},
		Email:            "ana@example.com",
		EmailVerified:    true,
		Name:             "Ana",
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/contact", bytes.NewBufferString(validForm))
	req = req.WithContext(context.WithValue(req.Context(), middleware.ClaimsKey, claims))
	rec := httptest.NewRecorder()
	h.Submit(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	subs := store.ContactSubmissions()
	require.Len(t, subs, 1)
	assert.Equal(t, userID.String(), subs[0].Requester.UserID)
	assert.Equal(t, 1, store.CountActivities(domain.ActivityContactFormSubmitted))
}

func TestSubmit_Validation(t *testing.T) {
	store := profile.NewMemoryStore()
	h := NewHandler(discard(), contact.NewService(store, nil, "", discard()), nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/contact", bytes.NewBufferString(`{"name":"","email":"nope","message":""}`))
	rec := httptest.NewRecorder()
	h.Submit(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp ValidationResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Contains(t, resp.Fields, "name")
	assert.Contains(t, resp.Fields, "email")
	assert.Contains(t, resp.Fields, "message")
	assert.Empty(t, store.ContactSubmissions())
}

type failingSubmitter struct{}

func (failingSubmitter) Submit(context.Context, contact.Form, contact.Meta) (*domain.ContactSubmission, error) {
	return nil, errors.New("save contact submission: connection refused")
}

func TestSubmit_StoreFailure(t *testing.T) {
	var outcomes []bool
	h := NewHandler(discard(), failingSubmitter{}, func(ok bool) { outcomes = append(outcomes, ok) })

	req := httptest.NewRequest(http.MethodPost, "/v1/contact", bytes.NewBufferString(validForm))
	rec := httptest.NewRecorder()
	h.Submit(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, contact.FailureMessage, resp["error"])
	assert.Equal(t, []bool{false}, outcomes)
}
