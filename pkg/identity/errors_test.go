package identity

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tendant/portfolio-gate/pkg/domain"
)

func TestWrap(t *testing.T) {
	tests := []struct {
		err  error
		code Code
	}{
		{domain.ErrUserNotFound, CodeUserNotFound},
		{domain.ErrInvalidCredentials, CodeWrongPassword},
		{domain.ErrSessionRevoked, CodeInvalidCredential},
		{domain.ErrUserAlreadyExists, CodeEmailInUse},
		{fmt.Errorf("%w: too short", domain.ErrWeakPassword), CodeWeakPassword},
		{fmt.Errorf("%w: bad", domain.ErrInvalidEmail), CodeInvalidEmail},
		{domain.ErrAccountDisabled, CodeUserDisabled},
		{domain.ErrAccountLocked, CodeTooManyRequests},
		{domain.ErrNoActiveSession, CodeNoCurrentUser},
		{domain.ErrDeliveryFailed, CodeDeliveryFailed},
		{errors.New("connection refused"), CodeInternal},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			err := wrap(tt.err)
			assert.Equal(t, tt.code, CodeOf(err))
			assert.ErrorIs(t, err, tt.err)
		})
	}

	assert.NoError(t, wrap(nil))

	already := newError(CodeUserDisabled, "x", nil)
	assert.Same(t, already, wrap(already))
}

func TestWrap_InternalKeepsRawMessage(t *testing.T) {
	var e *Error
	assert.True(t, errors.As(wrap(errors.New("pq: connection refused")), &e))
	assert.Equal(t, "pq: connection refused", e.Message)
}
