// Package identity is the page-facing side of the identity provider. A Client
// holds one page's session and notifies subscribers whenever it changes.
package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/tendant/portfolio-gate/pkg/auth"
	"github.com/tendant/portfolio-gate/pkg/domain"
)

// Listener receives the current session, nil when signed out.
type Listener func(ctx context.Context, session *domain.Session)

// Subscription cancels a Listener registration.
type Subscription interface {
	Unsubscribe()
}

// Provider is the identity surface used by the page flow.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (*domain.Session, error)
	SignUp(ctx context.Context, email, password, displayName string) (*domain.Session, error)
	SignOut(ctx context.Context) error
	SendPasswordResetEmail(ctx context.Context, email string) error
	SendVerificationEmail(ctx context.Context) error
	ReloadSession(ctx context.Context) (*domain.Session, error)
	CurrentSession() *domain.Session
	// Subscribe calls fn immediately with the current session, then after
	// every change, on the caller's goroutine.
	Subscribe(ctx context.Context, fn Listener) Subscription
}

// Accounts is the account store behind the provider.
type Accounts interface {
	Register(ctx context.Context, email, password, name string) (*domain.User, error)
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
}

// Sessions issues and validates session tokens.
type Sessions interface {
	IssueSession(ctx context.Context, userID uuid.UUID, opts auth.IssueSessionOpts) (*domain.TokenPair, error)
	RefreshSession(ctx context.Context, refreshToken string) (*domain.TokenPair, error)
	RevokeSession(ctx context.Context, refreshToken string) error
	ValidateAccessToken(token string) (*auth.AccessTokenClaims, error)
}

// Tokens mints single-use email tokens.
type Tokens interface {
	CreateEmailVerificationToken(ctx context.Context, userID uuid.UUID, opts auth.CreateVerificationTokenOpts) (string, error)
	CreatePasswordResetToken(ctx context.Context, userID uuid.UUID, opts auth.CreateVerificationTokenOpts) (string, error)
}

// Mailer sends the provider's emails.
type Mailer interface {
	SendVerificationEmail(ctx context.Context, to, verifyURL string) error
	SendPasswordResetEmail(ctx context.Context, to, resetURL string) error
}

var (
	_ Accounts = (*auth.PasswordService)(nil)
	_ Sessions = (*auth.SessionService)(nil)
	_ Tokens   = (*auth.VerificationService)(nil)
)
