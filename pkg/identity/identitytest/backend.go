// Package identitytest provides an in-memory identity backend for tests.
package identitytest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/tendant/portfolio-gate/pkg/auth"
	"github.com/tendant/portfolio-gate/pkg/domain"
	"github.com/tendant/portfolio-gate/pkg/identity"
)

// Mail is an email the backend was asked to send.
type Mail struct {
	Kind string // "verification" or "reset"
	To   string
	URL  string
}

// Backend implements every identity backend interface in memory. Passwords
// are stored in clear text.
type Backend struct {
	mu        sync.Mutex
	users     map[uuid.UUID]*domain.User
	passwords map[uuid.UUID]string
	access    map[string]uuid.UUID
	refresh   map[string]uuid.UUID
	seq       int

	// MinPasswordLength mirrors the password policy. Defaults to 6.
	MinPasswordLength int
	// MailErr, when set, is returned by every send.
	MailErr error

	Sent  []Mail
	Calls map[string]int
}

var (
	_ identity.Accounts = (*Backend)(nil)
	_ identity.Sessions = (*Backend)(nil)
	_ identity.Tokens   = (*Backend)(nil)
	_ identity.Mailer   = (*Backend)(nil)
)

// New returns an empty backend.
func New() *Backend {
	return &Backend{
		users:             make(map[uuid.UUID]*domain.User),
		passwords:         make(map[uuid.UUID]string),
		access:            make(map[string]uuid.UUID),
		refresh:           make(map[string]uuid.UUID),
		MinPasswordLength: 6,
		Calls:             make(map[string]int),
	}
}

// NewService returns an identity service over b that discards logs.
func NewService(b *Backend) *identity.Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return identity.NewService(identity.Config{BaseURL: "http://portfolio.test"}, b, b, b, b, logger)
}

// AddUser creates an account directly.
func (b *Backend) AddUser(email, password, name string, verified bool) *domain.User {
	b.mu.Lock()
	defer b.mu.Unlock()
	u := &domain.User{
		ID:            uuid.New(),
		Email:         auth.NormalizeEmail(email),
		EmailVerified: verified,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	if name != "" {
		u.Name = &name
	}
	b.users[u.ID] = u
	b.passwords[u.ID] = password
	return cloneUser(u)
}

// Verify marks the account with this email as verified, as if the link in
// the verification email was followed.
func (b *Backend) Verify(email string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if u := b.byEmail(email); u != nil {
		u.EmailVerified = true
	}
}

// Disable disables the account with this email.
func (b *Backend) Disable(email string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if u := b.byEmail(email); u != nil {
		u.Disabled = true
	}
}

// CallCount returns how often a backend method was invoked.
func (b *Backend) CallCount(method string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.Calls[method]
}

// TotalCalls returns the number of backend invocations of any kind.
func (b *Backend) TotalCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.Calls {
		n += c
	}
	return n
}

// SentMail returns a copy of the mail sent so far.
func (b *Backend) SentMail() []Mail {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Mail(nil), b.Sent...)
}

func (b *Backend) Register(_ context.Context, email, password, name string) (*domain.User, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Calls["Register"]++

	if err := auth.ValidateEmail(email, true, false); err != nil {
		return nil, err
	}
	if len(password) < b.MinPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters long", domain.ErrWeakPassword, b.MinPasswordLength)
	}
	if b.byEmail(email) != nil {
		return nil, domain.ErrUserAlreadyExists
	}

	u := &domain.User{
		ID:        uuid.New(),
		Email:     auth.NormalizeEmail(email),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if name = strings.TrimSpace(name); name != "" {
		u.Name = &name
	}
	b.users[u.ID] = u
	b.passwords[u.ID] = password
	return cloneUser(u), nil
}

func (b *Backend) Authenticate(_ context.Context, email, password string) (*domain.User, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Calls["Authenticate"]++

	u := b.byEmail(email)
	if u == nil {
		return nil, domain.ErrUserNotFound
	}
	if u.Disabled {
		return nil, domain.ErrAccountDisabled
	}
	if b.passwords[u.ID] != password {
		return nil, domain.ErrInvalidCredentials
	}
	return cloneUser(u), nil
}

func (b *Backend) GetUserByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Calls["GetUserByID"]++

	u, ok := b.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (b *Backend) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Calls["GetUserByEmail"]++

	u := b.byEmail(email)
	if u == nil {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (b *Backend) IssueSession(_ context.Context, userID uuid.UUID, _ auth.IssueSessionOpts) (*domain.TokenPair, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Calls["IssueSession"]++

	if _, ok := b.users[userID]; !ok {
		return nil, domain.ErrUserNotFound
	}
	b.seq++
	pair := &domain.TokenPair{
		AccessToken:  fmt.Sprintf("access-%d", b.seq),
		RefreshToken: fmt.Sprintf("refresh-%d", b.seq),
		TokenType:    "Bearer",
		ExpiresAt:    time.Now().Add(auth.DefaultAccessTokenTTL),
	}
	b.access[pair.AccessToken] = userID
	b.refresh[pair.RefreshToken] = userID
	return pair, nil
}

func (b *Backend) RefreshSession(_ context.Context, refreshToken string) (*domain.TokenPair, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Calls["RefreshSession"]++

	userID, ok := b.refresh[refreshToken]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	b.seq++
	pair := &domain.TokenPair{
		AccessToken:  fmt.Sprintf("access-%d", b.seq),
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
	}
	b.access[pair.AccessToken] = userID
	return pair, nil
}

func (b *Backend) RevokeSession(_ context.Context, refreshToken string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Calls["RevokeSession"]++

	delete(b.refresh, refreshToken)
	return nil
}

// ExpireAccessTokens invalidates every access token, leaving refresh tokens.
func (b *Backend) ExpireAccessTokens() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.access = make(map[string]uuid.UUID)
}

func (b *Backend) ValidateAccessToken(token string) (*auth.AccessTokenClaims, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	userID, ok := b.access[token]
	if !ok {
		return nil, domain.ErrInvalidToken
	}
	u := b.users[userID]
	return &auth.AccessTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: userID.String()},
		Email:            u.Email,
		EmailVerified:    u.EmailVerified,
		Name:             u.DisplayName(),
	}, nil
}

func (b *Backend) CreateEmailVerificationToken(_ context.Context, userID uuid.UUID, _ auth.CreateVerificationTokenOpts) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Calls["CreateEmailVerificationToken"]++
	b.seq++
	return fmt.Sprintf("verify-%s-%d", userID, b.seq), nil
}

func (b *Backend) CreatePasswordResetToken(_ context.Context, userID uuid.UUID, _ auth.CreateVerificationTokenOpts) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Calls["CreatePasswordResetToken"]++
	b.seq++
	return fmt.Sprintf("reset-%s-%d", userID, b.seq), nil
}

func (b *Backend) SendVerificationEmail(_ context.Context, to, verifyURL string) error {
	return b.send("verification", to, verifyURL)
}

func (b *Backend) SendPasswordResetEmail(_ context.Context, to, resetURL string) error {
	return b.send("reset", to, resetURL)
}

func (b *Backend) send(kind, to, url string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Calls["Send"]++
	if b.MailErr != nil {
		return b.MailErr
	}
	b.Sent = append(b.Sent, Mail{Kind: kind, To: to, URL: url})
	return nil
}

func (b *Backend) byEmail(email string) *domain.User {
	email = auth.NormalizeEmail(email)
	for _, u := range b.users {
		if u.Email == email {
			return u
		}
	}
	return nil
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	return &c
}
