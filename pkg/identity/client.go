package identity

import (
	"context"
	"fmt"
	"sync"

	"github.com/tendant/portfolio-gate/pkg/auth"
	"github.com/tendant/portfolio-gate/pkg/domain"
)

// Client is one page's view of the identity provider.
type Client struct {
	svc  *Service
	opts ClientOpts

	mu        sync.Mutex
	session   *domain.Session
	tokens    domain.TokenPair
	listeners []*listenerEntry
}

type listenerEntry struct {
	fn Listener
}

type subscription struct {
	c     *Client
	entry *listenerEntry
}

func (s *subscription) Unsubscribe() {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	for i, e := range s.c.listeners {
		if e == s.entry {
			s.c.listeners = append(s.c.listeners[:i], s.c.listeners[i+1:]...)
			return
		}
	}
}

var _ Provider = (*Client)(nil)

// Restore rebuilds the session from the page's stored tokens. An expired
// access token is renewed with the refresh token. Any failure leaves the
// client signed out and is not an error.
func (c *Client) Restore(ctx context.Context, accessToken, refreshToken string) {
	pair := domain.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}

	claims, err := c.svc.sessions.ValidateAccessToken(accessToken)
	if err != nil && refreshToken != "" {
		var renewed *domain.TokenPair
		renewed, err = c.svc.sessions.RefreshSession(ctx, refreshToken)
		if err == nil {
			pair = *renewed
			claims, err = c.svc.sessions.ValidateAccessToken(pair.AccessToken)
		}
	}
	if err != nil {
		c.svc.logger.Debug("session not restored", "error", err)
		return
	}

	fromToken, err := claims.Session()
	if err != nil {
		return
	}
	// Claims can lag behind verification, so the account is re-read.
	user, err := c.svc.accounts.GetUserByID(ctx, fromToken.UserID)
	if err != nil || user.Disabled {
		return
	}

	c.mu.Lock()
	c.session = user.Session()
	c.tokens = pair
	c.mu.Unlock()
}

// SignIn authenticates with email and password.
func (c *Client) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	user, err := c.svc.accounts.Authenticate(ctx, email, password)
	if err != nil {
		return nil, wrap(err)
	}
	return c.startSession(ctx, user)
}

// SignUp registers a new account and signs it in. The display name is part
// of the account before the first notification fires.
func (c *Client) SignUp(ctx context.Context, email, password, displayName string) (*domain.Session, error) {
	user, err := c.svc.accounts.Register(ctx, email, password, displayName)
	if err != nil {
		return nil, wrap(err)
	}
	return c.startSession(ctx, user)
}

func (c *Client) startSession(ctx context.Context, user *domain.User) (*domain.Session, error) {
	pair, err := c.svc.sessions.IssueSession(ctx, user.ID, auth.IssueSessionOpts{
		IP:        c.opts.IP,
		UserAgent: c.opts.UserAgent,
	})
	if err != nil {
		return nil, wrap(err)
	}

	session := user.Session()
	c.mu.Lock()
	c.session = session
	c.tokens = *pair
	c.mu.Unlock()

	c.notify(ctx)
	return session.Clone(), nil
}

// SignOut revokes the refresh token and clears the session. The local
// session is cleared even when revocation fails.
func (c *Client) SignOut(ctx context.Context) error {
	c.mu.Lock()
	refresh := c.tokens.RefreshToken
	hadSession := c.session != nil
	c.session = nil
	c.tokens = domain.TokenPair{}
	c.mu.Unlock()

	var err error
	if refresh != "" {
		err = c.svc.sessions.RevokeSession(ctx, refresh)
	}
	if hadSession {
		c.notify(ctx)
	}
	return wrap(err)
}

// SendPasswordResetEmail mails a reset link to the account with this email.
func (c *Client) SendPasswordResetEmail(ctx context.Context, email string) error {
	if err := auth.ValidateEmail(email, false, false); err != nil {
		return wrap(err)
	}

	user, err := c.svc.accounts.GetUserByEmail(ctx, email)
	if err != nil {
		return wrap(err)
	}

	token, err := c.svc.tokens.CreatePasswordResetToken(ctx, user.ID, auth.CreateVerificationTokenOpts{
		IP:        c.opts.IP,
		UserAgent: c.opts.UserAgent,
	})
	if err != nil {
		return wrap(err)
	}

	if err := c.svc.mailer.SendPasswordResetEmail(ctx, user.Email, c.svc.link(c.svc.config.ResetPath, token)); err != nil {
		c.svc.logger.Error("failed to send password reset email", "error", err, "user_id", user.ID)
		return wrap(fmt.Errorf("%w: %v", domain.ErrDeliveryFailed, err))
	}
	return nil
}

// SendVerificationEmail mails a verification link to the signed-in account,
// verified or not.
func (c *Client) SendVerificationEmail(ctx context.Context) error {
	session := c.CurrentSession()
	if session == nil {
		return wrap(domain.ErrNoActiveSession)
	}

	token, err := c.svc.tokens.CreateEmailVerificationToken(ctx, session.UserID, auth.CreateVerificationTokenOpts{
		IP:        c.opts.IP,
		UserAgent: c.opts.UserAgent,
	})
	if err != nil {
		return wrap(err)
	}

	if err := c.svc.mailer.SendVerificationEmail(ctx, session.Email, c.svc.link(c.svc.config.VerifyPath, token)); err != nil {
		c.svc.logger.Error("failed to send verification email", "error", err, "user_id", session.UserID)
		return wrap(fmt.Errorf("%w: %v", domain.ErrDeliveryFailed, err))
	}
	return nil
}

// ReloadSession re-reads the signed-in account. It does not notify
// subscribers.
func (c *Client) ReloadSession(ctx context.Context) (*domain.Session, error) {
	current := c.CurrentSession()
	if current == nil {
		return nil, wrap(domain.ErrNoActiveSession)
	}

	user, err := c.svc.accounts.GetUserByID(ctx, current.UserID)
	if err != nil {
		return nil, wrap(err)
	}

	session := user.Session()
	c.mu.Lock()
	c.session = session
	c.mu.Unlock()
	return session.Clone(), nil
}

// CurrentSession returns a copy of the session, nil when signed out.
func (c *Client) CurrentSession() *domain.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Clone()
}

// Tokens returns the access and refresh tokens to persist for the page.
// Both are empty when signed out.
func (c *Client) Tokens() domain.TokenPair {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tokens
}

// Subscribe registers fn and calls it immediately with the current session.
func (c *Client) Subscribe(ctx context.Context, fn Listener) Subscription {
	entry := &listenerEntry{fn: fn}
	c.mu.Lock()
	c.listeners = append(c.listeners, entry)
	session := c.session.Clone()
	c.mu.Unlock()

	fn(ctx, session)
	return &subscription{c: c, entry: entry}
}

func (c *Client) notify(ctx context.Context) {
	c.mu.Lock()
	listeners := make([]*listenerEntry, len(c.listeners))
	copy(listeners, c.listeners)
	session := c.session
	c.mu.Unlock()

	for _, l := range listeners {
		l.fn(ctx, session.Clone())
	}
}
