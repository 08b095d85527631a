package identity

import (
	"log/slog"
	"net/url"
)

// Default link paths embedded in outgoing emails.
const (
	DefaultVerifyPath = "/auth/verify-email"
	DefaultResetPath  = "/reset-password"
)

// Config holds the link settings for outgoing emails.
type Config struct {
	BaseURL    string
	VerifyPath string
	ResetPath  string
}

// Service wires the backends together and hands out per-page clients.
type Service struct {
	config   Config
	accounts Accounts
	sessions Sessions
	tokens   Tokens
	mailer   Mailer
	logger   *slog.Logger
}

// NewService creates a new identity service.
func NewService(config Config, accounts Accounts, sessions Sessions, tokens Tokens, mailer Mailer, logger *slog.Logger) *Service {
	if config.VerifyPath == "" {
		config.VerifyPath = DefaultVerifyPath
	}
	if config.ResetPath == "" {
		config.ResetPath = DefaultResetPath
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		config:   config,
		accounts: accounts,
		sessions: sessions,
		tokens:   tokens,
		mailer:   mailer,
		logger:   logger,
	}
}

// ClientOpts carries request details recorded with issued sessions and tokens.
type ClientOpts struct {
	IP        string
	UserAgent string
}

// NewClient returns a signed-out client for one page.
func (s *Service) NewClient(opts ClientOpts) *Client {
	return &Client{svc: s, opts: opts}
}

func (s *Service) link(path, token string) string {
	return s.config.BaseURL + path + "?token=" + url.QueryEscape(token)
}
