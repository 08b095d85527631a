package auth

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/portfolio-gate/pkg/domain"
	"github.com/tendant/portfolio-gate/pkg/repository"
)

const verificationTokenLen = 32

// Default token lifetimes
const (
	DefaultEmailVerificationTTL = 24 * time.Hour
	DefaultPasswordResetTTL     = time.Hour
)

type VerificationConfig struct {
	EmailVerificationTTL time.Duration
	PasswordResetTTL     time.Duration
}

// VerificationService issues and redeems email verification and password
// reset tokens.
type VerificationService struct {
	config VerificationConfig
	db     *sql.DB
	tokens *repository.VerificationTokensRepository
	users  *repository.UsersRepository
}

type CreateVerificationTokenOpts struct {
	IP        string
	UserAgent string
}

func NewVerificationService(
	config VerificationConfig,
	db *sql.DB,
	tokens *repository.VerificationTokensRepository,
	users *repository.UsersRepository,
) *VerificationService {
	if config.EmailVerificationTTL == 0 {
		config.EmailVerificationTTL = DefaultEmailVerificationTTL
	}
	if config.PasswordResetTTL == 0 {
		config.PasswordResetTTL = DefaultPasswordResetTTL
	}
	return &VerificationService{
		config: config,
		db:     db,
		tokens: tokens,
		users:  users,
	}
}

// CreateEmailVerificationToken creates a new email verification token for a user.
// Any still-active token of the same kind is revoked first.
func (s *VerificationService) CreateEmailVerificationToken(ctx context.Context, userID uuid.UUID, opts CreateVerificationTokenOpts) (string, error) {
	return s.createToken(ctx, userID, domain.TokenKindEmailVerification, s.config.EmailVerificationTTL, opts)
}

// CreatePasswordResetToken creates a new password reset token for a user.
// Any still-active token of the same kind is revoked first.
func (s *VerificationService) CreatePasswordResetToken(ctx context.Context, userID uuid.UUID, opts CreateVerificationTokenOpts) (string, error) {
	return s.createToken(ctx, userID, domain.TokenKindPasswordReset, s.config.PasswordResetTTL, opts)
}

func (s *VerificationService) createToken(ctx context.Context, userID uuid.UUID, kind domain.VerificationTokenKind, ttl time.Duration, opts CreateVerificationTokenOpts) (string, error) {
	rawToken, err := GenerateToken(verificationTokenLen)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	metadata, err := json.Marshal(map[string]string{
		"ip":         opts.IP,
		"user_agent": opts.UserAgent,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal metadata: %w", err)
	}

	now := time.Now()
	token := &domain.VerificationToken{
		ID:        uuid.New(),
		UserID:    userID,
		TokenHash: HashToken(rawToken),
		Kind:      kind,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
		Metadata:  metadata,
	}

	err = repository.Tx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.tokens.RevokeActiveTokensTx(ctx, tx, userID, kind); err != nil {
			return fmt.Errorf("failed to revoke active tokens: %w", err)
		}
		if err := s.tokens.CreateTx(ctx, tx, token); err != nil {
			return fmt.Errorf("failed to create token: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	return rawToken, nil
}

// VerifyEmailToken consumes an email verification token and marks the
// user's email as verified. It returns the user ID.
func (s *VerificationService) VerifyEmailToken(ctx context.Context, rawToken string) (uuid.UUID, error) {
	token, err := s.lookup(ctx, rawToken, domain.TokenKindEmailVerification)
	if err != nil {
		return uuid.Nil, err
	}

	err = repository.Tx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.tokens.MarkConsumedTx(ctx, tx, token.ID); err != nil {
			return fmt.Errorf("failed to consume token: %w", err)
		}
		if err := s.users.MarkEmailVerifiedTx(ctx, tx, token.UserID); err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	return token.UserID, nil
}

// ValidatePasswordResetToken checks a password reset token without consuming
// it and returns the user ID.
func (s *VerificationService) ValidatePasswordResetToken(ctx context.Context, rawToken string) (uuid.UUID, error) {
	token, err := s.lookup(ctx, rawToken, domain.TokenKindPasswordReset)
	if err != nil {
		return uuid.Nil, err
	}
	return token.UserID, nil
}

// ConsumePasswordResetToken marks a password reset token as consumed.
func (s *VerificationService) ConsumePasswordResetToken(ctx context.Context, rawToken string) error {
	token, err := s.lookup(ctx, rawToken, domain.TokenKindPasswordReset)
	if err != nil {
		return err
	}
	return s.tokens.MarkConsumed(ctx, token.ID)
}

func (s *VerificationService) lookup(ctx context.Context, rawToken string, kind domain.VerificationTokenKind) (*domain.VerificationToken, error) {
	if rawToken == "" {
		return nil, domain.ErrVerificationTokenInvalid
	}

	token, err := s.tokens.GetByTokenHash(ctx, HashToken(rawToken), kind)
	if err != nil {
		return nil, domain.ErrVerificationTokenInvalid
	}

	return token, checkToken(token)
}

func checkToken(token *domain.VerificationToken) error {
	if token.IsValid() {
		return nil
	}
	if token.ConsumedAt != nil {
		return domain.ErrVerificationTokenConsumed
	}
	return domain.ErrVerificationTokenExpired
}
