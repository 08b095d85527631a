package auth

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"

	"github.com/tendant/portfolio-gate/pkg/domain"
)

// Disposable email domains rejected when blocking is enabled.
var disposableDomains = map[string]bool{
	"tempmail.com":      true,
	"10minutemail.com":  true,
	"guerrillamail.com": true,
	"mailinator.com":    true,
	"throwaway.email":   true,
}

// Email validation regex (stricter than RFC 5322 for practical use)
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)

const maxEmailLength = 254 // RFC 5321

// ValidateEmail validates an email address for format and length. Every
// failure wraps domain.ErrInvalidEmail.
func ValidateEmail(email string, strict bool, blockDisposable bool) error {
	if strings.TrimSpace(email) == "" {
		return invalidEmail("email address is required")
	}
	if len(email) > maxEmailLength {
		return invalidEmail(fmt.Sprintf("email address is too long (max %d characters)", maxEmailLength))
	}

	normalized := NormalizeEmail(email)

	addr, err := mail.ParseAddress(normalized)
	if err != nil || addr.Address != normalized {
		return invalidEmail("invalid email address format")
	}

	if strict && !emailRegex.MatchString(addr.Address) {
		return invalidEmail("invalid email address format")
	}

	if blockDisposable && disposableDomains[getDomain(addr.Address)] {
		return invalidEmail("disposable email addresses are not allowed")
	}

	return nil
}

// IsWellFormedEmail is the local check run before any network call. The
// domain must contain a dot.
func IsWellFormedEmail(email string) bool {
	if ValidateEmail(email, true, false) != nil {
		return false
	}
	return strings.Contains(getDomain(NormalizeEmail(email)), ".")
}

// NormalizeEmail normalizes an email address by lowercasing and trimming.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func invalidEmail(msg string) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidEmail, msg)
}

// getDomain extracts the domain from an email address.
func getDomain(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return ""
	}
	return strings.ToLower(parts[1])
}
