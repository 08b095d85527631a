package middleware

import (
	"net/http"

	"github.com/tendant/portfolio-gate/internal/httputil"
)

// RequireVerified creates middleware that requires email verification.
// Must be used after Auth middleware.
func RequireVerified() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := GetClaims(r.Context())
			if !ok {
				httputil.Error(w, http.StatusUnauthorized, "authentication required")
				return
			}

			if !claims.EmailVerified {
				httputil.Error(w, http.StatusForbidden, "email verification required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
