package middleware

import (
	"fmt"
	"net/http"

	"github.com/tendant/portfolio-gate/internal/config"
)

type header struct {
	name  string
	value string
}

// SecurityHeaders sets the configured response security headers. Page flow
// and profile replies depend on the session cookies, so CacheControl keeps
// them out of shared caches.
func SecurityHeaders(cfg config.SecurityHeadersConfig) func(http.Handler) http.Handler {
	if !cfg.Enabled {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	headers := securityHeaders(cfg)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, h := range headers {
				w.Header().Set(h.name, h.value)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// securityHeaders resolves cfg once. Empty values are skipped.
func securityHeaders(cfg config.SecurityHeadersConfig) []header {
	var hsts string
	if cfg.HSTSMaxAge > 0 {
		hsts = fmt.Sprintf("max-age=%d; includeSubDomains", cfg.HSTSMaxAge)
	}

	all := []header{
		{"Content-Security-Policy", cfg.CSP},
		{"Strict-Transport-Security", hsts},
		{"X-Frame-Options", cfg.FrameOptions},
		{"X-Content-Type-Options", cfg.ContentTypeOptions},
		{"X-XSS-Protection", cfg.XSSProtection},
		{"Referrer-Policy", cfg.ReferrerPolicy},
		{"Permissions-Policy", cfg.PermissionsPolicy},
		{"Cache-Control", cfg.CacheControl},
	}
	out := all[:0]
	for _, h := range all {
		if h.value != "" {
			out = append(out, h)
		}
	}
	return out
}
