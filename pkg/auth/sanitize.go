package auth

import (
	"html"
	"strings"
	"unicode"
)

// SanitizeInput sanitizes user input by escaping HTML and removing control characters.
func SanitizeInput(input string) string {
	// Remove control characters (except newline and tab)
	cleaned := removeControlChars(input)

	// HTML escape to prevent XSS
	return html.EscapeString(cleaned)
}

// SanitizeName sanitizes a name field (unicode-friendly, allows letters and spaces).
func SanitizeName(name string) string {
	// Trim whitespace
	name = strings.TrimSpace(name)

	// Remove control characters
	name = removeControlChars(name)

	// HTML escape for safety
	return html.EscapeString(name)
}

// SanitizeFields sanitizes every value of a free-form field map, trimming
// surrounding whitespace. Keys are kept as-is.
func SanitizeFields(fields map[string]string) map[string]string {
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		out[k] = SanitizeInput(strings.TrimSpace(v))
	}
	return out
}

// removeControlChars removes control characters except newline and tab.
func removeControlChars(s string) string {
	return strings.Map(func(r rune) rune {
		// Keep newline, carriage return, and tab
		if r == '\n' || r == '\r' || r == '\t' {
			return r
		}
		// Remove other control characters
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}
