// Package validation holds the input shape and password policy checks that run
// before anything is hashed or persisted.
package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/karanbsk/useradmin/internal/apperror"
)

const specialChars = `!@#$%^&*(),.?":{}|<>`

var (
	usernameRe = regexp.MustCompile(`^[A-Za-z0-9._-]{3,80}$`)
	// SQL control tokens that never appear in a legitimate username. This is a
	// boundary filter on top of parameterized queries, not a replacement for them.
	suspiciousRe = regexp.MustCompile(`(?i)(?:'|--|;|\bOR\b|\bAND\b|\bUNION\b|\bSELECT\b)`)
	emailRe      = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// Password checks the complexity policy: at least 8 characters with at least
// one uppercase letter, one lowercase letter, one digit and one special
// character. Returns nil when the candidate passes.
func Password(candidate string) error {
	if utf8.RuneCountInString(candidate) < 8 {
		return apperror.NewValidation("Password must be at least 8 characters long.")
	}
	var upper, lower, digit, special bool
	for _, r := range candidate {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(specialChars, r):
			special = true
		}
	}
	if !upper {
		return apperror.NewValidation("Password must contain at least one uppercase letter.")
	}
	if !lower {
		return apperror.NewValidation("Password must contain at least one lowercase letter.")
	}
	if !digit {
		return apperror.NewValidation("Password must contain at least one digit.")
	}
	if !special {
		return apperror.NewValidation("Password must contain at least one special character.")
	}
	return nil
}

// Username enforces the whitelist: 3-80 characters, letters, digits, dot,
// underscore and hyphen only.
func Username(username string) error {
	if !usernameRe.MatchString(username) {
		return apperror.NewValidation("Invalid username. Use 3-80 characters: letters, digits, . _ - only.")
	}
	return nil
}

// SuspiciousUsername reports whether the value matches SQL-injection
// heuristics (quotes, comment markers, boolean keywords).
func SuspiciousUsername(username string) bool {
	return suspiciousRe.MatchString(username)
}

// Email checks for a local part, an @ and a dotted domain.
func Email(email string) error {
	if !emailRe.MatchString(email) {
		return apperror.NewValidation("Invalid email address.")
	}
	return nil
}
