package middleware

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"
)

// Input validation and sanitization utilities

// MaxSourceLength caps the free-text source field
const MaxSourceLength = 256

// ValidateEmail accepts an empty value; otherwise it must be a bare address
func ValidateEmail(email string) error {
	if email == "" {
		return nil // Optional field
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return fmt.Errorf("invalid email: %w", err)
	}
	if addr.Address != email {
		return fmt.Errorf("invalid email: expected a bare address, got %q", email)
	}
	return nil
}

// ValidateSource checks length after sanitization
func ValidateSource(source string) error {
	if utf8.RuneCountInString(source) > MaxSourceLength {
		return fmt.Errorf("source exceeds %d characters", MaxSourceLength)
	}
	return nil
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Remove control characters
	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}

// ValidateLimit validates pagination limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 20 // default
	}
	if limit > 100 {
		return 100 // max limit
	}
	return limit
}
