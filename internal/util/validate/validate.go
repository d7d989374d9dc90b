// Package validate contains the pure field-level checks applied to untrusted
// request input before it reaches a repository. Every failure is an
// ErrValidation whose message is safe to surface to the client verbatim.
package validate

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/mkrupp/catalog-manager/internal/domain"
)

// DateLayout is the only calendar date format accepted anywhere in the system.
const DateLayout = "2006-01-02"

const allowedPunctuation = `.,!?'"-`

// Text checks that value is non-empty after trimming surrounding whitespace,
// within [minLen, maxLen] runes (measured after trimming), and built only
// from letters, digits, whitespace and basic punctuation (.,!?'"-).
// Returns the trimmed value.
func Text(value, fieldName string, minLen, maxLen int) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", domain.Validationf("%s cannot be empty.", fieldName)
	}

	if utf8.RuneCountInString(trimmed) < minLen {
		return "", domain.Validationf("%s must be at least %d characters long.", fieldName, minLen)
	}

	if utf8.RuneCountInString(trimmed) > maxLen {
		return "", domain.Validationf("%s cannot exceed %d characters.", fieldName, maxLen)
	}

	for _, r := range trimmed {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			continue
		}

		if strings.ContainsRune(allowedPunctuation, r) {
			continue
		}

		return "", domain.Validationf(
			"%s contains invalid characters. Only alphanumeric, spaces, and basic punctuation (%s) are allowed.",
			fieldName, allowedPunctuation,
		)
	}

	return trimmed, nil
}

// Date checks that value is a real calendar date in strict `YYYY-MM-DD` form:
// 4-digit year, 2-digit month, 2-digit day valid for that month and year.
// Returns the original string unchanged.
func Date(value, fieldName string) (string, error) {
	parsed, err := time.Parse(DateLayout, value)
	if err != nil || parsed.Format(DateLayout) != value {
		return "", domain.Validationf("%s must be in `YYYY-MM-DD` format.", fieldName)
	}

	return value, nil
}

// FutureDate checks Date and additionally rejects dates strictly before the
// current calendar date. Today itself is accepted. Only date granularity is
// compared, never time of day.
func FutureDate(value, fieldName string) (string, error) {
	validated, err := Date(value, fieldName)
	if err != nil {
		return "", err
	}

	parsed, _ := time.Parse(DateLayout, validated)

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	if parsed.Before(today) {
		return "", domain.Validationf("%s cannot be in the past.", fieldName)
	}

	return validated, nil
}

// Status checks that value, after trimming and lowercasing, is exactly
// "active" or "inactive". Returns the normalized value.
func Status(value string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))

	switch normalized {
	case domain.CatalogStatusActive, domain.CatalogStatusInactive:
		return normalized, nil
	default:
		return "", domain.Validationf(
			"Invalid status: '%s'. Allowed values are %s, %s.",
			value, domain.CatalogStatusActive, domain.CatalogStatusInactive,
		)
	}
}
