package middleware

import (
	"fmt"
	"regexp"
	"strings"
)

// Input validation helpers for the request layer. The listing core
// treats query values as opaque strings; anything shape-related is
// checked here before the core ever sees it.

var slugPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// ValidateTenantID validates tenant ID format
func ValidateTenantID(tenant string) error {
	if tenant == "" {
		return fmt.Errorf("tenant ID cannot be empty")
	}
	if !slugPattern.MatchString(tenant) {
		return fmt.Errorf("invalid tenant ID format (alphanumeric, dash, underscore only, max 64 chars)")
	}
	return nil
}

// ValidateProjectID validates project slug format
func ValidateProjectID(project string) error {
	if project == "" {
		return fmt.Errorf("project ID cannot be empty")
	}
	if !slugPattern.MatchString(project) {
		return fmt.Errorf("invalid project ID format (alphanumeric, dash, underscore only, max 64 chars)")
	}
	return nil
}

// ValidatePageSize clamps a caller-supplied page size for the
// summaries listing; the error listing's page size is fixed by server
// config and never passes through here.
func ValidatePageSize(size int) int {
	if size <= 0 {
		return 20 // default
	}
	if size > 100 {
		return 100 // max
	}
	return size
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")

	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}
