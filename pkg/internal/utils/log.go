package utils

import (
	"strings"
	"unicode"
)

// sanitizeMaxLength truncates sanitized values so a hostile identifier
// cannot flood the logs.
const sanitizeMaxLength = 100

// SanitizeForLog escapes control characters in a user-supplied string so it
// cannot inject fake log lines, and truncates overlong values.
func SanitizeForLog(s string) string {
	if s == "" {
		return ""
	}

	var result strings.Builder
	result.Grow(len(s))

	for _, r := range s {
		switch {
		case r == '\n':
			result.WriteString("\\n")
		case r == '\r':
			result.WriteString("\\r")
		case r == '\t':
			result.WriteString("\\t")
		case r == '\\':
			result.WriteString("\\\\")
		case unicode.IsControl(r) || !unicode.IsPrint(r):
			result.WriteString("?")
		default:
			result.WriteRune(r)
		}
	}

	if result.Len() > sanitizeMaxLength {
		return result.String()[:sanitizeMaxLength] + "...[truncated]"
	}

	return result.String()
}
