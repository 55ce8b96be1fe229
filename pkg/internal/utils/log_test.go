package utils

import (
	"strings"
	"testing"
)

func TestSanitizeForLog(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain", "microsoft/phi-2", "microsoft/phi-2"},
		{"newline", "a/b\ninjected", "a/b\\ninjected"},
		{"carriage return", "a/b\rx", "a/b\\rx"},
		{"tab", "a\tb", "a\\tb"},
		{"backslash", `a\b`, `a\\b`},
		{"control character", "a\x00b", "a?b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeForLog(tt.input); got != tt.want {
				t.Errorf("SanitizeForLog(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeForLogTruncates(t *testing.T) {
	long := strings.Repeat("x", 500)
	got := SanitizeForLog(long)
	if !strings.HasSuffix(got, "...[truncated]") {
		t.Errorf("Expected truncation marker, got %q", got[len(got)-20:])
	}
	if len(got) > 120 {
		t.Errorf("Sanitized value too long: %d", len(got))
	}
}
