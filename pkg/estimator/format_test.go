package estimator

import "testing"

func TestFormatParameters(t *testing.T) {
	tests := []struct {
		name   string
		params int64
		want   string
	}{
		{"millions", 800_000_000, "800.00M"},
		{"billions", 1_500_000_000, "1.50B"},
		{"exactly one billion", 1_000_000_000, "1.00B"},
		{"just below one billion", 999_999_999, "1000.00M"},
		{"seven billion", 7_000_000_000, "7.00B"},
		{"small model", 125_000_000, "125.00M"},
		{"tiny model", 500_000, "0.50M"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatParameters(tt.params); got != tt.want {
				t.Errorf("formatParameters(%d) = %q, want %q", tt.params, got, tt.want)
			}
		})
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		name  string
		bytes float64
		want  string
	}{
		{"megabytes", 900_000_000, "858.31 MB"},
		{"gigabytes", 1_600_000_000, "1.49 GB"},
		{"exactly one GiB", 1 << 30, "1.00 GB"},
		{"just below one GiB", float64(1<<30) - 1, "1024.00 MB"},
		{"int4 of seven billion params", 7_000_000_000 * 0.5, "3.26 GB"},
		{"small", 1 << 20, "1.00 MB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatSize(tt.bytes); got != tt.want {
				t.Errorf("formatSize(%v) = %q, want %q", tt.bytes, got, tt.want)
			}
		})
	}
}
