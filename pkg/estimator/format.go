package estimator

import "fmt"

// formatParameters renders a parameter count in millions below one billion
// and in billions at or above, two decimals, decimal base: "800.00M",
// "1.50B".
func formatParameters(params int64) string {
	if params >= 1e9 {
		return fmt.Sprintf("%.2fB", float64(params)/1e9)
	}
	return fmt.Sprintf("%.2fM", float64(params)/1e6)
}

// formatSize renders a byte count in gigabytes at or above one GiB and in
// megabytes below, two decimals, binary base: "1.49 GB", "858.31 MB".
func formatSize(bytes float64) string {
	if bytes >= 1<<30 {
		return fmt.Sprintf("%.2f GB", bytes/(1<<30))
	}
	return fmt.Sprintf("%.2f MB", bytes/(1<<20))
}
