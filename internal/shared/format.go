package shared

import "fmt"

// FormatBytes renders a byte count with binary prefixes: "0B", "512B",
// "1.00KB", "1.00GB".
func FormatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%dB", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f%s", float64(n)/float64(div), []string{"KB", "MB", "GB", "TB", "PB", "EB"}[exp])
}

// FormatDuration renders a duration given in seconds: "45s", "2m5s", "1h2m".
// Sub-minute precision is dropped once the duration reaches an hour.
func FormatDuration(secs float64) string {
	s := int64(secs)
	if s < 0 {
		s = 0
	}
	switch {
	case s < 60:
		return fmt.Sprintf("%ds", s)
	case s < 3600:
		return fmt.Sprintf("%dm%ds", s/60, s%60)
	default:
		return fmt.Sprintf("%dh%dm", s/3600, (s%3600)/60)
	}
}
