package utils

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// HumanizeBytes formats a byte count into a readable IEC string, e.g. 1536 -> "1.5 KiB".
func HumanizeBytes(b uint64) string {
	return humanize.IBytes(b)
}

// HumanizeBytesCompact formats a byte count to compact units without space, e.g., 1536 -> "1.50K", 2.25 GB -> "2.25G".
func HumanizeBytesCompact(b uint64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
		TB = GB * 1024
	)
	switch {
	case b >= TB:
		return fmt.Sprintf("%.2fT", float64(b)/float64(TB))
	case b >= GB:
		return fmt.Sprintf("%.2fG", float64(b)/float64(GB))
	case b >= MB:
		return fmt.Sprintf("%.2fM", float64(b)/float64(MB))
	case b >= KB:
		return fmt.Sprintf("%.2fK", float64(b)/float64(KB))
	default:
		return fmt.Sprintf("%dB", b)
	}
}

// ParseBytes parses a human size such as "10MB" or "1.5 GiB".
func ParseBytes(s string) (uint64, error) {
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	return n, nil
}
