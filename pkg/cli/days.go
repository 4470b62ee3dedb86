package cli

import "time"

// daysToDuration converts a fractional day count into a duration.
func daysToDuration(days float64) time.Duration {
	if days <= 0 {
		return 0
	}
	return time.Duration(days * 24 * float64(time.Hour))
}
