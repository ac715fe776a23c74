package utils

import "strconv"

const (
	defaultTrailingDays = 7
	maxTrailingDays     = 365
)

// ParseTrailingDays interprets the "days" query parameter for the stats
// endpoints. Empty or unparsable input falls back to a 7-day window; parsed
// values are clamped to [1, 365].
func ParseTrailingDays(raw string) int {
	if raw == "" {
		return defaultTrailingDays
	}
	days, err := strconv.Atoi(raw)
	if err != nil {
		return defaultTrailingDays
	}
	if days < 1 {
		return 1
	}
	if days > maxTrailingDays {
		return maxTrailingDays
	}
	return days
}
