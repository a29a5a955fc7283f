package cache

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Documented defaults. New takes both values explicitly; these exist for
// callers that build their configuration from scratch.
const (
	// DefaultDirectory is the default cache directory, relative to the
	// working directory of the run.
	DefaultDirectory = "cache"

	// DefaultFreshness is how long an entry stays fresh (24 hours).
	DefaultFreshness = 24 * time.Hour

	// minutesPerHour is used for duration formatting calculations.
	minutesPerHour = 60

	// hoursPerDay is used for duration formatting calculations.
	hoursPerDay = 24
)

// ErrInvalidFreshness is returned for zero or negative freshness durations.
var ErrInvalidFreshness = errors.New("freshness duration must be positive")

// ParseFreshness parses a freshness duration in either form:
//   - Integer hours: "24".
//   - Duration string: "36h", "90m", "1h30m".
func ParseFreshness(s string) (time.Duration, error) {
	if hours, err := strconv.Atoi(s); err == nil {
		if hours <= 0 {
			return 0, fmt.Errorf("%w: got %d hours", ErrInvalidFreshness, hours)
		}
		return time.Duration(hours) * time.Hour, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid freshness format: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: got %s", ErrInvalidFreshness, d)
	}
	return d, nil
}

// FormatDuration formats a duration in a human-readable way.
// Examples: "30s", "5m", "2h30m", "3d2h".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		return "-" + FormatDuration(-d)
	}
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
	if d < hoursPerDay*time.Hour {
		hours := int(d.Hours())
		minutes := int(d.Minutes()) % minutesPerHour
		if minutes == 0 {
			return fmt.Sprintf("%dh", hours)
		}
		return fmt.Sprintf("%dh%dm", hours, minutes)
	}
	days := int(d.Hours()) / hoursPerDay
	hours := int(d.Hours()) % hoursPerDay
	if hours == 0 {
		return fmt.Sprintf("%dd", days)
	}
	return fmt.Sprintf("%dd%dh", days, hours)
}
