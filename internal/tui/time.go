package tui

import (
	"fmt"
	"time"

	"github.com/mrz1836/bwckit/internal/clock"
)

// DefaultClock supplies "now" for relative time rendering. Tests swap it
// for a fixed clock.
//
//nolint:gochecknoglobals // Package-level default for dependency injection
var DefaultClock clock.Clock = clock.RealClock{}

// RelativeTime renders a timestamp as "2 hours ago" style text for the
// status table's UPDATED column.
func RelativeTime(t time.Time) string {
	return RelativeTimeWith(t, DefaultClock)
}

// RelativeTimeWith is RelativeTime with an explicit clock.
func RelativeTimeWith(t time.Time, c clock.Clock) string {
	diff := c.Now().Sub(t)
	if diff < 0 {
		// clock skew between hosts sharing a bwc home
		diff = 0
	}

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return pluralize(int(diff.Minutes()), "minute")
	case diff < 24*time.Hour:
		return pluralize(int(diff.Hours()), "hour")
	case diff < 7*24*time.Hour:
		return pluralize(int(diff.Hours()/24), "day")
	default:
		return pluralize(int(diff.Hours()/(24*7)), "week")
	}
}

func pluralize(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
