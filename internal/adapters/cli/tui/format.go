package tui

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// FormatCount formats a count with thousands separators
// Examples: 892 -> "892", 1234 -> "1,234"
func FormatCount(count int) string {
	return humanize.Comma(int64(count))
}

// FormatRuntime formats seconds as a short duration
// Examples: 0.4 -> "400ms", 75.2 -> "1m15s"
func FormatRuntime(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second))
	switch {
	case d < time.Second:
		return d.Round(time.Millisecond).String()
	case d < time.Minute:
		return d.Round(100 * time.Millisecond).String()
	default:
		return d.Round(time.Second).String()
	}
}

// FormatWhen formats a timestamp relative to now, "---" when unset
func FormatWhen(t time.Time) string {
	if t.IsZero() {
		return "---"
	}
	return humanize.Time(t)
}

// FormatRate formats rows per second
func FormatRate(rows int, seconds float64) string {
	if seconds <= 0 {
		return "---"
	}
	return fmt.Sprintf("%s rows/s", humanize.FormatFloat("#,###.#", float64(rows)/seconds))
}
