package paths

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// FormatTime renders t relative to now for project cards. Anything older than
// 30 days is shown as a plain date.
func FormatTime(t, now time.Time) string {
	diff := now.Sub(t)
	const (
		day   = 24 * time.Hour
		week  = 7 * day
		month = 30 * day
	)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return plural(int(diff/time.Minute), "minute")
	case diff < day:
		return plural(int(diff/time.Hour), "hour")
	case diff < week:
		return plural(int(diff/day), "day")
	case diff < month:
		return plural(int(diff/week), "week")
	default:
		return t.Format("2006-01-02")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

// FormatSize renders a byte count with binary units ("1.5 KiB").
func FormatSize(bytes int64) string {
	if bytes <= 0 {
		return "0 B"
	}
	return humanize.IBytes(uint64(bytes))
}
