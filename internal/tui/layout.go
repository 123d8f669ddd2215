package tui

import (
	"strings"

	xansi "github.com/charmbracelet/x/ansi"
)

// normalizePane forces s to be exactly width columns wide (ANSI-aware) and
// height lines tall, so panes line up under lipgloss.JoinHorizontal.
func normalizePane(s string, width, height int) string {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}

	lines := strings.Split(s, "\n")
	if height > 0 {
		if len(lines) > height {
			lines = lines[:height]
		}
		for len(lines) < height {
			lines = append(lines, "")
		}
	}
	for i, ln := range lines {
		lines[i] = fitWidth(ln, width)
	}
	return strings.Join(lines, "\n")
}

// fitWidth truncates or pads one line to exactly width columns.
func fitWidth(ln string, width int) string {
	if width <= 0 {
		return ""
	}
	// Bound the cost of StringWidth on very long lines.
	if len(ln) > 8192 {
		ln = xansi.Truncate(ln, width, "…")
	}
	w := xansi.StringWidth(ln)
	if w > width {
		ln = xansi.Truncate(ln, width, "…")
		w = xansi.StringWidth(ln)
	}
	if w < width {
		ln += strings.Repeat(" ", width-w)
	}
	return ln
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// scrollInto returns the smallest offset change that keeps cursor visible in
// a window of n rows.
func scrollInto(offset, cursor, n int) int {
	if n <= 0 {
		return 0
	}
	if cursor < offset {
		return cursor
	}
	if cursor >= offset+n {
		return cursor - n + 1
	}
	return offset
}
