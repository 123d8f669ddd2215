package tui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme/palette helpers.
//
// The TUI must remain readable on both light and dark terminal backgrounds.
// Colors are lipgloss.AdaptiveColor values; the persisted theme preference
// decides which variant lipgloss picks.

const (
	themeLight = "light"
	themeDark  = "dark"
)

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

var (
	colorMuted      = ac("240", "243")
	colorChromeFg   = ac("240", "245")
	colorSelectedBg = ac("#e9e9e9", "#262626")
	colorSelectedFg = ac("235", "255")
	colorCardBorder = ac("250", "243")
	colorSurfaceBg  = ac("255", "235")
	colorSurfaceFg  = ac("235", "252")
	colorControlBg  = ac("252", "235")
	colorInputBg    = ac("254", "234")
	colorAccent     = ac("27", "62")
	colorAccentFg   = ac("255", "235")
	colorDirtyFg    = ac("166", "214")
	colorErrorBg    = ac("196", "160")
)

func styleMuted() lipgloss.Style {
	return faintIfDark(lipgloss.NewStyle().Foreground(colorMuted))
}

func styleHeader() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(colorSurfaceFg)
}

func styleSelected() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorSelectedFg).Background(colorSelectedBg).Bold(true)
}

func styleAccent() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorAccentFg).Background(colorAccent).Bold(true)
}

// applyColorProfilePreference sets Lip Gloss's color profile for the interactive TUI.
//
// termenv.EnvColorProfile respects CLICOLOR/CLICOLOR_FORCE, which can disable
// colors in a TUI by accident. Only NO_COLOR is honored; otherwise the
// terminal's capabilities win, upgraded when TERM/COLORTERM claim more.
func applyColorProfilePreference() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}

	profile := termenv.ColorProfile()
	term := strings.ToLower(strings.TrimSpace(os.Getenv("TERM")))
	colorterm := strings.ToLower(strings.TrimSpace(os.Getenv("COLORTERM")))
	if strings.Contains(colorterm, "truecolor") || strings.Contains(colorterm, "24bit") {
		if profile != termenv.Ascii {
			profile = termenv.TrueColor
		}
	} else if strings.Contains(term, "256color") {
		if profile == termenv.Ascii || profile == termenv.ANSI {
			profile = termenv.ANSI256
		}
	}
	lipgloss.SetColorProfile(profile)
}

// resolveTheme picks the theme to start with.
//
// Priority:
// 1) the persisted preference (config key "theme")
// 2) WEBIDE_TUI_THEME=light|dark
// 3) COLORFGBG heuristic ("15;0" = fg;bg)
// 4) Lip Gloss's own background detection
func resolveTheme(saved string) string {
	switch strings.ToLower(strings.TrimSpace(saved)) {
	case themeLight:
		return themeLight
	case themeDark:
		return themeDark
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv("WEBIDE_TUI_THEME"))) {
	case themeLight:
		return themeLight
	case themeDark:
		return themeDark
	}
	if v := strings.TrimSpace(os.Getenv("COLORFGBG")); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1])); err == nil {
			// xterm palette: 0-6 dark colors, 7-15 light colors.
			if bg < 7 {
				return themeDark
			}
			return themeLight
		}
	}
	if lipgloss.HasDarkBackground() {
		return themeDark
	}
	return themeLight
}

func applyTheme(theme string) {
	lipgloss.SetHasDarkBackground(theme != themeLight)
}

func otherTheme(theme string) string {
	if theme == themeLight {
		return themeDark
	}
	return themeLight
}
