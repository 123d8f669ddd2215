package tui

import (
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
)

var (
	mdRendererMu sync.Mutex
	// Cached by wrap width + style. glamour.WithAutoStyle can block on terminal
	// background queries, so the style is always explicit.
	mdRenderers = map[string]*glamour.TermRenderer{}
)

// renderMarkdown renders md for the preview pane. Rendering errors fall back
// to the raw text.
func renderMarkdown(md string, width int, theme string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	if width < 10 {
		width = 10
	}

	key := theme + ":" + strconv.Itoa(width)
	mdRendererMu.Lock()
	r := mdRenderers[key]
	mdRendererMu.Unlock()

	if r == nil {
		cfg := markdownStyleConfig(theme)
		zero := uint(0)
		cfg.Document.Margin = &zero
		rr, err := glamour.NewTermRenderer(
			glamour.WithStyles(cfg),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return md
		}
		mdRendererMu.Lock()
		if existing := mdRenderers[key]; existing != nil {
			r = existing
		} else {
			mdRenderers[key] = rr
			r = rr
		}
		mdRendererMu.Unlock()
	}

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

func markdownStyleConfig(theme string) ansi.StyleConfig {
	cfg := styles.DarkStyleConfig
	if theme == themeLight {
		cfg = styles.LightStyleConfig
	}
	applyMarkdownPalette(&cfg, theme)
	return cfg
}

func applyMarkdownPalette(cfg *ansi.StyleConfig, theme string) {
	headingColor := mdColor(colorSurfaceFg, theme)
	cfg.Heading.Color = headingColor
	cfg.H1.Color = headingColor
	cfg.H2.Color = headingColor
	cfg.H3.Color = headingColor

	linkColor := mdColor(colorAccent, theme)
	cfg.Link.Color = linkColor
	cfg.Link.Underline = mdBoolPtr(true)
	cfg.LinkText.Color = linkColor

	cfg.Code.Color = mdColor(colorSurfaceFg, theme)
	cfg.Text.Color = mdColor(colorSurfaceFg, theme)
	cfg.BlockQuote.Faint = mdBoolPtr(false)
}

func mdColor(c lipgloss.AdaptiveColor, theme string) *string {
	if theme == themeLight {
		return mdStrPtr(c.Light)
	}
	return mdStrPtr(c.Dark)
}

func mdStrPtr(s string) *string { return &s }
func mdBoolPtr(b bool) *bool    { return &b }
