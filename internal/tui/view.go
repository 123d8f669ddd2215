package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

func (m appModel) View() string {
	w, h := m.screenWidth(), m.bodyHeight()

	var body string
	switch {
	case m.modal.active:
		body = lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, m.modal.view(w))
	case m.menu.open:
		body = lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, m.viewMenu())
	case m.view == viewEditor:
		body = m.viewEditor(w, h)
	case m.view == viewPlugins:
		body = m.viewPlugins(w, h)
	default:
		body = m.viewProjects(w, h)
	}
	body = normalizePane(body, w, h)

	return strings.Join([]string{m.viewHeader(w), body, m.viewFooter(w)}, "\n")
}

func (m appModel) viewHeader(width int) string {
	title := " WebIDE+"
	switch m.view {
	case viewEditor:
		title += "  ›  " + m.current.AppName
	case viewPlugins:
		title += "  ›  Plugins"
	default:
		title += "  ›  Projects"
	}
	rule := styleMuted().Render(strings.Repeat("─", width))
	return styleHeader().Render(fitWidth(title, width)) + "\n" + rule
}

func (m appModel) viewFooter(width int) string {
	toast := ""
	if m.toast != "" {
		st := lipgloss.NewStyle().Foreground(colorAccentFg).Background(colorAccent).Padding(0, 1)
		toast = st.Render(m.toast)
	}

	var bindings []key.Binding
	switch {
	case m.modal.active, m.menu.open:
		bindings = nil
	case m.view == viewEditor && m.focus == focusText:
		bindings = m.keys.textHelp()
	case m.view == viewEditor:
		bindings = m.keys.treeHelp()
	case m.view == viewPlugins:
		bindings = m.keys.pluginsHelp()
	default:
		bindings = m.keys.projectsHelp()
	}
	return fitWidth(toast, width) + "\n" + fitWidth(m.help.ShortHelpView(bindings), width)
}
