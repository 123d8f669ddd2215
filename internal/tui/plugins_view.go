package tui

import (
	"fmt"
	"strings"

	"webide-cli/internal/plugin"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

type pluginItem struct {
	p         plugin.Plugin
	installed bool
}

func (i pluginItem) Title() string {
	t := i.p.Icon + " " + i.p.Name
	if i.installed {
		t += "  ✓"
	}
	return t
}

func (i pluginItem) Description() string {
	return fmt.Sprintf("%s · ★ %.1f · %s downloads", i.p.Author, i.p.Rating, plugin.FormatDownloads(i.p.Downloads))
}

func (i pluginItem) FilterValue() string { return i.p.Name }

func (m *appModel) pluginCategory() string {
	return plugin.Categories[m.pluginCat%len(plugin.Categories)]
}

// refreshPlugins re-applies the category and keyword filter, keeping the
// selection on the same plugin when it is still listed.
func (m *appModel) refreshPlugins() {
	selected := ""
	if it, ok := m.pluginList.SelectedItem().(pluginItem); ok {
		selected = it.p.ID
	}
	ps := m.plugins.Filter(m.pluginCategory(), m.pluginQuery.Value())
	items := make([]list.Item, 0, len(ps))
	idx := 0
	for i, p := range ps {
		if p.ID == selected {
			idx = i
		}
		items = append(items, pluginItem{p: p, installed: m.plugins.Installed(p.ID)})
	}
	m.pluginList.SetItems(items)
	m.pluginList.Select(idx)
}

func (m appModel) updatePlugins(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		switch msg.String() {
		case "enter":
			m.searching = false
			m.pluginQuery.Blur()
			return m, nil
		case "esc":
			m.searching = false
			m.pluginQuery.Blur()
			m.pluginQuery.SetValue("")
			m.refreshPlugins()
			return m, nil
		}
		var cmd tea.Cmd
		m.pluginQuery, cmd = m.pluginQuery.Update(msg)
		m.refreshPlugins()
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Back), msg.String() == "q":
		m.view = viewProjects
		return m, nil
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		return m, m.pluginQuery.Focus()
	case msg.String() == "left" || msg.String() == "h":
		m.pluginCat = (m.pluginCat + len(plugin.Categories) - 1) % len(plugin.Categories)
		m.refreshPlugins()
		return m, nil
	case msg.String() == "right" || msg.String() == "l":
		m.pluginCat = (m.pluginCat + 1) % len(plugin.Categories)
		m.refreshPlugins()
		return m, nil
	case key.Matches(msg, m.keys.Toggle):
		if it, ok := m.pluginList.SelectedItem().(pluginItem); ok {
			if _, err := m.plugins.Toggle(it.p.ID); err != nil {
				m.log.Warn("toggle plugin", zap.String("id", it.p.ID), zap.Error(err))
			}
			m.refreshPlugins()
		}
		return m, nil
	case key.Matches(msg, m.keys.Theme):
		m.toggleTheme()
		return m, nil
	}
	var cmd tea.Cmd
	m.pluginList, cmd = m.pluginList.Update(msg)
	return m, cmd
}

func (m appModel) viewPlugins(width, height int) string {
	tabs := make([]string, 0, len(plugin.Categories))
	for i, c := range plugin.Categories {
		label := " " + plugin.CategoryName(c) + " "
		if i == m.pluginCat%len(plugin.Categories) {
			label = styleAccent().Render(label)
		} else {
			label = styleMuted().Render(label)
		}
		tabs = append(tabs, label)
	}
	top := fitWidth(strings.Join(tabs, " "), width) + "\n" + fitWidth(m.pluginQuery.View(), width)

	leftW := width / 2
	left := normalizePane(m.pluginList.View(), leftW, height-2)
	right := normalizePane(m.viewPluginDetails(width-leftW-1), width-leftW-1, height-2)
	return top + "\n" + lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)
}

func (m appModel) viewPluginDetails(width int) string {
	it, ok := m.pluginList.SelectedItem().(pluginItem)
	if !ok {
		return styleMuted().Render("No plugins match.")
	}
	p := it.p
	state := styleMuted().Render("Not installed")
	if it.installed {
		state = styleAccent().Render(" Installed ")
	}
	var b strings.Builder
	b.WriteString(styleHeader().Render(p.Icon + " " + p.Name))
	b.WriteString("  " + styleMuted().Render("v"+p.Version) + "\n")
	b.WriteString(styleMuted().Render(p.Author+" · "+plugin.CategoryName(p.Category)) + "\n")
	b.WriteString(state + "\n\n")
	b.WriteString(lipgloss.NewStyle().Width(width).Render(p.Details()))
	if len(p.Features) > 0 {
		b.WriteString("\n\n")
		for _, f := range p.Features {
			b.WriteString("• " + f + "\n")
		}
	}
	return b.String()
}
