package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"webide-cli/internal/paths"
	"webide-cli/internal/project"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func (m *appModel) visibleCards() int {
	n := (m.bodyHeight() - pullHeight) / cardHeight
	if n < 1 {
		n = 1
	}
	return n
}

func (m *appModel) selectedProject() (project.Project, bool) {
	if m.projCursor < 0 || m.projCursor >= len(m.projects) {
		return project.Project{}, false
	}
	return m.projects[m.projCursor], true
}

func (m *appModel) moveProjectCursor(delta int) {
	if len(m.projects) == 0 {
		return
	}
	m.projCursor = clamp(m.projCursor+delta, 0, len(m.projects)-1)
	m.projOffset = scrollInto(m.projOffset, m.projCursor, m.visibleCards())
}

func (m appModel) updateProjects(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.moveProjectCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveProjectCursor(1)
	case key.Matches(msg, m.keys.Open):
		if p, ok := m.selectedProject(); ok {
			return m, m.openProject(p)
		}
	case key.Matches(msg, m.keys.New):
		return m, flow(m.proj.PromptCreate)
	case key.Matches(msg, m.keys.Rename):
		if p, ok := m.selectedProject(); ok {
			return m, m.renameProject(p)
		}
	case key.Matches(msg, m.keys.Delete):
		if p, ok := m.selectedProject(); ok {
			return m, m.deleteProject(p)
		}
	case key.Matches(msg, m.keys.Menu):
		if p, ok := m.selectedProject(); ok {
			m.menu = projectMenu(p)
		}
	case key.Matches(msg, m.keys.Refresh):
		return m, m.loadProjects()
	case key.Matches(msg, m.keys.Plugins):
		m.view = viewPlugins
		m.refreshPlugins()
	case key.Matches(msg, m.keys.Theme):
		m.toggleTheme()
	}
	return m, nil
}

func (m appModel) renameProject(p project.Project) tea.Cmd {
	pc := m.proj
	return flow(func(ctx context.Context) error { return pc.PromptRename(ctx, p) })
}

func (m appModel) deleteProject(p project.Project) tea.Cmd {
	pc := m.proj
	return flow(func(ctx context.Context) error { return pc.ConfirmDelete(ctx, p) })
}

func (m appModel) viewProjects(width, height int) string {
	var b strings.Builder
	b.WriteString(m.viewPullIndicator(width))

	if len(m.projects) == 0 {
		b.WriteString("\n\n")
		b.WriteString(styleMuted().Render("  No projects yet. Press n to create one."))
		return normalizePane(b.String(), width, height)
	}

	now := time.Now()
	end := min(m.projOffset+m.visibleCards(), len(m.projects))
	for i := m.projOffset; i < end; i++ {
		p := m.projects[i]
		name := "  " + p.AppName
		if p.AppName != p.Name {
			name += styleMuted().Render("  (" + p.Name + ")")
		}
		meta := fmt.Sprintf("  %s · %s", p.PackageName, paths.FormatTime(p.LastModified, now))
		if i == m.projCursor {
			name = styleSelected().Render(fitWidth(name, width))
		} else {
			name = lipgloss.NewStyle().Bold(true).Render(name)
		}
		b.WriteString("\n")
		b.WriteString(name)
		b.WriteString("\n")
		b.WriteString(styleMuted().Render(meta))
		b.WriteString("\n")
	}
	return normalizePane(b.String(), width, height)
}

func (m appModel) viewPullIndicator(width int) string {
	switch {
	case m.refreshing:
		return fitWidth("  "+m.spinner.View()+" Refreshing…", width)
	case m.pullArmed:
		return fitWidth(styleAccent().Render(" ↑ Release to refresh "), width)
	case m.pull > 0:
		// Indicator grows with the pull offset.
		bar := strings.Repeat("·", int(m.pull/project.PullMaxOffset*10))
		return fitWidth(styleMuted().Render(" ↓ Pull to refresh "+bar), width)
	default:
		return fitWidth("", width)
	}
}
