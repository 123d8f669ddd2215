package tui

import (
	"strings"

	"webide-cli/internal/paths"
	"webide-cli/internal/project"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type menuAction int

const (
	actOpen menuAction = iota
	actRename
	actDelete
	actNewFile
	actNewFolder
	actCopyPath
)

type menuItem struct {
	label string
	act   menuAction
}

// contextMenu is raised by a long press or the menu key, on either a project
// card or a tree row.
type contextMenu struct {
	open   bool
	title  string
	items  []menuItem
	cursor int

	project project.Project
	path    string
	isDir   bool
}

func projectMenu(p project.Project) contextMenu {
	return contextMenu{
		open:  true,
		title: p.AppName,
		items: []menuItem{
			{label: "Open", act: actOpen},
			{label: "Rename", act: actRename},
			{label: "Delete", act: actDelete},
		},
		project: p,
	}
}

func treeMenu(path string, isDir bool) contextMenu {
	return contextMenu{
		open:  true,
		title: paths.Base(path),
		items: []menuItem{
			{label: "New file", act: actNewFile},
			{label: "New folder", act: actNewFolder},
			{label: "Rename", act: actRename},
			{label: "Delete", act: actDelete},
			{label: "Copy path", act: actCopyPath},
		},
		path:  path,
		isDir: isDir,
	}
}

func (m appModel) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		m.menu.cursor = clamp(m.menu.cursor-1, 0, len(m.menu.items)-1)
	case "down", "j":
		m.menu.cursor = clamp(m.menu.cursor+1, 0, len(m.menu.items)-1)
	case "esc", "q", "m":
		m.menu = contextMenu{}
	case "enter":
		menu := m.menu
		m.menu = contextMenu{}
		return m.runMenu(menu, menu.items[menu.cursor].act)
	}
	return m, nil
}

func (m appModel) runMenu(menu contextMenu, act menuAction) (tea.Model, tea.Cmd) {
	if m.view == viewProjects {
		switch act {
		case actOpen:
			return m, m.openProject(menu.project)
		case actRename:
			return m, m.renameProject(menu.project)
		case actDelete:
			return m, m.deleteProject(menu.project)
		}
		return m, nil
	}

	// The project root is not a row; it can receive new entries only.
	isRoot := menu.path == m.tree.Root()
	switch act {
	case actNewFile:
		return m, m.newEntry(menu.path, menu.isDir, false)
	case actNewFolder:
		return m, m.newEntry(menu.path, menu.isDir, true)
	case actRename:
		if !isRoot {
			return m, m.renameEntry(menu.path)
		}
	case actDelete:
		if !isRoot {
			return m, m.deleteEntry(menu.path)
		}
	case actCopyPath:
		m.copyPath(menu.path)
	}
	return m, nil
}

func (m appModel) viewMenu() string {
	lines := make([]string, 0, len(m.menu.items))
	for i, it := range m.menu.items {
		ln := fitWidth(" "+it.label, 24)
		if i == m.menu.cursor {
			ln = styleSelected().Render(ln)
		}
		lines = append(lines, ln)
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorCardBorder).
		Render(styleHeader().Render(fitWidth(" "+m.menu.title, 24)) + "\n" + strings.Join(lines, "\n"))
}
