package tui

import (
	"webide-cli/internal/editor"

	tea "github.com/charmbracelet/bubbletea"
)

// cardAt maps a screen row onto a project index, or -1.
func (m *appModel) cardAt(y int) int {
	top := headerHeight + pullHeight
	if y < top {
		return -1
	}
	i := (y-top)/cardHeight + m.projOffset
	if i >= len(m.projects) || i >= m.projOffset+m.visibleCards() {
		return -1
	}
	return i
}

// rowAt maps a screen position onto a tree row index, or -1.
func (m *appModel) rowAt(x, y int) int {
	if x >= treePaneWidth || y < headerHeight {
		return -1
	}
	i := y - headerHeight + m.treeOffset
	if i >= len(m.rows) || y-headerHeight >= m.bodyHeight()-1 {
		return -1
	}
	return i
}

func (m appModel) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.modal.active || m.menu.open {
		if msg.Action == tea.MouseActionRelease {
			m.ptr = pointer{}
			m.press.Release()
			m.refresher.Cancel()
		}
		return m, nil
	}
	switch m.view {
	case viewProjects:
		return m.mouseProjects(msg)
	case viewEditor:
		return m.mouseTree(msg)
	}
	return m, nil
}

// mouseProjects drives both gestures the project list supports: a drag down
// from the top of the list refreshes it, and a press held in place raises
// the project menu. A plain click opens the project.
func (m appModel) mouseProjects(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.moveProjectCursor(-1)
	case msg.Button == tea.MouseButtonWheelDown:
		m.moveProjectCursor(1)

	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if m.refreshing {
			return m, nil
		}
		m.ptr = pointer{down: true, index: m.cardAt(msg.Y), token: m.press.Press(msg.X, msg.Y)}
		m.refresher.Start(float64(msg.Y), m.projOffset == 0)
		return m, longPressAfter(m.press.Threshold, m.ptr.token)

	case msg.Action == tea.MouseActionMotion:
		if !m.ptr.down {
			return m, nil
		}
		m.press.Move(msg.X, msg.Y)
		if m.refresher.Tracking() {
			m.pull, m.pullArmed = m.refresher.Move(float64(msg.Y))
		}

	case msg.Action == tea.MouseActionRelease:
		if !m.ptr.down {
			return m, nil
		}
		ptr := m.ptr
		m.ptr = pointer{}
		click := m.press.Pending()
		m.press.Release()
		if m.pullArmed {
			m.refreshing = true
			return m, tea.Batch(m.releaseRefresh(), m.spinner.Tick)
		}
		m.refresher.Cancel()
		m.pull = 0
		if click && !ptr.longFired && ptr.index >= 0 {
			m.projCursor = ptr.index
			return m, m.openProject(m.projects[ptr.index])
		}
	}
	return m, nil
}

func (m appModel) mouseTree(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.moveTreeCursor(-1)
	case msg.Button == tea.MouseButtonWheelDown:
		m.moveTreeCursor(1)

	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		idx := m.rowAt(msg.X, msg.Y)
		if idx < 0 {
			// Clicking the text pane focuses it.
			if msg.X > treePaneWidth && m.editor.State() != editor.Empty {
				m.focus = focusText
				return m, m.text.Focus()
			}
			return m, nil
		}
		m.ptr = pointer{down: true, index: idx, token: m.press.Press(msg.X, msg.Y)}
		return m, longPressAfter(m.press.Threshold, m.ptr.token)

	case msg.Action == tea.MouseActionMotion:
		if m.ptr.down {
			m.press.Move(msg.X, msg.Y)
		}

	case msg.Action == tea.MouseActionRelease:
		if !m.ptr.down {
			return m, nil
		}
		ptr := m.ptr
		m.ptr = pointer{}
		click := m.press.Pending()
		m.press.Release()
		if click && !ptr.longFired && ptr.index < len(m.rows) {
			m.treeCursor = ptr.index
			m.focus = focusTree
			m.text.Blur()
			return m, m.activate(m.rows[ptr.index])
		}
	}
	return m, nil
}

func (m appModel) handleLongPress(msg longPressMsg) (tea.Model, tea.Cmd) {
	x, y, ok := m.press.Expire(msg.token)
	if !ok || !m.ptr.down || m.ptr.token != msg.token {
		return m, nil
	}
	m.ptr.longFired = true
	switch m.view {
	case viewProjects:
		m.refresher.Cancel()
		if i := m.cardAt(y); i >= 0 {
			m.projCursor = i
			m.menu = projectMenu(m.projects[i])
		}
	case viewEditor:
		if i := m.rowAt(x, y); i >= 0 {
			m.treeCursor = i
			r := m.rows[i]
			m.menu = treeMenu(r.Path, r.IsDir)
		}
	}
	return m, nil
}
