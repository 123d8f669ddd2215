package tui

import (
	"context"
	"strings"

	"webide-cli/internal/editor"
	"webide-cli/internal/filetree"
	"webide-cli/internal/paths"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func (m *appModel) selectedRow() (filetree.Row, bool) {
	if m.treeCursor < 0 || m.treeCursor >= len(m.rows) {
		return filetree.Row{}, false
	}
	return m.rows[m.treeCursor], true
}

func (m *appModel) moveTreeCursor(delta int) {
	if len(m.rows) == 0 {
		return
	}
	m.treeCursor = clamp(m.treeCursor+delta, 0, len(m.rows)-1)
	m.treeOffset = scrollInto(m.treeOffset, m.treeCursor, m.bodyHeight()-1)
}

// target is where new entries go: the selected row, or the project root.
func (m *appModel) target() (string, bool) {
	if r, ok := m.selectedRow(); ok {
		return r.Path, r.IsDir
	}
	return m.tree.Root(), true
}

func (m appModel) updateEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Shortcuts that work in both panes.
	switch {
	case key.Matches(msg, m.keys.Save):
		return m, m.save()
	case key.Matches(msg, m.keys.Preview):
		m.togglePreview()
		return m, nil
	}
	if m.focus == focusText {
		return m.updateText(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Back), msg.String() == "q":
		return m, m.leaveEditor()
	case key.Matches(msg, m.keys.Up):
		m.moveTreeCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveTreeCursor(1)
	case key.Matches(msg, m.keys.Open):
		if r, ok := m.selectedRow(); ok {
			return m, m.activate(r)
		}
	case key.Matches(msg, m.keys.Collapse):
		m.collapseOrParent()
	case key.Matches(msg, m.keys.Focus):
		if m.editor.State() != editor.Empty {
			m.focus = focusText
			return m, m.text.Focus()
		}
	case key.Matches(msg, m.keys.New):
		t, isDir := m.target()
		return m, m.newEntry(t, isDir, false)
	case key.Matches(msg, m.keys.NewDir):
		t, isDir := m.target()
		return m, m.newEntry(t, isDir, true)
	case key.Matches(msg, m.keys.Rename):
		if r, ok := m.selectedRow(); ok {
			return m, m.renameEntry(r.Path)
		}
	case key.Matches(msg, m.keys.Delete):
		if r, ok := m.selectedRow(); ok {
			return m, m.deleteEntry(r.Path)
		}
	case key.Matches(msg, m.keys.Menu):
		t, isDir := m.target()
		m.menu = treeMenu(t, isDir)
	case key.Matches(msg, m.keys.CopyPath):
		if r, ok := m.selectedRow(); ok {
			m.copyPath(r.Path)
		}
	case key.Matches(msg, m.keys.Theme):
		m.toggleTheme()
	}
	return m, nil
}

func (m appModel) updateText(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Focus), msg.String() == "esc":
		m.focus = focusTree
		m.text.Blur()
		return m, nil
	}
	if m.editor.State() == editor.Empty || m.preview {
		return m, nil
	}
	before := m.text.Value()
	var cmd tea.Cmd
	m.text, cmd = m.text.Update(msg)
	if after := m.text.Value(); after != before {
		m.buf.SetValue(after)
		_, m.textRev = m.buf.snapshot()
		m.editor.Changed()
	}
	return m, cmd
}

// activate opens a file or toggles a directory.
func (m *appModel) activate(r filetree.Row) tea.Cmd {
	if r.IsDir {
		return m.toggleDir(r.Path)
	}
	return m.openFile(r.Path)
}

func (m *appModel) collapseOrParent() {
	r, ok := m.selectedRow()
	if !ok {
		return
	}
	if r.IsDir && r.Expanded {
		m.tree.Collapse(r.Path)
		m.setRows(m.tree.Rows())
		return
	}
	parent := paths.Parent(r.Path)
	for i, row := range m.rows {
		if row.Path == parent {
			m.treeCursor = i
			m.treeOffset = scrollInto(m.treeOffset, i, m.bodyHeight()-1)
			return
		}
	}
}

func (m appModel) newEntry(target string, isDir, folder bool) tea.Cmd {
	tree := m.tree
	if folder {
		return flow(func(ctx context.Context) error { return tree.PromptNewFolder(ctx, target, isDir) })
	}
	return flow(func(ctx context.Context) error { return tree.PromptNewFile(ctx, target, isDir) })
}

func (m appModel) renameEntry(path string) tea.Cmd {
	tree := m.tree
	return flow(func(ctx context.Context) error { return tree.PromptRename(ctx, path) })
}

func (m appModel) deleteEntry(path string) tea.Cmd {
	tree := m.tree
	return flow(func(ctx context.Context) error { return tree.ConfirmDelete(ctx, path) })
}

func (m *appModel) copyPath(path string) {
	m.fs.CopyToClipboard(path)
	m.fs.ShowToast("Path copied")
}

func (m *appModel) togglePreview() {
	if m.editor.Mode() != "markdown" {
		m.preview = false
		return
	}
	m.preview = !m.preview
	if m.preview {
		m.text.Blur()
	}
	m.refreshPreview()
}

func (m *appModel) refreshPreview() {
	if !m.preview {
		return
	}
	m.previewVP.SetContent(renderMarkdown(m.buf.Value(), m.previewVP.Width, m.theme))
}

func (m appModel) viewEditor(width, height int) string {
	treeH := height - 1
	left := normalizePane(m.viewTree(treePaneWidth, treeH), treePaneWidth, treeH)
	sep := styleMuted().Render(strings.TrimSuffix(strings.Repeat("│\n", treeH), "\n"))

	rightW := width - treePaneWidth - 1
	var right string
	switch {
	case m.preview:
		right = m.previewVP.View()
	case m.editor.State() == editor.Empty:
		right = "\n" + styleMuted().Render("  Select a file to start editing")
	default:
		right = m.text.View()
	}
	right = normalizePane(right, rightW, treeH)

	body := lipgloss.JoinHorizontal(lipgloss.Top, left, sep, right)
	return body + "\n" + m.viewStatusLine(width)
}

func (m appModel) viewTree(width, height int) string {
	if len(m.rows) == 0 {
		return styleMuted().Render(" (empty)")
	}
	lines := make([]string, 0, height)
	end := min(m.treeOffset+height, len(m.rows))
	for i := m.treeOffset; i < end; i++ {
		r := m.rows[i]
		arrow := "  "
		if r.IsDir {
			arrow = "▸ "
			if r.Expanded {
				arrow = "▾ "
			}
		}
		ln := strings.Repeat("  ", r.Depth) + arrow + filetree.Icon(r.Name, r.IsDir) + " " + r.Name
		ln = fitWidth(ln, width)
		switch {
		case i == m.treeCursor && m.focus == focusTree:
			ln = styleSelected().Render(ln)
		case r.Active:
			ln = lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Render(ln)
		}
		lines = append(lines, ln)
	}
	return strings.Join(lines, "\n")
}

func (m appModel) viewStatusLine(width int) string {
	li := m.text.LineInfo()
	st := m.editor.StatusLine(m.text.Line(), li.StartColumn+li.ColumnOffset)
	file := st.File
	if m.editor.State() == editor.Dirty {
		file = lipgloss.NewStyle().Foreground(colorDirtyFg).Render(file)
	}
	line := " " + file + "  " + st.Position + "  " + st.Language
	if m.preview {
		line += "  " + styleMuted().Render("(preview)")
	}
	return lipgloss.NewStyle().Background(colorControlBg).Render(fitWidth(line, width))
}
