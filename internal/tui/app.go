package tui

import (
	"context"
	"errors"
	"time"

	"webide-cli/internal/dialog"
	"webide-cli/internal/editor"
	"webide-cli/internal/filetree"
	"webide-cli/internal/project"
	"webide-cli/internal/store"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

type appModel struct {
	deps
	keys keyMap
	help help.Model

	width  int
	height int

	view  view
	theme string
	focus focusPane

	// Project to open once the first listing arrives.
	startProject string

	projects   []project.Project
	projCursor int
	projOffset int
	pull       float64
	pullArmed  bool
	refreshing bool
	spinner    spinner.Model

	current    project.Project
	rows       []filetree.Row
	treeCursor int
	treeOffset int
	text       textarea.Model
	textRev    uint64
	preview    bool
	previewVP  viewport.Model

	pluginCat   int
	pluginQuery textinput.Model
	searching   bool
	pluginList  list.Model

	ptr   pointer
	menu  contextMenu
	modal dialogModal

	toast     string
	toastLong bool
	toastSeq  int
}

func newAppModel(d deps, theme, startProject string) appModel {
	m := appModel{
		deps:         d,
		keys:         defaultKeyMap(),
		help:         newHelp(),
		view:         viewProjects,
		theme:        theme,
		startProject: startProject,
		spinner:      spinner.New(spinner.WithSpinner(spinner.Dot)),
		modal:        dialogModal{input: newDialogInput()},
		previewVP:    viewport.New(0, 0),
	}

	m.text = textarea.New()
	m.text.ShowLineNumbers = true
	m.text.Placeholder = "Select a file to start editing"
	m.text.CharLimit = 0
	m.text.MaxHeight = 0

	m.pluginQuery = textinput.New()
	m.pluginQuery.Prompt = "/ "
	m.pluginQuery.Placeholder = "Search plugins"

	m.pluginList = list.New(nil, list.NewDefaultDelegate(), 0, 0)
	m.pluginList.Title = "Plugins"
	m.pluginList.SetFilteringEnabled(false)
	m.pluginList.SetShowHelp(false)
	m.pluginList.SetStatusBarItemName("plugin", "plugins")

	m.width, m.height = 80, 24
	m.resize()
	return m
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(m.loadProjects(), waitDialog(m.dlg))
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case toastMsg:
		m.toastSeq++
		m.toast = msg.Message
		m.toastLong = msg.Long
		return m, expireToast(m.toastSeq, msg.Long)

	case toastExpiredMsg:
		if msg.seq == m.toastSeq {
			m.toast = ""
		}
		return m, nil

	case dialogChangedMsg:
		m.modal.sync(m.dlg.Current())
		return m, waitDialog(m.dlg)

	case fsChangedMsg:
		switch m.view {
		case viewProjects:
			if !m.refreshing {
				return m, m.loadProjects()
			}
		case viewEditor:
			return m, m.reloadTree()
		}
		return m, nil

	case projectsLoadedMsg:
		if msg.err != nil {
			m.log.Warn("load projects", zap.Error(msg.err))
		}
		m.setProjects(m.proj.Projects())
		if name := m.startProject; name != "" {
			m.startProject = ""
			if p, ok := m.proj.Find(name); ok {
				return m, m.openProject(p)
			}
			m.fs.ShowLongToast("Project not found: " + name)
		}
		return m, nil

	case projectOpenedMsg:
		if msg.err != nil {
			m.log.Warn("load file tree", zap.String("project", msg.project.Name), zap.Error(msg.err))
			m.fs.ShowToast("Failed to load files")
		}
		m.current = msg.project
		m.view = viewEditor
		m.focus = focusTree
		m.preview = false
		m.treeCursor, m.treeOffset = 0, 0
		m.setRows(m.tree.Rows())
		m.syncText()
		return m, nil

	case treeLoadedMsg:
		if msg.err != nil {
			m.log.Debug("tree reload", zap.Error(msg.err))
		}
		m.setRows(m.tree.Rows())
		return m, nil

	case fileOpenedMsg:
		m.setRows(m.tree.Rows())
		m.syncText()
		m.preview = false
		if m.editor.State() != editor.Empty {
			m.focus = focusText
			m.text.Focus()
		}
		return m, nil

	case savedMsg:
		m.refreshPreview()
		return m, nil

	case leftEditorMsg:
		if msg.err != nil {
			return m, nil
		}
		m.view = viewProjects
		m.current = project.Project{}
		m.rows = nil
		m.syncText()
		return m, m.loadProjects()

	case refreshDoneMsg:
		if msg.err != nil {
			m.log.Warn("refresh", zap.Error(msg.err))
		}
		m.refreshing = false
		m.pull, m.pullArmed = 0, false
		m.setProjects(m.proj.Projects())
		return m, nil

	case flowDoneMsg:
		if msg.err != nil && !errors.Is(msg.err, dialog.ErrCanceled) {
			m.log.Debug("flow", zap.Error(msg.err))
		}
		switch m.view {
		case viewProjects:
			m.setProjects(m.proj.Projects())
		case viewEditor:
			m.setRows(m.tree.Rows())
			m.syncText()
		}
		return m, nil

	case spinner.TickMsg:
		if !m.refreshing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case longPressMsg:
		return m.handleLongPress(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.modal.active {
			return m.updateModal(msg)
		}
		if m.menu.open {
			return m.updateMenu(msg)
		}
		switch m.view {
		case viewProjects:
			return m.updateProjects(msg)
		case viewEditor:
			return m.updateEditor(msg)
		case viewPlugins:
			return m.updatePlugins(msg)
		}
	}

	// Cursor blink and similar internal messages.
	if m.view == viewEditor && m.focus == focusText {
		var cmd tea.Cmd
		m.text, cmd = m.text.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m appModel) updateModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.modal.req.Kind == dialog.KindConfirm {
		switch msg.String() {
		case "tab", "shift+tab", "left", "right", "h", "l":
			m.modal.focusConfirm = !m.modal.focusConfirm
		case "enter":
			if m.modal.focusConfirm {
				m.dlg.Submit("")
			} else {
				m.dlg.Cancel()
			}
		case "y":
			m.dlg.Submit("")
		case "n", "esc":
			m.dlg.Cancel()
		}
		m.modal.sync(m.dlg.Current())
		return m, nil
	}

	switch msg.String() {
	case "enter":
		m.dlg.Submit(m.modal.input.Value())
		m.modal.sync(m.dlg.Current())
		return m, nil
	case "esc":
		m.dlg.Cancel()
		m.modal.sync(m.dlg.Current())
		return m, nil
	}
	var cmd tea.Cmd
	m.modal.input, cmd = m.modal.input.Update(msg)
	return m, cmd
}

func (m *appModel) bodyHeight() int {
	h := m.height - headerHeight - footerHeight
	if h < minBodyHeight {
		h = minBodyHeight
	}
	return h
}

func (m *appModel) screenWidth() int {
	if m.width < minScreenWidth {
		return minScreenWidth
	}
	return m.width
}

func (m *appModel) resize() {
	w, h := m.screenWidth(), m.bodyHeight()
	textW := w - treePaneWidth - 1
	// Last body row is the status line.
	m.text.SetWidth(textW)
	m.text.SetHeight(h - 1)
	m.previewVP.Width = textW
	m.previewVP.Height = h - 1
	m.pluginList.SetSize(w/2, h-2)
	m.help.Width = w
	m.refreshPreview()
}

func (m *appModel) setProjects(ps []project.Project) {
	m.projects = ps
	m.projCursor = clamp(m.projCursor, 0, max(len(ps)-1, 0))
	m.projOffset = scrollInto(m.projOffset, m.projCursor, m.visibleCards())
}

func (m *appModel) setRows(rows []filetree.Row) {
	m.rows = rows
	m.treeCursor = clamp(m.treeCursor, 0, max(len(rows)-1, 0))
	m.treeOffset = scrollInto(m.treeOffset, m.treeCursor, m.bodyHeight()-1)
}

// syncText copies the shared buffer into the textarea when something other
// than typing replaced it.
func (m *appModel) syncText() {
	s, rev := m.buf.snapshot()
	if rev != m.textRev {
		m.text.SetValue(s)
		m.textRev = rev
	}
	if m.editor.State() == editor.Empty {
		m.text.Blur()
		if m.focus == focusText {
			m.focus = focusTree
		}
	}
	m.refreshPreview()
}

func (m *appModel) toggleTheme() {
	m.theme = otherTheme(m.theme)
	applyTheme(m.theme)
	m.fs.SetConfig(store.KeyTheme, m.theme)
	m.refreshPreview()
}

func (m appModel) loadProjects() tea.Cmd {
	pc := m.proj
	return func() tea.Msg {
		_, err := pc.Load()
		return projectsLoadedMsg{err: err}
	}
}

func (m appModel) openProject(p project.Project) tea.Cmd {
	pc, tree, sess := m.proj, m.tree, m.editor
	return func() tea.Msg {
		p = pc.Open(p)
		sess.Close()
		return projectOpenedMsg{project: p, err: tree.Init(p.Path)}
	}
}

func (m appModel) reloadTree() tea.Cmd {
	tree := m.tree
	return func() tea.Msg { return treeLoadedMsg{err: tree.Load()} }
}

func (m appModel) toggleDir(path string) tea.Cmd {
	tree := m.tree
	return func() tea.Msg { return treeLoadedMsg{err: tree.Toggle(path)} }
}

func (m appModel) openFile(path string) tea.Cmd {
	tree := m.tree
	return func() tea.Msg {
		if err := tree.Select(path); err != nil {
			return flowDoneMsg{err: err}
		}
		return fileOpenedMsg{}
	}
}

func (m appModel) save() tea.Cmd {
	sess := m.editor
	return func() tea.Msg { return savedMsg{err: sess.Save()} }
}

func (m appModel) leaveEditor() tea.Cmd {
	sess := m.editor
	return func() tea.Msg { return leftEditorMsg{err: sess.Leave(context.Background())} }
}

func (m appModel) releaseRefresh() tea.Cmd {
	r := m.refresher
	return func() tea.Msg {
		ok, err := r.Release(context.Background())
		return refreshDoneMsg{triggered: ok, err: err}
	}
}

// flow runs a dialog-driven controller operation off the UI goroutine.
func flow(fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg { return flowDoneMsg{err: fn(context.Background())} }
}

func waitDialog(d *dialog.Service) tea.Cmd {
	ch := d.Changes()
	return func() tea.Msg {
		<-ch
		return dialogChangedMsg{}
	}
}

func expireToast(seq int, long bool) tea.Cmd {
	d := 2 * time.Second
	if long {
		d = 3500 * time.Millisecond
	}
	return tea.Tick(d, func(time.Time) tea.Msg { return toastExpiredMsg{seq: seq} })
}

func longPressAfter(d time.Duration, token uint64) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return longPressMsg{token: token} })
}
