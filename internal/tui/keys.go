package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Open     key.Binding
	Collapse key.Binding
	New      key.Binding
	NewDir   key.Binding
	Rename   key.Binding
	Delete   key.Binding
	Menu     key.Binding
	Refresh  key.Binding
	Plugins  key.Binding
	Theme    key.Binding
	Back     key.Binding
	Quit     key.Binding

	Save     key.Binding
	Preview  key.Binding
	Focus    key.Binding
	CopyPath key.Binding

	Category key.Binding
	Search   key.Binding
	Toggle   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Open:     key.NewBinding(key.WithKeys("enter", "right", "l"), key.WithHelp("enter", "open")),
		Collapse: key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "collapse")),
		New:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
		NewDir:   key.NewBinding(key.WithKeys("N"), key.WithHelp("N", "new folder")),
		Rename:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rename")),
		Delete:   key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
		Menu:     key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "menu")),
		Refresh:  key.NewBinding(key.WithKeys("ctrl+r", "f5"), key.WithHelp("ctrl+r", "refresh")),
		Plugins:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "plugins")),
		Theme:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
		Back:     key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "back")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),

		Save:     key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		Preview:  key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "preview")),
		Focus:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "focus")),
		CopyPath: key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy path")),

		Category: key.NewBinding(key.WithKeys("left", "right", "h", "l"), key.WithHelp("←/→", "category")),
		Search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Toggle:   key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "install/uninstall")),
	}
}

func (k keyMap) projectsHelp() []key.Binding {
	return []key.Binding{k.Open, k.New, k.Rename, k.Delete, k.Menu, k.Refresh, k.Plugins, k.Theme, k.Quit}
}

func (k keyMap) treeHelp() []key.Binding {
	return []key.Binding{k.Open, k.New, k.NewDir, k.Rename, k.Delete, k.Menu, k.CopyPath, k.Focus, k.Save, k.Back}
}

func (k keyMap) textHelp() []key.Binding {
	return []key.Binding{k.Save, k.Preview, k.Focus, k.Back}
}

func (k keyMap) pluginsHelp() []key.Binding {
	return []key.Binding{k.Category, k.Search, k.Toggle, k.Back}
}

func newHelp() help.Model {
	h := help.New()
	h.ShortSeparator = "  "
	return h
}
