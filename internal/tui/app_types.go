package tui

import (
	"webide-cli/internal/bridge"
	"webide-cli/internal/project"
)

type view int

const (
	viewProjects view = iota
	viewEditor
	viewPlugins
)

type focusPane int

const (
	focusTree focusPane = iota
	focusText
)

// Screen geometry shared by rendering and mouse hit-testing.
const (
	headerHeight   = 2 // title + rule
	pullHeight     = 1 // pull-to-refresh indicator row
	cardHeight     = 3 // name, meta, spacer
	treePaneWidth  = 30
	footerHeight   = 2 // toast/status + help
	minBodyHeight  = 4
	minScreenWidth = 40
)

type (
	toastMsg         bridge.Toast
	toastExpiredMsg  struct{ seq int }
	dialogChangedMsg struct{}
	fsChangedMsg     struct{}
	longPressMsg     struct{ token uint64 }

	projectsLoadedMsg struct{ err error }
	projectOpenedMsg  struct {
		project project.Project
		err     error
	}
	treeLoadedMsg  struct{ err error }
	fileOpenedMsg  struct{}
	savedMsg       struct{ err error }
	leftEditorMsg  struct{ err error }
	refreshDoneMsg struct {
		triggered bool
		err       error
	}
	// flowDoneMsg ends an interactive (dialog-driven) flow.
	flowDoneMsg struct{ err error }
)

// pointer tracks one press on the project cards or tree rows.
type pointer struct {
	down      bool
	token     uint64
	index     int
	longFired bool
}
