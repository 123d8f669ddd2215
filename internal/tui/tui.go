package tui

import (
	"sync"

	"webide-cli/internal/bridge"
	"webide-cli/internal/logging"
	"webide-cli/internal/store"
	"webide-cli/internal/watch"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

type Options struct {
	Host bridge.Host
	// Project, when set, is opened once the project list has loaded.
	Project string
	// WatchDir is a local directory whose changes reload the visible list.
	// Empty disables watching (e.g. for a remote host).
	WatchDir string
}

// sender forwards messages from controller callbacks into the program.
// Sends never block: callbacks may run on the UI goroutine itself.
type sender struct {
	mu sync.Mutex
	p  *tea.Program
}

func (s *sender) set(p *tea.Program) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.p = p
}

func (s *sender) send(msg tea.Msg) {
	s.mu.Lock()
	p := s.p
	s.mu.Unlock()
	if p != nil {
		go p.Send(msg)
	}
}

func Run(opts Options) error {
	if opts.Host == nil {
		return bridge.ErrHostMissing
	}
	applyColorProfilePreference()

	s := &sender{}
	fs, err := bridge.NewAdapter(bridge.WithSinks(opts.Host, func(t bridge.Toast) { s.send(toastMsg(t)) }, nil))
	if err != nil {
		return err
	}
	d, err := newDeps(fs)
	if err != nil {
		return err
	}
	theme := resolveTheme(fs.GetConfig(store.KeyTheme))
	applyTheme(theme)

	p := tea.NewProgram(newAppModel(d, theme, opts.Project), tea.WithAltScreen(), tea.WithMouseCellMotion())
	s.set(p)

	if opts.WatchDir != "" {
		w, err := watch.New(watch.Options{
			Dir:       opts.WatchDir,
			Recursive: true,
			OnChange:  func() { s.send(fsChangedMsg{}) },
		})
		if err != nil {
			logging.Named("tui").Warn("file watcher disabled", zap.String("dir", opts.WatchDir), zap.Error(err))
		} else {
			defer w.Close()
		}
	}

	_, err = p.Run()
	return err
}
