// Package editor holds the editing session of one project: which file is
// open, whether the buffer has unsaved edits, and the syntax mode.
package editor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"webide-cli/internal/bridge"
	"webide-cli/internal/dialog"
	"webide-cli/internal/logging"
	"webide-cli/internal/paths"

	"go.uber.org/zap"
)

// ErrNoFile is returned by Save when nothing is open.
var ErrNoFile = errors.New("no file open")

type State int

const (
	Empty State = iota
	Clean
	Dirty
)

func (s State) String() string {
	switch s {
	case Clean:
		return "clean"
	case Dirty:
		return "dirty"
	default:
		return "empty"
	}
}

// Buffer is the text widget the session edits.
type Buffer interface {
	Value() string
	SetValue(string)
}

type Session struct {
	fs  *bridge.Adapter
	dlg *dialog.Service
	buf Buffer
	log *zap.Logger

	mu    sync.Mutex
	path  string
	dirty bool
	mode  string
	// edits counts Changed calls; Save only marks the buffer clean when
	// none arrived while it was writing.
	edits uint64
}

func New(fs *bridge.Adapter, dlg *dialog.Service, buf Buffer) *Session {
	return &Session{
		fs:   fs,
		dlg:  dlg,
		buf:  buf,
		log:  logging.Named("editor"),
		mode: ModeText,
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() State {
	switch {
	case s.path == "":
		return Empty
	case s.dirty:
		return Dirty
	default:
		return Clean
	}
}

func (s *Session) Path() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path
}

func (s *Session) Mode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Open loads path into the buffer. With unsaved edits to another file the
// user is asked whether to save them first; declining discards them and a
// failed save keeps the current file open. Opening the file that is already
// open does nothing.
func (s *Session) Open(ctx context.Context, path string) error {
	s.mu.Lock()
	current, dirty := s.path, s.dirty
	s.mu.Unlock()

	if path == current {
		return nil
	}
	if dirty && s.dlg != nil {
		save, err := s.dlg.Confirm(ctx, "Unsaved changes", "Save the current file first?")
		if err != nil {
			return err
		}
		if save {
			if err := s.Save(); err != nil {
				s.log.Warn("save before switch failed", zap.String("path", current), zap.Error(err))
				return err
			}
		}
	}

	content, err := s.fs.ReadFile(path)
	if err != nil {
		s.fs.ShowToast("Failed to open file")
		return fmt.Errorf("open %s: %w", path, err)
	}
	s.buf.SetValue(content)

	s.mu.Lock()
	s.path = path
	s.dirty = false
	s.mode = ModeFor(path)
	s.mu.Unlock()

	s.fs.ShowToast("File opened")
	return nil
}

// Changed records an edit. It only has an effect while a file is open.
func (s *Session) Changed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.path != "" {
		s.dirty = true
		s.edits++
	}
}

// Save writes the buffer to the open file. Edits recorded while the write
// is in flight keep the session dirty.
func (s *Session) Save() error {
	s.mu.Lock()
	path, seen := s.path, s.edits
	s.mu.Unlock()

	if path == "" {
		s.fs.ShowToast("No file open")
		return ErrNoFile
	}
	if err := s.fs.WriteFile(path, s.buf.Value()); err != nil {
		s.fs.ShowToast("Save failed")
		return fmt.Errorf("save %s: %w", path, err)
	}

	s.mu.Lock()
	if s.path == path && s.edits == seen {
		s.dirty = false
	}
	s.mu.Unlock()
	s.fs.ShowToast("Saved")
	return nil
}

// Retarget follows a rename of the open file or one of its directories.
func (s *Session) Retarget(oldPath, newPath string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.path == "" || !paths.IsUnder(s.path, oldPath) {
		return
	}
	s.path = paths.Rebase(s.path, oldPath, newPath)
	s.mode = ModeFor(s.path)
}

// Close discards the session and empties the buffer.
func (s *Session) Close() {
	s.mu.Lock()
	s.path, s.dirty, s.mode = "", false, ModeText
	s.mu.Unlock()
	s.buf.SetValue("")
}

// Leave ends the session. Unsaved edits prompt the same question as
// switching files; declining discards them. If ctx ends first the session
// stays open.
func (s *Session) Leave(ctx context.Context) error {
	if s.State() == Dirty && s.dlg != nil {
		save, err := s.dlg.Confirm(ctx, "Unsaved changes", "Save the current file first?")
		if err != nil {
			return err
		}
		if save {
			if err := s.Save(); err != nil {
				return err
			}
		}
	}
	s.Close()
	return nil
}

// Forget closes the session when deleted is the open file or one of its
// ancestors, and reports whether it did.
func (s *Session) Forget(deleted string) bool {
	s.mu.Lock()
	hit := s.path != "" && paths.IsUnder(s.path, deleted)
	s.mu.Unlock()
	if hit {
		s.Close()
	}
	return hit
}

// Status is the editor status bar.
type Status struct {
	File     string
	Position string
	Language string
}

func (st Status) String() string {
	return strings.Join([]string{st.File, st.Position, st.Language}, "  ")
}

// StatusLine renders the status bar for a zero-based cursor position.
func (s *Session) StatusLine(row, col int) Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	file := "No file open"
	if s.path != "" {
		file = paths.Base(s.path)
		if s.dirty {
			file = "● " + file
		}
	}
	return Status{
		File:     file,
		Position: fmt.Sprintf("Ln %d, Col %d", row+1, col+1),
		Language: LanguageName(s.mode),
	}
}
