// Package watch reports changes below a local directory so open views can
// reload when files are changed behind their back.
package watch

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"webide-cli/internal/logging"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const DefaultDebounce = 250 * time.Millisecond

type Options struct {
	// Dir is the local directory to watch.
	Dir string
	// Recursive also watches every subdirectory, including ones created later.
	Recursive bool
	Debounce  time.Duration
	// OnChange runs after a burst of events has settled.
	OnChange func()
}

type Watcher struct {
	fsw    *fsnotify.Watcher
	deb    *debouncer
	opts   Options
	log    *zap.Logger
	closed chan struct{}
	once   sync.Once
	done   sync.WaitGroup
}

// New starts watching opts.Dir. The directory must exist.
func New(opts Options) (*Watcher, error) {
	if strings.TrimSpace(opts.Dir) == "" {
		return nil, errors.New("watch: missing dir")
	}
	if opts.OnChange == nil {
		return nil, errors.New("watch: missing OnChange")
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	w := &Watcher{
		fsw:    fsw,
		deb:    newDebouncer(opts.Debounce, opts.OnChange),
		opts:   opts,
		log:    logging.Named("watch"),
		closed: make(chan struct{}),
	}
	if err := w.add(opts.Dir); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	w.done.Add(1)
	go w.loop()
	return w, nil
}

func (w *Watcher) add(dir string) error {
	if !w.opts.Recursive {
		return w.fsw.Add(dir)
	}
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			// Subdirectories may vanish while walking.
			if p != dir && errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.fsw.Add(p); err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
		return nil
	})
}

func (w *Watcher) loop() {
	defer w.done.Done()
	for {
		select {
		case <-w.closed:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if w.opts.Recursive && event.Op&fsnotify.Create != 0 {
				if st, err := os.Stat(event.Name); err == nil && st.IsDir() {
					if err := w.add(event.Name); err != nil {
						w.log.Warn("watch new directory", zap.String("dir", event.Name), zap.Error(err))
					}
				}
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				w.log.Debug("change", zap.String("path", event.Name), zap.String("op", event.Op.String()))
				w.deb.Notify()
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watcher error", zap.Error(err))
		}
	}
}

// Close stops the watcher. Pending notifications are dropped.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closed)
		w.deb.Stop()
		err = w.fsw.Close()
		w.done.Wait()
	})
	return err
}
