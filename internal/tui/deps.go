package tui

import (
	"context"
	"errors"

	"webide-cli/internal/bridge"
	"webide-cli/internal/dialog"
	"webide-cli/internal/editor"
	"webide-cli/internal/filetree"
	"webide-cli/internal/logging"
	"webide-cli/internal/plugin"
	"webide-cli/internal/project"

	"go.uber.org/zap"
)

// deps are the controllers behind the UI. They are pointers, so copies of the
// (value) model share them.
type deps struct {
	fs        *bridge.Adapter
	dlg       *dialog.Service
	proj      *project.Controller
	tree      *filetree.Tree
	editor    *editor.Session
	buf       *textBuffer
	plugins   *plugin.Store
	refresher *project.Refresher
	press     *filetree.LongPress
	log       *zap.Logger
}

func newDeps(fs *bridge.Adapter) (deps, error) {
	plugins, err := plugin.Open(fs)
	if err != nil {
		return deps{}, err
	}
	d := deps{
		fs:      fs,
		dlg:     dialog.New(),
		buf:     &textBuffer{},
		plugins: plugins,
		log:     logging.Named("tui"),
	}
	d.proj = project.NewController(fs, d.dlg)
	d.tree = filetree.New(fs, d.dlg)
	d.editor = editor.New(fs, d.dlg, d.buf)
	d.refresher = project.NewRefresher(func(context.Context) error {
		_, err := d.proj.Load()
		return err
	}, fs.Vibrate)
	d.press = filetree.NewLongPress(fs.Vibrate)

	log := d.log
	sess := d.editor
	d.tree.OnSelect(func(path string) {
		// Open reports its own failures as toasts.
		if err := sess.Open(context.Background(), path); err != nil && !errors.Is(err, dialog.ErrCanceled) {
			log.Debug("open from tree", zap.String("path", path), zap.Error(err))
		}
	})
	d.tree.OnRenamed(sess.Retarget)
	d.tree.OnDeleted(func(path string) { sess.Forget(path) })
	return d, nil
}
