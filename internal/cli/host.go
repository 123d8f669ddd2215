package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"webide-cli/internal/bridge"
	"webide-cli/internal/paths"
	"webide-cli/internal/store"

	"github.com/spf13/cobra"
)

// session is one opened host and what has to be released with it.
type session struct {
	host   bridge.Host
	local  *bridge.LocalHost
	kv     *store.KV
	remote *bridge.RemoteHost
}

// openHost resolves the host for this invocation: a remote bridge when
// --bridge is set, local storage backed by the SQLite config store otherwise.
func (app *App) openHost(ctx context.Context) (*session, error) {
	if app.Bridge != "" {
		rh, err := bridge.DialRemote(app.Bridge, nil)
		if err != nil {
			return nil, err
		}
		return &session{host: rh, remote: rh}, nil
	}

	dir, err := store.StorageDir(app.Storage)
	if err != nil {
		return nil, err
	}
	kv, err := store.OpenDefaultKV(ctx)
	if err != nil {
		return nil, fmt.Errorf("open config store: %w", err)
	}
	lh, err := bridge.NewLocalHost(dir, kv)
	if err != nil {
		_ = kv.Close()
		return nil, err
	}
	return &session{host: lh, local: lh, kv: kv}, nil
}

func (s *session) Close() {
	if s.remote != nil {
		_ = s.remote.Close()
	}
	if s.kv != nil {
		_ = s.kv.Close()
	}
}

// adapter wraps the host for a non-interactive command: toasts become lines
// on stderr, haptics are dropped.
func (s *session) adapter(cmd *cobra.Command) (*bridge.Adapter, error) {
	errOut := cmd.ErrOrStderr()
	return bridge.NewAdapter(bridge.WithSinks(s.host, func(t bridge.Toast) { printToast(errOut, t) }, nil))
}

func printToast(w io.Writer, t bridge.Toast) {
	fmt.Fprintln(w, "› "+t.Message)
}

// watchDir is the local directory behind the projects root, when there is
// one.
func (s *session) watchDir() string {
	if s.local == nil {
		return ""
	}
	dir, err := s.local.LocalPath(paths.ProjectsRoot())
	if err != nil {
		return ""
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ""
	}
	return dir
}

// withAdapter opens a host, runs fn against it and releases the host.
func (app *App) withAdapter(cmd *cobra.Command, fn func(s *session, fs *bridge.Adapter) error) error {
	s, err := app.openHost(cmd.Context())
	if err != nil {
		return writeErr(cmd, err)
	}
	defer s.Close()
	fs, err := s.adapter(cmd)
	if err != nil {
		return writeErr(cmd, err)
	}
	if err := fn(s, fs); err != nil {
		return writeErr(cmd, err)
	}
	return nil
}

var errLocalOnly = errors.New("not available with --bridge: needs local storage")
