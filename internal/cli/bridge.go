package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"webide-cli/internal/bridgeserver"
	"webide-cli/internal/logging"
	"webide-cli/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newBridgeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bridge",
		Short: "Host bridge commands",
	}
	cmd.AddCommand(newBridgeServeCmd(app))
	return cmd
}

func newBridgeServeCmd(app *App) *cobra.Command {
	var addr string
	var tty bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose local storage over a WebSocket host bridge",
		Long: strings.TrimSpace(`
Serve this machine's storage root as a host bridge.

Other webide processes connect with --bridge ws://<addr>/ws and then run every
file and config call against this storage. GET /metrics exposes Prometheus
metrics; with --tty, GET /tty runs the TUI itself in a PTY per connection.

Notes:
- No authentication: bind to a trusted interface.
`),
		Example: strings.TrimSpace(`
# Serve on localhost
webide bridge serve --addr 127.0.0.1:8765

# From another shell
webide --bridge ws://127.0.0.1:8765/ws projects list
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Bridge != "" {
				return writeErr(cmd, errLocalOnly)
			}
			s, err := app.openHost(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			dir, err := store.StorageDir(app.Storage)
			if err != nil {
				return writeErr(cmd, err)
			}
			srv, err := bridgeserver.NewServer(bridgeserver.ServerConfig{
				Addr:    addr,
				Host:    s.host,
				TTY:     tty,
				TTYArgs: []string{"--storage", dir},
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			ln, err := net.Listen("tcp", srv.Addr())
			if err != nil {
				return writeErr(cmd, fmt.Errorf("listen %s: %w", srv.Addr(), err))
			}

			listenAddr := ln.Addr().String()
			hints := []string{"webide --bridge ws://" + listenAddr + "/ws projects list"}
			if tty {
				hints = append(hints, "terminal: ws://"+listenAddr+"/tty")
			}
			_ = writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"addr":      listenAddr,
					"storage":   dir,
					"tty":       tty,
					"startedAt": time.Now().UTC().Format(time.RFC3339Nano),
				},
				"_hints": hints,
			})
			fmt.Fprintf(cmd.ErrOrStderr(), "webide bridge running at ws://%s/ws (storage=%s)\n", listenAddr, dir)
			logging.L().Info("bridge serving", zap.String("addr", listenAddr), zap.String("storage", dir))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := srv.Serve(ctx, ln); err != nil && !errors.Is(err, context.Canceled) {
				return writeErr(cmd, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8765", "Bind address (host:port or :port)")
	cmd.Flags().BoolVar(&tty, "tty", false, "Also serve the TUI over a PTY at /tty")
	return cmd
}
