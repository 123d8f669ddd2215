package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"webide-cli/internal/format"
	"webide-cli/internal/logging"
	"webide-cli/internal/store"

	"github.com/spf13/cobra"
)

type App struct {
	Storage  string
	Bridge   string
	Format   string
	Pretty   bool
	LogLevel string
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "webide",
		Short:        "WebIDE+ project workspace: TUI editor + scriptable CLI",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  webide

  # Open the TUI straight into a project
  webide edit Demo

  # Scriptable commands
  webide projects list
  webide files cat Demo index.html

  # Drive a storage root on another machine
  webide --bridge ws://phone.local:8765/ws projects list
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if len(args) == 0 {
				return runTUI(cmd, app, "")
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return initLogging(cmd, app)
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		_ = logging.Sync()
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.Storage, "storage", envOr("WEBIDE_STORAGE", ""), "Local directory standing in for the device storage root")
	cmd.PersistentFlags().StringVar(&app.Bridge, "bridge", envOr("WEBIDE_BRIDGE", ""), "Use a remote host bridge (ws://host:port/ws) instead of local storage")
	cmd.PersistentFlags().BoolVar(&app.Pretty, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("WEBIDE_FORMAT", "json"), "Output format (json|yaml|text)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", envOr("WEBIDE_LOG_LEVEL", "warn"), "Log level (debug|info|warn|error)")

	cmd.AddCommand(newProjectsCmd(app))
	cmd.AddCommand(newFilesCmd(app))
	cmd.AddCommand(newPluginsCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newBridgeCmd(app))
	cmd.AddCommand(newEditCmd(app))
	return cmd
}

// interactive reports whether cmd hands the terminal to the TUI.
func interactive(cmd *cobra.Command) bool {
	return cmd == cmd.Root() || cmd.Name() == "edit"
}

// initLogging sends logs to a file while the TUI owns the terminal and to
// stderr otherwise, keeping stdout clean for command output.
func initLogging(cmd *cobra.Command, app *App) error {
	cfg := logging.Config{Level: app.LogLevel, Format: "console", OutputPath: "stderr"}
	if interactive(cmd) {
		path, err := store.LogPath()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		cfg.Level = envOr("WEBIDE_LOG_LEVEL", "info")
		if cmd.Flags().Changed("log-level") {
			cfg.Level = app.LogLevel
		}
		cfg.Format = "json"
		cfg.OutputPath = path
	}
	if err := logging.Init(cfg); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	return nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.Pretty)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
