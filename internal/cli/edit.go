package cli

import (
	"webide-cli/internal/tui"

	"github.com/spf13/cobra"
)

func newEditCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <project>",
		Short: "Open the TUI on a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, app, args[0])
		},
	}
}

func runTUI(cmd *cobra.Command, app *App, projectName string) error {
	s, err := app.openHost(cmd.Context())
	if err != nil {
		return writeErr(cmd, err)
	}
	defer s.Close()
	if err := tui.Run(tui.Options{Host: s.host, Project: projectName, WatchDir: s.watchDir()}); err != nil {
		return writeErr(cmd, err)
	}
	return nil
}
