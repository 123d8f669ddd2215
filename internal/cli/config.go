package cli

import (
	"webide-cli/internal/bridge"

	"github.com/spf13/cobra"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Host configuration values",
	}
	cmd.AddCommand(newConfigGetCmd(app))
	cmd.AddCommand(newConfigSetCmd(app))
	cmd.AddCommand(newConfigListCmd(app))
	return cmd
}

func newConfigGetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>...",
		Short: "Read config values (missing keys are empty)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withAdapter(cmd, func(_ *session, fs *bridge.Adapter) error {
				if len(args) == 1 {
					return writeOut(cmd, app, map[string]any{"data": map[string]string{args[0]: fs.GetConfig(args[0])}})
				}
				got := fs.GetConfigs(args)
				out := make(map[string]string, len(args))
				for _, k := range args {
					out[k] = got[k]
				}
				return writeOut(cmd, app, map[string]any{"data": out})
			})
		},
	}
}

func newConfigSetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Write a config value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withAdapter(cmd, func(_ *session, fs *bridge.Adapter) error {
				fs.SetConfig(args[0], args[1])
				return writeOut(cmd, app, map[string]any{"data": map[string]string{args[0]: args[1]}})
			})
		},
	}
}

func newConfigListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every stored config value (local storage only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withAdapter(cmd, func(s *session, fs *bridge.Adapter) error {
				if s.kv == nil {
					return errLocalOnly
				}
				keys, err := s.kv.Keys(cmd.Context())
				if err != nil {
					return err
				}
				got := fs.GetConfigs(keys)
				out := make(map[string]string, len(keys))
				for _, k := range keys {
					out[k] = got[k]
				}
				return writeOut(cmd, app, map[string]any{"data": out})
			})
		},
	}
}
