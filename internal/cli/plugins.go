package cli

import (
	"fmt"
	"strings"

	"webide-cli/internal/bridge"
	"webide-cli/internal/plugin"

	"github.com/spf13/cobra"
)

type pluginEntry struct {
	plugin.Plugin
	Installed bool `json:"installed"`
}

type pluginList []pluginEntry

func (l pluginList) Text() string {
	if len(l) == 0 {
		return "No plugins match."
	}
	var b strings.Builder
	for _, p := range l {
		mark := " "
		if p.Installed {
			mark = "✓"
		}
		fmt.Fprintf(&b, "%s %-20s %-24s %-10s ★ %.1f  %s\n", mark, p.ID, p.Name, plugin.CategoryName(p.Category), p.Rating, plugin.FormatDownloads(p.Downloads))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func (e pluginEntry) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s v%s\n", e.Icon, e.Name, e.Version)
	fmt.Fprintf(&b, "%s · %s · ★ %.1f · %s downloads\n", e.Author, plugin.CategoryName(e.Category), e.Rating, plugin.FormatDownloads(e.Downloads))
	if e.Installed {
		b.WriteString("Installed\n")
	}
	b.WriteString("\n" + e.Details() + "\n")
	for _, f := range e.Features {
		b.WriteString("• " + f + "\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func newPluginsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plugins",
		Short: "Plugin catalog commands",
	}
	cmd.AddCommand(newPluginsListCmd(app))
	cmd.AddCommand(newPluginsShowCmd(app))
	cmd.AddCommand(newPluginsSetCmd(app, "install", true))
	cmd.AddCommand(newPluginsSetCmd(app, "uninstall", false))
	return cmd
}

func newPluginsListCmd(app *App) *cobra.Command {
	var category, query string
	var installedOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog plugins",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat := strings.ToLower(strings.TrimSpace(category))
			if !validCategory(cat) {
				return writeErr(cmd, fmt.Errorf("unknown category %q (want one of %s)", category, strings.Join(plugin.Categories, ", ")))
			}
			return app.withAdapter(cmd, func(_ *session, fs *bridge.Adapter) error {
				st, err := plugin.Open(fs)
				if err != nil {
					return err
				}
				out := pluginList{}
				for _, p := range st.Filter(cat, query) {
					e := pluginEntry{Plugin: p, Installed: st.Installed(p.ID)}
					if installedOnly && !e.Installed {
						continue
					}
					out = append(out, e)
				}
				return writeOut(cmd, app, map[string]any{"data": out})
			})
		},
	}
	cmd.Flags().StringVar(&category, "category", plugin.CategoryAll, "Category ("+strings.Join(plugin.Categories, "|")+")")
	cmd.Flags().StringVar(&query, "query", "", "Keyword matched against name and description")
	cmd.Flags().BoolVar(&installedOnly, "installed", false, "Only installed plugins")
	return cmd
}

func validCategory(c string) bool {
	for _, k := range plugin.Categories {
		if c == k {
			return true
		}
	}
	return false
}

func newPluginsShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show plugin details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withAdapter(cmd, func(_ *session, fs *bridge.Adapter) error {
				st, err := plugin.Open(fs)
				if err != nil {
					return err
				}
				p, ok := st.Get(args[0])
				if !ok {
					return errNotFound("plugin", args[0])
				}
				return writeOut(cmd, app, map[string]any{"data": pluginEntry{Plugin: p, Installed: st.Installed(p.ID)}})
			})
		},
	}
}

func newPluginsSetCmd(app *App, use string, want bool) *cobra.Command {
	short := "Install a plugin"
	if !want {
		short = "Uninstall a plugin"
	}
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withAdapter(cmd, func(_ *session, fs *bridge.Adapter) error {
				st, err := plugin.Open(fs)
				if err != nil {
					return err
				}
				if _, ok := st.Get(args[0]); !ok {
					return errNotFound("plugin", args[0])
				}
				if err := st.SetInstalled(args[0], want); err != nil {
					return err
				}
				return writeOut(cmd, app, map[string]any{"data": map[string]any{"id": args[0], "installed": want, "installedIds": st.InstalledIDs()}})
			})
		},
	}
}
