package cli

import (
	"fmt"
	"strings"
	"time"

	"webide-cli/internal/bridge"
	"webide-cli/internal/paths"
	"webide-cli/internal/project"

	"github.com/spf13/cobra"
)

// projectList renders as one line per project in text output.
type projectList []project.Project

func (l projectList) Text() string {
	if len(l) == 0 {
		return "No projects yet."
	}
	now := time.Now()
	var b strings.Builder
	for _, p := range l {
		fmt.Fprintf(&b, "%-24s %-32s %s\n", p.Name, p.PackageName, paths.FormatTime(p.LastModified, now))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func newProjectsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Project commands",
	}
	cmd.AddCommand(newProjectsListCmd(app))
	cmd.AddCommand(newProjectsCreateCmd(app))
	cmd.AddCommand(newProjectsRenameCmd(app))
	cmd.AddCommand(newProjectsDeleteCmd(app))
	cmd.AddCommand(newProjectsOpenCmd(app))
	return cmd
}

func newProjectsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List projects, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withAdapter(cmd, func(_ *session, fs *bridge.Adapter) error {
				ps, err := project.NewController(fs, nil).Load()
				if err != nil {
					return err
				}
				return writeOut(cmd, app, map[string]any{"data": projectList(ps)})
			})
		},
	}
}

func newProjectsCreateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withAdapter(cmd, func(_ *session, fs *bridge.Adapter) error {
				p, err := project.NewController(fs, nil).Create(args[0])
				if err != nil {
					return err
				}
				return writeOut(cmd, app, map[string]any{"data": p})
			})
		},
	}
}

// findProject loads the list and looks name up.
func findProject(pc *project.Controller, name string) (project.Project, error) {
	if _, err := pc.Load(); err != nil {
		return project.Project{}, err
	}
	p, ok := pc.Find(strings.TrimSpace(name))
	if !ok {
		return project.Project{}, errNotFound("project", name)
	}
	return p, nil
}

func newProjectsRenameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <name> <new-name>",
		Short: "Rename a project (directory and app name)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withAdapter(cmd, func(_ *session, fs *bridge.Adapter) error {
				pc := project.NewController(fs, nil)
				p, err := findProject(pc, args[0])
				if err != nil {
					return err
				}
				renamed, err := pc.Rename(p, args[1])
				if err != nil {
					return err
				}
				return writeOut(cmd, app, map[string]any{"data": renamed})
			})
		},
	}
}

func newProjectsDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a project and everything in it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return writeErr(cmd, fmt.Errorf("refusing to delete %q without --yes", args[0]))
			}
			return app.withAdapter(cmd, func(_ *session, fs *bridge.Adapter) error {
				pc := project.NewController(fs, nil)
				p, err := findProject(pc, args[0])
				if err != nil {
					return err
				}
				if err := pc.Delete(p); err != nil {
					return err
				}
				return writeOut(cmd, app, map[string]any{"data": map[string]any{"deleted": p.Name, "path": p.Path}})
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm the deletion")
	return cmd
}

func newProjectsOpenCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "open <name>",
		Short: "Mark a project as the current one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withAdapter(cmd, func(_ *session, fs *bridge.Adapter) error {
				pc := project.NewController(fs, nil)
				p, err := findProject(pc, args[0])
				if err != nil {
					return err
				}
				return writeOut(cmd, app, map[string]any{"data": pc.Open(p)})
			})
		},
	}
}
