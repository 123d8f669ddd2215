package cli

import (
	"fmt"
	"io"
	"strings"

	"webide-cli/internal/bridge"
	"webide-cli/internal/filetree"
	"webide-cli/internal/paths"

	"github.com/spf13/cobra"
)

type treeEntry struct {
	Name  string `json:"name"`
	Path  string `json:"path"`
	IsDir bool   `json:"isDirectory"`
	Depth int    `json:"depth"`
}

type treeListing []treeEntry

func (l treeListing) Text() string {
	var b strings.Builder
	for _, e := range l {
		b.WriteString(strings.Repeat("  ", e.Depth))
		b.WriteString(filetree.Icon(e.Name, e.IsDir))
		b.WriteString(" ")
		b.WriteString(e.Name)
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func newFilesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "files",
		Short: "Project file commands",
	}
	cmd.AddCommand(newFilesTreeCmd(app))
	cmd.AddCommand(newFilesCatCmd(app))
	cmd.AddCommand(newFilesWriteCmd(app))
	return cmd
}

// projectFile resolves a path relative to a project directory. The result
// must stay inside the project.
func projectFile(projectName, rel string) (string, error) {
	root := paths.ProjectPath(strings.TrimSpace(projectName))
	p := paths.Join(root, strings.TrimSpace(rel))
	if p == root || !paths.IsUnder(p, root) || strings.Contains("/"+rel+"/", "/../") {
		return "", fmt.Errorf("path outside project: %s", rel)
	}
	return p, nil
}

// expandAll opens directories breadth-first until depth levels are shown.
// A negative depth means no limit.
func expandAll(t *filetree.Tree, depth int) error {
	tried := map[string]bool{}
	for {
		changed := false
		for _, r := range t.Rows() {
			if !r.IsDir || r.Expanded || tried[r.Path] {
				continue
			}
			if depth >= 0 && r.Depth+1 >= depth {
				continue
			}
			tried[r.Path] = true
			if err := t.Expand(r.Path); err != nil {
				return err
			}
			changed = true
		}
		if !changed {
			return nil
		}
	}
}

func newFilesTreeCmd(app *App) *cobra.Command {
	var depth int

	cmd := &cobra.Command{
		Use:   "tree <project>",
		Short: "Show a project's files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withAdapter(cmd, func(_ *session, fs *bridge.Adapter) error {
				root := paths.ProjectPath(strings.TrimSpace(args[0]))
				ok, err := fs.Exists(root)
				if err != nil {
					return err
				}
				if !ok {
					return errNotFound("project", args[0])
				}
				t := filetree.New(fs, nil)
				if err := t.Init(root); err != nil {
					return err
				}
				if err := expandAll(t, depth); err != nil {
					return err
				}
				rows := t.Rows()
				out := make(treeListing, 0, len(rows))
				for _, r := range rows {
					out = append(out, treeEntry{Name: r.Name, Path: r.Path, IsDir: r.IsDir, Depth: r.Depth})
				}
				return writeOut(cmd, app, map[string]any{"data": out})
			})
		},
	}
	cmd.Flags().IntVar(&depth, "depth", -1, "Levels to show (-1: all)")
	return cmd
}

func newFilesCatCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "cat <project> <file>",
		Short: "Print a file's content",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := projectFile(args[0], args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			return app.withAdapter(cmd, func(_ *session, fs *bridge.Adapter) error {
				content, err := fs.ReadFile(p)
				if err != nil {
					return err
				}
				_, err = io.WriteString(cmd.OutOrStdout(), content)
				return err
			})
		},
	}
}

func newFilesWriteCmd(app *App) *cobra.Command {
	var content string

	cmd := &cobra.Command{
		Use:   "write <project> <file>",
		Short: "Write a file (content from --content or stdin)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := projectFile(args[0], args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			if !cmd.Flags().Changed("content") {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return writeErr(cmd, err)
				}
				content = string(b)
			}
			if err := paths.CheckName("file name", paths.Base(p)); err != nil {
				return writeErr(cmd, err)
			}
			return app.withAdapter(cmd, func(_ *session, fs *bridge.Adapter) error {
				if err := fs.WriteFile(p, content); err != nil {
					return err
				}
				return writeOut(cmd, app, map[string]any{"data": map[string]any{"path": p, "bytes": len(content)}})
			})
		},
	}
	cmd.Flags().StringVar(&content, "content", "", "File content")
	return cmd
}
