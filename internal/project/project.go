// Package project manages the projects stored under the projects root: one
// directory per project with a web.json sidecar holding its display name and
// package identifier.
package project

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"webide-cli/internal/bridge"
	"webide-cli/internal/dialog"
	"webide-cli/internal/logging"
	"webide-cli/internal/metrics"
	"webide-cli/internal/paths"
	"webide-cli/internal/store"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrExists is returned when a project directory with the target name is
// already present.
var ErrExists = errors.New("project already exists")

// Project is one entry of the project list.
type Project struct {
	Name         string    `json:"name"`
	Path         string    `json:"path"`
	AppName      string    `json:"appName"`
	PackageName  string    `json:"packageName"`
	LastModified time.Time `json:"lastModified"`
}

const (
	sidecarAppName     = "app_name"
	sidecarPackageName = "package_name"
)

// Controller owns the project list session. It is safe for concurrent use.
type Controller struct {
	fs    *bridge.Adapter
	dlg   *dialog.Service
	root  string
	guard singleflight.Group
	log   *zap.Logger

	mu       sync.RWMutex
	projects []Project
}

// NewController builds a controller over fs. dlg may be nil for
// non-interactive use; the Prompt* and Confirm* flows then fail.
func NewController(fs *bridge.Adapter, dlg *dialog.Service) *Controller {
	return &Controller{
		fs:   fs,
		dlg:  dlg,
		root: paths.ProjectsRoot(),
		log:  logging.Named("project"),
	}
}

func (c *Controller) Root() string { return c.root }

// Projects returns the result of the last Load.
func (c *Controller) Projects() []Project {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Project(nil), c.projects...)
}

// Find looks a project up by directory name in the last loaded list.
func (c *Controller) Find(name string) (Project, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, p := range c.projects {
		if p.Name == name {
			return p, true
		}
	}
	return Project{}, false
}

// Load lists the projects root. Directories without a sidecar are not
// projects; a sidecar that cannot be read or parsed drops only that project.
// The result is sorted newest first, keeping listing order among ties.
func (c *Controller) Load() ([]Project, error) {
	// The root usually exists already.
	_ = c.fs.CreateFile(c.root, true)

	files, err := c.fs.ListFiles(c.root)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	out := make([]Project, 0, len(files))
	for _, f := range files {
		if !f.IsDirectory {
			continue
		}
		cfgPath := paths.Join(c.root, f.Name, paths.ConfigFileName)
		ok, err := c.fs.Exists(cfgPath)
		if err != nil || !ok {
			continue
		}
		p, err := c.readProject(f)
		if err != nil {
			c.log.Warn("skipping project", zap.String("name", f.Name), zap.Error(err))
			metrics.ProjectSkipped()
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastModified.After(out[j].LastModified)
	})

	c.mu.Lock()
	c.projects = out
	c.mu.Unlock()
	metrics.SetProjectsListed(len(out))
	return append([]Project(nil), out...), nil
}

func (c *Controller) readProject(f bridge.FileInfo) (Project, error) {
	cfg, err := c.readSidecar(paths.Join(c.root, f.Name))
	if err != nil {
		return Project{}, err
	}
	p := Project{
		Name:         f.Name,
		Path:         paths.ProjectPath(f.Name),
		AppName:      f.Name,
		PackageName:  paths.DefaultPackageName,
		LastModified: f.ModTime(),
	}
	if s, ok := cfg[sidecarAppName].(string); ok && s != "" {
		p.AppName = s
	}
	if s, ok := cfg[sidecarPackageName].(string); ok && s != "" {
		p.PackageName = s
	}
	return p, nil
}

func (c *Controller) readSidecar(dir string) (map[string]any, error) {
	raw, err := c.fs.ReadFile(paths.Join(dir, paths.ConfigFileName))
	if err != nil {
		return nil, err
	}
	var cfg map[string]any
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", paths.ConfigFileName, err)
	}
	if cfg == nil {
		cfg = map[string]any{}
	}
	return cfg, nil
}

func (c *Controller) writeSidecar(dir string, cfg map[string]any) error {
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return c.fs.WriteFile(paths.Join(dir, paths.ConfigFileName), string(b))
}

// Create makes a project directory and its sidecar. The two writes are not
// transactional: if the sidecar write fails the bare directory remains and is
// not listed.
func (c *Controller) Create(name string) (Project, error) {
	name = strings.TrimSpace(name)
	if err := paths.CheckName("project name", name); err != nil {
		return Project{}, err
	}
	v, err, _ := c.guard.Do("create:"+name, func() (any, error) {
		dir := paths.ProjectPath(name)
		exists, err := c.fs.Exists(dir)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, fmt.Errorf("%w: %s", ErrExists, name)
		}
		if err := c.fs.CreateFile(dir, true); err != nil {
			return nil, err
		}
		pkg := paths.GeneratePackageName(name)
		if err := c.writeSidecar(dir, map[string]any{
			sidecarAppName:     name,
			sidecarPackageName: pkg,
		}); err != nil {
			return nil, err
		}
		c.log.Info("project created", zap.String("name", name), zap.String("package", pkg))
		return Project{Name: name, Path: dir, AppName: name, PackageName: pkg, LastModified: time.Now()}, nil
	})
	if err != nil {
		return Project{}, err
	}
	return v.(Project), nil
}

// Rename moves the project directory and rewrites the sidecar's app_name,
// keeping every other sidecar field. Renaming to the current name is a no-op.
func (c *Controller) Rename(p Project, newName string) (Project, error) {
	newName = strings.TrimSpace(newName)
	if newName == p.Name {
		return p, nil
	}
	if err := paths.CheckName("project name", newName); err != nil {
		return Project{}, err
	}
	v, err, _ := c.guard.Do("rename:"+p.Path, func() (any, error) {
		dst := paths.ProjectPath(newName)
		exists, err := c.fs.Exists(dst)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, fmt.Errorf("%w: %s", ErrExists, newName)
		}
		if err := c.fs.RenameFile(p.Path, dst); err != nil {
			return nil, err
		}
		cfg, err := c.readSidecar(dst)
		if err != nil {
			return nil, fmt.Errorf("update sidecar: %w", err)
		}
		cfg[sidecarAppName] = newName
		if err := c.writeSidecar(dst, cfg); err != nil {
			return nil, fmt.Errorf("update sidecar: %w", err)
		}
		out := p
		out.Name, out.Path, out.AppName = newName, dst, newName
		c.log.Info("project renamed", zap.String("from", p.Name), zap.String("to", newName))
		return out, nil
	})
	if err != nil {
		return Project{}, err
	}
	return v.(Project), nil
}

// Delete removes the project directory and everything below it.
func (c *Controller) Delete(p Project) error {
	_, err, _ := c.guard.Do("delete:"+p.Path, func() (any, error) {
		if err := c.fs.DeleteFile(p.Path); err != nil {
			return nil, err
		}
		c.log.Info("project deleted", zap.String("name", p.Name))
		return nil, nil
	})
	return err
}

// Open records p as the current project.
func (c *Controller) Open(p Project) Project {
	c.fs.SetConfig(store.KeyCurrentProject, p.Name)
	return p
}

// Current returns the name stored by the last Open.
func (c *Controller) Current() string {
	return c.fs.GetConfig(store.KeyCurrentProject)
}

var errNoDialog = errors.New("no dialog service")

// PromptCreate asks for a name, creates the project and reloads. Outcomes
// are reported as toasts; the returned error is for callers that log.
func (c *Controller) PromptCreate(ctx context.Context) error {
	if c.dlg == nil {
		return errNoDialog
	}
	_, err, _ := c.guard.Do("prompt-create", func() (any, error) {
		name, err := c.dlg.Prompt(ctx, "New project", "Project name", "")
		if err != nil || name == "" {
			return nil, ignoreCancel(err)
		}
		if _, err := c.Create(name); err != nil {
			c.fs.ShowToast(createFailure(err))
			return nil, err
		}
		c.fs.ShowToast("Project created")
		_, err = c.Load()
		return nil, err
	})
	return err
}

// PromptRename asks for a new name for p, renames and reloads.
func (c *Controller) PromptRename(ctx context.Context, p Project) error {
	if c.dlg == nil {
		return errNoDialog
	}
	_, err, _ := c.guard.Do("prompt-rename:"+p.Path, func() (any, error) {
		name, err := c.dlg.Prompt(ctx, "Rename project", "New name", p.Name)
		if err != nil || name == "" || name == p.Name {
			return nil, ignoreCancel(err)
		}
		if _, err := c.Rename(p, name); err != nil {
			var ve *paths.ValidationError
			switch {
			case errors.As(err, &ve):
				c.fs.ShowToast("Project name contains invalid characters")
			case errors.Is(err, ErrExists):
				c.fs.ShowToast("A project with that name already exists")
			default:
				c.fs.ShowToast("Rename failed")
			}
			return nil, err
		}
		c.fs.ShowToast("Project renamed")
		_, err = c.Load()
		return nil, err
	})
	return err
}

// ConfirmDelete asks before deleting p, then reloads.
func (c *Controller) ConfirmDelete(ctx context.Context, p Project) error {
	if c.dlg == nil {
		return errNoDialog
	}
	_, err, _ := c.guard.Do("confirm-delete:"+p.Path, func() (any, error) {
		ok, err := c.dlg.Confirm(ctx, "Delete project",
			fmt.Sprintf("Delete project %q? This cannot be undone.", p.AppName))
		if err != nil || !ok {
			return nil, err
		}
		if err := c.Delete(p); err != nil {
			c.fs.ShowToast("Delete failed")
			return nil, err
		}
		c.fs.ShowToast("Project deleted")
		_, err = c.Load()
		return nil, err
	})
	return err
}

func createFailure(err error) string {
	var ve *paths.ValidationError
	switch {
	case errors.As(err, &ve):
		return "Project name contains invalid characters"
	case errors.Is(err, ErrExists):
		return "Project already exists"
	default:
		return "Failed to create project"
	}
}

func ignoreCancel(err error) error {
	if errors.Is(err, dialog.ErrCanceled) {
		return nil
	}
	return err
}
