// Package filetree is the lazily expanded file tree of one project.
//
// Directory contents are fetched when a directory is expanded and dropped
// when it collapses. The expanded set is keyed by path, so a full reload
// reopens the same directories.
package filetree

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"webide-cli/internal/bridge"
	"webide-cli/internal/dialog"
	"webide-cli/internal/logging"
	"webide-cli/internal/paths"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

var (
	ErrExists   = errors.New("already exists")
	ErrNotFound = errors.New("not in tree")
	ErrNotDir   = errors.New("not a directory")
)

// Node is one entry of the tree. Children is non-nil only while the
// directory is expanded.
type Node struct {
	Name     string
	Path     string
	IsDir    bool
	Children []*Node
}

// Row is one visible line of the flattened tree.
type Row struct {
	Name     string
	Path     string
	IsDir    bool
	Depth    int
	Expanded bool
	Active   bool
}

type Tree struct {
	fs  *bridge.Adapter
	dlg *dialog.Service
	log *zap.Logger

	// guard collapses repeated prompt flows for the same target.
	guard singleflight.Group

	mu       sync.Mutex
	root     string
	nodes    []*Node
	expanded map[string]bool
	active   string
	coll     *collate.Collator

	onSelect  func(path string)
	onRenamed func(oldPath, newPath string)
	onDeleted func(path string)
}

// New returns an empty tree. dlg is only needed by the Prompt* flows.
func New(fs *bridge.Adapter, dlg *dialog.Service) *Tree {
	return &Tree{
		fs:       fs,
		dlg:      dlg,
		log:      logging.Named("filetree"),
		expanded: map[string]bool{},
		coll:     collate.New(language.Und, collate.IgnoreCase),
	}
}

// OnSelect registers the observer told about file selections.
func (t *Tree) OnSelect(fn func(path string)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSelect = fn
}

// OnRenamed registers the observer told when an entry changes path.
func (t *Tree) OnRenamed(fn func(oldPath, newPath string)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onRenamed = fn
}

// OnDeleted registers the observer told when an entry is removed.
func (t *Tree) OnDeleted(fn func(path string)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onDeleted = fn
}

// Init roots the tree at dir and loads it.
func (t *Tree) Init(root string) error {
	t.mu.Lock()
	t.root = root
	t.nodes = nil
	t.expanded = map[string]bool{}
	t.active = ""
	t.mu.Unlock()
	return t.Load()
}

func (t *Tree) Root() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.root
}

// Active returns the selected file, or "".
func (t *Tree) Active() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

func (t *Tree) IsExpanded(path string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.expanded[path]
}

// Expanded returns the expanded directory paths, sorted.
func (t *Tree) Expanded() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, 0, len(t.expanded))
	for p := range t.expanded {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Load rebuilds the whole tree from the host, reopening every expanded
// directory that still exists.
func (t *Tree) Load() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	nodes, err := t.listLocked(t.root)
	if err != nil {
		return fmt.Errorf("load tree: %w", err)
	}
	t.nodes = nodes
	t.reopenLocked(t.nodes)
	return nil
}

func (t *Tree) reopenLocked(nodes []*Node) {
	for _, n := range nodes {
		if !n.IsDir || !t.expanded[n.Path] {
			continue
		}
		children, err := t.listLocked(n.Path)
		if err != nil {
			t.log.Warn("reopen directory", zap.String("path", n.Path), zap.Error(err))
			delete(t.expanded, n.Path)
			continue
		}
		n.Children = children
		t.reopenLocked(children)
	}
}

// listLocked fetches dir and sorts it: directories first, then by name.
func (t *Tree) listLocked(dir string) ([]*Node, error) {
	files, err := t.fs.ListFiles(dir)
	if err != nil {
		return nil, err
	}
	nodes := make([]*Node, 0, len(files))
	for _, f := range files {
		nodes = append(nodes, &Node{Name: f.Name, Path: paths.Join(dir, f.Name), IsDir: f.IsDirectory})
	}
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := nodes[i], nodes[j]
		if a.IsDir != b.IsDir {
			return a.IsDir
		}
		if c := t.coll.CompareString(a.Name, b.Name); c != 0 {
			return c < 0
		}
		return a.Name < b.Name
	})
	return nodes, nil
}

func (t *Tree) findLocked(path string) *Node {
	var walk func([]*Node) *Node
	walk = func(nodes []*Node) *Node {
		for _, n := range nodes {
			if n.Path == path {
				return n
			}
			if n.Children != nil && paths.IsUnder(path, n.Path) {
				return walk(n.Children)
			}
		}
		return nil
	}
	return walk(t.nodes)
}

// Find returns a copy of the visible node at path.
func (t *Tree) Find(path string) (Node, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := t.findLocked(path)
	if n == nil {
		return Node{}, false
	}
	return Node{Name: n.Name, Path: n.Path, IsDir: n.IsDir}, true
}

// Expand loads and shows the children of the directory at path. Expanding an
// expanded directory does nothing.
func (t *Tree) Expand(path string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := t.findLocked(path)
	if n == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if !n.IsDir {
		return fmt.Errorf("%w: %s", ErrNotDir, path)
	}
	if t.expanded[path] && n.Children != nil {
		return nil
	}
	children, err := t.listLocked(path)
	if err != nil {
		return err
	}
	t.expanded[path] = true
	n.Children = children
	t.reopenLocked(children)
	return nil
}

// Collapse hides and drops the children of path. Expanded descendants stay
// in the set and reopen with it.
func (t *Tree) Collapse(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.expanded, path)
	if n := t.findLocked(path); n != nil {
		n.Children = nil
	}
}

func (t *Tree) Toggle(path string) error {
	if t.IsExpanded(path) {
		t.Collapse(path)
		return nil
	}
	return t.Expand(path)
}

// Select makes path the single active file and notifies the observer.
func (t *Tree) Select(path string) error {
	t.mu.Lock()
	n := t.findLocked(path)
	if n == nil {
		t.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if n.IsDir {
		t.mu.Unlock()
		return fmt.Errorf("select %s: is a directory", path)
	}
	t.active = path
	fn := t.onSelect
	t.mu.Unlock()
	if fn != nil {
		fn(path)
	}
	return nil
}

// Children returns the loaded children of an expanded directory.
func (t *Tree) Children(path string) []Node {
	t.mu.Lock()
	defer t.mu.Unlock()
	var src []*Node
	if path == t.root {
		src = t.nodes
	} else if n := t.findLocked(path); n != nil {
		src = n.Children
	}
	out := make([]Node, 0, len(src))
	for _, n := range src {
		out = append(out, Node{Name: n.Name, Path: n.Path, IsDir: n.IsDir})
	}
	return out
}

// Rows flattens the visible tree in display order.
func (t *Tree) Rows() []Row {
	t.mu.Lock()
	defer t.mu.Unlock()
	var rows []Row
	var walk func([]*Node, int)
	walk = func(nodes []*Node, depth int) {
		for _, n := range nodes {
			expanded := n.IsDir && n.Children != nil
			rows = append(rows, Row{
				Name:     n.Name,
				Path:     n.Path,
				IsDir:    n.IsDir,
				Depth:    depth,
				Expanded: expanded,
				Active:   n.Path == t.active,
			})
			if expanded {
				walk(n.Children, depth+1)
			}
		}
	}
	walk(t.nodes, 0)
	return rows
}

// TargetDir is the directory new entries go into when the menu was raised
// on path: the directory itself, or a file's parent.
func TargetDir(path string, isDir bool) string {
	if isDir {
		return path
	}
	return paths.Parent(path)
}

func (t *Tree) checkFree(path string) error {
	exists, err := t.fs.Exists(path)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrExists, path)
	}
	return nil
}

// CreateFile writes an empty file under parent, reloads, and selects it.
func (t *Tree) CreateFile(parent, name string) (string, error) {
	name = strings.TrimSpace(name)
	if err := paths.CheckName("file name", name); err != nil {
		return "", err
	}
	p := paths.Join(parent, name)
	if err := t.checkFree(p); err != nil {
		return "", err
	}
	if err := t.fs.WriteFile(p, ""); err != nil {
		return "", err
	}
	t.mu.Lock()
	if parent != t.root {
		t.expanded[parent] = true
	}
	t.mu.Unlock()
	if err := t.Load(); err != nil {
		return p, err
	}
	return p, t.Select(p)
}

// CreateFolder makes a directory under parent and reloads.
func (t *Tree) CreateFolder(parent, name string) (string, error) {
	name = strings.TrimSpace(name)
	if err := paths.CheckName("folder name", name); err != nil {
		return "", err
	}
	p := paths.Join(parent, name)
	if err := t.fs.CreateFile(p, true); err != nil {
		return "", err
	}
	t.mu.Lock()
	if parent != t.root {
		t.expanded[parent] = true
	}
	t.mu.Unlock()
	return p, t.Load()
}

// Rename renames the entry at path within its directory. Expanded paths and
// the active file below it follow the rename.
func (t *Tree) Rename(path, newName string) (string, error) {
	newName = strings.TrimSpace(newName)
	if newName == paths.Base(path) {
		return path, nil
	}
	if err := paths.CheckName("name", newName); err != nil {
		return "", err
	}
	newPath := paths.Join(paths.Parent(path), newName)
	if err := t.fs.RenameFile(path, newPath); err != nil {
		return "", err
	}

	t.mu.Lock()
	moved := map[string]bool{}
	for p := range t.expanded {
		moved[paths.Rebase(p, path, newPath)] = true
	}
	t.expanded = moved
	if t.active != "" {
		t.active = paths.Rebase(t.active, path, newPath)
	}
	fn := t.onRenamed
	t.mu.Unlock()

	err := t.Load()
	if fn != nil {
		fn(path, newPath)
	}
	return newPath, err
}

// Delete removes the entry at path. Deleting the active file or one of its
// ancestors clears the selection.
func (t *Tree) Delete(path string) error {
	if err := t.fs.DeleteFile(path); err != nil {
		return err
	}
	t.mu.Lock()
	for p := range t.expanded {
		if paths.IsUnder(p, path) {
			delete(t.expanded, p)
		}
	}
	if t.active != "" && paths.IsUnder(t.active, path) {
		t.active = ""
	}
	fn := t.onDeleted
	t.mu.Unlock()

	err := t.Load()
	if fn != nil {
		fn(path)
	}
	return err
}

var errNoDialog = errors.New("no dialog service")

// PromptNewFile asks for a file name and creates it in TargetDir(target).
func (t *Tree) PromptNewFile(ctx context.Context, target string, isDir bool) error {
	if t.dlg == nil {
		return errNoDialog
	}
	dir := TargetDir(target, isDir)
	_, err, _ := t.guard.Do("prompt-new-file:"+dir, func() (any, error) {
		name, err := t.dlg.Prompt(ctx, "New file", "File name", "")
		if err != nil || name == "" {
			return nil, ignoreCancel(err)
		}
		if _, err := t.CreateFile(dir, name); err != nil {
			t.fs.ShowToast(failure(err, "Invalid file name", "Failed to create file"))
			return nil, err
		}
		t.fs.ShowToast("File created")
		return nil, nil
	})
	return err
}

// PromptNewFolder asks for a folder name and creates it in TargetDir(target).
func (t *Tree) PromptNewFolder(ctx context.Context, target string, isDir bool) error {
	if t.dlg == nil {
		return errNoDialog
	}
	dir := TargetDir(target, isDir)
	_, err, _ := t.guard.Do("prompt-new-folder:"+dir, func() (any, error) {
		name, err := t.dlg.Prompt(ctx, "New folder", "Folder name", "")
		if err != nil || name == "" {
			return nil, ignoreCancel(err)
		}
		if _, err := t.CreateFolder(dir, name); err != nil {
			t.fs.ShowToast(failure(err, "Invalid folder name", "Failed to create folder"))
			return nil, err
		}
		t.fs.ShowToast("Folder created")
		return nil, nil
	})
	return err
}

func (t *Tree) PromptRename(ctx context.Context, path string) error {
	if t.dlg == nil {
		return errNoDialog
	}
	_, err, _ := t.guard.Do("prompt-rename:"+path, func() (any, error) {
		old := paths.Base(path)
		name, err := t.dlg.Prompt(ctx, "Rename", "New name", old)
		if err != nil || name == "" || name == old {
			return nil, ignoreCancel(err)
		}
		if _, err := t.Rename(path, name); err != nil {
			t.fs.ShowToast(failure(err, "Invalid name", "Rename failed"))
			return nil, err
		}
		t.fs.ShowToast("Renamed")
		return nil, nil
	})
	return err
}

func (t *Tree) ConfirmDelete(ctx context.Context, path string) error {
	if t.dlg == nil {
		return errNoDialog
	}
	_, err, _ := t.guard.Do("confirm-delete:"+path, func() (any, error) {
		ok, err := t.dlg.Confirm(ctx, "Delete "+paths.Base(path)+"?", "This cannot be undone.")
		if err != nil || !ok {
			return nil, err
		}
		if err := t.Delete(path); err != nil {
			t.fs.ShowToast("Delete failed")
			return nil, err
		}
		t.fs.ShowToast("Deleted")
		return nil, nil
	})
	return err
}

func failure(err error, invalid, other string) string {
	var ve *paths.ValidationError
	switch {
	case errors.As(err, &ve):
		return invalid
	case errors.Is(err, ErrExists):
		return "Already exists"
	default:
		return other
	}
}

func ignoreCancel(err error) error {
	if errors.Is(err, dialog.ErrCanceled) {
		return nil
	}
	return err
}
