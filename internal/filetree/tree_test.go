package filetree

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"webide-cli/internal/bridge"
	"webide-cli/internal/dialog"
	"webide-cli/internal/paths"
)

const root = "/storage/emulated/0/WebIDE+/Projects/Demo"

func newTestTree(t *testing.T, files ...string) (*Tree, *bridge.Adapter) {
	t.Helper()
	host, err := bridge.NewLocalHost(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("local host: %v", err)
	}
	fs, err := bridge.NewAdapter(host)
	if err != nil {
		t.Fatalf("adapter: %v", err)
	}
	if err := fs.CreateFile(root, true); err != nil {
		t.Fatalf("mkdir root: %v", err)
	}
	for _, f := range files {
		p := paths.Join(root, f)
		if f[len(f)-1] == '/' {
			if err := fs.CreateFile(p, true); err != nil {
				t.Fatalf("mkdir %s: %v", p, err)
			}
			continue
		}
		if err := fs.WriteFile(p, "content of "+f); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}
	tr := New(fs, dialog.New())
	if err := tr.Init(root); err != nil {
		t.Fatalf("init: %v", err)
	}
	return tr, fs
}

func rowNames(rows []Row) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		prefix := ""
		for i := 0; i < r.Depth; i++ {
			prefix += "  "
		}
		out = append(out, prefix+r.Name)
	}
	return out
}

func TestLoad_DirectoriesFirstThenByName(t *testing.T) {
	tr, _ := newTestTree(t, "b.js", "A.txt", "zeta/", "alpha/", "c.md", "Beta/")
	got := rowNames(tr.Rows())
	want := []string{"alpha", "Beta", "zeta", "A.txt", "b.js", "c.md"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("order:\n got %v\nwant %v", got, want)
	}
	for _, r := range tr.Rows() {
		if r.Path != root+"/"+r.Name {
			t.Fatalf("row path %q for %q", r.Path, r.Name)
		}
	}
}

func TestExpand_IsIdempotent(t *testing.T) {
	tr, _ := newTestTree(t, "src/", "src/main.js", "src/util.js")
	src := root + "/src"

	if err := tr.Expand(src); err != nil {
		t.Fatalf("expand: %v", err)
	}
	first := tr.Rows()
	if err := tr.Expand(src); err != nil {
		t.Fatalf("expand again: %v", err)
	}
	if !reflect.DeepEqual(first, tr.Rows()) {
		t.Fatalf("second expand changed rows")
	}
	if got := rowNames(first); !reflect.DeepEqual(got, []string{"src", "  main.js", "  util.js"}) {
		t.Fatalf("rows: %v", got)
	}
}

func TestCollapseReexpand_MatchesFreshLoad(t *testing.T) {
	tr, fs := newTestTree(t, "src/", "src/a.js")
	src := root + "/src"
	if err := tr.Expand(src); err != nil {
		t.Fatalf("expand: %v", err)
	}
	tr.Collapse(src)
	if rows := tr.Rows(); len(rows) != 1 || rows[0].Expanded {
		t.Fatalf("collapse left children: %v", rowNames(rows))
	}

	// Not cached: a file added while collapsed shows up on re-expand.
	if err := fs.WriteFile(src+"/b.js", ""); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := tr.Expand(src); err != nil {
		t.Fatalf("re-expand: %v", err)
	}

	fresh := New(fs, nil)
	if err := fresh.Init(root); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := fresh.Expand(src); err != nil {
		t.Fatalf("fresh expand: %v", err)
	}
	if !reflect.DeepEqual(tr.Children(src), fresh.Children(src)) {
		t.Fatalf("children differ: %v vs %v", tr.Children(src), fresh.Children(src))
	}
}

func TestLoad_RestoresExpansion(t *testing.T) {
	tr, fs := newTestTree(t, "src/", "src/lib/", "src/lib/x.js", "docs/")
	if err := tr.Expand(root + "/src"); err != nil {
		t.Fatalf("expand: %v", err)
	}
	if err := tr.Expand(root + "/src/lib"); err != nil {
		t.Fatalf("expand: %v", err)
	}
	if err := fs.WriteFile(root+"/src/lib/y.js", ""); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := tr.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	want := []string{"docs", "src", "  lib", "    x.js", "    y.js"}
	if got := rowNames(tr.Rows()); !reflect.DeepEqual(got, want) {
		t.Fatalf("rows after reload:\n got %v\nwant %v", got, want)
	}

	// Collapsing a parent keeps the child's state for next time.
	tr.Collapse(root + "/src")
	if err := tr.Expand(root + "/src"); err != nil {
		t.Fatalf("expand: %v", err)
	}
	if got := rowNames(tr.Rows()); !reflect.DeepEqual(got, want) {
		t.Fatalf("rows after re-expand:\n got %v\nwant %v", got, want)
	}
}

func TestExpand_Errors(t *testing.T) {
	tr, _ := newTestTree(t, "a.txt")
	if err := tr.Expand(root + "/nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := tr.Expand(root + "/a.txt"); !errors.Is(err, ErrNotDir) {
		t.Fatalf("expected ErrNotDir, got %v", err)
	}
}

func TestSelect_ExclusiveAndNotifies(t *testing.T) {
	tr, _ := newTestTree(t, "a.txt", "b.txt", "dir/")
	var selected []string
	tr.OnSelect(func(p string) { selected = append(selected, p) })

	if err := tr.Select(root + "/a.txt"); err != nil {
		t.Fatalf("select: %v", err)
	}
	if err := tr.Select(root + "/b.txt"); err != nil {
		t.Fatalf("select: %v", err)
	}
	active := 0
	for _, r := range tr.Rows() {
		if r.Active {
			active++
			if r.Name != "b.txt" {
				t.Fatalf("wrong active row %q", r.Name)
			}
		}
	}
	if active != 1 {
		t.Fatalf("expected one active row, got %d", active)
	}
	if !reflect.DeepEqual(selected, []string{root + "/a.txt", root + "/b.txt"}) {
		t.Fatalf("observer calls: %v", selected)
	}
	if err := tr.Select(root + "/dir"); err == nil {
		t.Fatalf("selecting a directory should fail")
	}
}

func TestCreateFile(t *testing.T) {
	tr, fs := newTestTree(t, "src/")
	var selected string
	tr.OnSelect(func(p string) { selected = p })

	p, err := tr.CreateFile(root+"/src", "app.js")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p != root+"/src/app.js" || selected != p || tr.Active() != p {
		t.Fatalf("new file not selected: %q %q %q", p, selected, tr.Active())
	}
	if !tr.IsExpanded(root + "/src") {
		t.Fatalf("parent should be expanded to show the new file")
	}
	if s, err := fs.ReadFile(p); err != nil || s != "" {
		t.Fatalf("new file content: %q %v", s, err)
	}

	if err := fs.WriteFile(p, "keep"); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := tr.CreateFile(root+"/src", "app.js"); !errors.Is(err, ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	if s, _ := fs.ReadFile(p); s != "keep" {
		t.Fatalf("existing file was truncated")
	}

	var ve *paths.ValidationError
	if _, err := tr.CreateFile(root, "bad|name"); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestCreateFolder(t *testing.T) {
	tr, _ := newTestTree(t)
	p, err := tr.CreateFolder(root, "assets")
	if err != nil {
		t.Fatalf("create folder: %v", err)
	}
	if n, ok := tr.Find(p); !ok || !n.IsDir {
		t.Fatalf("folder not in tree: %+v %v", n, ok)
	}
	if _, err := tr.CreateFolder(root, "assets"); !bridge.IsIOError(err) {
		t.Fatalf("expected IOError for existing folder, got %v", err)
	}
}

func TestRename_FollowsActiveAndExpanded(t *testing.T) {
	tr, _ := newTestTree(t, "src/", "src/lib/", "src/lib/x.js")
	for _, p := range []string{root + "/src", root + "/src/lib"} {
		if err := tr.Expand(p); err != nil {
			t.Fatalf("expand: %v", err)
		}
	}
	if err := tr.Select(root + "/src/lib/x.js"); err != nil {
		t.Fatalf("select: %v", err)
	}
	var renamed [2]string
	tr.OnRenamed(func(o, n string) { renamed = [2]string{o, n} })

	newPath, err := tr.Rename(root+"/src", "app")
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if newPath != root+"/app" || renamed != [2]string{root + "/src", root + "/app"} {
		t.Fatalf("rename result %q observer %v", newPath, renamed)
	}
	if tr.Active() != root+"/app/lib/x.js" {
		t.Fatalf("active: %q", tr.Active())
	}
	if got := tr.Expanded(); !reflect.DeepEqual(got, []string{root + "/app", root + "/app/lib"}) {
		t.Fatalf("expanded: %v", got)
	}
	if got := rowNames(tr.Rows()); !reflect.DeepEqual(got, []string{"app", "  lib", "    x.js"}) {
		t.Fatalf("rows: %v", got)
	}
}

func TestDelete_ClearsActive(t *testing.T) {
	tr, _ := newTestTree(t, "src/", "src/a.js", "b.js")
	if err := tr.Expand(root + "/src"); err != nil {
		t.Fatalf("expand: %v", err)
	}
	if err := tr.Select(root + "/src/a.js"); err != nil {
		t.Fatalf("select: %v", err)
	}
	var deleted string
	tr.OnDeleted(func(p string) { deleted = p })

	if err := tr.Delete(root + "/src"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if tr.Active() != "" || deleted != root+"/src" {
		t.Fatalf("active %q deleted %q", tr.Active(), deleted)
	}
	if len(tr.Expanded()) != 0 {
		t.Fatalf("expanded: %v", tr.Expanded())
	}
	if err := tr.Delete(root + "/src"); !bridge.IsIOError(err) {
		t.Fatalf("expected IOError, got %v", err)
	}
}

func TestTargetDir(t *testing.T) {
	if got := TargetDir(root+"/src", true); got != root+"/src" {
		t.Fatalf("dir: %q", got)
	}
	if got := TargetDir(root+"/src/a.js", false); got != root+"/src" {
		t.Fatalf("file: %q", got)
	}
}

func TestPromptNewFileAndConfirmDelete(t *testing.T) {
	tr, _ := newTestTree(t, "src/", "src/a.js")
	answer := func(fn func()) { waitDialog(t, tr.dlg, fn) }

	done := make(chan error, 1)
	go func() { done <- tr.PromptNewFile(context.Background(), root+"/src/a.js", false) }()
	answer(func() { tr.dlg.Submit("b.js") })
	if err := <-done; err != nil {
		t.Fatalf("new file: %v", err)
	}
	if _, ok := tr.Find(root + "/src/b.js"); !ok {
		t.Fatalf("b.js not created next to a.js")
	}

	go func() { done <- tr.ConfirmDelete(context.Background(), root+"/src/b.js") }()
	answer(func() { tr.dlg.Cancel() })
	if err := <-done; err != nil {
		t.Fatalf("declined delete: %v", err)
	}
	if _, ok := tr.Find(root + "/src/b.js"); !ok {
		t.Fatalf("declined delete removed the file")
	}
}

func TestConfirmDelete_AtMostOnce(t *testing.T) {
	tr, fs := newTestTree(t, "a.txt")
	path := root + "/a.txt"

	errs := make(chan error, 2)
	go func() { errs <- tr.ConfirmDelete(context.Background(), path) }()
	waitDialog(t, tr.dlg, func() {})
	// A second tap while the first confirm is pending joins it.
	go func() { errs <- tr.ConfirmDelete(context.Background(), path) }()
	time.Sleep(20 * time.Millisecond)
	if n := tr.dlg.Len(); n != 1 {
		t.Fatalf("expected a single pending confirm, got %d", n)
	}
	tr.dlg.Submit("")

	for i := 0; i < 2; i++ {
		if err := <-errs; err != nil {
			t.Fatalf("confirm delete: %v", err)
		}
	}
	if ok, _ := fs.Exists(path); ok {
		t.Fatalf("file not deleted")
	}
}

func TestPromptRename_AtMostOnce(t *testing.T) {
	tr, _ := newTestTree(t, "a.txt")
	path := root + "/a.txt"

	errs := make(chan error, 2)
	go func() { errs <- tr.PromptRename(context.Background(), path) }()
	waitDialog(t, tr.dlg, func() {})
	go func() { errs <- tr.PromptRename(context.Background(), path) }()
	time.Sleep(20 * time.Millisecond)
	if n := tr.dlg.Len(); n != 1 {
		t.Fatalf("expected a single pending prompt, got %d", n)
	}
	tr.dlg.Submit("b.txt")

	for i := 0; i < 2; i++ {
		if err := <-errs; err != nil {
			t.Fatalf("rename: %v", err)
		}
	}
	if _, ok := tr.Find(root + "/b.txt"); !ok {
		t.Fatalf("b.txt missing after rename")
	}
}

func waitDialog(t *testing.T, d *dialog.Service, fn func()) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if _, ok := d.Current(); ok {
			fn()
			return
		}
		select {
		case <-d.Changes():
		case <-time.After(5 * time.Millisecond):
		case <-deadline:
			t.Fatalf("no dialog")
		}
	}
}

func TestIcon(t *testing.T) {
	cases := map[string]string{"a.py": "🐍", "b.JS": "📜", "c.unknown": "📄", "Makefile": "📄"}
	for name, want := range cases {
		if got := Icon(name, false); got != want {
			t.Fatalf("Icon(%q) = %q want %q", name, got, want)
		}
	}
	if Icon("src", true) != "📁" {
		t.Fatalf("dir icon")
	}
}
