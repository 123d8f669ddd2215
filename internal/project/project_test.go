package project

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"webide-cli/internal/bridge"
	"webide-cli/internal/dialog"
	"webide-cli/internal/paths"
	"webide-cli/internal/store"
)

type harness struct {
	host *bridge.LocalHost
	fs   *bridge.Adapter
	dlg  *dialog.Service
	c    *Controller

	mu     sync.Mutex
	toasts []string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	host, err := bridge.NewLocalHost(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("local host: %v", err)
	}
	fs, err := bridge.NewAdapter(host)
	if err != nil {
		t.Fatalf("adapter: %v", err)
	}
	h := &harness{host: host, fs: fs, dlg: dialog.New()}
	host.OnToast(func(tt bridge.Toast) {
		h.mu.Lock()
		h.toasts = append(h.toasts, tt.Message)
		h.mu.Unlock()
	})
	h.c = NewController(fs, h.dlg)
	return h
}

func (h *harness) lastToast() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.toasts) == 0 {
		return ""
	}
	return h.toasts[len(h.toasts)-1]
}

func (h *harness) localPath(hostPath string) string {
	rel, _ := filepath.Rel(paths.StorageRoot(), hostPath)
	return filepath.Join(h.host.Dir, filepath.FromSlash(rel))
}

func names(ps []Project) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Name)
	}
	return out
}

func TestCreate_Demo(t *testing.T) {
	h := newHarness(t)

	p, err := h.c.Create("Demo")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.Path != "/storage/emulated/0/WebIDE+/Projects/Demo" {
		t.Fatalf("path: %q", p.Path)
	}
	raw, err := h.fs.ReadFile(p.Path + "/web.json")
	if err != nil {
		t.Fatalf("read sidecar: %v", err)
	}
	var got map[string]string
	if err := json.Unmarshal([]byte(raw), &got); err != nil {
		t.Fatalf("sidecar json: %v", err)
	}
	want := map[string]string{"app_name": "Demo", "package_name": "com.example.demo"}
	if len(got) != 2 || got["app_name"] != want["app_name"] || got["package_name"] != want["package_name"] {
		t.Fatalf("sidecar: got %v want %v", got, want)
	}
}

func TestCreate_ListedExactlyOnce(t *testing.T) {
	for _, name := range []string{"Demo", "my app", "项目", "a.b-c_d", " padded "} {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t)
			if _, err := h.c.Create(name); err != nil {
				t.Fatalf("create: %v", err)
			}
			ps, err := h.c.Load()
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if len(ps) != 1 {
				t.Fatalf("expected one project, got %v", names(ps))
			}
		})
	}
}

func TestCreate_Rejects(t *testing.T) {
	h := newHarness(t)

	for _, name := range []string{"", "   ", "a/b", "x:y", "q?", "<t>"} {
		_, err := h.c.Create(name)
		var ve *paths.ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("%q: expected ValidationError, got %v", name, err)
		}
	}

	if _, err := h.c.Create("Demo"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := h.c.Create("Demo"); !errors.Is(err, ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
}

func TestLoad_SkipsBrokenAndBareDirectories(t *testing.T) {
	h := newHarness(t)
	root := paths.ProjectsRoot()

	if _, err := h.c.Create("Good"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := h.fs.CreateFile(root+"/Bare", true); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := h.fs.WriteFile(root+"/Broken/web.json", "{not json"); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := h.fs.WriteFile(root+"/Partial/web.json", `{"extra":1}`); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := h.fs.WriteFile(root+"/stray.txt", "x"); err != nil {
		t.Fatalf("write: %v", err)
	}

	ps, err := h.c.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	got := map[string]Project{}
	for _, p := range ps {
		got[p.Name] = p
	}
	if len(got) != 2 {
		t.Fatalf("expected Good and Partial, got %v", names(ps))
	}
	if p := got["Partial"]; p.AppName != "Partial" || p.PackageName != "com.example.app" {
		t.Fatalf("fallbacks not applied: %+v", p)
	}
}

func TestLoad_NewestFirst(t *testing.T) {
	h := newHarness(t)
	base := time.Now().Add(-time.Hour)
	for i, name := range []string{"old", "newest", "middle"} {
		if _, err := h.c.Create(name); err != nil {
			t.Fatalf("create: %v", err)
		}
		offset := map[int]time.Duration{0: 0, 1: 20 * time.Minute, 2: 10 * time.Minute}[i]
		local := h.localPath(paths.ProjectPath(name))
		if err := os.Chtimes(local, base.Add(offset), base.Add(offset)); err != nil {
			t.Fatalf("chtimes: %v", err)
		}
	}
	ps, err := h.c.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := names(ps); len(got) != 3 || got[0] != "newest" || got[1] != "middle" || got[2] != "old" {
		t.Fatalf("order: %v", got)
	}
}

func TestRename(t *testing.T) {
	h := newHarness(t)
	p, err := h.c.Create("Demo")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := h.fs.WriteFile(p.Path+"/web.json", `{"app_name":"Demo","package_name":"org.demo","version":3}`); err != nil {
		t.Fatalf("write: %v", err)
	}

	same, err := h.c.Rename(p, "Demo")
	if err != nil || same != p {
		t.Fatalf("same-name rename should be a no-op: %+v %v", same, err)
	}

	got, err := h.c.Rename(p, "Shop")
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if got.Path != paths.ProjectPath("Shop") || got.AppName != "Shop" {
		t.Fatalf("renamed project: %+v", got)
	}
	raw, err := h.fs.ReadFile(got.Path + "/web.json")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var cfg map[string]any
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		t.Fatalf("json: %v", err)
	}
	if cfg["app_name"] != "Shop" || cfg["package_name"] != "org.demo" || cfg["version"] != float64(3) {
		t.Fatalf("sidecar after rename: %v", cfg)
	}
	if ok, _ := h.fs.Exists(p.Path); ok {
		t.Fatalf("old directory still present")
	}
}

func TestRename_CollisionLeavesBothUntouched(t *testing.T) {
	h := newHarness(t)
	a, _ := h.c.Create("A")
	b, _ := h.c.Create("B")
	if err := h.fs.WriteFile(a.Path+"/index.html", "a"); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := h.c.Rename(a, "B"); !errors.Is(err, ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	if s, err := h.fs.ReadFile(a.Path + "/index.html"); err != nil || s != "a" {
		t.Fatalf("A was touched: %q %v", s, err)
	}
	raw, _ := h.fs.ReadFile(b.Path + "/web.json")
	var cfg map[string]string
	_ = json.Unmarshal([]byte(raw), &cfg)
	if cfg["app_name"] != "B" {
		t.Fatalf("B sidecar changed: %v", cfg)
	}
}

func TestDelete(t *testing.T) {
	h := newHarness(t)
	p, _ := h.c.Create("Demo")
	keep, _ := h.c.Create("Keep")

	if err := h.c.Delete(p); err != nil {
		t.Fatalf("delete: %v", err)
	}
	ps, _ := h.c.Load()
	if got := names(ps); len(got) != 1 || got[0] != "Keep" {
		t.Fatalf("after delete: %v", got)
	}

	missing := Project{Name: "Ghost", Path: paths.ProjectPath("Ghost")}
	if err := h.c.Delete(missing); !bridge.IsIOError(err) {
		t.Fatalf("expected IOError, got %v", err)
	}
	ps, _ = h.c.Load()
	if len(ps) != 1 || ps[0].Path != keep.Path {
		t.Fatalf("side effects from failed delete: %v", names(ps))
	}
}

func TestOpen_StoresCurrentProject(t *testing.T) {
	h := newHarness(t)
	p, _ := h.c.Create("Demo")
	h.c.Open(p)
	if got := h.fs.GetConfig(store.KeyCurrentProject); got != "Demo" {
		t.Fatalf("current_project: %q", got)
	}
	if h.c.Current() != "Demo" {
		t.Fatalf("Current: %q", h.c.Current())
	}
}

func answer(t *testing.T, d *dialog.Service, fn func(dialog.Request)) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if req, ok := d.Current(); ok {
			fn(req)
			return
		}
		select {
		case <-d.Changes():
		case <-time.After(5 * time.Millisecond):
		case <-deadline:
			t.Fatalf("no dialog shown")
		}
	}
}

func TestPromptCreate(t *testing.T) {
	h := newHarness(t)
	done := make(chan error, 1)
	go func() { done <- h.c.PromptCreate(context.Background()) }()
	answer(t, h.dlg, func(req dialog.Request) {
		if req.Kind != dialog.KindPrompt {
			t.Errorf("expected prompt, got %v", req.Kind)
		}
		h.dlg.Submit("Demo")
	})
	if err := <-done; err != nil {
		t.Fatalf("prompt create: %v", err)
	}
	if _, ok := h.c.Find("Demo"); !ok {
		t.Fatalf("project not in reloaded list")
	}
	if h.lastToast() != "Project created" {
		t.Fatalf("toast: %q", h.lastToast())
	}
}

func TestPromptCreate_InvalidNameToasts(t *testing.T) {
	h := newHarness(t)
	done := make(chan error, 1)
	go func() { done <- h.c.PromptCreate(context.Background()) }()
	answer(t, h.dlg, func(dialog.Request) { h.dlg.Submit("a/b") })
	var ve *paths.ValidationError
	if err := <-done; !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if h.lastToast() != "Project name contains invalid characters" {
		t.Fatalf("toast: %q", h.lastToast())
	}
}

func TestPromptCreate_CancelIsSilent(t *testing.T) {
	h := newHarness(t)
	done := make(chan error, 1)
	go func() { done <- h.c.PromptCreate(context.Background()) }()
	answer(t, h.dlg, func(dialog.Request) { h.dlg.Cancel() })
	if err := <-done; err != nil {
		t.Fatalf("cancel should not fail: %v", err)
	}
	if h.lastToast() != "" {
		t.Fatalf("unexpected toast %q", h.lastToast())
	}
}

func TestConfirmDelete_AtMostOnce(t *testing.T) {
	h := newHarness(t)
	p, _ := h.c.Create("Demo")

	errs := make(chan error, 2)
	go func() { errs <- h.c.ConfirmDelete(context.Background(), p) }()
	answer(t, h.dlg, func(dialog.Request) {})
	// A second tap while the first confirm is pending joins it.
	go func() { errs <- h.c.ConfirmDelete(context.Background(), p) }()
	time.Sleep(20 * time.Millisecond)
	if n := h.dlg.Len(); n != 1 {
		t.Fatalf("expected a single pending confirm, got %d", n)
	}
	h.dlg.Submit("")

	for i := 0; i < 2; i++ {
		if err := <-errs; err != nil {
			t.Fatalf("confirm delete: %v", err)
		}
	}
	if ok, _ := h.fs.Exists(p.Path); ok {
		t.Fatalf("project not deleted")
	}
}

func TestConfirmDelete_Declined(t *testing.T) {
	h := newHarness(t)
	p, _ := h.c.Create("Demo")
	done := make(chan error, 1)
	go func() { done <- h.c.ConfirmDelete(context.Background(), p) }()
	answer(t, h.dlg, func(dialog.Request) { h.dlg.Cancel() })
	if err := <-done; err != nil {
		t.Fatalf("declined delete: %v", err)
	}
	if ok, _ := h.fs.Exists(p.Path); !ok {
		t.Fatalf("declined delete removed the project")
	}
}

func TestPromptRename_Collision(t *testing.T) {
	h := newHarness(t)
	a, _ := h.c.Create("A")
	_, _ = h.c.Create("B")
	done := make(chan error, 1)
	go func() { done <- h.c.PromptRename(context.Background(), a) }()
	answer(t, h.dlg, func(req dialog.Request) {
		if req.Default != "A" {
			t.Errorf("default: %q", req.Default)
		}
		h.dlg.Submit("B")
	})
	if err := <-done; !errors.Is(err, ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	if h.lastToast() != "A project with that name already exists" {
		t.Fatalf("toast: %q", h.lastToast())
	}
}
