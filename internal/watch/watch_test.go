package watch

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestDebouncer_Coalesces(t *testing.T) {
	var runs atomic.Int32
	d := newDebouncer(20*time.Millisecond, func() { runs.Add(1) })
	for i := 0; i < 10; i++ {
		d.Notify()
	}
	waitFor(t, "one run", func() bool { return runs.Load() == 1 })
	time.Sleep(60 * time.Millisecond)
	if n := runs.Load(); n != 1 {
		t.Fatalf("runs=%d", n)
	}
	d.Stop()
	d.Notify()
	time.Sleep(60 * time.Millisecond)
	if n := runs.Load(); n != 1 {
		t.Fatalf("notify after stop ran: %d", n)
	}
}

func TestWatcher_ReportsChanges(t *testing.T) {
	dir := t.TempDir()
	var changes atomic.Int32
	w, err := New(Options{Dir: dir, Recursive: true, Debounce: 20 * time.Millisecond, OnChange: func() { changes.Add(1) }})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer w.Close()

	if err := os.Mkdir(filepath.Join(dir, "Demo"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	waitFor(t, "mkdir event", func() bool { return changes.Load() >= 1 })

	before := changes.Load()
	// Let the new directory's watch settle before writing into it.
	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "Demo", "web.json"), []byte("{}"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	waitFor(t, "nested write event", func() bool { return changes.Load() > before })
}

func TestNew_Validates(t *testing.T) {
	if _, err := New(Options{OnChange: func() {}}); err == nil {
		t.Fatalf("missing dir accepted")
	}
	if _, err := New(Options{Dir: t.TempDir()}); err == nil {
		t.Fatalf("missing callback accepted")
	}
	if _, err := New(Options{Dir: filepath.Join(t.TempDir(), "missing"), OnChange: func() {}}); err == nil {
		t.Fatalf("missing directory accepted")
	}
}

func TestClose_Idempotent(t *testing.T) {
	w, err := New(Options{Dir: t.TempDir(), OnChange: func() {}})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}
