package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"webide-cli/internal/logging"
	"webide-cli/internal/paths"
	"webide-cli/internal/store"

	"github.com/atotto/clipboard"
	"go.uber.org/zap"
)

// Clipboard is the system clipboard as seen by a LocalHost.
type Clipboard interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

type systemClipboard struct{}

func (systemClipboard) ReadAll() (string, error)   { return clipboard.ReadAll() }
func (systemClipboard) WriteAll(text string) error { return clipboard.WriteAll(text) }

// Toast is a transient notification raised through ShowToast.
type Toast struct {
	Message string
	Long    bool
}

// LocalHost implements Host on the local machine. Host paths under the
// device storage root are mapped onto Dir.
type LocalHost struct {
	Dir       string
	KV        *store.KV
	Clipboard Clipboard

	mu        sync.RWMutex
	onToast   func(Toast)
	onVibrate func(time.Duration)
	mem       map[string]string
	log       *zap.Logger
}

// NewLocalHost returns a host rooted at dir. kv may be nil, in which case
// config values live only in memory for the process lifetime.
func NewLocalHost(dir string, kv *store.KV) (*LocalHost, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("local host: missing storage dir")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &LocalHost{
		Dir:       dir,
		KV:        kv,
		Clipboard: systemClipboard{},
		log:       logging.Named("host"),
	}, nil
}

// OnToast installs the sink for toasts. Without one toasts are only logged.
func (h *LocalHost) OnToast(fn func(Toast)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onToast = fn
}

// OnVibrate installs the sink for haptic pulses.
func (h *LocalHost) OnVibrate(fn func(time.Duration)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onVibrate = fn
}

// resolve maps a host path onto the local file system, refusing anything that
// escapes the storage root.
func (h *LocalHost) resolve(p string) (string, error) {
	clean := path.Clean("/" + strings.TrimSpace(p))
	root := paths.StorageRoot()
	if !paths.IsUnder(clean, root) {
		return "", fmt.Errorf("path outside storage: %s", p)
	}
	rel := strings.TrimPrefix(strings.TrimPrefix(clean, root), "/")
	return filepath.Join(h.Dir, filepath.FromSlash(rel)), nil
}

// LocalPath returns where a host path lives on this machine.
func (h *LocalHost) LocalPath(p string) (string, error) {
	return h.resolve(p)
}

func (h *LocalHost) ReadFile(p string) string {
	local, err := h.resolve(p)
	if err != nil {
		return Failure(err)
	}
	b, err := os.ReadFile(local)
	if err != nil {
		return Failure(describe(err))
	}
	return Success("content", string(b))
}

func (h *LocalHost) WriteFile(p, content string) string {
	local, err := h.resolve(p)
	if err != nil {
		return Failure(err)
	}
	if err := os.MkdirAll(filepath.Dir(local), 0o755); err != nil {
		return Failure(describe(err))
	}
	if err := store.AtomicWriteFile(local, []byte(content), 0o644); err != nil {
		return Failure(describe(err))
	}
	return Success("", nil)
}

func (h *LocalHost) ListFiles(dir string) string {
	local, err := h.resolve(dir)
	if err != nil {
		return Failure(err)
	}
	ents, err := os.ReadDir(local)
	if err != nil {
		return Failure(describe(err))
	}
	hostDir := path.Clean("/" + dir)
	files := make([]FileInfo, 0, len(ents))
	for _, e := range ents {
		info, err := e.Info()
		if err != nil {
			// Entry vanished between ReadDir and Info.
			continue
		}
		files = append(files, FileInfo{
			Name:         e.Name(),
			Path:         paths.Join(hostDir, e.Name()),
			IsDirectory:  e.IsDir(),
			LastModified: info.ModTime().UnixMilli(),
		})
	}
	return Success("files", files)
}

func (h *LocalHost) CreateFile(p string, isDirectory bool) string {
	local, err := h.resolve(p)
	if err != nil {
		return Failure(err)
	}
	if _, err := os.Lstat(local); err == nil {
		return Failure(fmt.Errorf("already exists: %s", p))
	}
	if isDirectory {
		if err := os.MkdirAll(local, 0o755); err != nil {
			return Failure(describe(err))
		}
		return Success("", nil)
	}
	if err := os.MkdirAll(filepath.Dir(local), 0o755); err != nil {
		return Failure(describe(err))
	}
	f, err := os.OpenFile(local, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return Failure(describe(err))
	}
	if err := f.Close(); err != nil {
		return Failure(describe(err))
	}
	return Success("", nil)
}

func (h *LocalHost) DeleteFile(p string) string {
	local, err := h.resolve(p)
	if err != nil {
		return Failure(err)
	}
	if local == filepath.Clean(h.Dir) {
		return Failure(errors.New("refusing to delete the storage root"))
	}
	if _, err := os.Lstat(local); err != nil {
		return Failure(describe(err))
	}
	if err := os.RemoveAll(local); err != nil {
		return Failure(describe(err))
	}
	return Success("", nil)
}

func (h *LocalHost) RenameFile(oldPath, newPath string) string {
	from, err := h.resolve(oldPath)
	if err != nil {
		return Failure(err)
	}
	to, err := h.resolve(newPath)
	if err != nil {
		return Failure(err)
	}
	if _, err := os.Lstat(from); err != nil {
		return Failure(describe(err))
	}
	if _, err := os.Lstat(to); err == nil {
		return Failure(fmt.Errorf("already exists: %s", newPath))
	}
	if err := os.Rename(from, to); err != nil {
		return Failure(describe(err))
	}
	return Success("", nil)
}

func (h *LocalHost) Exists(p string) string {
	local, err := h.resolve(p)
	if err != nil {
		return Failure(err)
	}
	_, err = os.Stat(local)
	switch {
	case err == nil:
		return Success("exists", true)
	case errors.Is(err, fs.ErrNotExist):
		return Success("exists", false)
	default:
		return Failure(describe(err))
	}
}

func (h *LocalHost) WorkspaceDir() string { return paths.StorageRoot() }

func (h *LocalHost) ShowToast(message, duration string) {
	h.mu.RLock()
	fn := h.onToast
	h.mu.RUnlock()
	h.log.Info("toast", zap.String("message", message), zap.String("duration", duration))
	if fn != nil {
		fn(Toast{Message: message, Long: duration == ToastLong})
	}
}

func (h *LocalHost) GetConfig(key string) string {
	if h.KV == nil {
		return h.memGet(key)
	}
	v, _, err := h.KV.Get(context.Background(), key)
	if err != nil {
		h.log.Warn("getConfig", zap.String("key", key), zap.Error(err))
		return ""
	}
	return v
}

func (h *LocalHost) SetConfig(key, value string) {
	if h.KV == nil {
		h.memSet(map[string]string{key: value})
		return
	}
	if err := h.KV.Set(context.Background(), key, value); err != nil {
		h.log.Warn("setConfig", zap.String("key", key), zap.Error(err))
	}
}

func (h *LocalHost) GetConfigs(keysJSON string) string {
	var keys []string
	if err := json.Unmarshal([]byte(keysJSON), &keys); err != nil {
		return "{}"
	}
	out := map[string]string{}
	if h.KV == nil {
		for _, k := range keys {
			if v := h.memGet(k); v != "" {
				out[k] = v
			}
		}
	} else {
		got, err := h.KV.GetMany(context.Background(), keys)
		if err != nil {
			h.log.Warn("getConfigs", zap.Error(err))
			return "{}"
		}
		out = got
	}
	b, _ := json.Marshal(out)
	return string(b)
}

func (h *LocalHost) SetConfigs(configsJSON string) {
	var values map[string]string
	if err := json.Unmarshal([]byte(configsJSON), &values); err != nil {
		h.log.Warn("setConfigs: malformed payload", zap.Error(err))
		return
	}
	if h.KV == nil {
		h.memSet(values)
		return
	}
	if err := h.KV.SetMany(context.Background(), values); err != nil {
		h.log.Warn("setConfigs", zap.Error(err))
	}
}

func (h *LocalHost) Vibrate(ms int64) {
	h.mu.RLock()
	fn := h.onVibrate
	h.mu.RUnlock()
	if fn != nil {
		fn(time.Duration(ms) * time.Millisecond)
	}
}

func (h *LocalHost) CopyToClipboard(text string) {
	if err := h.Clipboard.WriteAll(text); err != nil {
		h.log.Warn("clipboard write failed", zap.Error(err))
	}
}

func (h *LocalHost) GetClipboardText() string {
	s, err := h.Clipboard.ReadAll()
	if err != nil {
		h.log.Warn("clipboard read failed", zap.Error(err))
		return ""
	}
	return s
}

func (h *LocalHost) Log(level, tag, message string) {
	logging.Emit(level, tag, message)
}

func (h *LocalHost) memGet(key string) string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.mem[key]
}

func (h *LocalHost) memSet(values map[string]string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.mem == nil {
		h.mem = map[string]string{}
	}
	for k, v := range values {
		h.mem[k] = v
	}
}

// describe strips the local directory from OS errors so hosts never leak the
// mapping to callers.
func describe(err error) error {
	var pe *fs.PathError
	if errors.As(err, &pe) {
		switch {
		case errors.Is(pe.Err, fs.ErrNotExist):
			return errors.New("no such file or directory")
		case errors.Is(pe.Err, fs.ErrExist):
			return errors.New("already exists")
		case errors.Is(pe.Err, fs.ErrPermission):
			return errors.New("permission denied")
		}
		return pe.Err
	}
	var le *os.LinkError
	if errors.As(err, &le) {
		return le.Err
	}
	return err
}
