package bridge

import (
	"encoding/json"
	"time"

	"webide-cli/internal/logging"
	"webide-cli/internal/metrics"

	"go.uber.org/zap"
)

// Adapter is the only path from controllers to a Host.
type Adapter struct {
	host Host
	log  *zap.Logger
}

// NewAdapter wraps host. A nil host is a startup precondition failure.
func NewAdapter(host Host) (*Adapter, error) {
	if host == nil {
		return nil, ErrHostMissing
	}
	return &Adapter{host: host, log: logging.Named("bridge")}, nil
}

// Host returns the wrapped host (used by the bridge server).
func (a *Adapter) Host() Host { return a.host }

func call[T any](a *Adapter, op, path, field string, fn func() string) (T, error) {
	start := time.Now()
	res := Decode[T](fn(), field)
	metrics.RecordBridgeCall(op, res.OK, time.Since(start))
	if !res.OK {
		a.log.Debug("host call failed", zap.String("op", op), zap.String("path", path), zap.String("reason", res.Reason))
		var zero T
		return zero, &IOError{Op: op, Path: path, Err: res.Reason}
	}
	a.log.Debug("host call", zap.String("op", op), zap.String("path", path))
	return res.Value, nil
}

func (a *Adapter) ReadFile(path string) (string, error) {
	return call[string](a, OpReadFile, path, "content", func() string { return a.host.ReadFile(path) })
}

func (a *Adapter) WriteFile(path, content string) error {
	_, err := call[struct{}](a, OpWriteFile, path, "", func() string { return a.host.WriteFile(path, content) })
	return err
}

// ListFiles returns the entries of dir in the order the host listed them.
func (a *Adapter) ListFiles(dir string) ([]FileInfo, error) {
	files, err := call[[]FileInfo](a, OpListFiles, dir, "files", func() string { return a.host.ListFiles(dir) })
	if err != nil {
		return nil, err
	}
	return files, nil
}

func (a *Adapter) CreateFile(path string, isDirectory bool) error {
	_, err := call[struct{}](a, OpCreateFile, path, "", func() string { return a.host.CreateFile(path, isDirectory) })
	return err
}

func (a *Adapter) DeleteFile(path string) error {
	_, err := call[struct{}](a, OpDeleteFile, path, "", func() string { return a.host.DeleteFile(path) })
	return err
}

func (a *Adapter) RenameFile(oldPath, newPath string) error {
	_, err := call[struct{}](a, OpRenameFile, oldPath, "", func() string { return a.host.RenameFile(oldPath, newPath) })
	return err
}

func (a *Adapter) Exists(path string) (bool, error) {
	return call[bool](a, OpExists, path, "exists", func() string { return a.host.Exists(path) })
}

func (a *Adapter) WorkspaceDir() string { return a.host.WorkspaceDir() }

// ShowToast shows a short transient notification.
func (a *Adapter) ShowToast(message string) { a.host.ShowToast(message, ToastShort) }

func (a *Adapter) ShowLongToast(message string) { a.host.ShowToast(message, ToastLong) }

func (a *Adapter) GetConfig(key string) string { return a.host.GetConfig(key) }

func (a *Adapter) SetConfig(key, value string) { a.host.SetConfig(key, value) }

// GetConfigs returns the values for keys. A malformed host answer yields an
// empty map.
func (a *Adapter) GetConfigs(keys []string) map[string]string {
	in, err := json.Marshal(keys)
	if err != nil {
		return map[string]string{}
	}
	out := map[string]string{}
	if err := json.Unmarshal([]byte(a.host.GetConfigs(string(in))), &out); err != nil {
		a.log.Warn("getConfigs: malformed host response", zap.Error(err))
		return map[string]string{}
	}
	return out
}

func (a *Adapter) SetConfigs(values map[string]string) {
	b, err := json.Marshal(values)
	if err != nil {
		return
	}
	a.host.SetConfigs(string(b))
}

func (a *Adapter) Vibrate(d time.Duration) { a.host.Vibrate(d.Milliseconds()) }

func (a *Adapter) CopyToClipboard(text string) { a.host.CopyToClipboard(text) }

func (a *Adapter) ClipboardText() string { return a.host.GetClipboardText() }

func (a *Adapter) Log(level, tag, message string) { a.host.Log(level, tag, message) }
