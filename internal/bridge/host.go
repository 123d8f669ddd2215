// Package bridge is the typed boundary between the controllers and the host
// that owns the file system and OS utilities.
//
// A Host speaks the native bridge protocol: every file operation returns a
// JSON envelope string ({"success":true,...} or {"success":false,"error":...}).
// Adapter decodes those envelopes into Go values and *IOError failures so no
// controller ever parses a host string itself.
package bridge

import (
	"errors"
	"fmt"
)

// ErrHostMissing is returned when no host is available at startup. It is a
// precondition failure: callers report it and stop.
var ErrHostMissing = errors.New("host bridge not available")

// FileSystemHost is the native file surface.
type FileSystemHost interface {
	ReadFile(path string) string
	WriteFile(path, content string) string
	ListFiles(dir string) string
	CreateFile(path string, isDirectory bool) string
	DeleteFile(path string) string
	RenameFile(oldPath, newPath string) string
	Exists(path string) string
	WorkspaceDir() string
}

// SystemHost is the native utility surface. Config batches travel as JSON
// (a key array in, an object out).
type SystemHost interface {
	ShowToast(message, duration string)
	GetConfig(key string) string
	SetConfig(key, value string)
	GetConfigs(keysJSON string) string
	SetConfigs(configsJSON string)
	Vibrate(ms int64)
	CopyToClipboard(text string)
	GetClipboardText() string
	Log(level, tag, message string)
}

type Host interface {
	FileSystemHost
	SystemHost
}

// IOError carries the reason a host reported for a failed call.
type IOError struct {
	Op   string
	Path string
	Err  string
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %s", e.Op, e.Path, e.Err)
}

// IsIOError reports whether err wraps an *IOError.
func IsIOError(err error) bool {
	var ioe *IOError
	return errors.As(err, &ioe)
}

// Toast durations understood by hosts.
const (
	ToastShort = "short"
	ToastLong  = "long"
)
