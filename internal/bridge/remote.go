package bridge

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"webide-cli/internal/logging"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// RemoteHost implements Host by forwarding every call to a bridge server over
// a WebSocket. Calls are serialized; each waits for its own reply.
type RemoteHost struct {
	url  string
	conn *websocket.Conn

	mu     sync.Mutex
	nextID uint64
	log    *zap.Logger
}

// DialRemote connects to a bridge server at url (ws:// or wss://).
func DialRemote(url string, header http.Header) (*RemoteHost, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, errors.New("remote host: missing url")
	}
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.Dial(url, header)
	if err != nil {
		return nil, fmt.Errorf("dial bridge %s: %w", url, err)
	}
	return &RemoteHost{url: url, conn: conn, log: logging.Named("remote")}, nil
}

func (h *RemoteHost) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	_ = h.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return h.conn.Close()
}

func (h *RemoteHost) roundTrip(op string, args ...any) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	req, err := NewRequest(h.nextID, op, args...)
	if err != nil {
		return "", err
	}
	if err := h.conn.WriteJSON(req); err != nil {
		return "", err
	}
	for {
		var resp Response
		if err := h.conn.ReadJSON(&resp); err != nil {
			return "", err
		}
		if resp.ID != req.ID {
			// Stale reply from an abandoned call.
			continue
		}
		if resp.Error != "" {
			return "", errors.New(resp.Error)
		}
		return resp.Reply, nil
	}
}

// envelopeCall turns transport failures into failed envelopes so the adapter
// reports them like any other host error.
func (h *RemoteHost) envelopeCall(op string, args ...any) string {
	reply, err := h.roundTrip(op, args...)
	if err != nil {
		h.log.Warn("remote call failed", zap.String("op", op), zap.Error(err))
		return Failure(fmt.Errorf("bridge transport: %w", err))
	}
	return reply
}

func (h *RemoteHost) valueCall(op string, args ...any) string {
	reply, err := h.roundTrip(op, args...)
	if err != nil {
		h.log.Warn("remote call failed", zap.String("op", op), zap.Error(err))
		return ""
	}
	return reply
}

func (h *RemoteHost) ReadFile(p string) string {
	return h.envelopeCall(OpReadFile, p)
}

func (h *RemoteHost) WriteFile(p, content string) string {
	return h.envelopeCall(OpWriteFile, p, content)
}

func (h *RemoteHost) ListFiles(dir string) string {
	return h.envelopeCall(OpListFiles, dir)
}

func (h *RemoteHost) CreateFile(p string, isDirectory bool) string {
	return h.envelopeCall(OpCreateFile, p, isDirectory)
}

func (h *RemoteHost) DeleteFile(p string) string {
	return h.envelopeCall(OpDeleteFile, p)
}

func (h *RemoteHost) RenameFile(oldPath, newPath string) string {
	return h.envelopeCall(OpRenameFile, oldPath, newPath)
}

func (h *RemoteHost) Exists(p string) string {
	return h.envelopeCall(OpExists, p)
}

func (h *RemoteHost) WorkspaceDir() string {
	return h.valueCall(OpWorkspaceDir)
}

func (h *RemoteHost) ShowToast(message, duration string) {
	h.valueCall(OpShowToast, message, duration)
}

func (h *RemoteHost) GetConfig(key string) string {
	return h.valueCall(OpGetConfig, key)
}

func (h *RemoteHost) SetConfig(key, value string) {
	h.valueCall(OpSetConfig, key, value)
}

func (h *RemoteHost) GetConfigs(keysJSON string) string {
	reply := h.valueCall(OpGetConfigs, keysJSON)
	if reply == "" {
		return "{}"
	}
	return reply
}

func (h *RemoteHost) SetConfigs(configsJSON string) {
	h.valueCall(OpSetConfigs, configsJSON)
}

func (h *RemoteHost) Vibrate(ms int64) {
	h.valueCall(OpVibrate, ms)
}

func (h *RemoteHost) CopyToClipboard(text string) {
	h.valueCall(OpCopyToClipboard, text)
}

func (h *RemoteHost) GetClipboardText() string {
	return h.valueCall(OpGetClipboardText)
}

func (h *RemoteHost) Log(level, tag, message string) {
	h.valueCall(OpLog, level, tag, message)
}
