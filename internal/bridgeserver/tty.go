package bridgeserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/creack/pty"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	ttyCols = 120
	ttyRows = 40
)

// resizeFrame is the only control frame a terminal client sends.
type resizeFrame struct {
	Type string `json:"type"`
	Cols int    `json:"cols"`
	Rows int    `json:"rows"`
}

// parseResize reports the size carried by a text frame, if it is a resize.
func parseResize(data []byte) (*pty.Winsize, bool) {
	if len(data) == 0 || data[0] != '{' {
		return nil, false
	}
	var f resizeFrame
	if json.Unmarshal(data, &f) != nil || !strings.EqualFold(strings.TrimSpace(f.Type), "resize") {
		return nil, false
	}
	if f.Cols <= 0 || f.Rows <= 0 || f.Cols > 0xffff || f.Rows > 0xffff {
		return nil, false
	}
	return &pty.Winsize{Cols: uint16(f.Cols), Rows: uint16(f.Rows)}, true
}

// ttySession is one terminal attached to one socket.
type ttySession struct {
	conn *websocket.Conn
	ptmx *os.File
	cmd  *exec.Cmd
	log  *zap.Logger

	once sync.Once
}

// ttyCommand builds the process a terminal client drives. Without a
// configured command it is this executable with no subcommand, which runs
// the interactive TUI.
func (s *Server) ttyCommand() (*exec.Cmd, error) {
	name := strings.TrimSpace(s.cfg.TTYCommand)
	if name == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, err
		}
		name = exe
	}
	cmd := exec.Command(name, s.cfg.TTYArgs...)
	cmd.Env = append(os.Environ(), "TERM=xterm-256color", "COLORTERM=truecolor")
	return cmd, nil
}

// handleTTY streams a PTY over the socket. Binary frames carry terminal
// bytes both ways; a JSON text frame {"type":"resize"} resizes the PTY.
func (s *Server) handleTTY(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, "websocket upgrade failed", http.StatusBadRequest)
		return
	}
	cmd, err := s.ttyCommand()
	if err == nil {
		var ptmx *os.File
		ptmx, err = pty.StartWithSize(cmd, &pty.Winsize{Cols: ttyCols, Rows: ttyRows})
		if err == nil {
			t := &ttySession{conn: conn, ptmx: ptmx, cmd: cmd,
				log: s.log.With(zap.String("remote", r.RemoteAddr), zap.Int("pid", cmd.Process.Pid))}
			t.run(r.Context())
			return
		}
	}
	_ = conn.WriteMessage(websocket.TextMessage, []byte("failed to start session: "+err.Error()))
	_ = conn.Close()
}

// run pumps both directions until either side ends or ctx is canceled.
func (t *ttySession) run(ctx context.Context) {
	t.log.Info("tty session opened")
	base, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(base)
	g.Go(func() error { defer cancel(); return t.toSocket() })
	g.Go(func() error { defer cancel(); return t.fromSocket() })
	g.Go(func() error {
		<-gctx.Done()
		t.close()
		return nil
	})
	if err := g.Wait(); err != nil && !closedErr(err) {
		t.log.Debug("tty session ended", zap.Error(err))
	}
	t.log.Info("tty session closed")
}

func (t *ttySession) close() {
	t.once.Do(func() {
		_ = t.ptmx.Close()
		_ = t.cmd.Process.Kill()
		_, _ = t.cmd.Process.Wait()
		_ = t.conn.Close()
	})
}

// toSocket copies terminal output to the client.
func (t *ttySession) toSocket() error {
	buf := make([]byte, 32*1024)
	for {
		n, err := t.ptmx.Read(buf)
		if n > 0 {
			_ = t.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if werr := t.conn.WriteMessage(websocket.BinaryMessage, buf[:n]); werr != nil {
				return werr
			}
		}
		if err != nil {
			return err
		}
	}
}

// fromSocket applies resize frames and writes everything else to the PTY.
func (t *ttySession) fromSocket() error {
	for {
		mt, data, err := t.conn.ReadMessage()
		if err != nil {
			return err
		}
		if mt == websocket.TextMessage {
			if ws, ok := parseResize(data); ok {
				if err := pty.Setsize(t.ptmx, ws); err != nil {
					t.log.Debug("resize failed", zap.Error(err))
				}
				continue
			}
		}
		if len(data) == 0 {
			continue
		}
		if _, err := t.ptmx.Write(data); err != nil {
			return err
		}
	}
}

// closedErr reports errors that only mean one side hung up.
func closedErr(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) ||
		websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway)
}
