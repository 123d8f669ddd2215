package bridgeserver

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"webide-cli/internal/bridge"
	"webide-cli/internal/metrics"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  32 * 1024,
	WriteBufferSize: 32 * 1024,
	CheckOrigin:     sameOrigin,
}

// sameOrigin admits non-browser clients (no Origin header) and pages served
// from exactly the host the request was sent to.
func sameOrigin(r *http.Request) bool {
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return strings.EqualFold(u.Host, strings.TrimSpace(r.Host))
}

// handleWS serves one host session: each text frame is a bridge.Request and
// is answered with a bridge.Response carrying the same id.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, "websocket upgrade failed", http.StatusBadRequest)
		return
	}
	defer conn.Close()

	session := uuid.NewString()
	log := s.log.With(zap.String("session", session), zap.String("remote", r.RemoteAddr))
	log.Info("host session opened")
	metrics.SessionOpened()
	defer func() {
		metrics.SessionClosed()
		log.Info("host session closed")
	}()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	replies := make(chan bridge.Response, 16)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		pumpRepliesToWS(ctx, replies, conn, log)
		cancel()
	}()

	for {
		var req bridge.Request
		if err := conn.ReadJSON(&req); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug("read", zap.Error(err))
			}
			break
		}
		start := time.Now()
		resp := bridge.Dispatch(s.cfg.Host, req)
		log.Debug("host call", zap.String("op", req.Op), zap.Uint64("id", req.ID), zap.Duration("took", time.Since(start)))
		select {
		case replies <- resp:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
	}
	cancel()
	wg.Wait()
}

func pumpRepliesToWS(ctx context.Context, replies <-chan bridge.Response, conn *websocket.Conn, log *zap.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case resp := <-replies:
			_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(resp); err != nil {
				log.Debug("write", zap.Error(err))
				return
			}
		}
	}
}
