package bridgeserver

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"runtime"
	"strings"
	"testing"
	"time"

	"webide-cli/internal/bridge"

	"github.com/gorilla/websocket"
)

func newTestServer(t *testing.T) (*httptest.Server, *bridge.LocalHost) {
	t.Helper()
	host, err := bridge.NewLocalHost(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("local host: %v", err)
	}
	srv, err := NewServer(ServerConfig{Addr: "127.0.0.1:0", Host: host})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, host
}

func wsURL(ts *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + path
}

func TestNewServer_Validates(t *testing.T) {
	if _, err := NewServer(ServerConfig{Host: nil, Addr: ":0"}); !errors.Is(err, bridge.ErrHostMissing) {
		t.Fatalf("expected ErrHostMissing, got %v", err)
	}
	if _, err := NewServer(ServerConfig{Addr: " "}); err == nil {
		t.Fatalf("missing addr accepted")
	}
}

func TestWS_RemoteAdapterRoundTrip(t *testing.T) {
	ts, host := newTestServer(t)

	remote, err := bridge.DialRemote(wsURL(ts, "/ws"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer remote.Close()
	a, err := bridge.NewAdapter(remote)
	if err != nil {
		t.Fatalf("adapter: %v", err)
	}

	dir := "/storage/emulated/0/WebIDE+/Projects/Demo"
	if err := a.CreateFile(dir, true); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := a.WriteFile(dir+"/web.json", `{"app_name":"Demo"}`); err != nil {
		t.Fatalf("write: %v", err)
	}
	files, err := a.ListFiles(dir)
	if err != nil || len(files) != 1 || files[0].Name != "web.json" {
		t.Fatalf("list: %+v %v", files, err)
	}
	if err := a.RenameFile(dir, dir+"2"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if err := a.DeleteFile(dir); !bridge.IsIOError(err) {
		t.Fatalf("expected IOError for renamed-away dir, got %v", err)
	}

	a.SetConfigs(map[string]string{"theme": "dark"})
	if got := host.GetConfig("theme"); got != "dark" {
		t.Fatalf("config on server host: %q", got)
	}
	if got := a.GetConfigs([]string{"theme"}); got["theme"] != "dark" {
		t.Fatalf("getConfigs: %v", got)
	}
}

func TestWS_UnknownOp(t *testing.T) {
	ts, _ := newTestServer(t)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts, "/ws"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(bridge.Request{ID: 42, Op: "format"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var resp bridge.Response
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("read: %v", err)
	}
	if resp.ID != 42 || !strings.Contains(resp.Error, "unknown op") {
		t.Fatalf("response: %+v", resp)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	ts, _ := newTestServer(t)
	for _, path := range []string{"/healthz", "/metrics"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("GET %s: %d", path, resp.StatusCode)
		}
		if path == "/metrics" && !strings.Contains(string(body), "webide_bridge_sessions_active") {
			t.Fatalf("metrics missing bridge gauge")
		}
	}
	resp, err := http.Get(ts.URL + "/tty")
	if err != nil {
		t.Fatalf("GET /tty: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("/tty should be off by default, got %d", resp.StatusCode)
	}
}

func TestServe_StopsOnContext(t *testing.T) {
	host, _ := bridge.NewLocalHost(t.TempDir(), nil)
	srv, err := NewServer(ServerConfig{Addr: "127.0.0.1:0", Host: host})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("serve did not stop")
	}
}

func TestWS_RejectsCrossSiteOrigin(t *testing.T) {
	ts, _ := newTestServer(t)
	host := strings.TrimPrefix(ts.URL, "http://")

	cases := []struct {
		origin string
		ok     bool
	}{
		{"", true},
		{"http://" + host, true},
		{"http://" + host + ".attacker.example", false},
		{"http://attacker.example/" + host, false},
		{"null", false},
		{"file://" + host, false},
	}
	for _, tc := range cases {
		header := http.Header{}
		if tc.origin != "" {
			header.Set("Origin", tc.origin)
		}
		conn, resp, err := websocket.DefaultDialer.Dial(wsURL(ts, "/ws"), header)
		if conn != nil {
			conn.Close()
		}
		if tc.ok && err != nil {
			t.Fatalf("origin %q rejected: %v", tc.origin, err)
		}
		if !tc.ok {
			if err == nil {
				t.Fatalf("origin %q accepted", tc.origin)
			}
			if resp == nil || resp.StatusCode != http.StatusForbidden {
				t.Fatalf("origin %q: expected 403, got %v", tc.origin, resp)
			}
		}
	}
}

func newTTYServer(t *testing.T, command string, args ...string) *httptest.Server {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("no pty on windows")
	}
	path, err := exec.LookPath(command)
	if err != nil {
		t.Skipf("%s not available: %v", command, err)
	}
	host, err := bridge.NewLocalHost(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("local host: %v", err)
	}
	srv, err := NewServer(ServerConfig{Addr: "127.0.0.1:0", Host: host, TTY: true, TTYCommand: path, TTYArgs: args})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

// readUntil collects terminal output until it contains want.
func readUntil(t *testing.T, conn *websocket.Conn, want string) string {
	t.Helper()
	var out strings.Builder
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for !strings.Contains(out.String(), want) {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for %q, got %q: %v", want, out.String(), err)
		}
		out.Write(data)
	}
	return out.String()
}

func TestTTY_RoundTrip(t *testing.T) {
	ts := newTTYServer(t, "cat")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts, "/tty"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteMessage(websocket.BinaryMessage, []byte("hello tty\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	readUntil(t, conn, "hello tty")
}

func TestTTY_ResizeFrame(t *testing.T) {
	if _, err := exec.LookPath("stty"); err != nil {
		t.Skip("stty not available")
	}
	ts := newTTYServer(t, "sh", "-c", "read line; stty size")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts, "/tty"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"resize","cols":100,"rows":30}`)); err != nil {
		t.Fatalf("resize: %v", err)
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, []byte("go\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	readUntil(t, conn, "30 100")
}

func TestParseResize(t *testing.T) {
	cases := []struct {
		in         string
		ok         bool
		cols, rows uint16
	}{
		{`{"type":"resize","cols":80,"rows":24}`, true, 80, 24},
		{`{"type":" Resize ","cols":1,"rows":1}`, true, 1, 1},
		{`{"type":"resize","cols":0,"rows":24}`, false, 0, 0},
		{`{"type":"resize","cols":70000,"rows":24}`, false, 0, 0},
		{`{"type":"ping"}`, false, 0, 0},
		{`ls -la`, false, 0, 0},
		{`{broken`, false, 0, 0},
	}
	for _, tc := range cases {
		ws, ok := parseResize([]byte(tc.in))
		if ok != tc.ok {
			t.Fatalf("%s: ok=%v", tc.in, ok)
		}
		if ok && (ws.Cols != tc.cols || ws.Rows != tc.rows) {
			t.Fatalf("%s: got %dx%d", tc.in, ws.Cols, ws.Rows)
		}
	}
}
