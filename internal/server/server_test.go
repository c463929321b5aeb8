package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"devreload/config"
	"devreload/internal/handler"
	"devreload/internal/transport/httpdto"
	"devreload/internal/websocket"
	"devreload/pkg/logger"

	gws "github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type testEnv struct {
	hub     *websocket.Hub
	stopHub context.CancelFunc
	srv     *httptest.Server
	cfg     *config.Config
}

func newTestEnv(t *testing.T, mutate func(cfg *config.Config)) *testEnv {
	t.Helper()
	cfg := &config.Config{
		AppPort:          "0",
		AppMode:          TestMode,
		StaticDir:        filepath.Join(t.TempDir(), "static"),
		InjectPaths:      []string{"/docs"},
		ReloadRatePerSec: 100,
	}
	if mutate != nil {
		mutate(cfg)
	}

	l := logger.NewNop()
	wsLogger := websocket.NewLogger(zap.NewNop())
	hub := websocket.NewHub(wsLogger)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	s := New(cfg, l)
	if err := s.SetupRoutes(&Handlers{
		Reload: handler.NewReloadHandler(hub, cfg.StaticDir, false),
		Socket: websocket.NewHandler(hub, wsLogger),
	}); err != nil {
		t.Fatalf("setup routes: %v", err)
	}
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return &testEnv{hub: hub, stopHub: cancel, srv: srv, cfg: cfg}
}

func (e *testEnv) dial(t *testing.T) *gws.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(e.srv.URL, "http") + "/hot-reload"
	conn, _, err := gws.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	deadline := time.Now().Add(2 * time.Second)
	for e.hub.GetClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}
	return conn
}

func decode[T any](t *testing.T, body io.Reader) httpdto.Response[T] {
	t.Helper()
	var resp httpdto.Response[T]
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp
}

func TestSetupRoutes_CreatesStaticDir(t *testing.T) {
	env := newTestEnv(t, nil)
	if info, err := os.Stat(env.cfg.StaticDir); err != nil || !info.IsDir() {
		t.Fatalf("static dir not created: %v", err)
	}
}

func TestPing(t *testing.T) {
	env := newTestEnv(t, nil)
	resp, err := http.Get(env.srv.URL + "/ping")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Request-Id") == "" {
		t.Fatal("missing request id")
	}
}

func TestReloadEndpoint_BroadcastsToPages(t *testing.T) {
	env := newTestEnv(t, nil)
	conn := env.dial(t)

	resp, err := http.Post(env.srv.URL+"/v1/reload", "application/json", strings.NewReader(`{"source":"editor"}`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body := decode[httpdto.ReloadResponse](t, resp.Body)
	if !body.Success || body.Data.Clients != 1 || body.Data.Source != "editor" {
		t.Fatalf("response = %+v", body)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "reload" {
		t.Fatalf("payload = %q, want reload", data)
	}
}

func TestReloadEndpoint_EmptyBody(t *testing.T) {
	env := newTestEnv(t, nil)
	resp, err := http.Post(env.srv.URL+"/v1/reload", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if body := decode[httpdto.ReloadResponse](t, resp.Body); body.Data.Clients != 0 {
		t.Fatalf("clients = %d, want 0", body.Data.Clients)
	}
}

func TestReloadEndpoint_BadJSON(t *testing.T) {
	env := newTestEnv(t, nil)
	resp, err := http.Post(env.srv.URL+"/v1/reload", "application/json", bytes.NewBufferString("{"))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if body := decode[any](t, resp.Body); body.Code != "INVALID_INPUT" {
		t.Fatalf("code = %q", body.Code)
	}
}

func TestReloadEndpoint_RateLimited(t *testing.T) {
	env := newTestEnv(t, func(cfg *config.Config) { cfg.ReloadRatePerSec = 1 })

	statuses := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		resp, err := http.Post(env.srv.URL+"/v1/reload", "", nil)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		statuses = append(statuses, resp.StatusCode)
	}
	if statuses[0] != http.StatusOK || statuses[1] != http.StatusTooManyRequests {
		t.Fatalf("statuses = %v, want [200 429]", statuses)
	}
}

func TestHotReload_UnavailableAfterHubShutdown(t *testing.T) {
	env := newTestEnv(t, nil)
	env.stopHub()
	deadline := time.Now().Add(2 * time.Second)
	for !env.hub.Closed() {
		if time.Now().After(deadline) {
			t.Fatal("hub never closed")
		}
		time.Sleep(5 * time.Millisecond)
	}

	url := "ws" + strings.TrimPrefix(env.srv.URL, "http") + "/hot-reload"
	_, resp, err := gws.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("upgrade succeeded after shutdown")
	}
	if resp == nil || resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("resp = %v, want 503", resp)
	}
	if body := decode[any](t, resp.Body); body.Code != "UNAVAILABLE" {
		t.Fatalf("code = %q", body.Code)
	}
}

func TestHealth_CountsPages(t *testing.T) {
	env := newTestEnv(t, nil)
	env.dial(t)

	resp, err := http.Get(env.srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body := decode[httpdto.HealthResponse](t, resp.Body)
	if body.Data.Status != "healthy" || body.Data.Clients != 1 {
		t.Fatalf("health = %+v", body.Data)
	}
}

func TestDocs_InjectsReloadScript(t *testing.T) {
	env := newTestEnv(t, nil)
	resp, err := http.Get(env.srv.URL + "/docs")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	body := string(data)
	if !strings.Contains(body, `new WebSocket("ws://localhost:8000/hot-reload")`) {
		t.Fatalf("docs page has no reload script: %s", body)
	}
	if strings.Index(body, "<script>") > strings.LastIndex(body, "</body>") {
		t.Fatal("script placed after </body>")
	}
}

func TestDocs_PrefersStaticFile(t *testing.T) {
	env := newTestEnv(t, nil)
	custom := "<html><body>custom docs</body></html>"
	if err := os.WriteFile(filepath.Join(env.cfg.StaticDir, "docs.html"), []byte(custom), 0o644); err != nil {
		t.Fatal(err)
	}

	resp, err := http.Get(env.srv.URL + "/docs")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(data), "custom docs") || !strings.Contains(string(data), "<script>") {
		t.Fatalf("body = %s", data)
	}
}

func TestStatic_NotInjectedByDefault(t *testing.T) {
	env := newTestEnv(t, nil)
	page := "<html><body>static</body></html>"
	if err := os.WriteFile(filepath.Join(env.cfg.StaticDir, "page.html"), []byte(page), 0o644); err != nil {
		t.Fatal(err)
	}

	resp, err := http.Get(env.srv.URL + "/static/page.html")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	if string(data) != page {
		t.Fatalf("body = %q", data)
	}
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	cfg := &config.Config{AppPort: "0", AppMode: TestMode, StaticDir: t.TempDir()}
	s := New(cfg, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(6 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestRun_ReportsListenError(t *testing.T) {
	ln, err := net.Listen("tcp", ":0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	port := ln.Addr().(*net.TCPAddr).Port

	cfg := &config.Config{AppPort: strconv.Itoa(port), AppMode: TestMode}
	s := New(cfg, logger.NewNop())
	if err := s.Run(context.Background()); err == nil {
		t.Fatal("expected address in use error")
	}
}
