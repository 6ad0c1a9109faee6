package preview

import (
	"context"
	"encoding/json"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Faultbox/tilegen/internal/scheduler"
	"github.com/Faultbox/tilegen/internal/terrain"
)

const testSize = 41

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()

	settings := terrain.DefaultSettings()
	settings.Size = testSize
	settings.Noise.Scale = 15
	b, err := terrain.NewBuilder(settings)
	if err != nil {
		t.Fatalf("NewBuilder failed: %v", err)
	}
	sched := scheduler.New(b, terrain.DefaultMeshSettings(), scheduler.Options{Workers: 2, MaxPending: 16})

	s := New(sched, Options{TickRate: 5 * time.Millisecond, LOD: 0})
	ctx, cancel := context.WithCancel(context.Background())
	go s.Loop(ctx)

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		cancel()
		sched.Close()
	})
	return s, ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) (string, []byte) {
	t.Helper()
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		t.Fatalf("decoding message: %v", err)
	}
	return head.Type, data
}

func TestWebSocketStreamsTileThenMesh(t *testing.T) {
	_, ts := newTestServer(t)
	conn := dial(t, ts)

	if err := conn.WriteJSON(map[string]any{"x": 40, "y": 0, "lod": 2}); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	kind, data := readMessage(t, conn)
	if kind != "tile" {
		t.Fatalf("expected tile message first, got %q", kind)
	}
	var tile tileMessage
	if err := json.Unmarshal(data, &tile); err != nil {
		t.Fatalf("decoding tile: %v", err)
	}
	if tile.Size != testSize || len(tile.Heights) != testSize*testSize {
		t.Errorf("expected %d heights, got size %d with %d", testSize*testSize, tile.Size, len(tile.Heights))
	}
	if len(tile.Colors) != testSize*testSize*3 {
		t.Errorf("expected packed RGB colors, got %d bytes", len(tile.Colors))
	}
	if tile.X != 40 {
		t.Errorf("expected x 40, got %v", tile.X)
	}

	kind, data = readMessage(t, conn)
	if kind != "mesh" {
		t.Fatalf("expected mesh message, got %q", kind)
	}
	var mesh meshMessage
	if err := json.Unmarshal(data, &mesh); err != nil {
		t.Fatalf("decoding mesh: %v", err)
	}
	// stride 4 over 40 cells: 11 vertices per side
	if mesh.LOD != 2 || len(mesh.Positions) != 11*11*3 || len(mesh.Indices) != 10*10*6 {
		t.Errorf("unexpected mesh: lod %d, %d position floats, %d indices", mesh.LOD, len(mesh.Positions), len(mesh.Indices))
	}
}

func TestWebSocketRejectsUnsupportedLOD(t *testing.T) {
	_, ts := newTestServer(t)
	conn := dial(t, ts)

	if err := conn.WriteJSON(map[string]any{"x": 0, "y": 0, "lod": 3}); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	kind, data := readMessage(t, conn)
	if kind != "error" {
		t.Fatalf("expected error message, got %q", kind)
	}
	if !strings.Contains(string(data), "unsupported LOD") {
		t.Errorf("unexpected error payload %s", data)
	}
}

func TestTileImage(t *testing.T) {
	_, ts := newTestServer(t)

	for _, mode := range []string{"height", "color", "falloff"} {
		t.Run(mode, func(t *testing.T) {
			resp, err := http.Get(ts.URL + "/tile.png?x=0&y=0&mode=" + mode)
			if err != nil {
				t.Fatalf("GET failed: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				body, _ := io.ReadAll(resp.Body)
				t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
			}
			img, err := png.Decode(resp.Body)
			if err != nil {
				t.Fatalf("decoding PNG: %v", err)
			}
			if img.Bounds().Dx() != testSize || img.Bounds().Dy() != testSize {
				t.Errorf("expected %dx%d image, got %v", testSize, testSize, img.Bounds())
			}
		})
	}
}

func TestTileImageBadRequest(t *testing.T) {
	_, ts := newTestServer(t)

	for _, query := range []string{"x=abc", "mode=mesh"} {
		resp, err := http.Get(ts.URL + "/tile.png?" + query)
		if err != nil {
			t.Fatalf("GET failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", query, resp.StatusCode)
		}
	}
}

func TestStats(t *testing.T) {
	s, ts := newTestServer(t)
	dial(t, ts)

	deadline := time.Now().Add(5 * time.Second)
	for s.ClientCount() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for client registration")
		}
		time.Sleep(time.Millisecond)
	}

	resp, err := http.Get(ts.URL + "/stats")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "clients 1") {
		t.Errorf("expected client count in stats, got:\n%s", body)
	}
}
