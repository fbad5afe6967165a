package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/voxhire/voxhire/pkg/gateway/config"
	"github.com/voxhire/voxhire/pkg/gateway/lifecycle"
	"github.com/voxhire/voxhire/pkg/gateway/sessions"
	"github.com/voxhire/voxhire/pkg/store"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type stubStore struct{ pingErr error }

func (s *stubStore) SaveResult(ctx context.Context, res *store.InterviewResult) error { return nil }
func (s *stubStore) GetResult(ctx context.Context, sessionID string) (*store.InterviewResult, error) {
	return nil, nil
}
func (s *stubStore) ListResultsByCandidate(ctx context.Context, candidateID string) ([]*store.InterviewResult, error) {
	return nil, nil
}
func (s *stubStore) Ping(ctx context.Context) error { return s.pingErr }
func (s *stubStore) Close() error                   { return nil }

func testConfig(t *testing.T) config.Config {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	cfg.AudioTempDir = t.TempDir()
	cfg.HandshakeTimeout = 2 * time.Second
	return cfg
}

func newTestHandler(t *testing.T, lc *lifecycle.State) (*InterviewHandler, *sessions.Registry) {
	registry := sessions.NewRegistry()
	h := NewInterviewHandler(testConfig(t), discard, registry, nil, &stubStore{}, lc)
	return h, registry
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return ws
}

func TestInterviewHandlerRejectsNonGET(t *testing.T) {
	h, _ := newTestHandler(t, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/interview", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestInterviewHandlerRefusesWhileDraining(t *testing.T) {
	lc := lifecycle.New()
	lc.SetDraining()
	h, _ := newTestHandler(t, lc)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/interview", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestInterviewHandlerRequiresInitFirst(t *testing.T) {
	h, _ := newTestHandler(t, nil)
	srv := httptest.NewServer(h)
	defer srv.Close()

	ws := dial(t, srv)
	defer ws.Close()

	// Binary audio before init is a protocol violation.
	if err := ws.WriteMessage(websocket.BinaryMessage, []byte{0x01, 0x02}); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = ws.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, data, err := ws.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var frame struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &frame); err != nil {
		t.Fatalf("unmarshal %q: %v", data, err)
	}
	if frame.Type != "error" || frame.Message != "Expected init message" {
		t.Errorf("frame = %+v", frame)
	}
}

func TestInterviewHandlerStartsSession(t *testing.T) {
	h, registry := newTestHandler(t, nil)
	srv := httptest.NewServer(h)
	defer srv.Close()

	ws := dial(t, srv)
	defer ws.Close()

	init := map[string]string{"type": "init", "job_role": "Data Engineer", "candidate_id": "c1"}
	if err := ws.WriteJSON(init); err != nil {
		t.Fatalf("write init: %v", err)
	}

	_ = ws.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, data, err := ws.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var frame struct {
		Type  string `json:"type"`
		Text  string `json:"text"`
		Stage string `json:"stage"`
	}
	if err := json.Unmarshal(data, &frame); err != nil {
		t.Fatalf("unmarshal %q: %v", data, err)
	}
	if frame.Type != "interviewer_response" {
		t.Fatalf("first frame type = %q, want interviewer_response", frame.Type)
	}
	if !strings.Contains(frame.Text, "Data Engineer") {
		t.Errorf("greeting %q does not mention job role", frame.Text)
	}
	if frame.Stage != "introduction" {
		t.Errorf("stage = %q, want introduction", frame.Stage)
	}
	if registry.Count() != 1 {
		t.Errorf("registry count = %d, want 1", registry.Count())
	}
}

func TestInterviewHandlerDuplicateSessionGetsFreshID(t *testing.T) {
	h, registry := newTestHandler(t, nil)
	srv := httptest.NewServer(h)
	defer srv.Close()

	first := dial(t, srv)
	defer first.Close()
	if err := first.WriteJSON(map[string]string{"type": "init", "session_id": "s_fixed"}); err != nil {
		t.Fatalf("write init: %v", err)
	}
	_ = first.SetReadDeadline(time.Now().Add(3 * time.Second))
	if _, _, err := first.ReadMessage(); err != nil {
		t.Fatalf("read greeting: %v", err)
	}

	second := dial(t, srv)
	defer second.Close()
	if err := second.WriteJSON(map[string]string{"type": "init", "session_id": "s_fixed"}); err != nil {
		t.Fatalf("write init: %v", err)
	}
	_ = second.SetReadDeadline(time.Now().Add(3 * time.Second))
	if _, _, err := second.ReadMessage(); err != nil {
		t.Fatalf("second session should still greet: %v", err)
	}
	if registry.Count() != 2 {
		t.Errorf("registry count = %d, want 2", registry.Count())
	}
}

func TestHealthHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	HealthHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok\n" {
		t.Errorf("status=%d body=%q", rec.Code, rec.Body.String())
	}
}

func TestReadyHandler(t *testing.T) {
	registry := sessions.NewRegistry()

	t.Run("ready", func(t *testing.T) {
		rec := httptest.NewRecorder()
		ReadyHandler(lifecycle.New(), &stubStore{}, registry).
			ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("draining", func(t *testing.T) {
		lc := lifecycle.New()
		lc.SetDraining()
		rec := httptest.NewRecorder()
		ReadyHandler(lc, &stubStore{}, registry).
			ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want 503", rec.Code)
		}
	})

	t.Run("store down", func(t *testing.T) {
		rec := httptest.NewRecorder()
		ReadyHandler(lifecycle.New(), &stubStore{pingErr: context.DeadlineExceeded}, registry).
			ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want 503", rec.Code)
		}
	})
}
