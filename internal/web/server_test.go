package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kozaktomas/face-filter/internal/catalog"
	"github.com/kozaktomas/face-filter/internal/config"
	"github.com/kozaktomas/face-filter/internal/progress"
	"github.com/kozaktomas/face-filter/internal/session"
)

func newTestServer(t *testing.T) (*Server, *catalog.Catalog) {
	t.Helper()
	cfg := &config.Config{
		Web:      config.WebConfig{Host: "127.0.0.1", Port: 0, FrameRateLimit: 1},
		Video:    config.VideoConfig{Width: 640, Height: 480, FPS: 30},
		Carousel: config.CarouselConfig{Repetitions: 20, Debounce: 150 * time.Millisecond},
	}
	cat := catalog.New(catalog.FromConfig(config.BuiltinFilters()))
	sessions := session.NewManager(context.Background(), cat, session.Options{
		Progress: progress.Options{Interval: time.Hour},
	})
	s := NewServer(cfg, cat, sessions)
	t.Cleanup(sessions.CloseAll)
	return s, cat
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	recorder := httptest.NewRecorder()
	s.Router().ServeHTTP(recorder, req)
	return recorder
}

func TestRoutes(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		method string
		path   string
		status int
	}{
		{"GET", "/api/v1/health", http.StatusOK},
		{"GET", "/api/v1/config", http.StatusOK},
		{"GET", "/api/v1/filters", http.StatusOK},
		{"GET", "/api/v1/sessions/unknown", http.StatusNotFound},
		{"GET", "/api/v1/nothing", http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			if got := do(t, s, tc.method, tc.path, "").Code; got != tc.status {
				t.Errorf("expected status %d, got %d", tc.status, got)
			}
		})
	}
}

func TestSessionFlow(t *testing.T) {
	s, cat := newTestServer(t)

	recorder := do(t, s, "POST", "/api/v1/sessions", "")
	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", recorder.Code)
	}
	var state session.State
	if err := json.Unmarshal(recorder.Body.Bytes(), &state); err != nil {
		t.Fatalf("failed to unmarshal session: %v", err)
	}
	base := "/api/v1/sessions/" + state.ID

	if got := do(t, s, "POST", base+"/carousel/tap", `{"instance_id":"border-11"}`).Code; got != http.StatusOK {
		t.Errorf("tap: expected status 200, got %d", got)
	}

	// registering a filter regenerates the carousel of every mounted session
	if got := do(t, s, "POST", "/api/v1/filters", `{"value":"crown","image":"/crown.png","category":"head"}`).Code; got != http.StatusOK {
		t.Fatalf("register: expected status 200, got %d", got)
	}
	if cat.Len() != 7 {
		t.Fatalf("expected 7 filters, got %d", cat.Len())
	}
	recorder = do(t, s, "GET", base, "")
	if err := json.Unmarshal(recorder.Body.Bytes(), &state); err != nil {
		t.Fatalf("failed to unmarshal session: %v", err)
	}
	if state.Entries != 140 || state.Selected == nil || state.Selected.InstanceID != "all-70" {
		t.Errorf("expected regenerated strip centered on 'all-70', got %d entries, %+v", state.Entries, state.Selected)
	}

	if got := do(t, s, "DELETE", base, "").Code; got != http.StatusOK {
		t.Errorf("delete: expected status 200, got %d", got)
	}
	if got := do(t, s, "GET", base, "").Code; got != http.StatusNotFound {
		t.Errorf("expected status 404 after delete, got %d", got)
	}
}

func TestFrameUploadsAreThrottled(t *testing.T) {
	s, _ := newTestServer(t)

	recorder := do(t, s, "POST", "/api/v1/sessions", "")
	var state session.State
	if err := json.Unmarshal(recorder.Body.Bytes(), &state); err != nil {
		t.Fatalf("failed to unmarshal session: %v", err)
	}
	path := "/api/v1/sessions/" + state.ID + "/frame"

	// the first upload consumes the only token, even though the body is rejected
	if got := do(t, s, "PUT", path, "garbage").Code; got != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", got)
	}
	if got := do(t, s, "PUT", path, "garbage").Code; got != http.StatusTooManyRequests {
		t.Errorf("expected status 429, got %d", got)
	}
}

func TestShutdownClosesSessions(t *testing.T) {
	s, _ := newTestServer(t)
	do(t, s, "POST", "/api/v1/sessions", "")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}
	if s.sessions.Len() != 0 {
		t.Errorf("expected no sessions after shutdown, got %d", s.sessions.Len())
	}
}

func TestFrameLimiterTracksMountedSessions(t *testing.T) {
	s, _ := newTestServer(t)

	for i := range 100 {
		path := fmt.Sprintf("/api/v1/sessions/unknown-%d/frame", i)
		if got := do(t, s, "PUT", path, "garbage").Code; got != http.StatusNotFound {
			t.Fatalf("expected status 404 for unknown session, got %d", got)
		}
	}
	if s.frameLimiter.Len() != 0 {
		t.Errorf("expected no limiter buckets for unknown sessions, got %d", s.frameLimiter.Len())
	}

	var ids []string
	for range 2 {
		var state session.State
		if err := json.Unmarshal(do(t, s, "POST", "/api/v1/sessions", "").Body.Bytes(), &state); err != nil {
			t.Fatalf("failed to unmarshal session: %v", err)
		}
		do(t, s, "PUT", "/api/v1/sessions/"+state.ID+"/frame", "garbage")
		ids = append(ids, state.ID)
	}
	if s.frameLimiter.Len() != 2 {
		t.Fatalf("expected 2 limiter buckets, got %d", s.frameLimiter.Len())
	}

	do(t, s, "DELETE", "/api/v1/sessions/"+ids[0], "")
	if s.frameLimiter.Len() != 1 {
		t.Errorf("expected 1 limiter bucket after delete, got %d", s.frameLimiter.Len())
	}

	s.sessions.CloseAll()
	if s.frameLimiter.Len() != 0 {
		t.Errorf("expected no limiter buckets after closing all sessions, got %d", s.frameLimiter.Len())
	}
}
