package handlers

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/face-filter/internal/catalog"
	"github.com/kozaktomas/face-filter/internal/config"
	"github.com/kozaktomas/face-filter/internal/detection"
	"github.com/kozaktomas/face-filter/internal/overlay"
	"github.com/kozaktomas/face-filter/internal/progress"
	"github.com/kozaktomas/face-filter/internal/session"
	"github.com/kozaktomas/face-filter/internal/video"
)

// testConfig creates a minimal config for testing
func testConfig() *config.Config {
	return &config.Config{
		Web:      config.WebConfig{FrameRateLimit: 60},
		Video:    config.VideoConfig{Width: 640, Height: 480, FPS: 30},
		Carousel: config.CarouselConfig{Repetitions: 20, Debounce: 150 * time.Millisecond},
	}
}

// testCatalog creates a catalog holding the built-in filters
func testCatalog() *catalog.Catalog {
	return catalog.New(catalog.FromConfig(config.BuiltinFilters()))
}

type stubDetector struct {
	faces []overlay.FaceKeypoints
}

func (d stubDetector) EstimateFaces(ctx context.Context, _ video.Frame) ([]overlay.FaceKeypoints, error) {
	return d.faces, nil
}

// testManager creates a session manager whose sessions detect one face per frame
func testManager(t *testing.T, cat *catalog.Catalog) *session.Manager {
	t.Helper()
	kp := make([]overlay.Point, 468)
	kp[33] = overlay.Point{X: 100, Y: 200}
	kp[263] = overlay.Point{X: 140, Y: 200}

	m := session.NewManager(context.Background(), cat, session.Options{
		Loader: func(context.Context) (detection.Detector, error) {
			return stubDetector{faces: []overlay.FaceKeypoints{{Keypoints: kp}}}, nil
		},
		FrameInterval: time.Millisecond,
		Progress:      progress.Options{Interval: time.Hour},
	})
	t.Cleanup(m.CloseAll)
	return m
}

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// sessionRequest creates a request addressed to the given session
func sessionRequest(method, path, sessionID string, body []byte) *http.Request {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	return requestWithChiParams(req, map[string]string{"id": sessionID})
}

// pngBytes encodes a blank image of the given size
func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}
