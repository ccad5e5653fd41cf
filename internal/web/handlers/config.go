package handlers

import (
	"net/http"

	"github.com/kozaktomas/face-filter/internal/carousel"
	"github.com/kozaktomas/face-filter/internal/catalog"
	"github.com/kozaktomas/face-filter/internal/config"
)

// ConfigHandler handles configuration endpoints
type ConfigHandler struct {
	config *config.Config
}

// NewConfigHandler creates a new config handler
func NewConfigHandler(cfg *config.Config) *ConfigHandler {
	return &ConfigHandler{
		config: cfg,
	}
}

// ConfigResponse represents the configuration response
type ConfigResponse struct {
	Viewport        ViewportInfo       `json:"viewport"`
	Carousel        CarouselInfo       `json:"carousel"`
	DetectionFPS    int                `json:"detection_fps"`
	DetectorEnabled bool               `json:"detector_enabled"`
	Categories      []catalog.Category `json:"categories"`
	FrameRateLimit  int                `json:"frame_rate_limit"`
}

// ViewportInfo is the video surface size overlays are computed for.
type ViewportInfo struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// CarouselInfo describes the carousel strip.
type CarouselInfo struct {
	carousel.Layout
	Repetitions int   `json:"repetitions"`
	DebounceMS  int64 `json:"debounce_ms"`
}

// Get returns the runtime configuration the renderer needs
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	response := ConfigResponse{
		Viewport: ViewportInfo{
			Width:  h.config.Video.Width,
			Height: h.config.Video.Height,
		},
		Carousel: CarouselInfo{
			Layout:      carousel.DefaultLayout(h.config.Video.Width),
			Repetitions: h.config.Carousel.Repetitions,
			DebounceMS:  h.config.Carousel.Debounce.Milliseconds(),
		},
		DetectionFPS:    h.config.Video.FPS,
		DetectorEnabled: h.config.Detector.Enabled(),
		Categories:      catalog.Categories,
		FrameRateLimit:  h.config.Web.FrameRateLimit,
	}

	respondJSON(w, http.StatusOK, response)
}
