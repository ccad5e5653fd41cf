package config

import (
	_ "embed"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kozaktomas/face-filter/internal/constants"
	"gopkg.in/yaml.v3"
)

//go:embed filters.yaml
var filtersYAML []byte

type Config struct {
	Web      WebConfig
	Detector DetectorConfig
	Video    VideoConfig
	Carousel CarouselConfig
	Log      LogConfig
	Filters  FiltersConfig
}

type WebConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string // CORS origins besides localhost
	FrameRateLimit int      // frame uploads accepted per second per session
}

type DetectorConfig struct {
	URL        string // websocket URL of the landmark service
	ReplayPath string // recorded keypoints JSON used instead of the service when set
	MaxFaces   int    // defaults to 10
}

// Enabled reports whether sessions get a landmark detector.
func (c *DetectorConfig) Enabled() bool {
	return c.URL != "" || c.ReplayPath != ""
}

type VideoConfig struct {
	Width  int // defaults to 640
	Height int // defaults to 480
	FPS    int // detection loop rate, defaults to 30
}

// FrameInterval returns the period of the per-frame signal.
func (c *VideoConfig) FrameInterval() time.Duration {
	fps := c.FPS
	if fps <= 0 {
		fps = constants.DefaultDetectionFPS
	}
	return time.Second / time.Duration(fps)
}

type CarouselConfig struct {
	Repetitions int
	Debounce    time.Duration
}

type LogConfig struct {
	Level string
	Dir   string // rotated log files are written here when set
}

// FiltersConfig is the built-in overlay catalog shipped with the binary.
type FiltersConfig struct {
	Filters []FilterEntry `yaml:"filters"`
}

type FilterEntry struct {
	Value    string `yaml:"value"`
	Label    string `yaml:"label"`
	Image    string `yaml:"image"`
	Category string `yaml:"category"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envDuration reads an environment variable as a Go duration ("150ms").
// Returns the default value if the env var is unset, empty, invalid, or not positive.
func envDuration(key string, defaultVal time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return defaultVal
}

// envList reads a comma-separated environment variable, dropping empty items.
func envList(key string) []string {
	var out []string
	for item := range strings.SplitSeq(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

// BuiltinFilters parses the embedded filter catalog.
func BuiltinFilters() FiltersConfig {
	var filters FiltersConfig
	if err := yaml.Unmarshal(filtersYAML, &filters); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded filters.yaml: " + err.Error())
	}
	return filters
}

func Load() *Config {
	return &Config{
		Web: WebConfig{
			Host:           envString("WEB_HOST", "0.0.0.0"),
			Port:           envInt("WEB_PORT", 8080),
			AllowedOrigins: envList("WEB_ALLOWED_ORIGINS"),
			FrameRateLimit: envInt("FRAME_RATE_LIMIT", constants.DefaultFrameRateLimit),
		},
		Detector: DetectorConfig{
			URL:        os.Getenv("DETECTOR_URL"),
			ReplayPath: os.Getenv("DETECTOR_REPLAY"),
			MaxFaces:   envInt("DETECTOR_MAX_FACES", constants.DefaultMaxFaces),
		},
		Video: VideoConfig{
			Width:  envInt("VIDEO_WIDTH", constants.DefaultVideoWidth),
			Height: envInt("VIDEO_HEIGHT", constants.DefaultVideoHeight),
			FPS:    envInt("DETECTION_FPS", constants.DefaultDetectionFPS),
		},
		Carousel: CarouselConfig{
			Repetitions: envInt("CAROUSEL_REPETITIONS", constants.DefaultRepetitions),
			Debounce:    envDuration("CAROUSEL_DEBOUNCE", constants.DefaultScrollDebounce),
		},
		Log: LogConfig{
			Level: envString("LOG_LEVEL", "info"),
			Dir:   os.Getenv("LOG_DIR"),
		},
		Filters: BuiltinFilters(),
	}
}
