package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-filter/internal/carousel"
	"github.com/kozaktomas/face-filter/internal/catalog"
	"github.com/kozaktomas/face-filter/internal/config"
	"github.com/kozaktomas/face-filter/internal/detection"
	"github.com/kozaktomas/face-filter/internal/detector"
	"github.com/kozaktomas/face-filter/internal/logging"
	"github.com/kozaktomas/face-filter/internal/overlay"
	"github.com/kozaktomas/face-filter/internal/session"
	"github.com/kozaktomas/face-filter/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the Face Filter web server.
Each browser view mounts a session, pushes camera frames to it and receives
overlay placements over server-sent events.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 0, "Port to listen on (overrides WEB_PORT)")
	serveCmd.Flags().String("host", "", "Host to bind to (overrides WEB_HOST)")
	serveCmd.Flags().String("detector-url", "", "Websocket URL of the landmark service (overrides DETECTOR_URL)")
	serveCmd.Flags().String("detector-replay", "", "Recorded keypoints JSON to use instead of a landmark service (overrides DETECTOR_REPLAY)")
}

// applyServeFlags lets flags override the environment.
func applyServeFlags(cmd *cobra.Command, cfg *config.Config) {
	if port := mustGetInt(cmd, "port"); port > 0 {
		cfg.Web.Port = port
	}
	if host := mustGetString(cmd, "host"); host != "" {
		cfg.Web.Host = host
	}
	if url := mustGetString(cmd, "detector-url"); url != "" {
		cfg.Detector.URL = url
	}
	if path := mustGetString(cmd, "detector-replay"); path != "" {
		cfg.Detector.ReplayPath = path
	}
}

// detectorLoader picks the landmark detector for new sessions. A replay file wins
// over the service; nil means sessions run without overlays.
func detectorLoader(cfg *config.DetectorConfig) detection.Loader {
	switch {
	case cfg.ReplayPath != "":
		return detector.ReplayLoader(cfg.ReplayPath)
	case cfg.URL != "":
		return detector.Loader(cfg.URL, detector.Options{MaxFaces: cfg.MaxFaces})
	default:
		return nil
	}
}

// sessionOptions derives per-session settings from the config.
func sessionOptions(cfg *config.Config) session.Options {
	return session.Options{
		Loader:        detectorLoader(&cfg.Detector),
		Viewport:      overlay.Viewport{Width: cfg.Video.Width, Height: cfg.Video.Height},
		Repetitions:   cfg.Carousel.Repetitions,
		Debounce:      cfg.Carousel.Debounce,
		FrameInterval: cfg.Video.FrameInterval(),
		Layout:        carousel.DefaultLayout(cfg.Video.Width),
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(cmd)
	applyServeFlags(cmd, cfg)

	cat := catalog.New(catalog.FromConfig(cfg.Filters))
	logging.Info(logging.Fields{"filters": cat.Len()}, "filter catalog loaded")
	if !cfg.Detector.Enabled() {
		logging.Warn(nil, "no landmark detector configured; sessions will render no overlays")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sessions := session.NewManager(ctx, cat, sessionOptions(cfg))
	server := web.NewServer(cfg, cat, sessions)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting Face Filter on http://%s:%d\n", cfg.Web.Host, cfg.Web.Port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
