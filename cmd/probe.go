package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-filter/internal/detection"
	"github.com/kozaktomas/face-filter/internal/progress"
	"github.com/kozaktomas/face-filter/internal/video"
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Check that the landmark detector loads",
	Long: `Load the configured landmark detector the same way a session does, showing
model loading progress. With --frame, run one detection on an image file.`,
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)

	probeCmd.Flags().String("detector-url", "", "Websocket URL of the landmark service (overrides DETECTOR_URL)")
	probeCmd.Flags().String("detector-replay", "", "Recorded keypoints JSON (overrides DETECTOR_REPLAY)")
	probeCmd.Flags().Duration("timeout", 2*time.Minute, "Give up after this long")
	probeCmd.Flags().String("frame", "", "Image file to run one detection on")
}

func runProbe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(cmd)
	if url := mustGetString(cmd, "detector-url"); url != "" {
		cfg.Detector.URL = url
	}
	if path := mustGetString(cmd, "detector-replay"); path != "" {
		cfg.Detector.ReplayPath = path
	}
	loader := detectorLoader(&cfg.Detector)
	if loader == nil {
		return errors.New("no detector configured: set DETECTOR_URL or DETECTOR_REPLAY")
	}

	ctx, cancel := context.WithTimeout(context.Background(), mustGetDuration(cmd, "timeout"))
	defer cancel()

	bar := progressbar.NewOptions(100,
		progressbar.OptionSetDescription("Loading model"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionFullWidth(),
	)
	reporter := progress.New(progress.Options{
		OnChange: func(percent int) { _ = bar.Set(percent) },
	})
	reporter.Start()

	handle := detection.Load(ctx, loader, detection.LoadOptions{
		OnReady: reporter.Complete,
		OnError: func(error) { reporter.Fail() },
	})
	defer handle.Close()

	if err := handle.Wait(ctx); err != nil {
		reporter.Fail()
		fmt.Fprintln(os.Stderr)
		return fmt.Errorf("detector unavailable: %w", err)
	}
	_ = bar.Finish()
	fmt.Fprintln(os.Stderr)
	fmt.Println("Detector ready")

	framePath := mustGetString(cmd, "frame")
	if framePath == "" {
		return nil
	}
	return probeFrame(ctx, handle, framePath)
}

func probeFrame(ctx context.Context, handle *detection.Handle, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading frame: %w", err)
	}
	frame, err := video.DecodeFrame(data)
	if err != nil {
		return fmt.Errorf("decoding frame: %w", err)
	}
	det, err := handle.Get()
	if err != nil {
		return err
	}

	start := time.Now()
	faces, err := det.EstimateFaces(ctx, frame)
	if err != nil {
		return fmt.Errorf("detecting faces: %w", err)
	}

	usable := 0
	for _, f := range faces {
		if f.Usable() {
			usable++
		}
	}
	fmt.Printf("%s (%dx%d %s): %d face(s), %d usable, %s\n",
		path, frame.Width, frame.Height, frame.Format, len(faces), usable, time.Since(start).Round(time.Millisecond))
	return nil
}
