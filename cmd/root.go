package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-filter/internal/config"
	"github.com/kozaktomas/face-filter/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "face-filter",
	Short: "Face overlay filters driven by facial landmarks",
	Long: `Face Filter places decorative overlays (hats, glasses, frames) on faces in a
live video feed. Browsers push frames and browse a filter carousel over HTTP; a
landmark service supplies the facial keypoints the overlays are anchored to.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error); overrides LOG_LEVEL")
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}

// loadConfig reads the environment and applies the persistent flags on top of it.
func loadConfig(cmd *cobra.Command) *config.Config {
	cfg := config.Load()
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Log.Level = level
	}
	logging.Setup(logging.Options{Level: cfg.Log.Level, Dir: cfg.Log.Dir})
	return cfg
}
