package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-filter/internal/catalog"
	"github.com/kozaktomas/face-filter/internal/detector"
	"github.com/kozaktomas/face-filter/internal/overlay"
)

var overlayCmd = &cobra.Command{
	Use:   "overlay [keypoints.json]",
	Short: "Compute overlay placements for recorded keypoints",
	Long: `Read facial keypoints (a face, a list of faces, or a list of frames) from a
file or stdin and print where each layer of the chosen filter would be drawn.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runOverlay,
}

func init() {
	rootCmd.AddCommand(overlayCmd)

	overlayCmd.Flags().String("filter", "all", "Filter value from the catalog")
	overlayCmd.Flags().Int("width", 0, "Viewport width (overrides VIDEO_WIDTH)")
	overlayCmd.Flags().Int("height", 0, "Viewport height (overrides VIDEO_HEIGHT)")
	overlayCmd.Flags().Bool("json", false, "Output as JSON")
}

func findFilter(cat *catalog.Catalog, value string) (catalog.FilterDefinition, error) {
	for _, f := range cat.AllFilters() {
		if f.Identifier == value {
			return f, nil
		}
	}
	return catalog.FilterDefinition{}, fmt.Errorf("unknown filter %q", value)
}

func runOverlay(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(cmd)
	jsonOutput := mustGetBool(cmd, "json")

	vp := overlay.Viewport{Width: cfg.Video.Width, Height: cfg.Video.Height}
	if w := mustGetInt(cmd, "width"); w > 0 {
		vp.Width = w
	}
	if h := mustGetInt(cmd, "height"); h > 0 {
		vp.Height = h
	}

	active, err := findFilter(catalog.New(catalog.FromConfig(cfg.Filters)), mustGetString(cmd, "filter"))
	if err != nil {
		return err
	}

	var in io.Reader = os.Stdin
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening keypoints: %w", err)
		}
		defer f.Close()
		in = f
	}
	frames, err := detector.ReadRecording(in)
	if err != nil {
		return err
	}

	results := make([][]overlay.Placement, len(frames))
	for i, faces := range frames {
		results[i] = overlay.Compute(faces, active, vp)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FRAME\tFACE\tLAYER\tX\tY\tWIDTH\tHEIGHT\tROTATION\tIMAGE")
	for i, placements := range results {
		for _, p := range placements {
			fmt.Fprintf(w, "%d\t%d\t%s\t%.1f\t%.1f\t%.1f\t%.1f\t%.1f\t%s\n",
				i, p.Face, p.Layer, p.X, p.Y, p.Width, p.Height, p.Rotation, p.ImageRef)
		}
	}
	return w.Flush()
}
