package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-filter/internal/catalog"
)

var filtersCmd = &cobra.Command{
	Use:   "filters",
	Short: "List the filter catalog",
	Long: `List the built-in filters followed by any filters added with --add.
Each --add takes value:label:image:category; label and category may be empty.
Definitions the catalog rejects are reported and skipped.`,
	RunE: runFilters,
}

func init() {
	rootCmd.AddCommand(filtersCmd)

	filtersCmd.Flags().StringSlice("add", nil, "Register a filter as value:label:image:category (repeatable)")
	filtersCmd.Flags().Bool("json", false, "Output as JSON")
}

// parseFilterSpec splits value:label:image:category. Image refs may contain colons
// (URLs), so the category is taken from the last segment and the image from the rest.
func parseFilterSpec(spec string) (catalog.FilterDefinition, error) {
	parts := strings.Split(spec, ":")
	if len(parts) < 4 {
		return catalog.FilterDefinition{}, fmt.Errorf("invalid filter %q: want value:label:image:category", spec)
	}
	return catalog.FilterDefinition{
		Identifier: parts[0],
		Label:      parts[1],
		ImageRef:   strings.Join(parts[2:len(parts)-1], ":"),
		Category:   catalog.Category(parts[len(parts)-1]),
	}, nil
}

func runFilters(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(cmd)
	jsonOutput := mustGetBool(cmd, "json")

	cat := catalog.New(catalog.FromConfig(cfg.Filters))
	for _, spec := range mustGetStringSlice(cmd, "add") {
		def, err := parseFilterSpec(spec)
		if err != nil {
			return err
		}
		if !cat.RegisterFilter(def) {
			fmt.Fprintf(os.Stderr, "Skipping %q: value and image are required, category must be one of %v\n", spec, catalog.Categories)
		}
	}

	filters := cat.AllFilters()
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(filters)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VALUE\tLABEL\tCATEGORY\tIMAGE")
	for _, f := range filters {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", f.Identifier, f.DisplayLabel(), f.Category, f.ImageRef)
	}
	return w.Flush()
}
