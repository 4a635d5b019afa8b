package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/zsj-atlas/zsj-cli/internal/validate"
)

var (
	validateBBox string
	validateJSON bool
)

var validateCmd = &cobra.Command{
	Use:   "validate <file.geojson>",
	Short: "Check the coordinates of a GeoJSON layer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var bbox *validate.BBox
		if validateBBox != "" {
			b, err := validate.ParseBBox(validateBBox)
			if err != nil {
				return err
			}
			bbox = b
		}

		report, err := validate.CheckFile(args[0], bbox)
		if err != nil {
			return err
		}

		if validateJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return eris.Wrap(err, "validate: encode report")
			}
		} else {
			formatReport(os.Stdout, args[0], report)
		}

		if !report.OK() {
			return eris.Errorf("validate: %d invalid, %d outside bbox", len(report.Invalid), len(report.OutsideBBox))
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateBBox, "bbox", "", "expected bounds as minLon,minLat,maxLon,maxLat")
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "print the report as JSON")
	rootCmd.AddCommand(validateCmd)
}

// formatReport writes a human-readable report to out.
func formatReport(out io.Writer, path string, r validate.Report) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "File:\t%s\n", path)
	_, _ = fmt.Fprintf(w, "Features:\t%d\n", r.Total)
	_, _ = fmt.Fprintf(w, "With coordinates:\t%d\n", r.WithCoords)
	_, _ = fmt.Fprintf(w, "Without coordinates:\t%d\n", r.WithoutCoords())
	if r.WithCoords > 0 {
		_, _ = fmt.Fprintf(w, "Latitude:\t%.6f .. %.6f\n", r.MinLat, r.MaxLat)
		_, _ = fmt.Fprintf(w, "Longitude:\t%.6f .. %.6f\n", r.MinLon, r.MaxLon)
	}
	_, _ = fmt.Fprintf(w, "Invalid:\t%d\n", len(r.Invalid))
	for _, p := range r.Invalid {
		_, _ = fmt.Fprintf(w, "  %s\t%s\t(%.6f, %.6f)\n", p.Code, p.Name, p.Lon, p.Lat)
	}
	if len(r.OutsideBBox) > 0 {
		_, _ = fmt.Fprintf(w, "Outside bbox:\t%d\n", len(r.OutsideBBox))
		for _, p := range r.OutsideBBox {
			_, _ = fmt.Fprintf(w, "  %s\t%s\t(%.6f, %.6f)\n", p.Code, p.Name, p.Lon, p.Lat)
		}
	}
	_ = w.Flush()
}
