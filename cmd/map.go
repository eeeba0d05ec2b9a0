package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CahhBrownsville/Brownsville-project/internal/brownsville"
	"github.com/CahhBrownsville/Brownsville-project/internal/maprender"
)

var mapCmd = &cobra.Command{
	Use:   "map",
	Short: "Render the saved unified table as a Leaflet map",
	RunE: func(cmd *cobra.Command, args []string) error {
		in, _ := cmd.Flags().GetString("in")
		out, _ := cmd.Flags().GetString("out")
		heatmap, _ := cmd.Flags().GetBool("heatmap")
		if in == "" {
			in = outputPath(cfg)
		}

		records, err := brownsville.ReadSaved(in)
		if err != nil {
			return err
		}

		if err := maprender.RenderFile(out, records, maprender.Options{Heatmap: heatmap}); err != nil {
			return err
		}

		fmt.Printf("Rendered %s (%s) to %s\n", in, maprender.Summary(records), out)
		return nil
	},
}

func init() {
	mapCmd.Flags().String("in", "", "unified table CSV (default <data dir>/brownsville.csv)")
	mapCmd.Flags().String("out", "map.html", "output HTML path")
	mapCmd.Flags().Bool("heatmap", false, "add a complaint-count heat layer")
	rootCmd.AddCommand(mapCmd)
}
