package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/CahhBrownsville/Brownsville-project/internal/brownsville"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize the saved unified table",
	Long: `Summarize the saved unified table: date range, complaints by season,
and, with --building, the most common complaint profiles of one building.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		in, _ := cmd.Flags().GetString("in")
		buildingID, _ := cmd.Flags().GetInt64("building")
		featuresStr, _ := cmd.Flags().GetString("features")
		top, _ := cmd.Flags().GetInt("top")
		if in == "" {
			in = outputPath(cfg)
		}

		records, err := brownsville.ReadSaved(in)
		if err != nil {
			return err
		}

		min, max, err := brownsville.DateRange(records, "status")
		if err != nil {
			return err
		}
		fmt.Printf("%d complaint rows, status dates %s to %s\n\n",
			len(records), min.Format("2006-01-02"), max.Format("2006-01-02"))

		seasons := brownsville.RecordsBySeason(records)
		for i, name := range brownsville.Seasons {
			fmt.Printf("%-8s %d\n", name, seasons[i])
		}

		if buildingID == 0 {
			return nil
		}

		features := strings.Split(featuresStr, ",")
		for i := range features {
			features[i] = strings.TrimSpace(features[i])
		}

		idx := brownsville.NewBuildingIndex(records)
		counts, err := idx.FeatureOccurrences(buildingID, features, top)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "\n%s\tCOUNT\n", strings.ToUpper(strings.Join(features, "\t")))
		for _, c := range counts {
			fmt.Fprintf(w, "%s\t%d\n", strings.Join(c.Values, "\t"), c.Count)
		}
		return w.Flush()
	},
}

func init() {
	statsCmd.Flags().String("in", "", "unified table CSV (default <data dir>/brownsville.csv)")
	statsCmd.Flags().Int64("building", 0, "building id to profile")
	statsCmd.Flags().String("features", "majorcategory,minorcategory", "comma-separated feature columns")
	statsCmd.Flags().Int("top", 10, "number of value combinations to show (0 for all)")
	rootCmd.AddCommand(statsCmd)
}
