package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the history of sync runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		runs, err := openSyncLog(cfg)
		if err != nil {
			return err
		}
		defer runs.Close() //nolint:errcheck

		entries, err := runs.ListAll(cmd.Context())
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No sync runs recorded")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tDATASET\tSTATUS\tSTARTED\tROWS\tERROR")
		for _, e := range entries {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%s\n",
				e.ID, e.Dataset, e.Status,
				e.StartedAt.Format("2006-01-02 15:04:05"),
				e.RowsSynced, e.Error,
			)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
