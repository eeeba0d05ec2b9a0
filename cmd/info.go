package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show metadata for every tracked dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := openSession(cmd.Context(), cfg)
		if err != nil {
			return eris.Wrap(err, "info: open session")
		}
		defer session.Close() //nolint:errcheck

		fmt.Println(session.Information())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
