package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/CahhBrownsville/Brownsville-project/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "brownsville",
	Short: "Brownsville housing complaint pipeline",
	Long:  "Syncs NYC OpenData housing complaint datasets, joins them into a unified Brownsville table, geocodes the buildings, and renders the result as a map.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
