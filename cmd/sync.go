package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/CahhBrownsville/Brownsville-project/internal/brownsville"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Build the unified Brownsville complaint table",
	Long: `Build the unified Brownsville complaint table.

Syncs the housing maintenance, complaint problems, and PLUTO datasets,
joins them, geocodes the buildings, and saves the result as CSV.

Use --force-load to rebuild even when the cached copy is still fresh.
Use --no-geocode to skip the coordinate lookup.
Use --overwrite to replace an existing output file without asking.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		log := zap.L().With(zap.String("command", "sync"))

		forceLoad, _ := cmd.Flags().GetBool("force-load")
		noGeocode, _ := cmd.Flags().GetBool("no-geocode")
		overwrite, _ := cmd.Flags().GetBool("overwrite")
		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			out = outputPath(cfg)
		}

		session, err := openSession(ctx, cfg)
		if err != nil {
			return eris.Wrap(err, "sync: open session")
		}
		defer session.Close() //nolint:errcheck

		runs, err := openSyncLog(cfg)
		if err != nil {
			return err
		}
		defer runs.Close() //nolint:errcheck

		translations, err := brownsville.LoadTranslations(cfg.Pipeline.Translations)
		if err != nil {
			return err
		}

		pipe := brownsville.New(session, translations,
			cfg.Pipeline.CommunityBoard, cfg.Pipeline.CommunityDistrict)

		runID, err := runs.Start(ctx, "brownsville")
		if err != nil {
			return err
		}

		records, err := pipe.Load(ctx, forceLoad)
		if err != nil {
			if failErr := runs.Fail(ctx, runID, err.Error()); failErr != nil {
				log.Warn("recording failed sync run", zap.Error(failErr))
			}
			return eris.Wrap(err, "sync: build unified table")
		}

		if !noGeocode {
			if err := brownsville.Enrich(ctx, records, newEnricher(cfg)); err != nil {
				if failErr := runs.Fail(ctx, runID, err.Error()); failErr != nil {
					log.Warn("recording failed sync run", zap.Error(failErr))
				}
				return eris.Wrap(err, "sync: geocode")
			}
		}

		if err := runs.Complete(ctx, runID, int64(len(records))); err != nil {
			log.Warn("recording completed sync run", zap.Error(err))
		}

		if err := brownsville.Save(records, out, overwrite, os.Stdin); err != nil {
			return err
		}

		fmt.Printf("Synced %d rows to %s\n", len(records), out)
		return nil
	},
}

func init() {
	syncCmd.Flags().Bool("force-load", false, "rebuild even when the cached table is fresh")
	syncCmd.Flags().Bool("no-geocode", false, "skip the coordinate lookup")
	syncCmd.Flags().Bool("overwrite", false, "replace an existing output file without asking")
	syncCmd.Flags().String("out", "", "output CSV path (default <data dir>/brownsville.csv)")
	rootCmd.AddCommand(syncCmd)
}
