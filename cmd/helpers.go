package main

import (
	"context"
	"path/filepath"
	"time"

	"github.com/CahhBrownsville/Brownsville-project/internal/config"
	"github.com/CahhBrownsville/Brownsville-project/internal/dataset"
	"github.com/CahhBrownsville/Brownsville-project/internal/geocode"
	"github.com/CahhBrownsville/Brownsville-project/internal/soda"
	"github.com/CahhBrownsville/Brownsville-project/internal/synclog"
)

// openSession opens the dataset session backed by the configured data
// directory and a Socrata client built from config.
func openSession(ctx context.Context, cfg *config.Config) (*dataset.Session, error) {
	client := soda.NewClient(soda.Options{
		AppToken: cfg.Socrata.AppToken,
		Username: cfg.Socrata.Username,
		Password: cfg.Socrata.Password,
		Timeout:  time.Duration(cfg.Socrata.TimeoutSecs) * time.Second,
	})
	return dataset.NewSession(ctx, client, cfg.Data.Path)
}

// openSyncLog opens the sync run history database inside the data directory.
func openSyncLog(cfg *config.Config) (*synclog.Log, error) {
	return synclog.Open(filepath.Join(cfg.Data.Path, "sync.db"))
}

// newEnricher builds the geocoding enricher from config.
func newEnricher(cfg *config.Config) *geocode.Enricher {
	client := geocode.NewClient(geocode.Options{
		Key:     cfg.Geocode.AppToken,
		BaseURL: cfg.Geocode.BaseURL,
	})
	cache := geocode.NewCache(filepath.Join(cfg.Data.Path, "address-cache.json"))
	return geocode.NewEnricher(client, cache, cfg.Geocode.State)
}

// outputPath is the default location of the saved unified table.
func outputPath(cfg *config.Config) string {
	return filepath.Join(cfg.Data.Path, "brownsville.csv")
}
