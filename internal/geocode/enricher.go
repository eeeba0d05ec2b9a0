package geocode

import (
	"context"

	"go.uber.org/zap"
)

// Enricher resolves batches of addresses against the cache first and the
// geocoding service second. Lookups are sequential on purpose: the whole
// pipeline runs single-threaded, and the service throttles aggressively.
type Enricher struct {
	geo   Geocoder
	cache *Cache
	state string
}

// NewEnricher creates an enricher over the given geocoder and cache file.
func NewEnricher(geo Geocoder, cache *Cache, state string) *Enricher {
	return &Enricher{geo: geo, cache: cache, state: state}
}

// Resolve maps each distinct address to its coordinates. Addresses already in
// the cache are served from it; the rest go to the geocoding service, one
// call per address, with a postal-code lookup first when the zip is missing.
// A failed lookup is logged and skipped, never fatal: the address simply has
// no entry in the returned map. The merged cache is written back to disk once
// after the batch.
func (e *Enricher) Resolve(ctx context.Context, addrs []Address) (map[string]Coordinate, error) {
	log := zap.L().With(zap.String("component", "geocode.enricher"))
	known := e.cache.Load()

	distinct := make(map[string]Address, len(addrs))
	for _, addr := range addrs {
		if _, ok := distinct[addr.Key()]; !ok {
			distinct[addr.Key()] = addr
		}
	}

	var looked, failed int
	for key, addr := range distinct {
		if _, ok := known[key]; ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if addr.Zip == "" {
			zip, err := e.geo.Zip(ctx, addr.Street, addr.City, e.state)
			if err != nil {
				log.Warn("postal code lookup failed, skipping address",
					zap.String("address", key),
					zap.Error(err),
				)
				failed++
				continue
			}
			addr.Zip = zip
		}

		coord, err := e.geo.Coordinates(ctx, addr.Street, addr.City, e.state, addr.Zip)
		if err != nil {
			log.Warn("coordinate lookup failed, skipping address",
				zap.String("address", key),
				zap.Error(err),
			)
			failed++
			continue
		}
		known[key] = coord
		looked++
	}

	if err := e.cache.Save(known); err != nil {
		return nil, err
	}

	log.Info("address batch resolved",
		zap.Int("distinct", len(distinct)),
		zap.Int("fetched", looked),
		zap.Int("failed", failed),
	)
	return known, nil
}
