package brownsville

import (
	"context"
	"strconv"

	"github.com/CahhBrownsville/Brownsville-project/internal/geocode"
)

// CoordinateResolver resolves a batch of addresses to coordinates, keyed by
// the normalized address key.
type CoordinateResolver interface {
	Resolve(ctx context.Context, addrs []geocode.Address) (map[string]geocode.Coordinate, error)
}

// address derives the geocoding address of a record: derived street address,
// borough as city, zip when known.
func address(r *Record) geocode.Address {
	addr := geocode.Address{Street: r.Address, City: r.Borough}
	if r.Zip != nil {
		addr.Zip = strconv.FormatInt(*r.Zip, 10)
	}
	return addr
}

// Enrich populates latitude and longitude on every record whose address the
// resolver can place. Records whose address stays unresolved keep nil
// coordinates; partial results are expected.
func Enrich(ctx context.Context, records []Record, resolver CoordinateResolver) error {
	addrs := make([]geocode.Address, len(records))
	for i := range records {
		addrs[i] = address(&records[i])
	}

	coords, err := resolver.Resolve(ctx, addrs)
	if err != nil {
		return err
	}

	for i := range records {
		if coord, ok := coords[addrs[i].Key()]; ok {
			lat, lng := coord.Latitude, coord.Longitude
			records[i].Latitude = &lat
			records[i].Longitude = &lng
		}
	}
	return nil
}
