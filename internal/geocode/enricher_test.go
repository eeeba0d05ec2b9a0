package geocode

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGeocoder counts lookups and fails for configured streets.
type fakeGeocoder struct {
	coordCalls int
	zipCalls   int
	failing    map[string]bool
}

func (f *fakeGeocoder) Coordinates(ctx context.Context, street, city, state, zip string) (Coordinate, error) {
	f.coordCalls++
	if f.failing[street] {
		return Coordinate{}, eris.New("no match")
	}
	return Coordinate{Latitude: 40.67, Longitude: -73.91}, nil
}

func (f *fakeGeocoder) Zip(ctx context.Context, street, city, state string) (string, error) {
	f.zipCalls++
	if f.failing[street] {
		return "", eris.New("no match")
	}
	return "11212", nil
}

func newTestEnricher(t *testing.T, geo Geocoder) *Enricher {
	return NewEnricher(geo, NewCache(filepath.Join(t.TempDir(), "cache.json")), "NY")
}

func TestResolveLooksUpEachDistinctAddressOnce(t *testing.T) {
	geo := &fakeGeocoder{}
	e := newTestEnricher(t, geo)

	addrs := []Address{
		{Street: "123 PITKIN AVENUE", City: "BROOKLYN", Zip: "11212"},
		{Street: "123 PITKIN AVENUE", City: "BROOKLYN", Zip: "11212"}, // duplicate
		{Street: "456 SUTTER AVENUE", City: "BROOKLYN", Zip: "11212"},
	}

	coords, err := e.Resolve(context.Background(), addrs)
	require.NoError(t, err)

	assert.Equal(t, 2, geo.coordCalls)
	assert.Equal(t, 0, geo.zipCalls, "known zips skip the postal lookup")
	assert.Len(t, coords, 2)
	assert.Contains(t, coords, addrs[0].Key())
}

func TestResolveFillsMissingZipFirst(t *testing.T) {
	geo := &fakeGeocoder{}
	e := newTestEnricher(t, geo)

	coords, err := e.Resolve(context.Background(), []Address{
		{Street: "123 PITKIN AVENUE", City: "BROOKLYN"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, geo.zipCalls)
	assert.Equal(t, 1, geo.coordCalls)
	assert.Len(t, coords, 1)
}

func TestResolveServesCachedAddressesWithoutLookup(t *testing.T) {
	cache := NewCache(filepath.Join(t.TempDir(), "cache.json"))
	addr := Address{Street: "123 PITKIN AVENUE", City: "BROOKLYN", Zip: "11212"}
	require.NoError(t, cache.Save(map[string]Coordinate{
		addr.Key(): {Latitude: 40.67, Longitude: -73.91},
	}))

	geo := &fakeGeocoder{}
	e := NewEnricher(geo, cache, "NY")

	coords, err := e.Resolve(context.Background(), []Address{addr})
	require.NoError(t, err)

	assert.Equal(t, 0, geo.coordCalls)
	assert.Equal(t, 40.67, coords[addr.Key()].Latitude)
}

func TestResolveSkipsFailedLookups(t *testing.T) {
	geo := &fakeGeocoder{failing: map[string]bool{"456 SUTTER AVENUE": true}}
	e := newTestEnricher(t, geo)

	coords, err := e.Resolve(context.Background(), []Address{
		{Street: "123 PITKIN AVENUE", City: "BROOKLYN", Zip: "11212"},
		{Street: "456 SUTTER AVENUE", City: "BROOKLYN", Zip: "11212"},
	})
	require.NoError(t, err, "a failed address is skipped, not fatal")

	good := Address{Street: "123 PITKIN AVENUE", City: "BROOKLYN", Zip: "11212"}
	bad := Address{Street: "456 SUTTER AVENUE", City: "BROOKLYN", Zip: "11212"}
	assert.Contains(t, coords, good.Key())
	assert.NotContains(t, coords, bad.Key())
}

func TestResolvePersistsCacheAcrossRuns(t *testing.T) {
	dir := t.TempDir()
	cache := NewCache(filepath.Join(dir, "cache.json"))
	addr := Address{Street: "123 PITKIN AVENUE", City: "BROOKLYN", Zip: "11212"}

	geo := &fakeGeocoder{}
	_, err := NewEnricher(geo, cache, "NY").Resolve(context.Background(), []Address{addr})
	require.NoError(t, err)
	require.Equal(t, 1, geo.coordCalls)

	// A second enricher over the same cache file needs no lookups.
	second := &fakeGeocoder{}
	coords, err := NewEnricher(second, NewCache(filepath.Join(dir, "cache.json")), "NY").
		Resolve(context.Background(), []Address{addr})
	require.NoError(t, err)
	assert.Equal(t, 0, second.coordCalls)
	assert.Contains(t, coords, addr.Key())
}

func TestResolveHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := newTestEnricher(t, &fakeGeocoder{})
	_, err := e.Resolve(ctx, []Address{{Street: "123 PITKIN AVENUE", City: "BROOKLYN", Zip: "11212"}})
	assert.ErrorIs(t, err, context.Canceled)
}
