package geocode

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressKey(t *testing.T) {
	a := Address{Street: "123 Pitkin Avenue", City: "Brooklyn", Zip: "11212"}
	assert.Equal(t, "123 PITKIN AVENUE BROOKLYN 11212", a.Key())

	// The key omits empty trailing parts after trimming.
	b := Address{Street: "123 Pitkin Avenue", City: "Brooklyn"}
	assert.Equal(t, "123 PITKIN AVENUE BROOKLYN", b.Key())
}

func TestCacheRoundTrip(t *testing.T) {
	cache := NewCache(filepath.Join(t.TempDir(), "address-cache.json"))

	entries := map[string]Coordinate{
		"123 PITKIN AVENUE BROOKLYN 11212": {Latitude: 40.67, Longitude: -73.91},
	}
	require.NoError(t, cache.Save(entries))

	got := cache.Load()
	assert.Equal(t, entries, got)
}

func TestCacheMissingFileLoadsEmpty(t *testing.T) {
	cache := NewCache(filepath.Join(t.TempDir(), "nope.json"))
	got := cache.Load()
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestCacheCorruptFileLoadsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "address-cache.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))

	got := NewCache(path).Load()
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
