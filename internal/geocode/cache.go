package geocode

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Address identifies a building for geocoding purposes.
type Address struct {
	Street string
	City   string
	Zip    string
}

// Key normalizes the address into the cache lookup key.
func (a Address) Key() string {
	parts := []string{a.Street, a.City, a.Zip}
	return strings.ToUpper(strings.TrimSpace(strings.Join(parts, " ")))
}

// Cache is the on-disk address→coordinate store. It is read once at startup
// and written back once after a batch; a crash mid-batch loses only that
// run's new lookups.
type Cache struct {
	path string
}

// NewCache creates a cache backed by the given JSON file.
func NewCache(path string) *Cache {
	return &Cache{path: path}
}

// Load reads the cached coordinates. A missing file yields an empty map; an
// unreadable one is discarded with a warning, since every entry can be
// re-resolved.
func (c *Cache) Load() map[string]Coordinate {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return make(map[string]Coordinate)
	}

	var entries map[string]Coordinate
	if err := json.Unmarshal(data, &entries); err != nil {
		zap.L().Warn("geocode: unreadable address cache, starting empty",
			zap.String("path", c.path),
			zap.Error(err),
		)
		return make(map[string]Coordinate)
	}
	return entries
}

// Save writes the full coordinate set back to disk in one operation.
func (c *Cache) Save(entries map[string]Coordinate) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return eris.Wrap(err, "geocode: encode address cache")
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return eris.Wrapf(err, "geocode: write address cache %s", c.path)
	}
	return nil
}
