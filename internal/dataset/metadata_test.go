package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CahhBrownsville/Brownsville-project/internal/soda"
)

func TestNewMetadata(t *testing.T) {
	meta, err := NewMetadata(&soda.MetadataResponse{
		ID:            "uwyv-629c",
		Name:          "Housing Maintenance Code Complaints",
		Attribution:   "HPD",
		RowsUpdatedAt: 1609459200,
	})
	require.NoError(t, err)

	assert.Equal(t, "uwyv-629c", meta.Endpoint)
	assert.Equal(t, "housing-maintenance-code-complaints-raw.csv", meta.Filename)
	assert.Equal(t, time.Unix(1609459200, 0).UTC(), meta.SourceUpdatedAt)
	assert.False(t, meta.Synced())
	assert.True(t, meta.Stale())
	assert.Nil(t, meta.LastQuery)
}

func TestNewMetadataRejectsMissingID(t *testing.T) {
	_, err := NewMetadata(&soda.MetadataResponse{RowsUpdatedAt: 1})
	assert.Error(t, err)

	_, err = NewMetadata(nil)
	assert.Error(t, err)
}

func TestNewMetadataRejectsMissingTimestamp(t *testing.T) {
	_, err := NewMetadata(&soda.MetadataResponse{ID: "uwyv-629c"})
	assert.Error(t, err)
}

func TestCacheFilename(t *testing.T) {
	assert.Equal(t, "brownsville-complaints-raw.csv", CacheFilename("Brownsville complaints"))
	assert.Equal(t, "pluto-raw.csv", CacheFilename("PLUTO"))
}

func TestStale(t *testing.T) {
	meta := &Metadata{SourceUpdatedAt: time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)}

	assert.True(t, meta.Stale(), "never-synced dataset is stale")

	meta.CacheDate = time.Date(2021, 2, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, meta.Stale(), "cache older than source is stale")

	meta.CacheDate = time.Date(2021, 4, 1, 0, 0, 0, 0, time.UTC)
	assert.False(t, meta.Stale())
	assert.True(t, meta.Synced())
}

func TestInformation(t *testing.T) {
	meta := &Metadata{
		Endpoint:        "uwyv-629c",
		Name:            "Housing Maintenance Code Complaints",
		Filename:        "housing-maintenance-code-complaints-raw.csv",
		Description:     "Complaints filed by tenants",
		SourceUpdatedAt: time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC),
		RowOffset:       42,
	}

	info := meta.Information()
	assert.Contains(t, info, "Housing Maintenance Code Complaints:")
	assert.Contains(t, info, "uwyv-629c")
	assert.Contains(t, info, "03-01-2021")
	assert.Contains(t, info, "Cache date: never")
	assert.Contains(t, info, "Number of records on cache: 42")
}

func TestIndentWrap(t *testing.T) {
	wrapped := indentWrap("one two three four", 9, "\t")
	assert.Equal(t, "\tone two\n\tthree\n\tfour", wrapped)
	assert.Equal(t, "\t", indentWrap("", 80, "\t"))
}
