package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheRoundTrip(t *testing.T) {
	store, err := NewCacheStore(t.TempDir())
	require.NoError(t, err)

	table := NewTable("complaintid", "status")
	table.Rows = [][]string{{"1", "OPEN"}, {"2", "CLOSE"}}
	require.NoError(t, store.WriteTable("housing-raw.csv", table))

	got, err := store.ReadTable("housing-raw.csv")
	require.NoError(t, err)
	assert.Equal(t, table.Columns, got.Columns)
	assert.Equal(t, table.Rows, got.Rows)
}

func TestCacheWritesIndexColumn(t *testing.T) {
	store, err := NewCacheStore(t.TempDir())
	require.NoError(t, err)

	table := NewTable("complaintid")
	table.Rows = [][]string{{"7"}, {"8"}}
	require.NoError(t, store.WriteTable("indexed.csv", table))

	data, err := os.ReadFile(store.Path("indexed.csv"))
	require.NoError(t, err)
	assert.Equal(t, ",complaintid\n0,7\n1,8\n", string(data))
}

func TestReadTableHead(t *testing.T) {
	store, err := NewCacheStore(t.TempDir())
	require.NoError(t, err)

	table := NewTable("complaintid")
	table.Rows = [][]string{{"1"}, {"2"}, {"3"}}
	require.NoError(t, store.WriteTable("head.csv", table))

	got, err := store.ReadTableHead("head.csv", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, got.NumRows())
}

func TestMissingCacheFileIsMiss(t *testing.T) {
	store, err := NewCacheStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.ReadTable("nope.csv")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestCorruptCacheFileIsMiss(t *testing.T) {
	dir := t.TempDir()
	store, err := NewCacheStore(dir)
	require.NoError(t, err)

	// A row with the wrong cell count cannot have come from WriteTable.
	corrupt := ",complaintid,status\n0,1,OPEN\n1,2\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "corrupt.csv"), []byte(corrupt), 0o644))

	_, err = store.ReadTable("corrupt.csv")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestEmptyCacheFileIsMiss(t *testing.T) {
	dir := t.TempDir()
	store, err := NewCacheStore(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.csv"), nil, 0o644))

	_, err = store.ReadTable("empty.csv")
	assert.ErrorIs(t, err, ErrCacheMiss)
}
