package dataset

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ErrCacheMiss reports that no usable cached table exists for a dataset. An
// unreadable or unparseable cache file is deliberately folded into this error:
// corruption is recovered from by refetching, never surfaced as fatal.
var ErrCacheMiss = errors.New("dataset: cache miss")

// CacheStore persists raw dataset tables as CSV files under a data directory.
// The first column of every file is the row index, mirroring the layout the
// unified dataset is published in.
type CacheStore struct {
	dir string
}

// NewCacheStore creates the data directory if needed and returns a store
// rooted there.
func NewCacheStore(dir string) (*CacheStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "cache: create data dir %s", dir)
	}
	return &CacheStore{dir: dir}, nil
}

// Dir returns the root data directory.
func (c *CacheStore) Dir() string {
	return c.dir
}

// Path returns the absolute path of a file inside the data directory.
func (c *CacheStore) Path(filename string) string {
	return filepath.Join(c.dir, filename)
}

// WriteTable persists a table to the named cache file, overwriting any
// previous contents.
func (c *CacheStore) WriteTable(filename string, t *Table) error {
	file, err := os.Create(c.Path(filename))
	if err != nil {
		return eris.Wrapf(err, "cache: create %s", filename)
	}
	defer file.Close() //nolint:errcheck

	w := csv.NewWriter(file)

	header := append([]string{""}, t.Columns...)
	if err := w.Write(header); err != nil {
		return eris.Wrapf(err, "cache: write header to %s", filename)
	}

	for i, row := range t.Rows {
		record := append([]string{strconv.Itoa(i)}, row...)
		if err := w.Write(record); err != nil {
			return eris.Wrapf(err, "cache: write row to %s", filename)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrapf(err, "cache: flush %s", filename)
	}
	return nil
}

// ReadTable loads a cached table. Missing, empty, or malformed files all
// surface as ErrCacheMiss so the caller falls back to a full refetch.
func (c *CacheStore) ReadTable(filename string) (*Table, error) {
	return c.readTable(filename, -1)
}

// ReadTableHead loads at most n rows of a cached table. Used by the bounded
// peek path, which never wants the whole file in memory.
func (c *CacheStore) ReadTableHead(filename string, n int) (*Table, error) {
	return c.readTable(filename, n)
}

func (c *CacheStore) readTable(filename string, limit int) (*Table, error) {
	file, err := os.Open(c.Path(filename))
	if err != nil {
		return nil, ErrCacheMiss
	}
	defer file.Close() //nolint:errcheck

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil || len(header) < 2 {
		zap.L().Warn("cache: unreadable cache file, treating as miss",
			zap.String("file", filename),
			zap.Error(err),
		)
		return nil, ErrCacheMiss
	}

	// Drop the leading index column.
	t := &Table{Columns: append([]string(nil), header[1:]...)}
	for limit < 0 || len(t.Rows) < limit {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil || len(record) != len(header) {
			zap.L().Warn("cache: malformed cache row, treating as miss",
				zap.String("file", filename),
				zap.Error(err),
			)
			return nil, ErrCacheMiss
		}
		t.Rows = append(t.Rows, record[1:])
	}
	return t, nil
}
