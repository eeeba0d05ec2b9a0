// Package dataset implements the incremental fetch-and-cache layer for the
// tracked NYC OpenData endpoints: per-endpoint sync metadata, the local CSV
// cache, and the reconciler deciding between serving cache, fetching a delta,
// and refetching in full.
package dataset

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/CahhBrownsville/Brownsville-project/internal/soda"
)

// Tracked dataset names.
const (
	Dataset311                = "311"
	DatasetComplaintProblems  = "complaint_problems"
	DatasetHousingMaintenance = "housing_maintenance"
	DatasetDOBComplaints      = "dob_complaints"
	DatasetPLUTO              = "pluto"
	DatasetBrownsville        = "brownsville"
)

// endpoints maps tracked dataset names to their NYC OpenData endpoint ids.
// The brownsville dataset is derived locally and has no remote endpoint.
var endpoints = map[string]string{
	Dataset311:                "erm2-nwe9",
	DatasetComplaintProblems:  "a2nx-4u46",
	DatasetHousingMaintenance: "uwyv-629c",
	DatasetDOBComplaints:      "eabe-havv",
	DatasetPLUTO:              "64uk-42ks",
}

// datasetOrder fixes iteration order for snapshots and information output.
var datasetOrder = []string{
	Dataset311,
	DatasetComplaintProblems,
	DatasetHousingMaintenance,
	DatasetDOBComplaints,
	DatasetPLUTO,
	DatasetBrownsville,
}

// snapshotFilename is the metadata snapshot file inside the data directory.
const snapshotFilename = "metadata.json"

// Source is the remote dataset service the session fetches from.
type Source interface {
	Metadata(ctx context.Context, endpoint string) (*soda.MetadataResponse, error)
	Get(ctx context.Context, endpoint string, q soda.Query) ([]soda.Record, error)
	GetAll(ctx context.Context, endpoint string, q soda.Query) ([]soda.Record, error)
}

// FetchOptions controls how GetResults resolves a dataset.
type FetchOptions struct {
	// FetchAll asks for the complete dataset with cache reconciliation.
	// When false the call is a bounded peek that never mutates sync state.
	FetchAll bool

	// LoadLocal permits serving from the local cache. Disabling it forces a
	// remote fetch even when a fresh cache exists.
	LoadLocal bool
}

// fetchState labels the reconciliation decision for one GetResults call.
type fetchState int

const (
	stateCold fetchState = iota
	stateWarmFresh
	stateWarmStale
	stateQueryChanged
)

func (s fetchState) String() string {
	switch s {
	case stateCold:
		return "cold"
	case stateWarmFresh:
		return "warm-fresh"
	case stateWarmStale:
		return "warm-stale"
	case stateQueryChanged:
		return "query-changed"
	default:
		return "unknown"
	}
}

// Session owns the remote source handle and the full metadata record set for
// the lifetime of one run. Close persists the metadata snapshot; callers must
// close on every exit path so sync state survives failures of later stages.
type Session struct {
	source Source
	cache  *CacheStore
	meta   map[string]*Metadata
	closed bool
	now    func() time.Time
}

// NewSession opens a session rooted at the given data directory. Metadata is
// restored from the snapshot when one exists; otherwise it is constructed from
// live metadata calls for every remote endpoint.
func NewSession(ctx context.Context, source Source, dataDir string) (*Session, error) {
	cache, err := NewCacheStore(dataDir)
	if err != nil {
		return nil, err
	}

	s := &Session{
		source: source,
		cache:  cache,
		now:    time.Now,
	}

	if err := s.loadSnapshot(); err == nil {
		return s, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		zap.L().Warn("session: unreadable metadata snapshot, refetching metadata", zap.Error(err))
	}

	s.meta = make(map[string]*Metadata, len(datasetOrder))
	for name, endpoint := range endpoints {
		resp, err := source.Metadata(ctx, endpoint)
		if err != nil {
			return nil, eris.Wrapf(err, "session: fetch metadata for %s", name)
		}
		meta, err := NewMetadata(resp)
		if err != nil {
			return nil, eris.Wrapf(err, "session: construct metadata for %s", name)
		}
		s.meta[name] = meta
	}

	// The unified dataset is derived from housing maintenance and complaint
	// problems; it is as fresh as the older of its two parents.
	updated := s.meta[DatasetHousingMaintenance].SourceUpdatedAt
	if other := s.meta[DatasetComplaintProblems].SourceUpdatedAt; other.Before(updated) {
		updated = other
	}
	s.meta[DatasetBrownsville] = &Metadata{
		Name:            "Brownsville complaints",
		Filename:        CacheFilename("Brownsville complaints"),
		Attribution:     "Team Survey-Fix",
		Category:        "Housing complaints",
		Description:     "Complaint reports on the Brownsville area",
		SourceUpdatedAt: updated,
	}

	return s, nil
}

// Cache exposes the underlying cache store.
func (s *Session) Cache() *CacheStore {
	return s.cache
}

// Meta returns the sync metadata for a tracked dataset.
func (s *Session) Meta(name string) (*Metadata, error) {
	m, ok := s.meta[name]
	if !ok {
		return nil, eris.Errorf("session: unknown dataset %q", name)
	}
	return m, nil
}

// Information returns the metadata summaries of every tracked dataset.
func (s *Session) Information() string {
	parts := make([]string, 0, len(datasetOrder))
	for _, name := range datasetOrder {
		if m, ok := s.meta[name]; ok {
			parts = append(parts, m.Information())
		}
	}
	return strings.Join(parts, "\n\n")
}

// Close persists the metadata snapshot. Safe to call more than once.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	for _, m := range s.meta {
		m.Loaded = false
	}
	return s.saveSnapshot()
}

// GetResults resolves a dataset to a table.
//
// With FetchAll set, the call reconciles the local cache against the remote
// service: an unchanged query with a fresh cache is served locally, an
// unchanged query with a stale cache is served locally plus one delta fetch
// starting at the cached row offset, and anything else (no cache, corrupt
// cache, changed query, LoadLocal off) forces a full refetch. Successful
// reconciliation rewrites the cache file and advances the sync metadata.
//
// Without FetchAll the call is a peek: the first rows of the cache when one
// exists, otherwise a single bounded remote page. Peeks never touch metadata
// or the full cache.
func (s *Session) GetResults(ctx context.Context, meta *Metadata, opts FetchOptions, q soda.Query) (*Table, error) {
	if !meta.Loaded {
		meta.Loaded = true
	}

	if !opts.FetchAll {
		return s.peek(ctx, meta, opts, q)
	}

	log := zap.L().With(zap.String("dataset", meta.Name))

	state := stateCold
	var table *Table

	if opts.LoadLocal && meta.LastQuery != nil {
		if *meta.LastQuery != q {
			state = stateQueryChanged
		} else {
			cached, err := s.cache.ReadTable(meta.Filename)
			switch {
			case err == nil:
				table = cached
				if meta.Stale() {
					state = stateWarmStale
				} else {
					state = stateWarmFresh
				}
			case errors.Is(err, ErrCacheMiss):
				state = stateCold
			default:
				return nil, err
			}
		}
	}

	log.Info("reconciling dataset", zap.String("state", state.String()))

	switch state {
	case stateWarmFresh:
		// Serve the cache verbatim; no remote call.

	case stateWarmStale:
		// One delta fetch starting at the cached row count.
		records, err := s.source.GetAll(ctx, meta.Endpoint, q.WithOffset(meta.RowOffset))
		if err != nil {
			return nil, eris.Wrapf(err, "session: delta fetch %s", meta.Name)
		}
		log.Info("appending delta rows", zap.Int("rows", len(records)))
		table.Append(FromRecords(records))

	case stateCold, stateQueryChanged:
		records, err := s.source.GetAll(ctx, meta.Endpoint, q)
		if err != nil {
			return nil, eris.Wrapf(err, "session: full fetch %s", meta.Name)
		}
		table = FromRecords(records)
		saved := q
		meta.LastQuery = &saved
	}

	meta.RowOffset = uint(table.NumRows())
	meta.CacheDate = s.now()
	if err := s.cache.WriteTable(meta.Filename, table); err != nil {
		return nil, err
	}

	log.Info("dataset reconciled", zap.Uint("rows", meta.RowOffset))
	return table, nil
}

// peek returns a bounded slice of the dataset without mutating sync state.
func (s *Session) peek(ctx context.Context, meta *Metadata, opts FetchOptions, q soda.Query) (*Table, error) {
	limit := q.Limit
	if limit == 0 {
		limit = 1000
	}

	if opts.LoadLocal {
		table, err := s.cache.ReadTableHead(meta.Filename, int(limit))
		if err == nil {
			return table, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			return nil, err
		}
	}

	records, err := s.source.Get(ctx, meta.Endpoint, q.WithLimit(limit))
	if err != nil {
		return nil, eris.Wrapf(err, "session: peek %s", meta.Name)
	}
	return FromRecords(records), nil
}

// Load311 resolves the 311 service requests dataset.
func (s *Session) Load311(ctx context.Context, opts FetchOptions, q soda.Query) (*Table, error) {
	return s.GetResults(ctx, s.meta[Dataset311], opts, q)
}

// LoadComplaintProblems resolves the HPD complaint problems dataset.
func (s *Session) LoadComplaintProblems(ctx context.Context, opts FetchOptions, q soda.Query) (*Table, error) {
	return s.GetResults(ctx, s.meta[DatasetComplaintProblems], opts, q)
}

// LoadHousingMaintenance resolves the housing maintenance code complaints dataset.
func (s *Session) LoadHousingMaintenance(ctx context.Context, opts FetchOptions, q soda.Query) (*Table, error) {
	return s.GetResults(ctx, s.meta[DatasetHousingMaintenance], opts, q)
}

// LoadDOBComplaints resolves the DOB complaints received dataset.
func (s *Session) LoadDOBComplaints(ctx context.Context, opts FetchOptions, q soda.Query) (*Table, error) {
	return s.GetResults(ctx, s.meta[DatasetDOBComplaints], opts, q)
}

// LoadPLUTO resolves the PLUTO parcel dataset.
func (s *Session) LoadPLUTO(ctx context.Context, opts FetchOptions, q soda.Query) (*Table, error) {
	return s.GetResults(ctx, s.meta[DatasetPLUTO], opts, q)
}

// loadSnapshot restores metadata from the snapshot file.
func (s *Session) loadSnapshot() error {
	data, err := os.ReadFile(s.cache.Path(snapshotFilename))
	if err != nil {
		return err
	}

	var snap map[string]*Metadata
	if err := json.Unmarshal(data, &snap); err != nil {
		return eris.Wrap(err, "session: decode metadata snapshot")
	}

	for _, name := range datasetOrder {
		if _, ok := snap[name]; !ok {
			return eris.Errorf("session: snapshot missing dataset %q", name)
		}
	}

	for _, m := range snap {
		m.Loaded = false
	}
	s.meta = snap
	return nil
}

// saveSnapshot writes the metadata snapshot file.
func (s *Session) saveSnapshot() error {
	data, err := json.MarshalIndent(s.meta, "", "  ")
	if err != nil {
		return eris.Wrap(err, "session: encode metadata snapshot")
	}
	if err := os.WriteFile(s.cache.Path(snapshotFilename), data, 0o644); err != nil {
		return eris.Wrap(err, "session: write metadata snapshot")
	}
	return nil
}
