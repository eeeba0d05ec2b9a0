package dataset

import (
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/CahhBrownsville/Brownsville-project/internal/soda"
)

// Metadata is the per-endpoint sync state persisted across runs. Every fetch
// mutates RowOffset, CacheDate, and LastQuery; the snapshot writes them back
// at session close so repeated runs stay idempotent.
type Metadata struct {
	Endpoint    string `json:"endpoint"`
	Name        string `json:"name"`
	Filename    string `json:"filename"`
	Attribution string `json:"attribution"`
	Category    string `json:"category"`
	Description string `json:"description"`

	// SourceUpdatedAt is the freshness marker reported by the remote service
	// as of the last metadata fetch.
	SourceUpdatedAt time.Time `json:"source_updated_at"`

	// CacheDate is the time of the last successful local sync. The zero value
	// means never synced. It only ever moves forward.
	CacheDate time.Time `json:"cache_date"`

	// RowOffset is the number of rows currently cached, and therefore the
	// next-page offset for a delta fetch.
	RowOffset uint `json:"row_offset"`

	// LastQuery is the exact parameter set of the last full fetch. A delta
	// fetch is valid only against an identical query; nil means no fetch has
	// happened yet.
	LastQuery *soda.Query `json:"last_query,omitempty"`

	// Loaded marks the metadata as touched within the current session. It is
	// transient and always false outside a session.
	Loaded bool `json:"-"`
}

// NewMetadata builds sync state from a live metadata response. A dataset
// cannot be tracked without a stable identity and a freshness marker, so a
// missing id or rows-updated timestamp is a construction error.
func NewMetadata(resp *soda.MetadataResponse) (*Metadata, error) {
	if resp == nil || resp.ID == "" {
		return nil, eris.New("metadata: response has no dataset id")
	}
	if resp.RowsUpdatedAt <= 0 {
		return nil, eris.Errorf("metadata: dataset %s has no rows-updated timestamp", resp.ID)
	}

	return &Metadata{
		Endpoint:        resp.ID,
		Name:            resp.Name,
		Filename:        CacheFilename(resp.Name),
		Attribution:     resp.Attribution,
		Category:        resp.Category,
		Description:     resp.Description,
		SourceUpdatedAt: time.Unix(resp.RowsUpdatedAt, 0).UTC(),
	}, nil
}

// CacheFilename derives the cache file name from a dataset display name.
func CacheFilename(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "-") + "-raw.csv"
}

// Synced reports whether the dataset has ever completed a full or delta fetch.
func (m *Metadata) Synced() bool {
	return !m.CacheDate.IsZero()
}

// Stale reports whether the remote service has rows newer than the cache.
func (m *Metadata) Stale() bool {
	return m.CacheDate.Before(m.SourceUpdatedAt)
}

// Information renders a human-readable summary of the dataset.
func (m *Metadata) Information() string {
	cacheDate := "never"
	if m.Synced() {
		cacheDate = m.CacheDate.Format("01-02-2006")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s:\n", m.Name)
	fmt.Fprintf(&b, "\t- Filename: %s\n", m.Filename)
	fmt.Fprintf(&b, "\t- Endpoint: %s\n", m.Endpoint)
	fmt.Fprintf(&b, "\t- Description:\n%s\n", indentWrap(m.Description, 80, "\t\t"))
	fmt.Fprintf(&b, "\t- Category: %s\n", m.Category)
	fmt.Fprintf(&b, "\t- Attribution: %s\n", m.Attribution)
	fmt.Fprintf(&b, "\t- Dataset Updated on: %s\n", m.SourceUpdatedAt.Format("01-02-2006"))
	fmt.Fprintf(&b, "\t- Cache date: %s\n", cacheDate)
	fmt.Fprintf(&b, "\t- Number of records on cache: %d", m.RowOffset)
	return b.String()
}

// indentWrap word-wraps text to the given width and prefixes every line.
func indentWrap(text string, width int, prefix string) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return prefix
	}

	var lines []string
	line := words[0]
	for _, word := range words[1:] {
		if len(line)+1+len(word) > width {
			lines = append(lines, prefix+line)
			line = word
			continue
		}
		line += " " + word
	}
	lines = append(lines, prefix+line)
	return strings.Join(lines, "\n")
}
