package soda

import (
	"net/url"
	"strconv"
)

// Query holds the SoQL parameters for a dataset request. The zero value asks
// for the dataset unfiltered. Query is comparable on purpose: the reconciler
// may only delta-fetch when the new query equals the one a cache was built
// with, so equality is the load-bearing operation here.
type Query struct {
	Select string
	Where  string
	Order  string
	Limit  uint
	Offset uint
}

// Values encodes the query as SoQL request parameters. Zero-valued fields are
// omitted so the remote service applies its own defaults.
func (q Query) Values() url.Values {
	v := url.Values{}
	if q.Select != "" {
		v.Set("$select", q.Select)
	}
	if q.Where != "" {
		v.Set("$where", q.Where)
	}
	if q.Order != "" {
		v.Set("$order", q.Order)
	}
	if q.Limit > 0 {
		v.Set("$limit", strconv.FormatUint(uint64(q.Limit), 10))
	}
	if q.Offset > 0 {
		v.Set("$offset", strconv.FormatUint(uint64(q.Offset), 10))
	}
	return v
}

// WithOffset returns a copy of the query starting at the given row offset.
func (q Query) WithOffset(offset uint) Query {
	q.Offset = offset
	return q
}

// WithLimit returns a copy of the query capped at the given row count.
func (q Query) WithLimit(limit uint) Query {
	q.Limit = limit
	return q
}
