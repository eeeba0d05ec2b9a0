// Package soda is a client for Socrata Open Data API endpoints, scoped to the
// NYC OpenData domain. It covers the three calls the pipeline needs: dataset
// metadata, a single page of records, and a full paged fetch.
package soda

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultDomain is the NYC OpenData host serving all tracked endpoints.
const DefaultDomain = "data.cityofnewyork.us"

// defaultPageSize is the page size used by GetAll when the query sets no limit.
const defaultPageSize = 10000

// Record is a single dataset row as returned by the API. Socrata serializes
// nearly every field as a string; nested values (location columns) stay as
// decoded JSON and are flattened by the table layer.
type Record map[string]any

// MetadataResponse is the subset of the views endpoint response the pipeline
// tracks per dataset.
type MetadataResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Attribution   string `json:"attribution"`
	Category      string `json:"category"`
	Description   string `json:"description"`
	RowsUpdatedAt int64  `json:"rowsUpdatedAt"`
}

// Options configures the client.
type Options struct {
	Domain     string
	BaseURL    string // overrides Domain, used by tests
	AppToken   string
	Username   string
	Password   string
	Timeout    time.Duration
	MaxRetries int
	RPS        float64
}

// Client talks to a Socrata domain over HTTP with retry and rate limiting.
type Client struct {
	http    *http.Client
	baseURL string
	opts    Options
	limiter *rate.Limiter
}

// NewClient creates a Client with the given options. Without an app token the
// client runs anonymously; the remote service throttles such traffic harder,
// which the rate limiter absorbs.
func NewClient(opts Options) *Client {
	if opts.Domain == "" {
		opts.Domain = DefaultDomain
	}
	if opts.Timeout == 0 {
		opts.Timeout = 20 * time.Second
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.RPS == 0 {
		opts.RPS = 10
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = "https://" + opts.Domain
	}
	return &Client{
		http:    &http.Client{Timeout: opts.Timeout},
		baseURL: baseURL,
		opts:    opts,
		limiter: rate.NewLimiter(rate.Limit(opts.RPS), int(opts.RPS)),
	}
}

// Metadata fetches the dataset metadata for the given endpoint id.
func (c *Client) Metadata(ctx context.Context, endpoint string) (*MetadataResponse, error) {
	url := fmt.Sprintf("%s/api/views/%s.json", c.baseURL, endpoint)

	resp, err := c.doWithRetry(ctx, url)
	if err != nil {
		return nil, eris.Wrapf(err, "soda: metadata for %s", endpoint)
	}
	defer resp.Body.Close() //nolint:errcheck

	var meta MetadataResponse
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return nil, eris.Wrapf(err, "soda: decode metadata for %s", endpoint)
	}
	return &meta, nil
}

// Get fetches a single page of records for the endpoint.
func (c *Client) Get(ctx context.Context, endpoint string, q Query) ([]Record, error) {
	url := fmt.Sprintf("%s/resource/%s.json", c.baseURL, endpoint)
	if params := q.Values().Encode(); params != "" {
		url += "?" + params
	}

	resp, err := c.doWithRetry(ctx, url)
	if err != nil {
		return nil, eris.Wrapf(err, "soda: get %s", endpoint)
	}
	defer resp.Body.Close() //nolint:errcheck

	var records []Record
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, eris.Wrapf(err, "soda: decode records for %s", endpoint)
	}
	return records, nil
}

// GetAll fetches every record matching the query, paging by offset until a
// short page comes back. The query's own offset is honored as the starting
// point, which is what makes delta fetches possible.
func (c *Client) GetAll(ctx context.Context, endpoint string, q Query) ([]Record, error) {
	pageSize := q.Limit
	if pageSize == 0 {
		pageSize = defaultPageSize
	}

	var all []Record
	offset := q.Offset
	for {
		page, err := c.Get(ctx, endpoint, q.WithOffset(offset).WithLimit(pageSize))
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if uint(len(page)) < pageSize {
			break
		}
		offset += pageSize
	}

	zap.L().Debug("soda: fetched all pages",
		zap.String("endpoint", endpoint),
		zap.Int("records", len(all)),
	)
	return all, nil
}

func (c *Client) doWithRetry(ctx context.Context, url string) (*http.Response, error) {
	var lastErr error
	for attempt := range c.opts.MaxRetries {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "rate limiter wait")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, eris.Wrap(err, "create request")
		}
		if c.opts.AppToken != "" {
			req.Header.Set("X-App-Token", c.opts.AppToken)
		}
		if c.opts.Username != "" {
			req.SetBasicAuth(c.opts.Username, c.opts.Password)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			zap.L().Warn("soda request failed, retrying",
				zap.String("url", url),
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			c.backoff(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			_ = resp.Body.Close()
			lastErr = eris.Errorf("soda: http %d from %s", resp.StatusCode, url)
			zap.L().Warn("soda server error, retrying",
				zap.String("url", url),
				zap.Int("status", resp.StatusCode),
				zap.Int("attempt", attempt+1),
			)
			c.backoff(ctx, attempt)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			_ = resp.Body.Close()
			return nil, eris.Errorf("soda: unexpected status %d from %s", resp.StatusCode, url)
		}

		return resp, nil
	}

	return nil, eris.Wrap(lastErr, "all retries exhausted")
}

func (c *Client) backoff(ctx context.Context, attempt int) {
	base := time.Second
	maxBackoff := 30 * time.Second
	d := time.Duration(float64(base) * math.Pow(2, float64(attempt)))
	if d > maxBackoff {
		d = maxBackoff
	}
	d += time.Duration(rand.Int64N(int64(d) / 2))

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
