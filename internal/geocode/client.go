// Package geocode resolves street addresses to coordinates through a
// MapQuest-style geocoding service, with a persisted address cache so each
// distinct address is looked up at most once across runs.
package geocode

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/time/rate"
)

// Coordinate is a latitude/longitude pair.
type Coordinate struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// Geocoder is the part of the geocoding service the enricher needs.
type Geocoder interface {
	// Coordinates resolves an address to a coordinate pair.
	Coordinates(ctx context.Context, street, city, state, zip string) (Coordinate, error)

	// Zip resolves the postal code of an address that lacks one.
	Zip(ctx context.Context, street, city, state string) (string, error)
}

// Options configures the client.
type Options struct {
	Key     string
	BaseURL string
	Timeout time.Duration
	RPS     float64
}

// Client calls the geocoding HTTP API.
type Client struct {
	http    *http.Client
	opts    Options
	limiter *rate.Limiter
	titler  cases.Caser
}

// NewClient creates a geocoding client.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = "http://www.mapquestapi.com/geocoding/v1/address"
	}
	if opts.Timeout == 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.RPS == 0 {
		opts.RPS = 10
	}
	return &Client{
		http:    &http.Client{Timeout: opts.Timeout},
		opts:    opts,
		limiter: rate.NewLimiter(rate.Limit(opts.RPS), int(opts.RPS)),
		titler:  cases.Title(language.AmericanEnglish),
	}
}

// response mirrors the slice of the API response the client reads.
type response struct {
	Results []struct {
		Locations []location `json:"locations"`
	} `json:"results"`
}

type location struct {
	LatLng     Coordinate `json:"latLng"`
	PostalCode string     `json:"postalCode"`
}

// Coordinates resolves an address to a coordinate pair.
func (c *Client) Coordinates(ctx context.Context, street, city, state, zip string) (Coordinate, error) {
	loc, err := c.lookup(ctx, street, city, state, zip)
	if err != nil {
		return Coordinate{}, err
	}
	return loc.LatLng, nil
}

// Zip resolves the postal code of an address. Only the five-digit prefix is
// returned; the service appends the plus-four extension.
func (c *Client) Zip(ctx context.Context, street, city, state string) (string, error) {
	loc, err := c.lookup(ctx, street, city, state, "")
	if err != nil {
		return "", err
	}
	zip := loc.PostalCode
	if len(zip) > 5 {
		zip = zip[:5]
	}
	if zip == "" {
		return "", eris.Errorf("geocode: no postal code for %q", street)
	}
	return zip, nil
}

func (c *Client) lookup(ctx context.Context, parts ...string) (*location, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "rate limiter wait")
	}

	params := url.Values{}
	params.Set("key", c.opts.Key)
	params.Set("location", c.location(parts))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.opts.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("geocode: unexpected status %d", resp.StatusCode)
	}

	var decoded response
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, eris.Wrap(err, "geocode: decode response")
	}
	if len(decoded.Results) == 0 || len(decoded.Results[0].Locations) == 0 {
		return nil, eris.New("geocode: no match")
	}
	return &decoded.Results[0].Locations[0], nil
}

// location joins the non-empty address parts title-cased, the form the
// service matches most reliably.
func (c *Client) location(parts []string) string {
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		cleaned = append(cleaned, c.titler.String(strings.ToLower(part)))
	}
	return strings.Join(cleaned, ",")
}
