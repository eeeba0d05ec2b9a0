package maprender

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CahhBrownsville/Brownsville-project/internal/brownsville"
)

func float64p(f float64) *float64 { return &f }

func locatedRecords() []brownsville.Record {
	return []brownsville.Record{
		{Address: "123 PITKIN AVENUE", OwnerName: "ACME REALTY", UnitsRes: 6,
			Latitude: float64p(40.66), Longitude: float64p(-73.92)},
		{Address: "123 PITKIN AVENUE",
			Latitude: float64p(40.66), Longitude: float64p(-73.92)},
		{Address: "456 SUTTER AVENUE",
			Latitude: float64p(40.68), Longitude: float64p(-73.90)},
		{Address: "NO COORDINATES STREET"},
	}
}

func TestBuildMarkersGroupsByAddress(t *testing.T) {
	markers := buildMarkers(locatedRecords())

	require.Len(t, markers, 2, "unlocated rows are skipped")
	assert.Equal(t, "123 PITKIN AVENUE", markers[0].Address)
	assert.Equal(t, 2, markers[0].Complaints)
	assert.Equal(t, "ACME REALTY", markers[0].Owner)
	assert.Equal(t, 1, markers[1].Complaints)
}

func TestCenterIsBoundsMidpoint(t *testing.T) {
	lat, lng := center(buildMarkers(locatedRecords()))
	assert.InDelta(t, 40.67, lat, 1e-9)
	assert.InDelta(t, -73.91, lng, 1e-9)
}

func TestCenterFallsBackWithoutMarkers(t *testing.T) {
	lat, lng := center(nil)
	assert.Equal(t, defaultCenter[0], lat)
	assert.Equal(t, defaultCenter[1], lng)
}

func TestRender(t *testing.T) {
	var b strings.Builder
	require.NoError(t, Render(&b, locatedRecords(), Options{}))

	html := b.String()
	assert.Contains(t, html, "123 PITKIN AVENUE")
	assert.Contains(t, html, "markerClusterGroup")
	assert.Contains(t, html, "Brownsville housing complaints")
	assert.NotContains(t, html, "heatLayer")
}

func TestRenderHeatmap(t *testing.T) {
	var b strings.Builder
	require.NoError(t, Render(&b, locatedRecords(), Options{Heatmap: true, Title: "Heat"}))

	html := b.String()
	assert.Contains(t, html, "heatLayer")
	assert.Contains(t, html, "<title>Heat</title>")
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "4 rows, 3 with coordinates", Summary(locatedRecords()))
}
