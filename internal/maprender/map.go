// Package maprender writes the unified dataset out as a static Leaflet map
// with clustered building markers and an optional complaint heat layer.
package maprender

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"

	"github.com/CahhBrownsville/Brownsville-project/internal/brownsville"
)

// Fallback center when no record carries coordinates.
var defaultCenter = [2]float64{40.6842, -73.9163}

// Marker is one clustered map marker: a distinct building address with its
// complaint rollup.
type Marker struct {
	Address    string  `json:"address"`
	Latitude   float64 `json:"lat"`
	Longitude  float64 `json:"lng"`
	Complaints int     `json:"complaints"`
	Owner      string  `json:"owner"`
	OwnerType  string  `json:"ownerType"`
	Units      int64   `json:"units"`
	YearBuilt  int64   `json:"yearBuilt"`
}

// Options configures rendering.
type Options struct {
	Title   string
	Heatmap bool
	Zoom    int
}

// Render writes the map HTML for the given records.
func Render(w io.Writer, records []brownsville.Record, opts Options) error {
	if opts.Title == "" {
		opts.Title = "Brownsville housing complaints"
	}
	if opts.Zoom == 0 {
		opts.Zoom = 12
	}

	markers := buildMarkers(records)
	lat, lng := center(markers)

	markerJSON, err := json.Marshal(markers)
	if err != nil {
		return eris.Wrap(err, "maprender: encode markers")
	}

	data := struct {
		Title      string
		CenterLat  float64
		CenterLng  float64
		Zoom       int
		Heatmap    bool
		MarkerJSON template.JS
	}{
		Title:      opts.Title,
		CenterLat:  lat,
		CenterLng:  lng,
		Zoom:       opts.Zoom,
		Heatmap:    opts.Heatmap,
		MarkerJSON: template.JS(markerJSON),
	}

	if err := pageTemplate.Execute(w, data); err != nil {
		return eris.Wrap(err, "maprender: execute template")
	}
	return nil
}

// RenderFile renders the map into a file.
func RenderFile(path string, records []brownsville.Record, opts Options) error {
	file, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "maprender: create %s", path)
	}
	defer file.Close() //nolint:errcheck
	return Render(file, records, opts)
}

// buildMarkers groups located records by address and rolls up per-building
// details for the popup.
func buildMarkers(records []brownsville.Record) []Marker {
	byAddress := make(map[string]*Marker)
	var order []string

	for i := range records {
		r := &records[i]
		if r.Latitude == nil || r.Longitude == nil || r.Address == "" {
			continue
		}
		m, ok := byAddress[r.Address]
		if !ok {
			owner := r.OwnerName
			if owner == "" {
				owner = "UNKNOWN"
			}
			m = &Marker{
				Address:   r.Address,
				Latitude:  *r.Latitude,
				Longitude: *r.Longitude,
				Owner:     owner,
				OwnerType: r.OwnerTypeLong,
				Units:     r.UnitsRes,
				YearBuilt: r.YearBuilt,
			}
			byAddress[r.Address] = m
			order = append(order, r.Address)
		}
		m.Complaints++
	}

	markers := make([]Marker, 0, len(order))
	for _, addr := range order {
		markers = append(markers, *byAddress[addr])
	}
	return markers
}

// center returns the midpoint of the bounds spanned by the markers.
func center(markers []Marker) (lat, lng float64) {
	if len(markers) == 0 {
		return defaultCenter[0], defaultCenter[1]
	}

	bounds := geom.NewBounds(geom.XY)
	for _, m := range markers {
		bounds.Extend(geom.NewPointFlat(geom.XY, []float64{m.Longitude, m.Latitude}))
	}
	return (bounds.Min(1) + bounds.Max(1)) / 2, (bounds.Min(0) + bounds.Max(0)) / 2
}

var pageTemplate = template.Must(template.New("map").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<link rel="stylesheet" href="https://unpkg.com/leaflet.markercluster@1.5.3/dist/MarkerCluster.css">
<link rel="stylesheet" href="https://unpkg.com/leaflet.markercluster@1.5.3/dist/MarkerCluster.Default.css">
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<script src="https://unpkg.com/leaflet.markercluster@1.5.3/dist/leaflet.markercluster.js"></script>
{{if .Heatmap}}<script src="https://unpkg.com/leaflet.heat@0.2.0/dist/leaflet-heat.js"></script>{{end}}
<style>html, body, #map { height: 100%; margin: 0; }</style>
</head>
<body>
<div id="map"></div>
<script>
var map = L.map('map').setView([{{.CenterLat}}, {{.CenterLng}}], {{.Zoom}});
L.tileLayer('https://tile.openstreetmap.org/{z}/{x}/{y}.png', {
	attribution: '&copy; OpenStreetMap contributors'
}).addTo(map);

var markers = {{.MarkerJSON}};
var cluster = L.markerClusterGroup();
markers.forEach(function (m) {
	var popup = '<b>' + m.address + '</b><br>' +
		'Complaints: ' + m.complaints + '<br>' +
		'Owner: ' + m.owner + '<br>' +
		'Owner type: ' + m.ownerType + '<br>' +
		'Residential units: ' + m.units + '<br>' +
		'Year built: ' + (m.yearBuilt || 'unknown');
	cluster.addLayer(L.marker([m.lat, m.lng]).bindPopup(popup));
});
map.addLayer(cluster);
{{if .Heatmap}}
L.heatLayer(markers.map(function (m) { return [m.lat, m.lng, m.complaints]; }), {radius: 25}).addTo(map);
{{end}}
</script>
</body>
</html>
`))

// Summary prints a one-line rollup used by the map command.
func Summary(records []brownsville.Record) string {
	located := 0
	for i := range records {
		if records[i].Latitude != nil && records[i].Longitude != nil {
			located++
		}
	}
	return fmt.Sprintf("%d rows, %d with coordinates", len(records), located)
}
