// Package view derives what the dashboard page shows from domain data.
// Nothing here mutates controller state.
package view

import "github.com/spdash/dashboard/internal/domain"

// Marker is a clickable service point marker
type Marker struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// Label is a non-interactive marker showing the service point id.
// It sits at exactly the same position as its Marker.
type Label struct {
	Text string  `json:"text"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// MapView is everything the page needs to draw the base map
type MapView struct {
	CenterLat float64  `json:"center_lat"`
	CenterLon float64  `json:"center_lon"`
	Zoom      int      `json:"zoom"`
	TileURL   string   `json:"tile_url"`
	Markers   []Marker `json:"markers"`
	Labels    []Label  `json:"labels"`
	IsMock    bool     `json:"is_mock"`
}

// NewMapView centers on the first location, or on the default view when
// there are none.
func NewMapView(set domain.LocationSet, tileURL string) MapView {
	v := MapView{
		CenterLat: domain.DefaultCenterLat,
		CenterLon: domain.DefaultCenterLon,
		Zoom:      domain.DefaultZoom,
		TileURL:   tileURL,
		Markers:   make([]Marker, 0, len(set.Locations)),
		Labels:    make([]Label, 0, len(set.Locations)),
		IsMock:    set.IsMock,
	}

	if len(set.Locations) > 0 {
		first := set.Locations[0]
		v.CenterLat = first.Latitude
		v.CenterLon = first.Longitude
		v.Zoom = domain.LocationZoom
	}

	for _, loc := range set.Locations {
		v.Markers = append(v.Markers, Marker{
			ID:   loc.ID,
			Name: loc.Name,
			Lat:  loc.Latitude,
			Lon:  loc.Longitude,
		})
		v.Labels = append(v.Labels, Label{
			Text: loc.ID,
			Lat:  loc.Latitude,
			Lon:  loc.Longitude,
		})
	}

	return v
}
