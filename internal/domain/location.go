package domain

// Location identifies a service point plotted on the map
type Location struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// LocationSet is the result of a location fetch.
// IsMock reports that the static fallback list was substituted.
type LocationSet struct {
	Locations []Location `json:"locations"`
	IsMock    bool       `json:"is_mock"`
}

// Default map view used when there are no locations (London)
const (
	DefaultCenterLat = 51.505
	DefaultCenterLon = -0.09
	DefaultZoom      = 2
	LocationZoom     = 13
)
