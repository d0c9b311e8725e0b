package models

// Location represents a geographic location with latitude and longitude
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Properties is the free-form payload carried by a point (name, phone number, etc.)
type Properties map[string]interface{}

// Point is a dataset record: an identified location with optional properties.
// A nil Location marks a record that cannot be indexed.
type Point struct {
	ID         string     `json:"id"`
	Location   *Location  `json:"location"`
	Properties Properties `json:"properties,omitempty"`
}

// BoundingBox represents a rectangular area defined by two corners
type BoundingBox struct {
	BottomLeft Location `json:"bottom_left" yaml:"bottom_left"`
	TopRight   Location `json:"top_right" yaml:"top_right"`
}

// WorldBounds covers every valid latitude and longitude.
var WorldBounds = BoundingBox{
	BottomLeft: Location{Lat: -90, Lon: -180},
	TopRight:   Location{Lat: 90, Lon: 180},
}

// Contains reports whether loc lies inside the box, edges included.
func (b BoundingBox) Contains(loc Location) bool {
	return loc.Lat >= b.BottomLeft.Lat && loc.Lat <= b.TopRight.Lat &&
		loc.Lon >= b.BottomLeft.Lon && loc.Lon <= b.TopRight.Lon
}
