// Package geo provides the map projection and distance helpers shared by the
// index and the clustering engine.
package geo

import (
	"math"

	"github.com/1F47E/geo-cluster/pkg/models"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

const (
	// TileSize is the pixel size of a map tile.
	TileSize = 256.0
	// WorldSize is the width of the whole world in map points at the deepest zoom
	// (TileSize * 2^20).
	WorldSize = 268435456.0
	// MaxLatitude is the latitude at which Web Mercator reaches the map edge.
	MaxLatitude = 85.05112877980659

	halfCircumference = orb.EarthRadius * math.Pi
)

// MapPoint is a position in projected map space. X grows eastwards, Y southwards.
type MapPoint struct {
	X, Y float64
}

// MapRect is an axis-aligned rectangle in map space.
type MapRect struct {
	Origin MapPoint
	Width  float64
	Height float64
}

// NewMapRect creates a rectangle from its top-left corner and size.
func NewMapRect(x, y, width, height float64) MapRect {
	return MapRect{Origin: MapPoint{X: x, Y: y}, Width: width, Height: height}
}

func (r MapRect) MinX() float64 { return r.Origin.X }
func (r MapRect) MinY() float64 { return r.Origin.Y }
func (r MapRect) MaxX() float64 { return r.Origin.X + r.Width }
func (r MapRect) MaxY() float64 { return r.Origin.Y + r.Height }

// Max returns the bottom-right corner.
func (r MapRect) Max() MapPoint { return MapPoint{X: r.MaxX(), Y: r.MaxY()} }

// Projection converts between projected map points and geographic coordinates.
// Implementations must be pure.
type Projection interface {
	ToGeographic(p MapPoint) models.Location
	ToMapPoint(loc models.Location) MapPoint
}

// WebMercator is the spherical Mercator projection scaled to a square world of
// WorldSize map points with the origin in the north-west corner.
type WebMercator struct {
	WorldSize float64
}

// DefaultProjection is WebMercator at the standard world size.
var DefaultProjection Projection = WebMercator{WorldSize: WorldSize}

func (w WebMercator) size() float64 {
	if w.WorldSize <= 0 {
		return WorldSize
	}
	return w.WorldSize
}

// ToMapPoint projects loc. Latitudes beyond MaxLatitude are clamped.
func (w WebMercator) ToMapPoint(loc models.Location) MapPoint {
	lat := math.Max(-MaxLatitude, math.Min(MaxLatitude, loc.Lat))
	m := project.WGS84.ToMercator(orb.Point{loc.Lon, lat})
	size := w.size()
	return MapPoint{
		X: (m.X()/halfCircumference + 1) / 2 * size,
		Y: (1 - m.Y()/halfCircumference) / 2 * size,
	}
}

// ToGeographic is the inverse of ToMapPoint.
func (w WebMercator) ToGeographic(p MapPoint) models.Location {
	size := w.size()
	m := orb.Point{
		(2*p.X/size - 1) * halfCircumference,
		(1 - 2*p.Y/size) * halfCircumference,
	}
	g := project.Mercator.ToWGS84(m)
	return models.Location{Lat: g.Lat(), Lon: g.Lon()}
}

// RectFromBounds returns the map rectangle covering a geographic box.
func RectFromBounds(proj Projection, box models.BoundingBox) MapRect {
	topLeft := proj.ToMapPoint(models.Location{Lat: box.TopRight.Lat, Lon: box.BottomLeft.Lon})
	bottomRight := proj.ToMapPoint(models.Location{Lat: box.BottomLeft.Lat, Lon: box.TopRight.Lon})
	return MapRect{
		Origin: topLeft,
		Width:  math.Abs(bottomRight.X - topLeft.X),
		Height: math.Abs(bottomRight.Y - topLeft.Y),
	}
}

// BoundsFromRect returns the geographic box covered by a map rectangle.
// The top-left corner gives the maximum latitude and minimum longitude.
func BoundsFromRect(proj Projection, r MapRect) models.BoundingBox {
	topLeft := proj.ToGeographic(r.Origin)
	bottomRight := proj.ToGeographic(r.Max())
	return models.BoundingBox{
		BottomLeft: models.Location{Lat: bottomRight.Lat, Lon: topLeft.Lon},
		TopRight:   models.Location{Lat: topLeft.Lat, Lon: bottomRight.Lon},
	}
}
