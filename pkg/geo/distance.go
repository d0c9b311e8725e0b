package geo

import (
	"math"

	"github.com/1F47E/geo-cluster/pkg/models"
	"github.com/golang/geo/s2"
)

// EarthRadiusKm is the mean Earth radius used for great-circle distances.
const EarthRadiusKm = 6371.01

// Distance returns the great-circle distance between a and b in kilometers.
func Distance(a, b models.Location) float64 {
	return float64(s2.LatLngFromDegrees(a.Lat, a.Lon).Distance(s2.LatLngFromDegrees(b.Lat, b.Lon))) * EarthRadiusKm
}

// DegreesForKm converts a distance along a great circle into degrees of arc.
func DegreesForKm(km float64) float64 {
	return (km / EarthRadiusKm) * (180 / math.Pi)
}
