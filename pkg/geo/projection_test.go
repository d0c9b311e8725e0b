package geo

import (
	"testing"

	"github.com/1F47E/geo-cluster/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestWebMercatorCorners(t *testing.T) {
	proj := WebMercator{WorldSize: WorldSize}

	center := proj.ToMapPoint(models.Location{Lat: 0, Lon: 0})
	assert.InDelta(t, WorldSize/2, center.X, 1e-3)
	assert.InDelta(t, WorldSize/2, center.Y, 1e-3)

	topLeft := proj.ToMapPoint(models.Location{Lat: MaxLatitude, Lon: -180})
	assert.InDelta(t, 0, topLeft.X, 1e-3)
	assert.InDelta(t, 0, topLeft.Y, 1)

	bottomRight := proj.ToMapPoint(models.Location{Lat: -MaxLatitude, Lon: 180})
	assert.InDelta(t, WorldSize, bottomRight.X, 1e-3)
	assert.InDelta(t, WorldSize, bottomRight.Y, 1)
}

func TestWebMercatorClampsLatitude(t *testing.T) {
	proj := WebMercator{WorldSize: WorldSize}
	pole := proj.ToMapPoint(models.Location{Lat: 90, Lon: 0})
	edge := proj.ToMapPoint(models.Location{Lat: MaxLatitude, Lon: 0})
	assert.Equal(t, edge, pole)
}

func TestWebMercatorRoundTrip(t *testing.T) {
	proj := DefaultProjection
	locations := []models.Location{
		{Lat: 37.7749, Lon: -122.4194},
		{Lat: -33.8688, Lon: 151.2093},
		{Lat: 55.7558, Lon: 37.6173},
		{Lat: 0, Lon: 0},
		{Lat: 80, Lon: 179.5},
	}
	for _, loc := range locations {
		got := proj.ToGeographic(proj.ToMapPoint(loc))
		assert.InDelta(t, loc.Lat, got.Lat, 1e-9)
		assert.InDelta(t, loc.Lon, got.Lon, 1e-9)
	}
}

func TestWebMercatorZeroSizeUsesDefault(t *testing.T) {
	assert.Equal(t,
		WebMercator{WorldSize: WorldSize}.ToMapPoint(models.Location{Lat: 10, Lon: 20}),
		WebMercator{}.ToMapPoint(models.Location{Lat: 10, Lon: 20}),
	)
}

func TestRectBoundsRoundTrip(t *testing.T) {
	box := models.BoundingBox{
		BottomLeft: models.Location{Lat: 32, Lon: -125},
		TopRight:   models.Location{Lat: 42, Lon: -114},
	}
	rect := RectFromBounds(DefaultProjection, box)
	assert.Greater(t, rect.Width, 0.0)
	assert.Greater(t, rect.Height, 0.0)
	assert.Less(t, rect.MinY(), rect.MaxY())

	got := BoundsFromRect(DefaultProjection, rect)
	assert.InDelta(t, box.BottomLeft.Lat, got.BottomLeft.Lat, 1e-9)
	assert.InDelta(t, box.BottomLeft.Lon, got.BottomLeft.Lon, 1e-9)
	assert.InDelta(t, box.TopRight.Lat, got.TopRight.Lat, 1e-9)
	assert.InDelta(t, box.TopRight.Lon, got.TopRight.Lon, 1e-9)
}

func TestMapRect(t *testing.T) {
	r := NewMapRect(10, 20, 5, 8)
	assert.Equal(t, 10.0, r.MinX())
	assert.Equal(t, 20.0, r.MinY())
	assert.Equal(t, 15.0, r.MaxX())
	assert.Equal(t, 28.0, r.MaxY())
	assert.Equal(t, MapPoint{X: 15, Y: 28}, r.Max())
}
