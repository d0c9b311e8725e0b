package dataset

import (
	"github.com/1F47E/geo-cluster/pkg/models"
	"github.com/1F47E/geo-cluster/pkg/quadtree"
)

// ToQuadtree converts records into index points carrying their properties.
// Records without a location are skipped.
func ToQuadtree(points []*models.Point) []quadtree.Point[models.Properties] {
	out := make([]quadtree.Point[models.Properties], 0, len(points))
	for _, p := range points {
		if p == nil || p.Location == nil {
			continue
		}
		out = append(out, quadtree.NewPoint(p.Location.Lat, p.Location.Lon, p.ID, p.Properties))
	}
	return out
}

// FromQuadtree converts index points back into records.
func FromQuadtree(points []quadtree.Point[models.Properties]) []*models.Point {
	out := make([]*models.Point, len(points))
	for i, p := range points {
		out[i] = &models.Point{
			ID:         p.ID,
			Location:   &models.Location{Lat: p.X, Lon: p.Y},
			Properties: p.Payload,
		}
	}
	return out
}
