package quadtree

import (
	"context"
	"math"

	"github.com/1F47E/geo-cluster/pkg/geo"
	"github.com/1F47E/geo-cluster/pkg/models"
	"github.com/golang/geo/s2"
	"github.com/oleiade/lane/v2"
)

// Neighbor is a point returned by a proximity search with its distance from the query.
type Neighbor[T any] struct {
	Point      Point[T]
	DistanceKM float64
}

// Nearest returns up to k points closest to loc, ordered by great-circle distance.
// The search stops early when ctx is cancelled and returns what it has found.
// Nearest treats X as latitude and Y as longitude.
func (t *Tree[T]) Nearest(ctx context.Context, loc models.Location, k int) []Neighbor[T] {
	if k <= 0 {
		return nil
	}
	target := s2.LatLngFromDegrees(loc.Lat, loc.Lon)

	queue := lane.NewMinPriorityQueue[interface{}, float64]()
	queue.Push(t.root, boxDistanceKM(target, t.root.bounds))

	result := make([]Neighbor[T], 0, k)
	for len(result) < k {
		if ctx.Err() != nil {
			return result
		}
		item, dist, ok := queue.Pop()
		if !ok {
			break
		}
		switch node := item.(type) {
		case *Node[T]:
			for _, p := range node.points {
				queue.Push(p, pointDistanceKM(target, p))
			}
			if node.children != nil {
				for _, child := range node.children {
					queue.Push(child, boxDistanceKM(target, child.bounds))
				}
			}
		case Point[T]:
			result = append(result, Neighbor[T]{Point: node, DistanceKM: dist})
		}
	}
	return result
}

// GatherRadius calls visit for every point within radiusKm of center, together
// with its distance. Candidates come from the bounding box of the spherical cap,
// split in two where it crosses the antimeridian.
func (t *Tree[T]) GatherRadius(center models.Location, radiusKm float64, visit func(Point[T], float64)) {
	if radiusKm < 0 {
		return
	}
	latDeg := geo.DegreesForKm(radiusKm)
	lonDeg := 180.0
	// a circle over a pole covers every longitude
	if math.Abs(center.Lat)+latDeg < 90 {
		sinR := math.Sin(latDeg * math.Pi / 180)
		lonDeg = math.Asin(sinR/math.Cos(center.Lat*math.Pi/180)) * 180 / math.Pi
	}

	x0, x1 := center.Lat-latDeg, center.Lat+latDeg
	y0, y1 := center.Lon-lonDeg, center.Lon+lonDeg
	main := BoundingBox{X0: x0, X1: x1, Y0: math.Max(y0, -180), Y1: math.Min(y1, 180)}

	check := func(p Point[T]) {
		d := geo.Distance(center, models.Location{Lat: p.X, Lon: p.Y})
		if d <= radiusKm {
			visit(p, d)
		}
	}
	t.Gather(main, check)

	wrapped := func(box BoundingBox) {
		t.Gather(box, func(p Point[T]) {
			if !main.Contains(p.X, p.Y) {
				check(p)
			}
		})
	}
	if y0 < -180 {
		wrapped(BoundingBox{X0: x0, X1: x1, Y0: math.Max(y0+360, -180), Y1: 180})
	}
	if y1 > 180 {
		wrapped(BoundingBox{X0: x0, X1: x1, Y0: -180, Y1: math.Min(y1-360, 180)})
	}
}

func pointDistanceKM[T any](target s2.LatLng, p Point[T]) float64 {
	return float64(target.Distance(s2.LatLngFromDegrees(p.X, p.Y))) * geo.EarthRadiusKm
}

// boxDistanceKM is a lower bound on the distance from target to any point in box.
func boxDistanceKM(target s2.LatLng, box BoundingBox) float64 {
	lo := s2.LatLngFromDegrees(clamp(box.X0, -90, 90), clamp(box.Y0, -180, 180))
	hi := s2.LatLngFromDegrees(clamp(box.X1, -90, 90), clamp(box.Y1, -180, 180))
	rect := s2.RectFromLatLng(lo).AddPoint(hi)
	return float64(rect.DistanceToLatLng(target)) * geo.EarthRadiusKm
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
