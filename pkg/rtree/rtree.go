// Package rtree provides an R-Tree backed point index with the same range query
// contract as the quadtree, used as an alternate backend by the clustering engine.
package rtree

import (
	"fmt"
	"math"

	"github.com/1F47E/geo-cluster/pkg/quadtree"
	"github.com/dhconnelly/rtreego"
)

const (
	tolerance   = 0.01
	minChildren = 25
	maxChildren = 50
	dimensions  = 2
)

// spatialPoint wraps a point to implement rtreego.Spatial interface
type spatialPoint[T any] struct {
	quadtree.Point[T]
	rect *rtreego.Rect
}

func (sp *spatialPoint[T]) Bounds() *rtreego.Rect {
	return sp.rect
}

// GeoIndex is an R-Tree over points restricted to a world box.
// It is read-only after Build returns.
type GeoIndex[T any] struct {
	tree    *rtreego.Rtree
	world   quadtree.BoundingBox
	count   int
	dropped int
}

// Build indexes the points that fall inside world. Points outside are dropped,
// matching the quadtree's insert contract.
func Build[T any](points []quadtree.Point[T], world quadtree.BoundingBox) (*GeoIndex[T], error) {
	if !world.Valid() {
		return nil, fmt.Errorf("invalid world bounds %s: %w", world, quadtree.ErrInvalidBounds)
	}

	g := &GeoIndex[T]{world: world}
	items := make([]rtreego.Spatial, 0, len(points))
	for _, p := range points {
		if !p.In(world) {
			g.dropped++
			continue
		}
		rect := rtreego.Point{p.X, p.Y}.ToRect(tolerance)
		items = append(items, &spatialPoint[T]{p, rect})
	}
	// bulk loading packs the tree in one pass
	g.tree = rtreego.NewTree(dimensions, minChildren, maxChildren, items...)
	g.count = len(items)
	return g, nil
}

// Gather calls visit for every indexed point inside query, edges included.
// Visiting order is unspecified.
func (g *GeoIndex[T]) Gather(query quadtree.BoundingBox, visit func(quadtree.Point[T])) {
	if g.count == 0 || !query.Valid() {
		return
	}

	// rtreego rejects zero-length sides, and stored rects are padded by the
	// tolerance anyway, so the search box is padded too and results are filtered.
	bounds, err := rtreego.NewRect(
		rtreego.Point{query.X0 - tolerance, query.Y0 - tolerance},
		[]float64{
			math.Max(query.X1-query.X0, 0) + 2*tolerance,
			math.Max(query.Y1-query.Y0, 0) + 2*tolerance,
		},
	)
	if err != nil {
		return
	}

	for _, result := range g.tree.SearchIntersect(bounds) {
		item, ok := result.(*spatialPoint[T])
		if !ok {
			continue
		}
		if query.Contains(item.X, item.Y) {
			visit(item.Point)
		}
	}
}

// Len returns the number of indexed points.
func (g *GeoIndex[T]) Len() int { return g.count }

// Dropped returns the number of points rejected for lying outside the world box.
func (g *GeoIndex[T]) Dropped() int { return g.dropped }

// Bounds returns the world box.
func (g *GeoIndex[T]) Bounds() quadtree.BoundingBox { return g.world }
