// Package cluster groups indexed points into map markers over a screen-space grid.
//
// Every query divides the visible viewport into square cells whose size in
// pixels depends on the zoom level, range-queries the index once per cell and
// emits one annotation per non-empty cell: the point itself when the cell holds
// exactly one, otherwise a cluster at the centroid of the cell's points.
package cluster

import (
	"errors"
	"fmt"
	"log"
	"math"
	"sync/atomic"
	"time"

	"github.com/1F47E/geo-cluster/pkg/geo"
	"github.com/1F47E/geo-cluster/pkg/i18n"
	"github.com/1F47E/geo-cluster/pkg/models"
	"github.com/1F47E/geo-cluster/pkg/quadtree"
)

// DefaultCapacity is the bucket capacity used when Options.Capacity is zero.
const DefaultCapacity = 4

// DefaultWorldBounds covers every valid latitude (X) and longitude (Y).
var DefaultWorldBounds = quadtree.BoundingBox{X0: -90, X1: 90, Y0: -180, Y1: 180}

// ErrInvalidMapSize is returned for a non-positive world or tile size.
var ErrInvalidMapSize = errors.New("world size and tile size must be positive")

// Options configures an Engine. Zero fields take their defaults.
type Options struct {
	WorldBounds quadtree.BoundingBox
	Capacity    int
	WorldSize   float64
	TileSize    float64
	Projection  geo.Projection
	Localizer   Localizer
	Backend     Backend
	// Logger receives build statistics when set.
	Logger *log.Logger
}

func (o Options) withDefaults() (Options, error) {
	if o.WorldBounds == (quadtree.BoundingBox{}) {
		o.WorldBounds = DefaultWorldBounds
	}
	if !o.WorldBounds.Valid() {
		return o, fmt.Errorf("invalid world bounds %s: %w", o.WorldBounds, quadtree.ErrInvalidBounds)
	}
	if o.Capacity == 0 {
		o.Capacity = DefaultCapacity
	}
	if o.Capacity < 1 {
		return o, fmt.Errorf("invalid capacity %d: %w", o.Capacity, quadtree.ErrInvalidCapacity)
	}
	if o.WorldSize == 0 {
		o.WorldSize = geo.WorldSize
	}
	if o.TileSize == 0 {
		o.TileSize = geo.TileSize
	}
	if !(o.WorldSize > 0) || !(o.TileSize > 0) {
		return o, fmt.Errorf("world size %v, tile size %v: %w", o.WorldSize, o.TileSize, ErrInvalidMapSize)
	}
	if o.Projection == nil {
		o.Projection = geo.WebMercator{WorldSize: o.WorldSize}
	}
	if o.Localizer == nil {
		o.Localizer = i18n.Default()
	}
	backend, err := ParseBackend(string(o.Backend))
	if err != nil {
		return o, err
	}
	o.Backend = backend
	return o, nil
}

type builtIndex[T any] struct {
	Index[T]
}

// Engine answers clustering queries over the most recently built index.
// Queries may run concurrently with each other and with BuildTree.
type Engine[T any] struct {
	opts  Options
	index atomic.Pointer[builtIndex[T]]
}

// NewEngine validates opts and returns an engine with no index.
func NewEngine[T any](opts Options) (*Engine[T], error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	return &Engine[T]{opts: opts}, nil
}

// Options returns the effective options.
func (e *Engine[T]) Options() Options { return e.opts }

// BuildTree replaces the index with one built from points. Points outside the
// world bounds are dropped. Queries see either the old or the new index.
func (e *Engine[T]) BuildTree(points []quadtree.Point[T]) error {
	start := time.Now()
	index, err := buildIndex(e.opts.Backend, points, e.opts.WorldBounds, e.opts.Capacity)
	if err != nil {
		return fmt.Errorf("failed to build %s index: %w", e.opts.Backend, err)
	}
	e.index.Store(&builtIndex[T]{index})

	if e.opts.Logger != nil {
		e.opts.Logger.Printf("Built %s index: %d points, %d dropped in %v",
			e.opts.Backend, index.Len(), index.Dropped(), time.Since(start))
	}
	return nil
}

// Ready reports whether BuildTree has completed at least once.
func (e *Engine[T]) Ready() bool { return e.index.Load() != nil }

// Len returns the number of indexed points, or 0 before the first build.
func (e *Engine[T]) Len() int {
	ix := e.index.Load()
	if ix == nil {
		return 0
	}
	return ix.Len()
}

// Dropped returns the number of points the last build rejected.
func (e *Engine[T]) Dropped() int {
	ix := e.index.Load()
	if ix == nil {
		return 0
	}
	return ix.Dropped()
}

// Gather runs a plain range query against the current index.
// It returns false before the first build.
func (e *Engine[T]) Gather(query quadtree.BoundingBox, visit func(quadtree.Point[T])) bool {
	ix := e.index.Load()
	if ix == nil {
		return false
	}
	ix.Gather(query, visit)
	return true
}

// Grid describes the cells a query covers.
type Grid struct {
	Level       int
	CellSize    float64
	ScaleFactor float64
	MinX, MaxX  int
	MinY, MaxY  int
}

// maxGridCoord bounds the cell coordinates GridFor will produce.
const maxGridCoord = math.MaxInt32

// Cells returns the number of cells in the grid, saturating at math.MaxInt.
func (g Grid) Cells() int {
	w := g.MaxX - g.MinX + 1
	h := g.MaxY - g.MinY + 1
	if w <= 0 || h <= 0 {
		return 0
	}
	if w > math.MaxInt/h {
		return math.MaxInt
	}
	return w * h
}

// GridFor computes the cell grid for viewport at zoomScale. It returns false
// when zoomScale cannot form a grid or a cell coordinate would fall outside
// [-maxGridCoord, maxGridCoord].
func (e *Engine[T]) GridFor(viewport geo.MapRect, zoomScale float64) (Grid, bool) {
	if !(zoomScale > 0) || math.IsInf(zoomScale, 0) {
		return Grid{}, false
	}
	level := ZoomLevel(zoomScale, e.opts.WorldSize, e.opts.TileSize)
	cellSize := CellSizeFor(level)
	sf := zoomScale / cellSize

	var edges [4]int
	for i, v := range [4]float64{viewport.MinX(), viewport.MaxX(), viewport.MinY(), viewport.MaxY()} {
		c := math.Floor(v * sf)
		// NaN fails both comparisons
		if !(c >= -maxGridCoord && c <= maxGridCoord) {
			return Grid{}, false
		}
		edges[i] = int(c)
	}
	return Grid{
		Level:       level,
		CellSize:    cellSize,
		ScaleFactor: sf,
		MinX:        edges[0],
		MaxX:        edges[1],
		MinY:        edges[2],
		MaxY:        edges[3],
	}, true
}

// CellBounds returns the index query box of cell (x, y).
// X spans latitudes and Y longitudes.
func (e *Engine[T]) CellBounds(g Grid, x, y int) quadtree.BoundingBox {
	sf := g.ScaleFactor
	rect := geo.NewMapRect(float64(x)/sf, float64(y)/sf, 1/sf, 1/sf)
	return toQueryBox(geo.BoundsFromRect(e.opts.Projection, rect))
}

func toQueryBox(b models.BoundingBox) quadtree.BoundingBox {
	return quadtree.BoundingBox{
		X0: b.BottomLeft.Lat,
		X1: b.TopRight.Lat,
		Y0: b.BottomLeft.Lon,
		Y1: b.TopRight.Lon,
	}
}

// ClusteredAnnotations returns the markers for viewport at zoomScale. The
// result is nil only when no index has been built; otherwise it is a non-nil,
// possibly empty slice in cell order, x-major.
//
// The number of cells grows with the viewport area and the zoom scale, so
// callers should bound the viewport to what is actually on screen.
func (e *Engine[T]) ClusteredAnnotations(viewport geo.MapRect, zoomScale float64) []Annotation[T] {
	ix := e.index.Load()
	if ix == nil {
		return nil
	}
	annotations := make([]Annotation[T], 0)

	grid, ok := e.GridFor(viewport, zoomScale)
	if !ok {
		return annotations
	}

	for x := grid.MinX; x <= grid.MaxX; x++ {
		for y := grid.MinY; y <= grid.MaxY; y++ {
			var (
				totalX, totalY float64
				count          int
				first          quadtree.Point[T]
			)
			ix.Gather(e.CellBounds(grid, x, y), func(p quadtree.Point[T]) {
				if count == 0 {
					first = p
				}
				totalX += p.X
				totalY += p.Y
				count++
			})

			switch {
			case count == 1:
				annotations = append(annotations,
					newSinglePoint(models.Location{Lat: first.X, Lon: first.Y}, first.ID, first.Payload))
			case count > 1:
				centroid := models.Location{Lat: totalX / float64(count), Lon: totalY / float64(count)}
				annotations = append(annotations, newCluster[T](centroid, count, e.opts.Localizer))
			}
		}
	}
	return annotations
}
