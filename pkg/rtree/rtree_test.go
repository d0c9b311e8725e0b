package rtree

import (
	"math/rand"
	"testing"

	"github.com/1F47E/geo-cluster/pkg/quadtree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var world = quadtree.BoundingBox{X0: -90, X1: 90, Y0: -180, Y1: 180}

func TestBuild(t *testing.T) {
	points := []quadtree.Point[string]{
		quadtree.NewPoint(37.7749, -122.4194, "SF", "San Francisco"),
		quadtree.NewPoint(34.0522, -118.2437, "LA", "Los Angeles"),
		quadtree.NewPoint(40.7128, -74.0060, "NYC", "New York"),
		quadtree.NewPoint(95, 0, "bad", "outside"),
	}

	index, err := Build(points, world)
	require.NoError(t, err)
	assert.Equal(t, 3, index.Len())
	assert.Equal(t, 1, index.Dropped())
	assert.Equal(t, world, index.Bounds())
}

func TestBuildInvalidBounds(t *testing.T) {
	_, err := Build[int](nil, quadtree.BoundingBox{X0: 1, X1: 0})
	assert.ErrorIs(t, err, quadtree.ErrInvalidBounds)
}

func TestGather(t *testing.T) {
	points := []quadtree.Point[string]{
		quadtree.NewPoint(37.7749, -122.4194, "SF", ""),
		quadtree.NewPoint(34.0522, -118.2437, "LA", ""),
		quadtree.NewPoint(32.7157, -117.1611, "SD", ""),
		quadtree.NewPoint(40.7128, -74.0060, "NYC", ""),
		quadtree.NewPoint(41.8781, -87.6298, "CHI", ""),
	}
	index, err := Build(points, world)
	require.NoError(t, err)

	var ids []string
	index.Gather(quadtree.BoundingBox{X0: 32, X1: 42, Y0: -125, Y1: -114}, func(p quadtree.Point[string]) {
		ids = append(ids, p.ID)
	})
	assert.ElementsMatch(t, []string{"SF", "LA", "SD"}, ids)
}

func TestGatherEdgesInclusive(t *testing.T) {
	index, err := Build([]quadtree.Point[int]{
		quadtree.NewPoint(10, 10, "corner", 0),
		quadtree.NewPoint(10.005, 10, "near", 0),
	}, world)
	require.NoError(t, err)

	var ids []string
	index.Gather(quadtree.BoundingBox{X0: 10, X1: 10, Y0: 10, Y1: 10}, func(p quadtree.Point[int]) {
		ids = append(ids, p.ID)
	})
	assert.Equal(t, []string{"corner"}, ids)
}

func TestGatherMatchesQuadtree(t *testing.T) {
	r := rand.New(rand.NewSource(5))
	points := make([]quadtree.Point[int], 2000)
	for i := range points {
		points[i] = quadtree.NewPoint(r.Float64()*180-90, r.Float64()*360-180, "", i)
	}

	index, err := Build(points, world)
	require.NoError(t, err)
	tree, err := quadtree.Build(points, world, 16)
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		x0, y0 := r.Float64()*180-90, r.Float64()*360-180
		box := quadtree.BoundingBox{X0: x0, X1: x0 + r.Float64()*30, Y0: y0, Y1: y0 + r.Float64()*60}

		var fromIndex, fromTree []string
		index.Gather(box, func(p quadtree.Point[int]) { fromIndex = append(fromIndex, p.ID) })
		tree.Gather(box, func(p quadtree.Point[int]) { fromTree = append(fromTree, p.ID) })
		assert.ElementsMatch(t, fromTree, fromIndex)
	}
}

func TestGatherEmpty(t *testing.T) {
	index, err := Build[int](nil, world)
	require.NoError(t, err)

	called := false
	index.Gather(world, func(quadtree.Point[int]) { called = true })
	assert.False(t, called)
	assert.Zero(t, index.Len())
}

func BenchmarkGather(b *testing.B) {
	r := rand.New(rand.NewSource(1))
	points := make([]quadtree.Point[int], 100000)
	for i := range points {
		points[i] = quadtree.NewPoint(r.Float64()*180-90, r.Float64()*360-180, "", i)
	}
	index, err := Build(points, world)
	require.NoError(b, err)
	box := quadtree.BoundingBox{X0: 30, X1: 45, Y0: -125, Y1: -110}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		index.Gather(box, func(quadtree.Point[int]) {})
	}
}
