package quadtree

import (
	"context"
	"math/rand"
	"sort"
	"testing"

	"github.com/1F47E/geo-cluster/pkg/geo"
	"github.com/1F47E/geo-cluster/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var geoWorld = BoundingBox{X0: -90, X1: 90, Y0: -180, Y1: 180}

func californiaTree(t *testing.T) *Tree[string] {
	t.Helper()
	points := []Point[string]{
		NewPoint(37.7749, -122.4194, "SF", "San Francisco"),
		NewPoint(37.8044, -122.2712, "Oakland", "Oakland"),
		NewPoint(37.3382, -121.8863, "San Jose", "San Jose"),
		NewPoint(38.5816, -121.4944, "Sacramento", "Sacramento"),
		NewPoint(34.0522, -118.2437, "LA", "Los Angeles"),
	}
	tree, err := Build(points, geoWorld, 2)
	require.NoError(t, err)
	return tree
}

func TestGatherRadius(t *testing.T) {
	tree := californiaTree(t)
	center := models.Location{Lat: 37.7749, Lon: -122.4194}

	testCases := []struct {
		name     string
		radius   float64
		expected []string
	}{
		{"10km radius", 10, []string{"SF"}},
		{"20km radius", 20, []string{"SF", "Oakland"}},
		{"80km radius", 80, []string{"SF", "Oakland", "San Jose"}},
		{"150km radius", 150, []string{"SF", "Oakland", "San Jose", "Sacramento"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var ids []string
			tree.GatherRadius(center, tc.radius, func(p Point[string], d float64) {
				assert.LessOrEqual(t, d, tc.radius)
				ids = append(ids, p.ID)
			})
			assert.ElementsMatch(t, tc.expected, ids)
		})
	}
}

func TestGatherRadiusAtHighLatitude(t *testing.T) {
	// one degree of longitude is about 19km at 80 degrees north
	tree, err := Build([]Point[string]{
		NewPoint(80, 10, "origin", ""),
		NewPoint(80, 12.5, "east", ""),
	}, geoWorld, 4)
	require.NoError(t, err)

	var ids []string
	tree.GatherRadius(models.Location{Lat: 80, Lon: 10}, 60, func(p Point[string], _ float64) {
		ids = append(ids, p.ID)
	})
	assert.ElementsMatch(t, []string{"origin", "east"}, ids)
}

func TestGatherRadiusAcrossAntimeridian(t *testing.T) {
	tree, err := Build([]Point[string]{
		NewPoint(0, -179.9, "west", ""),
		NewPoint(0, 179.9, "east", ""),
		NewPoint(0, 170, "far", ""),
		NewPoint(0, -180, "edge", ""),
	}, geoWorld, 1)
	require.NoError(t, err)

	for _, lon := range []float64{-179.9, 179.9} {
		var ids []string
		tree.GatherRadius(models.Location{Lat: 0, Lon: lon}, 50, func(p Point[string], _ float64) {
			ids = append(ids, p.ID)
		})
		assert.ElementsMatch(t, []string{"west", "east", "edge"}, ids, "lon %v", lon)
	}
}

func TestGatherRadiusOverPole(t *testing.T) {
	tree, err := Build([]Point[string]{
		NewPoint(89, 0, "near", ""),
		NewPoint(89, 180, "across", ""),
		NewPoint(80, 180, "far", ""),
	}, geoWorld, 4)
	require.NoError(t, err)

	// the two 89N points are about 222km apart over the pole
	var ids []string
	tree.GatherRadius(models.Location{Lat: 89, Lon: 0}, 300, func(p Point[string], _ float64) {
		ids = append(ids, p.ID)
	})
	assert.ElementsMatch(t, []string{"near", "across"}, ids)
}

func TestGatherRadiusMatchesBruteForce(t *testing.T) {
	r := rand.New(rand.NewSource(5))
	points := make([]Point[int], 2000)
	for i := range points {
		points[i] = NewPoint(r.Float64()*180-90, r.Float64()*360-180, "", i)
	}
	tree, err := Build(points, geoWorld, 8)
	require.NoError(t, err)

	for i := 0; i < 30; i++ {
		center := models.Location{Lat: r.Float64()*180 - 90, Lon: r.Float64()*360 - 180}
		radius := r.Float64() * 3000

		var got []int
		tree.GatherRadius(center, radius, func(p Point[int], _ float64) {
			got = append(got, p.Payload)
		})
		var want []int
		for _, p := range points {
			if geo.Distance(center, models.Location{Lat: p.X, Lon: p.Y}) <= radius {
				want = append(want, p.Payload)
			}
		}
		assert.ElementsMatch(t, want, got)
	}
}

func TestNearest(t *testing.T) {
	tree := californiaTree(t)

	results := tree.Nearest(context.Background(), models.Location{Lat: 37.78, Lon: -122.41}, 3)
	require.Len(t, results, 3)
	assert.Equal(t, "SF", results[0].Point.ID)
	assert.Equal(t, "Oakland", results[1].Point.ID)
	assert.Equal(t, "San Jose", results[2].Point.ID)
	assert.True(t, sort.SliceIsSorted(results, func(i, j int) bool {
		return results[i].DistanceKM < results[j].DistanceKM
	}))
}

func TestNearestMatchesBruteForce(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	points := make([]Point[int], 3000)
	for i := range points {
		points[i] = NewPoint(r.Float64()*160-80, r.Float64()*360-180, "", i)
	}
	tree, err := Build(points, geoWorld, 8)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		center := models.Location{Lat: r.Float64()*160 - 80, Lon: r.Float64()*360 - 180}
		got := tree.Nearest(context.Background(), center, 5)
		require.Len(t, got, 5)

		distances := make([]float64, len(points))
		for j, p := range points {
			distances[j] = geo.Distance(center, models.Location{Lat: p.X, Lon: p.Y})
		}
		sort.Float64s(distances)
		for j := range got {
			assert.InDelta(t, distances[j], got[j].DistanceKM, 1e-6)
		}
	}
}

func TestNearestEdgeCases(t *testing.T) {
	tree := californiaTree(t)

	assert.Nil(t, tree.Nearest(context.Background(), models.Location{}, 0))
	assert.Len(t, tree.Nearest(context.Background(), models.Location{}, 50), 5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Empty(t, tree.Nearest(ctx, models.Location{}, 3))
}
