package cluster

import (
	"math"
	"testing"

	"github.com/1F47E/geo-cluster/pkg/geo"
	"github.com/stretchr/testify/assert"
)

func TestCellSizeFor(t *testing.T) {
	testCases := []struct {
		level    int
		expected float64
	}{
		{-3, 88}, {0, 88}, {12, 88},
		{13, 64}, {14, 64}, {15, 64},
		{16, 32}, {17, 32}, {18, 32},
		{19, 16},
		{20, 88}, {25, 88},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expected, CellSizeFor(tc.level), "level %d", tc.level)
	}
}

func TestZoomLevel(t *testing.T) {
	for level := 0; level <= 20; level++ {
		scale := ZoomScaleForLevel(level, geo.WorldSize, geo.TileSize)
		assert.Equal(t, level, ZoomLevel(scale, geo.WorldSize, geo.TileSize))
	}

	testCases := []struct {
		name     string
		exponent float64
		expected int
	}{
		{"rounds down", 13.4, 13},
		{"rounds up", 13.6, 14},
		{"clamped at zero", -5, 0},
		{"beyond max zoom", 22.2, 22},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			scale := math.Exp2(tc.exponent - 20)
			assert.Equal(t, tc.expected, ZoomLevel(scale, geo.WorldSize, geo.TileSize))
		})
	}
}

func TestZoomLevelInvalidScale(t *testing.T) {
	assert.Equal(t, 0, ZoomLevel(0, geo.WorldSize, geo.TileSize))
	assert.Equal(t, 0, ZoomLevel(-1, geo.WorldSize, geo.TileSize))
	assert.Equal(t, 0, ZoomLevel(math.NaN(), geo.WorldSize, geo.TileSize))
}

func TestMarkerSize(t *testing.T) {
	assert.Equal(t, 12, MarkerSize(1, 10, 2))
	assert.Equal(t, 12, MarkerSize(3, 10, 0.5))
	assert.Equal(t, 40, MarkerSize(100, 10, 2))
	assert.Equal(t, 40, MarkerSize(15, 10, 2))
	assert.Equal(t, 0, MarkerSize(0, 0, 0))
}
