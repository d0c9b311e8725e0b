package cluster

import "math"

// CellSizeFor returns the grid cell size in pixels for a discrete zoom level.
func CellSizeFor(level int) float64 {
	switch level {
	case 13, 14, 15:
		return 64
	case 16, 17, 18:
		return 32
	case 19:
		return 16
	default:
		return 88
	}
}

// ZoomLevel converts a zoom scale (screen pixels per map point) into a discrete
// zoom level, rounding half up and never going below zero.
func ZoomLevel(zoomScale, worldSize, tileSize float64) int {
	maxZoom := math.Log2(worldSize / tileSize)
	level := math.Floor(maxZoom + math.Log2(zoomScale) + 0.5)
	if math.IsNaN(level) || level < 0 {
		return 0
	}
	return int(level)
}

// ZoomScaleForLevel is the inverse of ZoomLevel for whole levels.
func ZoomScaleForLevel(level int, worldSize, tileSize float64) float64 {
	return math.Exp2(float64(level)) * tileSize / worldSize
}
