package cluster

import "math"

// MaxMarkerSize caps the size returned by MarkerSize.
const MaxMarkerSize = 40

// MarkerSize scales a marker with the weight it represents.
func MarkerSize(weight, baseSize int, multiplier float64) int {
	size := baseSize + int(math.Round(multiplier*float64(weight)))
	if size > MaxMarkerSize {
		return MaxMarkerSize
	}
	return size
}
