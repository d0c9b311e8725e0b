package quadtree

import "fmt"

// BoundingBox is an axis-aligned rectangle in point space.
// X0/X1 bound the first axis (latitude), Y0/Y1 the second (longitude).
type BoundingBox struct {
	X0, X1 float64
	Y0, Y1 float64
}

// Valid reports whether the box is well formed: X0 <= X1 and Y0 <= Y1.
func (b BoundingBox) Valid() bool {
	return b.X0 <= b.X1 && b.Y0 <= b.Y1
}

// Contains reports whether (x, y) lies inside the box. Both bounds are inclusive.
func (b BoundingBox) Contains(x, y float64) bool {
	return b.X0 <= x && x <= b.X1 &&
		b.Y0 <= y && y <= b.Y1
}

// Intersects reports whether the two boxes share any area or boundary.
func (b BoundingBox) Intersects(other BoundingBox) bool {
	return b.X1 >= other.X0 && b.X0 <= other.X1 &&
		b.Y1 >= other.Y0 && b.Y0 <= other.Y1
}

// Midpoint returns the splitting point used on subdivision.
func (b BoundingBox) Midpoint() (x, y float64) {
	return (b.X0 + b.X1) / 2, (b.Y0 + b.Y1) / 2
}

// Quadrants splits the box at its midpoint into NW, NE, SW and SE boxes.
// Neighbouring quadrants share the midline.
//
//	   North
//	West + East
//	   South
func (b BoundingBox) Quadrants() [4]BoundingBox {
	xMid, yMid := b.Midpoint()
	return [4]BoundingBox{
		NorthWest: {X0: b.X0, X1: xMid, Y0: b.Y0, Y1: yMid},
		NorthEast: {X0: xMid, X1: b.X1, Y0: b.Y0, Y1: yMid},
		SouthWest: {X0: b.X0, X1: xMid, Y0: yMid, Y1: b.Y1},
		SouthEast: {X0: xMid, X1: b.X1, Y0: yMid, Y1: b.Y1},
	}
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("[%g..%g]x[%g..%g]", b.X0, b.X1, b.Y0, b.Y1)
}
