package quadtree

import "github.com/google/uuid"

// Point is an indexed location with an identifier and an opaque payload.
// X holds the latitude and Y the longitude.
type Point[T any] struct {
	X       float64
	Y       float64
	ID      string
	Payload T
}

// NewPoint creates a point. An empty id is replaced with a random UUID.
func NewPoint[T any](x, y float64, id string, payload T) Point[T] {
	if id == "" {
		id = uuid.NewString()
	}
	return Point[T]{X: x, Y: y, ID: id, Payload: payload}
}

// In reports whether the point lies inside box.
func (p Point[T]) In(box BoundingBox) bool {
	return box.Contains(p.X, p.Y)
}
