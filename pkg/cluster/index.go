package cluster

import (
	"errors"
	"fmt"

	"github.com/1F47E/geo-cluster/pkg/quadtree"
	"github.com/1F47E/geo-cluster/pkg/rtree"
)

// Backend names a spatial index implementation.
type Backend string

const (
	BackendQuadtree Backend = "quadtree"
	BackendRTree    Backend = "rtree"
)

// ErrUnknownBackend is returned for a backend name that is not registered.
var ErrUnknownBackend = errors.New("unknown index backend")

// Index is a read-only point index answering inclusive range queries.
type Index[T any] interface {
	Gather(query quadtree.BoundingBox, visit func(quadtree.Point[T]))
	Len() int
	Dropped() int
}

// ParseBackend validates a backend name. An empty name selects the quadtree.
func ParseBackend(name string) (Backend, error) {
	switch Backend(name) {
	case "", BackendQuadtree:
		return BackendQuadtree, nil
	case BackendRTree:
		return BackendRTree, nil
	default:
		return "", fmt.Errorf("backend %q: %w", name, ErrUnknownBackend)
	}
}

func buildIndex[T any](backend Backend, points []quadtree.Point[T], world quadtree.BoundingBox, capacity int) (Index[T], error) {
	switch backend {
	case BackendQuadtree:
		tree, err := quadtree.Build(points, world, capacity)
		if err != nil {
			return nil, err
		}
		return tree, nil
	case BackendRTree:
		index, err := rtree.Build(points, world)
		if err != nil {
			return nil, err
		}
		return index, nil
	default:
		return nil, fmt.Errorf("backend %q: %w", backend, ErrUnknownBackend)
	}
}
