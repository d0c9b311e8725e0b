// Package quadtree implements a bucketed point quadtree for repeated range queries.
//
// Every node stores a bucket of points and a bounding box. Any point inside the
// node's box goes into its bucket until the bucket is full; the node then splits
// itself into four quadrants and later points go into the first child whose box
// contains them. Points already in the bucket of a split node stay there, so
// range queries scan the buckets of internal nodes as well as leaves.
package quadtree

import (
	"errors"
	"fmt"
)

// Quadrant indexes into a node's children, in insertion and traversal order.
const (
	NorthWest = iota
	NorthEast
	SouthWest
	SouthEast
)

var (
	// ErrInvalidCapacity is returned when a bucket capacity below 1 is requested.
	ErrInvalidCapacity = errors.New("bucket capacity must be at least 1")
	// ErrInvalidBounds is returned for a world box with inverted edges.
	ErrInvalidBounds = errors.New("bounding box must satisfy x0 <= x1 and y0 <= y1")
)

// Node is a quadtree node. A node is a leaf until its first subdivision and
// internal afterwards.
type Node[T any] struct {
	bounds   BoundingBox
	capacity int
	points   []Point[T]
	children *[4]*Node[T]
}

func newNode[T any](bounds BoundingBox, capacity int) *Node[T] {
	return &Node[T]{
		bounds:   bounds,
		capacity: capacity,
		points:   make([]Point[T], 0, capacity),
	}
}

// Bounds returns the node's bounding box.
func (n *Node[T]) Bounds() BoundingBox { return n.bounds }

// Bucket returns the points stored on this node itself, in insertion order.
func (n *Node[T]) Bucket() []Point[T] { return n.points }

// IsLeaf reports whether the node has never subdivided.
func (n *Node[T]) IsLeaf() bool { return n.children == nil }

// Child returns the child for quadrant q, or nil on a leaf.
func (n *Node[T]) Child(q int) *Node[T] {
	if n.children == nil {
		return nil
	}
	return n.children[q]
}

// Insert stores p in this node or one of its descendants. It returns false if p
// lies outside the node's box.
func (n *Node[T]) Insert(p Point[T]) bool {
	node := n
	for {
		if !node.bounds.Contains(p.X, p.Y) {
			return false
		}
		if len(node.points) < node.capacity {
			node.points = append(node.points, p)
			return true
		}
		if node.children == nil {
			node.subdivide()
		}

		var next *Node[T]
		for _, child := range node.children {
			if child.bounds.Contains(p.X, p.Y) {
				next = child
				break
			}
		}
		if next == nil {
			return false
		}
		node = next
	}
}

func (n *Node[T]) subdivide() {
	quadrants := n.bounds.Quadrants()
	n.children = &[4]*Node[T]{}
	for i, box := range quadrants {
		n.children[i] = newNode[T](box, n.capacity)
	}
}

// Gather calls visit for every point under n that lies inside query.
// Nodes are visited in pre-order NW, NE, SW, SE; bucket points in insertion order.
func (n *Node[T]) Gather(query BoundingBox, visit func(Point[T])) {
	stack := []*Node[T]{n}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !node.bounds.Intersects(query) {
			continue
		}
		for _, p := range node.points {
			if query.Contains(p.X, p.Y) {
				visit(p)
			}
		}
		if node.children != nil {
			for i := len(node.children) - 1; i >= 0; i-- {
				stack = append(stack, node.children[i])
			}
		}
	}
}

// Tree is a quadtree rooted at a fixed world box. It is safe for concurrent
// reads once no more points are being inserted.
type Tree[T any] struct {
	root    *Node[T]
	count   int
	dropped int
}

// New creates an empty tree covering world.
func New[T any](world BoundingBox, capacity int) (*Tree[T], error) {
	if capacity < 1 {
		return nil, fmt.Errorf("invalid capacity %d: %w", capacity, ErrInvalidCapacity)
	}
	if !world.Valid() {
		return nil, fmt.Errorf("invalid world bounds %s: %w", world, ErrInvalidBounds)
	}
	return &Tree[T]{root: newNode[T](world, capacity)}, nil
}

// Build creates a tree covering world and inserts points in input order.
// Points outside world are dropped.
func Build[T any](points []Point[T], world BoundingBox, capacity int) (*Tree[T], error) {
	t, err := New[T](world, capacity)
	if err != nil {
		return nil, err
	}
	for _, p := range points {
		t.Insert(p)
	}
	return t, nil
}

// Insert adds p to the tree and reports whether it was inside the world box.
func (t *Tree[T]) Insert(p Point[T]) bool {
	if !t.root.Insert(p) {
		t.dropped++
		return false
	}
	t.count++
	return true
}

// Gather calls visit for every indexed point inside query.
func (t *Tree[T]) Gather(query BoundingBox, visit func(Point[T])) {
	t.root.Gather(query, visit)
}

// Root returns the root node.
func (t *Tree[T]) Root() *Node[T] { return t.root }

// Bounds returns the world box.
func (t *Tree[T]) Bounds() BoundingBox { return t.root.bounds }

// Len returns the number of indexed points.
func (t *Tree[T]) Len() int { return t.count }

// Dropped returns the number of rejected out-of-bounds inserts.
func (t *Tree[T]) Dropped() int { return t.dropped }

// Walk visits nodes in pre-order. Returning false from fn skips the node's children.
func (t *Tree[T]) Walk(fn func(n *Node[T], depth int) bool) {
	var walk func(n *Node[T], depth int)
	walk = func(n *Node[T], depth int) {
		if !fn(n, depth) || n.children == nil {
			return
		}
		for _, child := range n.children {
			walk(child, depth+1)
		}
	}
	walk(t.root, 0)
}

// Depth returns the depth of the deepest node; a lone root has depth 0.
func (t *Tree[T]) Depth() int {
	depth := 0
	t.Walk(func(_ *Node[T], d int) bool {
		if d > depth {
			depth = d
		}
		return true
	})
	return depth
}

// Points returns every indexed point in traversal order.
func (t *Tree[T]) Points() []Point[T] {
	points := make([]Point[T], 0, t.count)
	t.Walk(func(n *Node[T], _ int) bool {
		points = append(points, n.points...)
		return true
	})
	return points
}
