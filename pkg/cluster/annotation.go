package cluster

import (
	"fmt"
	"math"
	"strconv"

	"github.com/1F47E/geo-cluster/pkg/i18n"
	"github.com/1F47E/geo-cluster/pkg/models"
)

// Kind tells a single point marker from a cluster marker.
type Kind int

const (
	SinglePoint Kind = iota
	Cluster
)

func (k Kind) String() string {
	switch k {
	case SinglePoint:
		return "single"
	case Cluster:
		return "cluster"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Localizer resolves display strings by key.
type Localizer interface {
	Localize(key string) string
}

// LocalizerFunc adapts a function to Localizer.
type LocalizerFunc func(key string) string

func (f LocalizerFunc) Localize(key string) string { return f(key) }

// Annotation is one marker produced for a grid cell.
// ID and Payload are only set on SinglePoint annotations.
type Annotation[T any] struct {
	Kind       Kind
	Coordinate models.Location
	Title      string
	Subtitle   string
	Count      int
	ID         string
	Payload    T
}

// IsCluster reports whether the annotation aggregates more than one point.
func (a Annotation[T]) IsCluster() bool { return a.Kind == Cluster }

// Equal compares coordinate, title, subtitle and count.
func (a Annotation[T]) Equal(other Annotation[T]) bool {
	return a.Coordinate == other.Coordinate &&
		a.Title == other.Title &&
		a.Subtitle == other.Subtitle &&
		a.Count == other.Count
}

// Hash is consistent with Equal: equal annotations hash to the same value.
func (a Annotation[T]) Hash() uint64 {
	return uint64(a.Count)<<15 + floatBits(a.Coordinate.Lat) + floatBits(a.Coordinate.Lon)
}

// floatBits maps -0 and 0 to the same bits, since they compare equal.
func floatBits(f float64) uint64 {
	if f == 0 {
		return 0
	}
	return math.Float64bits(f)
}

func (a Annotation[T]) String() string {
	if a.Kind == Cluster {
		return fmt.Sprintf("ClusterAnnotation: coordinate: {%v, %v}, count: %d",
			a.Coordinate.Lat, a.Coordinate.Lon, a.Count)
	}
	return fmt.Sprintf("SinglePinAnnotation: coordinate: {%v, %v}, id: %s",
		a.Coordinate.Lat, a.Coordinate.Lon, a.ID)
}

func newSinglePoint[T any](loc models.Location, id string, payload T) Annotation[T] {
	return Annotation[T]{
		Kind:       SinglePoint,
		Coordinate: loc,
		Count:      1,
		ID:         id,
		Payload:    payload,
	}
}

func newCluster[T any](loc models.Location, count int, l Localizer) Annotation[T] {
	return Annotation[T]{
		Kind:       Cluster,
		Coordinate: loc,
		Title:      fmt.Sprintf("%d %s", count, l.Localize(i18n.ObjectsInArea)),
		Count:      count,
	}
}
