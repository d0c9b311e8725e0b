package cluster

import (
	"math"
	"testing"

	"github.com/1F47E/geo-cluster/pkg/i18n"
	"github.com/1F47E/geo-cluster/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClusterTitle(t *testing.T) {
	a := newCluster[int](models.Location{Lat: 1, Lon: 2}, 3, i18n.Default())
	assert.Equal(t, "3 objects in area", a.Title)
	assert.True(t, a.IsCluster())

	ru, err := i18n.New("ru")
	require.NoError(t, err)
	a = newCluster[int](models.Location{Lat: 1, Lon: 2}, 12, ru)
	assert.Equal(t, "12 объектов в области", a.Title)

	a = newCluster[int](models.Location{}, 2, LocalizerFunc(func(key string) string { return "<" + key + ">" }))
	assert.Equal(t, "2 <objects_in_area>", a.Title)
}

func TestSinglePoint(t *testing.T) {
	a := newSinglePoint(models.Location{Lat: 10, Lon: 20}, "p1", "payload")
	assert.Equal(t, SinglePoint, a.Kind)
	assert.Equal(t, 1, a.Count)
	assert.Equal(t, "p1", a.ID)
	assert.Equal(t, "payload", a.Payload)
	assert.Empty(t, a.Title)
	assert.False(t, a.IsCluster())
}

func TestAnnotationEqualAndHash(t *testing.T) {
	a := newSinglePoint(models.Location{Lat: 10, Lon: 20}, "a", 1)
	b := newSinglePoint(models.Location{Lat: 10, Lon: 20}, "b", 2)
	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Hash(), b.Hash())

	c := newSinglePoint(models.Location{Lat: 10, Lon: 20.5}, "a", 1)
	assert.False(t, a.Equal(c))

	l := i18n.Default()
	x := newCluster[int](models.Location{Lat: 5, Lon: 5}, 3, l)
	y := newCluster[int](models.Location{Lat: 5, Lon: 5}, 4, l)
	assert.False(t, x.Equal(y))
	assert.NotEqual(t, x.Hash(), y.Hash())

	zero := newSinglePoint(models.Location{Lat: 0, Lon: 0}, "z", 0)
	negZero := newSinglePoint(models.Location{Lat: math.Copysign(0, -1), Lon: 0}, "z", 0)
	assert.True(t, zero.Equal(negZero))
	assert.Equal(t, zero.Hash(), negZero.Hash())
}

func TestAnnotationString(t *testing.T) {
	single := newSinglePoint(models.Location{Lat: 10.5, Lon: -20.25}, "id-1", 0)
	assert.Equal(t, "SinglePinAnnotation: coordinate: {10.5, -20.25}, id: id-1", single.String())

	cluster := newCluster[int](models.Location{Lat: 1.5, Lon: 2}, 7, i18n.Default())
	assert.Equal(t, "ClusterAnnotation: coordinate: {1.5, 2}, count: 7", cluster.String())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "single", SinglePoint.String())
	assert.Equal(t, "cluster", Cluster.String())
	assert.Equal(t, "Kind(7)", Kind(7).String())
}
