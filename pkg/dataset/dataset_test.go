package dataset

import (
	"bytes"
	"encoding/gob"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/1F47E/geo-cluster/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var usa = models.BoundingBox{
	BottomLeft: models.Location{Lat: 25, Lon: -125},
	TopRight:   models.Location{Lat: 49, Lon: -66},
}

func samplePoints() []*models.Point {
	return []*models.Point{
		{ID: "sf", Location: &models.Location{Lat: 37.7749, Lon: -122.4194}, Properties: models.Properties{
			"name":  "San Francisco",
			"phone": "+1 415 555 0100",
			"rank":  float64(4),
		}},
		{ID: "la", Location: &models.Location{Lat: 34.0522, Lon: -118.2437}},
		{ID: "unplaced"},
	}
}

func TestSaveLoad(t *testing.T) {
	for _, name := range []string{"points.gob", "points.gob.zst"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			require.NoError(t, Save(path, samplePoints()))

			loaded, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, samplePoints(), loaded)
		})
	}
}

func TestSaveCompresses(t *testing.T) {
	dir := t.TempDir()
	points := Generate(20000, usa, 4, 1)
	for _, p := range points {
		p.Properties = models.Properties{"kind": "shop"}
	}

	plain := filepath.Join(dir, "points.gob")
	packed := filepath.Join(dir, "points.gob.zst")
	require.NoError(t, Save(plain, points))
	require.NoError(t, Save(packed, points))

	plainInfo, err := os.Stat(plain)
	require.NoError(t, err)
	packedInfo, err := os.Stat(packed)
	require.NoError(t, err)
	assert.Less(t, packedInfo.Size(), plainInfo.Size())
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.gob"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Decode(strings.NewReader("not a gob stream"))
	assert.Error(t, err)

	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(header{Version: snapshotVersion + 1}))
	_, err = Decode(&buf)
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestDecodeBadCount(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(header{Version: snapshotVersion, Count: -1}))
	_, err := Decode(&buf)
	assert.ErrorIs(t, err, ErrCorruptSnapshot)

	// a huge count fails on the first missing record instead of allocating up front
	buf.Reset()
	require.NoError(t, gob.NewEncoder(&buf).Encode(header{Version: snapshotVersion, Count: 1 << 60}))
	_, err = Decode(&buf)
	assert.ErrorIs(t, err, io.EOF)
}

func TestGenerate(t *testing.T) {
	points := Generate(25000, usa, 3, 42)
	require.Len(t, points, 25000)

	for i, p := range points {
		require.NotNil(t, p)
		require.NotNil(t, p.Location)
		assert.True(t, usa.Contains(*p.Location), "point %d outside box", i)
	}
	assert.Equal(t, "point_0", points[0].ID)
	assert.Equal(t, "point_24999", points[24999].ID)
}

func TestGenerateDeterministic(t *testing.T) {
	a := Generate(15000, usa, 1, 7)
	b := Generate(15000, usa, 8, 7)
	assert.Equal(t, a, b)

	c := Generate(15000, usa, 8, 8)
	assert.NotEqual(t, a[0].Location, c[0].Location)
}

func TestGenerateEmpty(t *testing.T) {
	assert.Empty(t, Generate(0, usa, 2, 1))
	assert.NotNil(t, Generate(-1, usa, 2, 1))
}

func TestToQuadtree(t *testing.T) {
	converted := ToQuadtree(samplePoints())
	require.Len(t, converted, 2)
	assert.Equal(t, "sf", converted[0].ID)
	assert.Equal(t, 37.7749, converted[0].X)
	assert.Equal(t, -122.4194, converted[0].Y)
	assert.Equal(t, "San Francisco", converted[0].Payload["name"])

	noID := ToQuadtree([]*models.Point{{Location: &models.Location{Lat: 1, Lon: 2}}})
	require.Len(t, noID, 1)
	assert.Len(t, noID[0].ID, 36)

	back := FromQuadtree(converted)
	assert.Equal(t, samplePoints()[:2], back)
}

func TestGenerateRegions(t *testing.T) {
	points := GenerateRegions(5000, 4, 3)
	require.Len(t, points, 5000)

	inRegion := func(loc models.Location) bool {
		for _, box := range Regions[:len(Regions)-1] {
			if box.Contains(loc) {
				return true
			}
		}
		return false
	}
	clustered := 0
	for _, p := range points {
		require.True(t, models.WorldBounds.Contains(*p.Location))
		if inRegion(*p.Location) {
			clustered++
		}
	}
	// four of five regions are populated areas
	assert.Greater(t, clustered, 3500)
	assert.Equal(t, points, GenerateRegions(5000, 1, 3))
}
