package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/1F47E/geo-cluster/pkg/cluster"
	"github.com/1F47E/geo-cluster/pkg/quadtree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
	assert.NoError(t, c.Validate())
}

func TestLoadPartialFile(t *testing.T) {
	c, err := Load(writeConfig(t, `
index:
  backend: rtree
  capacity: 16
locale: ru
server:
  addr: ":9090"
`))
	require.NoError(t, err)
	assert.Equal(t, "rtree", c.Index.Backend)
	assert.Equal(t, 16, c.Index.Capacity)
	assert.Equal(t, "ru", c.Locale)
	assert.Equal(t, ":9090", c.Server.Addr)

	// untouched sections keep their defaults
	assert.Equal(t, Default().Index.WorldBounds, c.Index.WorldBounds)
	assert.Equal(t, Default().Map, c.Map)
	assert.Equal(t, Default().PostGIS, c.PostGIS)
}

func TestLoadExampleFile(t *testing.T) {
	c, err := Load(filepath.Join("..", "..", "config.yaml.example"))
	require.NoError(t, err)
	assert.Equal(t, "quadtree", c.Index.Backend)
	assert.Equal(t, "points", c.PostGIS.Table)
}

func TestLoadInvalid(t *testing.T) {
	testCases := []struct {
		name string
		body string
		err  error
	}{
		{"capacity", "index: {capacity: -2}", quadtree.ErrInvalidCapacity},
		{"backend", "index: {backend: btree}", cluster.ErrUnknownBackend},
		{"bounds", "index: {world_bounds: {min_lat: 10, max_lat: -10, min_lon: 0, max_lon: 1}}", quadtree.ErrInvalidBounds},
		{"map size", "map: {tile_size: 0}", cluster.ErrInvalidMapSize},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			assert.ErrorIs(t, err, tc.err)
		})
	}

	_, err := Load(writeConfig(t, "index: [not, a, map]"))
	assert.Error(t, err)
}

func TestEngineOptions(t *testing.T) {
	c := Default()
	c.Index.Backend = "rtree"
	c.Locale = "ru"

	opts, err := c.EngineOptions()
	require.NoError(t, err)
	assert.Equal(t, cluster.BackendRTree, opts.Backend)
	assert.Equal(t, quadtree.BoundingBox{X0: -90, X1: 90, Y0: -180, Y1: 180}, opts.WorldBounds)
	assert.Equal(t, 4, opts.Capacity)
	assert.Equal(t, "объектов в области", opts.Localizer.Localize("objects_in_area"))

	e, err := cluster.NewEngine[int](opts)
	require.NoError(t, err)
	assert.False(t, e.Ready())
}

func TestDSN(t *testing.T) {
	p := Default().PostGIS
	p.Password = "secret"
	assert.Equal(t,
		"host=localhost port=5432 user=postgres password=secret dbname=geocluster sslmode=disable connect_timeout=5",
		p.DSN())
}
