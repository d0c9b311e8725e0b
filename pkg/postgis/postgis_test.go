package postgis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/1F47E/geo-cluster/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestStore connects to the database named by GEOCLUSTER_POSTGIS_DSN.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("GEOCLUSTER_POSTGIS_DSN")
	if dsn == "" {
		t.Skip("GEOCLUSTER_POSTGIS_DSN not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	store, err := OpenDSN(ctx, dsn, "geocluster_test_points", 4)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	require.NoError(t, store.InitSchema(ctx))
	return store
}

func TestStoreRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	points := []*models.Point{
		{ID: "sf", Location: &models.Location{Lat: 37.7749, Lon: -122.4194}, Properties: models.Properties{"name": "San Francisco"}},
		{ID: "la", Location: &models.Location{Lat: 34.0522, Lon: -118.2437}},
		{ID: "nyc", Location: &models.Location{Lat: 40.7128, Lon: -74.0060}},
		{ID: "nowhere"},
	}
	inserted, err := store.BulkInsertPoints(ctx, points)
	require.NoError(t, err)
	assert.Equal(t, 3, inserted)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	california := models.BoundingBox{
		BottomLeft: models.Location{Lat: 32, Lon: -125},
		TopRight:   models.Location{Lat: 42, Lon: -114},
	}
	loaded, err := store.LoadPoints(ctx, california)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "la", loaded[0].ID)
	assert.Nil(t, loaded[0].Properties)
	assert.Equal(t, "sf", loaded[1].ID)
	assert.Equal(t, "San Francisco", loaded[1].Properties["name"])
	assert.InDelta(t, 37.7749, loaded[1].Location.Lat, 1e-9)

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats["row_count"])
}
