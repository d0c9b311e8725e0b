package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/1F47E/geo-cluster/pkg/cluster"
	"github.com/1F47E/geo-cluster/pkg/dataset"
	"github.com/1F47E/geo-cluster/pkg/geo"
	"github.com/1F47E/geo-cluster/pkg/i18n"
	"github.com/1F47E/geo-cluster/pkg/models"
	"github.com/1F47E/geo-cluster/pkg/quadtree"
)

func main() {
	// Sample points for major US cities
	cities := []*models.Point{
		{ID: "NYC", Location: &models.Location{Lat: 40.7128, Lon: -74.0060}},
		{ID: "LAX", Location: &models.Location{Lat: 34.0522, Lon: -118.2437}},
		{ID: "CHI", Location: &models.Location{Lat: 41.8781, Lon: -87.6298}},
		{ID: "HOU", Location: &models.Location{Lat: 29.7604, Lon: -95.3698}},
		{ID: "PHX", Location: &models.Location{Lat: 33.4484, Lon: -112.0740}},
		{ID: "PHL", Location: &models.Location{Lat: 39.9526, Lon: -75.1652}},
		{ID: "SAT", Location: &models.Location{Lat: 29.4241, Lon: -98.4936}},
		{ID: "SDG", Location: &models.Location{Lat: 32.7157, Lon: -117.1611}},
		{ID: "DAL", Location: &models.Location{Lat: 32.7767, Lon: -96.7970}},
		{ID: "SJC", Location: &models.Location{Lat: 37.3382, Lon: -121.8863}},
		{ID: "AUS", Location: &models.Location{Lat: 30.2672, Lon: -97.7431}},
		{ID: "JAX", Location: &models.Location{Lat: 30.3322, Lon: -81.6557}},
		{ID: "SFO", Location: &models.Location{Lat: 37.7749, Lon: -122.4194}},
		{ID: "CLB", Location: &models.Location{Lat: 39.9612, Lon: -82.9988}},
		{ID: "CLT", Location: &models.Location{Lat: 35.2271, Lon: -80.8431}},
	}
	points := dataset.ToQuadtree(cities)

	// Build a clustering engine over the cities
	engine, err := cluster.NewEngine[models.Properties](cluster.Options{Localizer: i18n.Default()})
	if err != nil {
		log.Fatal(err)
	}
	if err := engine.BuildTree(points); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Indexed %d cities\n\n", engine.Len())

	// Example 1: Find cities in California (bounding box)
	fmt.Println("=== Cities in California (Bounding Box) ===")
	california := quadtree.BoundingBox{X0: 32.5, X1: 42.0, Y0: -124.5, Y1: -114.0}
	engine.Gather(california, func(p quadtree.Point[models.Properties]) {
		fmt.Printf("  - %s: (%.4f, %.4f)\n", p.ID, p.X, p.Y)
	})

	// Example 2: Cluster the continental US at a few zoom levels
	opts := engine.Options()
	usa := geo.RectFromBounds(opts.Projection, models.BoundingBox{
		BottomLeft: models.Location{Lat: 24.5, Lon: -125.0},
		TopRight:   models.Location{Lat: 49.5, Lon: -66.0},
	})
	for _, zoom := range []int{3, 5, 7} {
		scale := cluster.ZoomScaleForLevel(zoom, opts.WorldSize, opts.TileSize)
		annotations := engine.ClusteredAnnotations(usa, scale)
		fmt.Printf("\n=== Zoom %d: %d markers ===\n", zoom, len(annotations))
		for _, a := range annotations {
			fmt.Printf("  - %s %s\n", a, a.Title)
		}
	}

	// Example 3: Find cities within 500km of Dallas
	tree, err := quadtree.Build(points, cluster.DefaultWorldBounds, cluster.DefaultCapacity)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("\n=== Cities within 500km of Dallas ===")
	dallas := models.Location{Lat: 32.7767, Lon: -96.7970}
	tree.GatherRadius(dallas, 500, func(p quadtree.Point[models.Properties], d float64) {
		fmt.Printf("  - %s: %.1f km away\n", p.ID, d)
	})

	// Example 4: Find 5 nearest cities to Denver
	fmt.Println("\n=== 5 Nearest Cities to Denver ===")
	denver := models.Location{Lat: 39.7392, Lon: -104.9903}
	for i, n := range tree.Nearest(context.Background(), denver, 5) {
		fmt.Printf("  %d. %s: %.1f km away\n", i+1, n.Point.ID, n.DistanceKM)
	}

	// Save and load a snapshot
	fmt.Println("\n=== Snapshot ===")
	path := filepath.Join(os.TempDir(), "cities.gob.zst")
	if err := dataset.Save(path, cities); err != nil {
		log.Fatal(err)
	}
	loaded, err := dataset.Load(path)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Saved and loaded %d points via %s\n", len(loaded), path)
}
