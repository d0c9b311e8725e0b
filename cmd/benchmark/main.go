package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/1F47E/geo-cluster/pkg/cluster"
	"github.com/1F47E/geo-cluster/pkg/dataset"
	"github.com/1F47E/geo-cluster/pkg/geo"
	"github.com/1F47E/geo-cluster/pkg/models"
	"github.com/1F47E/geo-cluster/pkg/quadtree"
)

type BenchmarkResult struct {
	QueryType     string
	Backend       string
	TotalQueries  int
	TotalDuration time.Duration
	AvgDuration   time.Duration
	QueriesPerSec float64
	MinDuration   time.Duration
	MaxDuration   time.Duration
	TotalResults  int64
	AvgResults    float64
}

// queryFunc runs one random query and returns the number of results.
type queryFunc func(r *rand.Rand) int

type area struct {
	minLat, maxLat, minLon, maxLon float64
}

func (a area) location(r *rand.Rand) models.Location {
	return models.Location{
		Lat: a.minLat + r.Float64()*(a.maxLat-a.minLat),
		Lon: a.minLon + r.Float64()*(a.maxLon-a.minLon),
	}
}

func main() {
	var (
		file       = flag.String("i", "data/points.gob.zst", "Snapshot file path")
		generate   = flag.Int("points", 1000000, "Number of random points when the snapshot is missing")
		queryType  = flag.String("t", "cluster", "Query type: cluster, box, radius, nearest, mixed")
		backends   = flag.String("backend", "all", "Index backend: quadtree, rtree or all")
		numQueries = flag.Int("n", 1000, "Number of queries to run")
		workers    = flag.Int("w", runtime.NumCPU(), "Number of concurrent workers")
		capacity   = flag.Int("capacity", cluster.DefaultCapacity, "Quadtree bucket capacity")
		// Geographic bounds for random queries (default: roughly USA)
		minLat = flag.Float64("min-lat", 25.0, "Minimum latitude for random queries")
		maxLat = flag.Float64("max-lat", 49.0, "Maximum latitude for random queries")
		minLon = flag.Float64("min-lon", -125.0, "Minimum longitude for random queries")
		maxLon = flag.Float64("max-lon", -66.0, "Maximum longitude for random queries")
		// Query-specific parameters
		zoom    = flag.Int("zoom", 8, "Zoom level (for cluster queries)")
		boxSize = flag.Float64("box-size", 1.0, "Box size in degrees (for box queries)")
		radius  = flag.Float64("radius", 50.0, "Radius in km (for radius queries)")
		k       = flag.Int("k", 100, "Number of nearest neighbors")
	)
	flag.Parse()

	points, err := loadPoints(*file, *generate)
	if err != nil {
		log.Fatalf("Failed to load points: %v", err)
	}
	indexed := dataset.ToQuadtree(points)

	var names []cluster.Backend
	if *backends == "all" {
		names = []cluster.Backend{cluster.BackendQuadtree, cluster.BackendRTree}
	} else {
		b, err := cluster.ParseBackend(*backends)
		if err != nil {
			log.Fatal(err)
		}
		names = []cluster.Backend{b}
	}

	bounds := area{*minLat, *maxLat, *minLon, *maxLon}
	var results []BenchmarkResult
	for _, backend := range names {
		engine, err := cluster.NewEngine[models.Properties](cluster.Options{
			Capacity: *capacity,
			Backend:  backend,
			Logger:   log.Default(),
		})
		if err != nil {
			log.Fatalf("Failed to create engine: %v", err)
		}
		if err := engine.BuildTree(indexed); err != nil {
			log.Fatalf("Failed to build index: %v", err)
		}

		queries := map[string]queryFunc{
			"cluster": clusterQuery(engine, bounds, *zoom),
			"box":     boxQuery(engine, bounds, *boxSize),
		}
		// Radius and nearest searches run on the quadtree only.
		if backend == cluster.BackendQuadtree {
			tree, err := quadtree.Build(indexed, cluster.DefaultWorldBounds, *capacity)
			if err != nil {
				log.Fatalf("Failed to build quadtree: %v", err)
			}
			queries["radius"] = radiusQuery(tree, bounds, *radius)
			queries["nearest"] = nearestQuery(tree, bounds, *k)
		}

		types := []string{*queryType}
		if *queryType == "mixed" {
			types = []string{"cluster", "box", "radius", "nearest"}
		}
		for _, t := range types {
			query, ok := queries[t]
			if !ok {
				if *queryType == "mixed" {
					continue
				}
				log.Fatalf("Query type %s is not supported by the %s backend", t, backend)
			}
			log.Printf("Running %d %s queries on %s with %d workers...\n", *numQueries, t, backend, *workers)
			result := run(query, *numQueries, *workers)
			result.QueryType = t
			result.Backend = string(backend)
			results = append(results, result)
		}
	}

	for _, result := range results {
		printResult(result)
	}
	fmt.Printf("\nWorkers Used: %d\n", *workers)
	fmt.Printf("CPU Cores: %d\n", runtime.NumCPU())
}

func loadPoints(path string, generate int) ([]*models.Point, error) {
	if _, err := os.Stat(path); err == nil {
		log.Printf("Loading points from %s...\n", path)
		return dataset.Load(path)
	}
	log.Printf("Snapshot %s not found, generating %d points...\n", path, generate)
	return dataset.GenerateRegions(generate, 0, time.Now().UnixNano()), nil
}

func clusterQuery(engine *cluster.Engine[models.Properties], a area, zoom int) queryFunc {
	opts := engine.Options()
	scale := cluster.ZoomScaleForLevel(zoom, opts.WorldSize, opts.TileSize)
	// a 1280x800 pixel screen
	width, height := 1280/scale, 800/scale
	return func(r *rand.Rand) int {
		center := opts.Projection.ToMapPoint(a.location(r))
		viewport := geo.NewMapRect(center.X-width/2, center.Y-height/2, width, height)
		return len(engine.ClusteredAnnotations(viewport, scale))
	}
}

func boxQuery(engine *cluster.Engine[models.Properties], a area, size float64) queryFunc {
	return func(r *rand.Rand) int {
		loc := a.location(r)
		box := quadtree.BoundingBox{X0: loc.Lat, X1: loc.Lat + size, Y0: loc.Lon, Y1: loc.Lon + size}
		n := 0
		engine.Gather(box, func(quadtree.Point[models.Properties]) { n++ })
		return n
	}
}

func radiusQuery(tree *quadtree.Tree[models.Properties], a area, radius float64) queryFunc {
	return func(r *rand.Rand) int {
		n := 0
		tree.GatherRadius(a.location(r), radius, func(quadtree.Point[models.Properties], float64) { n++ })
		return n
	}
}

func nearestQuery(tree *quadtree.Tree[models.Properties], a area, k int) queryFunc {
	return func(r *rand.Rand) int {
		return len(tree.Nearest(context.Background(), a.location(r), k))
	}
}

func run(query queryFunc, numQueries, workers int) BenchmarkResult {
	var (
		totalResults int64
		minDuration  = time.Hour
		maxDuration  time.Duration
		totalDur     time.Duration
		mu           sync.Mutex
	)

	startTime := time.Now()

	// Worker pool
	queryCh := make(chan int, numQueries)
	var wg sync.WaitGroup

	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			r := rand.New(rand.NewSource(rand.Int63()))

			for range queryCh {
				queryStart := time.Now()
				n := query(r)
				queryDuration := time.Since(queryStart)

				atomic.AddInt64(&totalResults, int64(n))

				mu.Lock()
				totalDur += queryDuration
				if queryDuration < minDuration {
					minDuration = queryDuration
				}
				if queryDuration > maxDuration {
					maxDuration = queryDuration
				}
				mu.Unlock()
			}
		}()
	}

	for i := 0; i < numQueries; i++ {
		queryCh <- i
	}
	close(queryCh)

	wg.Wait()
	totalDuration := time.Since(startTime)

	result := BenchmarkResult{
		TotalQueries:  numQueries,
		TotalDuration: totalDuration,
		MinDuration:   minDuration,
		MaxDuration:   maxDuration,
		TotalResults:  totalResults,
	}
	if numQueries > 0 {
		result.AvgDuration = totalDur / time.Duration(numQueries)
		result.QueriesPerSec = float64(numQueries) / totalDuration.Seconds()
		result.AvgResults = float64(totalResults) / float64(numQueries)
	}
	return result
}

func printResult(result BenchmarkResult) {
	fmt.Println("\n=== Benchmark Results ===")
	fmt.Printf("Query Type: %s\n", result.QueryType)
	fmt.Printf("Backend: %s\n", result.Backend)
	fmt.Printf("Total Queries: %d\n", result.TotalQueries)
	fmt.Printf("Total Duration: %v\n", result.TotalDuration)
	fmt.Printf("Average Duration: %v\n", result.AvgDuration)
	fmt.Printf("Queries/Second: %.2f\n", result.QueriesPerSec)
	fmt.Printf("Min Duration: %v\n", result.MinDuration)
	fmt.Printf("Max Duration: %v\n", result.MaxDuration)
	fmt.Printf("Total Results: %d\n", result.TotalResults)
	fmt.Printf("Avg Results/Query: %.2f\n", result.AvgResults)
}
