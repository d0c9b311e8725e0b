package dataset

import (
	"fmt"
	"math/rand"
	"runtime"
	"sync"

	"github.com/1F47E/geo-cluster/pkg/models"
)

// chunkSize is the number of points generated from one seed. Chunks make the
// output depend on the seed only, not on the number of workers.
const chunkSize = 10000

// Generate returns n uniformly distributed points inside box, named point_<i>.
// Generation is spread over workers goroutines; workers <= 0 uses all CPUs.
func Generate(n int, box models.BoundingBox, workers int, seed int64) []*models.Point {
	if n <= 0 {
		return []*models.Point{}
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	points := make([]*models.Point, n)
	latSpan := box.TopRight.Lat - box.BottomLeft.Lat
	lonSpan := box.TopRight.Lon - box.BottomLeft.Lon

	chunks := make(chan int, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for chunk := range chunks {
				r := rand.New(rand.NewSource(seed + int64(chunk)))
				end := min((chunk+1)*chunkSize, n)
				for i := chunk * chunkSize; i < end; i++ {
					points[i] = &models.Point{
						ID: fmt.Sprintf("point_%d", i),
						Location: &models.Location{
							Lat: box.BottomLeft.Lat + r.Float64()*latSpan,
							Lon: box.BottomLeft.Lon + r.Float64()*lonSpan,
						},
					}
				}
			}
		}()
	}

	for chunk := 0; chunk*chunkSize < n; chunk++ {
		chunks <- chunk
	}
	close(chunks)
	wg.Wait()

	return points
}

// Regions concentrates generated points around populated areas. The last
// region covers the whole world.
var Regions = []models.BoundingBox{
	{BottomLeft: models.Location{Lat: 30, Lon: -120}, TopRight: models.Location{Lat: 60, Lon: -60}},  // North America
	{BottomLeft: models.Location{Lat: 40, Lon: -10}, TopRight: models.Location{Lat: 60, Lon: 30}},    // Europe
	{BottomLeft: models.Location{Lat: 20, Lon: 60}, TopRight: models.Location{Lat: 60, Lon: 140}},    // Asia
	{BottomLeft: models.Location{Lat: -50, Lon: -80}, TopRight: models.Location{Lat: -10, Lon: -50}}, // South America
	models.WorldBounds,
}

// GenerateRegions is like Generate but picks a random entry of Regions for
// every point.
func GenerateRegions(n, workers int, seed int64) []*models.Point {
	points := Generate(n, models.BoundingBox{TopRight: models.Location{Lat: 1, Lon: 1}}, workers, seed)
	r := rand.New(rand.NewSource(seed))
	for _, p := range points {
		box := Regions[r.Intn(len(Regions))]
		// rescale the unit-square sample into the chosen region
		p.Location.Lat = box.BottomLeft.Lat + p.Location.Lat*(box.TopRight.Lat-box.BottomLeft.Lat)
		p.Location.Lon = box.BottomLeft.Lon + p.Location.Lon*(box.TopRight.Lon-box.BottomLeft.Lon)
	}
	return points
}
