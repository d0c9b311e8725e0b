package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/1F47E/geo-cluster/pkg/cluster"
	"github.com/1F47E/geo-cluster/pkg/config"
	"github.com/1F47E/geo-cluster/pkg/dataset"
	"github.com/1F47E/geo-cluster/pkg/models"
	"github.com/1F47E/geo-cluster/pkg/postgis"
	"github.com/1F47E/geo-cluster/pkg/quadtree"
	"github.com/spf13/cobra"
)

var (
	configFile  string
	datasetFile string
	backend     string
	capacity    int
	locale      string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "geo-cluster",
	Short: "Quadtree based map marker clustering",
	Long: `Cluster large sets of geographic points into map markers over a zoom dependent
screen-space grid, backed by a quadtree (or R-Tree) spatial index.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config.yaml", "Config file path")
	rootCmd.PersistentFlags().StringVarP(&datasetFile, "file", "f", "", "Dataset snapshot path (overrides dataset.path)")
	rootCmd.PersistentFlags().StringVar(&backend, "backend", "", "Index backend: quadtree or rtree (overrides index.backend)")
	rootCmd.PersistentFlags().IntVar(&capacity, "capacity", 0, "Quadtree bucket capacity (overrides index.capacity)")
	rootCmd.PersistentFlags().StringVar(&locale, "locale", "", "Locale of cluster labels (overrides locale)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(loadCmd, clusterCmd, queryCmd, radiusCmd, nearestCmd, serveCmd, renderCmd, seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies the persistent flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if datasetFile != "" {
		cfg.Dataset.Path = datasetFile
	}
	if backend != "" {
		cfg.Index.Backend = backend
	}
	if capacity != 0 {
		cfg.Index.Capacity = capacity
	}
	if locale != "" {
		cfg.Locale = locale
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildEngine loads the dataset snapshot and indexes it.
func buildEngine(cfg *config.Config) (*cluster.Engine[models.Properties], error) {
	opts, err := cfg.EngineOptions()
	if err != nil {
		return nil, err
	}
	if verbose {
		opts.Logger = log.Default()
	}
	engine, err := cluster.NewEngine[models.Properties](opts)
	if err != nil {
		return nil, err
	}

	log.Printf("Loading dataset from %s...", cfg.Dataset.Path)
	start := time.Now()
	points, err := dataset.Load(cfg.Dataset.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}
	log.Printf("Loaded %d points in %v", len(points), time.Since(start))

	start = time.Now()
	if err := engine.BuildTree(dataset.ToQuadtree(points)); err != nil {
		return nil, err
	}
	log.Printf("Built %s index with %d points in %v", opts.Backend, engine.Len(), time.Since(start))
	if dropped := engine.Dropped(); dropped > 0 {
		log.Printf("Dropped %d points outside the world bounds", dropped)
	}
	return engine, nil
}

// buildTree loads the dataset into a bare quadtree for the proximity commands.
func buildTree(cfg *config.Config) (*quadtree.Tree[models.Properties], error) {
	points, err := dataset.Load(cfg.Dataset.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}
	return quadtree.Build(dataset.ToQuadtree(points), cfg.Index.WorldBounds.Box(), cfg.Index.Capacity)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

var (
	numPoints    int
	numWorkers   int
	seed         int64
	distribution string
	geojsonFile  string
	fromPostGIS  bool
	genBounds    boundsFlags
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Create a dataset snapshot",
	Long: `Generate random points, import a GeoJSON file or read a PostGIS table and save
the points as a dataset snapshot (zstd-compressed when the path ends in .zst).`,
	RunE: runLoad,
}

func init() {
	loadCmd.Flags().IntVarP(&numPoints, "points", "p", 1000000, "Number of points to generate")
	loadCmd.Flags().IntVarP(&numWorkers, "workers", "w", runtime.NumCPU(), "Number of worker goroutines")
	loadCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "Random seed")
	loadCmd.Flags().StringVar(&distribution, "distribution", "regions", "Random distribution: regions or uniform")
	loadCmd.Flags().StringVar(&geojsonFile, "geojson", "", "Import Point features from a GeoJSON file instead of generating")
	loadCmd.Flags().BoolVar(&fromPostGIS, "postgis", false, "Read points from the configured PostGIS table instead of generating")
	genBounds.register(loadCmd, models.BoundingBox{
		BottomLeft: models.Location{Lat: 25, Lon: -125},
		TopRight:   models.Location{Lat: 49, Lon: -66},
	})
}

func runLoad(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	start := time.Now()
	var points []*models.Point
	switch {
	case geojsonFile != "":
		log.Printf("Importing %s...", geojsonFile)
		f, err := os.Open(geojsonFile)
		if err != nil {
			return fmt.Errorf("failed to open geojson: %w", err)
		}
		defer f.Close()
		var skipped int
		points, skipped, err = dataset.ReadGeoJSON(f)
		if err != nil {
			return err
		}
		if skipped > 0 {
			log.Printf("Skipped %d non-point features", skipped)
		}
	case fromPostGIS:
		ctx, cancel := signalContext()
		defer cancel()
		store, err := postgis.Open(ctx, cfg.PostGIS)
		if err != nil {
			return err
		}
		defer store.Close()
		log.Printf("Reading points from PostGIS table %s...", cfg.PostGIS.Table)
		points, err = store.LoadPoints(ctx, genBounds.box())
		if err != nil {
			return err
		}
	default:
		log.Printf("Generating %d %s points with %d workers...", numPoints, distribution, numWorkers)
		switch distribution {
		case "regions":
			points = dataset.GenerateRegions(numPoints, numWorkers, seed)
		case "uniform":
			box := genBounds.box()
			log.Printf("Geographic bounds: lat[%.2f, %.2f], lon[%.2f, %.2f]",
				box.BottomLeft.Lat, box.TopRight.Lat, box.BottomLeft.Lon, box.TopRight.Lon)
			points = dataset.Generate(numPoints, box, numWorkers, seed)
		default:
			return fmt.Errorf("unknown distribution %q", distribution)
		}
	}
	log.Printf("Prepared %d points in %v", len(points), time.Since(start))

	start = time.Now()
	if err := dataset.Save(cfg.Dataset.Path, points); err != nil {
		return fmt.Errorf("failed to save dataset: %w", err)
	}
	log.Printf("Saved %s in %v", cfg.Dataset.Path, time.Since(start))

	if info, err := os.Stat(cfg.Dataset.Path); err == nil {
		log.Printf("Snapshot size: %.2f MB", float64(info.Size())/(1024*1024))
	}
	return nil
}
