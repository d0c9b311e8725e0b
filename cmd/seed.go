package main

import (
	"fmt"
	"log"
	"time"

	"github.com/1F47E/geo-cluster/pkg/dataset"
	"github.com/1F47E/geo-cluster/pkg/postgis"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Copy the dataset snapshot into PostGIS",
	Long:  `Recreate the configured PostGIS table and bulk insert every point of the dataset snapshot.`,
	RunE:  runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	points, err := dataset.Load(cfg.Dataset.Path)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}
	log.Printf("Loaded %d points from %s", len(points), cfg.Dataset.Path)

	ctx, cancel := signalContext()
	defer cancel()

	store, err := postgis.Open(ctx, cfg.PostGIS)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.InitSchema(ctx); err != nil {
		return err
	}

	start := time.Now()
	inserted, err := store.BulkInsertPoints(ctx, points)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)
	log.Printf("Inserted %d points in %v (%.0f points/sec)", inserted, elapsed, float64(inserted)/elapsed.Seconds())

	stats, err := store.Stats(ctx)
	if err != nil {
		return err
	}
	fmt.Println(stat("Rows", stats["row_count"]))
	fmt.Println(stat("Table size", stats["table_size"]))
	fmt.Println(stat("Index size", stats["index_size"]))
	return nil
}
