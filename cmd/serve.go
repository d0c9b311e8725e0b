package main

import (
	"fmt"
	"log"
	"time"

	"github.com/1F47E/geo-cluster/pkg/cluster"
	"github.com/1F47E/geo-cluster/pkg/dataset"
	"github.com/1F47E/geo-cluster/pkg/models"
	"github.com/1F47E/geo-cluster/pkg/postgis"
	"github.com/1F47E/geo-cluster/pkg/server"
	"github.com/spf13/cobra"
)

var (
	serveAddr     string
	serveFromPGIS bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve clustered markers over HTTP",
	Long: `Index the dataset snapshot (or the PostGIS table with --postgis) and serve
GET /api/clusters, GET /api/stats and the GET /map preview.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides server.addr)")
	serveCmd.Flags().BoolVar(&serveFromPGIS, "postgis", false, "Index the configured PostGIS table instead of the snapshot")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	ctx, cancel := signalContext()
	defer cancel()

	var engine *cluster.Engine[models.Properties]
	if serveFromPGIS {
		opts, err := cfg.EngineOptions()
		if err != nil {
			return err
		}
		opts.Logger = log.Default()
		engine, err = cluster.NewEngine[models.Properties](opts)
		if err != nil {
			return err
		}

		store, err := postgis.Open(ctx, cfg.PostGIS)
		if err != nil {
			return err
		}
		start := time.Now()
		points, err := store.LoadPoints(ctx, models.WorldBounds)
		store.Close()
		if err != nil {
			return fmt.Errorf("failed to load points from postgis: %w", err)
		}
		log.Printf("Loaded %d points from PostGIS in %v", len(points), time.Since(start))
		if err := engine.BuildTree(dataset.ToQuadtree(points)); err != nil {
			return err
		}
	} else {
		engine, err = buildEngine(cfg)
		if err != nil {
			return err
		}
	}

	return server.New(engine).Run(ctx, cfg.Server.Addr)
}
