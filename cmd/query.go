package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/1F47E/geo-cluster/pkg/cluster"
	"github.com/1F47E/geo-cluster/pkg/geo"
	"github.com/1F47E/geo-cluster/pkg/models"
	"github.com/1F47E/geo-cluster/pkg/quadtree"
	"github.com/spf13/cobra"
)

var californiaBox = models.BoundingBox{
	BottomLeft: models.Location{Lat: 32, Lon: -125},
	TopRight:   models.Location{Lat: 42, Lon: -114},
}

var (
	viewBounds   boundsFlags
	queryArea    boundsFlags
	viewZoom     zoomFlags
	outputFormat string
	limit        int
)

var clusterCmd = &cobra.Command{
	Use:   "cluster",
	Short: "Cluster the points visible in a viewport",
	Long:  `Build the index from the dataset snapshot and print the markers of one viewport at one zoom level.`,
	RunE:  runCluster,
}

func init() {
	viewBounds.register(clusterCmd, californiaBox)
	viewZoom.register(clusterCmd)
	clusterCmd.Flags().StringVarP(&outputFormat, "output", "o", "text", "Output format: text, json or geojson")
	clusterCmd.Flags().IntVarP(&limit, "limit", "l", 50, "Maximum number of markers printed in text mode (0 for all)")
}

func runCluster(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	engine, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	opts := engine.Options()
	viewport := geo.RectFromBounds(opts.Projection, viewBounds.box())
	scale := viewZoom.zoomScale(opts.WorldSize, opts.TileSize)

	grid, ok := engine.GridFor(viewport, scale)
	if !ok {
		return fmt.Errorf("invalid zoom scale %v", scale)
	}

	start := time.Now()
	annotations := engine.ClusteredAnnotations(viewport, scale)
	elapsed := time.Since(start)

	switch outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(annotations)
	case "geojson":
		data, err := cluster.FeatureCollection(annotations).MarshalJSON()
		if err != nil {
			return fmt.Errorf("failed to marshal geojson: %w", err)
		}
		_, err = os.Stdout.Write(append(data, '\n'))
		return err
	case "text":
	default:
		return fmt.Errorf("unknown output format %q", outputFormat)
	}

	fmt.Println(titleStyle.Render("Clustered markers"))
	fmt.Println(stat("Zoom level", grid.Level))
	fmt.Println(stat("Cell size", fmt.Sprintf("%.0fpx", grid.CellSize)))
	fmt.Println(stat("Grid", fmt.Sprintf("%dx%d cells", grid.MaxX-grid.MinX+1, grid.MaxY-grid.MinY+1)))
	fmt.Println(stat("Query time", elapsed))

	clusters, singles, total := 0, 0, 0
	for i, a := range annotations {
		total += a.Count
		if a.IsCluster() {
			clusters++
		} else {
			singles++
		}
		if limit > 0 && i >= limit {
			continue
		}
		if a.IsCluster() {
			fmt.Println(clusterStyle.Render(a.String()) + " " + labelStyle.Render(a.Title))
		} else {
			fmt.Println(pointStyle.Render(a.String()))
		}
	}
	if limit > 0 && len(annotations) > limit {
		fmt.Println(labelStyle.Render(fmt.Sprintf("... %d more", len(annotations)-limit)))
	}
	fmt.Println(stat("Markers", fmt.Sprintf("%d (%d clusters, %d single points)", len(annotations), clusters, singles)))
	fmt.Println(stat("Points covered", total))
	return nil
}

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "List the points inside a bounding box",
	RunE:  runQuery,
}

func init() {
	queryArea.register(queryCmd, californiaBox)
	queryCmd.Flags().IntVarP(&limit, "limit", "l", 50, "Maximum number of points printed (0 for all)")
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	tree, err := buildTree(cfg)
	if err != nil {
		return err
	}

	b := queryArea.box()
	box := quadtree.BoundingBox{X0: b.BottomLeft.Lat, X1: b.TopRight.Lat, Y0: b.BottomLeft.Lon, Y1: b.TopRight.Lon}

	start := time.Now()
	var found []quadtree.Point[models.Properties]
	tree.Gather(box, func(p quadtree.Point[models.Properties]) {
		found = append(found, p)
	})
	elapsed := time.Since(start)

	fmt.Println(titleStyle.Render("Range query " + box.String()))
	for i, p := range found {
		if limit > 0 && i >= limit {
			fmt.Println(labelStyle.Render(fmt.Sprintf("... %d more", len(found)-limit)))
			break
		}
		fmt.Println(pointStyle.Render(fmt.Sprintf("%s {%.6f, %.6f}", p.ID, p.X, p.Y)))
	}
	fmt.Println(stat("Points found", len(found)))
	fmt.Println(stat("Query time", elapsed))
	if verbose {
		fmt.Println(stat("Tree depth", tree.Depth()))
	}
	return nil
}

var (
	centerLat    float64
	centerLon    float64
	searchRadius float64
	numNeighbors int
)

var radiusCmd = &cobra.Command{
	Use:   "radius",
	Short: "List the points within a radius of a location",
	RunE:  runRadius,
}

var nearestCmd = &cobra.Command{
	Use:   "nearest",
	Short: "Find the nearest points to a location",
	RunE:  runNearest,
}

func init() {
	for _, cmd := range []*cobra.Command{radiusCmd, nearestCmd} {
		cmd.Flags().Float64Var(&centerLat, "lat", 37.7749, "Latitude of the query location")
		cmd.Flags().Float64Var(&centerLon, "lon", -122.4194, "Longitude of the query location")
	}
	radiusCmd.Flags().Float64VarP(&searchRadius, "radius", "r", 50.0, "Search radius in km")
	radiusCmd.Flags().IntVarP(&limit, "limit", "l", 50, "Maximum number of points printed (0 for all)")
	nearestCmd.Flags().IntVarP(&numNeighbors, "neighbors", "n", 10, "Number of nearest neighbors to find")
}

func runRadius(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	tree, err := buildTree(cfg)
	if err != nil {
		return err
	}

	center := models.Location{Lat: centerLat, Lon: centerLon}
	start := time.Now()
	var found []quadtree.Neighbor[models.Properties]
	tree.GatherRadius(center, searchRadius, func(p quadtree.Point[models.Properties], d float64) {
		found = append(found, quadtree.Neighbor[models.Properties]{Point: p, DistanceKM: d})
	})
	elapsed := time.Since(start)

	fmt.Println(titleStyle.Render(fmt.Sprintf("Points within %.1f km of {%.4f, %.4f}", searchRadius, centerLat, centerLon)))
	printNeighbors(found)
	fmt.Println(stat("Points found", len(found)))
	fmt.Println(stat("Query time", elapsed))
	return nil
}

func runNearest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	tree, err := buildTree(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	start := time.Now()
	found := tree.Nearest(ctx, models.Location{Lat: centerLat, Lon: centerLon}, numNeighbors)
	elapsed := time.Since(start)

	fmt.Println(titleStyle.Render(fmt.Sprintf("%d nearest points to {%.4f, %.4f}", numNeighbors, centerLat, centerLon)))
	limit = 0
	printNeighbors(found)
	fmt.Println(stat("Query time", elapsed))
	return nil
}

func printNeighbors(found []quadtree.Neighbor[models.Properties]) {
	for i, n := range found {
		if limit > 0 && i >= limit {
			fmt.Println(labelStyle.Render(fmt.Sprintf("... %d more", len(found)-limit)))
			return
		}
		fmt.Println(pointStyle.Render(fmt.Sprintf("%-16s {%.6f, %.6f} %8.2f km", n.Point.ID, n.Point.X, n.Point.Y, n.DistanceKM)))
	}
}
