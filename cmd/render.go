package main

import (
	"fmt"
	"image/color"
	"log"
	"os"

	"github.com/1F47E/geo-cluster/pkg/cluster"
	"github.com/1F47E/geo-cluster/pkg/geo"
	sm "github.com/flopp/go-staticmaps"
	"github.com/fogleman/gg"
	"github.com/golang/geo/s2"
	"github.com/spf13/cobra"
)

var (
	renderBounds boundsFlags
	renderZoom   zoomFlags
	renderOutput string
	renderWidth  int
	renderHeight int
	tileCacheDir string
)

var (
	pointColor   = color.RGBA{0x00, 0x78, 0xff, 0xff}
	clusterColor = color.RGBA{0xff, 0x50, 0x00, 0xff}
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the clustered markers of a viewport to a PNG",
	RunE:  runRender,
}

func init() {
	renderBounds.register(renderCmd, californiaBox)
	renderZoom.register(renderCmd)
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "clusters.png", "Output PNG path")
	renderCmd.Flags().IntVar(&renderWidth, "width", 1200, "Image width in pixels")
	renderCmd.Flags().IntVar(&renderHeight, "height", 900, "Image height in pixels")
	renderCmd.Flags().StringVar(&tileCacheDir, "tile-cache", "./cache", "Map tile cache directory")
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	engine, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	opts := engine.Options()
	box := renderBounds.box()
	scale := renderZoom.zoomScale(opts.WorldSize, opts.TileSize)
	annotations := engine.ClusteredAnnotations(geo.RectFromBounds(opts.Projection, box), scale)

	ctx := sm.NewContext()
	ctx.SetSize(renderWidth, renderHeight)
	ctx.SetCache(sm.NewTileCache(tileCacheDir, 0755))
	ctx.SetBoundingBox(s2.RectFromLatLng(s2.LatLngFromDegrees(box.BottomLeft.Lat, box.BottomLeft.Lon)).
		AddPoint(s2.LatLngFromDegrees(box.TopRight.Lat, box.TopRight.Lon)))

	for _, a := range annotations {
		c, size := pointColor, float64(cluster.MarkerSize(1, 12, 0))
		if a.IsCluster() {
			c, size = clusterColor, float64(cluster.MarkerSize(a.Count, 16, 0.05))
		}
		ctx.AddObject(sm.NewMarker(s2.LatLngFromDegrees(a.Coordinate.Lat, a.Coordinate.Lon), c, size))
	}

	img, err := ctx.Render()
	if err != nil {
		return fmt.Errorf("failed to render map: %w", err)
	}

	dc := gg.NewContextForImage(img)
	dc.SetRGBA(1, 1, 1, 0.8)
	dc.DrawRectangle(0, 0, 260, 24)
	dc.Fill()
	dc.SetRGB(0, 0, 0)
	dc.DrawString(fmt.Sprintf("zoom %d, %d markers",
		cluster.ZoomLevel(scale, opts.WorldSize, opts.TileSize), len(annotations)), 8, 16)

	if err := dc.SavePNG(renderOutput); err != nil {
		return fmt.Errorf("failed to save png: %w", err)
	}
	if info, err := os.Stat(renderOutput); err == nil {
		log.Printf("Saved %s (%d markers, %.1f KB)", renderOutput, len(annotations), float64(info.Size())/1024)
	}
	return nil
}
