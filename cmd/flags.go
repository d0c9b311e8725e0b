package main

import (
	"github.com/1F47E/geo-cluster/pkg/cluster"
	"github.com/1F47E/geo-cluster/pkg/models"
	"github.com/spf13/cobra"
)

// boundsFlags binds --north, --south, --east and --west to a command.
type boundsFlags struct {
	north, south, east, west float64
}

func (b *boundsFlags) register(cmd *cobra.Command, def models.BoundingBox) {
	cmd.Flags().Float64Var(&b.north, "north", def.TopRight.Lat, "Maximum latitude")
	cmd.Flags().Float64Var(&b.south, "south", def.BottomLeft.Lat, "Minimum latitude")
	cmd.Flags().Float64Var(&b.east, "east", def.TopRight.Lon, "Maximum longitude")
	cmd.Flags().Float64Var(&b.west, "west", def.BottomLeft.Lon, "Minimum longitude")
}

func (b *boundsFlags) box() models.BoundingBox {
	return models.BoundingBox{
		BottomLeft: models.Location{Lat: b.south, Lon: b.west},
		TopRight:   models.Location{Lat: b.north, Lon: b.east},
	}
}

// zoomFlags binds --zoom and --zoom-scale; a positive zoom scale wins.
type zoomFlags struct {
	level int
	scale float64
}

func (z *zoomFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&z.level, "zoom", "z", 5, "Zoom level")
	cmd.Flags().Float64Var(&z.scale, "zoom-scale", 0, "Zoom scale in screen pixels per map point (overrides --zoom)")
}

func (z *zoomFlags) zoomScale(worldSize, tileSize float64) float64 {
	if z.scale > 0 {
		return z.scale
	}
	return cluster.ZoomScaleForLevel(z.level, worldSize, tileSize)
}
