package main

import (
	"math"
	"strconv"
	"strings"

	"github.com/1F47E/geo-cluster/pkg/cluster"
	"github.com/1F47E/geo-cluster/pkg/geo"
	"github.com/charmbracelet/lipgloss"
)

// A terminal character stands for this many screen pixels.
const (
	charWidth  = 8
	charHeight = 16
	maxZoom    = 19
)

// view is the part of the map shown on the terminal.
type view struct {
	center     geo.MapPoint
	zoom       int
	cols, rows int
	worldSize  float64
	tileSize   float64
}

func (v view) scale() float64 {
	return cluster.ZoomScaleForLevel(v.zoom, v.worldSize, v.tileSize)
}

// rect returns the viewport in map points.
func (v view) rect() geo.MapRect {
	s := v.scale()
	w := float64(v.cols*charWidth) / s
	h := float64(v.rows*charHeight) / s
	return geo.NewMapRect(v.center.X-w/2, v.center.Y-h/2, w, h)
}

// pan moves the center by fractions of the viewport size.
func (v view) pan(fx, fy float64) view {
	r := v.rect()
	v.center.X = clamp(v.center.X+fx*r.Width, 0, v.worldSize)
	v.center.Y = clamp(v.center.Y+fy*r.Height, 0, v.worldSize)
	return v
}

func (v view) zoomBy(d int) view {
	v.zoom = int(clamp(float64(v.zoom+d), 0, maxZoom))
	return v
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

type glyph struct {
	count int
}

// plot places annotations on a cols x rows character grid. Annotations that
// land on the same character are merged.
func plot[T any](annotations []cluster.Annotation[T], proj geo.Projection, v view) [][]glyph {
	grid := make([][]glyph, v.rows)
	for i := range grid {
		grid[i] = make([]glyph, v.cols)
	}

	r := v.rect()
	s := v.scale()
	for _, a := range annotations {
		p := proj.ToMapPoint(a.Coordinate)
		col := int(math.Floor((p.X - r.MinX()) * s / charWidth))
		row := int(math.Floor((p.Y - r.MinY()) * s / charHeight))
		if col < 0 || col >= v.cols || row < 0 || row >= v.rows {
			continue
		}
		grid[row][col].count += a.Count
	}
	return grid
}

var (
	emptyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#44475A"))
	singleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8BE9FD")).Bold(true)
	smallStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#50FA7B")).Bold(true)
	mediumStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB86C")).Bold(true)
	largeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5555")).Bold(true)
)

func symbol(count int) string {
	switch {
	case count == 0:
		return "·"
	case count == 1:
		return "•"
	case count < 10:
		return strconv.Itoa(count)
	case count < 100:
		return "+"
	default:
		return "#"
	}
}

func styleFor(count int) lipgloss.Style {
	switch {
	case count == 0:
		return emptyStyle
	case count == 1:
		return singleStyle
	case count < 10:
		return smallStyle
	case count < 100:
		return mediumStyle
	default:
		return largeStyle
	}
}

func renderGrid(grid [][]glyph) string {
	var b strings.Builder
	for i, row := range grid {
		for _, g := range row {
			b.WriteString(styleFor(g.count).Render(symbol(g.count)))
		}
		if i < len(grid)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
