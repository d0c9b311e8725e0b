package server

import (
	"fmt"
	"net/http"

	"github.com/1F47E/geo-cluster/pkg/cluster"
	"github.com/1F47E/geo-cluster/pkg/models"
	"github.com/gin-gonic/gin"
	"github.com/morikuni/go-geoplot"
)

var (
	pointIcon   = geoplot.ColorIcon(0, 120, 255)
	clusterIcon = geoplot.ColorIcon(255, 80, 0)
)

// handleMap renders the same query as /api/clusters on an interactive map.
func (s *Server) handleMap(c *gin.Context) {
	annotations, q, ok := s.annotate(c)
	if !ok {
		return
	}
	opts := s.engine.Options()

	center := &geoplot.LatLng{
		Latitude:  (q.bounds.BottomLeft.Lat + q.bounds.TopRight.Lat) / 2,
		Longitude: (q.bounds.BottomLeft.Lon + q.bounds.TopRight.Lon) / 2,
	}
	m := &geoplot.Map{
		Center: center,
		Zoom:   cluster.ZoomLevel(q.zoomScale, opts.WorldSize, opts.TileSize),
		Area: &geoplot.Area{
			From: &geoplot.LatLng{Latitude: q.bounds.BottomLeft.Lat, Longitude: q.bounds.BottomLeft.Lon},
			To:   &geoplot.LatLng{Latitude: q.bounds.TopRight.Lat, Longitude: q.bounds.TopRight.Lon},
		},
	}
	for _, a := range annotations {
		m.AddMarker(marker(a))
	}

	if err := geoplot.ServeMap(c.Writer, c.Request, m); err != nil {
		c.String(http.StatusInternalServerError, err.Error())
	}
}

func marker(a cluster.Annotation[models.Properties]) *geoplot.Marker {
	m := &geoplot.Marker{
		LatLng: &geoplot.LatLng{Latitude: a.Coordinate.Lat, Longitude: a.Coordinate.Lon},
	}
	if a.IsCluster() {
		m.Tooltip = a.Title
		m.Icon = clusterIcon
		return m
	}
	m.Tooltip = a.ID
	m.Icon = pointIcon
	if name, ok := a.Payload["name"]; ok {
		m.Popup = fmt.Sprint(name)
	}
	return m
}
