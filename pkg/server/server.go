// Package server exposes the clustering engine over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/1F47E/geo-cluster/pkg/cluster"
	"github.com/1F47E/geo-cluster/pkg/geo"
	"github.com/1F47E/geo-cluster/pkg/models"
	"github.com/gin-gonic/gin"
)

// MaxCells bounds the grid a single request may ask for.
const MaxCells = 250000

// Engine is the engine type served over HTTP.
type Engine = cluster.Engine[models.Properties]

// Server routes cluster queries to an engine.
type Server struct {
	engine *Engine
	router *gin.Engine
}

// New builds the router for engine.
func New(engine *Engine) *Server {
	s := &Server{engine: engine}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), cors)

	api := r.Group("/api")
	api.GET("/clusters", s.handleClusters)
	api.GET("/stats", s.handleStats)
	r.GET("/map", s.handleMap)

	s.router = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting server on %s...", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		log.Println("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func cors(c *gin.Context) {
	c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
	c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type")

	if c.Request.Method == http.MethodOptions {
		c.AbortWithStatus(http.StatusNoContent)
		return
	}
	c.Next()
}

// query is a parsed viewport request.
type query struct {
	bounds    models.BoundingBox
	zoomScale float64
}

func parseFloat(c *gin.Context, name string) (float64, error) {
	v, err := strconv.ParseFloat(c.Query(name), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s parameter", name)
	}
	return v, nil
}

func (s *Server) parseQuery(c *gin.Context) (query, error) {
	var q query
	var err error

	north, err := parseFloat(c, "north")
	if err != nil {
		return q, err
	}
	south, err := parseFloat(c, "south")
	if err != nil {
		return q, err
	}
	east, err := parseFloat(c, "east")
	if err != nil {
		return q, err
	}
	west, err := parseFloat(c, "west")
	if err != nil {
		return q, err
	}
	if south > north || west > east {
		return q, fmt.Errorf("south must not exceed north and west must not exceed east")
	}
	if south < -90 || north > 90 || west < -180 || east > 180 {
		return q, fmt.Errorf("bounds outside the valid coordinate range")
	}
	q.bounds = models.BoundingBox{
		BottomLeft: models.Location{Lat: south, Lon: west},
		TopRight:   models.Location{Lat: north, Lon: east},
	}

	opts := s.engine.Options()
	switch {
	case c.Query("zoom_scale") != "":
		q.zoomScale, err = parseFloat(c, "zoom_scale")
		if err != nil {
			return q, err
		}
		if !(q.zoomScale > 0) {
			return q, fmt.Errorf("zoom_scale must be positive")
		}
	case c.Query("zoom") != "":
		zoom, err := strconv.Atoi(c.Query("zoom"))
		if err != nil || zoom < 0 || zoom > 30 {
			return q, fmt.Errorf("invalid zoom parameter")
		}
		q.zoomScale = cluster.ZoomScaleForLevel(zoom, opts.WorldSize, opts.TileSize)
	default:
		return q, fmt.Errorf("zoom or zoom_scale is required")
	}
	return q, nil
}

func (s *Server) annotate(c *gin.Context) ([]cluster.Annotation[models.Properties], query, bool) {
	if !s.engine.Ready() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "index not ready"})
		return nil, query{}, false
	}

	q, err := s.parseQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, q, false
	}

	viewport := geo.RectFromBounds(s.engine.Options().Projection, q.bounds)
	grid, ok := s.engine.GridFor(viewport, q.zoomScale)
	if !ok || grid.Cells() > MaxCells {
		c.JSON(http.StatusBadRequest, gin.H{"error": "viewport too large for zoom"})
		return nil, q, false
	}

	annotations := s.engine.ClusteredAnnotations(viewport, q.zoomScale)
	if annotations == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "index not ready"})
		return nil, q, false
	}
	return annotations, q, true
}

func (s *Server) handleClusters(c *gin.Context) {
	annotations, _, ok := s.annotate(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, cluster.FeatureCollection(annotations))
}

func (s *Server) handleStats(c *gin.Context) {
	opts := s.engine.Options()
	c.JSON(http.StatusOK, gin.H{
		"ready":    s.engine.Ready(),
		"points":   s.engine.Len(),
		"dropped":  s.engine.Dropped(),
		"backend":  opts.Backend,
		"capacity": opts.Capacity,
	})
}
