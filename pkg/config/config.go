// Package config loads the YAML configuration shared by the executables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/1F47E/geo-cluster/pkg/cluster"
	"github.com/1F47E/geo-cluster/pkg/geo"
	"github.com/1F47E/geo-cluster/pkg/i18n"
	"github.com/1F47E/geo-cluster/pkg/quadtree"
	"gopkg.in/yaml.v3"
)

// Config is the root of config.yaml.
type Config struct {
	Index struct {
		Backend     string `yaml:"backend"`
		Capacity    int    `yaml:"capacity"`
		WorldBounds Bounds `yaml:"world_bounds"`
	} `yaml:"index"`
	Map struct {
		WorldSize float64 `yaml:"world_size"`
		TileSize  float64 `yaml:"tile_size"`
	} `yaml:"map"`
	Locale  string `yaml:"locale"`
	Dataset struct {
		Path string `yaml:"path"`
	} `yaml:"dataset"`
	PostGIS PostGIS `yaml:"postgis"`
	Server  struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
}

// Bounds is a geographic box in degrees.
type Bounds struct {
	MinLat float64 `yaml:"min_lat"`
	MaxLat float64 `yaml:"max_lat"`
	MinLon float64 `yaml:"min_lon"`
	MaxLon float64 `yaml:"max_lon"`
}

// Box converts b into an index box with latitude on X.
func (b Bounds) Box() quadtree.BoundingBox {
	return quadtree.BoundingBox{X0: b.MinLat, X1: b.MaxLat, Y0: b.MinLon, Y1: b.MaxLon}
}

// PostGIS holds the connection settings of the database point source.
type PostGIS struct {
	Host              string `yaml:"host"`
	Port              int    `yaml:"port"`
	User              string `yaml:"user"`
	Password          string `yaml:"password"`
	Database          string `yaml:"database"`
	Table             string `yaml:"table"`
	SSLMode           string `yaml:"sslmode"`
	MaxConnections    int    `yaml:"max_connections"`
	ConnectionTimeout int    `yaml:"connection_timeout"`
}

// Default returns the built-in configuration.
func Default() *Config {
	c := &Config{}
	c.Index.Backend = string(cluster.BackendQuadtree)
	c.Index.Capacity = cluster.DefaultCapacity
	c.Index.WorldBounds = Bounds{MinLat: -90, MaxLat: 90, MinLon: -180, MaxLon: 180}
	c.Map.WorldSize = geo.WorldSize
	c.Map.TileSize = geo.TileSize
	c.Locale = "en"
	c.Dataset.Path = "data/points.gob.zst"
	c.PostGIS = PostGIS{
		Host:              "localhost",
		Port:              5432,
		User:              "postgres",
		Database:          "geocluster",
		Table:             "points",
		SSLMode:           "disable",
		MaxConnections:    10,
		ConnectionTimeout: 5,
	}
	c.Server.Addr = ":8000"
	return c
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	c := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the index, map and locale settings.
func (c *Config) Validate() error {
	if _, err := cluster.ParseBackend(c.Index.Backend); err != nil {
		return fmt.Errorf("index.backend: %w", err)
	}
	if c.Index.Capacity < 1 {
		return fmt.Errorf("index.capacity %d: %w", c.Index.Capacity, quadtree.ErrInvalidCapacity)
	}
	if box := c.Index.WorldBounds.Box(); !box.Valid() {
		return fmt.Errorf("index.world_bounds %s: %w", box, quadtree.ErrInvalidBounds)
	}
	if !(c.Map.WorldSize > 0) || !(c.Map.TileSize > 0) {
		return fmt.Errorf("map: %w", cluster.ErrInvalidMapSize)
	}
	if _, err := i18n.New(c.Locale); err != nil {
		return fmt.Errorf("locale: %w", err)
	}
	return nil
}

// EngineOptions translates the index and map sections into engine options.
func (c *Config) EngineOptions() (cluster.Options, error) {
	backend, err := cluster.ParseBackend(c.Index.Backend)
	if err != nil {
		return cluster.Options{}, err
	}
	localizer, err := i18n.New(c.Locale)
	if err != nil {
		return cluster.Options{}, err
	}
	return cluster.Options{
		WorldBounds: c.Index.WorldBounds.Box(),
		Capacity:    c.Index.Capacity,
		WorldSize:   c.Map.WorldSize,
		TileSize:    c.Map.TileSize,
		Projection:  geo.WebMercator{WorldSize: c.Map.WorldSize},
		Localizer:   localizer,
		Backend:     backend,
	}, nil
}

// DSN returns the lib/pq connection string.
func (p PostGIS) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s connect_timeout=%d",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode, p.ConnectionTimeout)
}
