// Package postgis stores dataset points in a PostGIS table and loads them back
// for indexing.
package postgis

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/1F47E/geo-cluster/pkg/config"
	"github.com/1F47E/geo-cluster/pkg/models"
	"github.com/lib/pq"
)

const batchSize = 10000

// Store is a point table in a PostGIS database.
type Store struct {
	db    *sql.DB
	table string
}

// Open connects using cfg and verifies the connection.
func Open(ctx context.Context, cfg config.PostGIS) (*Store, error) {
	return OpenDSN(ctx, cfg.DSN(), cfg.Table, cfg.MaxConnections)
}

// OpenDSN connects to dsn and uses table for points.
func OpenDSN(ctx context.Context, dsn, table string, maxConns int) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if maxConns <= 0 {
		maxConns = 25
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)
	db.SetConnMaxLifetime(5 * time.Minute)

	if table == "" {
		table = "points"
	}
	return &Store{db: db, table: table}, nil
}

func (s *Store) quotedTable() string {
	return pq.QuoteIdentifier(s.table)
}

// InitSchema recreates the point table and its spatial index.
func (s *Store) InitSchema(ctx context.Context) error {
	table := s.quotedTable()
	queries := []string{
		`CREATE EXTENSION IF NOT EXISTS postgis;`,
		fmt.Sprintf(`DROP TABLE IF EXISTS %s;`, table),
		fmt.Sprintf(`CREATE TABLE %s (
			id TEXT PRIMARY KEY,
			location GEOMETRY(POINT, 4326) NOT NULL,
			properties JSONB
		);`, table),
		fmt.Sprintf(`CREATE INDEX %s ON %s USING GIST(location);`,
			pq.QuoteIdentifier("idx_"+s.table+"_location"), table),
	}

	for _, query := range queries {
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query '%s': %w", query, err)
		}
	}
	return nil
}

// BulkInsertPoints inserts points in batched transactions. Points without a
// location are skipped; the number inserted is returned.
func (s *Store) BulkInsertPoints(ctx context.Context, points []*models.Point) (int, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, location, properties)
		VALUES ($1, ST_SetSRID(ST_MakePoint($2, $3), 4326), $4)
	`, s.quotedTable())

	inserted := 0
	for start := 0; start < len(points); start += batchSize {
		end := min(start+batchSize, len(points))
		n, err := s.insertBatch(ctx, query, points[start:end])
		inserted += n
		if err != nil {
			return inserted, err
		}
	}
	return inserted, nil
}

func (s *Store) insertBatch(ctx context.Context, query string, batch []*models.Point) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	n := 0
	for _, point := range batch {
		if point.Location == nil {
			continue
		}
		var props sql.NullString
		if len(point.Properties) > 0 {
			data, err := json.Marshal(point.Properties)
			if err != nil {
				return 0, fmt.Errorf("failed to marshal properties of %s: %w", point.ID, err)
			}
			props = sql.NullString{String: string(data), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, point.ID, point.Location.Lon, point.Location.Lat, props); err != nil {
			return 0, fmt.Errorf("failed to insert point %s: %w", point.ID, err)
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit batch: %w", err)
	}
	return n, nil
}

// LoadPoints returns the points inside box, edges included.
func (s *Store) LoadPoints(ctx context.Context, box models.BoundingBox) ([]*models.Point, error) {
	query := fmt.Sprintf(`
		SELECT id, ST_Y(location) AS lat, ST_X(location) AS lon, properties::text
		FROM %s
		WHERE location && ST_MakeEnvelope($1, $2, $3, $4, 4326)
		ORDER BY id
	`, s.quotedTable())

	rows, err := s.db.QueryContext(ctx, query,
		box.BottomLeft.Lon, box.BottomLeft.Lat,
		box.TopRight.Lon, box.TopRight.Lat)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	results := []*models.Point{}
	for rows.Next() {
		var (
			id       string
			lat, lon float64
			props    sql.NullString
		)
		if err := rows.Scan(&id, &lat, &lon, &props); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		p := &models.Point{ID: id, Location: &models.Location{Lat: lat, Lon: lon}}
		if props.Valid {
			if err := json.Unmarshal([]byte(props.String), &p.Properties); err != nil {
				return nil, fmt.Errorf("failed to decode properties of %s: %w", id, err)
			}
		}
		results = append(results, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return results, nil
}

// Count returns the number of stored points.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", s.quotedTable())).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count points: %w", err)
	}
	return count, nil
}

// Stats returns the database and table sizes.
func (s *Store) Stats(ctx context.Context) (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var dbSize string
	err := s.db.QueryRowContext(ctx, `SELECT pg_size_pretty(pg_database_size(current_database()))`).Scan(&dbSize)
	if err != nil {
		return nil, fmt.Errorf("failed to get database size: %w", err)
	}
	stats["database_size"] = dbSize

	var tableSize, indexSize string
	err = s.db.QueryRowContext(ctx, `
		SELECT
			pg_size_pretty(pg_total_relation_size($1::regclass)),
			pg_size_pretty(pg_indexes_size($1::regclass))
	`, s.quotedTable()).Scan(&tableSize, &indexSize)
	if err != nil {
		// table might not exist yet
		stats["table_size"] = "0 bytes"
		stats["index_size"] = "0 bytes"
	} else {
		stats["table_size"] = tableSize
		stats["index_size"] = indexSize
	}

	count, _ := s.Count(ctx)
	stats["row_count"] = count
	return stats, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
