// Package dataset reads, writes and generates point datasets.
//
// Snapshots are gob streams, zstd-compressed when the file name ends in .zst.
// Only raw points are stored; indexes are always rebuilt from them.
package dataset

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/1F47E/geo-cluster/pkg/models"
	"github.com/klauspost/compress/zstd"
)

const (
	snapshotVersion = 1
	// maxPrealloc caps the slice capacity taken from a snapshot header.
	maxPrealloc = 1 << 20
)

var (
	// ErrUnsupportedVersion is returned for snapshots written by a newer format.
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")
	// ErrCorruptSnapshot is returned for a header that cannot describe a snapshot.
	ErrCorruptSnapshot = errors.New("corrupt snapshot")
)

type header struct {
	Version int
	Count   int
}

// record is the gob form of a point. Properties travel as JSON so that gob
// never has to know the dynamic types inside them.
type record struct {
	ID          string
	HasLocation bool
	Lat, Lon    float64
	Properties  []byte
}

func compressed(path string) bool {
	return strings.HasSuffix(path, ".zst")
}

// Save writes points to path, creating parent directories as needed.
func Save(path string, points []*models.Point) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	bufWriter := bufio.NewWriterSize(file, 1024*1024)
	var w io.Writer = bufWriter
	var enc *zstd.Encoder
	if compressed(path) {
		enc, err = zstd.NewWriter(bufWriter, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
		if err != nil {
			return fmt.Errorf("failed to create zstd writer: %w", err)
		}
		w = enc
	}

	if err := Encode(w, points); err != nil {
		if enc != nil {
			enc.Close()
		}
		return err
	}

	if enc != nil {
		if err := enc.Close(); err != nil {
			return fmt.Errorf("failed to close encoder: %w", err)
		}
	}
	if err := bufWriter.Flush(); err != nil {
		return fmt.Errorf("failed to flush buffer: %w", err)
	}
	return file.Close()
}

// Encode writes an uncompressed snapshot stream to w.
func Encode(w io.Writer, points []*models.Point) error {
	encoder := gob.NewEncoder(w)
	if err := encoder.Encode(header{Version: snapshotVersion, Count: len(points)}); err != nil {
		return fmt.Errorf("failed to encode header: %w", err)
	}

	for _, p := range points {
		rec := record{ID: p.ID}
		if p.Location != nil {
			rec.HasLocation = true
			rec.Lat, rec.Lon = p.Location.Lat, p.Location.Lon
		}
		if len(p.Properties) > 0 {
			data, err := json.Marshal(p.Properties)
			if err != nil {
				return fmt.Errorf("failed to marshal properties of %s: %w", p.ID, err)
			}
			rec.Properties = data
		}
		if err := encoder.Encode(&rec); err != nil {
			return fmt.Errorf("failed to encode point %s: %w", p.ID, err)
		}
	}
	return nil
}

// Load reads a snapshot written by Save.
func Load(path string) ([]*models.Point, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var r io.Reader = bufio.NewReaderSize(file, 1024*1024)
	if compressed(path) {
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd reader: %w", err)
		}
		defer dec.Close()
		r = dec
	}
	return Decode(r)
}

// Decode reads an uncompressed snapshot stream from r.
func Decode(r io.Reader) ([]*models.Point, error) {
	decoder := gob.NewDecoder(r)

	var h header
	if err := decoder.Decode(&h); err != nil {
		return nil, fmt.Errorf("failed to decode header: %w", err)
	}
	if h.Version > snapshotVersion {
		return nil, fmt.Errorf("version %d: %w", h.Version, ErrUnsupportedVersion)
	}

	if h.Count < 0 {
		return nil, fmt.Errorf("negative point count %d: %w", h.Count, ErrCorruptSnapshot)
	}

	points := make([]*models.Point, 0, min(h.Count, maxPrealloc))
	for i := 0; i < h.Count; i++ {
		var rec record
		if err := decoder.Decode(&rec); err != nil {
			return nil, fmt.Errorf("failed to decode point %d: %w", i, err)
		}

		p := &models.Point{ID: rec.ID}
		if rec.HasLocation {
			p.Location = &models.Location{Lat: rec.Lat, Lon: rec.Lon}
		}
		if len(rec.Properties) > 0 {
			if err := json.Unmarshal(rec.Properties, &p.Properties); err != nil {
				return nil, fmt.Errorf("failed to unmarshal properties of %s: %w", rec.ID, err)
			}
		}
		points = append(points, p)
	}
	return points, nil
}
