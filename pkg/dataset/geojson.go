package dataset

import (
	"fmt"
	"io"
	"strconv"

	"github.com/1F47E/geo-cluster/pkg/models"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ReadGeoJSON imports the Point features of a FeatureCollection. Features
// with any other geometry are skipped and counted in the second result.
// The point id is taken from the feature id, then from an "id" property.
func ReadGeoJSON(r io.Reader) ([]*models.Point, int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read geojson: %w", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to parse geojson: %w", err)
	}

	points := make([]*models.Point, 0, len(fc.Features))
	skipped := 0
	for _, f := range fc.Features {
		pt, ok := f.Geometry.(orb.Point)
		if !ok {
			skipped++
			continue
		}

		props := models.Properties(f.Properties)
		id := featureID(f.ID)
		if id == "" {
			id = featureID(props["id"])
		}
		if len(props) == 0 {
			props = nil
		}
		points = append(points, &models.Point{
			ID:         id,
			Location:   &models.Location{Lat: pt.Lat(), Lon: pt.Lon()},
			Properties: props,
		})
	}
	return points, skipped, nil
}

func featureID(v interface{}) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case int:
		return strconv.Itoa(id)
	default:
		return ""
	}
}

// WriteGeoJSON exports points with a location as a FeatureCollection.
func WriteGeoJSON(w io.Writer, points []*models.Point) error {
	fc := geojson.NewFeatureCollection()
	for _, p := range points {
		if p.Location == nil {
			continue
		}
		f := geojson.NewFeature(orb.Point{p.Location.Lon, p.Location.Lat})
		f.ID = p.ID
		for k, v := range p.Properties {
			f.Properties[k] = v
		}
		fc.Append(f)
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal geojson: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write geojson: %w", err)
	}
	return nil
}
