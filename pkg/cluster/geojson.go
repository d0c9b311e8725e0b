package cluster

import (
	"github.com/1F47E/geo-cluster/pkg/models"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// FeatureCollection converts annotations into GeoJSON point features.
// Single points carry their payload properties when the payload is a property map.
func FeatureCollection[T any](annotations []Annotation[T]) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, a := range annotations {
		f := geojson.NewFeature(orb.Point{a.Coordinate.Lon, a.Coordinate.Lat})
		if a.Kind == SinglePoint {
			switch props := any(a.Payload).(type) {
			case models.Properties:
				for k, v := range props {
					f.Properties[k] = v
				}
			case map[string]interface{}:
				for k, v := range props {
					f.Properties[k] = v
				}
			}
			f.ID = a.ID
			f.Properties["id"] = a.ID
		}
		f.Properties["cluster"] = a.Kind == Cluster
		f.Properties["point_count"] = a.Count
		if a.Title != "" {
			f.Properties["title"] = a.Title
		}
		fc.Append(f)
	}
	return fc
}
