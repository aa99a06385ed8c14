package dataset

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/samirrijal/jelajah/internal/core/domain"
	"github.com/samirrijal/jelajah/internal/pkg/httpx"
)

// MaxDownloadBytes caps a dataset fetched over http(s).
const MaxDownloadBytes = 64 << 20

// PropertyKeys lists the feature properties consulted, in order, for each field.
type PropertyKeys struct {
	Name        []string
	Description []string
}

// DefaultPropertyKeys accepts both English keys and the Indonesian keys used
// by the regional tourism datasets.
func DefaultPropertyKeys() PropertyKeys {
	return PropertyKeys{
		Name:        []string{"name", "nama_objek", "nama"},
		Description: []string{"description", "deskripsi"},
	}
}

// GeoJSONSource implements ports.POISource over a GeoJSON FeatureCollection read
// from a local file or an http(s) URL.
type GeoJSONSource struct {
	location string
	keys     PropertyKeys
	client   *httpx.Client
	limit    int64
}

// NewGeoJSONSource creates a GeoJSONSource for location.
func NewGeoJSONSource(location string, keys PropertyKeys) *GeoJSONSource {
	if len(keys.Name) == 0 {
		keys = DefaultPropertyKeys()
	}
	return &GeoJSONSource{
		location: location,
		keys:     keys,
		client: httpx.New(httpx.Options{
			Timeout:   30 * time.Second,
			UserAgent: "jelajah-dataset",
		}),
		limit: MaxDownloadBytes,
	}
}

// WithDownloadLimit overrides the maximum body size for http(s) datasets.
func (s *GeoJSONSource) WithDownloadLimit(n int64) *GeoJSONSource {
	s.limit = n
	return s
}

// Describe returns the dataset location.
func (s *GeoJSONSource) Describe() string {
	return s.location
}

// LoadAll parses every feature. Any feature without Point geometry fails
// the whole load.
func (s *GeoJSONSource) LoadAll(ctx context.Context) ([]domain.PointOfInterest, error) {
	data, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	return Parse(data, s.keys)
}

// Parse converts a FeatureCollection document into POIs. A feature with
// no name property is named after its ID.
func Parse(data []byte, keys PropertyKeys) ([]domain.PointOfInterest, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse feature collection: %w", err)
	}

	pois := make([]domain.PointOfInterest, 0, len(fc.Features))
	for i, f := range fc.Features {
		pt, ok := f.Geometry.(orb.Point)
		if !ok {
			kind := "null"
			if f.Geometry != nil {
				kind = f.Geometry.GeoJSONType()
			}
			return nil, fmt.Errorf("feature %d: geometry %s is not a Point", i, kind)
		}
		id := featureID(f, i)
		name := firstString(f.Properties, keys.Name)
		if name == "" {
			name = id
		}
		pois = append(pois, domain.PointOfInterest{
			ID:          id,
			Name:        name,
			Description: firstString(f.Properties, keys.Description),
			Location:    domain.GeoPoint{Lat: pt.Lat(), Lon: pt.Lon()},
		})
	}
	return pois, nil
}

func (s *GeoJSONSource) read(ctx context.Context) ([]byte, error) {
	if !strings.HasPrefix(s.location, "http://") && !strings.HasPrefix(s.location, "https://") {
		data, err := os.ReadFile(s.location)
		if err != nil {
			return nil, fmt.Errorf("read dataset: %w", err)
		}
		return data, nil
	}

	data, err := s.client.GetBytes(ctx, s.location, s.limit)
	if err != nil {
		return nil, fmt.Errorf("fetch dataset: %w", err)
	}
	return data, nil
}

func featureID(f *geojson.Feature, idx int) string {
	switch id := f.ID.(type) {
	case string:
		if id != "" {
			return id
		}
	case float64:
		return fmt.Sprintf("%.0f", id)
	}
	if v, ok := f.Properties["id"]; ok && v != nil {
		return fmt.Sprint(v)
	}
	return fmt.Sprintf("poi-%d", idx+1)
}

func firstString(props geojson.Properties, keys []string) string {
	for _, k := range keys {
		if v, ok := props[k].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
