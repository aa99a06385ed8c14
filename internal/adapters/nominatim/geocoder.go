package nominatim

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/jelajah/internal/core/domain"
	"github.com/samirrijal/jelajah/internal/pkg/httpx"
	"github.com/samirrijal/jelajah/internal/pkg/telemetry"
)

// Config configures the Nominatim client.
type Config struct {
	BaseURL      string
	UserAgent    string
	RatePerSec   float64
	Limit        int
	CountryCodes string
	Timeout      time.Duration
}

// Geocoder implements ports.Geocoder against a Nominatim /search endpoint.
type Geocoder struct {
	client       *httpx.Client
	baseURL      string
	limit        int
	countryCodes string
}

type place struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

// New creates a Geocoder.
func New(cfg Config) *Geocoder {
	if cfg.Limit <= 0 {
		cfg.Limit = 1
	}
	return &Geocoder{
		client: httpx.New(httpx.Options{
			Timeout:    cfg.Timeout,
			UserAgent:  cfg.UserAgent,
			RatePerSec: cfg.RatePerSec,
		}),
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		limit:        cfg.Limit,
		countryCodes: cfg.CountryCodes,
	}
}

// Geocode returns matches for address in the order Nominatim ranks them.
// An unknown address yields an empty slice and no error.
func (g *Geocoder) Geocode(ctx context.Context, address string) ([]domain.GeocodeMatch, error) {
	ctx, span := telemetry.Tracer("nominatim").Start(ctx, telemetry.SpanGeocode)
	defer span.End()
	span.SetAttributes(attribute.String(telemetry.AttrAddress, address))

	q := url.Values{}
	q.Set("format", "json")
	q.Set("q", address)
	q.Set("limit", strconv.Itoa(g.limit))
	if g.countryCodes != "" {
		q.Set("countrycodes", g.countryCodes)
	}

	var places []place
	if err := g.client.GetJSON(ctx, g.baseURL+"/search?"+q.Encode(), &places); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "geocode request failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrGeocodeTransport, err)
	}

	matches := make([]domain.GeocodeMatch, 0, len(places))
	for _, p := range places {
		lat, err := strconv.ParseFloat(p.Lat, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad latitude %q", domain.ErrGeocodeTransport, p.Lat)
		}
		lon, err := strconv.ParseFloat(p.Lon, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad longitude %q", domain.ErrGeocodeTransport, p.Lon)
		}
		matches = append(matches, domain.GeocodeMatch{
			Location:    domain.GeoPoint{Lat: lat, Lon: lon},
			DisplayName: p.DisplayName,
		})
	}
	span.SetAttributes(attribute.Int(telemetry.AttrMatches, len(matches)))
	return matches, nil
}
