package ports

import (
	"context"

	"github.com/samirrijal/jelajah/internal/core/domain"
)

// Geocoder resolves a free-text address to ordered candidate matches.
type Geocoder interface {
	Geocode(ctx context.Context, address string) ([]domain.GeocodeMatch, error)
}

// Router computes routes between two points. A missing route is reported
// either as zero routes or as an error wrapping domain.ErrNoRoute.
type Router interface {
	Route(ctx context.Context, from, to domain.GeoPoint, mode domain.TravelMode) ([]domain.Route, error)
}

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishRouteUpdate(ctx context.Context, update *domain.RouteUpdate) error
	PublishDatasetImported(ctx context.Context, count int) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
