package ports

import (
	"context"

	"github.com/samirrijal/jelajah/internal/core/domain"
)

// POISource yields the complete POI dataset.
type POISource interface {
	LoadAll(ctx context.Context) ([]domain.PointOfInterest, error)
	Describe() string
}

// POIRepository persists POIs.
type POIRepository interface {
	POISource
	ReplaceAll(ctx context.Context, pois []domain.PointOfInterest) error
	Count(ctx context.Context) (int, error)
}

// SessionStore keeps route sessions for the lifetime of a client.
type SessionStore interface {
	Get(id string) (*domain.RouteSession, bool)
	Put(session *domain.RouteSession)
	Delete(id string)
	Count() int
}
