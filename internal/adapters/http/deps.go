package http

import (
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/jelajah/internal/adapters/postgres"
	"github.com/samirrijal/jelajah/internal/adapters/valkey"
	"github.com/samirrijal/jelajah/internal/core/domain"
	"github.com/samirrijal/jelajah/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Explorer *usecases.ExplorerService
	Store    *usecases.POIStore
	MapView  domain.MapView

	// Optional infrastructure; nil when not configured.
	NATS  *nats.Conn
	DB    *postgres.DB
	Cache *valkey.Cache

	RequestTimeout time.Duration // per-request budget for /v1 routes
	RateLimit      int           // requests per minute per IP
}

func (d *Dependencies) requestTimeout() time.Duration {
	if d.RequestTimeout <= 0 {
		return 25 * time.Second
	}
	return d.RequestTimeout
}

func (d *Dependencies) rateLimit() int {
	if d.RateLimit <= 0 {
		return 120
	}
	return d.RateLimit
}
