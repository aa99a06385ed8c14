package osrm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/jelajah/internal/core/domain"
	"github.com/samirrijal/jelajah/internal/pkg/httpx"
	"github.com/samirrijal/jelajah/internal/pkg/metrics"
	"github.com/samirrijal/jelajah/internal/pkg/telemetry"
)

// Config configures the OSRM client.
type Config struct {
	BaseURL    string
	RatePerSec float64
	Timeout    time.Duration
}

// Router implements ports.Router against an OSRM /route/v1 service.
type Router struct {
	client  *httpx.Client
	baseURL string
}

type routeResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Routes  []struct {
		Duration float64 `json:"duration"`
		Distance float64 `json:"distance"`
	} `json:"routes"`
}

// New creates a Router.
func New(cfg Config) *Router {
	return &Router{
		client: httpx.New(httpx.Options{
			Timeout:    cfg.Timeout,
			RatePerSec: cfg.RatePerSec,
		}),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}
}

// Route asks OSRM for routes from one point to another without geometry.
// OSRM answers that carry a non-Ok code (NoRoute, NoSegment, ...) are
// reported as domain.ErrNoRoute; anything else is a transport failure.
func (r *Router) Route(ctx context.Context, from, to domain.GeoPoint, mode domain.TravelMode) ([]domain.Route, error) {
	ctx, span := telemetry.Tracer("osrm").Start(ctx, telemetry.SpanRoute)
	defer span.End()
	span.SetAttributes(attribute.String(telemetry.AttrProfile, profile(mode)))

	start := time.Now()
	defer func() { metrics.RoutingDuration.Observe(time.Since(start).Seconds()) }()

	url := fmt.Sprintf("%s/route/v1/%s/%s,%s;%s,%s?overview=false",
		r.baseURL, profile(mode),
		coord(from.Lon), coord(from.Lat), coord(to.Lon), coord(to.Lat))

	var resp routeResponse
	if err := r.client.GetJSON(ctx, url, &resp); err != nil {
		var se *httpx.StatusError
		if errors.As(err, &se) && se.Code >= 400 && se.Code < 500 && se.Code != 429 {
			var body routeResponse
			if json.Unmarshal([]byte(se.Body), &body) == nil && body.Code != "" {
				return nil, fmt.Errorf("%w: %s", domain.ErrNoRoute, body.Code)
			}
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "route request failed")
		return nil, fmt.Errorf("osrm route: %w", err)
	}

	if resp.Code != "Ok" {
		return nil, fmt.Errorf("%w: %s", domain.ErrNoRoute, resp.Code)
	}

	routes := make([]domain.Route, len(resp.Routes))
	for i, rt := range resp.Routes {
		routes[i] = domain.Route{DurationSeconds: rt.Duration, DistanceMeters: rt.Distance}
	}
	span.SetAttributes(attribute.Int(telemetry.AttrRouteCount, len(routes)))
	return routes, nil
}

func profile(mode domain.TravelMode) string {
	switch mode {
	case domain.TravelModeWalking:
		return "foot"
	case domain.TravelModeCycling:
		return "bike"
	default:
		return "driving"
	}
}

func coord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
