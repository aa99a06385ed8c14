package usecases

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/samirrijal/jelajah/internal/core/domain"
	"github.com/samirrijal/jelajah/internal/core/ports"
	"github.com/samirrijal/jelajah/internal/pkg/metrics"
)

// DefaultTopN is how many candidates a travel-time ranking returns.
const DefaultTopN = 5

// TravelTimeRanker re-orders distance candidates by routed travel time.
type TravelTimeRanker struct {
	router ports.Router
	mode   domain.TravelMode
}

// NewTravelTimeRanker creates a ranker using the given routing profile.
func NewTravelTimeRanker(router ports.Router, mode domain.TravelMode) *TravelTimeRanker {
	if !mode.Valid() {
		mode = domain.TravelModeDriving
	}
	return &TravelTimeRanker{router: router, mode: mode}
}

// Rank routes origin to every candidate concurrently and returns the topN
// fastest. Candidates without a route sort after all routed ones.
//
// If the batch fails as a whole, the first topN candidates are returned in
// their original order without durations and degraded is true.
func (r *TravelTimeRanker) Rank(ctx context.Context, origin domain.GeoPoint, candidates []domain.Candidate, topN int) (ranked []domain.Candidate, degraded bool) {
	if topN <= 0 {
		topN = DefaultTopN
	}

	durations, err := r.routeAll(ctx, origin, candidates)
	if err != nil {
		slog.WarnContext(ctx, "travel-time ranking failed, using distance order",
			"candidates", len(candidates), "error", err)
		metrics.RankingFallbacks.Inc()
		return fallback(candidates, topN), true
	}

	ranked = make([]domain.Candidate, len(candidates))
	for i, c := range candidates {
		c.DurationSeconds = durations[i]
		ranked[i] = c
	}

	slices.SortStableFunc(ranked, func(a, b domain.Candidate) int {
		return cmp.Compare(a.SortDuration(), b.SortDuration())
	})

	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked, false
}

// routeAll issues every request before waiting on any of them. A missing route
// for one candidate leaves its slot nil; any other error fails the batch.
func (r *TravelTimeRanker) routeAll(ctx context.Context, origin domain.GeoPoint, candidates []domain.Candidate) ([]*float64, error) {
	durations := make([]*float64, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	for i, c := range candidates {
		g.Go(func() error {
			routes, err := r.router.Route(gctx, origin, c.POI.Location, r.mode)
			if err != nil {
				if errors.Is(err, domain.ErrNoRoute) {
					metrics.RoutingRequests.WithLabelValues("no_route").Inc()
					return nil
				}
				metrics.RoutingRequests.WithLabelValues("error").Inc()
				return err
			}
			if len(routes) == 0 {
				metrics.RoutingRequests.WithLabelValues("no_route").Inc()
				return nil
			}
			metrics.RoutingRequests.WithLabelValues("ok").Inc()
			d := routes[0].DurationSeconds
			durations[i] = &d
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return durations, nil
}

func fallback(candidates []domain.Candidate, topN int) []domain.Candidate {
	n := min(topN, len(candidates))
	out := make([]domain.Candidate, n)
	for i := range n {
		c := candidates[i]
		c.DurationSeconds = nil
		out[i] = c
	}
	return out
}
