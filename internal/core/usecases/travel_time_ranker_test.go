package usecases_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/jelajah/internal/core/domain"
	"github.com/samirrijal/jelajah/internal/core/usecases"
)

func TestTravelTimeRanker_NoRouteSortsLast(t *testing.T) {
	c := poi("C", northOf(yogya, 0.5))
	a := poi("A", northOf(yogya, 1))
	candidates := usecases.RankByDistance(yogya, []domain.PointOfInterest{a, c}, 2)
	require.Equal(t, []string{"C", "A"}, candidateIDs(candidates))

	router := routerByPOI(map[domain.GeoPoint]float64{a.Location: 600})
	ranker := usecases.NewTravelTimeRanker(router, domain.TravelModeDriving)

	got, degraded := ranker.Rank(context.Background(), yogya, candidates, 5)

	assert.False(t, degraded)
	require.Equal(t, []string{"A", "C"}, candidateIDs(got))
	require.True(t, got[0].HasDuration())
	assert.InDelta(t, 600, *got[0].DurationSeconds, 1e-9)
	assert.False(t, got[1].HasDuration())
	assert.Equal(t, c, got[1].POI)
	assert.InDelta(t, 0.5, got[1].DistanceKm, 1e-6)
}

func TestTravelTimeRanker_SortedByDurationUnknownLast(t *testing.T) {
	var pois []domain.PointOfInterest
	durations := map[domain.GeoPoint]float64{}
	for i, d := range []float64{900, -1, 300, 1200, -1, 60, 450} {
		p := poi(fmt.Sprintf("p%d", i), northOf(yogya, float64(i+1)))
		pois = append(pois, p)
		if d >= 0 {
			durations[p.Location] = d
		}
	}
	candidates := usecases.RankByDistance(yogya, pois, len(pois))
	ranker := usecases.NewTravelTimeRanker(routerByPOI(durations), domain.TravelModeDriving)

	got, degraded := ranker.Rank(context.Background(), yogya, candidates, len(pois))
	require.False(t, degraded)
	require.Len(t, got, len(pois))

	assert.Equal(t, []string{"p5", "p2", "p6", "p0", "p3", "p1", "p4"}, candidateIDs(got))
	for i := 1; i < len(got); i++ {
		assert.LessOrEqual(t, got[i-1].SortDuration(), got[i].SortDuration())
	}
}

func TestTravelTimeRanker_ZeroRoutesIsUnknown(t *testing.T) {
	a := poi("A", northOf(yogya, 1))
	b := poi("B", northOf(yogya, 2))
	router := &mockRouter{routeFn: func(ctx context.Context, from, to domain.GeoPoint, mode domain.TravelMode) ([]domain.Route, error) {
		if to == a.Location {
			return []domain.Route{}, nil
		}
		return []domain.Route{{DurationSeconds: 120}, {DurationSeconds: 90}}, nil
	}}
	ranker := usecases.NewTravelTimeRanker(router, domain.TravelModeDriving)

	got, _ := ranker.Rank(context.Background(), yogya, usecases.RankByDistance(yogya, []domain.PointOfInterest{a, b}, 2), 5)
	require.Equal(t, []string{"B", "A"}, candidateIDs(got))
	assert.InDelta(t, 120, *got[0].DurationSeconds, 1e-9, "first route is used, not the fastest")
}

func TestTravelTimeRanker_BatchFailureFallsBack(t *testing.T) {
	var pois []domain.PointOfInterest
	for i := range 8 {
		pois = append(pois, poi(fmt.Sprintf("p%d", i), northOf(yogya, float64(i+1))))
	}
	candidates := usecases.RankByDistance(yogya, pois, 8)

	router := &mockRouter{routeFn: func(ctx context.Context, from, to domain.GeoPoint, mode domain.TravelMode) ([]domain.Route, error) {
		if to == pois[3].Location {
			return nil, errNetwork
		}
		return []domain.Route{{DurationSeconds: 10000 - to.Lat}}, nil
	}}
	ranker := usecases.NewTravelTimeRanker(router, domain.TravelModeDriving)

	got, degraded := ranker.Rank(context.Background(), yogya, candidates, 5)

	assert.True(t, degraded)
	assert.Equal(t, candidates[:5], got)
	for _, c := range got {
		assert.False(t, c.HasDuration())
	}
}

func TestTravelTimeRanker_IssuesAllRequestsConcurrently(t *testing.T) {
	const n = 12
	var pois []domain.PointOfInterest
	for i := range n {
		pois = append(pois, poi(fmt.Sprintf("p%d", i), northOf(yogya, float64(i+1))))
	}

	var arrived sync.WaitGroup
	arrived.Add(n)
	allIn := make(chan struct{})
	go func() {
		arrived.Wait()
		close(allIn)
	}()

	router := &mockRouter{routeFn: func(ctx context.Context, from, to domain.GeoPoint, mode domain.TravelMode) ([]domain.Route, error) {
		arrived.Done()
		select {
		case <-allIn:
			return []domain.Route{{DurationSeconds: 60}}, nil
		case <-time.After(2 * time.Second):
			return nil, fmt.Errorf("requests were serialized")
		}
	}}
	ranker := usecases.NewTravelTimeRanker(router, domain.TravelModeDriving)

	got, degraded := ranker.Rank(context.Background(), yogya, usecases.RankByDistance(yogya, pois, n), 5)
	assert.False(t, degraded)
	assert.Len(t, got, 5)
}

func TestTravelTimeRanker_PassesModeAndOrigin(t *testing.T) {
	var mu sync.Mutex
	var modes []domain.TravelMode
	router := &mockRouter{routeFn: func(ctx context.Context, from, to domain.GeoPoint, mode domain.TravelMode) ([]domain.Route, error) {
		assert.Equal(t, yogya, from)
		mu.Lock()
		modes = append(modes, mode)
		mu.Unlock()
		return []domain.Route{{DurationSeconds: 1}}, nil
	}}
	ranker := usecases.NewTravelTimeRanker(router, domain.TravelModeWalking)
	_, _ = ranker.Rank(context.Background(), yogya, usecases.RankByDistance(yogya, []domain.PointOfInterest{poi("A", northOf(yogya, 1))}, 1), 5)

	assert.Equal(t, []domain.TravelMode{domain.TravelModeWalking}, modes)
}

func TestTravelTimeRanker_EmptyCandidates(t *testing.T) {
	ranker := usecases.NewTravelTimeRanker(&mockRouter{}, domain.TravelModeDriving)
	got, degraded := ranker.Rank(context.Background(), yogya, nil, 5)
	assert.False(t, degraded)
	assert.Empty(t, got)
}
