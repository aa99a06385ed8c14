package usecases_test

import (
	"context"
	"errors"
	"math"
	"sync"

	"github.com/samirrijal/jelajah/internal/core/domain"
)

// --- Mock POISource / POIRepository ---

type mockSource struct {
	loadAllFn func(ctx context.Context) ([]domain.PointOfInterest, error)
}

func (m *mockSource) Describe() string { return "mock" }
func (m *mockSource) LoadAll(ctx context.Context) ([]domain.PointOfInterest, error) {
	if m.loadAllFn != nil {
		return m.loadAllFn(ctx)
	}
	return nil, nil
}

func staticSource(pois ...domain.PointOfInterest) *mockSource {
	return &mockSource{loadAllFn: func(ctx context.Context) ([]domain.PointOfInterest, error) {
		return pois, nil
	}}
}

type mockRepo struct {
	mockSource
	replaced  [][]domain.PointOfInterest
	replaceFn func(ctx context.Context, pois []domain.PointOfInterest) error
}

func (m *mockRepo) ReplaceAll(ctx context.Context, pois []domain.PointOfInterest) error {
	if m.replaceFn != nil {
		if err := m.replaceFn(ctx, pois); err != nil {
			return err
		}
	}
	m.replaced = append(m.replaced, pois)
	return nil
}

func (m *mockRepo) Count(ctx context.Context) (int, error) {
	if len(m.replaced) == 0 {
		return 0, nil
	}
	return len(m.replaced[len(m.replaced)-1]), nil
}

// --- Mock Geocoder ---

type mockGeocoder struct {
	mu        sync.Mutex
	calls     int
	geocodeFn func(ctx context.Context, address string) ([]domain.GeocodeMatch, error)
}

func (m *mockGeocoder) Geocode(ctx context.Context, address string) ([]domain.GeocodeMatch, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.geocodeFn != nil {
		return m.geocodeFn(ctx, address)
	}
	return nil, nil
}

func (m *mockGeocoder) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// --- Mock Router ---

type mockRouter struct {
	routeFn func(ctx context.Context, from, to domain.GeoPoint, mode domain.TravelMode) ([]domain.Route, error)
}

func (m *mockRouter) Route(ctx context.Context, from, to domain.GeoPoint, mode domain.TravelMode) ([]domain.Route, error) {
	if m.routeFn != nil {
		return m.routeFn(ctx, from, to, mode)
	}
	return nil, nil
}

// routerByPOI answers from a table keyed by destination; missing keys have no route.
func routerByPOI(durations map[domain.GeoPoint]float64) *mockRouter {
	return &mockRouter{routeFn: func(ctx context.Context, from, to domain.GeoPoint, mode domain.TravelMode) ([]domain.Route, error) {
		d, ok := durations[to]
		if !ok {
			return nil, domain.ErrNoRoute
		}
		return []domain.Route{{DurationSeconds: d}}, nil
	}}
}

var errNetwork = errors.New("dial tcp: connection refused")

// --- Mock EventPublisher ---

type mockPublisher struct {
	mu      sync.Mutex
	updates []*domain.RouteUpdate
	imports []int
	err     error
}

func (m *mockPublisher) PublishRouteUpdate(ctx context.Context, u *domain.RouteUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates = append(m.updates, u)
	return m.err
}

func (m *mockPublisher) PublishDatasetImported(ctx context.Context, count int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.imports = append(m.imports, count)
	return m.err
}

// --- Mock CacheService ---

type mockCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMockCache() *mockCache { return &mockCache{data: map[string][]byte{}} }

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, errors.New("miss")
	}
	return v, nil
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttl int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// --- Mock SessionStore ---

type mapSessions struct {
	mu sync.Mutex
	m  map[string]*domain.RouteSession
}

func newMapSessions() *mapSessions { return &mapSessions{m: map[string]*domain.RouteSession{}} }

func (s *mapSessions) Get(id string) (*domain.RouteSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.m[id]
	return sess, ok
}
func (s *mapSessions) Put(sess *domain.RouteSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[sess.ID] = sess
}
func (s *mapSessions) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, id)
}
func (s *mapSessions) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}

// --- Geometry helpers ---

const kmPerDegree = 6371.0 * math.Pi / 180

// northOf returns a point km kilometres due north of p.
func northOf(p domain.GeoPoint, km float64) domain.GeoPoint {
	return domain.GeoPoint{Lat: p.Lat + km/kmPerDegree, Lon: p.Lon}
}

// towards returns a point roughly km kilometres from p along bearing deg,
// accurate enough near the equator for bearing tests.
func towards(p domain.GeoPoint, deg, km float64) domain.GeoPoint {
	rad := deg * math.Pi / 180
	return domain.GeoPoint{
		Lat: p.Lat + km*math.Cos(rad)/kmPerDegree,
		Lon: p.Lon + km*math.Sin(rad)/kmPerDegree,
	}
}

func poi(id string, loc domain.GeoPoint) domain.PointOfInterest {
	return domain.PointOfInterest{ID: id, Name: "POI " + id, Location: loc}
}

func ids(pois []domain.PointOfInterest) []string {
	out := make([]string, len(pois))
	for i, p := range pois {
		out[i] = p.ID
	}
	return out
}

func candidateIDs(cs []domain.Candidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.POI.ID
	}
	return out
}
