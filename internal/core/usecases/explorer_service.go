package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/samirrijal/jelajah/internal/core/domain"
	"github.com/samirrijal/jelajah/internal/core/ports"
	"github.com/samirrijal/jelajah/internal/pkg/metrics"
)

// ExplorerOptions tunes ranking and filtering.
type ExplorerOptions struct {
	CandidateLimit   int
	TopN             int
	ToleranceDegrees float64
	GeocodeCacheTTL  int // seconds; 0 disables geocode caching
}

// DefaultExplorerOptions returns the stock ranking constants.
func DefaultExplorerOptions() ExplorerOptions {
	return ExplorerOptions{
		CandidateLimit:   DefaultCandidateLimit,
		TopN:             DefaultTopN,
		ToleranceDegrees: DefaultToleranceDegrees,
		GeocodeCacheTTL:  86400,
	}
}

// ExplorerService maps each user action (search, pick a destination, add a
// stop) to one operation on the caller's route session and returns the
// resulting state delta.
type ExplorerService struct {
	store     *POIStore
	geocoder  ports.Geocoder
	ranker    *TravelTimeRanker
	sessions  ports.SessionStore
	cache     ports.CacheService
	publisher ports.EventPublisher
	opts      ExplorerOptions
}

// NewExplorerService creates a new ExplorerService. cache and publisher may be nil.
func NewExplorerService(
	store *POIStore,
	geocoder ports.Geocoder,
	ranker *TravelTimeRanker,
	sessions ports.SessionStore,
	cache ports.CacheService,
	publisher ports.EventPublisher,
	opts ExplorerOptions,
) *ExplorerService {
	if opts.CandidateLimit <= 0 {
		opts.CandidateLimit = DefaultCandidateLimit
	}
	if opts.TopN <= 0 {
		opts.TopN = DefaultTopN
	}
	if opts.ToleranceDegrees <= 0 {
		opts.ToleranceDegrees = DefaultToleranceDegrees
	}
	return &ExplorerService{
		store:     store,
		geocoder:  geocoder,
		ranker:    ranker,
		sessions:  sessions,
		cache:     cache,
		publisher: publisher,
		opts:      opts,
	}
}

// Options returns the effective ranking options.
func (s *ExplorerService) Options() ExplorerOptions {
	return s.opts
}

// StartSession opens a new Empty session.
func (s *ExplorerService) StartSession(ctx context.Context) domain.SessionSnapshot {
	sess := domain.NewRouteSession(uuid.NewString(), time.Now())
	s.sessions.Put(sess)
	metrics.ActiveSessions.Set(float64(s.sessions.Count()))
	return sess.Snapshot()
}

// GetSession returns a snapshot of the session.
func (s *ExplorerService) GetSession(ctx context.Context, id string) (domain.SessionSnapshot, error) {
	sess, err := s.session(id)
	if err != nil {
		return domain.SessionSnapshot{}, err
	}
	return sess.Snapshot(), nil
}

// EndSession discards a session.
func (s *ExplorerService) EndSession(ctx context.Context, id string) error {
	if _, err := s.session(id); err != nil {
		return err
	}
	s.sessions.Delete(id)
	metrics.ActiveSessions.Set(float64(s.sessions.Count()))
	return nil
}

// Search geocodes address, restarts the session's route at the match and
// ranks the nearest POIs by travel time. A failed geocode leaves the session
// unchanged. The location and the ranking are committed together, so if
// another search on the same session starts before this one finishes, this
// one returns domain.ErrStaleSearch and writes nothing.
func (s *ExplorerService) Search(ctx context.Context, sessionID, address string) (*domain.SearchResult, error) {
	address, err := domain.NormalizeAddress(address)
	if err != nil {
		return nil, err
	}

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	gen := sess.BeginSearch()

	match, err := s.Geocode(ctx, address)
	if err != nil {
		return nil, err
	}

	// Skip the routing fan-out when a newer search already took over.
	if !sess.IsCurrent(gen) {
		metrics.StaleSearches.Inc()
		return nil, domain.ErrStaleSearch
	}

	nearest, markers, degraded, err := s.Nearest(ctx, match.Location)
	if err != nil {
		return nil, err
	}

	waypoints, err := sess.CommitSearch(gen, match, nearest, markers)
	if err != nil {
		metrics.StaleSearches.Inc()
		return nil, err
	}

	return &domain.SearchResult{
		SessionID:  sess.ID,
		Generation: gen,
		Reference:  match,
		Waypoints:  waypoints,
		Nearest:    nearest,
		Markers:    markers,
		Degraded:   degraded,
	}, nil
}

// Geocode resolves address to its first match, reading through the cache.
func (s *ExplorerService) Geocode(ctx context.Context, address string) (domain.GeocodeMatch, error) {
	address, err := domain.NormalizeAddress(address)
	if err != nil {
		return domain.GeocodeMatch{}, err
	}
	cacheKey := "geocode:" + strings.ToLower(strings.Join(strings.Fields(address), " "))
	if s.cache != nil && s.opts.GeocodeCacheTTL > 0 {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var match domain.GeocodeMatch
			if err := json.Unmarshal(data, &match); err == nil {
				metrics.CacheHits.WithLabelValues("geocode").Inc()
				return match, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("geocode").Inc()
	}

	matches, err := s.geocoder.Geocode(ctx, address)
	if err != nil {
		metrics.GeocodeRequests.WithLabelValues("error").Inc()
		if errors.Is(err, domain.ErrGeocodeTransport) {
			return domain.GeocodeMatch{}, err
		}
		return domain.GeocodeMatch{}, fmt.Errorf("%w: %v", domain.ErrGeocodeTransport, err)
	}
	if len(matches) == 0 {
		metrics.GeocodeRequests.WithLabelValues("not_found").Inc()
		return domain.GeocodeMatch{}, fmt.Errorf("%w: %q", domain.ErrGeocodeNotFound, address)
	}
	metrics.GeocodeRequests.WithLabelValues("ok").Inc()

	match := matches[0]
	if s.cache != nil && s.opts.GeocodeCacheTTL > 0 {
		if data, err := json.Marshal(match); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, s.opts.GeocodeCacheTTL)
		}
	}
	return match, nil
}

// Nearest ranks POIs around origin. markers holds every distance candidate;
// nearest holds the travel-time top N.
func (s *ExplorerService) Nearest(ctx context.Context, origin domain.GeoPoint) (nearest, markers []domain.Candidate, degraded bool, err error) {
	if err := origin.Validate(); err != nil {
		return nil, nil, false, err
	}
	markers = RankByDistance(origin, s.store.All(), s.opts.CandidateLimit)
	nearest, degraded = s.ranker.Rank(ctx, origin, markers, s.opts.TopN)
	return nearest, markers, degraded, nil
}

// SelectDestination replaces the route with [origin, dest] and suggests POIs
// on the way.
func (s *ExplorerService) SelectDestination(ctx context.Context, sessionID string, dest domain.GeoPoint) (*domain.RouteUpdate, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	waypoints, err := sess.SetDestination(dest)
	if err != nil {
		return nil, err
	}
	return s.routeUpdate(ctx, sess.ID, waypoints), nil
}

// ExtendRoute appends next to the route and suggests POIs on the new last leg.
func (s *ExplorerService) ExtendRoute(ctx context.Context, sessionID string, next domain.GeoPoint) (*domain.RouteUpdate, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	waypoints, err := sess.Extend(next)
	if err != nil {
		return nil, err
	}
	return s.routeUpdate(ctx, sess.ID, waypoints), nil
}

// Suggestions runs the directional filter over the whole dataset without
// touching any session. tolerance 0 uses the configured default.
func (s *ExplorerService) Suggestions(from, to domain.GeoPoint, tolerance float64) ([]domain.PointOfInterest, error) {
	if err := from.Validate(); err != nil {
		return nil, err
	}
	if err := to.Validate(); err != nil {
		return nil, err
	}
	if tolerance == 0 {
		tolerance = s.opts.ToleranceDegrees
	}
	if err := domain.ValidateTolerance(tolerance); err != nil {
		return nil, err
	}
	return OnTheWay(from, to, s.store.All(), tolerance), nil
}

// routeUpdate builds the delta for a route whose last leg just changed.
// waypoints must hold at least two points.
func (s *ExplorerService) routeUpdate(ctx context.Context, sessionID string, waypoints []domain.GeoPoint) *domain.RouteUpdate {
	n := len(waypoints)
	from, to := waypoints[n-2], waypoints[n-1]
	update := &domain.RouteUpdate{
		SessionID:   sessionID,
		Waypoints:   waypoints,
		LegFrom:     from,
		LegTo:       to,
		Suggestions: OnTheWay(from, to, s.store.All(), s.opts.ToleranceDegrees),
		UpdatedAt:   time.Now(),
	}

	if s.publisher != nil {
		if err := s.publisher.PublishRouteUpdate(ctx, update); err != nil {
			slog.WarnContext(ctx, "publish route update failed", "session", sessionID, "error", err)
		}
	}
	return update
}

func (s *ExplorerService) session(id string) (*domain.RouteSession, error) {
	sess, ok := s.sessions.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	return sess, nil
}
