package domain

import (
	"slices"
	"sync"
	"time"
)

// SessionState is the lifecycle state of a RouteSession.
type SessionState string

const (
	SessionEmpty  SessionState = "empty"
	SessionActive SessionState = "active"
)

// RouteSession holds one client's reference location and multi-stop route.
// All methods are safe for concurrent use.
type RouteSession struct {
	ID        string
	CreatedAt time.Time

	mu         sync.Mutex
	waypoints  []GeoPoint
	reference  *GeocodeMatch
	nearest    []Candidate
	markers    []Candidate
	generation uint64
	updatedAt  time.Time
}

// SessionSnapshot is a point-in-time copy of a RouteSession.
type SessionSnapshot struct {
	ID         string        `json:"id"`
	State      SessionState  `json:"state"`
	Generation uint64        `json:"generation"`
	Reference  *GeocodeMatch `json:"reference,omitempty"`
	Waypoints  []GeoPoint    `json:"waypoints"`
	Nearest    []Candidate   `json:"nearest"`
	Markers    []Candidate   `json:"markers"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// NewRouteSession returns an Empty session.
func NewRouteSession(id string, now time.Time) *RouteSession {
	return &RouteSession{ID: id, CreatedAt: now, updatedAt: now}
}

// State reports Empty until the first successful geocode.
func (s *RouteSession) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *RouteSession) stateLocked() SessionState {
	if len(s.waypoints) == 0 {
		return SessionEmpty
	}
	return SessionActive
}

// BeginSearch tags a new search and returns its generation.
// Any search holding an older generation becomes stale.
func (s *RouteSession) BeginSearch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	return s.generation
}

// IsCurrent reports whether gen is the latest search generation.
func (s *RouteSession) IsCurrent(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return gen == s.generation
}

// CommitSearch records the outcome of search gen in one step: the geocoded
// reference, a route restarted at it, and the ranked candidates. Returns
// ErrStaleSearch and writes nothing if gen was superseded.
func (s *RouteSession) CommitSearch(gen uint64, ref GeocodeMatch, nearest, markers []Candidate) ([]GeoPoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return nil, ErrStaleSearch
	}
	s.reference = &ref
	s.nearest = slices.Clone(nearest)
	s.markers = slices.Clone(markers)
	s.startNewRouteLocked(ref.Location)
	return slices.Clone(s.waypoints), nil
}

// StartNewRoute resets the waypoints to [origin].
func (s *RouteSession) StartNewRoute(origin GeoPoint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startNewRouteLocked(origin)
}

func (s *RouteSession) startNewRouteLocked(origin GeoPoint) {
	s.waypoints = []GeoPoint{origin}
	s.updatedAt = time.Now()
}

// SetDestination resets the waypoints to [origin, dest], origin being the
// current first waypoint.
func (s *RouteSession) SetDestination(dest GeoPoint) ([]GeoPoint, error) {
	if err := dest.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stateLocked() == SessionEmpty {
		return nil, ErrNoLocation
	}
	s.waypoints = []GeoPoint{s.waypoints[0], dest}
	s.updatedAt = time.Now()
	return slices.Clone(s.waypoints), nil
}

// Extend appends next to the waypoints. Prior entries are left untouched.
func (s *RouteSession) Extend(next GeoPoint) ([]GeoPoint, error) {
	if err := next.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stateLocked() == SessionEmpty {
		return nil, ErrNoLocation
	}
	s.waypoints = append(s.waypoints, next)
	s.updatedAt = time.Now()
	return slices.Clone(s.waypoints), nil
}

// LastLeg returns the leg between the last two waypoints.
func (s *RouteSession) LastLeg() (Leg, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.waypoints)
	if n < 2 {
		return Leg{}, false
	}
	return Leg{From: s.waypoints[n-2], To: s.waypoints[n-1]}, true
}

// Waypoints returns a copy of the current waypoint sequence.
func (s *RouteSession) Waypoints() []GeoPoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.waypoints)
}

// Snapshot copies the session for presentation.
func (s *RouteSession) Snapshot() SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := SessionSnapshot{
		ID:         s.ID,
		State:      s.stateLocked(),
		Generation: s.generation,
		Waypoints:  append([]GeoPoint{}, s.waypoints...),
		Nearest:    append([]Candidate{}, s.nearest...),
		Markers:    append([]Candidate{}, s.markers...),
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.updatedAt,
	}
	if s.reference != nil {
		ref := *s.reference
		snap.Reference = &ref
	}
	return snap
}
