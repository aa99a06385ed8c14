package domain

import (
	"math"
	"time"
)

// PointOfInterest is a tourist attraction from the static dataset.
type PointOfInterest struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Location    GeoPoint `json:"location"`
}

// Candidate is a POI annotated with ranking data for a single search.
type Candidate struct {
	POI             PointOfInterest `json:"poi"`
	DistanceKm      float64         `json:"distance_km"`
	DurationSeconds *float64        `json:"duration_seconds"` // nil: unknown or unreachable
}

// HasDuration reports whether the routing service returned a duration.
func (c Candidate) HasDuration() bool {
	return c.DurationSeconds != nil
}

// SortDuration returns the duration used for ordering; unknown sorts last.
func (c Candidate) SortDuration() float64 {
	if c.DurationSeconds == nil {
		return math.Inf(1)
	}
	return *c.DurationSeconds
}

// TravelMinutes rounds the driving duration to whole minutes.
func (c Candidate) TravelMinutes() (int, bool) {
	if c.DurationSeconds == nil {
		return 0, false
	}
	return int(math.Round(*c.DurationSeconds / 60)), true
}

// TravelMode selects the routing profile.
type TravelMode string

const (
	TravelModeDriving TravelMode = "driving"
	TravelModeWalking TravelMode = "walking"
	TravelModeCycling TravelMode = "cycling"
)

// Valid reports whether m is a known routing profile.
func (m TravelMode) Valid() bool {
	switch m {
	case TravelModeDriving, TravelModeWalking, TravelModeCycling:
		return true
	}
	return false
}

// Route is one route returned by the routing service.
type Route struct {
	DurationSeconds float64 `json:"duration_seconds"`
	DistanceMeters  float64 `json:"distance_meters"`
}

// GeocodeMatch is one candidate match for a free-text address.
type GeocodeMatch struct {
	Location    GeoPoint `json:"location"`
	DisplayName string   `json:"display_name"`
}

// SearchResult is the state delta produced by a successful address search.
type SearchResult struct {
	SessionID  string       `json:"session_id"`
	Generation uint64       `json:"generation"`
	Reference  GeocodeMatch `json:"reference"`
	Waypoints  []GeoPoint   `json:"waypoints"`
	Nearest    []Candidate  `json:"nearest"`
	Markers    []Candidate  `json:"markers"`
	Degraded   bool         `json:"degraded"` // durations unavailable, distance order used
}

// RouteUpdate is the state delta produced when the route changes.
type RouteUpdate struct {
	SessionID   string            `json:"session_id"`
	Waypoints   []GeoPoint        `json:"waypoints"`
	LegFrom     GeoPoint          `json:"leg_from"`
	LegTo       GeoPoint          `json:"leg_to"`
	Suggestions []PointOfInterest `json:"suggestions"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// StoreStatus describes the outcome of the POI load.
type StoreStatus struct {
	Loaded   bool      `json:"loaded"`
	Count    int       `json:"count"`
	Source   string    `json:"source"`
	Error    string    `json:"error,omitempty"`
	LoadedAt time.Time `json:"loaded_at,omitempty"`
}

// MapView is the initial viewport for map clients.
type MapView struct {
	Center GeoPoint `json:"center"`
	Zoom   int      `json:"zoom"`
}
