package http

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/jelajah/internal/core/domain"
)

// CandidateView is a ranked POI as shown to clients. TravelMinutes is set
// when a routed duration is known; otherwise clients fall back to DistanceKm.
type CandidateView struct {
	POI             domain.PointOfInterest `json:"poi"`
	DistanceKm      float64                `json:"distance_km"`
	DurationSeconds *float64               `json:"duration_seconds"`
	TravelMinutes   *int                   `json:"travel_minutes"`
}

func presentCandidates(cs []domain.Candidate) []CandidateView {
	out := make([]CandidateView, len(cs))
	for i, c := range cs {
		out[i] = CandidateView{POI: c.POI, DistanceKm: c.DistanceKm, DurationSeconds: c.DurationSeconds}
		if m, ok := c.TravelMinutes(); ok {
			out[i].TravelMinutes = &m
		}
	}
	return out
}

// SessionView is the JSON shape of a route session.
type SessionView struct {
	ID         string               `json:"id"`
	State      domain.SessionState  `json:"state"`
	Generation uint64               `json:"generation"`
	Reference  *domain.GeocodeMatch `json:"reference,omitempty"`
	Waypoints  []domain.GeoPoint    `json:"waypoints"`
	Nearest    []CandidateView      `json:"nearest"`
	Markers    []CandidateView      `json:"markers"`
	CreatedAt  time.Time            `json:"created_at"`
	UpdatedAt  time.Time            `json:"updated_at"`
}

func presentSession(s domain.SessionSnapshot) SessionView {
	return SessionView{
		ID:         s.ID,
		State:      s.State,
		Generation: s.Generation,
		Reference:  s.Reference,
		Waypoints:  s.Waypoints,
		Nearest:    presentCandidates(s.Nearest),
		Markers:    presentCandidates(s.Markers),
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
}

// SearchView is the response to an address search.
type SearchView struct {
	SessionID  string              `json:"session_id"`
	Generation uint64              `json:"generation"`
	Reference  domain.GeocodeMatch `json:"reference"`
	Waypoints  []domain.GeoPoint   `json:"waypoints"`
	Nearest    []CandidateView     `json:"nearest"`
	Markers    []CandidateView     `json:"markers"`
	Degraded   bool                `json:"degraded"`
}

// ---- Map & dataset ----

// MapConfigHandler returns the initial viewport and ranking constants.
func MapConfigHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		opts := deps.Explorer.Options()
		return c.JSON(fiber.Map{
			"center":            deps.MapView.Center,
			"zoom":              deps.MapView.Zoom,
			"candidate_limit":   opts.CandidateLimit,
			"top_n":             opts.TopN,
			"tolerance_degrees": opts.ToleranceDegrees,
		})
	}
}

// ListPOIsHandler returns the loaded dataset, paginated.
func ListPOIsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 100)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 500 {
			limit = 100
		}

		pois, total := deps.Store.Page(offset, limit)

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: pois, Pagination: pg})
	}
}

// POIStatusHandler reports the outcome of the dataset load.
func POIStatusHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(deps.Store.Status())
	}
}

// NearestPOIsHandler ranks POIs around lat/lon without touching any session.
func NearestPOIsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		origin, err := queryPoint(c, "lat", "lon")
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		nearest, markers, degraded, err := deps.Explorer.Nearest(c.UserContext(), origin)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(fiber.Map{
			"origin":   origin,
			"nearest":  presentCandidates(nearest),
			"markers":  presentCandidates(markers),
			"degraded": degraded,
		})
	}
}

// OnTheWayHandler lists POIs in the direction of travel from one point to another.
func OnTheWayHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		from, err := queryPoint(c, "from_lat", "from_lon")
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		to, err := queryPoint(c, "to_lat", "to_lon")
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		pois, err := deps.Explorer.Suggestions(from, to, c.QueryFloat("tolerance", 0))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(pois)
	}
}

// ---- Sessions ----

// CreateSessionHandler opens an Empty route session.
func CreateSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snap := deps.Explorer.StartSession(c.UserContext())
		c.Location("/v1/sessions/" + snap.ID)
		return c.Status(fiber.StatusCreated).JSON(presentSession(snap))
	}
}

// GetSessionHandler returns the current state of a session.
func GetSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snap, err := deps.Explorer.GetSession(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(presentSession(snap))
	}
}

// DeleteSessionHandler discards a session.
func DeleteSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Explorer.EndSession(c.UserContext(), c.Params("id")); err != nil {
			return errFromDomain(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

type searchRequest struct {
	Address string `json:"address"`
}

// SearchHandler geocodes an address and ranks the nearest POIs.
func SearchHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req searchRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		res, err := deps.Explorer.Search(c.UserContext(), c.Params("id"), req.Address)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(SearchView{
			SessionID:  res.SessionID,
			Generation: res.Generation,
			Reference:  res.Reference,
			Waypoints:  res.Waypoints,
			Nearest:    presentCandidates(res.Nearest),
			Markers:    presentCandidates(res.Markers),
			Degraded:   res.Degraded,
		})
	}
}

type pointRequest struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

func (r pointRequest) point() (domain.GeoPoint, error) {
	if r.Lat == nil || r.Lon == nil {
		return domain.GeoPoint{}, fmt.Errorf("lat and lon are required")
	}
	p := domain.GeoPoint{Lat: *r.Lat, Lon: *r.Lon}
	return p, p.Validate()
}

// DestinationHandler sets the route to [origin, destination].
func DestinationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := parsePointBody(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		update, err := deps.Explorer.SelectDestination(c.UserContext(), c.Params("id"), p)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(update)
	}
}

// WaypointHandler appends a stop to the route.
func WaypointHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := parsePointBody(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		update, err := deps.Explorer.ExtendRoute(c.UserContext(), c.Params("id"), p)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(update)
	}
}

// ---- Helpers ----

func parsePointBody(c *fiber.Ctx) (domain.GeoPoint, error) {
	var req pointRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.GeoPoint{}, fmt.Errorf("invalid request body")
	}
	return req.point()
}

// queryPoint reads a required coordinate pair. Zero is a valid coordinate,
// so absence is detected on the raw string.
func queryPoint(c *fiber.Ctx, latKey, lonKey string) (domain.GeoPoint, error) {
	lat, err := requiredFloat(c, latKey)
	if err != nil {
		return domain.GeoPoint{}, err
	}
	lon, err := requiredFloat(c, lonKey)
	if err != nil {
		return domain.GeoPoint{}, err
	}
	p := domain.GeoPoint{Lat: lat, Lon: lon}
	return p, p.Validate()
}

func requiredFloat(c *fiber.Ctx, key string) (float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", key)
	}
	return v, nil
}
