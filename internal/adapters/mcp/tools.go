// Package mcptools exposes the explorer's stateless queries as MCP tools.
package mcptools

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/samirrijal/jelajah/internal/core/domain"
	"github.com/samirrijal/jelajah/internal/core/usecases"
)

const (
	ServerName    = "jelajah-mcp"
	ServerVersion = "1.0.0"
)

// Tools binds MCP tool handlers to an ExplorerService.
type Tools struct {
	explorer *usecases.ExplorerService
	logger   *slog.Logger
}

func New(explorer *usecases.ExplorerService, logger *slog.Logger) *Tools {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tools{explorer: explorer, logger: logger}
}

// NewServer builds an MCP server with every tool registered.
func (t *Tools) NewServer() *server.MCPServer {
	srv := server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	srv.AddTool(NearestPOIsTool(), t.HandleNearestPOIs)
	srv.AddTool(OnTheWayTool(), t.HandleOnTheWay)
	srv.AddTool(GeocodeTool(), t.HandleGeocode)
	return srv
}

func NearestPOIsTool() mcp.Tool {
	return mcp.NewTool("nearest_pois",
		mcp.WithDescription("Rank the points of interest closest to a location by travel time"),
		mcp.WithNumber("latitude",
			mcp.Required(),
			mcp.Description("Latitude of the origin"),
		),
		mcp.WithNumber("longitude",
			mcp.Required(),
			mcp.Description("Longitude of the origin"),
		),
	)
}

func OnTheWayTool() mcp.Tool {
	return mcp.NewTool("on_the_way",
		mcp.WithDescription("List points of interest lying roughly in the direction of travel between two points"),
		mcp.WithNumber("from_latitude", mcp.Required(), mcp.Description("Latitude of the leg start")),
		mcp.WithNumber("from_longitude", mcp.Required(), mcp.Description("Longitude of the leg start")),
		mcp.WithNumber("to_latitude", mcp.Required(), mcp.Description("Latitude of the leg end")),
		mcp.WithNumber("to_longitude", mcp.Required(), mcp.Description("Longitude of the leg end")),
		mcp.WithNumber("tolerance",
			mcp.Description("Maximum bearing deviation in degrees"),
			mcp.DefaultNumber(usecases.DefaultToleranceDegrees),
		),
	)
}

func GeocodeTool() mcp.Tool {
	return mcp.NewTool("geocode",
		mcp.WithDescription("Resolve a free-text address to coordinates"),
		mcp.WithString("address",
			mcp.Required(),
			mcp.Description("Address or place name"),
		),
	)
}

type nearestResult struct {
	Origin   domain.GeoPoint   `json:"origin"`
	Nearest  []candidateOutput `json:"nearest"`
	Degraded bool              `json:"degraded"`
}

type candidateOutput struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Location      domain.GeoPoint `json:"location"`
	DistanceKm    float64         `json:"distance_km"`
	TravelMinutes *int            `json:"travel_minutes,omitempty"`
}

func (t *Tools) HandleNearestPOIs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	origin, msg := parsePoint(req, "latitude", "longitude")
	if msg != "" {
		return mcp.NewToolResultError(msg), nil
	}

	nearest, _, degraded, err := t.explorer.Nearest(ctx, origin)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out := nearestResult{Origin: origin, Nearest: make([]candidateOutput, 0, len(nearest)), Degraded: degraded}
	for _, c := range nearest {
		co := candidateOutput{
			ID:         c.POI.ID,
			Name:       c.POI.Name,
			Location:   c.POI.Location,
			DistanceKm: math.Round(c.DistanceKm*100) / 100,
		}
		if m, ok := c.TravelMinutes(); ok {
			co.TravelMinutes = &m
		}
		out.Nearest = append(out.Nearest, co)
	}
	return t.jsonResult("nearest_pois", out)
}

func (t *Tools) HandleOnTheWay(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	from, msg := parsePoint(req, "from_latitude", "from_longitude")
	if msg != "" {
		return mcp.NewToolResultError(msg), nil
	}
	to, msg := parsePoint(req, "to_latitude", "to_longitude")
	if msg != "" {
		return mcp.NewToolResultError(msg), nil
	}
	tolerance := mcp.ParseFloat64(req, "tolerance", usecases.DefaultToleranceDegrees)
	if err := domain.ValidateTolerance(tolerance); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	pois, err := t.explorer.Suggestions(from, to, tolerance)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return t.jsonResult("on_the_way", pois)
}

func (t *Tools) HandleGeocode(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	address, err := domain.NormalizeAddress(mcp.ParseString(req, "address", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	match, err := t.explorer.Geocode(ctx, address)
	switch {
	case errors.Is(err, domain.ErrGeocodeNotFound):
		return mcp.NewToolResultError("No location found for " + address), nil
	case err != nil:
		t.logger.Error("geocode failed", "tool", "geocode", "error", err)
		return mcp.NewToolResultError("Geocoding service unavailable"), nil
	}
	return t.jsonResult("geocode", match)
}

func (t *Tools) jsonResult(tool string, v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		t.logger.Error("failed to marshal result", "tool", tool, "error", err)
		return mcp.NewToolResultError("Internal server error"), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func parsePoint(req mcp.CallToolRequest, latKey, lonKey string) (domain.GeoPoint, string) {
	args := req.Params.Arguments
	if _, ok := args[latKey]; !ok {
		return domain.GeoPoint{}, latKey + " is required"
	}
	if _, ok := args[lonKey]; !ok {
		return domain.GeoPoint{}, lonKey + " is required"
	}
	p := domain.GeoPoint{
		Lat: mcp.ParseFloat64(req, latKey, 0),
		Lon: mcp.ParseFloat64(req, lonKey, 0),
	}
	if err := p.Validate(); err != nil {
		return domain.GeoPoint{}, err.Error()
	}
	return p, ""
}
