package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/jelajah/internal/core/domain"
)

// gqlError is a resolver error carrying the same code a REST client would get.
type gqlError struct {
	code    string
	message string
}

func (e *gqlError) Error() string { return e.message }

// Extensions is picked up by graphql-go when formatting the error.
func (e *gqlError) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": e.code}
}

// resolverError hides wrapped transport details from GraphQL clients.
// It mirrors errFromDomain.
func resolverError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return &gqlError{code: "bad_request", message: err.Error()}
	case errors.Is(err, domain.ErrSessionNotFound):
		return &gqlError{code: "not_found", message: "session not found"}
	case errors.Is(err, domain.ErrGeocodeNotFound):
		return &gqlError{code: "geocode_not_found", message: "location not found"}
	case errors.Is(err, domain.ErrGeocodeTransport):
		LoggerFromCtx(ctx).Warn("geocoder unavailable", "error", err)
		return &gqlError{code: "geocode_unavailable", message: "geocoding service unavailable"}
	case errors.Is(err, domain.ErrNoLocation):
		return &gqlError{code: "no_location", message: domain.ErrNoLocation.Error()}
	case errors.Is(err, domain.ErrStaleSearch):
		return &gqlError{code: "stale_search", message: domain.ErrStaleSearch.Error()}
	}
	LoggerFromCtx(ctx).Error("graphql resolver failed", "error", err)
	return &gqlError{code: "internal_error", message: "internal error"}
}

// buildSchema creates the GraphQL schema wired to the explorer.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	poiType := graphql.NewObject(graphql.ObjectConfig{
		Name: "PointOfInterest",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.String},
			"name":        &graphql.Field{Type: graphql.String},
			"description": &graphql.Field{Type: graphql.String},
			"location":    &graphql.Field{Type: geoPointType},
		},
	})

	candidateType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Candidate",
		Fields: graphql.Fields{
			"poi":         &graphql.Field{Type: poiType},
			"distance_km": &graphql.Field{Type: graphql.Float},
			"duration_seconds": &graphql.Field{
				Type: graphql.Float,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if d := p.Source.(CandidateView).DurationSeconds; d != nil {
						return *d, nil
					}
					return nil, nil
				},
			},
			"travel_minutes": &graphql.Field{
				Type: graphql.Int,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if m := p.Source.(CandidateView).TravelMinutes; m != nil {
						return *m, nil
					}
					return nil, nil
				},
			},
		},
	})

	geocodeMatchType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeocodeMatch",
		Fields: graphql.Fields{
			"location":     &graphql.Field{Type: geoPointType},
			"display_name": &graphql.Field{Type: graphql.String},
		},
	})

	sessionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "RouteSession",
		Fields: graphql.Fields{
			"id":    &graphql.Field{Type: graphql.String},
			"state": &graphql.Field{Type: graphql.String},
			"generation": &graphql.Field{
				Type: graphql.Int,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return int(p.Source.(SessionView).Generation), nil
				},
			},
			"reference": &graphql.Field{
				Type: geocodeMatchType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if ref := p.Source.(SessionView).Reference; ref != nil {
						return *ref, nil
					}
					return nil, nil
				},
			},
			"waypoints": &graphql.Field{Type: graphql.NewList(geoPointType)},
			"nearest":   &graphql.Field{Type: graphql.NewList(candidateType)},
			"markers":   &graphql.Field{Type: graphql.NewList(candidateType)},
		},
	})

	searchResultType := graphql.NewObject(graphql.ObjectConfig{
		Name: "SearchResult",
		Fields: graphql.Fields{
			"session_id": &graphql.Field{Type: graphql.String},
			"generation": &graphql.Field{
				Type: graphql.Int,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return int(p.Source.(SearchView).Generation), nil
				},
			},
			"reference": &graphql.Field{Type: geocodeMatchType},
			"waypoints": &graphql.Field{Type: graphql.NewList(geoPointType)},
			"nearest":   &graphql.Field{Type: graphql.NewList(candidateType)},
			"markers":   &graphql.Field{Type: graphql.NewList(candidateType)},
			"degraded":  &graphql.Field{Type: graphql.Boolean},
		},
	})

	routeUpdateType := graphql.NewObject(graphql.ObjectConfig{
		Name: "RouteUpdate",
		Fields: graphql.Fields{
			"session_id":  &graphql.Field{Type: graphql.String},
			"waypoints":   &graphql.Field{Type: graphql.NewList(geoPointType)},
			"leg_from":    &graphql.Field{Type: geoPointType},
			"leg_to":      &graphql.Field{Type: geoPointType},
			"suggestions": &graphql.Field{Type: graphql.NewList(poiType)},
		},
	})

	nearestType := graphql.NewObject(graphql.ObjectConfig{
		Name: "NearestResult",
		Fields: graphql.Fields{
			"nearest":  &graphql.Field{Type: graphql.NewList(candidateType)},
			"markers":  &graphql.Field{Type: graphql.NewList(candidateType)},
			"degraded": &graphql.Field{Type: graphql.Boolean},
		},
	})

	storeStatusType := graphql.NewObject(graphql.ObjectConfig{
		Name: "StoreStatus",
		Fields: graphql.Fields{
			"loaded": &graphql.Field{Type: graphql.Boolean},
			"count":  &graphql.Field{Type: graphql.Int},
			"source": &graphql.Field{Type: graphql.String},
			"error":  &graphql.Field{Type: graphql.String},
		},
	})

	pointArgs := func(prefix string) graphql.FieldConfigArgument {
		return graphql.FieldConfigArgument{
			prefix + "lat": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
			prefix + "lon": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
		}
	}
	argPoint := func(p graphql.ResolveParams, prefix string) domain.GeoPoint {
		return domain.GeoPoint{Lat: p.Args[prefix+"lat"].(float64), Lon: p.Args[prefix+"lon"].(float64)}
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"pois": &graphql.Field{
				Type:        graphql.NewList(poiType),
				Description: "Loaded points of interest",
				Args: graphql.FieldConfigArgument{
					"offset": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 100},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					pois, _ := deps.Store.Page(max(p.Args["offset"].(int), 0), min(max(p.Args["limit"].(int), 1), 500))
					return pois, nil
				},
			},
			"poiStatus": &graphql.Field{
				Type:        storeStatusType,
				Description: "Outcome of the dataset load",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Store.Status(), nil
				},
			},
			"nearestPois": &graphql.Field{
				Type:        nearestType,
				Description: "POIs nearest to a point, ranked by travel time",
				Args:        pointArgs(""),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					nearest, markers, degraded, err := deps.Explorer.Nearest(p.Context, argPoint(p, ""))
					if err != nil {
						return nil, resolverError(p.Context, err)
					}
					return map[string]interface{}{
						"nearest":  presentCandidates(nearest),
						"markers":  presentCandidates(markers),
						"degraded": degraded,
					}, nil
				},
			},
			"onTheWay": &graphql.Field{
				Type:        graphql.NewList(poiType),
				Description: "POIs in the direction of travel between two points",
				Args: func() graphql.FieldConfigArgument {
					args := pointArgs("from_")
					for k, v := range pointArgs("to_") {
						args[k] = v
					}
					args["tolerance"] = &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 0.0}
					return args
				}(),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					pois, err := deps.Explorer.Suggestions(argPoint(p, "from_"), argPoint(p, "to_"), p.Args["tolerance"].(float64))
					if err != nil {
						return nil, resolverError(p.Context, err)
					}
					return pois, nil
				},
			},
			"session": &graphql.Field{
				Type:        sessionType,
				Description: "A route session by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					snap, err := deps.Explorer.GetSession(p.Context, p.Args["id"].(string))
					if err != nil {
						return nil, resolverError(p.Context, err)
					}
					return presentSession(snap), nil
				},
			},
		},
	})

	withSession := func(args graphql.FieldConfigArgument) graphql.FieldConfigArgument {
		args["session_id"] = &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)}
		return args
	}

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"startSession": &graphql.Field{
				Type: sessionType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return presentSession(deps.Explorer.StartSession(p.Context)), nil
				},
			},
			"search": &graphql.Field{
				Type: searchResultType,
				Args: withSession(graphql.FieldConfigArgument{
					"address": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				}),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					res, err := deps.Explorer.Search(p.Context, p.Args["session_id"].(string), p.Args["address"].(string))
					if err != nil {
						return nil, resolverError(p.Context, err)
					}
					return SearchView{
						SessionID:  res.SessionID,
						Generation: res.Generation,
						Reference:  res.Reference,
						Waypoints:  res.Waypoints,
						Nearest:    presentCandidates(res.Nearest),
						Markers:    presentCandidates(res.Markers),
						Degraded:   res.Degraded,
					}, nil
				},
			},
			"selectDestination": &graphql.Field{
				Type: routeUpdateType,
				Args: withSession(pointArgs("")),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					update, err := deps.Explorer.SelectDestination(p.Context, p.Args["session_id"].(string), argPoint(p, ""))
					if err != nil {
						return nil, resolverError(p.Context, err)
					}
					return update, nil
				},
			},
			"extendRoute": &graphql.Field{
				Type: routeUpdateType,
				Args: withSession(pointArgs("")),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					update, err := deps.Explorer.ExtendRoute(p.Context, p.Args["session_id"].(string), argPoint(p, ""))
					if err != nil {
						return nil, resolverError(p.Context, err)
					}
					return update, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
