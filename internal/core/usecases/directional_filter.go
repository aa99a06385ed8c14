package usecases

import (
	"github.com/samirrijal/jelajah/internal/core/domain"
	"github.com/samirrijal/jelajah/internal/pkg/geospatial"
)

// DefaultToleranceDegrees is the half-angle of the "on the way" cone.
const DefaultToleranceDegrees = 30.0

// OnTheWay returns the POIs lying roughly in the direction of travel from
// origin to destination: the bearing from origin to the POI is within
// toleranceDegrees of the leg's bearing, compared on the circle. POIs located
// exactly at either endpoint are skipped. Input order is preserved.
func OnTheWay(origin, destination domain.GeoPoint, pois []domain.PointOfInterest, toleranceDegrees float64) []domain.PointOfInterest {
	mainBearing := geospatial.Bearing(origin.Lat, origin.Lon, destination.Lat, destination.Lon)

	out := []domain.PointOfInterest{}
	for _, p := range pois {
		if p.Location == origin || p.Location == destination {
			continue
		}
		b := geospatial.Bearing(origin.Lat, origin.Lon, p.Location.Lat, p.Location.Lon)
		if geospatial.AngularDifference(mainBearing, b) <= toleranceDegrees {
			out = append(out, p)
		}
	}
	return out
}
