package geospatial

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// Bearing returns the initial great-circle bearing in degrees from one point
// to another, in the range [-180, 180].
func Bearing(lat1, lon1, lat2, lon2 float64) float64 {
	return geo.Bearing(orb.Point{lon1, lat1}, orb.Point{lon2, lat2})
}

// AngularDifference returns the circular distance between two bearings in
// degrees, wrapped to [0, 180]. Inputs may use any convention.
func AngularDifference(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 360)
	if d > 180 {
		d = 360 - d
	}
	return d
}
