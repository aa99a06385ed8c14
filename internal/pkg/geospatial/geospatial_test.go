package geospatial_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/samirrijal/jelajah/internal/pkg/geospatial"
)

func TestHaversineKm_KnownDistance(t *testing.T) {
	// Tugu Yogyakarta to Prambanan is roughly 14 km in a straight line.
	d := geospatial.HaversineKm(-7.7829, 110.3671, -7.7520, 110.4915)
	assert.InDelta(t, 14.2, d, 1.0)
}

func TestHaversine_SamePoint(t *testing.T) {
	assert.Zero(t, geospatial.HaversineKm(-7.7956, 110.3695, -7.7956, 110.3695))
}

func TestBearing_CardinalDirections(t *testing.T) {
	tests := []struct {
		name       string
		lat2, lon2 float64
		want       float64
	}{
		{"north", 1, 0, 0},
		{"east", 0, 1, 90},
		{"south", -1, 0, 180},
		{"west", 0, -1, -90},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := geospatial.Bearing(0, 0, tt.lat2, tt.lon2)
			if tt.want == 180 {
				assert.InDelta(t, 180, math.Abs(got), 1e-9)
				return
			}
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestAngularDifference(t *testing.T) {
	tests := []struct {
		a, b, want float64
	}{
		{90, 95, 5},
		{90, 135, 45},
		{1, 359, 2},
		{359, 1, 2},
		{-179, 179, 2},
		{0, 180, 180},
		{-90, 90, 180},
		{10, 370, 0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, geospatial.AngularDifference(tt.a, tt.b), 1e-9, "a=%v b=%v", tt.a, tt.b)
	}
}
