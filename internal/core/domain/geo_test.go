package domain_test

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/jelajah/internal/core/domain"
)

func TestGeoPoint_Validate(t *testing.T) {
	assert.NoError(t, domain.GeoPoint{Lat: 0, Lon: 0}.Validate())
	assert.NoError(t, domain.GeoPoint{Lat: -90, Lon: 180}.Validate())

	for _, p := range []domain.GeoPoint{
		{Lat: 90.1, Lon: 0},
		{Lat: 0, Lon: -180.1},
		{Lat: 999, Lon: -5000},
		{Lat: math.NaN(), Lon: 0},
	} {
		assert.ErrorIs(t, p.Validate(), domain.ErrInvalidInput, "%+v", p)
	}
}

func TestNormalizeAddress(t *testing.T) {
	got, err := domain.NormalizeAddress("  Tugu Jogja \n")
	require.NoError(t, err)
	assert.Equal(t, "Tugu Jogja", got)

	_, err = domain.NormalizeAddress(" \t ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// The limit counts characters, not bytes.
	_, err = domain.NormalizeAddress(strings.Repeat("é", domain.MaxAddressLength))
	assert.NoError(t, err)
	_, err = domain.NormalizeAddress(strings.Repeat("a", domain.MaxAddressLength+1))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestValidateTolerance(t *testing.T) {
	assert.NoError(t, domain.ValidateTolerance(30))
	assert.NoError(t, domain.ValidateTolerance(180))
	for _, tol := range []float64{0, -1, 180.01, 500, math.NaN()} {
		assert.ErrorIs(t, domain.ValidateTolerance(tol), domain.ErrInvalidInput, "%v", tol)
	}
}
