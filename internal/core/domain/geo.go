package domain

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

// MaxAddressLength bounds a free-text search, in characters.
const MaxAddressLength = 300

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the point lies within WGS 84 bounds.
func (p GeoPoint) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// Validate is Valid as an error wrapping ErrInvalidInput.
func (p GeoPoint) Validate() error {
	if !p.Valid() {
		return fmt.Errorf("%w: lat must be within [-90, 90] and lon within [-180, 180], got (%v, %v)",
			ErrInvalidInput, p.Lat, p.Lon)
	}
	return nil
}

// NormalizeAddress trims address and rejects empty or overlong input.
func NormalizeAddress(address string) (string, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return "", fmt.Errorf("%w: address is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(address) > MaxAddressLength {
		return "", fmt.Errorf("%w: address too long (max %d characters)", ErrInvalidInput, MaxAddressLength)
	}
	return address, nil
}

// ValidateTolerance accepts a bearing tolerance in (0, 180] degrees.
func ValidateTolerance(degrees float64) error {
	if math.IsNaN(degrees) || degrees <= 0 || degrees > 180 {
		return fmt.Errorf("%w: tolerance must be within (0, 180] degrees, got %v", ErrInvalidInput, degrees)
	}
	return nil
}

// Leg is an ordered pair of waypoints.
type Leg struct {
	From GeoPoint `json:"from"`
	To   GeoPoint `json:"to"`
}
