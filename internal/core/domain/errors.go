package domain

import "errors"

var (
	// ErrLoad means the POI source was unreachable or malformed.
	ErrLoad = errors.New("poi dataset could not be loaded")
	// ErrGeocodeNotFound means the geocoder returned zero matches.
	ErrGeocodeNotFound = errors.New("location not found")
	// ErrGeocodeTransport means the geocoder could not be reached or failed.
	ErrGeocodeTransport = errors.New("geocoding service unavailable")
	// ErrNoRoute means the router found no route between two points.
	ErrNoRoute = errors.New("no route between points")
	// ErrNoLocation means the session has no located origin yet.
	ErrNoLocation = errors.New("no location: search for an address first")
	// ErrSessionNotFound means the session expired or never existed.
	ErrSessionNotFound = errors.New("session not found")
	// ErrInvalidInput means a coordinate, address or tolerance was out of range.
	ErrInvalidInput = errors.New("invalid input")
	// ErrStaleSearch means a newer search superseded this one.
	ErrStaleSearch = errors.New("search superseded by a newer one")
)
