package domain

import "errors"

var (
	// ErrMissingFields is returned when busId, latitude or longitude is
	// absent or not numeric-coercible.
	ErrMissingFields = errors.New("Bus ID, latitude, and longitude are required")

	// ErrInvalidCoordinates is returned for out-of-range lat/lng values.
	ErrInvalidCoordinates = errors.New("invalid coordinates")

	// ErrRouteNotFound is returned when a route lookup misses.
	ErrRouteNotFound = errors.New("route not found")

	// ErrNoActivePass is returned when the principal has no approved,
	// unexpired pass to derive a route from.
	ErrNoActivePass = errors.New("no active pass for user")
)
