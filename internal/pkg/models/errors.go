package models

import "errors"

var (
	// ErrInvalidCoordinates is a client error; callers must fix the input and never retry it as is
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	// ErrInvalidReport covers reports missing the bus id, the session id or the capture time
	ErrInvalidReport = errors.New("invalid location report")
	// ErrSessionConflict means another driver session is still live for the bus
	ErrSessionConflict = errors.New("another driver session is live for this bus")
	// ErrStoreUnavailable is retryable; the durable backend could not be reached
	ErrStoreUnavailable = errors.New("location store unavailable")
	// ErrRouteNotFound is returned by the bus registry for an unknown route
	ErrRouteNotFound = errors.New("route not found")
	// ErrRegistryUnavailable means no bus registry is configured or reachable
	ErrRegistryUnavailable = errors.New("bus registry unavailable")
)
