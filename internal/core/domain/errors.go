package domain

import "errors"

var (
	ErrPermissionDenied    = errors.New("location permission denied")
	ErrLocationUnavailable = errors.New("location unavailable")
	ErrSearchRequestFailed = errors.New("search request failed")
	ErrRouteRequestFailed  = errors.New("route request failed")
	ErrUnknownMode         = errors.New("unknown transport mode")
	ErrInvalidCoordinate   = errors.New("invalid coordinate")
	ErrPlaceNotFound       = errors.New("place not in current results")
)

// ErrorKind classifies a failure surfaced on the screen.
type ErrorKind string

const (
	KindPermissionDenied    ErrorKind = "permission_denied"
	KindLocationUnavailable ErrorKind = "location_unavailable"
	KindSearchRequestFailed ErrorKind = "search_request_failed"
	KindRouteRequestFailed  ErrorKind = "route_request_failed"
)

// User-facing messages for location failures.
const (
	MsgPermissionDenied    = "Location permission denied"
	MsgLocationUnavailable = "Could not get location"
)

// ScreenError is the error banner state of a screen.
type ScreenError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}
