package domain

import (
	"fmt"
	"math"
)

// TransportMode selects how travel time is estimated.
type TransportMode string

const (
	ModeDriving TransportMode = "driving"
	ModeCycling TransportMode = "cycling"
	ModeWalking TransportMode = "walking"
)

// DefaultMode is the mode a new screen starts in.
const DefaultMode = ModeDriving

// Modes lists every supported mode in display order.
var Modes = []TransportMode{ModeDriving, ModeCycling, ModeWalking}

var modeSpeedKmh = map[TransportMode]float64{
	ModeDriving: 40,
	ModeCycling: 15,
	ModeWalking: 5,
}

// SpeedKmh returns the nominal average speed for the mode. Driving's value is
// informational; driving durations always come from the routing service.
func (m TransportMode) SpeedKmh() float64 {
	return modeSpeedKmh[m]
}

// Valid reports whether m is a known mode.
func (m TransportMode) Valid() bool {
	_, ok := modeSpeedKmh[m]
	return ok
}

// ParseTransportMode converts a string to a TransportMode. An empty string
// yields DefaultMode.
func ParseTransportMode(s string) (TransportMode, error) {
	if s == "" {
		return DefaultMode, nil
	}
	m := TransportMode(s)
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
	return m, nil
}

// RoutePath is a driving route as returned by the routing service.
type RoutePath struct {
	Points          []Coordinate `json:"points"`
	DurationSeconds float64      `json:"duration_seconds"`
	DistanceMeters  float64      `json:"distance_meters"`
}

// EstimateSource records where an estimate's duration came from.
type EstimateSource string

const (
	SourceRoutingService EstimateSource = "routing_service"
	SourceConstantSpeed  EstimateSource = "constant_speed"
)

// RouteEstimate is the outcome of one route computation.
type RouteEstimate struct {
	Mode            TransportMode  `json:"mode"`
	Points          []Coordinate   `json:"points"`
	DurationSeconds float64        `json:"duration_seconds"`
	DistanceKm      float64        `json:"distance_km"`
	Source          EstimateSource `json:"source"`
	// PolylineFetched is set when Points came from a fresh routing call
	// rather than from a cached polyline.
	PolylineFetched bool `json:"polyline_fetched"`
}

// CachedPolyline is a previously fetched route shape, keyed by the
// destination it leads to.
type CachedPolyline struct {
	Destination Coordinate
	Points      []Coordinate
}

// Matches reports whether the cached shape can be reused for dest.
func (c *CachedPolyline) Matches(dest Coordinate) bool {
	return c != nil && len(c.Points) > 0 && c.Destination == dest
}

// FormatDuration renders a travel time the way the map overlay shows it:
// "< 1 min", "N min", "Hh" or "Hh Mm".
func FormatDuration(seconds float64) string {
	total := int(math.Floor(seconds / 60))
	if total < 1 {
		return "< 1 min"
	}
	if total < 60 {
		return fmt.Sprintf("%d min", total)
	}
	h, m := total/60, total%60
	if m == 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}
