package domain

import "time"

// Destination is the place the user wants to reach.
type Destination struct {
	Location Coordinate `json:"location"`
	Name     string     `json:"name"`
}

// ScreenState is a snapshot of everything the map screen displays.
type ScreenState struct {
	ScreenID       string        `json:"screen_id"`
	Revision       uint64        `json:"revision"`
	Location       *Coordinate   `json:"location,omitempty"`
	Loading        bool          `json:"loading"`
	Error          *ScreenError  `json:"error,omitempty"`
	Query          string        `json:"query"`
	Searching      bool          `json:"searching"`
	SearchFocused  bool          `json:"search_focused"`
	Results        []PlaceResult `json:"results"`
	NoResults      bool          `json:"no_results"`
	Destination    *Destination  `json:"destination,omitempty"`
	Mode           TransportMode `json:"mode"`
	RoutePoints    []Coordinate  `json:"route_points"`
	RoutePending   bool          `json:"route_pending"`
	DurationSecs   *float64      `json:"duration_seconds"` // nil while unknown
	DurationText   string        `json:"duration_text,omitempty"`
	ShowDuration   bool          `json:"show_duration"`
	Camera         *CameraHint   `json:"camera,omitempty"`
	CameraRevision uint64        `json:"camera_revision"`
}

// ScreenEventKind names a screen transition worth broadcasting.
type ScreenEventKind string

const (
	EventLocationUpdated     ScreenEventKind = "location.updated"
	EventLocationFailed      ScreenEventKind = "location.failed"
	EventSearchCompleted     ScreenEventKind = "search.completed"
	EventSearchFailed        ScreenEventKind = "search.failed"
	EventDestinationSelected ScreenEventKind = "destination.selected"
	EventModeChanged         ScreenEventKind = "mode.changed"
	EventRouteEstimated      ScreenEventKind = "route.estimated"
	EventRouteFailed         ScreenEventKind = "route.failed"
	EventSearchCleared       ScreenEventKind = "search.cleared"
)

// ScreenEvent is published whenever a screen goes through a notable transition.
type ScreenEvent struct {
	ScreenID string          `json:"screen_id"`
	Kind     ScreenEventKind `json:"kind"`
	At       time.Time       `json:"at"`
	Payload  any             `json:"payload,omitempty"`
}
