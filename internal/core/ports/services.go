package ports

import (
	"context"

	"github.com/samirrijal/wayfinder/internal/core/domain"
)

// Geocoder resolves free-text queries into places.
type Geocoder interface {
	Search(ctx context.Context, query string, limit int) ([]domain.PlaceResult, error)
}

// Router computes a driving route between two points.
type Router interface {
	Route(ctx context.Context, origin, destination domain.Coordinate) (*domain.RoutePath, error)
}

// LocationProvider is the device's positioning capability.
type LocationProvider interface {
	// RequestPermission asks for foreground location access.
	RequestPermission(ctx context.Context) (bool, error)
	// CurrentPosition returns a one-shot position fix.
	CurrentPosition(ctx context.Context) (domain.Coordinate, error)
}

// EventPublisher publishes screen events to a message broker.
type EventPublisher interface {
	PublishScreenEvent(ctx context.Context, event *domain.ScreenEvent) error
}

// EventSubscriber delivers published screen events.
type EventSubscriber interface {
	// SubscribeScreenEvents calls handler for each event of the given screen,
	// or of every screen when screenID is empty, until the returned
	// function is called.
	SubscribeScreenEvents(screenID string, handler func(data []byte)) (func(), error)
}
