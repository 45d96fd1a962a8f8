package http

import (
	"time"

	"github.com/nats-io/nats.go"
	"github.com/samirrijal/wayfinder/internal/adapters/valkey"
	"github.com/samirrijal/wayfinder/internal/core/ports"
	"github.com/samirrijal/wayfinder/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Search *usecases.PlaceSearchService
	Routes *usecases.RouteService

	// Screen is the template for WebSocket screen sessions. Locator, Notify
	// and Logger are filled in per connection.
	Screen        usecases.ScreenOptions
	LocateTimeout time.Duration

	Events  ports.EventSubscriber // nil disables /ws/events
	NATS    *nats.Conn
	Limiter *valkey.Storage // nil keeps rate-limit counters in memory

	RateLimitMax    int
	RateLimitWindow time.Duration
	Version         string
	SpecPath        string // OpenAPI document served at /docs/openapi.yaml
}
