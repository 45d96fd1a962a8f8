package usecases_test

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/samirrijal/wayfinder/internal/core/domain"
)

// --- Mock Geocoder ---

type mockGeocoder struct {
	searchFn func(ctx context.Context, query string, limit int) ([]domain.PlaceResult, error)

	mu      sync.Mutex
	queries []string
}

func (m *mockGeocoder) Search(ctx context.Context, query string, limit int) ([]domain.PlaceResult, error) {
	m.mu.Lock()
	m.queries = append(m.queries, query)
	m.mu.Unlock()
	if m.searchFn != nil {
		return m.searchFn(ctx, query, limit)
	}
	return nil, nil
}

func (m *mockGeocoder) calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.queries...)
}

// --- Mock Router ---

type mockRouter struct {
	routeFn func(ctx context.Context, origin, dest domain.Coordinate) (*domain.RoutePath, error)
	n       atomic.Int32
}

func (m *mockRouter) Route(ctx context.Context, origin, dest domain.Coordinate) (*domain.RoutePath, error) {
	m.n.Add(1)
	if m.routeFn != nil {
		return m.routeFn(ctx, origin, dest)
	}
	return &domain.RoutePath{}, nil
}

func (m *mockRouter) calls() int { return int(m.n.Load()) }

// --- Mock LocationProvider ---

type mockLocator struct {
	permissionFn func(ctx context.Context) (bool, error)
	positionFn   func(ctx context.Context) (domain.Coordinate, error)
}

func (m *mockLocator) RequestPermission(ctx context.Context) (bool, error) {
	if m.permissionFn != nil {
		return m.permissionFn(ctx)
	}
	return true, nil
}

func (m *mockLocator) CurrentPosition(ctx context.Context) (domain.Coordinate, error) {
	if m.positionFn != nil {
		return m.positionFn(ctx)
	}
	return domain.Coordinate{}, nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	mu     sync.Mutex
	events []domain.ScreenEvent
}

func (m *mockPublisher) PublishScreenEvent(ctx context.Context, ev *domain.ScreenEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, *ev)
	return nil
}

func (m *mockPublisher) kinds() []domain.ScreenEventKind {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.ScreenEventKind, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, e.Kind)
	}
	return out
}
