// Package locator provides LocationProvider implementations that do not
// depend on a device.
package locator

import (
	"context"
	"sync"

	"github.com/samirrijal/wayfinder/internal/core/domain"
)

// Static answers every permission request and position fix from fixed
// values. It backs the command-line shell and tests.
type Static struct {
	mu      sync.RWMutex
	pos     domain.Coordinate
	granted bool
	err     error
}

// NewStatic returns a provider that reports pos when granted is true.
func NewStatic(pos domain.Coordinate, granted bool) *Static {
	return &Static{pos: pos, granted: granted}
}

func (s *Static) RequestPermission(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.granted, nil
}

func (s *Static) CurrentPosition(ctx context.Context) (domain.Coordinate, error) {
	if err := ctx.Err(); err != nil {
		return domain.Coordinate{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.err != nil {
		return domain.Coordinate{}, s.err
	}
	return s.pos, nil
}

// Move changes the position reported by later fixes.
func (s *Static) Move(pos domain.Coordinate) {
	s.mu.Lock()
	s.pos = pos
	s.mu.Unlock()
}

// Fail makes later fixes return err; nil restores normal behaviour.
func (s *Static) Fail(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}
