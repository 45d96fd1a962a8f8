package locator

import (
	"context"
	"errors"
	"testing"

	"github.com/samirrijal/wayfinder/internal/core/domain"
)

func TestStatic_Granted(t *testing.T) {
	pos := domain.Coordinate{Lat: 43.263, Lon: -2.935}
	s := NewStatic(pos, true)

	ok, err := s.RequestPermission(context.Background())
	if err != nil || !ok {
		t.Fatalf("expected permission, got %v, %v", ok, err)
	}
	got, err := s.CurrentPosition(context.Background())
	if err != nil || got != pos {
		t.Fatalf("expected %v, got %v, %v", pos, got, err)
	}

	moved := domain.Coordinate{Lat: 43.27, Lon: -2.94}
	s.Move(moved)
	if got, _ := s.CurrentPosition(context.Background()); got != moved {
		t.Errorf("expected moved position %v, got %v", moved, got)
	}
}

func TestStatic_Denied(t *testing.T) {
	s := NewStatic(domain.DefaultCenter, false)
	ok, err := s.RequestPermission(context.Background())
	if err != nil || ok {
		t.Fatalf("expected denial, got %v, %v", ok, err)
	}
}

func TestStatic_Fail(t *testing.T) {
	s := NewStatic(domain.DefaultCenter, true)
	boom := errors.New("no fix")
	s.Fail(boom)
	if _, err := s.CurrentPosition(context.Background()); !errors.Is(err, boom) {
		t.Errorf("expected %v, got %v", boom, err)
	}
	s.Fail(nil)
	if _, err := s.CurrentPosition(context.Background()); err != nil {
		t.Errorf("expected recovery, got %v", err)
	}
}

func TestStatic_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewStatic(domain.DefaultCenter, true).CurrentPosition(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
