package osrm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/samirrijal/wayfinder/internal/core/domain"
)

func TestRoute_BuildsURLAndSwapsCoordinates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/route/v1/driving/-58.3816,-34.6037;-58.3731,-34.6084" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("overview") != "full" || r.URL.Query().Get("geometries") != "geojson" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"code":"Ok","routes":[{
			"geometry":{"coordinates":[[-58.3816,-34.6037],[-58.378,-34.606],[-58.3731,-34.6084]]},
			"duration":312.4,"distance":1450.2}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, 2*time.Second)
	path, err := c.Route(context.Background(),
		domain.Coordinate{Lat: -34.6037, Lon: -58.3816},
		domain.Coordinate{Lat: -34.6084, Lon: -58.3731},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(path.Points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(path.Points))
	}
	if path.Points[0] != (domain.Coordinate{Lat: -34.6037, Lon: -58.3816}) {
		t.Errorf("expected lat/lon order, got %+v", path.Points[0])
	}
	if path.DurationSeconds != 312.4 || path.DistanceMeters != 1450.2 {
		t.Errorf("unexpected duration/distance %+v", path)
	}
}

func TestRoute_NoRoutes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":"Ok","routes":[]}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).Route(context.Background(), domain.Coordinate{}, domain.Coordinate{Lat: 1})
	if !errors.Is(err, ErrNoRoute) {
		t.Errorf("expected ErrNoRoute, got %v", err)
	}
}

func TestRoute_ServiceErrorCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":"NoSegment","message":"Could not find a matching segment"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).Route(context.Background(), domain.Coordinate{}, domain.Coordinate{Lat: 1})
	if err == nil {
		t.Fatal("expected error for NoSegment")
	}
}

func TestRoute_HTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	if _, err := New(srv.URL, time.Second).Route(context.Background(), domain.Coordinate{}, domain.Coordinate{Lat: 1}); err == nil {
		t.Fatal("expected error for 502")
	}
}
