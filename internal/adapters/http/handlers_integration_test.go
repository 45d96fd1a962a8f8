//go:build integration
// +build integration

package http_test

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	handler "github.com/samirrijal/wayfinder/internal/adapters/http"
	"github.com/samirrijal/wayfinder/internal/adapters/nominatim"
	"github.com/samirrijal/wayfinder/internal/adapters/osrm"
	"github.com/samirrijal/wayfinder/internal/core/domain"
	"github.com/samirrijal/wayfinder/internal/core/usecases"
	"github.com/samirrijal/wayfinder/internal/pkg/config"
)

// liveDeps wires the handlers to the geocoder and router named in the
// configuration (public OpenStreetMap services by default).
func liveDeps(t *testing.T) *handler.Dependencies {
	t.Helper()
	cfg, err := config.Load("wayfinder-test")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	geocoder := nominatim.New(cfg.Geocoder.BaseURL, cfg.Geocoder.UserAgent, cfg.Geocoder.Timeout)
	router := osrm.New(cfg.Router.BaseURL, cfg.Router.Timeout)
	return &handler.Dependencies{
		Search: usecases.NewPlaceSearchService(geocoder, cfg.Search.MinQueryLength, cfg.Geocoder.Limit),
		Routes: usecases.NewRouteService(router),
	}
}

func TestIntegration_PlaceSearch(t *testing.T) {
	app := setupApp(liveDeps(t))

	req := httptest.NewRequest("GET", "/v1/places/search?q=Obelisco&lat=-34.6037&lon=-58.3816", nil)
	resp, err := app.Test(req, 20000)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var places []handler.PlaceView
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		t.Fatal(err)
	}
	if len(places) == 0 || len(places) > 5 {
		t.Fatalf("expected 1-5 places, got %d", len(places))
	}
	for i := 1; i < len(places); i++ {
		if places[i].DistanceKm < places[i-1].DistanceKm {
			t.Errorf("results not sorted by distance at %d", i)
		}
	}
}

func TestIntegration_DrivingEstimate(t *testing.T) {
	app := setupApp(liveDeps(t))

	req := httptest.NewRequest("GET", "/v1/routes/estimate?from_lat=-34.6037&from_lon=-58.3816&to_lat=-34.6084&to_lon=-58.3731", nil)
	resp, err := app.Test(req, 20000)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var est handler.RouteView
	if err := json.NewDecoder(resp.Body).Decode(&est); err != nil {
		t.Fatal(err)
	}
	if est.Source != domain.SourceRoutingService || est.DurationSeconds <= 0 || len(est.Points) < 2 {
		t.Errorf("unexpected estimate %+v", est)
	}
}
