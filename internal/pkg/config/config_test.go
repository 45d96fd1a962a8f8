package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("wayfinder-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Geocoder.Limit != 5 {
		t.Errorf("expected geocoder limit 5, got %d", cfg.Geocoder.Limit)
	}
	if cfg.Search.Debounce != 400*time.Millisecond {
		t.Errorf("expected 400ms debounce, got %s", cfg.Search.Debounce)
	}
	if cfg.Search.MinQueryLength != 3 {
		t.Errorf("expected min query length 3, got %d", cfg.Search.MinQueryLength)
	}
	if cfg.Telemetry.ServiceName != "wayfinder-test" {
		t.Errorf("expected service name wayfinder-test, got %q", cfg.Telemetry.ServiceName)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("WAYFINDER_SERVER_PORT", "9090")
	t.Setenv("WAYFINDER_SEARCH_DEBOUNCE", "250ms")
	t.Setenv("WAYFINDER_ROUTER_BASE_URL", "http://osrm.internal:5000")

	cfg, err := Load("wayfinder-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Search.Debounce != 250*time.Millisecond {
		t.Errorf("expected 250ms debounce, got %s", cfg.Search.Debounce)
	}
	if cfg.Router.BaseURL != "http://osrm.internal:5000" {
		t.Errorf("unexpected router url %q", cfg.Router.BaseURL)
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := &Config{
		Server:    ServerConfig{Port: 0, ReadTimeout: 10, WriteTimeout: 10},
		Geocoder:  GeocoderConfig{BaseURL: "not a url", UserAgent: "", Limit: 5},
		Router:    RouterConfig{BaseURL: "https://router.project-osrm.org"},
		Search:    SearchConfig{MinQueryLength: 3},
		Location:  LocationConfig{Timeout: time.Second},
		NATS:      NATSConfig{Enabled: true},
		RateLimit: RateLimitConfig{Max: 1, Window: time.Second},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"server.port", "geocoder.base_url", "geocoder.user_agent", "nats.url"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected error to mention %s, got: %v", want, err)
		}
	}
	if strings.Contains(err.Error(), "valkey.addr") {
		t.Errorf("disabled valkey must not be validated: %v", err)
	}
}
