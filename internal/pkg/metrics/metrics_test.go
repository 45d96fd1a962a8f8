package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveUpstream_Outcomes(t *testing.T) {
	before := map[string]float64{
		OutcomeOK:        testutil.ToFloat64(UpstreamRequests.WithLabelValues("test", OutcomeOK)),
		OutcomeError:     testutil.ToFloat64(UpstreamRequests.WithLabelValues("test", OutcomeError)),
		OutcomeCancelled: testutil.ToFloat64(UpstreamRequests.WithLabelValues("test", OutcomeCancelled)),
	}

	var ok error
	ObserveUpstream("test", time.Now(), &ok)
	failed := errors.New("boom")
	ObserveUpstream("test", time.Now(), &failed)
	cancelled := fmt.Errorf("search: %w", context.Canceled)
	ObserveUpstream("test", time.Now(), &cancelled)
	ObserveUpstream("test", time.Now(), nil)

	want := map[string]float64{OutcomeOK: 2, OutcomeError: 1, OutcomeCancelled: 1}
	for outcome, n := range want {
		got := testutil.ToFloat64(UpstreamRequests.WithLabelValues("test", outcome)) - before[outcome]
		if got != n {
			t.Errorf("outcome %s: expected %v, got %v", outcome, n, got)
		}
	}
}

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	app := fiber.New()
	app.Use(Middleware())
	app.Get("/v1/things/:id", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/metrics", Handler())

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/v1/things/:id", "200"))
	for _, id := range []string{"1", "2"} {
		resp, err := app.Test(httptest.NewRequest("GET", "/v1/things/"+id, nil), -1)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		resp.Body.Close()
	}
	if got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/v1/things/:id", "200")) - before; got != 2 {
		t.Errorf("expected 2 requests under the route pattern, got %v", got)
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil), -1)
	if err != nil {
		t.Fatalf("metrics request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Errorf("expected 200 from /metrics, got %d", resp.StatusCode)
	}
}
