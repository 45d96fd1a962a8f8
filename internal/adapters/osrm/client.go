package osrm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/wayfinder/internal/adapters/upstream"
	"github.com/samirrijal/wayfinder/internal/core/domain"
	"github.com/samirrijal/wayfinder/internal/pkg/metrics"
	"github.com/samirrijal/wayfinder/internal/pkg/telemetry"
)

// ErrNoRoute is returned when the service finds no route between the points.
var ErrNoRoute = errors.New("no route found")

// Client implements ports.Router against an OSRM /route/v1/driving endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// New creates an OSRM client. baseURL is the service root, e.g.
// https://router.project-osrm.org.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		httpClient: upstream.NewHTTPClient(timeout),
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

type routeResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Routes  []struct {
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"` // [lon, lat]
		} `json:"geometry"`
		Duration float64 `json:"duration"`
		Distance float64 `json:"distance"`
	} `json:"routes"`
}

// Route fetches the driving route from origin to destination with full
// GeoJSON geometry.
func (c *Client) Route(ctx context.Context, origin, destination domain.Coordinate) (_ *domain.RoutePath, err error) {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanRouteFetch, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	defer metrics.ObserveUpstream("router", time.Now(), &err)

	endpoint := fmt.Sprintf("%s/route/v1/driving/%s;%s?overview=full&geometries=geojson",
		c.baseURL, lonLat(origin), lonLat(destination))

	var resp routeResponse
	if err := upstream.GetJSON(ctx, c.httpClient, endpoint, nil, &resp); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "route failed")
		return nil, fmt.Errorf("route %s -> %s: %w", lonLat(origin), lonLat(destination), err)
	}
	if resp.Code != "" && resp.Code != "Ok" {
		span.SetStatus(codes.Error, resp.Code)
		return nil, fmt.Errorf("route: %s: %s", resp.Code, resp.Message)
	}
	if len(resp.Routes) == 0 {
		span.SetStatus(codes.Error, "no routes")
		return nil, ErrNoRoute
	}

	r := resp.Routes[0]
	points := make([]domain.Coordinate, 0, len(r.Geometry.Coordinates))
	for _, pair := range r.Geometry.Coordinates {
		if len(pair) < 2 {
			continue
		}
		points = append(points, domain.Coordinate{Lat: pair[1], Lon: pair[0]})
	}

	return &domain.RoutePath{
		Points:          points,
		DurationSeconds: r.Duration,
		DistanceMeters:  r.Distance,
	}, nil
}

func lonLat(c domain.Coordinate) string {
	return strconv.FormatFloat(c.Lon, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lat, 'f', -1, 64)
}
