package nominatim

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
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

// Client implements ports.Geocoder against a Nominatim /search endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

// New creates a Nominatim client. baseURL is the service root, e.g.
// https://nominatim.openstreetmap.org.
func New(baseURL, userAgent string, timeout time.Duration) *Client {
	return &Client{
		httpClient: upstream.NewHTTPClient(timeout),
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
	}
}

type searchResult struct {
	PlaceID     int64    `json:"place_id"`
	Lat         string   `json:"lat"`
	Lon         string   `json:"lon"`
	DisplayName string   `json:"display_name"`
	Address     *address `json:"address"`
}

type address struct {
	Name         string `json:"name"`
	Attraction   string `json:"attraction"`
	Building     string `json:"building"`
	Road         string `json:"road"`
	Pedestrian   string `json:"pedestrian"`
	HouseNumber  string `json:"house_number"`
	City         string `json:"city"`
	Town         string `json:"town"`
	Village      string `json:"village"`
	Suburb       string `json:"suburb"`
	Municipality string `json:"municipality"`
	State        string `json:"state"`
	Region       string `json:"region"`
}

// searchQuery keeps the parameter order Nominatim documents and encodes
// spaces as %20.
func searchQuery(query string, limit int) string {
	q := strings.ReplaceAll(url.QueryEscape(query), "+", "%20")
	return "q=" + q + "&format=json&addressdetails=1&limit=" + strconv.Itoa(limit)
}

// Search geocodes query and returns up to limit matches in upstream order.
func (c *Client) Search(ctx context.Context, query string, limit int) (_ []domain.PlaceResult, err error) {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanGeocodeSearch,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(telemetry.AttrQueryLength.Int(len(query))),
	)
	defer span.End()
	defer metrics.ObserveUpstream("geocoder", time.Now(), &err)

	rawQuery := searchQuery(query, limit)

	header := http.Header{}
	header.Set("User-Agent", c.userAgent)

	var raw []searchResult
	if err := upstream.GetJSON(ctx, c.httpClient, c.baseURL+"/search?"+rawQuery, header, &raw); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "geocode failed")
		return nil, fmt.Errorf("geocode %q: %w", query, err)
	}

	places := make([]domain.PlaceResult, 0, len(raw))
	for _, r := range raw {
		p, err := r.toDomain()
		if err != nil {
			slog.DebugContext(ctx, "skipping geocoder result", "place_id", r.PlaceID, "error", err)
			continue
		}
		places = append(places, p)
	}
	span.SetAttributes(telemetry.AttrResultCount.Int(len(places)))
	return places, nil
}

func (r searchResult) toDomain() (domain.PlaceResult, error) {
	lat, err := strconv.ParseFloat(r.Lat, 64)
	if err != nil {
		return domain.PlaceResult{}, fmt.Errorf("parse lat %q: %w", r.Lat, err)
	}
	lon, err := strconv.ParseFloat(r.Lon, 64)
	if err != nil {
		return domain.PlaceResult{}, fmt.Errorf("parse lon %q: %w", r.Lon, err)
	}
	loc := domain.Coordinate{Lat: lat, Lon: lon}
	if !loc.Valid() {
		return domain.PlaceResult{}, fmt.Errorf("%w: %v", domain.ErrInvalidCoordinate, loc)
	}

	p := domain.PlaceResult{
		ID:          r.PlaceID,
		DisplayName: r.DisplayName,
		Location:    loc,
	}
	if a := r.Address; a != nil {
		p.Address = &domain.Address{
			Name:         a.Name,
			Attraction:   a.Attraction,
			Building:     a.Building,
			Road:         a.Road,
			Pedestrian:   a.Pedestrian,
			HouseNumber:  a.HouseNumber,
			City:         a.City,
			Town:         a.Town,
			Village:      a.Village,
			Suburb:       a.Suburb,
			Municipality: a.Municipality,
			State:        a.State,
			Region:       a.Region,
		}
	}
	return p, nil
}
