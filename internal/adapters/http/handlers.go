package http

import (
	"errors"
	"math"
	"strconv"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"
	"github.com/samirrijal/wayfinder/internal/core/domain"
	"github.com/samirrijal/wayfinder/internal/pkg/geospatial"
)

const maxQueryLength = 200

// PlaceView is a search result as the results list shows it.
type PlaceView struct {
	PlaceID       int64             `json:"place_id"`
	Title         string            `json:"title"`
	Subtitle      string            `json:"subtitle"`
	DisplayName   string            `json:"display_name"`
	Location      domain.Coordinate `json:"location"`
	DistanceKm    float64           `json:"distance_km"`
	DistanceLabel string            `json:"distance_label"`
}

func newPlaceView(p domain.PlaceResult) PlaceView {
	return PlaceView{
		PlaceID:       p.ID,
		Title:         p.Title(),
		Subtitle:      p.Subtitle(),
		DisplayName:   p.DisplayName,
		Location:      p.Location,
		DistanceKm:    p.DistanceKm,
		DistanceLabel: p.DistanceLabel(),
	}
}

// RouteView is a route estimate plus its display text.
type RouteView struct {
	Mode            domain.TransportMode  `json:"mode"`
	DurationSeconds float64               `json:"duration_seconds"`
	DurationText    string                `json:"duration_text"`
	DistanceKm      float64               `json:"distance_km"`
	Source          domain.EstimateSource `json:"source"`
	Points          []domain.Coordinate   `json:"points"`
}

func newRouteView(est domain.RouteEstimate) RouteView {
	points := est.Points
	if points == nil {
		points = []domain.Coordinate{}
	}
	return RouteView{
		Mode:            est.Mode,
		DurationSeconds: est.DurationSeconds,
		DurationText:    domain.FormatDuration(est.DurationSeconds),
		DistanceKm:      est.DistanceKm,
		Source:          est.Source,
		Points:          points,
	}
}

// DistanceView is the straight-line distance between two points.
type DistanceView struct {
	From           domain.Coordinate `json:"from"`
	To             domain.Coordinate `json:"to"`
	DistanceKm     float64           `json:"distance_km"`
	DistanceMeters float64           `json:"distance_meters"`
}

// PlaceSearchHandler geocodes q and sorts the matches by distance from lat/lon.
func PlaceSearchHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := c.Query("q")
		if query == "" {
			return errBadRequest(c, "q query parameter is required")
		}
		if utf8.RuneCountInString(query) > maxQueryLength {
			return errBadRequest(c, "query too long (max 200 characters)")
		}
		ref, err := queryCoordinate(c, "lat", "lon")
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		places, err := deps.Search.Search(c.UserContext(), query, &ref)
		if err != nil {
			LoggerFromCtx(c.UserContext()).Warn("place search failed", "error", err)
			return errBadGateway(c, "place search failed")
		}

		views := make([]PlaceView, 0, len(places))
		for _, p := range places {
			views = append(views, newPlaceView(p))
		}
		return c.JSON(views)
	}
}

// RouteEstimateHandler estimates travel time between two points for a mode.
func RouteEstimateHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		from, err := queryCoordinate(c, "from_lat", "from_lon")
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		to, err := queryCoordinate(c, "to_lat", "to_lon")
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		mode, err := domain.ParseTransportMode(c.Query("mode"))
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		est, err := deps.Routes.Estimate(c.UserContext(), from, to, mode, nil)
		switch {
		case errors.Is(err, domain.ErrRouteRequestFailed):
			LoggerFromCtx(c.UserContext()).Warn("route estimate failed", "mode", mode, "error", err)
			return errBadGateway(c, "route request failed")
		case err != nil:
			return errInternal(c, err.Error())
		}
		return c.JSON(newRouteView(est))
	}
}

// DistanceHandler returns the great-circle distance between two points.
func DistanceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		from, err := queryCoordinate(c, "from_lat", "from_lon")
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		to, err := queryCoordinate(c, "to_lat", "to_lon")
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		return c.JSON(DistanceView{
			From:           from,
			To:             to,
			DistanceKm:     geospatial.DistanceKm(from, to),
			DistanceMeters: math.Round(geospatial.Haversine(from.Lat, from.Lon, to.Lat, to.Lon)),
		})
	}
}

// queryCoordinate reads a required lat/lon pair. Zero is a valid value, so
// presence is checked on the raw string.
func queryCoordinate(c *fiber.Ctx, latKey, lonKey string) (domain.Coordinate, error) {
	rawLat, rawLon := c.Query(latKey), c.Query(lonKey)
	if rawLat == "" || rawLon == "" {
		return domain.Coordinate{}, errors.New(latKey + " and " + lonKey + " are required")
	}
	lat, err := strconv.ParseFloat(rawLat, 64)
	if err != nil {
		return domain.Coordinate{}, errors.New(latKey + " must be a number")
	}
	lon, err := strconv.ParseFloat(rawLon, 64)
	if err != nil {
		return domain.Coordinate{}, errors.New(lonKey + " must be a number")
	}
	coord := domain.Coordinate{Lat: lat, Lon: lon}
	if !coord.Valid() {
		return domain.Coordinate{}, errors.New(latKey + "/" + lonKey + " out of range")
	}
	return coord, nil
}
