package usecases

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/wayfinder/internal/core/domain"
	"github.com/samirrijal/wayfinder/internal/core/ports"
	"github.com/samirrijal/wayfinder/internal/pkg/geospatial"
	"github.com/samirrijal/wayfinder/internal/pkg/telemetry"
)

// EstimateRequest carries everything an Estimator needs.
type EstimateRequest struct {
	Origin      domain.Coordinate
	Destination domain.Coordinate
	Mode        domain.TransportMode
	// Cached is the polyline currently on screen, if any.
	Cached *domain.CachedPolyline
}

// Estimator produces a route estimate for one family of transport modes.
type Estimator interface {
	Estimate(ctx context.Context, req EstimateRequest) (domain.RouteEstimate, error)
}

// DrivingEstimator takes both shape and duration from the routing service.
type DrivingEstimator struct {
	router ports.Router
}

func (e DrivingEstimator) Estimate(ctx context.Context, req EstimateRequest) (domain.RouteEstimate, error) {
	path, err := e.router.Route(ctx, req.Origin, req.Destination)
	if err != nil {
		return domain.RouteEstimate{}, fmt.Errorf("%w: %w", domain.ErrRouteRequestFailed, err)
	}
	return domain.RouteEstimate{
		Mode:            req.Mode,
		Points:          path.Points,
		DurationSeconds: path.DurationSeconds,
		DistanceKm:      path.DistanceMeters / 1000,
		Source:          domain.SourceRoutingService,
		PolylineFetched: true,
	}, nil
}

// ConstantSpeedEstimator derives duration from the straight-line distance
// at a fixed speed. The routing service is only asked for a shape to draw,
// and only when no shape for the same destination is cached.
type ConstantSpeedEstimator struct {
	router   ports.Router
	speedKmh float64
}

func (e ConstantSpeedEstimator) Estimate(ctx context.Context, req EstimateRequest) (domain.RouteEstimate, error) {
	km := geospatial.DistanceKm(req.Origin, req.Destination)
	est := domain.RouteEstimate{
		Mode:            req.Mode,
		DistanceKm:      km,
		DurationSeconds: km * 1000 / (e.speedKmh * 1000 / 3600),
		Source:          domain.SourceConstantSpeed,
	}

	if req.Cached.Matches(req.Destination) {
		est.Points = req.Cached.Points
		return est, nil
	}

	path, err := e.router.Route(ctx, req.Origin, req.Destination)
	if ctx.Err() != nil {
		return domain.RouteEstimate{}, ctx.Err()
	}
	if err != nil {
		// The duration does not depend on the shape, so the estimate stands.
		slog.DebugContext(ctx, "polyline fetch failed", "mode", req.Mode, "error", err)
		return est, nil
	}
	est.Points = path.Points
	est.PolylineFetched = true
	return est, nil
}

// RouteService dispatches estimates to the estimator for the requested mode.
type RouteService struct {
	estimators map[domain.TransportMode]Estimator
}

// NewRouteService wires the driving estimator and a constant-speed
// estimator for every other mode.
func NewRouteService(router ports.Router) *RouteService {
	est := make(map[domain.TransportMode]Estimator, len(domain.Modes))
	for _, m := range domain.Modes {
		if m == domain.ModeDriving {
			est[m] = DrivingEstimator{router: router}
			continue
		}
		est[m] = ConstantSpeedEstimator{router: router, speedKmh: m.SpeedKmh()}
	}
	return &RouteService{estimators: est}
}

// Estimate computes the route and travel time from origin to destination.
// cached may be nil.
func (s *RouteService) Estimate(
	ctx context.Context,
	origin, destination domain.Coordinate,
	mode domain.TransportMode,
	cached *domain.CachedPolyline,
) (domain.RouteEstimate, error) {
	e, ok := s.estimators[mode]
	if !ok {
		return domain.RouteEstimate{}, fmt.Errorf("%w: %q", domain.ErrUnknownMode, mode)
	}

	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanRouteEstimate)
	defer span.End()
	span.SetAttributes(
		telemetry.AttrMode.String(string(mode)),
		telemetry.AttrCacheHit.Bool(cached.Matches(destination)),
	)

	est, err := e.Estimate(ctx, EstimateRequest{
		Origin:      origin,
		Destination: destination,
		Mode:        mode,
		Cached:      cached,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "estimate failed")
		return domain.RouteEstimate{}, err
	}
	span.SetAttributes(telemetry.AttrSource.String(string(est.Source)))
	return est, nil
}
