package usecases

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"unicode/utf8"

	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/wayfinder/internal/core/domain"
	"github.com/samirrijal/wayfinder/internal/core/ports"
	"github.com/samirrijal/wayfinder/internal/pkg/geospatial"
	"github.com/samirrijal/wayfinder/internal/pkg/telemetry"
)

const (
	DefaultMinQueryLength = 3
	DefaultSearchLimit    = 5
)

// PlaceSearchService turns free-text queries into places ordered by
// distance from a reference point.
type PlaceSearchService struct {
	geocoder       ports.Geocoder
	minQueryLength int
	limit          int
}

// NewPlaceSearchService creates a PlaceSearchService. Non-positive values
// fall back to the defaults.
func NewPlaceSearchService(geocoder ports.Geocoder, minQueryLength, limit int) *PlaceSearchService {
	if minQueryLength <= 0 {
		minQueryLength = DefaultMinQueryLength
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	return &PlaceSearchService{geocoder: geocoder, minQueryLength: minQueryLength, limit: limit}
}

// Searchable reports whether query is long enough to hit the geocoder.
func (s *PlaceSearchService) Searchable(query string) bool {
	return utf8.RuneCountInString(query) >= s.minQueryLength
}

// Search returns matches for query sorted by ascending distance from
// reference. Short queries and a missing reference give an empty list
// without calling the geocoder.
func (s *PlaceSearchService) Search(ctx context.Context, query string, reference *domain.Coordinate) ([]domain.PlaceResult, error) {
	if !s.Searchable(query) || reference == nil {
		return []domain.PlaceResult{}, nil
	}

	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanPlaceSearch)
	defer span.End()

	places, err := s.geocoder.Search(ctx, query, s.limit)
	if err != nil {
		span.SetStatus(codes.Error, "geocoder failed")
		return nil, fmt.Errorf("%w: %w", domain.ErrSearchRequestFailed, err)
	}

	for i := range places {
		places[i].DistanceKm = geospatial.DistanceKm(*reference, places[i].Location)
	}
	slices.SortStableFunc(places, func(a, b domain.PlaceResult) int {
		return cmp.Compare(a.DistanceKm, b.DistanceKm)
	})

	span.SetAttributes(telemetry.AttrResultCount.Int(len(places)))
	return places, nil
}

// FindByID returns the place with the given id from results.
func FindByID(results []domain.PlaceResult, id int64) (domain.PlaceResult, bool) {
	for _, r := range results {
		if r.ID == id {
			return r, true
		}
	}
	return domain.PlaceResult{}, false
}
