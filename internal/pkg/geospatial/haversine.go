package geospatial

import (
	"math"

	"github.com/samirrijal/wayfinder/internal/core/domain"
)

const earthRadiusKm = 6371.0

// DefaultRegionDelta is the span shown around the user's position.
const DefaultRegionDelta = 0.01

// DistanceKm returns the great-circle distance in kilometres between a and b.
func DistanceKm(a, b domain.Coordinate) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLon := toRad(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	// Rounding can push h a hair outside [0,1] for near-antipodal points.
	h = math.Min(1, math.Max(0, h))
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Haversine calculates the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	return DistanceKm(domain.Coordinate{Lat: lat1, Lon: lon1}, domain.Coordinate{Lat: lat2, Lon: lon2}) * 1000
}

// Bounds returns the extent of points. ok is false for an empty slice.
func Bounds(points []domain.Coordinate) (b domain.Bounds, ok bool) {
	if len(points) == 0 {
		return b, false
	}
	b = domain.Bounds{
		MinLat: points[0].Lat, MaxLat: points[0].Lat,
		MinLon: points[0].Lon, MaxLon: points[0].Lon,
	}
	for _, p := range points[1:] {
		b.MinLat = math.Min(b.MinLat, p.Lat)
		b.MaxLat = math.Max(b.MaxLat, p.Lat)
		b.MinLon = math.Min(b.MinLon, p.Lon)
		b.MaxLon = math.Max(b.MaxLon, p.Lon)
	}
	return b, true
}

// RegionAround returns a square region of the given span centered on c.
func RegionAround(c domain.Coordinate, delta float64) domain.Region {
	return domain.Region{Center: c, LatitudeDelta: delta, LongitudeDelta: delta}
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
