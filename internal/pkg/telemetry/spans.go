package telemetry

import "go.opentelemetry.io/otel/attribute"

// Span names for outbound calls and screen transitions.
const (
	SpanGeocodeSearch = "geocoder.search"
	SpanRouteFetch    = "router.route"
	SpanRouteEstimate = "route.estimate"
	SpanPlaceSearch   = "place.search"
)

// Attribute keys shared by spans.
const (
	AttrQueryLength = attribute.Key("wayfinder.query.length")
	AttrResultCount = attribute.Key("wayfinder.result.count")
	AttrMode        = attribute.Key("wayfinder.route.mode")
	AttrSource      = attribute.Key("wayfinder.route.source")
	AttrCacheHit    = attribute.Key("wayfinder.route.polyline_cached")
	AttrHTTPStatus  = attribute.Key("http.status_code")
)
