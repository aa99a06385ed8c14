package telemetry

// Span names used for instrumentation.
const (
	// Outbound services
	SpanGeocode = "geocoder.search"
	SpanRoute   = "router.route"

	// Dataset
	SpanDatasetLoad = "poi.load"
)

// Span attribute keys.
const (
	AttrAddress     = "geocode.address"
	AttrMatches     = "geocode.matches"
	AttrProfile     = "route.profile"
	AttrRouteCount  = "route.count"
	AttrHTTPStatus  = "http.status_code"
	AttrDatasetSize = "poi.count"
)
