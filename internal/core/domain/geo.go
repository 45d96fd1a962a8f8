package domain

// Coordinate represents a geographic coordinate (WGS 84).
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the coordinate lies within WGS 84 ranges.
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// DefaultCenter is where the map opens when no location fix is known yet.
var DefaultCenter = Coordinate{Lat: -34.6075682, Lon: -58.4370894}

// Bounds represents a geographic bounding box.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// Region is a visible map area: a center plus the span shown around it.
type Region struct {
	Center         Coordinate `json:"center"`
	LatitudeDelta  float64    `json:"latitude_delta"`
	LongitudeDelta float64    `json:"longitude_delta"`
}

// EdgePadding is the inset, in screen points, kept around fitted content.
type EdgePadding struct {
	Top    int `json:"top"`
	Left   int `json:"left"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
}

// RouteFitPadding is applied when the camera frames a freshly fetched route.
var RouteFitPadding = EdgePadding{Top: 100, Left: 60, Right: 60, Bottom: 100}

// CameraKind tells the client how to move the map.
type CameraKind string

const (
	CameraRegion CameraKind = "region"
	CameraFit    CameraKind = "fit"
)

// CameraHint is an instruction for the client's map view. Exactly one of
// Region or Bounds is set, depending on Kind.
type CameraHint struct {
	Kind    CameraKind   `json:"kind"`
	Region  *Region      `json:"region,omitempty"`
	Bounds  *Bounds      `json:"bounds,omitempty"`
	Padding *EdgePadding `json:"padding,omitempty"`
}
