package domain

import "math"

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Swapped returns the point with its two components exchanged.
func (p GeoPoint) Swapped() GeoPoint {
	return GeoPoint{Lat: p.Lon, Lon: p.Lat}
}

// IsFinite reports whether both components are finite numbers.
func (p GeoPoint) IsFinite() bool {
	return !math.IsNaN(p.Lat) && !math.IsInf(p.Lat, 0) &&
		!math.IsNaN(p.Lon) && !math.IsInf(p.Lon, 0)
}

// InRange reports whether the point lies inside the WGS 84 lat/lon ranges.
func (p GeoPoint) InRange() bool {
	return p.IsFinite() && p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// Bounds represents a geographic bounding box.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// BoundsOf returns the bounding box of a path. ok is false for an empty path.
func BoundsOf(path []GeoPoint) (b Bounds, ok bool) {
	if len(path) == 0 {
		return Bounds{}, false
	}
	b = Bounds{MinLat: path[0].Lat, MinLon: path[0].Lon, MaxLat: path[0].Lat, MaxLon: path[0].Lon}
	for _, p := range path[1:] {
		b.MinLat = math.Min(b.MinLat, p.Lat)
		b.MinLon = math.Min(b.MinLon, p.Lon)
		b.MaxLat = math.Max(b.MaxLat, p.Lat)
		b.MaxLon = math.Max(b.MaxLon, p.Lon)
	}
	return b, true
}
