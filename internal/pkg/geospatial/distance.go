package geospatial

import (
	"math"

	"github.com/golang/geo/s2"

	"github.com/samirrijal/driverdash/internal/core/domain"
)

// EarthRadiusKm is the mean Earth radius used for all distance conversions.
const EarthRadiusKm = 6371.0

// DistanceKm returns the great-circle distance between two points in kilometers.
// It goes through unit vectors, so components outside the usual lat/lon ranges
// (as in an axis-swapped path) still give a finite answer.
func DistanceKm(a, b domain.GeoPoint) float64 {
	return toPoint(a).Distance(toPoint(b)).Radians() * EarthRadiusKm
}

// DistanceToPathKm returns the distance from p to the closest point on the path
// polyline. An empty path yields +Inf.
func DistanceToPathKm(p domain.GeoPoint, path []domain.GeoPoint) float64 {
	if len(path) == 0 {
		return math.Inf(1)
	}
	line := make(s2.Polyline, len(path))
	for i, v := range path {
		line[i] = toPoint(v)
	}
	target := toPoint(p)
	projected, _ := line.Project(target)
	return target.Distance(projected).Radians() * EarthRadiusKm
}

// BoundingBox returns a bounding box around a point with the given radius in kilometers.
func BoundingBox(p domain.GeoPoint, radiusKm float64) domain.Bounds {
	latDelta := radiusKm / 111.32
	lonDelta := radiusKm / (111.32 * math.Cos(toRad(p.Lat)))

	return domain.Bounds{
		MinLat: p.Lat - latDelta,
		MinLon: p.Lon - lonDelta,
		MaxLat: p.Lat + latDelta,
		MaxLon: p.Lon + lonDelta,
	}
}

// Expand grows b by radiusKm on every side.
func Expand(b domain.Bounds, radiusKm float64) domain.Bounds {
	lo := BoundingBox(domain.GeoPoint{Lat: b.MinLat, Lon: b.MinLon}, radiusKm)
	hi := BoundingBox(domain.GeoPoint{Lat: b.MaxLat, Lon: b.MaxLon}, radiusKm)
	return domain.Bounds{MinLat: lo.MinLat, MinLon: lo.MinLon, MaxLat: hi.MaxLat, MaxLon: hi.MaxLon}
}

func toPoint(p domain.GeoPoint) s2.Point {
	return s2.PointFromLatLng(s2.LatLngFromDegrees(p.Lat, p.Lon))
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
