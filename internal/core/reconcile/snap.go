package reconcile

import (
	"github.com/samirrijal/driverdash/internal/core/domain"
	"github.com/samirrijal/driverdash/internal/pkg/geospatial"
)

// Snap replaces the first and last path points with the trip pickup and
// destination when each lies within toleranceKm. Interior points are kept and
// the input slice is not modified. Snapping twice gives the same path.
func Snap(path []domain.GeoPoint, trip *domain.Trip, toleranceKm float64) []domain.GeoPoint {
	out, _, _ := snap(path, trip, toleranceKm)
	return out
}

func snap(path []domain.GeoPoint, trip *domain.Trip, toleranceKm float64) (out []domain.GeoPoint, start, end bool) {
	if trip == nil || len(path) == 0 {
		return path, false, false
	}

	first, last := path[0], path[len(path)-1]
	start = trip.Pickup != nil && geospatial.DistanceKm(first, *trip.Pickup) <= toleranceKm
	end = trip.Destination != nil && geospatial.DistanceKm(last, *trip.Destination) <= toleranceKm

	out = make([]domain.GeoPoint, len(path))
	copy(out, path)
	if start {
		out[0] = *trip.Pickup
	}
	if end {
		out[len(out)-1] = *trip.Destination
	}
	return out, start, end
}
