package reconcile

import (
	"github.com/samirrijal/driverdash/internal/core/domain"
	"github.com/samirrijal/driverdash/internal/pkg/geospatial"
)

// ResolveOrientation decides whether path is stored as (lat, lon) or (lon, lat)
// by comparing how close its endpoints come to the reference pickup and
// destination in both readings. The swapped reading wins only when it beats the
// original by more than thresholdKm. The input is never modified; inverted
// reports whether the returned slice is the swapped copy.
func ResolveOrientation(path []domain.GeoPoint, pickup, destination *domain.GeoPoint, thresholdKm float64) (oriented []domain.GeoPoint, inverted bool) {
	if pickup == nil && destination == nil {
		return path, false
	}

	swapped := swapAxes(path)
	original := orientationScore(path, pickup, destination)
	alternative := orientationScore(swapped, pickup, destination)

	if alternative+thresholdKm < original {
		return swapped, true
	}
	return path, false
}

// orientationScore sums endpoint distances to the references. Missing
// references and paths shorter than two points add nothing, so a single known
// reference is not outweighed by an unknown one.
func orientationScore(path []domain.GeoPoint, pickup, destination *domain.GeoPoint) float64 {
	if len(path) < 2 {
		return 0
	}
	var score float64
	if pickup != nil {
		score += geospatial.DistanceKm(path[0], *pickup)
	}
	if destination != nil {
		score += geospatial.DistanceKm(path[len(path)-1], *destination)
	}
	return score
}

func swapAxes(path []domain.GeoPoint) []domain.GeoPoint {
	out := make([]domain.GeoPoint, len(path))
	for i, p := range path {
		out[i] = p.Swapped()
	}
	return out
}
