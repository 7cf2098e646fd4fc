package reconcile

import (
	"math"

	"github.com/samirrijal/driverdash/internal/core/domain"
	"github.com/samirrijal/driverdash/internal/pkg/geospatial"
)

// Match is the result of scoring a path against a trip list.
type Match struct {
	Best            *domain.Trip // nil when no trip could be compared
	BestScore       float64      // km, +Inf when Best is nil
	SecondBestScore float64      // km, +Inf when fewer than two trips scored
}

// BestID returns the matched trip id, or "" when there is none.
func (m Match) BestID() string {
	if m.Best == nil {
		return ""
	}
	return m.Best.ID
}

// MatchScore sums the distance from the first path point to the trip pickup
// and from the last path point to the trip destination. A missing endpoint, or
// a path shorter than two points, makes its half +Inf.
func MatchScore(path []domain.GeoPoint, trip domain.Trip) float64 {
	return endpointDistance(path, 0, trip.Pickup) + endpointDistance(path, len(path)-1, trip.Destination)
}

func endpointDistance(path []domain.GeoPoint, idx int, ref *domain.GeoPoint) float64 {
	if len(path) < 2 || ref == nil {
		return math.Inf(1)
	}
	return geospatial.DistanceKm(path[idx], *ref)
}

// BestMatches scans every trip once and keeps the lowest and second-lowest
// scores. A tie for best goes to the trip listed first. Best points into trips.
func BestMatches(path []domain.GeoPoint, trips []domain.Trip) Match {
	m := Match{BestScore: math.Inf(1), SecondBestScore: math.Inf(1)}
	for i := range trips {
		score := MatchScore(path, trips[i])
		switch {
		case score < m.BestScore:
			m.SecondBestScore = m.BestScore
			m.BestScore = score
			m.Best = &trips[i]
		case score < m.SecondBestScore:
			m.SecondBestScore = score
		}
	}
	return m
}
