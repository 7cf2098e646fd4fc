package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/samirrijal/driverdash/internal/core/domain"
	"github.com/samirrijal/driverdash/internal/core/ports"
)

const (
	tripsCacheKey = "trips:list"
	tripsCacheTTL = 30
)

// TripService handles trip lookups against the trip source.
type TripService struct {
	source ports.TripSource
	cache  ports.CacheService
}

// NewTripService creates a new TripService. cache may be nil.
func NewTripService(source ports.TripSource, cache ports.CacheService) *TripService {
	return &TripService{source: source, cache: cache}
}

// List returns every known trip, served from cache for up to 30 seconds.
func (s *TripService) List(ctx context.Context) ([]domain.Trip, error) {
	trips, err := readThrough(ctx, s.cache, tripsCacheKey, "trips", tripsCacheTTL, s.source.ListTrips)
	if err != nil {
		return nil, fmt.Errorf("list trips: %w", err)
	}
	for i := range trips {
		if trips[i].LengthCategory == "" && trips[i].EstimatedDistanceKm > 0 {
			trips[i].LengthCategory = domain.LengthCategoryFor(trips[i].EstimatedDistanceKm)
		}
	}
	return trips, nil
}

// Refresh drops the cached trip list so the next List hits the source.
func (s *TripService) Refresh(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, tripsCacheKey)
}

// GetByID returns a single trip.
func (s *TripService) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	trips, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if t := findTrip(trips, id); t != nil {
		return t, nil
	}
	return nil, fmt.Errorf("trip %s: %w", id, domain.ErrNotFound)
}

// Exists reports whether id is still in the trip list. The dashboard uses it
// to drop a selection whose trip has disappeared.
func (s *TripService) Exists(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, nil
	}
	_, err := s.GetByID(ctx, id)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// Summary counts trips by status and by length category.
func (s *TripService) Summary(ctx context.Context) (*domain.TripSummary, error) {
	trips, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	sum := &domain.TripSummary{
		Total:      len(trips),
		ByStatus:   make(map[string]int),
		ByCategory: make(map[string]int),
	}
	for _, t := range trips {
		status := t.Status
		if status == "" {
			status = domain.TripPending
		}
		sum.ByStatus[status]++
		if status != domain.TripCompleted {
			sum.Active++
		}
		if t.LengthCategory != "" {
			sum.ByCategory[t.LengthCategory]++
		}
	}
	return sum, nil
}
