package usecases

import (
	"context"
	"fmt"

	"github.com/samirrijal/driverdash/internal/core/domain"
	"github.com/samirrijal/driverdash/internal/core/ports"
	"github.com/samirrijal/driverdash/internal/pkg/geospatial"
)

const (
	servicesCacheKey = "services:list"
	servicesCacheTTL = 300

	maxOnRouteRadiusKm = 25.0
)

// OnRouteService finds roadside services along a driver's path.
type OnRouteService struct {
	source   ports.ServiceSource
	cache    ports.CacheService
	radiusKm float64
}

// NewOnRouteService creates a new OnRouteService. radiusKm is the default
// search corridor half-width.
func NewOnRouteService(source ports.ServiceSource, cache ports.CacheService, radiusKm float64) *OnRouteService {
	if radiusKm <= 0 {
		radiusKm = 1
	}
	return &OnRouteService{source: source, cache: cache, radiusKm: radiusKm}
}

// List returns all services, optionally restricted to one type.
func (s *OnRouteService) List(ctx context.Context, serviceType string) ([]domain.Service, error) {
	all, err := readThrough(ctx, s.cache, servicesCacheKey, "services", servicesCacheTTL, s.source.ListServices)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	if serviceType == "" {
		return all, nil
	}
	out := make([]domain.Service, 0, len(all))
	for _, svc := range all {
		if svc.Type == serviceType {
			out = append(out, svc)
		}
	}
	return out, nil
}

// AlongPath returns the services within radiusKm of path, nearest first, each
// with DistanceKm set. radiusKm <= 0 uses the configured default; types, when
// non-empty, restricts the result to those service types.
func (s *OnRouteService) AlongPath(ctx context.Context, path []domain.GeoPoint, radiusKm float64, types []string) ([]domain.Service, error) {
	if len(path) == 0 {
		return []domain.Service{}, nil
	}
	if radiusKm <= 0 {
		radiusKm = s.radiusKm
	}
	if radiusKm > maxOnRouteRadiusKm {
		radiusKm = maxOnRouteRadiusKm
	}

	all, err := s.List(ctx, "")
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]bool, len(types))
	for _, t := range types {
		wanted[t] = true
	}

	idx := geospatial.NewPointIndex[domain.Service]()
	for _, svc := range all {
		if len(wanted) > 0 && !wanted[svc.Type] {
			continue
		}
		if !svc.Location.InRange() {
			continue
		}
		idx.Insert(svc.Location, svc)
	}

	hits := idx.NearPath(path, radiusKm)
	out := make([]domain.Service, len(hits))
	for i, h := range hits {
		svc := h.Item
		d := h.DistanceKm
		svc.DistanceKm = &d
		out[i] = svc
	}
	return out, nil
}

// CountByType groups services by their type.
func CountByType(services []domain.Service) map[string]int {
	counts := make(map[string]int)
	for _, svc := range services {
		counts[svc.Type]++
	}
	return counts
}
