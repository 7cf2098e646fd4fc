package ports

import (
	"context"

	"github.com/samirrijal/driverdash/internal/core/domain"
)

// TripSource lists the trips known to the routing backend.
type TripSource interface {
	ListTrips(ctx context.Context) ([]domain.Trip, error)
}

// ServiceSource lists roadside services (gas stations, tire shops, workshops).
type ServiceSource interface {
	ListServices(ctx context.Context) ([]domain.Service, error)
}

// RoutingClient asks the routing backend for a path between two points. The
// returned path is raw: its point shape and axis order are not guaranteed.
type RoutingClient interface {
	FetchRoute(ctx context.Context, from, to domain.GeoPoint, algorithm string) (*domain.RawRoute, error)
}

// RouteHistoryRepository persists reconciled routes.
type RouteHistoryRepository interface {
	Insert(ctx context.Context, rec *domain.RouteRecord) error
	ListByTrip(ctx context.Context, tripID string, limit int) ([]domain.RouteRecord, error)
}
