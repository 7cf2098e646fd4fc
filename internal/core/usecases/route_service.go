package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/driverdash/internal/core/domain"
	"github.com/samirrijal/driverdash/internal/core/ports"
	"github.com/samirrijal/driverdash/internal/core/reconcile"
	"github.com/samirrijal/driverdash/internal/pkg/metrics"
)

var tracer = otel.Tracer("github.com/samirrijal/driverdash/internal/core/usecases")

// RouteService reconciles routing backend paths against the trip list and
// keeps a history of the results.
type RouteService struct {
	engine    *reconcile.Engine
	trips     *TripService
	routing   ports.RoutingClient
	history   ports.RouteHistoryRepository
	publisher ports.EventPublisher
	now       func() time.Time
}

// NewRouteService creates a new RouteService. history and publisher may be nil.
func NewRouteService(
	engine *reconcile.Engine,
	trips *TripService,
	routing ports.RoutingClient,
	history ports.RouteHistoryRepository,
	publisher ports.EventPublisher,
) *RouteService {
	return &RouteService{
		engine:    engine,
		trips:     trips,
		routing:   routing,
		history:   history,
		publisher: publisher,
		now:       time.Now,
	}
}

// Reconcile runs one raw path through the engine against the current trip list.
// currentID is the dashboard's selected trip, "" for none. A trip source
// failure is logged and the path is reconciled without trips.
func (s *RouteService) Reconcile(ctx context.Context, raw []any, currentID string) (*domain.Reconciliation, error) {
	ctx, span := tracer.Start(ctx, "RouteService.Reconcile")
	defer span.End()

	trips, err := s.trips.List(ctx)
	if err != nil {
		slog.WarnContext(ctx, "reconcile without trips", "error", err)
		span.RecordError(err)
		trips = nil
	}

	res := s.engine.Reconcile(raw, trips, currentID)
	metrics.ObserveReconciliation(res)
	span.SetAttributes(
		attribute.Int("path.raw_points", len(raw)),
		attribute.Int("path.final_points", len(res.FinalPath)),
		attribute.String("trip.matched", res.MatchedTripID),
		attribute.String("trip.auto_selected", res.AutoSelectedTripID),
		attribute.Bool("path.inverted", res.Inverted),
	)

	if res.HasPath() {
		planned := &domain.PlannedRoute{
			TripID:         res.MatchedTripID,
			Reconciliation: res,
			PlannedAt:      s.now(),
		}
		s.recordBestEffort(ctx, planned)
	}
	return &res, nil
}

// PlanTripRoute asks the routing backend for a path between the trip's pickup
// and destination, reconciles it, stores it and publishes it. Storage and
// publishing failures are logged, not returned.
func (s *RouteService) PlanTripRoute(ctx context.Context, tripID, algorithm, currentID string) (*domain.PlannedRoute, error) {
	planned, err := s.Plan(ctx, tripID, algorithm, currentID)
	if err != nil {
		return nil, err
	}
	s.recordBestEffort(ctx, planned)
	return planned, nil
}

// Plan computes a reconciled route for a trip without side effects. When the
// backend fails or returns nothing drawable the route falls back to the
// straight pickup-destination line. A trip lacking either endpoint yields
// domain.ErrNoRoute.
func (s *RouteService) Plan(ctx context.Context, tripID, algorithm, currentID string) (*domain.PlannedRoute, error) {
	ctx, span := tracer.Start(ctx, "RouteService.Plan")
	defer span.End()
	span.SetAttributes(attribute.String("trip.id", tripID), attribute.String("route.algorithm", algorithm))

	trips, err := s.trips.List(ctx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	trip := findTrip(trips, tripID)
	if trip == nil {
		return nil, fmt.Errorf("trip %s: %w", tripID, domain.ErrNotFound)
	}
	if trip.Pickup == nil || trip.Destination == nil {
		return nil, fmt.Errorf("trip %s has no pickup or destination: %w", tripID, domain.ErrNoRoute)
	}

	planned := &domain.PlannedRoute{TripID: trip.ID, PlannedAt: s.now()}

	raw, err := s.routing.FetchRoute(ctx, *trip.Pickup, *trip.Destination, algorithm)
	if err != nil {
		slog.WarnContext(ctx, "routing backend failed, using straight line",
			"trip_id", tripID, "algorithm", algorithm, "error", err)
		span.RecordError(err)
	} else if raw != nil {
		planned.Meta = raw.Meta
		planned.Reconciliation = s.engine.Reconcile(raw.Path, trips, currentID)
		metrics.ObserveReconciliation(planned.Reconciliation)
	}

	if !planned.Reconciliation.HasPath() {
		planned.Fallback = true
		planned.Reconciliation = straightLine(trip)
		metrics.RouteFallbacks.Inc()
	}
	span.SetAttributes(attribute.Bool("route.fallback", planned.Fallback))
	return planned, nil
}

// SaveHistory stores a planned route.
func (s *RouteService) SaveHistory(ctx context.Context, planned *domain.PlannedRoute) (*domain.RouteRecord, error) {
	if s.history == nil {
		return nil, nil
	}
	rec := &domain.RouteRecord{
		TripID:             planned.TripID,
		AutoSelectedTripID: planned.Reconciliation.AutoSelectedTripID,
		Algorithm:          planned.Meta.Algorithm,
		Path:               planned.Reconciliation.FinalPath,
		BestScoreKm:        planned.Reconciliation.BestScoreKm,
		Inverted:           planned.Reconciliation.Inverted,
		Fallback:           planned.Fallback,
		CreatedAt:          planned.PlannedAt,
	}
	if err := s.history.Insert(ctx, rec); err != nil {
		return nil, fmt.Errorf("save route history: %w", err)
	}
	return rec, nil
}

// Publish broadcasts a planned route to connected dashboards.
func (s *RouteService) Publish(ctx context.Context, planned *domain.PlannedRoute) error {
	if s.publisher == nil {
		return nil
	}
	event := &domain.RouteEvent{
		TripID:             planned.TripID,
		AutoSelectedTripID: planned.Reconciliation.AutoSelectedTripID,
		Path:               planned.Reconciliation.FinalPath,
		Fallback:           planned.Fallback,
		Time:               planned.PlannedAt,
	}
	if err := s.publisher.PublishRoute(ctx, event); err != nil {
		return fmt.Errorf("publish route: %w", err)
	}
	return nil
}

// History returns the most recent reconciliations stored for a trip.
func (s *RouteService) History(ctx context.Context, tripID string, limit int) ([]domain.RouteRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if s.history == nil {
		return []domain.RouteRecord{}, nil
	}
	return s.history.ListByTrip(ctx, tripID, limit)
}

func (s *RouteService) recordBestEffort(ctx context.Context, planned *domain.PlannedRoute) {
	if _, err := s.SaveHistory(ctx, planned); err != nil {
		slog.WarnContext(ctx, "route history not saved", "trip_id", planned.TripID, "error", err)
	}
	if err := s.Publish(ctx, planned); err != nil {
		slog.WarnContext(ctx, "route event not published", "trip_id", planned.TripID, "error", err)
	}
}

// straightLine is what the dashboard draws when no routed path is available.
func straightLine(trip *domain.Trip) domain.Reconciliation {
	return domain.Reconciliation{
		FinalPath:     []domain.GeoPoint{*trip.Pickup, *trip.Destination},
		MatchedTripID: trip.ID,
	}
}

func findTrip(trips []domain.Trip, id string) *domain.Trip {
	for i := range trips {
		if trips[i].ID == id {
			return &trips[i]
		}
	}
	return nil
}
