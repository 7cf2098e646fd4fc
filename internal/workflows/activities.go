package workflows

import (
	"context"
	"fmt"

	"go.temporal.io/sdk/activity"

	"github.com/samirrijal/driverdash/internal/core/domain"
)

// RoutePlanning is the part of the route use case the activities drive.
type RoutePlanning interface {
	Plan(ctx context.Context, tripID, algorithm, currentID string) (*domain.PlannedRoute, error)
	SaveHistory(ctx context.Context, planned *domain.PlannedRoute) (*domain.RouteRecord, error)
	Publish(ctx context.Context, planned *domain.PlannedRoute) error
}

// RouteActivities holds the activity implementations for the route planning workflow.
type RouteActivities struct {
	Routes RoutePlanning
}

// FetchTripRoute fetches and reconciles the route for a trip.
func (a *RouteActivities) FetchTripRoute(ctx context.Context, tripID, algorithm string) (*domain.PlannedRoute, error) {
	planned, err := a.Routes.Plan(ctx, tripID, algorithm, "")
	if err != nil {
		return nil, fmt.Errorf("plan route for trip %s: %w", tripID, err)
	}
	activity.GetLogger(ctx).Info("route planned", "tripID", tripID, "fallback", planned.Fallback)
	return planned, nil
}

// SaveHistory stores the planned route and returns the record id. An empty
// id means history storage is disabled.
func (a *RouteActivities) SaveHistory(ctx context.Context, planned *domain.PlannedRoute) (string, error) {
	rec, err := a.Routes.SaveHistory(ctx, planned)
	if err != nil {
		return "", err
	}
	if rec == nil {
		return "", nil
	}
	return rec.ID, nil
}

// PublishRoute broadcasts the planned route to dashboards.
func (a *RouteActivities) PublishRoute(ctx context.Context, planned *domain.PlannedRoute) error {
	return a.Routes.Publish(ctx, planned)
}
