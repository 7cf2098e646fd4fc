package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/samirrijal/driverdash/internal/core/domain"
)

// RoutePlanInput is the input for the route planning workflow.
type RoutePlanInput struct {
	TripID    string
	Algorithm string
}

// RoutePlanResult is what the workflow reports once done.
type RoutePlanResult struct {
	Route     *domain.PlannedRoute
	RecordID  string
	Published bool
}

// RoutePlanningWorkflow plans a trip route, stores it and broadcasts it.
// A trip that cannot be routed fails without retries. Publishing is best
// effort since the stored record is the source of truth.
func RoutePlanningWorkflow(ctx workflow.Context, input RoutePlanInput) (*RoutePlanResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting route planning workflow", "tripID", input.TripID, "algorithm", input.Algorithm)

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	// Step 1: Fetch and reconcile
	var planned *domain.PlannedRoute
	err := workflow.ExecuteActivity(ctx, "FetchTripRoute", input.TripID, input.Algorithm).Get(ctx, &planned)
	if err != nil {
		return nil, err
	}
	result := &RoutePlanResult{Route: planned}

	// Step 2: Persist
	if err := workflow.ExecuteActivity(ctx, "SaveHistory", planned).Get(ctx, &result.RecordID); err != nil {
		return nil, err
	}

	// Step 3: Broadcast
	if err := workflow.ExecuteActivity(ctx, "PublishRoute", planned).Get(ctx, nil); err != nil {
		logger.Warn("route broadcast failed", "tripID", input.TripID, "error", err)
		return result, nil
	}
	result.Published = true

	logger.Info("Route planned", "tripID", input.TripID, "recordID", result.RecordID, "fallback", planned.Fallback)
	return result, nil
}
