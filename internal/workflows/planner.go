package workflows

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.temporal.io/sdk/client"
)

// Planner implements ports.RoutePlanner by starting RoutePlanningWorkflow runs.
type Planner struct {
	client    client.Client
	taskQueue string
}

func NewPlanner(c client.Client, taskQueue string) *Planner {
	return &Planner{client: c, taskQueue: taskQueue}
}

// StartRoutePlan starts a workflow and returns its run id without waiting.
func (p *Planner) StartRoutePlan(ctx context.Context, tripID, algorithm string) (string, error) {
	opts := client.StartWorkflowOptions{
		ID:        fmt.Sprintf("route-plan-%s-%s", tripID, uuid.NewString()),
		TaskQueue: p.taskQueue,
	}
	run, err := p.client.ExecuteWorkflow(ctx, opts, RoutePlanningWorkflow, RoutePlanInput{TripID: tripID, Algorithm: algorithm})
	if err != nil {
		return "", fmt.Errorf("start route planning: %w", err)
	}
	return run.GetRunID(), nil
}
