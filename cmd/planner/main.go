package main

import (
	"context"
	"log"
	"log/slog"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/samirrijal/driverdash/internal/app"
	"github.com/samirrijal/driverdash/internal/pkg/config"
	"github.com/samirrijal/driverdash/internal/pkg/logging"
	"github.com/samirrijal/driverdash/internal/pkg/telemetry"
	"github.com/samirrijal/driverdash/internal/workflows"
)

func main() {
	cfg, err := config.Load("driverdash-planner")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup("driverdash-planner", cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracer, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr, cfg.Telemetry.Enabled)
	if err != nil {
		slog.Warn("telemetry init failed", "error", err)
	} else {
		defer shutdownTracer(context.Background())
	}

	svc := app.Build(ctx, cfg)
	defer svc.Close()

	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    slog.Default(),
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	w.RegisterWorkflow(workflows.RoutePlanningWorkflow)
	w.RegisterActivity(&workflows.RouteActivities{Routes: svc.Routes})

	slog.Info("planner worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
