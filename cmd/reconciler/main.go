package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	natsadapter "github.com/samirrijal/driverdash/internal/adapters/nats"
	"github.com/samirrijal/driverdash/internal/app"
	"github.com/samirrijal/driverdash/internal/core/domain"
	"github.com/samirrijal/driverdash/internal/pkg/config"
	"github.com/samirrijal/driverdash/internal/pkg/logging"
	"github.com/samirrijal/driverdash/internal/pkg/telemetry"
)

// reconciler consumes raw paths from NATS, reconciles them against the live
// trip list and republishes the result for dashboards.
func main() {
	cfg, err := config.Load("driverdash-reconciler")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup("driverdash-reconciler", cfg.Log.Level, cfg.Log.Format)

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
	if svc.Publisher == nil {
		log.Fatal("reconciler needs NATS: set DRIVERDASH_NATS_ENABLED=true")
	}

	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats subscriber: %v", err)
	}
	defer sub.Close()

	err = sub.SubscribeRawPaths(ctx, func(ctx context.Context, msg *domain.RawPathMessage) error {
		res, err := svc.Routes.Reconcile(ctx, msg.Path, msg.SelectedID)
		if err != nil {
			return err
		}
		slog.DebugContext(ctx, "path reconciled",
			"driver_id", msg.DriverID,
			"raw_points", len(msg.Path),
			"final_points", len(res.FinalPath),
			"matched_trip_id", res.MatchedTripID,
			"inverted", res.Inverted,
		)
		return nil
	})
	if err != nil {
		log.Fatalf("subscribe: %v", err)
	}

	slog.Info("reconciler started", "subject", natsadapter.SubjectRawPaths)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("reconciler stopping", "signal", sig.String())
}
