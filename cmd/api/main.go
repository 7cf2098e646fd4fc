package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.temporal.io/sdk/client"

	"github.com/samirrijal/driverdash/internal/adapters/http"
	natsadapter "github.com/samirrijal/driverdash/internal/adapters/nats"
	"github.com/samirrijal/driverdash/internal/app"
	"github.com/samirrijal/driverdash/internal/pkg/config"
	"github.com/samirrijal/driverdash/internal/pkg/logging"
	"github.com/samirrijal/driverdash/internal/pkg/telemetry"
	"github.com/samirrijal/driverdash/internal/workflows"
)

func main() {
	cfg, err := config.Load("driverdash-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logging.Setup("driverdash-api", cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	shutdownTracer, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr, cfg.Telemetry.Enabled)
	if err != nil {
		slog.Warn("telemetry init failed", "error", err)
	} else {
		defer shutdownTracer(context.Background())
	}

	svc := app.Build(ctx, cfg)
	defer svc.Close()

	deps := &http.Dependencies{
		Trips:     svc.Trips,
		Routes:    svc.Routes,
		Services:  svc.OnRoute,
		Algorithm: cfg.Backend.Algorithm,
	}
	if svc.DB != nil {
		deps.DB = svc.DB
	}
	if p, ok := svc.Cache.(http.Pinger); ok {
		deps.Cache = p
	}

	// Separate connection for the WebSocket relay so slow clients never
	// block JetStream publishing.
	if cfg.NATS.Enabled {
		nc, err := natsadapter.RawConn(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats ws conn unavailable", "error", err)
		} else {
			defer nc.Close()
			deps.NATS = nc
		}
	}

	if cfg.Temporal.Enabled {
		tc, err := client.Dial(client.Options{
			HostPort:  cfg.Temporal.HostPort,
			Namespace: cfg.Temporal.Namespace,
			Logger:    slog.Default(),
		})
		if err != nil {
			slog.Warn("temporal unavailable, planning inline", "error", err)
		} else {
			defer tc.Close()
			deps.Planner = workflows.NewPlanner(tc, cfg.Temporal.TaskQueue)
		}
	}

	// Fiber
	srv := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    4 * 1024 * 1024, // paths of up to 20k points
		AppName:      "Driver Dashboard API",
	})

	http.SetupRoutes(srv, deps, http.RouterOptions{
		CORSOrigins:  cfg.Server.CORSOrigins,
		RateLimit:    120,
		RouteTimeout: time.Duration(cfg.Backend.TimeoutSeconds+5) * time.Second,
	})

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "backend", cfg.Backend.BaseURL)
		if err := srv.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
