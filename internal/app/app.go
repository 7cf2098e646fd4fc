// Package app wires adapters and use cases from configuration. Every binary
// under cmd/ builds its services through here.
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/samirrijal/driverdash/internal/adapters/backend"
	"github.com/samirrijal/driverdash/internal/adapters/memcache"
	natsadapter "github.com/samirrijal/driverdash/internal/adapters/nats"
	"github.com/samirrijal/driverdash/internal/adapters/postgres"
	"github.com/samirrijal/driverdash/internal/adapters/valkey"
	"github.com/samirrijal/driverdash/internal/core/ports"
	"github.com/samirrijal/driverdash/internal/core/reconcile"
	"github.com/samirrijal/driverdash/internal/core/usecases"
	"github.com/samirrijal/driverdash/internal/pkg/config"
)

// Services is the wired application.
type Services struct {
	Config    *config.Config
	Backend   *backend.Client
	Engine    *reconcile.Engine
	Trips     *usecases.TripService
	Routes    *usecases.RouteService
	OnRoute   *usecases.OnRouteService
	Cache     ports.CacheService

	// DB and Publisher are nil when disabled or unreachable.
	DB        *postgres.DB
	Publisher *natsadapter.Publisher

	closers []func()
}

// Build connects optional infrastructure and assembles the use cases.
// Postgres, NATS and Valkey failures degrade the service instead of
// aborting: history, events and shared caching are then switched off.
func Build(ctx context.Context, cfg *config.Config) *Services {
	s := &Services{Config: cfg}

	s.Cache = s.buildCache(cfg)

	if cfg.Database.Enabled {
		dbCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		db, err := postgres.New(dbCtx, cfg.Database.DSN(), cfg.Database.MaxConns)
		cancel()
		if err != nil {
			slog.Warn("database unavailable, route history disabled", "error", err)
		} else {
			s.DB = db
			s.closers = append(s.closers, db.Close)
			go db.ReportPoolStats(ctx, 15*time.Second)
		}
	}

	if cfg.NATS.Enabled {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable, route events disabled", "error", err)
		} else {
			s.Publisher = pub
			s.closers = append(s.closers, pub.Close)
		}
	}

	s.Backend = backend.New(cfg.Backend.BaseURL, time.Duration(cfg.Backend.TimeoutSeconds)*time.Second, slog.Default())
	s.Engine = reconcile.NewEngine(cfg.Reconcile)
	s.Trips = usecases.NewTripService(s.Backend, s.Cache)
	s.OnRoute = usecases.NewOnRouteService(s.Backend, s.Cache, cfg.Services.OnRouteRadiusKm)

	// Typed nils must not leak into the interfaces.
	var history ports.RouteHistoryRepository
	if s.DB != nil {
		history = postgres.NewRouteHistoryRepo(s.DB)
	}
	var publisher ports.EventPublisher
	if s.Publisher != nil {
		publisher = s.Publisher
	}
	s.Routes = usecases.NewRouteService(s.Engine, s.Trips, s.Backend, history, publisher)

	return s
}

func (s *Services) buildCache(cfg *config.Config) ports.CacheService {
	if cfg.Cache.Driver == "valkey" {
		c, err := valkey.New(cfg.Valkey.Addr)
		if err == nil {
			s.closers = append(s.closers, c.Close)
			return c
		}
		slog.Warn("valkey unavailable, using in-process cache", "error", err)
	}
	size := cfg.Cache.MemorySize
	if size <= 0 {
		size = 1024
	}
	return memcache.New(size)
}

// Close releases connections in reverse order of creation.
func (s *Services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}
