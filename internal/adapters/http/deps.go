package http

import (
	"context"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/driverdash/internal/core/ports"
	"github.com/samirrijal/driverdash/internal/core/usecases"
)

// Pinger is anything the readiness probe can check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Trips    *usecases.TripService
	Routes   *usecases.RouteService
	Services *usecases.OnRouteService
	Planner  ports.RoutePlanner // nil runs planning inline
	// Algorithm is used when a request does not name one.
	Algorithm string
	NATS      *nats.Conn
	DB        Pinger
	Cache     Pinger
}
