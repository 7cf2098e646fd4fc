package ports

import (
	"context"
	"errors"

	"github.com/samirrijal/driverdash/internal/core/domain"
)

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishRoute(ctx context.Context, event *domain.RouteEvent) error
	PublishBroadcast(ctx context.Context, data []byte) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeRawPaths(ctx context.Context, handler func(ctx context.Context, msg *domain.RawPathMessage) error) error
}

// ErrCacheMiss is returned by CacheService.Get when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// RoutePlanner starts durable route planning runs.
type RoutePlanner interface {
	StartRoutePlan(ctx context.Context, tripID, algorithm string) (runID string, err error)
}
