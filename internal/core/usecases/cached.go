package usecases

import (
	"context"
	"encoding/json"

	"github.com/samirrijal/driverdash/internal/core/ports"
	"github.com/samirrijal/driverdash/internal/pkg/metrics"
)

// readThrough serves key from cache when possible and otherwise calls load,
// storing its result for ttlSeconds. Cache failures never fail the call.
func readThrough[T any](ctx context.Context, cache ports.CacheService, key, op string, ttlSeconds int, load func(context.Context) (T, error)) (T, error) {
	if cache != nil {
		if data, err := cache.Get(ctx, key); err == nil {
			var v T
			if err := json.Unmarshal(data, &v); err == nil {
				metrics.CacheHits.WithLabelValues(op).Inc()
				return v, nil
			}
		}
		metrics.CacheMisses.WithLabelValues(op).Inc()
	}

	v, err := load(ctx)
	if err != nil {
		return v, err
	}

	if cache != nil {
		if data, err := json.Marshal(v); err == nil {
			_ = cache.Set(ctx, key, data, ttlSeconds)
		}
	}
	return v, nil
}
