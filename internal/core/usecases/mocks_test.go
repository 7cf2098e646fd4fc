package usecases_test

import (
	"context"
	"errors"
	"sync"

	"github.com/samirrijal/driverdash/internal/core/domain"
)

// --- Mock TripSource ---

type mockTripSource struct {
	listFn func(ctx context.Context) ([]domain.Trip, error)
	calls  int
}

func (m *mockTripSource) ListTrips(ctx context.Context) ([]domain.Trip, error) {
	m.calls++
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

// --- Mock ServiceSource ---

type mockServiceSource struct {
	listFn func(ctx context.Context) ([]domain.Service, error)
}

func (m *mockServiceSource) ListServices(ctx context.Context) ([]domain.Service, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

// --- Mock RoutingClient ---

type mockRouting struct {
	fetchFn func(ctx context.Context, from, to domain.GeoPoint, algorithm string) (*domain.RawRoute, error)
}

func (m *mockRouting) FetchRoute(ctx context.Context, from, to domain.GeoPoint, algorithm string) (*domain.RawRoute, error) {
	if m.fetchFn != nil {
		return m.fetchFn(ctx, from, to, algorithm)
	}
	return nil, errors.New("no route")
}

// --- Mock RouteHistoryRepository ---

type mockHistory struct {
	insertFn func(ctx context.Context, rec *domain.RouteRecord) error
	listFn   func(ctx context.Context, tripID string, limit int) ([]domain.RouteRecord, error)
	inserted []domain.RouteRecord
}

func (m *mockHistory) Insert(ctx context.Context, rec *domain.RouteRecord) error {
	if m.insertFn != nil {
		if err := m.insertFn(ctx, rec); err != nil {
			return err
		}
	}
	m.inserted = append(m.inserted, *rec)
	return nil
}

func (m *mockHistory) ListByTrip(ctx context.Context, tripID string, limit int) ([]domain.RouteRecord, error) {
	if m.listFn != nil {
		return m.listFn(ctx, tripID, limit)
	}
	return nil, nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	publishFn func(ctx context.Context, event *domain.RouteEvent) error
	events    []domain.RouteEvent
}

func (m *mockPublisher) PublishRoute(ctx context.Context, event *domain.RouteEvent) error {
	if m.publishFn != nil {
		if err := m.publishFn(ctx, event); err != nil {
			return err
		}
	}
	m.events = append(m.events, *event)
	return nil
}

func (m *mockPublisher) PublishBroadcast(ctx context.Context, data []byte) error { return nil }

// --- In-memory CacheService ---

type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMapCache() *mapCache {
	return &mapCache{data: make(map[string][]byte)}
}

func (c *mapCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return nil, errors.New("miss")
	}
	return v, nil
}

func (c *mapCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *mapCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

// --- Fixtures ---

func gp(lat, lon float64) *domain.GeoPoint {
	return &domain.GeoPoint{Lat: lat, Lon: lon}
}

func fixtureTrips() []domain.Trip {
	return []domain.Trip{
		{ID: "A", Status: domain.TripInProgress, Pickup: gp(20.701, -103.401), Destination: gp(20.649, -103.409), EstimatedDistanceKm: 6.2},
		{ID: "B", Status: domain.TripPending, Pickup: gp(20.60, -103.50), Destination: gp(20.40, -103.60), EstimatedDistanceKm: 0.8},
		{ID: "C", Status: domain.TripCompleted, EstimatedDistanceKm: 3},
	}
}

func tripSource() *mockTripSource {
	return &mockTripSource{listFn: func(ctx context.Context) ([]domain.Trip, error) {
		return fixtureTrips(), nil
	}}
}
