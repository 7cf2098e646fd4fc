//go:build integration
// +build integration

package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	handler "github.com/samirrijal/driverdash/internal/adapters/http"
	"github.com/samirrijal/driverdash/internal/adapters/postgres"
	"github.com/samirrijal/driverdash/internal/core/domain"
	"github.com/samirrijal/driverdash/internal/core/reconcile"
	"github.com/samirrijal/driverdash/internal/core/usecases"
	"github.com/samirrijal/driverdash/internal/pkg/config"
)

// setupTestDB connects to the test database. The route_history migration must
// have been applied.
func setupTestDB(t *testing.T) *postgres.DB {
	cfg, err := config.Load("driverdash-test")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	db, err := postgres.New(ctx, cfg.Database.DSN(), 4)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	return db
}

// setupTestDeps wires mocked trip/routing sources to a real history store.
func setupTestDeps(t *testing.T, db *postgres.DB, trips []domain.Trip) *handler.Dependencies {
	tripService := usecases.NewTripService(&mockTripSource{listFn: func(ctx context.Context) ([]domain.Trip, error) {
		return trips, nil
	}}, nil)

	return &handler.Dependencies{
		Trips: tripService,
		Routes: usecases.NewRouteService(
			reconcile.NewEngine(reconcile.DefaultConfig()),
			tripService,
			&mockRouting{},
			postgres.NewRouteHistoryRepo(db),
			nil,
		),
		Services:  usecases.NewOnRouteService(&mockServiceSource{}, nil, 1),
		Algorithm: "astar",
		DB:        db,
	}
}

// TestRouteHistory_Integration plans a route and reads it back from Postgres.
func TestRouteHistory_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Close()

	tripID := fmt.Sprintf("integ-%d", time.Now().UnixNano())
	trips := []domain.Trip{{ID: tripID, Pickup: gp(20.701, -103.401), Destination: gp(20.649, -103.409)}}
	app := setupApp(setupTestDeps(t, db, trips))

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/trips/"+tripID+"/route", nil), -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	resp, err = app.Test(httptest.NewRequest("GET", "/v1/trips/"+tripID+"/history", nil), -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var records []domain.RouteRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	rec := records[0]
	if rec.ID == "" || !rec.Fallback || len(rec.Path) != 2 {
		t.Errorf("unexpected record: %+v", rec)
	}
	if rec.Path[0] != (domain.GeoPoint{Lat: 20.701, Lon: -103.401}) {
		t.Errorf("path did not round-trip: %+v", rec.Path)
	}
}

// TestReady_Integration checks readiness against a live database.
func TestReady_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Close()

	app := setupApp(setupTestDeps(t, db, nil))
	resp, err := app.Test(httptest.NewRequest("GET", "/v1/ready", nil), -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}
