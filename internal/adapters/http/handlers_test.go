package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	handler "github.com/samirrijal/driverdash/internal/adapters/http"
	"github.com/samirrijal/driverdash/internal/core/domain"
	"github.com/samirrijal/driverdash/internal/core/reconcile"
	"github.com/samirrijal/driverdash/internal/core/usecases"
)

// ---- Mock ports ----

type mockTripSource struct {
	listFn func(ctx context.Context) ([]domain.Trip, error)
}

func (m *mockTripSource) ListTrips(ctx context.Context) ([]domain.Trip, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

type mockServiceSource struct {
	listFn func(ctx context.Context) ([]domain.Service, error)
}

func (m *mockServiceSource) ListServices(ctx context.Context) ([]domain.Service, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

type mockRouting struct {
	fetchFn func(ctx context.Context, from, to domain.GeoPoint, algorithm string) (*domain.RawRoute, error)
}

func (m *mockRouting) FetchRoute(ctx context.Context, from, to domain.GeoPoint, algorithm string) (*domain.RawRoute, error) {
	if m.fetchFn != nil {
		return m.fetchFn(ctx, from, to, algorithm)
	}
	return nil, errors.New("backend down")
}

type mockHistory struct {
	listFn func(ctx context.Context, tripID string, limit int) ([]domain.RouteRecord, error)
}

func (m *mockHistory) Insert(ctx context.Context, rec *domain.RouteRecord) error {
	rec.ID = "rec-1"
	return nil
}

func (m *mockHistory) ListByTrip(ctx context.Context, tripID string, limit int) ([]domain.RouteRecord, error) {
	if m.listFn != nil {
		return m.listFn(ctx, tripID, limit)
	}
	return nil, nil
}

type mockPlanner struct {
	startFn func(ctx context.Context, tripID, algorithm string) (string, error)
}

func (m *mockPlanner) StartRoutePlan(ctx context.Context, tripID, algorithm string) (string, error) {
	return m.startFn(ctx, tripID, algorithm)
}

type mockPinger struct{ err error }

func (m mockPinger) Ping(ctx context.Context) error { return m.err }

// ---- Fixtures ----

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

func fixtureServices() []domain.Service {
	return []domain.Service{
		{ID: "s1", Type: "gas_station", Name: "Gas Minerva", Location: domain.GeoPoint{Lat: 20.690, Lon: -103.377}},
		{ID: "s2", Type: "workshop", Name: "Taller Centro", Location: domain.GeoPoint{Lat: 20.702, Lon: -103.379}},
		{ID: "s3", Type: "tire_shop", Name: "Far Away", Location: domain.GeoPoint{Lat: 20.640, Lon: -103.310}},
	}
}

// ---- Test helpers ----

type depsConfig struct {
	trips    []domain.Trip
	tripsErr error
	services []domain.Service
	routing  *mockRouting
	history  *mockHistory
}

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(app, deps, handler.RouterOptions{})
	return app
}

func makeDeps(opts ...func(*depsConfig)) *handler.Dependencies {
	cfg := &depsConfig{
		trips:    fixtureTrips(),
		services: fixtureServices(),
		routing:  &mockRouting{},
		history:  &mockHistory{},
	}
	for _, o := range opts {
		o(cfg)
	}

	tripSource := &mockTripSource{listFn: func(ctx context.Context) ([]domain.Trip, error) {
		if cfg.tripsErr != nil {
			return nil, cfg.tripsErr
		}
		return cfg.trips, nil
	}}
	serviceSource := &mockServiceSource{listFn: func(ctx context.Context) ([]domain.Service, error) {
		return cfg.services, nil
	}}

	trips := usecases.NewTripService(tripSource, nil)
	return &handler.Dependencies{
		Trips:     trips,
		Routes:    usecases.NewRouteService(reconcile.NewEngine(reconcile.DefaultConfig()), trips, cfg.routing, cfg.history, nil),
		Services:  usecases.NewOnRouteService(serviceSource, nil, 1),
		Algorithm: "astar",
	}
}

func do(t *testing.T, app *fiber.App, method, target, body string) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, b
}

func decode(t *testing.T, data []byte, v any) {
	t.Helper()
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
}

// Lon-first reading of trip A's route.
const swappedPathBody = `{"path": [[-103.401, 20.701], [-103.405, 20.675], [-103.409, 20.649]]}`

// ---- Trip handler tests ----

func TestListTrips_Success(t *testing.T) {
	status, body := do(t, setupApp(makeDeps()), "GET", "/v1/trips", "")
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}

	var result struct {
		Data       []domain.Trip      `json:"data"`
		Pagination handler.Pagination `json:"pagination"`
	}
	decode(t, body, &result)
	if result.Pagination.Total != 3 || len(result.Data) != 3 {
		t.Errorf("expected 3 trips, got %d (total %d)", len(result.Data), result.Pagination.Total)
	}
	if result.Data[0].LengthCategory != "long" {
		t.Errorf("expected length category to be filled, got %q", result.Data[0].LengthCategory)
	}
}

func TestListTrips_StatusFilterAndLinks(t *testing.T) {
	trips := make([]domain.Trip, 5)
	for i := range trips {
		trips[i] = domain.Trip{ID: fmt.Sprintf("t%d", i), Status: domain.TripPending}
	}
	app := setupApp(makeDeps(func(c *depsConfig) { c.trips = trips }))

	req := httptest.NewRequest("GET", "/v1/trips?status=pending&offset=2&limit=2", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	link := resp.Header.Get("Link")
	if !strings.Contains(link, `rel="next"`) || !strings.Contains(link, "status=pending") {
		t.Errorf("unexpected Link header: %s", link)
	}

	var result struct {
		Data       []domain.Trip      `json:"data"`
		Pagination handler.Pagination `json:"pagination"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if len(result.Data) != 2 || result.Data[0].ID != "t2" {
		t.Errorf("unexpected page: %+v", result.Data)
	}

	_, body := do(t, app, "GET", "/v1/trips?status=completed", "")
	decode(t, body, &result)
	if len(result.Data) != 0 || result.Data == nil {
		t.Errorf("expected empty non-null page, got %s", body)
	}
}

func TestListTrips_SourceError(t *testing.T) {
	app := setupApp(makeDeps(func(c *depsConfig) { c.tripsErr = errors.New("backend down") }))
	status, body := do(t, app, "GET", "/v1/trips", "")
	if status != 500 {
		t.Fatalf("expected 500, got %d", status)
	}
	var apiErr handler.APIError
	decode(t, body, &apiErr)
	if apiErr.Code != "internal_error" {
		t.Errorf("expected internal_error, got %s", apiErr.Code)
	}
}

func TestTripSummary(t *testing.T) {
	status, body := do(t, setupApp(makeDeps()), "GET", "/v1/trips/summary", "")
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	var s domain.TripSummary
	decode(t, body, &s)
	if s.Total != 3 || s.Active != 2 {
		t.Errorf("unexpected summary: %+v", s)
	}
}

func TestGetTrip(t *testing.T) {
	app := setupApp(makeDeps())

	status, body := do(t, app, "GET", "/v1/trips/A", "")
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	var trip domain.Trip
	decode(t, body, &trip)
	if trip.ID != "A" {
		t.Errorf("expected trip A, got %s", trip.ID)
	}

	status, body = do(t, app, "GET", "/v1/trips/nope", "")
	if status != 404 {
		t.Fatalf("expected 404, got %d", status)
	}
	var apiErr handler.APIError
	decode(t, body, &apiErr)
	if apiErr.Code != "not_found" {
		t.Errorf("expected not_found, got %s", apiErr.Code)
	}
}

// ---- Route handler tests ----

func TestTripRoute_ReconcilesBackendPath(t *testing.T) {
	var gotAlgorithm string
	routing := &mockRouting{fetchFn: func(ctx context.Context, from, to domain.GeoPoint, algorithm string) (*domain.RawRoute, error) {
		gotAlgorithm = algorithm
		return &domain.RawRoute{
			Path: []any{[]any{-103.401, 20.701}, []any{-103.405, 20.675}, []any{-103.409, 20.649}},
			Meta: domain.RouteMeta{Algorithm: algorithm, DistanceM: 5800},
		}, nil
	}}
	app := setupApp(makeDeps(func(c *depsConfig) { c.routing = routing }))

	status, body := do(t, app, "GET", "/v1/trips/A/route?algorithm=ucs", "")
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	if gotAlgorithm != "ucs" {
		t.Errorf("expected algorithm ucs, got %q", gotAlgorithm)
	}

	var r handler.RouteResponse
	decode(t, body, &r)
	if r.TripID != "A" || r.Fallback {
		t.Errorf("unexpected route: %+v", r)
	}
	if !r.Inverted {
		t.Error("expected lon-first path to be inverted")
	}
	if len(r.Path) != 3 || r.Path[0].Lat < 20 {
		t.Errorf("unexpected path: %+v", r.Path)
	}
	if r.Polyline == "" || r.Bounds == nil {
		t.Error("expected polyline and bounds")
	}
	if r.Meta == nil || r.Meta.DistanceM != 5800 {
		t.Errorf("unexpected meta: %+v", r.Meta)
	}
}

func TestTripRoute_DefaultAlgorithmAndFallback(t *testing.T) {
	var gotAlgorithm string
	routing := &mockRouting{fetchFn: func(ctx context.Context, from, to domain.GeoPoint, algorithm string) (*domain.RawRoute, error) {
		gotAlgorithm = algorithm
		return nil, errors.New("backend down")
	}}
	app := setupApp(makeDeps(func(c *depsConfig) { c.routing = routing }))

	status, body := do(t, app, "GET", "/v1/trips/A/route", "")
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	if gotAlgorithm != "astar" {
		t.Errorf("expected default algorithm, got %q", gotAlgorithm)
	}
	var r handler.RouteResponse
	decode(t, body, &r)
	if !r.Fallback || len(r.Path) != 2 {
		t.Errorf("expected straight-line fallback, got %+v", r)
	}
}

func TestTripRoute_GeoJSON(t *testing.T) {
	req := httptest.NewRequest("GET", "/v1/trips/A/route?format=geojson", nil)
	resp, err := setupApp(makeDeps()).Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/geo+json" {
		t.Errorf("unexpected content type %q", ct)
	}

	var f struct {
		Type     string `json:"type"`
		BBox     []float64
		Geometry struct {
			Type        string       `json:"type"`
			Coordinates [][2]float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties map[string]any `json:"properties"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&f); err != nil {
		t.Fatal(err)
	}
	if f.Type != "Feature" || f.Geometry.Type != "LineString" {
		t.Fatalf("unexpected feature: %+v", f)
	}
	// GeoJSON is lon first.
	if f.Geometry.Coordinates[0] != [2]float64{-103.401, 20.701} {
		t.Errorf("unexpected first coordinate: %v", f.Geometry.Coordinates[0])
	}
	if len(f.BBox) != 4 {
		t.Errorf("expected bbox, got %v", f.BBox)
	}
	if f.Properties["trip_id"] != "A" || f.Properties["fallback"] != true {
		t.Errorf("unexpected properties: %v", f.Properties)
	}
}

func TestTripRoute_Errors(t *testing.T) {
	app := setupApp(makeDeps())

	tests := []struct {
		target string
		status int
		code   string
	}{
		{"/v1/trips/A/route?algorithm=dijkstra", 400, "bad_request"},
		{"/v1/trips/A/route?format=kml", 400, "bad_request"},
		{"/v1/trips/nope/route", 404, "not_found"},
		{"/v1/trips/C/route", 422, "no_route"},
	}
	for _, tt := range tests {
		status, body := do(t, app, "GET", tt.target, "")
		if status != tt.status {
			t.Errorf("%s: expected %d, got %d", tt.target, tt.status, status)
			continue
		}
		var apiErr handler.APIError
		decode(t, body, &apiErr)
		if apiErr.Code != tt.code {
			t.Errorf("%s: expected %s, got %s", tt.target, tt.code, apiErr.Code)
		}
	}
}

func TestTripHistory(t *testing.T) {
	var gotLimit int
	history := &mockHistory{listFn: func(ctx context.Context, tripID string, limit int) ([]domain.RouteRecord, error) {
		gotLimit = limit
		return []domain.RouteRecord{{ID: "r1", TripID: tripID}}, nil
	}}
	app := setupApp(makeDeps(func(c *depsConfig) { c.history = history }))

	status, body := do(t, app, "GET", "/v1/trips/A/history?limit=5", "")
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	if gotLimit != 5 {
		t.Errorf("expected limit 5, got %d", gotLimit)
	}
	var records []domain.RouteRecord
	decode(t, body, &records)
	if len(records) != 1 || records[0].TripID != "A" {
		t.Errorf("unexpected records: %+v", records)
	}
}

func TestPlanTrip_Inline(t *testing.T) {
	status, body := do(t, setupApp(makeDeps()), "POST", "/v1/trips/A/plan", "")
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	var r handler.RouteResponse
	decode(t, body, &r)
	if r.TripID != "A" {
		t.Errorf("unexpected route: %+v", r)
	}
}

func TestPlanTrip_WithPlanner(t *testing.T) {
	deps := makeDeps()
	var gotTrip, gotAlgorithm string
	deps.Planner = &mockPlanner{startFn: func(ctx context.Context, tripID, algorithm string) (string, error) {
		gotTrip, gotAlgorithm = tripID, algorithm
		return "run-7", nil
	}}
	app := setupApp(deps)

	status, body := do(t, app, "POST", "/v1/trips/B/plan?algorithm=bfs", "")
	if status != 202 {
		t.Fatalf("expected 202, got %d", status)
	}
	var out map[string]string
	decode(t, body, &out)
	if out["run_id"] != "run-7" || gotTrip != "B" || gotAlgorithm != "bfs" {
		t.Errorf("unexpected planner call: %v (%s, %s)", out, gotTrip, gotAlgorithm)
	}

	status, _ = do(t, app, "POST", "/v1/trips/nope/plan", "")
	if status != 404 {
		t.Errorf("expected 404 for unknown trip, got %d", status)
	}
}

func TestPlanTrip_PlannerUnavailable(t *testing.T) {
	deps := makeDeps()
	deps.Planner = &mockPlanner{startFn: func(ctx context.Context, tripID, algorithm string) (string, error) {
		return "", errors.New("temporal unavailable")
	}}
	status, _ := do(t, setupApp(deps), "POST", "/v1/trips/A/plan", "")
	if status != 503 {
		t.Fatalf("expected 503, got %d", status)
	}
}

func TestReconcile_AutoSelectsAndInverts(t *testing.T) {
	status, body := do(t, setupApp(makeDeps()), "POST", "/v1/routes/reconcile", swappedPathBody)
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	var r handler.RouteResponse
	decode(t, body, &r)
	if r.AutoSelectedTripID != "A" || r.MatchedTripID != "A" {
		t.Errorf("expected A to be selected, got %+v", r)
	}
	if !r.Inverted {
		t.Error("expected inverted")
	}
	if r.BestScoreKm == nil || *r.BestScoreKm > 0.5 {
		t.Errorf("unexpected best score: %v", r.BestScoreKm)
	}
}

func TestReconcile_KeepsCurrentSelection(t *testing.T) {
	body := `{"path": [[20.701, -103.401], [20.649, -103.409]], "selected_trip_id": "A"}`
	status, resp := do(t, setupApp(makeDeps()), "POST", "/v1/routes/reconcile", body)
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	var r handler.RouteResponse
	decode(t, resp, &r)
	if r.AutoSelectedTripID != "" {
		t.Errorf("expected no auto-select for the current trip, got %q", r.AutoSelectedTripID)
	}
	if r.Inverted {
		t.Error("expected canonical orientation")
	}
}

func TestReconcile_EmptyPath(t *testing.T) {
	status, body := do(t, setupApp(makeDeps()), "POST", "/v1/routes/reconcile", `{"path": []}`)
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	var raw map[string]any
	decode(t, body, &raw)
	if path, ok := raw["path"].([]any); !ok || len(path) != 0 {
		t.Errorf("expected empty path array, got %v", raw["path"])
	}
	if raw["best_score_km"] != nil {
		t.Errorf("expected null score, got %v", raw["best_score_km"])
	}
}

func TestReconcile_BadRequests(t *testing.T) {
	app := setupApp(makeDeps())

	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing path", `{"selected_trip_id": "A"}`, "path is required"},
		{"not json", `{"path": `, "invalid request body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := do(t, app, "POST", "/v1/routes/reconcile", tt.body)
			if status != 400 {
				t.Fatalf("expected 400, got %d", status)
			}
			var apiErr handler.APIError
			decode(t, body, &apiErr)
			if !strings.Contains(apiErr.Message, tt.want) {
				t.Errorf("expected message containing %q, got %q", tt.want, apiErr.Message)
			}
		})
	}
}

// ---- Service handler tests ----

func TestListServices(t *testing.T) {
	status, body := do(t, setupApp(makeDeps()), "GET", "/v1/services?type=workshop", "")
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	var services []domain.Service
	decode(t, body, &services)
	if len(services) != 1 || services[0].ID != "s2" {
		t.Errorf("unexpected services: %+v", services)
	}
}

func TestOnRouteServices(t *testing.T) {
	body := `{"path": [{"lat": 20.700, "lng": -103.380}, {"lat": 20.680, "lng": -103.378}], "radius_km": 1}`
	status, resp := do(t, setupApp(makeDeps()), "POST", "/v1/services/on-route", body)
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, resp)
	}
	var out handler.OnRouteResponse
	decode(t, resp, &out)
	if len(out.Services) != 2 {
		t.Fatalf("expected 2 services, got %+v", out.Services)
	}
	if out.Services[0].ID != "s1" {
		t.Errorf("expected nearest service first, got %s", out.Services[0].ID)
	}
	if out.Counts["gas_station"] != 1 || out.Counts["workshop"] != 1 {
		t.Errorf("unexpected counts: %v", out.Counts)
	}
}

func TestOnRouteServices_RadiusTooLarge(t *testing.T) {
	body := `{"path": [[20.7, -103.38]], "radius_km": 100}`
	status, _ := do(t, setupApp(makeDeps()), "POST", "/v1/services/on-route", body)
	if status != 400 {
		t.Fatalf("expected 400, got %d", status)
	}
}

// ---- GraphQL ----

func TestGraphQL_TripsAndReconcile(t *testing.T) {
	app := setupApp(makeDeps())

	status, body := do(t, app, "POST", "/graphql", `{"query": "{ trips { id status pickup { lat lon } } }"}`)
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	var q struct {
		Data struct {
			Trips []struct {
				ID     string `json:"id"`
				Pickup *struct {
					Lat float64 `json:"lat"`
				} `json:"pickup"`
			} `json:"trips"`
		} `json:"data"`
	}
	decode(t, body, &q)
	if len(q.Data.Trips) != 3 || q.Data.Trips[0].Pickup == nil || q.Data.Trips[0].Pickup.Lat != 20.701 {
		t.Errorf("unexpected trips: %s", body)
	}

	mutation := `{"query": "mutation { reconcile(path: [[-103.401, 20.701], [-103.409, 20.649]]) { auto_selected_trip_id inverted final_path { lat lon } } }"}`
	status, body = do(t, app, "POST", "/graphql", mutation)
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	var m struct {
		Data struct {
			Reconcile struct {
				AutoSelectedTripID string            `json:"auto_selected_trip_id"`
				Inverted           bool              `json:"inverted"`
				FinalPath          []domain.GeoPoint `json:"final_path"`
			} `json:"reconcile"`
		} `json:"data"`
	}
	decode(t, body, &m)
	if m.Data.Reconcile.AutoSelectedTripID != "A" || !m.Data.Reconcile.Inverted || len(m.Data.Reconcile.FinalPath) != 2 {
		t.Errorf("unexpected reconcile result: %s", body)
	}
}

// ---- Health & middleware ----

func TestHealth_Returns200(t *testing.T) {
	status, body := do(t, setupApp(makeDeps()), "GET", "/v1/health", "")
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	var h map[string]string
	decode(t, body, &h)
	if h["status"] != "healthy" {
		t.Errorf("unexpected health: %v", h)
	}
}

func TestReady(t *testing.T) {
	deps := makeDeps()
	status, _ := do(t, setupApp(deps), "GET", "/v1/ready", "")
	if status != 200 {
		t.Fatalf("expected 200 with nothing configured, got %d", status)
	}

	deps.DB = mockPinger{}
	deps.Cache = mockPinger{err: errors.New("connection refused")}
	status, body := do(t, setupApp(deps), "GET", "/v1/ready", "")
	if status != 503 {
		t.Fatalf("expected 503, got %d", status)
	}
	var r struct {
		Status string `json:"status"`
		Checks map[string]struct {
			Status string `json:"status"`
			Error  string `json:"error"`
		} `json:"checks"`
	}
	decode(t, body, &r)
	if r.Status != "not ready" {
		t.Errorf("status = %q", r.Status)
	}
	if r.Checks["database"].Status != "ok" {
		t.Errorf("database check = %+v", r.Checks["database"])
	}
	if c := r.Checks["cache"]; c.Status != "error" || c.Error != "connection refused" {
		t.Errorf("cache check = %+v", c)
	}
	if r.Checks["nats"].Status != "not configured" {
		t.Errorf("nats check = %+v", r.Checks["nats"])
	}
}

func TestAPIVersionAndCacheHeaders(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/services", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if v := resp.Header.Get("X-API-Version"); v != "1.0.0" {
		t.Errorf("expected X-API-Version 1.0.0, got %q", v)
	}
	if cc := resp.Header.Get("Cache-Control"); cc != "public, max-age=300" {
		t.Errorf("unexpected Cache-Control %q", cc)
	}
	etag := resp.Header.Get("ETag")
	if etag == "" {
		t.Fatal("expected ETag")
	}

	req = httptest.NewRequest("GET", "/v1/services", nil)
	req.Header.Set("If-None-Match", etag)
	resp, err = app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 304 {
		t.Errorf("expected 304, got %d", resp.StatusCode)
	}
}

func TestRouteResponsesAreNotCached(t *testing.T) {
	req := httptest.NewRequest("GET", "/v1/trips/A/route", nil)
	resp, err := setupApp(makeDeps()).Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if cc := resp.Header.Get("Cache-Control"); cc != "no-store" {
		t.Errorf("expected no-store, got %q", cc)
	}
	if resp.Header.Get("ETag") != "" {
		t.Error("expected no ETag on no-store responses")
	}
}

func TestWebSocket_RequiresUpgrade(t *testing.T) {
	status, _ := do(t, setupApp(makeDeps()), "GET", "/ws", "")
	if status != 404 {
		t.Errorf("expected 404 when no broker is configured, got %d", status)
	}
}
