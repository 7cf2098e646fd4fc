package backend

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-polyline"

	"github.com/samirrijal/driverdash/internal/core/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, 2*time.Second, nil)
}

func jsonHandler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func TestListTrips_WrappedAndFlatFields(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/demo/trips", r.URL.Path)
		jsonHandler(200, `{"trips": [
			{"id": "t-1", "clientName": "Ana", "status": "in_progress",
			 "clientLat": 20.701, "clientLon": -103.401,
			 "destinationLat": 20.649, "destinationLon": -103.409,
			 "driverLat": 20.69, "driverLon": -103.39,
			 "estimatedDistanceKm": 6.2, "lengthCategory": "long"},
			{"index": 7, "pickup": {"lat": 20.6, "lng": -103.5}, "dropoff": {"latitude": 20.4, "longitude": -103.6}},
			{"status": "pending"},
			"garbage"
		]}`)(w, r)
	})

	trips, err := c.ListTrips(context.Background())
	require.NoError(t, err)
	require.Len(t, trips, 3)

	a := trips[0]
	assert.Equal(t, "t-1", a.ID)
	assert.Equal(t, "Ana", a.ClientName)
	assert.Equal(t, domain.TripInProgress, a.Status)
	require.NotNil(t, a.Pickup)
	assert.Equal(t, domain.GeoPoint{Lat: 20.701, Lon: -103.401}, *a.Pickup)
	require.NotNil(t, a.Destination)
	assert.Equal(t, domain.GeoPoint{Lat: 20.649, Lon: -103.409}, *a.Destination)
	require.NotNil(t, a.Driver)
	assert.Equal(t, 6.2, a.EstimatedDistanceKm)
	assert.Equal(t, "long", a.LengthCategory)

	b := trips[1]
	assert.Equal(t, "7", b.ID)
	require.NotNil(t, b.Pickup)
	assert.Equal(t, domain.GeoPoint{Lat: 20.6, Lon: -103.5}, *b.Pickup)
	require.NotNil(t, b.Destination)
	assert.Equal(t, domain.GeoPoint{Lat: 20.4, Lon: -103.6}, *b.Destination)

	assert.Equal(t, "2", trips[2].ID)
	assert.Nil(t, trips[2].Pickup)
	assert.Nil(t, trips[2].Destination)
}

func TestListTrips_BareArray(t *testing.T) {
	c := newTestClient(t, jsonHandler(200, `[{"id": 1}, {"id": 2}]`))

	trips, err := c.ListTrips(context.Background())
	require.NoError(t, err)
	require.Len(t, trips, 2)
	assert.Equal(t, "1", trips[0].ID)
}

func TestListTrips_StatusError(t *testing.T) {
	c := newTestClient(t, jsonHandler(503, `{"detail": "warming up"}`))

	_, err := c.ListTrips(context.Background())
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 503, se.Status)
	assert.Equal(t, "warming up", se.Message)
}

func TestListTrips_NotAList(t *testing.T) {
	c := newTestClient(t, jsonHandler(200, `{"count": 3}`))

	_, err := c.ListTrips(context.Background())
	assert.Error(t, err)
}

func TestListServices(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/services", r.URL.Path)
		jsonHandler(200, `{"services": [
			{"id": "s1", "type": "gas_station", "typeLabel": "Gasolinera", "name": "Gas Minerva",
			 "lat": 20.69, "lon": -103.377, "is24h": true, "hasTowing": false, "areaLabel": "Minerva"},
			{"id": "s2", "type": "workshop", "name": "Taller", "location": {"lat": "20.64", "lng": "-103.31"}, "has_towing": "true"},
			{"id": "s3", "type": "tire_shop", "name": "Nowhere"}
		]}`)(w, r)
	})

	services, err := c.ListServices(context.Background())
	require.NoError(t, err)
	require.Len(t, services, 2)

	assert.Equal(t, "Gas Minerva", services[0].Name)
	assert.True(t, services[0].Is24h)
	assert.Equal(t, domain.GeoPoint{Lat: 20.69, Lon: -103.377}, services[0].Location)

	assert.Equal(t, domain.GeoPoint{Lat: 20.64, Lon: -103.31}, services[1].Location)
	assert.True(t, services[1].HasTowing)
}

func TestFetchRoute_PathCoords(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/api/route", r.URL.Path)
		assert.Equal(t, "20.701000", q.Get("origin_lat"))
		assert.Equal(t, "-103.409000", q.Get("destination_lon"))
		assert.Equal(t, "astar", q.Get("algorithm"))
		jsonHandler(200, `{"path_coords": [[-103.401, 20.701], [-103.409, 20.649]],
			"meta": {"algorithm": "astar", "distance_m": 5800, "travel_time_s": 720, "expanded_nodes": 311}}`)(w, r)
	})

	route, err := c.FetchRoute(context.Background(),
		domain.GeoPoint{Lat: 20.701, Lon: -103.401}, domain.GeoPoint{Lat: 20.649, Lon: -103.409}, "astar")
	require.NoError(t, err)
	require.Len(t, route.Path, 2)
	assert.Equal(t, []any{-103.401, 20.701}, route.Path[0], "raw pairs pass through untouched")
	assert.Equal(t, domain.RouteMeta{Algorithm: "astar", DistanceM: 5800, TravelTimeS: 720, ExpandedNodes: 311}, route.Meta)
}

func TestFetchRoute_GeoJSONFeature(t *testing.T) {
	c := newTestClient(t, jsonHandler(200, `{"data": {"geometry": {
		"type": "Feature", "properties": {},
		"geometry": {"type": "LineString", "coordinates": [[-103.401, 20.701], [-103.405, 20.68], [-103.409, 20.649]]}
	}, "distance": 5800}}`))

	route, err := c.FetchRoute(context.Background(), domain.GeoPoint{}, domain.GeoPoint{}, "ucs")
	require.NoError(t, err)
	assert.Equal(t, []any{
		domain.GeoPoint{Lat: 20.701, Lon: -103.401},
		domain.GeoPoint{Lat: 20.68, Lon: -103.405},
		domain.GeoPoint{Lat: 20.649, Lon: -103.409},
	}, route.Path)
	assert.Equal(t, "ucs", route.Meta.Algorithm)
	assert.Equal(t, 5800.0, route.Meta.DistanceM)
}

func TestFetchRoute_GeoJSONFeatureCollection(t *testing.T) {
	c := newTestClient(t, jsonHandler(200, `{"geometry": {"type": "FeatureCollection", "features": [
		{"type": "Feature", "properties": {}, "geometry": {"type": "LineString", "coordinates": [[1, 2], [3, 4]]}},
		{"type": "Feature", "properties": {}, "geometry": {"type": "LineString", "coordinates": [[5, 6]]}}
	]}}`))

	route, err := c.FetchRoute(context.Background(), domain.GeoPoint{}, domain.GeoPoint{}, "")
	require.NoError(t, err)
	assert.Len(t, route.Path, 3)
	assert.Equal(t, domain.GeoPoint{Lat: 6, Lon: 5}, route.Path[2])
}

func TestFetchRoute_Polyline(t *testing.T) {
	encoded := string(polyline.EncodeCoords([][]float64{{20.701, -103.401}, {20.649, -103.409}}))
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"polyline": ` + strconv.Quote(encoded) + `}`))
	})

	route, err := c.FetchRoute(context.Background(), domain.GeoPoint{}, domain.GeoPoint{}, "bfs")
	require.NoError(t, err)
	require.Len(t, route.Path, 2)
	p, ok := route.Path[0].(domain.GeoPoint)
	require.True(t, ok)
	assert.InDelta(t, 20.701, p.Lat, 1e-5)
	assert.InDelta(t, -103.401, p.Lon, 1e-5)
}

func TestFetchRoute_NotFoundIsNoRoute(t *testing.T) {
	c := newTestClient(t, jsonHandler(404, `{"error": "no path between points"}`))

	_, err := c.FetchRoute(context.Background(), domain.GeoPoint{}, domain.GeoPoint{}, "dfs")
	assert.True(t, errors.Is(err, domain.ErrNoRoute))
}

func TestFetchRoute_NoPath(t *testing.T) {
	c := newTestClient(t, jsonHandler(200, `{"meta": {"algorithm": "astar"}}`))

	_, err := c.FetchRoute(context.Background(), domain.GeoPoint{}, domain.GeoPoint{}, "astar")
	assert.Error(t, err)
}

func TestFetchRoute_BackendUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := New(srv.URL, time.Second, nil)

	_, err := c.FetchRoute(context.Background(), domain.GeoPoint{}, domain.GeoPoint{}, "astar")
	assert.Error(t, err)
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "boom", errorMessage([]byte(`{"message": "boom"}`)))
	assert.Equal(t, "plain text", errorMessage([]byte("  plain text \n")))
}
