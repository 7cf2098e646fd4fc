package domain

import (
	"errors"
	"math"
	"time"
)

var (
	// ErrNotFound is returned when a trip or record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNoRoute is returned when no path can be produced for a trip.
	ErrNoRoute = errors.New("no route available")
)

// Trip statuses as reported by the trip source.
const (
	TripPending    = "pending"
	TripInProgress = "in_progress"
	TripCompleted  = "completed"
)

// Trip is a ride request known to the dashboard. Pickup and Destination are nil
// when the trip source has no coordinate for them yet.
type Trip struct {
	ID                   string    `json:"id"`
	ClientName           string    `json:"client_name,omitempty"`
	PickupLabel          string    `json:"pickup_label,omitempty"`
	DropoffLabel         string    `json:"dropoff_label,omitempty"`
	Status               string    `json:"status,omitempty"`
	Pickup               *GeoPoint `json:"pickup,omitempty"`
	Destination          *GeoPoint `json:"destination,omitempty"`
	Driver               *GeoPoint `json:"driver,omitempty"`
	EstimatedDistanceKm  float64   `json:"estimated_distance_km,omitempty"`
	EstimatedDurationMin float64   `json:"estimated_duration_min,omitempty"`
	LengthCategory       string    `json:"length_category,omitempty"`
}

// LengthCategoryFor buckets a trip distance: short < 1 km, medium 1-5 km, long > 5 km.
func LengthCategoryFor(distanceKm float64) string {
	switch {
	case distanceKm < 1:
		return "short"
	case distanceKm <= 5:
		return "medium"
	default:
		return "long"
	}
}

// TripSummary aggregates the trip list for the panel header.
type TripSummary struct {
	Total      int            `json:"total"`
	Active     int            `json:"active"`
	ByStatus   map[string]int `json:"by_status"`
	ByCategory map[string]int `json:"by_category"`
}

// Service is a point of interest a driver may need on the way (gas station,
// tire shop, workshop).
type Service struct {
	ID               string   `json:"id"`
	Type             string   `json:"type"`
	TypeLabel        string   `json:"type_label,omitempty"`
	Name             string   `json:"name"`
	AreaLabel        string   `json:"area_label,omitempty"`
	Location         GeoPoint `json:"location"`
	Is24h            bool     `json:"is_24h"`
	HasTowing        bool     `json:"has_towing"`
	DistanceKm       *float64 `json:"distance_km,omitempty"` // computed field
	EstimatedTimeMin float64  `json:"estimated_time_min,omitempty"`
}

// RouteMeta is what the routing backend reports alongside a path.
type RouteMeta struct {
	Algorithm     string  `json:"algorithm,omitempty"`
	DistanceM     float64 `json:"distance_m,omitempty"`
	TravelTimeS   float64 `json:"travel_time_s,omitempty"`
	ExpandedNodes int     `json:"expanded_nodes,omitempty"`
}

// RawRoute is an unreconciled routing backend answer. Path elements keep
// whatever shape the backend used.
type RawRoute struct {
	Path []any     `json:"path"`
	Meta RouteMeta `json:"meta"`
}

// Reconciliation is the outcome of reconciling one raw path against the trips.
type Reconciliation struct {
	FinalPath          []GeoPoint `json:"final_path"`
	AutoSelectedTripID string     `json:"auto_selected_trip_id,omitempty"`
	MatchedTripID      string     `json:"matched_trip_id,omitempty"`
	BestScoreKm        *float64   `json:"best_score_km"` // nil when no comparison was possible
	SecondBestScoreKm  *float64   `json:"second_best_score_km"`
	Inverted           bool       `json:"inverted"`
	SnappedStart       bool       `json:"snapped_start"`
	SnappedEnd         bool       `json:"snapped_end"`
	DroppedPoints      int        `json:"dropped_points"`
}

// KmOrNil returns a pointer to v, or nil when v is not finite.
func KmOrNil(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}

// HasPath reports whether the reconciliation produced something to draw.
func (r Reconciliation) HasPath() bool {
	return r.FinalPath != nil
}

// PlannedRoute is a reconciled route for a specific trip.
type PlannedRoute struct {
	TripID         string         `json:"trip_id"`
	Reconciliation Reconciliation `json:"reconciliation"`
	Meta           RouteMeta      `json:"meta"`
	Fallback       bool           `json:"fallback"`
	PlannedAt      time.Time      `json:"planned_at"`
}

// RouteRecord is a stored reconciliation.
type RouteRecord struct {
	ID                 string     `json:"id"`
	TripID             string     `json:"trip_id,omitempty"`
	AutoSelectedTripID string     `json:"auto_selected_trip_id,omitempty"`
	Algorithm          string     `json:"algorithm,omitempty"`
	Path               []GeoPoint `json:"path"`
	BestScoreKm        *float64   `json:"best_score_km,omitempty"`
	Inverted           bool       `json:"inverted"`
	Fallback           bool       `json:"fallback"`
	CreatedAt          time.Time  `json:"created_at"`
}

// RouteEvent is broadcast to dashboards whenever a route is reconciled.
type RouteEvent struct {
	ID                 string     `json:"id"`
	TripID             string     `json:"trip_id,omitempty"`
	AutoSelectedTripID string     `json:"auto_selected_trip_id,omitempty"`
	Path               []GeoPoint `json:"path"`
	Fallback           bool       `json:"fallback"`
	Time               time.Time  `json:"time"`
}

// RawPathMessage is a raw path pushed by the routing service over the broker.
type RawPathMessage struct {
	DriverID   string `json:"driver_id,omitempty"`
	SelectedID string `json:"selected_trip_id,omitempty"`
	Path       []any  `json:"path"`
}
