// Package reconcile turns the loosely shaped paths a routing backend returns
// into a drawable polyline aligned with the dashboard's trips.
//
// The pipeline is Normalize, ResolveOrientation, BestMatches, Snap and finally
// ShouldAutoSelect. Every stage is a pure function; Engine only carries the
// thresholds.
package reconcile

import "github.com/samirrijal/driverdash/internal/core/domain"

// Config holds the distance thresholds, all in kilometres.
type Config struct {
	// OrientationThresholdKm is how much closer the swapped reading must fit
	// before a path is treated as (lon, lat).
	OrientationThresholdKm float64 `mapstructure:"orientation_threshold_km"`
	// SnapToleranceKm is how far an endpoint may sit from a trip endpoint and
	// still be snapped onto it.
	SnapToleranceKm    float64 `mapstructure:"snap_tolerance_km"`
	AutoSelectScoreKm  float64 `mapstructure:"auto_select_score_km"`
	AutoSelectMarginKm float64 `mapstructure:"auto_select_margin_km"`
}

// DefaultConfig returns the thresholds the dashboard ships with.
func DefaultConfig() Config {
	return Config{
		OrientationThresholdKm: 0.05,
		SnapToleranceKm:        0.2,
		AutoSelectScoreKm:      0.5,
		AutoSelectMarginKm:     0.2,
	}
}

// Engine reconciles raw paths. It is safe for concurrent use.
type Engine struct {
	cfg Config
}

// NewEngine returns an engine using cfg as given. A zero threshold is a real
// setting: zero snap tolerance disables snapping, zero orientation threshold
// drops the bias towards the original reading. Callers wanting the shipped
// thresholds pass DefaultConfig.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Config returns the thresholds in effect.
func (e *Engine) Config() Config {
	return e.cfg
}

// Reconcile normalizes raw, fixes its axis order, snaps its endpoints onto the
// best matching trip and decides whether that trip should become the active
// selection. currentID is the trip selected on the dashboard, "" for none; an
// id that no longer appears in trips counts as no selection.
//
// A path with fewer than two readable points yields a nil FinalPath and no
// selection change. Neither raw nor trips is modified.
func (e *Engine) Reconcile(raw []any, trips []domain.Trip, currentID string) domain.Reconciliation {
	path := Normalize(raw)
	res := domain.Reconciliation{DroppedPoints: len(raw) - len(path)}
	if len(path) < 2 {
		return res
	}

	current := findTrip(trips, currentID)
	if current == nil {
		currentID = ""
	}

	pickup, destination := e.orientationReference(path, trips, current)
	path, res.Inverted = ResolveOrientation(path, pickup, destination, e.cfg.OrientationThresholdKm)

	m := BestMatches(path, trips)
	res.MatchedTripID = m.BestID()
	res.BestScoreKm = domain.KmOrNil(m.BestScore)
	res.SecondBestScoreKm = domain.KmOrNil(m.SecondBestScore)

	res.FinalPath, res.SnappedStart, res.SnappedEnd = snap(path, m.Best, e.cfg.SnapToleranceKm)

	if ShouldAutoSelect(m.BestID(), m.BestScore, m.SecondBestScore, currentID, e.cfg.AutoSelectScoreKm, e.cfg.AutoSelectMarginKm) {
		res.AutoSelectedTripID = m.BestID()
	}
	return res
}

// orientationReference prefers the selected trip's endpoints and otherwise
// uses the best match for the path as read, before any axis swap.
func (e *Engine) orientationReference(path []domain.GeoPoint, trips []domain.Trip, current *domain.Trip) (pickup, destination *domain.GeoPoint) {
	if current != nil && (current.Pickup != nil || current.Destination != nil) {
		return current.Pickup, current.Destination
	}
	m := BestMatches(path, trips)
	if m.Best == nil {
		return nil, nil
	}
	return m.Best.Pickup, m.Best.Destination
}

func findTrip(trips []domain.Trip, id string) *domain.Trip {
	if id == "" {
		return nil
	}
	for i := range trips {
		if trips[i].ID == id {
			return &trips[i]
		}
	}
	return nil
}
