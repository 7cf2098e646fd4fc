package http

import (
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/twpayne/go-polyline"

	"github.com/samirrijal/driverdash/internal/core/domain"
)

// RouteResponse is the JSON shape of a reconciled path.
type RouteResponse struct {
	TripID             string            `json:"trip_id,omitempty"`
	Path               []domain.GeoPoint `json:"path"`
	Polyline           string            `json:"polyline"`
	Bounds             *domain.Bounds    `json:"bounds,omitempty"`
	AutoSelectedTripID string            `json:"auto_selected_trip_id,omitempty"`
	MatchedTripID      string            `json:"matched_trip_id,omitempty"`
	BestScoreKm        *float64          `json:"best_score_km"`
	SecondBestScoreKm  *float64          `json:"second_best_score_km"`
	Inverted           bool              `json:"inverted"`
	SnappedStart       bool              `json:"snapped_start"`
	SnappedEnd         bool              `json:"snapped_end"`
	DroppedPoints      int               `json:"dropped_points"`
	Fallback           bool              `json:"fallback"`
	Meta               *domain.RouteMeta `json:"meta,omitempty"`
	PlannedAt          *time.Time        `json:"planned_at,omitempty"`
}

func newRouteResponse(res domain.Reconciliation) RouteResponse {
	path := res.FinalPath
	if path == nil {
		path = []domain.GeoPoint{}
	}
	out := RouteResponse{
		Path:               path,
		Polyline:           encodePolyline(path),
		AutoSelectedTripID: res.AutoSelectedTripID,
		MatchedTripID:      res.MatchedTripID,
		BestScoreKm:        res.BestScoreKm,
		SecondBestScoreKm:  res.SecondBestScoreKm,
		Inverted:           res.Inverted,
		SnappedStart:       res.SnappedStart,
		SnappedEnd:         res.SnappedEnd,
		DroppedPoints:      res.DroppedPoints,
	}
	if b, ok := domain.BoundsOf(path); ok {
		out.Bounds = &b
	}
	return out
}

func newPlannedRouteResponse(p *domain.PlannedRoute) RouteResponse {
	out := newRouteResponse(p.Reconciliation)
	out.TripID = p.TripID
	out.Fallback = p.Fallback
	meta := p.Meta
	out.Meta = &meta
	at := p.PlannedAt
	out.PlannedAt = &at
	return out
}

// encodePolyline renders a path as a Google encoded polyline (lat first).
func encodePolyline(path []domain.GeoPoint) string {
	coords := make([][]float64, len(path))
	for i, p := range path {
		coords[i] = []float64{p.Lat, p.Lon}
	}
	return string(polyline.EncodeCoords(coords))
}

// routeFeature renders a route as a GeoJSON LineString feature. GeoJSON
// positions are lon first.
func routeFeature(r RouteResponse) *geojson.Feature {
	ls := make(orb.LineString, 0, len(r.Path))
	for _, p := range r.Path {
		ls = append(ls, orb.Point{p.Lon, p.Lat})
	}
	f := geojson.NewFeature(ls)
	if len(ls) > 0 {
		f.BBox = geojson.NewBBox(ls.Bound())
	}
	f.Properties["inverted"] = r.Inverted
	f.Properties["snapped_start"] = r.SnappedStart
	f.Properties["snapped_end"] = r.SnappedEnd
	f.Properties["fallback"] = r.Fallback
	if r.TripID != "" {
		f.Properties["trip_id"] = r.TripID
	}
	if r.AutoSelectedTripID != "" {
		f.Properties["auto_selected_trip_id"] = r.AutoSelectedTripID
	}
	if r.MatchedTripID != "" {
		f.Properties["matched_trip_id"] = r.MatchedTripID
	}
	if r.BestScoreKm != nil {
		f.Properties["best_score_km"] = *r.BestScoreKm
	}
	return f
}
