package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/twpayne/go-polyline"

	"github.com/samirrijal/driverdash/internal/core/domain"
)

// pathKeys are the response fields a path may come back under, in priority order.
var pathKeys = []string{"path_coords", "path", "coordinates", "geometry", "polyline"}

// FetchRoute implements ports.RoutingClient via GET /api/route.
//
// Plain arrays are passed through untouched for the reconciliation engine to
// sort out. GeoJSON geometries and encoded polylines carry a known axis order
// and are converted to domain.GeoPoint here.
func (c *Client) FetchRoute(ctx context.Context, from, to domain.GeoPoint, algorithm string) (*domain.RawRoute, error) {
	q := url.Values{}
	q.Set("origin_lat", formatCoord(from.Lat))
	q.Set("origin_lon", formatCoord(from.Lon))
	q.Set("destination_lat", formatCoord(to.Lat))
	q.Set("destination_lon", formatCoord(to.Lon))
	if algorithm != "" {
		q.Set("algorithm", algorithm)
	}

	body, err := c.getJSON(ctx, "fetch_route", "/api/route", q)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Status == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %v", domain.ErrNoRoute, err)
		}
		return nil, err
	}

	obj, ok := body.(map[string]any)
	if !ok {
		// Some deployments answer with the bare coordinate list.
		if list, isList := body.([]any); isList {
			return &domain.RawRoute{Path: list, Meta: domain.RouteMeta{Algorithm: algorithm}}, nil
		}
		return nil, errors.New("fetch_route: unexpected response shape")
	}
	if data, ok := obj["data"].(map[string]any); ok {
		obj = data
	}

	path, err := decodePath(obj)
	if err != nil {
		return nil, fmt.Errorf("fetch_route: %w", err)
	}

	route := &domain.RawRoute{Path: path, Meta: decodeMeta(obj)}
	if route.Meta.Algorithm == "" {
		route.Meta.Algorithm = algorithm
	}
	return route, nil
}

func decodePath(obj map[string]any) ([]any, error) {
	for _, k := range pathKeys {
		v, ok := obj[k]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case []any:
			return t, nil
		case string:
			return decodePolyline(t)
		case map[string]any:
			return decodeGeoJSON(t)
		}
	}
	return nil, errors.New("response carries no path")
}

// decodePolyline reads a Google encoded polyline, which is lat-first.
func decodePolyline(s string) ([]any, error) {
	coords, _, err := polyline.DecodeCoords([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("decode polyline: %w", err)
	}
	out := make([]any, 0, len(coords))
	for _, c := range coords {
		if len(c) < 2 {
			continue
		}
		out = append(out, domain.GeoPoint{Lat: c[0], Lon: c[1]})
	}
	return out, nil
}

// decodeGeoJSON reads a Geometry, Feature or FeatureCollection. GeoJSON
// positions are lon-first.
func decodeGeoJSON(obj map[string]any) ([]any, error) {
	data, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}

	var geoms []orb.Geometry
	switch obj["type"] {
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, fmt.Errorf("decode geojson feature: %w", err)
		}
		geoms = append(geoms, f.Geometry)
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, fmt.Errorf("decode geojson collection: %w", err)
		}
		for _, f := range fc.Features {
			geoms = append(geoms, f.Geometry)
		}
	default:
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, fmt.Errorf("decode geojson geometry: %w", err)
		}
		geoms = append(geoms, g.Geometry())
	}

	var out []any
	for _, g := range geoms {
		for _, p := range flatten(g) {
			out = append(out, domain.GeoPoint{Lat: p.Lat(), Lon: p.Lon()})
		}
	}
	if len(out) == 0 {
		return nil, errors.New("geojson carries no line geometry")
	}
	return out, nil
}

func flatten(g orb.Geometry) []orb.Point {
	switch t := g.(type) {
	case orb.LineString:
		return t
	case orb.MultiLineString:
		var pts []orb.Point
		for _, ls := range t {
			pts = append(pts, ls...)
		}
		return pts
	case orb.MultiPoint:
		return t
	case orb.Point:
		return []orb.Point{t}
	}
	return nil
}

func decodeMeta(obj map[string]any) domain.RouteMeta {
	src := obj
	if m, ok := obj["meta"].(map[string]any); ok {
		src = m
	}
	meta := domain.RouteMeta{Algorithm: str(src, "algorithm")}
	meta.DistanceM, _ = num(src, "distance_m", "distance")
	meta.TravelTimeS, _ = num(src, "travel_time_s", "travel_time")
	if n, ok := num(src, "expanded_nodes", "expandedNodes"); ok {
		meta.ExpandedNodes = int(n)
	}
	return meta
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
