package backend

import (
	"strconv"
	"strings"

	"github.com/samirrijal/driverdash/internal/core/domain"
	"github.com/samirrijal/driverdash/internal/core/reconcile"
)

// The backend is loosely typed: the same attribute shows up camelCased,
// snake_cased or as a string depending on the endpoint. These helpers read the
// first present alias.

func str(m map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := m[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			return strconv.FormatBool(v)
		}
	}
	return ""
}

func num(m map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		switch v := m[k].(type) {
		case float64:
			return v, true
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

func boolean(m map[string]any, keys ...string) bool {
	for _, k := range keys {
		switch v := m[k].(type) {
		case bool:
			return v
		case string:
			b, err := strconv.ParseBool(v)
			if err == nil {
				return b
			}
		case float64:
			return v != 0
		}
	}
	return false
}

// point reads a coordinate either from a nested object under one of objKeys or
// from a flat latKey/lonKey pair.
func point(m map[string]any, objKeys []string, latKey, lonKey string) *domain.GeoPoint {
	for _, k := range objKeys {
		if v, ok := m[k]; ok && v != nil {
			if p, ok := reconcile.Extract(v); ok && p.InRange() {
				return &p
			}
		}
	}
	lat, okLat := num(m, latKey)
	lon, okLon := num(m, lonKey)
	if okLat && okLon {
		p := domain.GeoPoint{Lat: lat, Lon: lon}
		if p.InRange() {
			return &p
		}
	}
	return nil
}

// firstPoint tries several flat lat/lon prefixes, e.g. "client", "pickup".
func firstPoint(m map[string]any, objKeys []string, prefixes ...string) *domain.GeoPoint {
	if p := point(m, objKeys, "", ""); p != nil {
		return p
	}
	for _, prefix := range prefixes {
		if p := point(m, nil, prefix+"Lat", prefix+"Lon"); p != nil {
			return p
		}
		if p := point(m, nil, prefix+"_lat", prefix+"_lon"); p != nil {
			return p
		}
	}
	return nil
}
