package reconcile

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"

	"github.com/samirrijal/driverdash/internal/core/domain"
)

// maxNesting bounds how deep Extract follows wrapper objects.
const maxNesting = 4

var (
	// nestedKeys name fields that wrap a coordinate pair or a geometry object,
	// in priority order.
	nestedKeys = []string{"coordinates", "coords", "coord", "point", "position", "location", "geometry"}
	latKeys    = []string{"lat", "latitude", "y"}
	lonKeys    = []string{"lon", "lng", "longitude", "x"}
)

// strategy tries to read one point out of a raw value.
type strategy struct {
	name string
	fn   func(raw any, depth int) (domain.GeoPoint, bool)
}

var strategies []strategy

func init() {
	strategies = []strategy{
		{"pair", fromPair},
		{"nested", fromNested},
		{"aliases", fromAliases},
		{"positional-keys", fromPositionalKeys},
	}
}

// Extract reads a single path vertex. The result is positional: a pair [a, b]
// becomes {Lat: a, Lon: b} whatever the producer meant, and axis order is
// settled later by ResolveOrientation. ok is false when no strategy could read
// two finite numbers out of raw.
func Extract(raw any) (p domain.GeoPoint, ok bool) {
	return extract(raw, 0)
}

func extract(raw any, depth int) (domain.GeoPoint, bool) {
	if raw == nil || depth > maxNesting {
		return domain.GeoPoint{}, false
	}
	for _, s := range strategies {
		if p, ok := s.fn(raw, depth); ok {
			return p, true
		}
	}
	return domain.GeoPoint{}, false
}

func fromPair(raw any, _ int) (domain.GeoPoint, bool) {
	switch v := raw.(type) {
	case domain.GeoPoint:
		return finite(v.Lat, v.Lon)
	case *domain.GeoPoint:
		if v == nil {
			return domain.GeoPoint{}, false
		}
		return finite(v.Lat, v.Lon)
	case orb.Point:
		return finite(v[0], v[1])
	case [2]float64:
		return finite(v[0], v[1])
	case []float64:
		if !pairLen(len(v)) {
			return domain.GeoPoint{}, false
		}
		return finite(v[0], v[1])
	case []any:
		if !pairLen(len(v)) {
			return domain.GeoPoint{}, false
		}
		return coerce(v[0], v[1])
	case []string:
		if !pairLen(len(v)) {
			return domain.GeoPoint{}, false
		}
		return coerce(v[0], v[1])
	}
	return domain.GeoPoint{}, false
}

// pairLen accepts a bare pair or a GeoJSON position carrying altitude.
func pairLen(n int) bool {
	return n == 2 || n == 3
}

func fromNested(raw any, depth int) (domain.GeoPoint, bool) {
	m, ok := asObject(raw)
	if !ok {
		return domain.GeoPoint{}, false
	}
	for _, k := range nestedKeys {
		if inner, found := m[k]; found {
			if p, ok := extract(inner, depth+1); ok {
				return p, true
			}
		}
	}
	return domain.GeoPoint{}, false
}

func fromAliases(raw any, _ int) (domain.GeoPoint, bool) {
	m, ok := asObject(raw)
	if !ok {
		return domain.GeoPoint{}, false
	}
	lat, ok := firstField(m, latKeys)
	if !ok {
		return domain.GeoPoint{}, false
	}
	lon, ok := firstField(m, lonKeys)
	if !ok {
		return domain.GeoPoint{}, false
	}
	return coerce(lat, lon)
}

// fromPositionalKeys handles array-like objects {"0": lon, "1": lat}, which
// follow the lon-first convention of GeoJSON positions.
func fromPositionalKeys(raw any, _ int) (domain.GeoPoint, bool) {
	m, ok := asObject(raw)
	if !ok {
		return domain.GeoPoint{}, false
	}
	first, ok0 := m["0"]
	second, ok1 := m["1"]
	if !ok0 || !ok1 {
		return domain.GeoPoint{}, false
	}
	return coerce(second, first)
}

func asObject(raw any) (map[string]any, bool) {
	switch v := raw.(type) {
	case map[string]any:
		return v, true
	case map[string]float64:
		m := make(map[string]any, len(v))
		for k, f := range v {
			m[k] = f
		}
		return m, true
	case map[string]string:
		m := make(map[string]any, len(v))
		for k, s := range v {
			m[k] = s
		}
		return m, true
	}
	return nil, false
}

func firstField(m map[string]any, keys []string) (any, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func coerce(a, b any) (domain.GeoPoint, bool) {
	x, ok := toFloat(a)
	if !ok {
		return domain.GeoPoint{}, false
	}
	y, ok := toFloat(b)
	if !ok {
		return domain.GeoPoint{}, false
	}
	return finite(x, y)
}

func finite(lat, lon float64) (domain.GeoPoint, bool) {
	p := domain.GeoPoint{Lat: lat, Lon: lon}
	return p, p.IsFinite()
}

// toFloat accepts Go numerics, json.Number and numeric strings.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil && !math.IsNaN(f)
	}
	return 0, false
}
