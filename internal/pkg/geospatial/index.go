package geospatial

import (
	"sort"

	"github.com/tidwall/rtree"

	"github.com/samirrijal/driverdash/internal/core/domain"
)

// Hit is an indexed item found near a path.
type Hit[T any] struct {
	Item       T
	Location   domain.GeoPoint
	DistanceKm float64
}

type entry[T any] struct {
	item T
	loc  domain.GeoPoint
}

// PointIndex is an R-tree over point items. Rectangles are stored as
// [lon, lat] so the x axis is longitude.
type PointIndex[T any] struct {
	tr rtree.RTreeG[entry[T]]
}

// NewPointIndex creates an empty index.
func NewPointIndex[T any]() *PointIndex[T] {
	return &PointIndex[T]{}
}

// Insert adds an item at the given location.
func (ix *PointIndex[T]) Insert(loc domain.GeoPoint, item T) {
	pt := [2]float64{loc.Lon, loc.Lat}
	ix.tr.Insert(pt, pt, entry[T]{item: item, loc: loc})
}

// Len returns the number of indexed items.
func (ix *PointIndex[T]) Len() int {
	return ix.tr.Len()
}

// NearPath returns the items within radiusKm of the path, closest first.
// Candidates come from the path bounding box grown by the radius; the exact
// point-to-polyline distance then filters them.
func (ix *PointIndex[T]) NearPath(path []domain.GeoPoint, radiusKm float64) []Hit[T] {
	b, ok := domain.BoundsOf(path)
	if !ok || radiusKm < 0 {
		return nil
	}
	b = Expand(b, radiusKm)

	var hits []Hit[T]
	ix.tr.Search([2]float64{b.MinLon, b.MinLat}, [2]float64{b.MaxLon, b.MaxLat},
		func(_, _ [2]float64, e entry[T]) bool {
			d := DistanceToPathKm(e.loc, path)
			if d <= radiusKm {
				hits = append(hits, Hit[T]{Item: e.item, Location: e.loc, DistanceKm: d})
			}
			return true
		})

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].DistanceKm < hits[j].DistanceKm })
	return hits
}
