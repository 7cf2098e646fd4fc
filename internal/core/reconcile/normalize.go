package reconcile

import "github.com/samirrijal/driverdash/internal/core/domain"

// Normalize extracts every vertex of a raw path, keeping order and dropping the
// ones that cannot be read. The result is never nil; an empty slice means there
// is no usable path.
func Normalize(raw []any) []domain.GeoPoint {
	out := make([]domain.GeoPoint, 0, len(raw))
	for _, r := range raw {
		if p, ok := Extract(r); ok {
			out = append(out, p)
		}
	}
	return out
}
