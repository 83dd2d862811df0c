// Package geom models the simulation geometry as boolean intersections
// of planar and quadric surfaces, and answers the two questions the
// transport loop keeps asking: which region owns a point, and how far
// along a direction the nearest boundary lies.
package geom

import (
	"errors"
	"log"
)

const (
	// Eps is the tracking epsilon in cm. Intersection roots closer
	// than Eps are the surface the particle already sits on and are
	// rejected to avoid self-intersection.
	Eps = 1e-9

	// Push is the nudge past a crossed boundary before re-locating
	// the particle, so the same root is not found twice.
	Push = 1e-6
)

// ErrConfig marks geometry that cannot be tracked: degenerate surfaces,
// ambiguous priorities, regions without material. Raised at setup,
// before any history runs.
var ErrConfig = errors.New("geom: configuration error")

// Diagnostics, when non-nil, receives notes about numerically
// degenerate cases (near-tangent rays, unnormalizable directions) that
// tracking recovered from by treating the surface as not crossed.
var Diagnostics *log.Logger

func diag(format string, args ...interface{}) {
	if Diagnostics != nil {
		Diagnostics.Printf(format, args...)
	}
}
