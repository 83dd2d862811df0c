package geom

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Geometry is the frozen region set a simulation tracks particles
// through. Built once by New, read-only afterwards, safe for any number
// of concurrent readers.
type Geometry struct {
	regions []*Region
}

// New validates the region set and freezes it. Priorities must be
// unique: two overlapping regions at equal priority have no defined
// owner, and rather than guess an order we refuse the configuration
// outright.
func New(regions ...*Region) (*Geometry, error) {
	if len(regions) == 0 {
		return nil, fmt.Errorf("%w: no regions", ErrConfig)
	}
	seen := make(map[int]string, len(regions))
	for _, reg := range regions {
		if err := reg.validate(); err != nil {
			return nil, err
		}
		if prev, dup := seen[reg.Priority]; dup {
			return nil, fmt.Errorf("%w: regions %q and %q share priority %d",
				ErrConfig, prev, reg.Name, reg.Priority)
		}
		seen[reg.Priority] = reg.Name
	}
	return &Geometry{regions: regions}, nil
}

// Regions returns the frozen region list.
func (g *Geometry) Regions() []*Region { return g.regions }

// Locate returns the highest-priority region containing p, or nil when
// p lies outside all regions.
func (g *Geometry) Locate(p r3.Vec) *Region {
	var best *Region
	for _, reg := range g.regions {
		if !reg.Contains(p) {
			continue
		}
		if best == nil || reg.Priority > best.Priority {
			best = reg
		}
	}
	return best
}

// NearestBoundary finds the smallest positive flight distance from p
// along the unit direction d to any region boundary, and the region
// entered just past that crossing (nil means escaped to outside all
// regions). ok is false when no boundary lies ahead at all.
//
// Every surface of every region is a candidate; a root only counts if
// the hit point lies on its owning region's actual boundary rather than
// on the surface's extension beyond it. The entered region is resolved
// by priority at a point pushed Push past the crossing, so candidate
// distances tied within epsilon settle in favor of the higher-priority
// region.
func (g *Geometry) NearestBoundary(p, d r3.Vec) (dist float64, next *Region, ok bool) {
	if n := r3.Norm(d); math.Abs(n-1) > 1e-9 {
		if n < Eps {
			diag("geom: unnormalizable direction %v at %v", d, p)
			return 0, nil, false
		}
		d = r3.Scale(1/n, d)
	}

	best := math.Inf(1)
	for _, reg := range g.regions {
		for _, s := range reg.Surfaces {
			t, hit := s.Intersect(p, d)
			if !hit || t >= best {
				continue
			}
			cand := r3.Add(p, r3.Scale(t, d))
			if !reg.Contains(cand) {
				continue
			}
			best = t
		}
	}
	if math.IsInf(best, 1) {
		return 0, nil, false
	}
	next = g.Locate(r3.Add(p, r3.Scale(best+Push, d)))
	return best, next, true
}
