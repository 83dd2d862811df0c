package geom

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Surface is a geometric primitive bounding a region. The sign
// convention is fixed once for all variants: SignedDistance is negative
// inside, zero on the boundary, positive outside. New primitives are
// added as new variants of this interface, not as subclasses of
// anything.
type Surface interface {
	// SignedDistance reports how far p is from the surface, negative
	// on the inside.
	SignedDistance(p r3.Vec) float64

	// NormalAt returns the outward unit normal at a boundary point.
	NormalAt(p r3.Vec) r3.Vec

	// Intersect solves for the smallest t > Eps such that p + t*d
	// lies on the surface, d unit. ok is false when the ray never
	// crosses the surface ahead of p.
	Intersect(p, d r3.Vec) (t float64, ok bool)

	validate() error
}

// Plane is the half-space n·p <= offset. N points out of the inside.
type Plane struct {
	N      r3.Vec // outward unit normal
	Offset float64
}

func (s Plane) SignedDistance(p r3.Vec) float64 { return r3.Dot(s.N, p) - s.Offset }

func (s Plane) NormalAt(p r3.Vec) r3.Vec { return s.N }

func (s Plane) Intersect(p, d r3.Vec) (float64, bool) {
	den := r3.Dot(s.N, d)
	if math.Abs(den) < Eps {
		// ray parallel to the plane
		return 0, false
	}
	t := (s.Offset - r3.Dot(s.N, p)) / den
	if t <= Eps {
		return 0, false
	}
	return t, true
}

func (s Plane) validate() error {
	if n := r3.Norm(s.N); math.Abs(n-1) > 1e-9 {
		return fmt.Errorf("%w: plane normal not unit length (|n|=%g)", ErrConfig, n)
	}
	return nil
}

// Sphere is the ball of radius R around Center.
type Sphere struct {
	Center r3.Vec
	R      float64
}

func (s Sphere) SignedDistance(p r3.Vec) float64 {
	return r3.Norm(r3.Sub(p, s.Center)) - s.R
}

func (s Sphere) NormalAt(p r3.Vec) r3.Vec {
	q := r3.Sub(p, s.Center)
	n := r3.Norm(q)
	if n < Eps {
		diag("geom: sphere normal queried at center %v", p)
		return r3.Vec{X: 1}
	}
	return r3.Scale(1/n, q)
}

func (s Sphere) Intersect(p, d r3.Vec) (float64, bool) {
	// |p + t*d - c|² = R², d unit, so t² + 2bt + c = 0.
	q := r3.Sub(p, s.Center)
	b := r3.Dot(q, d)
	c := r3.Norm2(q) - s.R*s.R
	disc := b*b - c
	if disc <= Eps {
		// miss, or tangent within tolerance: not crossed
		return 0, false
	}
	sq := math.Sqrt(disc)
	if t := -b - sq; t > Eps {
		return t, true
	}
	if t := -b + sq; t > Eps {
		return t, true
	}
	return 0, false
}

func (s Sphere) validate() error {
	if s.R <= 0 {
		return fmt.Errorf("%w: sphere with non-positive radius %g", ErrConfig, s.R)
	}
	return nil
}

// Cylinder is infinite along the unit Axis through Center, radius R.
type Cylinder struct {
	Center r3.Vec
	Axis   r3.Vec // unit
	R      float64
}

// radial is the component of p-Center perpendicular to the axis.
func (s Cylinder) radial(p r3.Vec) r3.Vec {
	q := r3.Sub(p, s.Center)
	return r3.Sub(q, r3.Scale(r3.Dot(q, s.Axis), s.Axis))
}

func (s Cylinder) SignedDistance(p r3.Vec) float64 {
	return r3.Norm(s.radial(p)) - s.R
}

func (s Cylinder) NormalAt(p r3.Vec) r3.Vec {
	q := s.radial(p)
	n := r3.Norm(q)
	if n < Eps {
		diag("geom: cylinder normal queried on axis at %v", p)
		// any direction perpendicular to the axis will do
		ref := r3.Vec{X: 1}
		if math.Abs(s.Axis.X) > 0.9 {
			ref = r3.Vec{Y: 1}
		}
		return r3.Unit(r3.Cross(s.Axis, ref))
	}
	return r3.Scale(1/n, q)
}

func (s Cylinder) Intersect(p, d r3.Vec) (float64, bool) {
	// project out the axial component and solve the 2-D circle case:
	// a t² + 2bt + c = 0
	q := s.radial(p)
	w := r3.Sub(d, r3.Scale(r3.Dot(d, s.Axis), s.Axis))
	a := r3.Norm2(w)
	if a < Eps {
		// ray (anti)parallel to the axis
		return 0, false
	}
	b := r3.Dot(q, w)
	c := r3.Norm2(q) - s.R*s.R
	disc := b*b - a*c
	if disc <= Eps {
		diag("geom: near-tangent ray on cylinder (disc=%g)", disc)
		return 0, false
	}
	sq := math.Sqrt(disc)
	if t := (-b - sq) / a; t > Eps {
		return t, true
	}
	if t := (-b + sq) / a; t > Eps {
		return t, true
	}
	return 0, false
}

func (s Cylinder) validate() error {
	if s.R <= 0 {
		return fmt.Errorf("%w: cylinder with non-positive radius %g", ErrConfig, s.R)
	}
	if n := r3.Norm(s.Axis); math.Abs(n-1) > 1e-9 {
		return fmt.Errorf("%w: cylinder axis not unit length (|a|=%g)", ErrConfig, n)
	}
	return nil
}

// Box is the axis-aligned block [Min, Max].
type Box struct {
	Min, Max r3.Vec
}

// SignedDistance is the Chebyshev wall distance: exact in sign and on
// the boundary, which is all tracking needs from it.
func (s Box) SignedDistance(p r3.Vec) float64 {
	d := math.Max(s.Min.X-p.X, p.X-s.Max.X)
	d = math.Max(d, math.Max(s.Min.Y-p.Y, p.Y-s.Max.Y))
	d = math.Max(d, math.Max(s.Min.Z-p.Z, p.Z-s.Max.Z))
	return d
}

func (s Box) NormalAt(p r3.Vec) r3.Vec {
	walls := [6]struct {
		d float64
		n r3.Vec
	}{
		{s.Min.X - p.X, r3.Vec{X: -1}},
		{p.X - s.Max.X, r3.Vec{X: 1}},
		{s.Min.Y - p.Y, r3.Vec{Y: -1}},
		{p.Y - s.Max.Y, r3.Vec{Y: 1}},
		{s.Min.Z - p.Z, r3.Vec{Z: -1}},
		{p.Z - s.Max.Z, r3.Vec{Z: 1}},
	}
	best := walls[0]
	for _, w := range walls[1:] {
		if w.d > best.d {
			best = w
		}
	}
	return best.n
}

// Intersect uses the slab method and returns the nearest wall crossing,
// whether the ray starts inside or outside the box.
func (s Box) Intersect(p, d r3.Vec) (float64, bool) {
	tmin := math.Inf(-1)
	tmax := math.Inf(1)
	for _, ax := range [3]struct{ p, d, lo, hi float64 }{
		{p.X, d.X, s.Min.X, s.Max.X},
		{p.Y, d.Y, s.Min.Y, s.Max.Y},
		{p.Z, d.Z, s.Min.Z, s.Max.Z},
	} {
		if math.Abs(ax.d) < Eps {
			if ax.p < ax.lo || ax.p > ax.hi {
				return 0, false
			}
			continue
		}
		t0 := (ax.lo - ax.p) / ax.d
		t1 := (ax.hi - ax.p) / ax.d
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		tmin = math.Max(tmin, t0)
		tmax = math.Min(tmax, t1)
		if tmin > tmax {
			return 0, false
		}
	}
	if tmin > Eps {
		return tmin, true
	}
	if tmax > Eps {
		return tmax, true
	}
	return 0, false
}

func (s Box) validate() error {
	if s.Min.X >= s.Max.X || s.Min.Y >= s.Max.Y || s.Min.Z >= s.Max.Z {
		return fmt.Errorf("%w: box min %v not strictly below max %v", ErrConfig, s.Min, s.Max)
	}
	return nil
}
