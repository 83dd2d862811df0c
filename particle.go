// Package neutron drives single-neutron histories through a frozen
// geometry, sampling collisions against tabulated cross sections and
// reporting every discrete event to a caller-supplied sink.
package neutron

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ybadr16/neutron/geom"
)

// Particle is the full per-history mutable state. Exactly one history
// owns it, from source to termination; it is never shared across
// workers.
type Particle struct {
	Pos    r3.Vec
	Dir    r3.Vec  // unit
	Energy float64 // eV

	// HasInteracted marks the first collision; crossings before it are
	// uncollided flight, which some tallies count separately.
	HasInteracted bool

	// Region is the particle's current region, nil once it is outside
	// all regions.
	Region *geom.Region

	rng *rand.Rand
}

// RNG exposes the history's own stream. Sampling decisions consume it
// in a fixed documented order; nothing else may touch it.
func (p *Particle) RNG() *rand.Rand { return p.rng }

// DirectionFromAngles converts polar/azimuthal angles (radians) to a
// unit direction.
func DirectionFromAngles(theta, phi float64) r3.Vec {
	sin := math.Sin(theta)
	return r3.Vec{
		X: sin * math.Cos(phi),
		Y: sin * math.Sin(phi),
		Z: math.Cos(theta),
	}
}

// Source describes where histories start. The zero-value direction with
// Isotropic set samples a fresh direction per history; otherwise Dir is
// normalized and fixed.
type Source struct {
	Pos       r3.Vec
	Dir       r3.Vec
	Energy    float64 // eV
	Isotropic bool
}

// Sample creates the initial particle for one history, taking ownership
// of the stream. An isotropic source consumes two draws (cosine, then
// azimuth); a fixed-direction source consumes none.
func (s Source) Sample(rng *rand.Rand) *Particle {
	dir := s.Dir
	if s.Isotropic {
		mu := 1 - 2*rng.Float64()
		phi := 2 * math.Pi * rng.Float64()
		sin := math.Sqrt(math.Max(0, 1-mu*mu))
		dir = r3.Vec{X: sin * math.Cos(phi), Y: sin * math.Sin(phi), Z: mu}
	} else {
		dir = r3.Unit(dir)
	}
	return &Particle{
		Pos:    s.Pos,
		Dir:    dir,
		Energy: s.Energy,
		rng:    rng,
	}
}
