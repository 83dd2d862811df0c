// Package phys samples reaction channels and post-collision kinematics.
//
// Every sampler draws from a single per-history *rand.Rand in a fixed
// order, so replaying a stream from the same seed reproduces the
// collision bit for bit.
package phys

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ybadr16/neutron/xs"
)

const (
	neutronMass = 1.674927471e-27 // kg
	eVToJ       = 1.60217663e-19  // J per eV
	boltzmann   = 1.380649e-23    // J/K

	// Temperature of the free-gas target model, K. The tabulated data
	// is evaluated at 294 K and the kinematics must match it.
	Temperature = 294.0

	// Above this lab energy (eV) target thermal motion is negligible
	// and the target is taken at rest.
	thermalCutoff = 10.0
)

// Speed converts a lab kinetic energy in eV to a neutron speed in m/s.
func Speed(energyEV float64) float64 {
	return math.Sqrt(2 * energyEV * eVToJ / neutronMass)
}

func energyOf(speed2 float64) float64 {
	return 0.5 * neutronMass * speed2 / eVToJ
}

// SelectChannel partitions [0,1) proportionally to the channel cross
// sections and picks the reaction for one collision. One uniform draw.
// The caller guarantees m.Total > 0; a zero total means no collision
// was sampled in the first place.
func SelectChannel(m xs.MacroSet, rng *rand.Rand) xs.Channel {
	u := rng.Float64() * m.Total
	switch {
	case u < m.Elastic:
		return xs.Elastic
	case u < m.Elastic+m.Capture:
		return xs.Capture
	default:
		return xs.Fission
	}
}

// Maxwell samples target-nucleus speeds from a Maxwell-Boltzmann
// distribution at Temperature for a target of atomic weight ratio A.
type Maxwell struct {
	sigma float64 // 1-D velocity component std dev, m/s
}

// NewMaxwell builds the sampler for a target of atomic weight ratio
// awr.
func NewMaxwell(awr float64) Maxwell {
	mass := awr * neutronMass
	return Maxwell{sigma: math.Sqrt(boltzmann * Temperature / mass)}
}

// SampleSpeed draws a target speed in m/s from the three Gaussian
// velocity components. Fast neutrons see the target at rest and consume
// no draws.
func (mx Maxwell) SampleSpeed(energyEV float64, rng *rand.Rand) float64 {
	if energyEV > thermalCutoff {
		return 0
	}
	vx := rng.NormFloat64() * mx.sigma
	vy := rng.NormFloat64() * mx.sigma
	vz := rng.NormFloat64() * mx.sigma
	return math.Sqrt(vx*vx + vy*vy + vz*vz)
}

// cmVectors builds the neutron and target velocities in a working frame
// with the neutron along +z and derives the center-of-mass velocity and
// the neutron's CM-frame velocity:
//
//	v_cm = (v_n + A v_t) / (A + 1)
//
// Draw order: target speed (thermal only), target cosine and azimuth
// (thermal only).
func cmVectors(energyEV, awr float64, mx Maxwell, rng *rand.Rand) (vcm, vnCM r3.Vec) {
	vn := r3.Vec{Z: Speed(energyEV)}

	var vt r3.Vec
	if speed := mx.SampleSpeed(energyEV, rng); speed > 0 {
		mu := 2*rng.Float64() - 1
		phi := 2 * math.Pi * rng.Float64()
		sin := math.Sqrt(math.Max(0, 1-mu*mu))
		vt = r3.Vec{
			X: speed * sin * math.Cos(phi),
			Y: speed * sin * math.Sin(phi),
			Z: speed * mu,
		}
	}

	vcm = r3.Scale(1/(awr+1), r3.Add(vn, r3.Scale(awr, vt)))
	vnCM = r3.Sub(vn, vcm)
	return vcm, vnCM
}

// scatterCM redirects a CM-frame velocity isotropically, preserving the
// given magnitude. Draw order: CM cosine, CM azimuth.
func scatterCM(speed float64, rng *rand.Rand) (v r3.Vec, muCM float64) {
	muCM = 2*rng.Float64() - 1
	phi := 2 * math.Pi * rng.Float64()
	sin := math.Sqrt(math.Max(0, 1-muCM*muCM))
	v = r3.Scale(speed, r3.Vec{
		X: sin * math.Cos(phi),
		Y: sin * math.Sin(phi),
		Z: muCM,
	})
	return v, muCM
}

// Elastic performs free-gas elastic scattering and returns the
// post-collision lab energy in eV plus the CM and lab scattering
// cosines. Isotropy holds only in the CM frame; the lab cosine falls
// out of the back-transformed velocity, it is never assumed.
func Elastic(energyEV, awr float64, mx Maxwell, rng *rand.Rand) (eOut, muCM, muLab float64) {
	vcm, vnCM := cmVectors(energyEV, awr, mx, rng)

	var vPrimeCM r3.Vec
	vPrimeCM, muCM = scatterCM(r3.Norm(vnCM), rng)

	vPrime := r3.Add(vPrimeCM, vcm)
	speed2 := r3.Norm2(vPrime)
	eOut = energyOf(speed2)

	muLab = 1
	if speed := math.Sqrt(speed2); speed > 0 {
		muLab = vPrime.Z / speed
	}
	return eOut, muCM, muLab
}

// Inelastic performs discrete-level inelastic scattering with the
// excitation energy q (eV) taken out of the total CM kinetic energy.
// Below threshold the collision degrades to elastic.
func Inelastic(energyEV, awr, q float64, mx Maxwell, rng *rand.Rand) (eOut, muCM, muLab float64) {
	vcm, vnCM := cmVectors(energyEV, awr, mx, rng)

	// total CM kinetic energy carries the (A+1)/A factor relative to
	// the neutron's share
	eNeutronCM := energyOf(r3.Norm2(vnCM))
	totalCM := eNeutronCM * (awr + 1) / awr
	if totalCM <= q {
		return Elastic(energyEV, awr, mx, rng)
	}

	eNeutronCMPrime := (totalCM - q) * awr / (awr + 1)

	var vPrimeCM r3.Vec
	vPrimeCM, muCM = scatterCM(Speed(eNeutronCMPrime), rng)

	vPrime := r3.Add(vPrimeCM, vcm)
	speed2 := r3.Norm2(vPrime)
	eOut = energyOf(speed2)

	muLab = 1
	if speed := math.Sqrt(speed2); speed > 0 {
		muLab = vPrime.Z / speed
	}
	return eOut, muCM, muLab
}

// Rotate turns a unit direction by the lab scattering cosine muLab
// around a freshly drawn azimuth and renormalizes the result. The
// |w| ≈ 1 branch sidesteps the singular rotation frame when the
// direction is nearly axial.
func Rotate(dir r3.Vec, muLab float64, rng *rand.Rand) r3.Vec {
	phi := 2 * math.Pi * rng.Float64()
	sinTheta := math.Sqrt(math.Max(0, 1-muLab*muLab))
	u, v, w := dir.X, dir.Y, dir.Z

	var nu, nv, nw float64
	if math.Abs(w) >= 0.999999 {
		sign := 1.0
		if w < 0 {
			sign = -1
		}
		nu = sinTheta * math.Cos(phi)
		nv = sinTheta * math.Sin(phi)
		nw = sign * muLab
	} else {
		den := math.Sqrt(math.Max(1e-12, 1-w*w))
		nu = muLab*u + sinTheta/den*(u*w*math.Cos(phi)-v*math.Sin(phi))
		nv = muLab*v + sinTheta/den*(v*w*math.Cos(phi)+u*math.Sin(phi))
		nw = muLab*w - sinTheta*den*math.Cos(phi)
	}
	n := math.Sqrt(nu*nu + nv*nv + nw*nw)
	return r3.Vec{X: nu / n, Y: nv / n, Z: nw / n}
}
