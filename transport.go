package neutron

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ybadr16/neutron/geom"
	"github.com/ybadr16/neutron/phys"
	"github.com/ybadr16/neutron/xs"
)

// ErrConfig marks a simulation setup the runner refuses to start with.
var ErrConfig = errors.New("neutron: configuration error")

// EventKind tags the discrete events a history reports to its sink.
type EventKind int

const (
	EventCrossing EventKind = iota
	EventCollision
	EventScatter
	EventAbsorption
	EventFission
	EventEscape
	EventCutoff
)

func (k EventKind) String() string {
	switch k {
	case EventCrossing:
		return "crossing"
	case EventCollision:
		return "collision"
	case EventScatter:
		return "scatter"
	case EventAbsorption:
		return "absorption"
	case EventFission:
		return "fission"
	case EventEscape:
		return "escape"
	case EventCutoff:
		return "cutoff"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event is one discrete tally record, tagged with the particle state at
// the moment it happened.
type Event struct {
	Kind   EventKind
	Pos    r3.Vec
	Dir    r3.Vec
	Energy float64 // eV

	// FirstFlight is true while the particle has not collided yet.
	FirstFlight bool

	// Region names the region the event happened in (for a crossing,
	// the region entered); empty outside all regions.
	Region string
}

// Sink consumes the event stream. The loop only emits; how events are
// aggregated is entirely the sink's business.
type Sink interface {
	Record(ev Event)
}

// Provider is the cross-section query contract the loop samples
// against. *xs.Provider satisfies it; tests substitute fixed-value
// implementations.
type Provider interface {
	Macro(isotope string, energyEV float64) (xs.MacroSet, error)
	Material(isotope string) (xs.Material, bool)
}

// Termination says how a history ended.
type Termination int

const (
	Absorbed Termination = iota
	Escaped
	CutoffReached
)

func (t Termination) String() string {
	switch t {
	case Absorbed:
		return "absorbed"
	case Escaped:
		return "escaped"
	case CutoffReached:
		return "cutoff"
	}
	return fmt.Sprintf("Termination(%d)", int(t))
}

// Config is the frozen per-run configuration shared read-only by all
// histories.
type Config struct {
	// CutoffEV terminates a history once its energy drops below it.
	CutoffEV float64

	// MaxSteps guards against tracking pathologies. A history that
	// exceeds it is reported as an error record, not an infinite loop.
	MaxSteps int
}

func (c Config) withDefaults() Config {
	if c.CutoffEV <= 0 {
		c.CutoffEV = 1e-5
	}
	if c.MaxSteps <= 0 {
		c.MaxSteps = 1 << 20
	}
	return c
}

// Transport runs one history to natural termination, mutating p as it
// goes. Events stream to sink in the order they occur. A non-nil error
// is a per-history failure (cross-section data out of range, step-guard
// overrun); it kills this history only.
//
// The per-step draw order is fixed: collision-distance uniform first,
// then, on a collision, the channel-selection uniform, then the physics
// draws. Void regions consume no draws.
func Transport(cfg Config, geo *geom.Geometry, prov Provider, p *Particle, sink Sink) (Termination, error) {
	cfg = cfg.withDefaults()
	p.Region = geo.Locate(p.Pos)

	if p.Energy < cfg.CutoffEV {
		emit(sink, p, EventCutoff)
		return CutoffReached, nil
	}

	for step := 0; ; step++ {
		if step > cfg.MaxSteps {
			return 0, fmt.Errorf("neutron: history exceeded %d steps at %v", cfg.MaxSteps, p.Pos)
		}
		if p.Region == nil {
			emit(sink, p, EventEscape)
			return Escaped, nil
		}

		// distance to collision; infinite through voids and through
		// zero total cross section (certain streaming, the draw is
		// still consumed to keep the stream schedule fixed)
		dcol := math.Inf(1)
		var (
			mset xs.MacroSet
			mat  xs.Material
		)
		if !p.Region.Void {
			var err error
			mset, err = prov.Macro(p.Region.Isotope, p.Energy)
			if err != nil {
				return 0, fmt.Errorf("neutron: region %q: %w", p.Region.Name, err)
			}
			mat, _ = prov.Material(p.Region.Isotope)
			u := p.rng.Float64()
			if mset.Total > 0 {
				dcol = -math.Log(u) / mset.Total
			}
		}

		dbnd, next, ok := geo.NearestBoundary(p.Pos, p.Dir)
		if !ok {
			// no surface ahead at all: drifting out of the modeled
			// world
			p.Region = nil
			emit(sink, p, EventEscape)
			return Escaped, nil
		}

		if dcol < dbnd {
			p.Pos = r3.Add(p.Pos, r3.Scale(dcol, p.Dir))
			emit(sink, p, EventCollision)

			switch phys.SelectChannel(mset, p.rng) {
			case xs.Capture:
				emit(sink, p, EventAbsorption)
				return Absorbed, nil

			case xs.Fission:
				// fission terminates this neutron; no secondaries in
				// this model
				emit(sink, p, EventFission)
				return Absorbed, nil

			default: // elastic
				mx := phys.NewMaxwell(mat.AWR)
				eOut, _, muLab := phys.Elastic(p.Energy, mat.AWR, mx, p.rng)
				p.Dir = phys.Rotate(p.Dir, muLab, p.rng)
				p.Energy = eOut
				p.HasInteracted = true
				emit(sink, p, EventScatter)
				if p.Energy < cfg.CutoffEV {
					emit(sink, p, EventCutoff)
					return CutoffReached, nil
				}
			}
			continue
		}

		// boundary crossing: nudge past the surface so the same root
		// is not found again, then trust the tracker's resolution
		p.Pos = r3.Add(p.Pos, r3.Scale(dbnd+geom.Push, p.Dir))
		p.Region = next
		emit(sink, p, EventCrossing)
		if next == nil {
			emit(sink, p, EventEscape)
			return Escaped, nil
		}
	}
}

func emit(sink Sink, p *Particle, kind EventKind) {
	if sink == nil {
		return
	}
	name := ""
	if p.Region != nil {
		name = p.Region.Name
	}
	sink.Record(Event{
		Kind:        kind,
		Pos:         p.Pos,
		Dir:         p.Dir,
		Energy:      p.Energy,
		FirstFlight: !p.HasInteracted,
		Region:      name,
	})
}
