package neutron

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"reflect"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ybadr16/neutron/geom"
	"github.com/ybadr16/neutron/xs"
)

// flatProvider returns the same macroscopic set at every energy, the
// simplest provider the transport contract allows.
type flatProvider struct {
	set xs.MacroSet
	awr float64
	err error
}

func (f flatProvider) Macro(isotope string, e float64) (xs.MacroSet, error) {
	if f.err != nil {
		return xs.MacroSet{}, f.err
	}
	return f.set, nil
}

func (f flatProvider) Material(isotope string) (xs.Material, bool) {
	return xs.Material{
		Name:       isotope,
		Isotope:    isotope,
		Density:    1,
		AtomicMass: 1,
		AWR:        f.awr,
	}, true
}

type recordingSink struct {
	events []Event
}

func (r *recordingSink) Record(ev Event) { r.events = append(r.events, ev) }

func slabGeometry(t *testing.T, thickness float64) *geom.Geometry {
	t.Helper()
	geo, err := geom.New(&geom.Region{
		Name: "slab",
		Surfaces: []geom.Surface{geom.Box{
			Min: r3.Vec{Y: -100, Z: -100},
			Max: r3.Vec{X: thickness, Y: 100, Z: 100},
		}},
		Priority: 1,
		Isotope:  "X",
	})
	if err != nil {
		t.Fatalf("geom.New() = %v", err)
	}
	return geo
}

// A 1 MeV beam through a purely absorbing slab of thickness d must
// transmit with probability exp(-Σ d). Σ d = 1.5 gives 0.2231; the
// binomial error over 1e4 histories is ~0.004.
func TestAbsorberSlabTransmission(t *testing.T) {
	const (
		sigma     = 0.3 // cm⁻¹, capture only
		thickness = 5.0
		n         = 10000
	)
	geo := slabGeometry(t, thickness)
	prov := flatProvider{set: xs.MacroSet{Capture: sigma, Total: sigma}, awr: 207}
	src := Source{Pos: r3.Vec{}, Dir: r3.Vec{X: 1}, Energy: 1e6}

	sum, err := Run(Config{}, geo, prov, src, nil, n, 12345, 4)
	if err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if sum.Failed != 0 {
		t.Fatalf("failed histories: %d", sum.Failed)
	}
	if sum.Escaped+sum.Absorbed != n {
		t.Fatalf("summary does not add up: %v", sum)
	}

	got := float64(sum.Escaped) / n
	want := math.Exp(-sigma * thickness)
	if math.Abs(got-want) > 0.02 {
		t.Errorf("transmission = %g, want %g ± 0.02", got, want)
	}
}

// Zero total cross section means certain streaming: one boundary step
// straight out, no collision.
func TestZeroCrossSectionStreams(t *testing.T) {
	geo := slabGeometry(t, 5)
	prov := flatProvider{awr: 207}
	p := Source{Pos: r3.Vec{X: 1, Y: 3, Z: -2}, Dir: r3.Vec{X: 1}, Energy: 1e6}.
		Sample(rand.New(rand.NewSource(1)))

	sink := &recordingSink{}
	term, err := Transport(Config{}, geo, prov, p, sink)
	if err != nil {
		t.Fatalf("Transport() = %v", err)
	}
	if term != Escaped {
		t.Fatalf("termination = %v, want escaped", term)
	}
	kinds := eventKinds(sink.events)
	want := []EventKind{EventCrossing, EventEscape}
	if !reflect.DeepEqual(kinds, want) {
		t.Errorf("events = %v, want %v", kinds, want)
	}
}

// Void regions stream without consuming any stream draws or producing
// collisions.
func TestVoidRegionStreams(t *testing.T) {
	geo, err := geom.New(&geom.Region{
		Name:     "cavity",
		Surfaces: []geom.Surface{geom.Sphere{R: 4}},
		Priority: 1,
		Void:     true,
	})
	if err != nil {
		t.Fatalf("geom.New() = %v", err)
	}
	p := Source{Pos: r3.Vec{}, Dir: r3.Vec{Z: 1}, Energy: 1e6}.
		Sample(rand.New(rand.NewSource(1)))

	sink := &recordingSink{}
	term, err := Transport(Config{}, geo, flatProvider{}, p, sink)
	if err != nil {
		t.Fatalf("Transport() = %v", err)
	}
	if term != Escaped {
		t.Fatalf("termination = %v, want escaped", term)
	}
	for _, ev := range sink.events {
		if ev.Kind == EventCollision {
			t.Fatal("collision inside a void region")
		}
	}
}

func TestCutoffAtSource(t *testing.T) {
	geo := slabGeometry(t, 5)
	p := Source{Pos: r3.Vec{X: 1, Y: 0, Z: 0}, Dir: r3.Vec{X: 1}, Energy: 1e-6}.
		Sample(rand.New(rand.NewSource(1)))

	sink := &recordingSink{}
	term, err := Transport(Config{CutoffEV: 1e-5}, geo, flatProvider{awr: 207}, p, sink)
	if err != nil {
		t.Fatalf("Transport() = %v", err)
	}
	if term != CutoffReached {
		t.Errorf("termination = %v, want cutoff", term)
	}
	if kinds := eventKinds(sink.events); !reflect.DeepEqual(kinds, []EventKind{EventCutoff}) {
		t.Errorf("events = %v, want [cutoff]", kinds)
	}
}

// Two histories from the same seed must produce bit-identical event
// sequences.
func TestHistoryDeterminism(t *testing.T) {
	geo := slabGeometry(t, 5)
	prov := flatProvider{
		set: xs.MacroSet{Elastic: 0.15, Capture: 0.05, Total: 0.2},
		awr: 12,
	}
	src := Source{Pos: r3.Vec{X: 0.5, Y: 0, Z: 0}, Energy: 1e6, Isotropic: true}

	run := func(seed int64) ([]Event, Termination) {
		p := src.Sample(rand.New(rand.NewSource(seed)))
		sink := &recordingSink{}
		term, err := Transport(Config{}, geo, prov, p, sink)
		if err != nil {
			t.Fatalf("Transport() = %v", err)
		}
		return sink.events, term
	}

	ev1, t1 := run(99)
	ev2, t2 := run(99)
	if t1 != t2 || !reflect.DeepEqual(ev1, ev2) {
		t.Error("identical seeds produced different histories")
	}
}

// A provider failure is an error record for that history alone; the
// batch keeps going.
func TestProviderErrorFailsHistoryOnly(t *testing.T) {
	geo := slabGeometry(t, 5)
	prov := flatProvider{
		err: fmt.Errorf("Pb208 elastic: %w", xs.ErrEnergyOutOfRange),
		awr: 207,
	}
	src := Source{Pos: r3.Vec{X: 1, Y: 0, Z: 0}, Dir: r3.Vec{X: 1}, Energy: 1e6}

	sum, err := Run(Config{}, geo, prov, src, nil, 50, 1, 4)
	if err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if sum.Failed != 50 {
		t.Errorf("failed = %d, want 50", sum.Failed)
	}

	p := src.Sample(rand.New(rand.NewSource(1)))
	_, terr := Transport(Config{}, geo, prov, p, nil)
	if !errors.Is(terr, xs.ErrEnergyOutOfRange) {
		t.Errorf("Transport() error = %v, want ErrEnergyOutOfRange", terr)
	}
}

// The batch outcome must not depend on the worker count.
func TestRunReproducibleAcrossWorkers(t *testing.T) {
	geo := slabGeometry(t, 5)
	prov := flatProvider{
		set: xs.MacroSet{Elastic: 0.1, Capture: 0.1, Total: 0.2},
		awr: 12,
	}
	src := Source{Pos: r3.Vec{X: 0.5, Y: 0, Z: 0}, Energy: 1e6, Isotropic: true}

	sum1, err := Run(Config{}, geo, prov, src, nil, 500, 7, 1)
	if err != nil {
		t.Fatalf("Run() = %v", err)
	}
	sum8, err := Run(Config{}, geo, prov, src, nil, 500, 7, 8)
	if err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if sum1 != sum8 {
		t.Errorf("summaries differ across worker counts: %v vs %v", sum1, sum8)
	}
}

func TestRunRejectsBadSetup(t *testing.T) {
	geo := slabGeometry(t, 5)
	src := Source{Pos: r3.Vec{X: 1}, Dir: r3.Vec{X: 1}, Energy: 1e6}
	if _, err := Run(Config{}, geo, flatProvider{}, src, nil, 0, 1, 1); !errors.Is(err, ErrConfig) {
		t.Errorf("Run(n=0) error = %v, want ErrConfig", err)
	}
}

func TestDirectionFromAngles(t *testing.T) {
	tests := []struct {
		theta, phi float64
		want       r3.Vec
	}{
		{0, 0, r3.Vec{Z: 1}},
		{math.Pi, 0, r3.Vec{Z: -1}},
		{math.Pi / 2, 0, r3.Vec{X: 1}},
		{math.Pi / 2, math.Pi / 2, r3.Vec{Y: 1}},
	}
	for _, tt := range tests {
		got := DirectionFromAngles(tt.theta, tt.phi)
		if r3.Norm(r3.Sub(got, tt.want)) > 1e-12 {
			t.Errorf("DirectionFromAngles(%g, %g) = %v, want %v", tt.theta, tt.phi, got, tt.want)
		}
	}
}

func eventKinds(events []Event) []EventKind {
	kinds := make([]EventKind, len(events))
	for i, ev := range events {
		kinds[i] = ev.Kind
	}
	return kinds
}
