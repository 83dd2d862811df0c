// Command neutron-sim runs the Pb-208 sphere shielding benchmark: a
// mono-energetic 1 MeV isotropic point source at the center of a 10 cm
// lead sphere, leakage and escape spectrum tallied over n histories.
package main

import (
	"bufio"
	"encoding/binary"
	"flag"
	"log"
	"math"
	"os"
	"runtime/pprof"
	"runtime/trace"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ybadr16/neutron"
	"github.com/ybadr16/neutron/geom"
	"github.com/ybadr16/neutron/tally"
	"github.com/ybadr16/neutron/xs"
)

var (
	nevts   = flag.Int("n", 10000, "number of histories to run")
	seed    = flag.Int64("seed", 12345, "base seed; history i uses seed+i")
	workers = flag.Int("workers", 0, "number of worker goroutines (0 = NumCPU)")
	cutoff  = flag.Float64("cutoff", 1e-5, "energy cutoff in eV")
	energy  = flag.Float64("energy", 1e6, "source energy in eV")
	radius  = flag.Float64("radius", 10, "sphere radius in cm")
	xsdir   = flag.String("xs-dir", "", "directory of *.dat cross-section tables (empty = built-in flat demo tables)")
	fname   = flag.String("o", "", "path to binary escape-record output file (empty = none)")
	fprof   = flag.String("cpu-profile", "", "write CPU profile to file")
	ftrace  = flag.String("trace", "", "write execution trace to file")
)

func main() {
	flag.Parse()

	if *fprof != "" {
		f, err := os.Create(*fprof)
		if err != nil {
			log.Fatalf("error creating pprof output file [%s]: %v\n", *fprof, err)
		}
		defer f.Close()
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	if *ftrace != "" {
		f, err := os.Create(*ftrace)
		if err != nil {
			log.Fatalf("error creating trace output file: %v\n", err)
		}
		defer f.Close()
		err = trace.Start(f)
		if err != nil {
			log.Fatalf("error starting tracer: %v\n", err)
		}
		defer trace.Stop()
	}

	lib, err := library(*xsdir)
	if err != nil {
		log.Fatalf("error loading cross-section tables: %v\n", err)
	}

	lead := xs.Material{
		Name:       "Lead",
		Isotope:    "Pb208",
		Density:    11.35,  // g/cm³
		AtomicMass: 207.97, // g/mol
		AWR:        207.2,
	}
	prov, err := xs.NewProvider(lib, lead)
	if err != nil {
		log.Fatalf("error building cross-section provider: %v\n", err)
	}

	geo, err := geom.New(&geom.Region{
		Name:     "LeadSphere",
		Surfaces: []geom.Surface{geom.Sphere{R: *radius}},
		Priority: 1,
		Isotope:  "Pb208",
	})
	if err != nil {
		log.Fatalf("error building geometry: %v\n", err)
	}

	src := neutron.Source{
		Pos:       r3.Vec{},
		Energy:    *energy,
		Isotropic: true,
	}

	t := tally.New(50, 0, *energy*1.05)
	var sink neutron.Sink = t
	if *fname != "" {
		f, err := os.Create(*fname)
		if err != nil {
			log.Fatalf("error creating output file [%s]: %v\n", *fname, err)
		}
		defer f.Close()
		w := newEscapeWriter(f, t)
		defer w.flush()
		sink = w
	}

	cfg := neutron.Config{CutoffEV: *cutoff}
	sum, err := neutron.Run(cfg, geo, prov, src, sink, *nevts, *seed, *workers)
	if err != nil {
		log.Fatalf("error running batch: %v\n", err)
	}

	mean, dev := t.MeanEscapeEnergy()
	log.Printf("%v\n", sum)
	log.Printf("%v\n", t)
	log.Printf("leakage fraction    = %.5f\n", t.Leakage(sum.Histories))
	log.Printf("avg escape energy   = %.2f +- %.2f eV\n", mean, dev)
}

// library loads tables from dir, or falls back to flat demo values for
// Pb-208 near 1 MeV so the benchmark runs out of the box.
func library(dir string) (*xs.Library, error) {
	if dir != "" {
		return xs.Load(dir)
	}
	lib := xs.NewLibrary()
	grid := []float64{1e-5, 2e7}
	for _, c := range []struct {
		ch xs.Channel
		v  float64 // barns
	}{
		{xs.Elastic, 4.4},
		{xs.Capture, 0.003},
	} {
		t, err := xs.NewTable(grid, []float64{c.v, c.v})
		if err != nil {
			return nil, err
		}
		lib.Add("Pb208", c.ch, t)
	}
	return lib, nil
}

// escapeWriter tees escape records to a binary output file, one
// (energy, x, y, z) float64 quad per escape, little endian.
type escapeWriter struct {
	w    *bufio.Writer
	next neutron.Sink
	buf  [4 * 8]byte
}

func newEscapeWriter(f *os.File, next neutron.Sink) *escapeWriter {
	return &escapeWriter{w: bufio.NewWriter(f), next: next}
}

func (e *escapeWriter) Record(ev neutron.Event) {
	if e.next != nil {
		e.next.Record(ev)
	}
	if ev.Kind != neutron.EventEscape {
		return
	}
	binary.LittleEndian.PutUint64(e.buf[0*8:1*8], math.Float64bits(ev.Energy))
	binary.LittleEndian.PutUint64(e.buf[1*8:2*8], math.Float64bits(ev.Pos.X))
	binary.LittleEndian.PutUint64(e.buf[2*8:3*8], math.Float64bits(ev.Pos.Y))
	binary.LittleEndian.PutUint64(e.buf[3*8:4*8], math.Float64bits(ev.Pos.Z))
	if _, err := e.w.Write(e.buf[:]); err != nil {
		log.Fatalf("error writing escape record: %v\n", err)
	}
}

func (e *escapeWriter) flush() {
	if err := e.w.Flush(); err != nil {
		log.Fatalf("error flushing output file: %v\n", err)
	}
}
