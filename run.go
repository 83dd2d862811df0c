package neutron

import (
	"fmt"
	"log"
	"math/rand"
	"runtime"
	"sync"

	"github.com/ybadr16/neutron/geom"
)

// Result is one finished history.
type Result struct {
	Index       int
	Seed        int64
	Termination Termination
	Events      []Event
	Err         error
}

// Summary counts history outcomes for a batch. Failed histories are
// reported alongside the tallies, never silently dropped.
type Summary struct {
	Histories int
	Absorbed  int
	Escaped   int
	Cutoff    int
	Failed    int
}

func (s Summary) String() string {
	return fmt.Sprintf("histories=%d absorbed=%d escaped=%d cutoff=%d failed=%d",
		s.Histories, s.Absorbed, s.Escaped, s.Cutoff, s.Failed)
}

// batchSink buffers one history's events so workers never touch the
// caller's sink.
type batchSink struct {
	events []Event
}

func (b *batchSink) Record(ev Event) { b.events = append(b.events, ev) }

// Run simulates n independent histories over the worker pool and folds
// their event batches into sink from this goroutine. History i draws
// from rand.NewSource(baseSeed + i), so every history is bit-for-bit
// reproducible for any worker count; only the order batches reach the
// sink varies with scheduling, which no counting sink can observe.
//
// Geometry and provider are shared read-only. A history that fails
// (cross-section data out of range) is counted in Summary.Failed and
// logged; it never aborts the batch.
func Run(cfg Config, geo *geom.Geometry, prov Provider, src Source, sink Sink, n int, baseSeed int64, workers int) (Summary, error) {
	if n <= 0 {
		return Summary{}, fmt.Errorf("%w: no histories requested (n=%d)", ErrConfig, n)
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	// every non-void region must have material and data before the
	// first history launches
	for _, reg := range geo.Regions() {
		if reg.Void {
			continue
		}
		if _, ok := prov.Material(reg.Isotope); !ok {
			return Summary{}, fmt.Errorf("%w: region %q needs isotope %s, which has no material data",
				ErrConfig, reg.Name, reg.Isotope)
		}
	}

	idxc := make(chan int)
	resc := make(chan Result, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range idxc {
				seed := baseSeed + int64(i)
				p := src.Sample(rand.New(rand.NewSource(seed)))
				b := &batchSink{}
				term, err := Transport(cfg, geo, prov, p, b)
				resc <- Result{
					Index:       i,
					Seed:        seed,
					Termination: term,
					Events:      b.events,
					Err:         err,
				}
			}
		}()
	}

	go func() {
		for i := 0; i < n; i++ {
			idxc <- i
		}
		close(idxc)
		wg.Wait()
		close(resc)
	}()

	var sum Summary
	for res := range resc {
		sum.Histories++
		if res.Err != nil {
			sum.Failed++
			log.Printf("neutron: history %d (seed %d) failed: %v", res.Index, res.Seed, res.Err)
			continue
		}
		switch res.Termination {
		case Absorbed:
			sum.Absorbed++
		case Escaped:
			sum.Escaped++
		case CutoffReached:
			sum.Cutoff++
		}
		if sink != nil {
			for _, ev := range res.Events {
				sink.Record(ev)
			}
		}
	}
	return sum, nil
}
