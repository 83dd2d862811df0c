// Package tally aggregates the discrete event stream of a simulation
// batch into counters and spectra.
package tally

import (
	"fmt"

	"go-hep.org/x/hep/hbook"
	"gonum.org/v1/gonum/stat"

	"github.com/ybadr16/neutron"
)

// Tally is a neutron.Sink accumulating batch statistics. It is fed from
// the runner's single collector goroutine and holds no locks.
type Tally struct {
	Collisions int
	Scatters   int
	Crossings  int
	Absorbed   int
	Fissions   int
	Escaped    int
	Cutoff     int

	// Uncollided counts escapes with no prior collision, the raw
	// transmission statistic for shielding problems.
	Uncollided int

	// EscapeSpectrum histograms escape energies in eV.
	EscapeSpectrum *hbook.H1D

	escapeEnergies []float64
}

// New builds a tally whose escape spectrum spans [emin, emax) eV over
// the given number of bins.
func New(bins int, emin, emax float64) *Tally {
	return &Tally{EscapeSpectrum: hbook.NewH1D(bins, emin, emax)}
}

// Record implements neutron.Sink.
func (t *Tally) Record(ev neutron.Event) {
	switch ev.Kind {
	case neutron.EventCollision:
		t.Collisions++
	case neutron.EventScatter:
		t.Scatters++
	case neutron.EventCrossing:
		t.Crossings++
	case neutron.EventAbsorption:
		t.Absorbed++
	case neutron.EventFission:
		t.Fissions++
	case neutron.EventEscape:
		t.Escaped++
		if ev.FirstFlight {
			t.Uncollided++
		}
		t.EscapeSpectrum.Fill(ev.Energy, 1)
		t.escapeEnergies = append(t.escapeEnergies, ev.Energy)
	case neutron.EventCutoff:
		t.Cutoff++
	}
}

// Leakage returns the escaped fraction over n histories.
func (t *Tally) Leakage(n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(t.Escaped) / float64(n)
}

// Transmission returns the uncollided escape fraction over n histories.
func (t *Tally) Transmission(n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(t.Uncollided) / float64(n)
}

// MeanEscapeEnergy returns the mean escape energy in eV, with its
// standard deviation.
func (t *Tally) MeanEscapeEnergy() (mean, stddev float64) {
	if len(t.escapeEnergies) == 0 {
		return 0, 0
	}
	return stat.Mean(t.escapeEnergies, nil), stat.StdDev(t.escapeEnergies, nil)
}

func (t *Tally) String() string {
	mean, _ := t.MeanEscapeEnergy()
	return fmt.Sprintf(
		"collisions=%d scatters=%d crossings=%d absorbed=%d fissions=%d escaped=%d (uncollided=%d) cutoff=%d <E_escape>=%.4g eV",
		t.Collisions, t.Scatters, t.Crossings, t.Absorbed, t.Fissions,
		t.Escaped, t.Uncollided, t.Cutoff, mean,
	)
}
