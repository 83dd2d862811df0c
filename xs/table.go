// Package xs supplies tabulated microscopic cross sections per reaction
// channel and the macroscopic scaling that turns them into collision
// probabilities. All of it is loaded once at setup and queried read-only
// by concurrent histories.
package xs

import (
	"errors"
	"fmt"
	"sort"
)

// Channel identifies a reaction channel by its ENDF MT number.
type Channel int

const (
	Elastic Channel = 2
	Fission Channel = 18
	Capture Channel = 102
)

func (ch Channel) String() string {
	switch ch {
	case Elastic:
		return "elastic"
	case Fission:
		return "fission"
	case Capture:
		return "capture"
	}
	return fmt.Sprintf("MT%d", int(ch))
}

var (
	ErrConfig           = errors.New("xs: configuration error")
	ErrUnknownIsotope   = errors.New("xs: unknown isotope")
	ErrEnergyOutOfRange = errors.New("xs: energy outside tabulated grid")
)

// Table is one channel's microscopic cross section on a sorted energy
// grid. Energies in eV, cross sections in barns.
type Table struct {
	E  []float64
	XS []float64
}

// NewTable builds a table after checking the grid is usable.
func NewTable(e, xsec []float64) (*Table, error) {
	if len(e) != len(xsec) {
		return nil, fmt.Errorf("%w: grid/value length mismatch (%d vs %d)", ErrConfig, len(e), len(xsec))
	}
	if len(e) < 2 {
		return nil, fmt.Errorf("%w: table needs at least two (E, xs) points", ErrConfig)
	}
	if !sort.Float64sAreSorted(e) {
		return nil, fmt.Errorf("%w: energy grid not ascending", ErrConfig)
	}
	return &Table{E: e, XS: xsec}, nil
}

// At linearly interpolates the cross section at energy e. Below the
// first grid point is threshold territory and contributes nothing;
// above the last point the data simply does not exist and the query
// fails with ErrEnergyOutOfRange.
func (t *Table) At(e float64) (float64, error) {
	if e < t.E[0] {
		return 0, nil
	}
	last := len(t.E) - 1
	if e > t.E[last] {
		return 0, fmt.Errorf("%w: %g eV above %g eV", ErrEnergyOutOfRange, e, t.E[last])
	}
	i := sort.SearchFloat64s(t.E, e)
	if i <= last && t.E[i] == e {
		return t.XS[i], nil
	}
	lo, hi := i-1, i
	f := (e - t.E[lo]) / (t.E[hi] - t.E[lo])
	return t.XS[lo] + f*(t.XS[hi]-t.XS[lo]), nil
}

// barns to cm²
const barnToCm2 = 1e-24

// MacroSet is the macroscopic cross-section bundle, in cm⁻¹, that the
// transport loop samples one collision against.
type MacroSet struct {
	Elastic float64
	Capture float64
	Fission float64
	Total   float64
}

// Library holds the loaded per-isotope channel tables.
type Library struct {
	isotopes map[string]map[Channel]*Table
}

// NewLibrary returns an empty library.
func NewLibrary() *Library {
	return &Library{isotopes: make(map[string]map[Channel]*Table)}
}

// Add registers a channel table for an isotope, replacing any previous
// one.
func (l *Library) Add(isotope string, ch Channel, t *Table) {
	tabs, ok := l.isotopes[isotope]
	if !ok {
		tabs = make(map[Channel]*Table)
		l.isotopes[isotope] = tabs
	}
	tabs[ch] = t
}

// Has reports whether any table is loaded for the isotope.
func (l *Library) Has(isotope string) bool {
	return len(l.isotopes[isotope]) > 0
}

// Isotopes lists the loaded isotope names.
func (l *Library) Isotopes() []string {
	names := make([]string, 0, len(l.isotopes))
	for name := range l.isotopes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Micro returns the interpolated microscopic cross section in barns.
// A channel with no table for the isotope contributes zero: not every
// nuclide has every reaction.
func (l *Library) Micro(isotope string, ch Channel, e float64) (float64, error) {
	tabs, ok := l.isotopes[isotope]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownIsotope, isotope)
	}
	t, ok := tabs[ch]
	if !ok {
		return 0, nil
	}
	v, err := t.At(e)
	if err != nil {
		return 0, fmt.Errorf("%s %v: %w", isotope, ch, err)
	}
	return v, nil
}

// Macro queries every channel at energy e and scales by the number
// density n in cm⁻³.
func (l *Library) Macro(isotope string, e, n float64) (MacroSet, error) {
	var m MacroSet
	for _, q := range []struct {
		ch  Channel
		dst *float64
	}{
		{Elastic, &m.Elastic},
		{Capture, &m.Capture},
		{Fission, &m.Fission},
	} {
		micro, err := l.Micro(isotope, q.ch, e)
		if err != nil {
			return MacroSet{}, err
		}
		*q.dst = micro * barnToCm2 * n
	}
	m.Total = m.Elastic + m.Capture + m.Fission
	return m, nil
}
