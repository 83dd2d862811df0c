package xs

import "fmt"

// Avogadro's number, mol⁻¹.
const avogadro = 6.02214076e23

// Material describes the single-isotope medium filling a region.
type Material struct {
	Name       string
	Isotope    string
	Density    float64 // g/cm³
	AtomicMass float64 // g/mol
	AWR        float64 // atomic weight ratio A, target mass over neutron mass
}

// Validate rejects materials no neutron could collide in.
func (m Material) Validate() error {
	if m.Density <= 0 {
		return fmt.Errorf("%w: material %q with non-positive density %g g/cm³", ErrConfig, m.Name, m.Density)
	}
	if m.AtomicMass <= 0 {
		return fmt.Errorf("%w: material %q with non-positive atomic mass %g g/mol", ErrConfig, m.Name, m.AtomicMass)
	}
	if m.AWR <= 0 {
		return fmt.Errorf("%w: material %q with non-positive atomic weight ratio %g", ErrConfig, m.Name, m.AWR)
	}
	if m.Isotope == "" {
		return fmt.Errorf("%w: material %q names no isotope", ErrConfig, m.Name)
	}
	return nil
}

// NumberDensity returns atoms per cm³.
func (m Material) NumberDensity() float64 {
	return m.Density / m.AtomicMass * avogadro
}

// Provider binds a loaded library to the materials filling the
// geometry, so the transport loop can ask for macroscopic cross
// sections by isotope alone. Read-only after construction.
type Provider struct {
	lib *Library
	mat map[string]Material // keyed by isotope
}

// NewProvider validates the materials against the library. A material
// referencing an isotope with no loaded tables is a configuration
// error: the simulation refuses to start rather than produce partial
// results.
func NewProvider(lib *Library, mats ...Material) (*Provider, error) {
	if lib == nil {
		return nil, fmt.Errorf("%w: nil library", ErrConfig)
	}
	p := &Provider{lib: lib, mat: make(map[string]Material, len(mats))}
	for _, m := range mats {
		if err := m.Validate(); err != nil {
			return nil, err
		}
		if !lib.Has(m.Isotope) {
			return nil, fmt.Errorf("%w: material %q references isotope %s with no loaded tables",
				ErrConfig, m.Name, m.Isotope)
		}
		p.mat[m.Isotope] = m
	}
	return p, nil
}

// Material returns the material registered for the isotope.
func (p *Provider) Material(isotope string) (Material, bool) {
	m, ok := p.mat[isotope]
	return m, ok
}

// Macro returns the macroscopic cross-section set for the isotope at
// energy e (eV).
func (p *Provider) Macro(isotope string, e float64) (MacroSet, error) {
	m, ok := p.mat[isotope]
	if !ok {
		return MacroSet{}, fmt.Errorf("%w: %s", ErrUnknownIsotope, isotope)
	}
	return p.lib.Macro(isotope, e, m.NumberDensity())
}
