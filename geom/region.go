package geom

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Region is a homogeneous zone: the boolean intersection of its
// surfaces, filled with a single isotope (or nothing, for a void).
// Regions are built once at setup and read-only afterwards, so they are
// safe to share across concurrent histories.
type Region struct {
	Name     string
	Surfaces []Surface

	// Priority resolves geometric overlap: the higher value owns the
	// point. Ties are a configuration error, rejected by New.
	Priority int

	// Void regions have no material; particles stream through them
	// with zero interaction probability.
	Void bool

	// Isotope identifies the material's nuclide in the cross-section
	// library. Empty only for void regions.
	Isotope string
}

// Contains reports whether p satisfies every surface's inside
// predicate. Points within Eps of a boundary count as inside, so a
// particle parked exactly on a surface still belongs somewhere.
func (r *Region) Contains(p r3.Vec) bool {
	for _, s := range r.Surfaces {
		if s.SignedDistance(p) > Eps {
			return false
		}
	}
	return true
}

func (r *Region) validate() error {
	if len(r.Surfaces) == 0 {
		return fmt.Errorf("%w: region %q has no surfaces", ErrConfig, r.Name)
	}
	if !r.Void && r.Isotope == "" {
		return fmt.Errorf("%w: region %q carries material but no isotope", ErrConfig, r.Name)
	}
	for i, s := range r.Surfaces {
		if err := s.validate(); err != nil {
			return fmt.Errorf("region %q, surface %d: %w", r.Name, i, err)
		}
	}
	return nil
}
