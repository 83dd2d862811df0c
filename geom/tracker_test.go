package geom

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func sphereRegion(name string, r float64, prio int) *Region {
	return &Region{
		Name:     name,
		Surfaces: []Surface{Sphere{R: r}},
		Priority: prio,
		Isotope:  "X",
	}
}

func TestNewRejectsBadConfigurations(t *testing.T) {
	tests := []struct {
		name    string
		regions []*Region
	}{
		{"no regions", nil},
		{
			"duplicate priority",
			[]*Region{sphereRegion("a", 1, 1), sphereRegion("b", 2, 1)},
		},
		{
			"degenerate surface",
			[]*Region{{Name: "z", Surfaces: []Surface{Sphere{}}, Priority: 1, Isotope: "X"}},
		},
		{
			"material region without isotope",
			[]*Region{{Name: "m", Surfaces: []Surface{Sphere{R: 1}}, Priority: 1}},
		},
		{
			"region without surfaces",
			[]*Region{{Name: "empty", Priority: 1, Isotope: "X"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.regions...)
			if !errors.Is(err, ErrConfig) {
				t.Errorf("New() error = %v, want ErrConfig", err)
			}
		})
	}
}

func TestNewAcceptsVoidWithoutIsotope(t *testing.T) {
	_, err := New(&Region{
		Name:     "world",
		Surfaces: []Surface{Sphere{R: 100}},
		Priority: 0,
		Void:     true,
	})
	if err != nil {
		t.Fatalf("New() = %v, want nil", err)
	}
}

func TestLocatePriority(t *testing.T) {
	outer := &Region{
		Name:     "outer",
		Surfaces: []Surface{Box{Min: r3.Vec{X: -10, Y: -10, Z: -10}, Max: r3.Vec{X: 10, Y: 10, Z: 10}}},
		Priority: 1,
		Isotope:  "A",
	}
	inner := sphereRegion("inner", 2, 5)
	inner.Isotope = "B"

	geo, err := New(outer, inner)
	if err != nil {
		t.Fatalf("New() = %v", err)
	}

	tests := []struct {
		name string
		p    r3.Vec
		want string // "" = outside all
	}{
		{"overlap favors higher priority", r3.Vec{}, "inner"},
		{"outside sphere, inside box", r3.Vec{X: 5}, "outer"},
		{"outside all", r3.Vec{X: 50}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := geo.Locate(tt.p)
			name := ""
			if got != nil {
				name = got.Name
			}
			if name != tt.want {
				t.Errorf("Locate(%v) = %q, want %q", tt.p, name, tt.want)
			}
		})
	}
}

func TestNearestBoundaryInsideSphere(t *testing.T) {
	geo, err := New(sphereRegion("ball", 5, 1))
	if err != nil {
		t.Fatalf("New() = %v", err)
	}

	dirs := []r3.Vec{
		{X: 1},
		{Z: -1},
		r3.Unit(r3.Vec{X: 1, Y: 2, Z: 3}),
		r3.Unit(r3.Vec{X: -1, Y: -1, Z: 0.5}),
	}
	for _, d := range dirs {
		dist, next, ok := geo.NearestBoundary(r3.Vec{}, d)
		if !ok {
			t.Fatalf("dir %v: no boundary found", d)
		}
		if math.Abs(dist-5) > 1e-9 {
			t.Errorf("dir %v: dist = %g, want 5", d, dist)
		}
		if next != nil {
			t.Errorf("dir %v: entered %q, want outside", d, next.Name)
		}
		// the crossing point must sit on the sphere
		hit := r3.Add(r3.Vec{}, r3.Scale(dist, d))
		if sd := (Sphere{R: 5}).SignedDistance(hit); math.Abs(sd) > 1e-9 {
			t.Errorf("dir %v: hit point off boundary by %g", d, sd)
		}
	}
}

// A particle approaching a box region from outside must hit the near
// face and resolve into the region behind it.
func TestNearestBoundaryEntersRegion(t *testing.T) {
	box := &Region{
		Name:     "block",
		Surfaces: []Surface{Box{Min: r3.Vec{}, Max: r3.Vec{X: 10, Y: 10, Z: 10}}},
		Priority: 1,
		Isotope:  "X",
	}
	geo, err := New(box)
	if err != nil {
		t.Fatalf("New() = %v", err)
	}

	dist, next, ok := geo.NearestBoundary(r3.Vec{X: -5, Y: 5, Z: 5}, r3.Vec{X: 1})
	if !ok {
		t.Fatal("no boundary found")
	}
	if math.Abs(dist-5) > 1e-9 {
		t.Errorf("dist = %g, want 5", dist)
	}
	if next == nil || next.Name != "block" {
		t.Errorf("entered %v, want block", next)
	}
}

func TestNearestBoundaryResolvesNextRegion(t *testing.T) {
	// leaving the inner sphere must resolve into the concentric shell
	// around it, not to "outside all"
	lo := sphereRegion("lo", 5, 1)
	hi := &Region{
		Name: "hi",
		Surfaces: []Surface{
			Sphere{R: 8},
		},
		Priority: 2,
		Isotope:  "X",
	}
	geo, err := New(lo, hi)
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	_, next, ok := geo.NearestBoundary(r3.Vec{}, r3.Vec{X: 1})
	if !ok || next == nil || next.Name != "hi" {
		t.Errorf("entered %v, want hi", next)
	}
}

func TestNearestBoundaryNothingAhead(t *testing.T) {
	geo, err := New(sphereRegion("ball", 5, 1))
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	// outside the sphere, pointing away
	_, _, ok := geo.NearestBoundary(r3.Vec{X: 10}, r3.Vec{X: 1})
	if ok {
		t.Error("found a boundary behind the particle")
	}
}

func TestNearestBoundaryDegenerateDirection(t *testing.T) {
	geo, err := New(sphereRegion("ball", 5, 1))
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	_, _, ok := geo.NearestBoundary(r3.Vec{}, r3.Vec{})
	if ok {
		t.Error("zero direction must not intersect anything")
	}
}
