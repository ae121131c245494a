package main

import (
	"testing"

	"github.com/pthm-cable/sph/fluid"
)

func TestSampleProfileNormalized(t *testing.T) {
	p := sampleProfile(0.045, 64)

	if p.Poly6[0] != 1 || p.Viscosity[0] != 1 {
		t.Errorf("poly6 and viscosity should peak at r=0, got %v and %v", p.Poly6[0], p.Viscosity[0])
	}
	if p.Spiky[0] != 0 {
		t.Errorf("spiky gradient is zero at r=0, got %v", p.Spiky[0])
	}
	for name, v := range map[string][]float32{"poly6": p.Poly6, "spiky": p.Spiky, "viscosity": p.Viscosity} {
		if last := v[len(v)-1]; last != 0 {
			t.Errorf("%s should vanish at r=h, got %v", name, last)
		}
	}
}

func TestLatticeDensitySelfOnly(t *testing.T) {
	// Spacing beyond h leaves only the self term.
	p := PreviewParams{SmoothingRadius: 0.045, Mass: 0.02, Spacing: 0.05, RestDensity: 1000}
	want := p.Mass * fluid.NewKernels(p.SmoothingRadius).Poly6(0)
	if got := latticeDensity(p); got != want {
		t.Errorf("expected self density %v, got %v", want, got)
	}
}

func TestLatticeDensityMatchesSolver(t *testing.T) {
	p := PreviewParams{SmoothingRadius: 0.045, Mass: 0.02, Spacing: 0.02, RestDensity: 1000}

	params := fluid.DefaultParams()
	grid := fluid.GridSpec{NumX: 7, NumY: 7, NumZ: 7, Spacing: p.Spacing, Origin: fluid.Vec3{0.44, 0.44, 0.44}}
	s, err := fluid.NewSolver(params, grid)
	if err != nil {
		t.Fatal(err)
	}
	s.DensityPressure()

	// Center of a 7^3 block has a full neighborhood at this spacing.
	center := s.Store().At((3*7+3)*7 + 3).Density
	got := latticeDensity(p)
	if diff := got - center; diff > 1e-2*center || diff < -1e-2*center {
		t.Errorf("lattice density %v differs from solver center density %v", got, center)
	}
}

func TestRestMass(t *testing.T) {
	p := PreviewParams{SmoothingRadius: 0.045, Mass: 0.02, Spacing: 0.02, RestDensity: 1000}
	p.Mass = restMass(p)

	if d := latticeDensity(p); d < 999 || d > 1001 {
		t.Errorf("fitted mass should give rest density, got %v", d)
	}
	if restMass(PreviewParams{}) != 0 {
		t.Error("zero spacing should give zero mass")
	}
}
