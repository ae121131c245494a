package main

import (
	"math"

	"github.com/pthm-cable/sph/fluid"
)

// PreviewParams holds the slider values.
type PreviewParams struct {
	SmoothingRadius float32
	Mass            float32
	Spacing         float32
	RestDensity     float32
}

func defaultPreview() PreviewParams {
	p := fluid.DefaultParams()
	return PreviewParams{
		SmoothingRadius: p.SmoothingRadius,
		Mass:            p.Mass,
		Spacing:         0.05,
		RestDensity:     p.RestDensity,
	}
}

// Profile samples the three kernels on [0, h], each normalized to its
// peak so they share one plot.
type Profile struct {
	Poly6, Spiky, Viscosity []float32
}

func sampleProfile(h float32, n int) Profile {
	k := fluid.NewKernels(h)
	p := Profile{
		Poly6:     make([]float32, n),
		Spiky:     make([]float32, n),
		Viscosity: make([]float32, n),
	}
	for i := 0; i < n; i++ {
		r := h * float32(i) / float32(n-1)
		p.Poly6[i] = k.Poly6(r * r)
		p.Spiky[i] = k.SpikyGradient(fluid.Vec3{r, 0, 0}).Len()
		p.Viscosity[i] = k.ViscosityLaplacian(r)
	}
	normalize(p.Poly6)
	normalize(p.Spiky)
	normalize(p.Viscosity)
	return p
}

func normalize(v []float32) {
	var peak float32
	for _, x := range v {
		if x > peak {
			peak = x
		}
	}
	if peak == 0 {
		return
	}
	for i := range v {
		v[i] /= peak
	}
}

// latticeDensity is the density of a particle inside an unbounded cubic
// lattice, self term included, as the density pass would compute it.
func latticeDensity(p PreviewParams) float32 {
	if p.Spacing <= 0 {
		return 0
	}
	k := fluid.NewKernels(p.SmoothingRadius)
	reach := int(math.Ceil(float64(p.SmoothingRadius / p.Spacing)))

	var density float32
	for x := -reach; x <= reach; x++ {
		for y := -reach; y <= reach; y++ {
			for z := -reach; z <= reach; z++ {
				r := fluid.Vec3{float32(x), float32(y), float32(z)}.Mul(p.Spacing)
				density += p.Mass * k.Poly6(r.Dot(r))
			}
		}
	}
	return density
}

// restMass is the particle mass that puts the lattice exactly at rest density.
func restMass(p PreviewParams) float32 {
	d := latticeDensity(p)
	if d == 0 {
		return 0
	}
	return p.Mass * p.RestDensity / d
}
