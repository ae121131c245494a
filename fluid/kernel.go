package fluid

import "math"

// Kernels evaluates the three smoothing kernels for a fixed support radius h.
// Normalization constants are computed once in float64.
type Kernels struct {
	h  float32
	h2 float32

	poly6Coeff float32 // 315 / (64 pi h^9)
	spikyCoeff float32 // -45 / (pi h^6)
	viscCoeff  float32 // 45 / (pi h^6)
}

// NewKernels precomputes kernel constants for support radius h.
func NewKernels(h float32) Kernels {
	hd := float64(h)
	h6 := math.Pow(hd, 6)
	h9 := math.Pow(hd, 9)
	return Kernels{
		h:          h,
		h2:         h * h,
		poly6Coeff: float32(315.0 / (64.0 * math.Pi * h9)),
		spikyCoeff: float32(-45.0 / (math.Pi * h6)),
		viscCoeff:  float32(45.0 / (math.Pi * h6)),
	}
}

// H returns the support radius.
func (k Kernels) H() float32 {
	return k.h
}

// Poly6 is the density kernel, evaluated on squared distance.
func (k Kernels) Poly6(r2 float32) float32 {
	if r2 >= k.h2 {
		return 0
	}
	d := k.h2 - r2
	return k.poly6Coeff * d * d * d
}

// SpikyGradient is the gradient of the spiky kernel for the separation
// vector rij. It is the zero vector at r = 0 and for r >= h.
func (k Kernels) SpikyGradient(rij Vec3) Vec3 {
	r := rij.Len()
	if r == 0 || r >= k.h {
		return Vec3{}
	}
	d := k.h - r
	return rij.Mul(k.spikyCoeff * d * d / r)
}

// ViscosityLaplacian is the laplacian of the viscosity kernel at distance r.
func (k Kernels) ViscosityLaplacian(r float32) float32 {
	if r >= k.h {
		return 0
	}
	return k.viscCoeff * (k.h - r)
}
