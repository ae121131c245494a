package fluid

import "fmt"

// FoamParams maps particle speed to a [0, 1] foam intensity for renderers.
type FoamParams struct {
	Threshold float32 // speed where foam starts, m/s
	MaxSpeed  float32 // speed where foam saturates, m/s
}

// DefaultFoam returns the standard foam ramp (1 m/s to 5 m/s).
func DefaultFoam() FoamParams {
	return FoamParams{Threshold: 1.0, MaxSpeed: 5.0}
}

// Validate requires a non-empty ramp.
func (f FoamParams) Validate() error {
	if !finite(f.Threshold) || !finite(f.MaxSpeed) || f.MaxSpeed <= f.Threshold {
		return fmt.Errorf("%w: foam max_speed (%v) must exceed threshold (%v)",
			ErrInvalidConfiguration, f.MaxSpeed, f.Threshold)
	}
	return nil
}

// Factor returns the foam intensity for a speed.
func (f FoamParams) Factor(speed float32) float32 {
	v := (speed - f.Threshold) / (f.MaxSpeed - f.Threshold)
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// FoamFactors writes one foam value per particle into dst, in store order.
func FoamFactors(s *Store, f FoamParams, dst []float32) []float32 {
	n := s.Len()
	if cap(dst) < n {
		dst = make([]float32, n)
	}
	dst = dst[:n]
	for i := range s.particles {
		dst[i] = f.Factor(s.particles[i].Velocity.Len())
	}
	return dst
}
