package fluid

import (
	"errors"
	"fmt"
)

// ErrNumericDegeneracy marks a tick that produced a non-positive density or a
// non-finite field. It points at a tuning problem (time step too large for
// the gas constant, bad mass or radius), not a transient fault.
var ErrNumericDegeneracy = errors.New("numeric degeneracy")

// DegeneracyError identifies the first offending particle found by Check.
type DegeneracyError struct {
	Index int
	Field string
	Value float32
}

func (e *DegeneracyError) Error() string {
	return fmt.Sprintf("%v: particle %d has %s = %v", ErrNumericDegeneracy, e.Index, e.Field, e.Value)
}

func (e *DegeneracyError) Unwrap() error {
	return ErrNumericDegeneracy
}

// Diagnostics counts Check calls and failures over the solver's lifetime.
type Diagnostics struct {
	Checks     uint64
	Degenerate uint64
}

// Diagnostics returns the check counters.
func (s *Solver) Diagnostics() Diagnostics {
	return s.diag
}

// Check scans the store for degenerate values. Density must be strictly
// positive once a density pass has run; every vector component must be finite.
func (s *Solver) Check() error {
	s.diag.Checks++
	for i := range s.store.particles {
		if err := checkParticle(i, &s.store.particles[i]); err != nil {
			s.diag.Degenerate++
			return err
		}
	}
	return nil
}

func checkParticle(i int, p *Particle) error {
	if !finite(p.Density) || p.Density <= 0 {
		return &DegeneracyError{Index: i, Field: "density", Value: p.Density}
	}
	if !finite(p.Pressure) {
		return &DegeneracyError{Index: i, Field: "pressure", Value: p.Pressure}
	}
	vectors := []struct {
		name string
		v    Vec3
	}{
		{"position", p.Position},
		{"velocity", p.Velocity},
		{"force", p.Force},
	}
	for _, f := range vectors {
		for a := 0; a < 3; a++ {
			if !finite(f.v[a]) {
				return &DegeneracyError{Index: i, Field: f.name, Value: f.v[a]}
			}
		}
	}
	return nil
}

// checkKinematics rejects particles a tick cannot start from.
func checkKinematics(i int, p *Particle) error {
	for _, f := range []struct {
		name string
		v    Vec3
	}{{"position", p.Position}, {"velocity", p.Velocity}} {
		for a := 0; a < 3; a++ {
			if !finite(f.v[a]) {
				return fmt.Errorf("%w: particle %d has non-finite %s (%v)",
					ErrInvalidConfiguration, i, f.name, f.v)
			}
		}
	}
	return nil
}
