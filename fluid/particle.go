// Package fluid implements a small smoothed particle hydrodynamics solver.
//
// A tick is three passes over the particle store, always in this order:
// DensityPressure, Forces, Integrate. Each pass finishes for every particle
// before the next one starts.
package fluid

import "github.com/go-gl/mathgl/mgl32"

// Vec3 is a world-space vector in meters (or m/s, or N).
type Vec3 = mgl32.Vec3

// Particle is a single fluid sample.
type Particle struct {
	Position Vec3
	Velocity Vec3
	Force    Vec3 // net force of the last force pass; not accumulated across ticks
	Density  float32
	Pressure float32
}

// Store is an ordered, fixed-size particle sequence.
// Index k refers to the same particle for the lifetime of the store.
type Store struct {
	particles []Particle
}

// newStore copies ps into a fresh store.
func newStore(ps []Particle) Store {
	owned := make([]Particle, len(ps))
	copy(owned, ps)
	return Store{particles: owned}
}

// Len returns the particle count.
func (s *Store) Len() int {
	return len(s.particles)
}

// At returns a copy of particle i.
func (s *Store) At(i int) Particle {
	return s.particles[i]
}

// CopyTo copies every particle into dst, growing it if needed, and returns
// the filled slice.
func (s *Store) CopyTo(dst []Particle) []Particle {
	if cap(dst) < len(s.particles) {
		dst = make([]Particle, len(s.particles))
	}
	dst = dst[:len(s.particles)]
	copy(dst, s.particles)
	return dst
}

// Positions writes particle positions into dst in index order.
func (s *Store) Positions(dst []Vec3) []Vec3 {
	if cap(dst) < len(s.particles) {
		dst = make([]Vec3, len(s.particles))
	}
	dst = dst[:len(s.particles)]
	for i := range s.particles {
		dst[i] = s.particles[i].Position
	}
	return dst
}
