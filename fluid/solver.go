package fluid

import "fmt"

// Solver advances a particle store with a fixed parameter set.
// It is not safe for concurrent use; readers must copy state between ticks.
type Solver struct {
	params Params
	kern   Kernels
	store  Store
	steps  uint64
	diag   Diagnostics
	pool   *workerPool // nil = serial
}

// NewSolver validates params and grid and builds the initial particle lattice.
func NewSolver(params Params, grid GridSpec) (*Solver, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	particles, err := NewGrid(grid)
	if err != nil {
		return nil, err
	}
	return newSolver(params, particles), nil
}

// NewSolverFromParticles builds a solver over an existing particle set,
// e.g. one restored from a snapshot. The slice is copied. Positions and
// velocities must be finite; derived fields are recomputed by the next tick
// and are not checked.
func NewSolverFromParticles(params Params, particles []Particle) (*Solver, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if len(particles) == 0 {
		return nil, fmt.Errorf("%w: particle set is empty", ErrInvalidConfiguration)
	}
	for i := range particles {
		if err := checkKinematics(i, &particles[i]); err != nil {
			return nil, err
		}
	}
	return newSolver(params, particles), nil
}

func newSolver(params Params, particles []Particle) *Solver {
	return &Solver{
		params: params,
		kern:   NewKernels(params.SmoothingRadius),
		store:  newStore(particles),
	}
}

// Params returns the solver's parameters.
func (s *Solver) Params() Params {
	return s.params
}

// Kernels returns the kernels used by the passes.
func (s *Solver) Kernels() Kernels {
	return s.kern
}

// Store exposes the particle store for read access between ticks.
func (s *Solver) Store() *Store {
	return &s.store
}

// Steps returns how many full ticks Step has completed.
func (s *Solver) Steps() uint64 {
	return s.steps
}

// Step runs one full tick with the configured time step.
func (s *Solver) Step() {
	s.DensityPressure()
	s.Forces()
	s.Integrate(s.params.TimeStep)
	s.steps++
}

// DensityPressure recomputes density and pressure of every particle from the
// current positions. Every particle, including i itself, contributes.
func (s *Solver) DensityPressure() {
	s.pool.forEach(len(s.store.particles), s.densityPressureRange)
}

func (s *Solver) densityPressureRange(start, end int) {
	ps := s.store.particles
	mass := s.params.Mass
	k := s.params.GasConstant
	rest := s.params.RestDensity

	for i := start; i < end; i++ {
		pi := ps[i].Position
		var density float32
		for j := range ps {
			rij := ps[j].Position.Sub(pi)
			density += mass * s.kern.Poly6(rij.Dot(rij))
		}
		ps[i].Density = density
		ps[i].Pressure = k * (density - rest)
	}
}

// Forces overwrites the force of every particle with the sum of the pressure,
// viscosity and gravity terms. DensityPressure must have run this tick.
func (s *Solver) Forces() {
	s.pool.forEach(len(s.store.particles), s.forcesRange)
}

func (s *Solver) forcesRange(start, end int) {
	ps := s.store.particles
	mass := s.params.Mass
	mu := s.params.Viscosity
	gravity := Vec3{0, s.params.Gravity, 0}

	for i := start; i < end; i++ {
		pi := &ps[i]
		var pressureForce, viscosityForce Vec3

		for j := range ps {
			if i == j {
				continue
			}
			pj := &ps[j]
			assertPositiveDensity(j, pj.Density)

			rij := pi.Position.Sub(pj.Position)
			r := rij.Len()

			grad := s.kern.SpikyGradient(rij)
			pressureForce = pressureForce.Add(grad.Mul(-mass * (pi.Pressure + pj.Pressure) / (2 * pj.Density)))

			lap := s.kern.ViscosityLaplacian(r)
			viscosityForce = viscosityForce.Add(pj.Velocity.Sub(pi.Velocity).Mul(mu * mass / pj.Density * lap))
		}

		pi.Force = pressureForce.Add(viscosityForce).Add(gravity.Mul(pi.Density))
	}
}

// Integrate advances velocity then position by dt (semi-implicit Euler) and
// resolves wall contact per axis: a coordinate outside the box is clamped to
// the violated face and that velocity component is scaled by Damping.
func (s *Solver) Integrate(dt float32) {
	ps := s.store.particles
	lo, hi := s.params.Bounds.Min, s.params.Bounds.Max
	damping := s.params.Damping

	for i := range ps {
		p := &ps[i]
		accel := p.Force.Mul(1 / p.Density)
		p.Velocity = p.Velocity.Add(accel.Mul(dt))
		p.Position = p.Position.Add(p.Velocity.Mul(dt))

		// Corner hits damp each axis independently rather than reflecting
		// about a combined normal.
		for a := 0; a < 3; a++ {
			if p.Position[a] < lo[a] {
				p.Position[a] = lo[a]
				p.Velocity[a] *= damping
			} else if p.Position[a] > hi[a] {
				p.Position[a] = hi[a]
				p.Velocity[a] *= damping
			}
		}
	}
}
