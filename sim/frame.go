package sim

import (
	"github.com/pthm-cable/sph/fluid"
	"github.com/pthm-cable/sph/telemetry"
)

// Frame is a copy of the particle state taken between ticks. Index k is
// particle k of the store. Renderers read frames and never touch the solver.
type Frame struct {
	Tick    uint64
	SimTime float64
	Bounds  fluid.Bounds
	Paused  bool
	Halted  bool

	Positions  []fluid.Vec3
	Velocities []fluid.Vec3
	Densities  []float32
	Pressures  []float32
	Foam       []float32

	Stats          telemetry.WindowStats
	StepsPerUpdate int
}

// Len returns the particle count.
func (f *Frame) Len() int {
	return len(f.Positions)
}

// FrameInto fills dst, reusing its slices, and returns it. A nil dst
// allocates a new frame.
func (s *Sim) FrameInto(dst *Frame) *Frame {
	if dst == nil {
		dst = &Frame{}
	}
	store := s.solver.Store()
	n := store.Len()

	dst.Tick = s.tick
	dst.SimTime = s.SimTime()
	dst.Bounds = s.solver.Params().Bounds
	dst.Paused = s.paused
	dst.Halted = s.halted != nil
	dst.Stats = s.lastStats
	dst.StepsPerUpdate = s.stepsPerUpdate

	dst.Positions = resize(dst.Positions, n)
	dst.Velocities = resize(dst.Velocities, n)
	dst.Densities = resize(dst.Densities, n)
	dst.Pressures = resize(dst.Pressures, n)
	for i := 0; i < n; i++ {
		p := store.At(i)
		dst.Positions[i] = p.Position
		dst.Velocities[i] = p.Velocity
		dst.Densities[i] = p.Density
		dst.Pressures[i] = p.Pressure
	}
	dst.Foam = fluid.FoamFactors(store, s.foamP, dst.Foam)
	return dst
}

// Frame returns a freshly allocated frame.
func (s *Sim) Frame() *Frame {
	return s.FrameInto(nil)
}

func resize[T any](s []T, n int) []T {
	if cap(s) < n {
		return make([]T, n)
	}
	return s[:n]
}
