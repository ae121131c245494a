package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pthm-cable/sph/fluid"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds the complete solver state for resuming a run.
type Snapshot struct {
	Version int    `json:"version"`
	Tick    uint64 `json:"tick"`

	Params    ParamsState     `json:"params"`
	Particles []ParticleState `json:"particles"`
}

// ParamsState is the JSON form of fluid.Params.
type ParamsState struct {
	RestDensity     float32    `json:"rest_density"`
	GasConstant     float32    `json:"gas_constant"`
	Viscosity       float32    `json:"viscosity"`
	Mass            float32    `json:"mass"`
	SmoothingRadius float32    `json:"smoothing_radius"`
	Gravity         float32    `json:"gravity"`
	Damping         float32    `json:"damping"`
	TimeStep        float32    `json:"time_step"`
	BoundsMin       [3]float32 `json:"bounds_min"`
	BoundsMax       [3]float32 `json:"bounds_max"`
}

// ParticleState holds one particle. Density, pressure and force are
// recomputed by the next tick; they are kept for inspection.
type ParticleState struct {
	Position [3]float32 `json:"position"`
	Velocity [3]float32 `json:"velocity"`
	Force    [3]float32 `json:"force"`
	Density  float32    `json:"density"`
	Pressure float32    `json:"pressure"`
}

// NewSnapshot captures params and particles at tick.
func NewSnapshot(tick uint64, params fluid.Params, particles []fluid.Particle) *Snapshot {
	s := &Snapshot{
		Version: SnapshotVersion,
		Tick:    tick,
		Params: ParamsState{
			RestDensity:     params.RestDensity,
			GasConstant:     params.GasConstant,
			Viscosity:       params.Viscosity,
			Mass:            params.Mass,
			SmoothingRadius: params.SmoothingRadius,
			Gravity:         params.Gravity,
			Damping:         params.Damping,
			TimeStep:        params.TimeStep,
			BoundsMin:       params.Bounds.Min,
			BoundsMax:       params.Bounds.Max,
		},
		Particles: make([]ParticleState, len(particles)),
	}
	for i, p := range particles {
		s.Particles[i] = ParticleState{
			Position: p.Position,
			Velocity: p.Velocity,
			Force:    p.Force,
			Density:  p.Density,
			Pressure: p.Pressure,
		}
	}
	return s
}

// FluidParams returns the stored parameters.
func (s *Snapshot) FluidParams() fluid.Params {
	p := s.Params
	return fluid.Params{
		RestDensity:     p.RestDensity,
		GasConstant:     p.GasConstant,
		Viscosity:       p.Viscosity,
		Mass:            p.Mass,
		SmoothingRadius: p.SmoothingRadius,
		Gravity:         p.Gravity,
		Damping:         p.Damping,
		TimeStep:        p.TimeStep,
		Bounds:          fluid.Bounds{Min: p.BoundsMin, Max: p.BoundsMax},
	}
}

// FluidParticles returns the stored particles in their original order.
func (s *Snapshot) FluidParticles() []fluid.Particle {
	out := make([]fluid.Particle, len(s.Particles))
	for i, p := range s.Particles {
		out[i] = fluid.Particle{
			Position: p.Position,
			Velocity: p.Velocity,
			Force:    p.Force,
			Density:  p.Density,
			Pressure: p.Pressure,
		}
	}
	return out
}

// Validate checks that the snapshot could have been written by a running
// solver: valid params, at least one particle, every position inside the box.
func (s *Snapshot) Validate() error {
	params := s.FluidParams()
	if err := params.Validate(); err != nil {
		return err
	}
	if len(s.Particles) == 0 {
		return fmt.Errorf("%w: snapshot has no particles", fluid.ErrInvalidConfiguration)
	}
	for i, p := range s.Particles {
		if !params.Bounds.Contains(p.Position) {
			return fmt.Errorf("%w: particle %d at %v is outside the bounds",
				fluid.ErrInvalidConfiguration, i, p.Position)
		}
	}
	return nil
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("snapshot_%d.json", snapshot.Tick))

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", snapshot.Version, SnapshotVersion)
	}
	if err := snapshot.Validate(); err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", path, err)
	}

	return &snapshot, nil
}
