package fluid

import (
	"fmt"
	"math/rand"
)

// MaxJitter is the largest per-axis perturbation, as a fraction of spacing.
const MaxJitter = 0.1

// GridSpec describes the initial particle lattice.
type GridSpec struct {
	NumX, NumY, NumZ int
	Spacing          float32
	Origin           Vec3    // position of particle (0, 0, 0)
	Jitter           float32 // uniform noise amplitude as a fraction of Spacing, in [0, MaxJitter]
	Seed             int64   // RNG seed for jitter
}

// Count returns the number of particles the grid produces.
func (g GridSpec) Count() int {
	return g.NumX * g.NumY * g.NumZ
}

// Validate rejects grids that would produce no particles or overlapping ones.
func (g GridSpec) Validate() error {
	if g.NumX <= 0 || g.NumY <= 0 || g.NumZ <= 0 {
		return fmt.Errorf("%w: grid dimensions must be positive, got %dx%dx%d",
			ErrInvalidConfiguration, g.NumX, g.NumY, g.NumZ)
	}
	if !finite(g.Spacing) || g.Spacing <= 0 {
		return fmt.Errorf("%w: spacing must be positive, got %v", ErrInvalidConfiguration, g.Spacing)
	}
	if !finite(g.Jitter) || g.Jitter < 0 || g.Jitter > MaxJitter {
		return fmt.Errorf("%w: jitter must be in [0, %v], got %v", ErrInvalidConfiguration, MaxJitter, g.Jitter)
	}
	return nil
}

// NewGrid lays out NumX*NumY*NumZ particles, x-major then y then z.
// Velocity, force, density and pressure start at zero.
func NewGrid(g GridSpec) ([]Particle, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	var rng *rand.Rand
	amp := g.Jitter * g.Spacing
	if amp > 0 {
		rng = rand.New(rand.NewSource(g.Seed))
	}

	particles := make([]Particle, 0, g.Count())
	for x := 0; x < g.NumX; x++ {
		for y := 0; y < g.NumY; y++ {
			for z := 0; z < g.NumZ; z++ {
				pos := g.Origin.Add(Vec3{
					float32(x) * g.Spacing,
					float32(y) * g.Spacing,
					float32(z) * g.Spacing,
				})
				if rng != nil {
					for a := 0; a < 3; a++ {
						pos[a] += (rng.Float32()*2 - 1) * amp
					}
				}
				particles = append(particles, Particle{Position: pos})
			}
		}
	}
	return particles, nil
}
