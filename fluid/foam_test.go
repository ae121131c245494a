package fluid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFoamFactor(t *testing.T) {
	f := DefaultFoam()

	tests := []struct {
		speed float32
		want  float32
	}{
		{0, 0},
		{0.5, 0},
		{1, 0},
		{3, 0.5},
		{5, 1},
		{12, 1},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, f.Factor(tt.speed), 1e-6, "speed %v", tt.speed)
	}
}

func TestFoamValidate(t *testing.T) {
	assert.NoError(t, DefaultFoam().Validate())
	assert.ErrorIs(t, FoamParams{Threshold: 2, MaxSpeed: 2}.Validate(), ErrInvalidConfiguration)
	assert.ErrorIs(t, FoamParams{Threshold: 3, MaxSpeed: 1}.Validate(), ErrInvalidConfiguration)
}

func TestFoamFactorsFollowStoreOrder(t *testing.T) {
	s := newTestSolver(t, DefaultParams(),
		Particle{Position: Vec3{0.1, 0.1, 0.1}},
		Particle{Position: Vec3{0.5, 0.5, 0.5}, Velocity: Vec3{0, 3, 0}},
		Particle{Position: Vec3{0.9, 0.9, 0.9}, Velocity: Vec3{0, 0, -9}},
	)

	got := FoamFactors(s.Store(), DefaultFoam(), nil)
	require.Len(t, got, 3)
	assert.InDelta(t, 0, got[0], 1e-6)
	assert.InDelta(t, 0.5, got[1], 1e-6)
	assert.InDelta(t, 1, got[2], 1e-6)

	// A large enough buffer is reused.
	buf := make([]float32, 0, 8)
	got = FoamFactors(s.Store(), DefaultFoam(), buf)
	assert.Len(t, got, 3)
	assert.Equal(t, 8, cap(got))
}
