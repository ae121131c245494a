package fluid

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresetsValidate(t *testing.T) {
	assert.Equal(t, []string{"default", "zero_gravity"}, PresetNames())

	for _, name := range PresetNames() {
		p, err := Preset(name)
		require.NoError(t, err, name)
		assert.NoError(t, p.Validate(), name)
	}
}

func TestZeroGravityPreset(t *testing.T) {
	p, err := Preset("zero_gravity")
	require.NoError(t, err)
	assert.Zero(t, p.Gravity)
	assert.Negative(t, p.Viscosity)
	assert.Equal(t, float32(-0.9), p.Damping)
}

func TestUnknownPreset(t *testing.T) {
	_, err := Preset("honey")
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
	assert.Contains(t, err.Error(), "honey")

	_, err = GridPreset("huge")
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestGridPresetsFitUnitBox(t *testing.T) {
	assert.Equal(t, []string{"demo", "large", "tiny"}, GridNames())

	counts := map[string]int{"tiny": 8, "demo": 125, "large": 1000}
	for _, name := range GridNames() {
		g, err := GridPreset(name)
		require.NoError(t, err, name)
		assert.Equal(t, counts[name], g.Count(), name)

		ps, err := NewGrid(g)
		require.NoError(t, err, name)
		for i, p := range ps {
			assert.True(t, UnitBox.Contains(p.Position), "%s particle %d at %v", name, i, p.Position)
		}
	}
}

func TestParamsValidateRejectsNonFinite(t *testing.T) {
	p := DefaultParams()
	p.GasConstant = float32(math.NaN())
	assert.ErrorIs(t, p.Validate(), ErrInvalidConfiguration)

	p = DefaultParams()
	p.Bounds.Max[0] = p.Bounds.Min[0]
	assert.ErrorIs(t, p.Validate(), ErrInvalidConfiguration)
}

func TestBoundsContainsFaces(t *testing.T) {
	assert.True(t, UnitBox.Contains(Vec3{0, 0, 0}))
	assert.True(t, UnitBox.Contains(Vec3{1, 1, 1}))
	assert.False(t, UnitBox.Contains(Vec3{1.0001, 0.5, 0.5}))
	assert.False(t, UnitBox.Contains(Vec3{0.5, -0.0001, 0.5}))
}
