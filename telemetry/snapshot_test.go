package telemetry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/sph/fluid"
)

func TestSnapshotSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()

	params := fluid.ZeroGravityParams()
	particles := []fluid.Particle{
		{Position: fluid.Vec3{0.1, 0.2, 0.3}, Velocity: fluid.Vec3{-1, 0.5, 0}, Density: 343.8, Pressure: -1.3e6},
		{Position: fluid.Vec3{0.9, 0.8, 0.7}, Force: fluid.Vec3{0, -3.4, 0}},
	}

	path, err := SaveSnapshot(NewSnapshot(1000, params, particles), tmpDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmpDir, "snapshot_1000.json"), path)

	loaded, err := LoadSnapshot(path)
	require.NoError(t, err)

	assert.Equal(t, SnapshotVersion, loaded.Version)
	assert.Equal(t, uint64(1000), loaded.Tick)
	assert.Equal(t, params, loaded.FluidParams())
	assert.Equal(t, particles, loaded.FluidParticles())
}

func TestSnapshotResumesSolver(t *testing.T) {
	s, err := fluid.NewSolver(fluid.DefaultParams(), fluid.GridSpec{NumX: 2, NumY: 2, NumZ: 2, Spacing: 0.05, Origin: fluid.Vec3{0.45, 0.45, 0.45}})
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		s.Step()
	}

	snap := NewSnapshot(s.Steps(), s.Params(), s.Store().CopyTo(nil))
	resumed, err := fluid.NewSolverFromParticles(snap.FluidParams(), snap.FluidParticles())
	require.NoError(t, err)

	s.Step()
	resumed.Step()
	for i := 0; i < s.Store().Len(); i++ {
		assert.Equal(t, s.Store().At(i), resumed.Store().At(i), "particle %d", i)
	}
}

func TestSnapshotJSONFields(t *testing.T) {
	snap := NewSnapshot(5, fluid.DefaultParams(), []fluid.Particle{{Position: fluid.Vec3{1, 2, 3}}})
	data, err := json.Marshal(snap)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "version")
	assert.Contains(t, raw, "tick")
	assert.Contains(t, raw, "params")
	assert.Contains(t, raw, "particles")
}

func TestLoadSnapshotErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadSnapshot(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0644))
	_, err = LoadSnapshot(bad)
	assert.Error(t, err)

	future := filepath.Join(dir, "future.json")
	require.NoError(t, os.WriteFile(future, []byte(`{"version": 99}`), 0644))
	_, err = LoadSnapshot(future)
	assert.ErrorContains(t, err, "version")
}

func TestLoadSnapshotRejectsInvalidState(t *testing.T) {
	dir := t.TempDir()
	inside := fluid.Particle{Position: fluid.Vec3{0.5, 0.5, 0.5}}

	tests := []struct {
		name      string
		params    fluid.Params
		particles []fluid.Particle
	}{
		{"outside bounds", fluid.DefaultParams(), []fluid.Particle{inside, {Position: fluid.Vec3{0.5, 1.2, 0.5}}}},
		{"no particles", fluid.DefaultParams(), nil},
		{"zero mass", func() fluid.Params { p := fluid.DefaultParams(); p.Mass = 0; return p }(), []fluid.Particle{inside}},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := SaveSnapshot(NewSnapshot(uint64(i), tt.params, tt.particles), dir)
			require.NoError(t, err)

			_, err = LoadSnapshot(path)
			assert.ErrorIs(t, err, fluid.ErrInvalidConfiguration)
		})
	}
}
