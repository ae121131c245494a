package sim

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/sph/config"
	"github.com/pthm-cable/sph/fluid"
	"github.com/pthm-cable/sph/telemetry"
)

// tinyConfig is the default config on the 2x2x2 lattice.
func tinyConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)

	g, err := fluid.GridPreset("tiny")
	require.NoError(t, err)
	cfg.Grid = config.GridFromSpec(g)
	cfg.Telemetry.StatsWindow = 0.05 // 10 ticks at dt 0.005
	require.NoError(t, cfg.Recompute())
	return cfg
}

func newSim(t *testing.T, opts Options) *Sim {
	t.Helper()
	if opts.Config == nil {
		opts.Config = tinyConfig(t)
	}
	s, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewFromGrid(t *testing.T) {
	s := newSim(t, Options{})

	assert.Equal(t, 8, s.Len())
	assert.Equal(t, uint64(0), s.Tick())
	assert.Equal(t, fluid.DefaultParams(), s.Params())
	assert.Equal(t, 1, s.StepsPerUpdate())
}

func TestUpdateRunsStepsPerUpdate(t *testing.T) {
	s := newSim(t, Options{StepsPerUpdate: 4})

	require.NoError(t, s.Update())
	require.NoError(t, s.Update())
	assert.Equal(t, uint64(8), s.Tick())
	assert.InDelta(t, 8*0.005, s.SimTime(), 1e-6)
}

func TestPauseAndSingleStep(t *testing.T) {
	s := newSim(t, Options{})

	s.TogglePause()
	require.True(t, s.Paused())
	require.NoError(t, s.Update())
	assert.Equal(t, uint64(0), s.Tick())

	require.NoError(t, s.Step())
	assert.Equal(t, uint64(1), s.Tick())

	s.SetPaused(false)
	require.NoError(t, s.Update())
	assert.Equal(t, uint64(2), s.Tick())
}

func TestSetStepsPerUpdateClamps(t *testing.T) {
	s := newSim(t, Options{})

	s.SetStepsPerUpdate(0)
	assert.Equal(t, 1, s.StepsPerUpdate())
	s.SetStepsPerUpdate(1000)
	assert.Equal(t, MaxStepsPerUpdate, s.StepsPerUpdate())
}

func TestFrameIsDetached(t *testing.T) {
	s := newSim(t, Options{})
	require.NoError(t, s.Step())

	f := s.Frame()
	require.Equal(t, 8, f.Len())
	assert.Equal(t, uint64(1), f.Tick)
	assert.Len(t, f.Foam, 8)
	before := f.Positions[0]

	for i := 0; i < 20; i++ {
		require.NoError(t, s.Step())
	}
	assert.Equal(t, before, f.Positions[0], "frame must not alias the store")

	// Reuse keeps the backing arrays.
	pos := &f.Positions[0]
	f2 := s.FrameInto(f)
	assert.Same(t, f, f2)
	assert.Same(t, pos, &f2.Positions[0])
	assert.Equal(t, uint64(21), f2.Tick)
	assert.NotEqual(t, before, f2.Positions[0])
}

func TestFrameMatchesStoreOrder(t *testing.T) {
	particles := []fluid.Particle{
		{Position: fluid.Vec3{0.1, 0.5, 0.5}},
		{Position: fluid.Vec3{0.9, 0.5, 0.5}, Velocity: fluid.Vec3{0, 0, 4}},
	}
	s := newSim(t, Options{Particles: particles})

	f := s.Frame()
	assert.Equal(t, particles[0].Position, f.Positions[0])
	assert.Equal(t, particles[1].Position, f.Positions[1])
	assert.Zero(t, f.Foam[0])
	assert.InDelta(t, 0.75, f.Foam[1], 1e-6)
}

func TestStatsCallbackPerWindow(t *testing.T) {
	var windows []telemetry.WindowStats
	s := newSim(t, Options{StatsCallback: func(ws telemetry.WindowStats) {
		windows = append(windows, ws)
	}})

	for i := 0; i < 20; i++ {
		require.NoError(t, s.Step())
	}

	require.Len(t, windows, 2)
	assert.Equal(t, int64(10), windows[0].WindowEndTick)
	assert.Equal(t, int64(20), windows[1].WindowEndTick)
	assert.Equal(t, 8, windows[1].Particles)
	assert.Equal(t, 10, windows[1].Checks)
	assert.Zero(t, windows[1].Degenerate)
	assert.Positive(t, windows[1].DensityMean)
	assert.Equal(t, windows[1], s.LastStats())
}

// explosive returns two overlapping particles whose relative velocity
// overflows float32 in the viscosity term.
func explosive() []fluid.Particle {
	return []fluid.Particle{
		{Position: fluid.Vec3{0.49, 0.5, 0.5}, Velocity: fluid.Vec3{3e38, 0, 0}},
		{Position: fluid.Vec3{0.51, 0.5, 0.5}, Velocity: fluid.Vec3{-3e38, 0, 0}},
	}
}

func TestHaltOnDegeneracy(t *testing.T) {
	cfg := tinyConfig(t)
	cfg.Run.HaltOnDegeneracy = true
	s := newSim(t, Options{Config: cfg, Particles: explosive()})

	err := s.Step()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrHalted))
	assert.True(t, errors.Is(err, fluid.ErrNumericDegeneracy))

	var de *fluid.DegeneracyError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "velocity", de.Field)

	// Further updates do nothing.
	assert.ErrorIs(t, s.Update(), ErrHalted)
	assert.Equal(t, uint64(1), s.Tick())
	assert.True(t, s.Frame().Halted)

	// Reset clears the halt.
	require.NoError(t, s.Reset())
	assert.NoError(t, s.Halted())
	assert.Equal(t, uint64(0), s.Tick())
}

func TestLogOnDegeneracy(t *testing.T) {
	s := newSim(t, Options{Particles: explosive()})

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Step())
	}
	assert.NoError(t, s.Halted())
	assert.Equal(t, uint64(3), s.Diagnostics().Checks)
	assert.Positive(t, s.Diagnostics().Degenerate)
}

func TestCheckEveryZeroDisablesScan(t *testing.T) {
	cfg := tinyConfig(t)
	cfg.Run.CheckEvery = 0
	cfg.Run.HaltOnDegeneracy = true
	s := newSim(t, Options{Config: cfg, Particles: explosive()})

	require.NoError(t, s.Step())
	assert.Zero(t, s.Diagnostics().Checks)
}

func TestReset(t *testing.T) {
	s := newSim(t, Options{})
	start := s.Frame()

	for i := 0; i < 15; i++ {
		require.NoError(t, s.Step())
	}
	require.NoError(t, s.Reset())

	assert.Equal(t, uint64(0), s.Tick())
	assert.Equal(t, start.Positions, s.Frame().Positions)
	assert.Equal(t, telemetry.WindowStats{}, s.LastStats())
}

func TestSnapshotAndResume(t *testing.T) {
	dir := t.TempDir()
	s := newSim(t, Options{SnapshotDir: dir})
	for i := 0; i < 25; i++ {
		require.NoError(t, s.Step())
	}

	path, err := s.SaveSnapshot()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "snapshot_25.json"), path)

	resumed := newSim(t, Options{Resume: path})
	assert.Equal(t, uint64(25), resumed.Tick())
	assert.Equal(t, s.Frame().Positions, resumed.Frame().Positions)

	require.NoError(t, s.Step())
	require.NoError(t, resumed.Step())
	assert.Equal(t, s.Frame().Positions, resumed.Frame().Positions)
}

func TestSaveSnapshotNeedsDirectory(t *testing.T) {
	s := newSim(t, Options{})
	_, err := s.SaveSnapshot()
	assert.Error(t, err)
}

func TestOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	s := newSim(t, Options{OutputDir: dir})
	for i := 0; i < 10; i++ {
		require.NoError(t, s.Step())
	}
	path, err := s.SaveSnapshot()
	require.NoError(t, err)
	require.NoError(t, s.Close())

	for _, name := range []string{"config.yaml", "telemetry.csv", "perf.csv"} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Positive(t, info.Size(), name)
	}
	assert.Equal(t, filepath.Join(dir, "snapshots", "snapshot_10.json"), path)
}

func TestRunStopsAtMaxTicks(t *testing.T) {
	s := newSim(t, Options{StepsPerUpdate: 3})

	require.NoError(t, s.Run(context.Background(), 10))
	assert.Equal(t, uint64(10), s.Tick(), "last update is cut short")
	assert.Equal(t, 3, s.StepsPerUpdate())
}

func TestRunCountsTicksFromResume(t *testing.T) {
	dir := t.TempDir()
	s := newSim(t, Options{SnapshotDir: dir})
	require.NoError(t, s.Run(context.Background(), 25))
	path, err := s.SaveSnapshot()
	require.NoError(t, err)

	resumed := newSim(t, Options{Resume: path})
	require.NoError(t, resumed.Run(context.Background(), 10))
	assert.Equal(t, uint64(35), resumed.Tick())
}

func TestResumeWritesSnapshotParams(t *testing.T) {
	s := newSim(t, Options{SnapshotDir: t.TempDir()})
	for i := 0; i < 25; i++ {
		require.NoError(t, s.Step())
	}
	path, err := s.SaveSnapshot()
	require.NoError(t, err)

	cfg := tinyConfig(t)
	cfg.Fluid.GasConstant = 777
	require.NoError(t, cfg.Recompute())

	out := filepath.Join(t.TempDir(), "out")
	resumed := newSim(t, Options{Config: cfg, Resume: path, OutputDir: out})
	assert.Equal(t, float32(2000), resumed.Params().GasConstant)

	written, err := config.Load(filepath.Join(out, "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 2000.0, written.Fluid.GasConstant)
	assert.Equal(t, float32(2000), written.Derived.Params.GasConstant)
	assert.Equal(t, 777.0, cfg.Fluid.GasConstant, "caller's config is not modified")
}

func TestRunHonorsCancel(t *testing.T) {
	s := newSim(t, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, s.Run(ctx, 0))
	assert.Equal(t, uint64(0), s.Tick())
}

func TestRunReturnsHalt(t *testing.T) {
	cfg := tinyConfig(t)
	cfg.Run.HaltOnDegeneracy = true
	s := newSim(t, Options{Config: cfg, Particles: explosive()})

	assert.ErrorIs(t, s.Run(context.Background(), 100), fluid.ErrNumericDegeneracy)
}
