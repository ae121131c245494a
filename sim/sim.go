// Package sim drives a fluid.Solver as an application loop: tick counting,
// per-phase timing, degeneracy policy, telemetry windows, snapshots and
// read-only frames for renderers.
package sim

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/pthm-cable/sph/config"
	"github.com/pthm-cable/sph/fluid"
	"github.com/pthm-cable/sph/telemetry"
)

// MaxStepsPerUpdate bounds the speed control.
const MaxStepsPerUpdate = 50

// ErrHalted is returned by Update and Step once the run stopped on a
// degenerate tick.
var ErrHalted = errors.New("simulation halted")

// Options configures a Sim.
type Options struct {
	Config         *config.Config // nil = config.Cfg()
	Particles      []fluid.Particle
	Resume         string // snapshot path; overrides Particles and fluid params
	LogStats       bool
	StatsWindowSec float64 // 0 = use config
	OutputDir      string
	SnapshotDir    string
	StepsPerUpdate int // 0 = use config
	StatsCallback  func(telemetry.WindowStats)
}

// Sim owns the solver and everything that observes it.
type Sim struct {
	cfg    *config.Config
	solver *fluid.Solver
	foamP  fluid.FoamParams

	initial   []fluid.Particle
	startTick uint64
	tick      uint64

	paused         bool
	stepsPerUpdate int
	checkEvery     int
	haltOnDegen    bool
	halted         error
	warned         bool

	collector     *telemetry.Collector
	perfCollector *telemetry.PerfCollector
	outputManager *telemetry.OutputManager
	statsCallback func(telemetry.WindowStats)
	logStats      bool
	snapshotDir   string
	lastStats     telemetry.WindowStats

	// Scratch, reused across flushes
	foam      []float32
	particles []fluid.Particle
}

// New builds the solver from the configured grid, the given particles or a
// snapshot, and opens output files when requested.
func New(opts Options) (*Sim, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}

	params := cfg.Derived.Params
	particles := opts.Particles
	var startTick uint64

	if opts.Resume != "" {
		snap, err := telemetry.LoadSnapshot(opts.Resume)
		if err != nil {
			return nil, err
		}
		params = snap.FluidParams()
		particles = snap.FluidParticles()
		startTick = snap.Tick
		slog.Info("resuming from snapshot", "path", opts.Resume, "tick", snap.Tick, "particles", len(particles))

		// The snapshot's constants drive the run, so the recorded config
		// carries them instead of the file's fluid section.
		resumed := *cfg
		resumed.Fluid = config.FluidFromParams(params)
		resumed.Derived.Params = params
		cfg = &resumed
	}

	if particles == nil {
		grid, err := fluid.NewGrid(cfg.Derived.Grid)
		if err != nil {
			return nil, err
		}
		particles = grid
	}

	solver, err := fluid.NewSolverFromParticles(params, particles)
	if err != nil {
		return nil, err
	}
	solver.SetWorkers(cfg.Run.Workers)

	statsWindow := cfg.Telemetry.StatsWindow
	if opts.StatsWindowSec > 0 {
		statsWindow = opts.StatsWindowSec
	}
	steps := cfg.Run.StepsPerUpdate
	if opts.StepsPerUpdate > 0 {
		steps = opts.StepsPerUpdate
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		solver.Close()
		return nil, err
	}
	if err := om.WriteConfig(cfg); err != nil {
		solver.Close()
		om.Close()
		return nil, err
	}

	s := &Sim{
		cfg:           cfg,
		solver:        solver,
		foamP:         cfg.Derived.Foam,
		initial:       solver.Store().CopyTo(nil),
		startTick:     startTick,
		tick:          startTick,
		checkEvery:    cfg.Run.CheckEvery,
		haltOnDegen:   cfg.Run.HaltOnDegeneracy,
		collector:     telemetry.NewCollector(statsWindow, params.TimeStep),
		perfCollector: telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		outputManager: om,
		statsCallback: opts.StatsCallback,
		logStats:      opts.LogStats,
		snapshotDir:   opts.SnapshotDir,
	}
	s.SetStepsPerUpdate(steps)
	s.collector.Reset(int64(startTick))

	slog.Info("simulation initialized",
		"particles", solver.Store().Len(),
		"preset", cfg.Preset,
		"gas_constant", params.GasConstant,
		"viscosity", params.Viscosity,
		"time_step", params.TimeStep,
		"workers", solver.Workers(),
		"stats_window", statsWindow,
		"output_dir", om.Dir(),
	)

	return s, nil
}

// Update runs StepsPerUpdate ticks unless paused.
func (s *Sim) Update() error {
	return s.update(s.stepsPerUpdate)
}

func (s *Sim) update(n int) error {
	if s.paused {
		return s.halted
	}
	for i := 0; i < n; i++ {
		if err := s.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Step runs exactly one tick, ignoring pause.
func (s *Sim) Step() error {
	if s.halted != nil {
		return s.halted
	}

	pc := s.perfCollector
	pc.StartTick(s.solver.Store().Len())

	pc.StartPhase(telemetry.PhaseDensityPressure)
	s.solver.DensityPressure()

	pc.StartPhase(telemetry.PhaseForces)
	s.solver.Forces()

	pc.StartPhase(telemetry.PhaseIntegrate)
	s.solver.Integrate(s.solver.Params().TimeStep)
	s.tick++

	var err error
	if s.checkEvery > 0 && s.tick%uint64(s.checkEvery) == 0 {
		pc.StartPhase(telemetry.PhaseCheck)
		err = s.check()
	}

	if s.collector.ShouldFlush(int64(s.tick)) {
		pc.StartPhase(telemetry.PhaseFoam)
		s.foam = fluid.FoamFactors(s.solver.Store(), s.foamP, s.foam)

		pc.StartPhase(telemetry.PhaseTelemetry)
		s.flushTelemetry()
	}

	pc.EndTick()
	return err
}

// check applies the degeneracy policy.
func (s *Sim) check() error {
	err := s.solver.Check()
	s.collector.RecordCheck(err)
	if err == nil {
		return nil
	}

	if s.haltOnDegen {
		s.halted = fmt.Errorf("%w at tick %d: %w", ErrHalted, s.tick, err)
		slog.Error("numeric degeneracy, halting", "tick", s.tick, "error", err)
		return s.halted
	}
	if !s.warned {
		slog.Warn("numeric degeneracy", "tick", s.tick, "error", err)
		s.warned = true
	}
	return nil
}

// Reset restores the initial particle set and clears counters.
func (s *Sim) Reset() error {
	solver, err := fluid.NewSolverFromParticles(s.solver.Params(), s.initial)
	if err != nil {
		return err
	}
	solver.SetWorkers(s.cfg.Run.Workers)
	s.solver.Close()
	s.solver = solver
	s.tick = s.startTick
	s.halted = nil
	s.warned = false
	s.collector.Reset(int64(s.tick))
	s.lastStats = telemetry.WindowStats{}
	slog.Info("simulation reset", "tick", s.tick)
	return nil
}

// Tick returns the number of completed ticks, including any resumed offset.
func (s *Sim) Tick() uint64 {
	return s.tick
}

// SimTime returns simulated seconds.
func (s *Sim) SimTime() float64 {
	return float64(s.tick) * float64(s.solver.Params().TimeStep)
}

// Params returns the active solver parameters.
func (s *Sim) Params() fluid.Params {
	return s.solver.Params()
}

// Len returns the particle count.
func (s *Sim) Len() int {
	return s.solver.Store().Len()
}

// Diagnostics returns the solver's check counters.
func (s *Sim) Diagnostics() fluid.Diagnostics {
	return s.solver.Diagnostics()
}

// Paused reports whether Update is a no-op.
func (s *Sim) Paused() bool {
	return s.paused
}

// SetPaused pauses or resumes Update.
func (s *Sim) SetPaused(p bool) {
	s.paused = p
}

// TogglePause flips the pause state.
func (s *Sim) TogglePause() {
	s.paused = !s.paused
}

// Halted returns the error that stopped the run, or nil.
func (s *Sim) Halted() error {
	return s.halted
}

// StepsPerUpdate returns ticks per Update call.
func (s *Sim) StepsPerUpdate() int {
	return s.stepsPerUpdate
}

// SetStepsPerUpdate clamps n to [1, MaxStepsPerUpdate].
func (s *Sim) SetStepsPerUpdate(n int) {
	switch {
	case n < 1:
		n = 1
	case n > MaxStepsPerUpdate:
		n = MaxStepsPerUpdate
	}
	s.stepsPerUpdate = n
}

// LastStats returns the most recently flushed window.
func (s *Sim) LastStats() telemetry.WindowStats {
	return s.lastStats
}

// Perf returns rolling per-phase timings.
func (s *Sim) Perf() telemetry.PerfStats {
	return s.perfCollector.Stats()
}

// RecordFrame feeds frame timing to the perf collector (graphics mode).
func (s *Sim) RecordFrame() {
	s.perfCollector.RecordFrame()
}

// Close stops solver workers and flushes and closes output files.
func (s *Sim) Close() error {
	s.solver.Close()
	return s.outputManager.Close()
}
