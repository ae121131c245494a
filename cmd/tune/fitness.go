package main

import (
	"fmt"
	"math"
	"sync"

	"github.com/pthm-cable/sph/config"
	"github.com/pthm-cable/sph/sim"
)

// Penalty weights. A degenerate tick outweighs any density error.
const (
	degeneratePenalty = 100.0
	pinnedPenalty     = 10.0
	failedRunFitness  = 1e6

	// Floor contact tolerance and the speed above which a floor particle
	// counts as pinned rather than resting.
	floorEpsilon   = 1e-4
	pinnedMinSpeed = 1.0
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	maxTicks   uint64
	seeds      []int64
	baseConfig *config.Config

	mu         sync.Mutex
	lastResult runResult // aggregate of the most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator. Each seed perturbs the
// starting lattice when the base grid has jitter.
func NewFitnessEvaluator(params *ParamVector, maxTicks uint64, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		maxTicks:   maxTicks,
		seeds:      seeds,
		baseConfig: baseCfg,
	}
}

// LastResult returns the averaged components of the most recent evaluation.
func (fe *FitnessEvaluator) LastResult() runResult {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastResult
}

// runResult holds the measurements from a single run.
type runResult struct {
	densityErr float64 // mean |rho - rho0| / rho0 over the sampled ticks
	degenerate int     // ticks that failed the degeneracy scan
	pinned     float64 // fraction of particles pinned to the floor at the end
	failed     bool    // the run could not be built
}

// Evaluate computes fitness for raw parameter values (lower = better).
// Seeds run in parallel and their fitness is averaged.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]runResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runSimulation(x, s)
		}(i, seed)
	}
	wg.Wait()

	var total float64
	var agg runResult
	for _, r := range results {
		total += computeFitness(r)
		agg.densityErr += r.densityErr
		agg.degenerate += r.degenerate
		agg.pinned += r.pinned
	}

	n := float64(len(fe.seeds))
	agg.densityErr /= n
	agg.pinned /= n

	fe.mu.Lock()
	fe.lastResult = agg
	fe.mu.Unlock()

	return total / n
}

// runSimulation executes a single headless run and samples density error
// over the second half.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) runResult {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)
	cfg.Grid.Seed = seed
	cfg.Run.CheckEvery = 1
	cfg.Run.HaltOnDegeneracy = false
	cfg.Run.Workers = 1 // seeds already run in parallel

	if err := cfg.Recompute(); err != nil {
		return runResult{failed: true}
	}

	s, err := sim.New(sim.Options{Config: cfg, StepsPerUpdate: 1})
	if err != nil {
		return runResult{failed: true}
	}
	defer s.Close()

	rest := cfg.Derived.Params.RestDensity
	sampleFrom := fe.maxTicks / 2

	var frame *sim.Frame
	var errSum float64
	var samples int
	for s.Tick() < fe.maxTicks {
		// Log-mode runs only error once halted, which cannot happen here.
		if err := s.Step(); err != nil {
			break
		}
		if s.Tick() <= sampleFrom {
			continue
		}
		frame = s.FrameInto(frame)
		errSum += densityError(frame.Densities, rest)
		samples++
	}

	result := runResult{degenerate: int(s.Diagnostics().Degenerate)}
	if samples > 0 {
		result.densityErr = errSum / float64(samples)
	}
	if frame != nil {
		result.pinned = pinnedFraction(frame)
	}
	return result
}

// copyConfig clones the base config; all sections are plain values.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	return &cfg
}

// computeFitness folds a run into one scalar (lower = better). Non-finite
// density error counts as a failed run.
func computeFitness(r runResult) float64 {
	if r.failed || math.IsNaN(r.densityErr) || math.IsInf(r.densityErr, 0) {
		return failedRunFitness
	}
	return r.densityErr +
		degeneratePenalty*float64(r.degenerate) +
		pinnedPenalty*r.pinned
}

// densityError returns mean |rho - rest| / rest.
func densityError(densities []float32, rest float32) float64 {
	if len(densities) == 0 || rest == 0 {
		return 0
	}
	var sum float64
	for _, d := range densities {
		sum += math.Abs(float64(d-rest)) / float64(rest)
	}
	return sum / float64(len(densities))
}

// pinnedFraction returns the share of particles sitting on the floor
// while still moving faster than pinnedMinSpeed.
func pinnedFraction(frame *sim.Frame) float64 {
	n := frame.Len()
	if n == 0 {
		return 0
	}
	floor := frame.Bounds.Min[1]
	pinned := 0
	for i, p := range frame.Positions {
		if p[1] <= floor+floorEpsilon && frame.Velocities[i].Len() > pinnedMinSpeed {
			pinned++
		}
	}
	return float64(pinned) / float64(n)
}

func (r runResult) String() string {
	return fmt.Sprintf("density_err=%.4f degenerate=%d pinned=%.2f", r.densityErr, r.degenerate, r.pinned)
}
