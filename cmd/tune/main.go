// Package main tunes fluid parameters with CMA-ES so a headless run stays
// close to rest density without going numerically degenerate.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/sph/config"
	"github.com/pthm-cable/sph/fluid"
)

// TuneRecord is one row of tune_log.csv.
type TuneRecord struct {
	Eval        int     `csv:"eval"`
	Fitness     float64 `csv:"fitness"`
	GasConstant float64 `csv:"gas_constant"`
	Viscosity   float64 `csv:"viscosity"`
	Damping     float64 `csv:"damping"`
	DensityErr  float64 `csv:"density_err"`
	Degenerate  int     `csv:"degenerate"`
	Pinned      float64 `csv:"pinned"`
}

// formatDuration formats a duration as HH:MM:SS or MM:SS for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	preset := flag.String("preset", "", "Named parameter preset (overrides config preset)")
	grid := flag.String("grid", "", "Named lattice (tiny, demo, large; empty = config grid)")
	maxTicks := flag.Uint64("max-ticks", 2000, "Ticks per run")
	seeds := flag.Int("seeds", 3, "Number of jitter seeds per evaluation")
	jitter := flag.Float64("jitter", fluid.MaxJitter/2, "Lattice jitter as a fraction of spacing")
	maxEvals := flag.Int("max-evals", 100, "Maximum number of evaluations")
	population := flag.Int("population", 0, "CMA-ES population size (0 = auto)")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}

	// Runs log degeneracy warnings; keep only errors.
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	baseCfg, err := config.LoadPreset(*configPath, *preset)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *grid != "" {
		spec, err := fluid.GridPreset(*grid)
		if err != nil {
			log.Fatalf("%v", err)
		}
		baseCfg.Grid = config.GridFromSpec(spec)
	}
	baseCfg.Grid.Jitter = *jitter
	if err := baseCfg.Recompute(); err != nil {
		log.Fatalf("invalid base config: %v", err)
	}

	params := NewParamVector()

	evalSeeds := make([]int64, *seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}

	evaluator := NewFitnessEvaluator(params, *maxTicks, evalSeeds, baseCfg)

	dim := params.Dim()
	initX := params.Normalize(params.ExtractFromConfig(baseCfg))

	settings := &optimize.Settings{
		FuncEvaluations: *maxEvals,
		Concurrent:      0, // Sequential evaluation; seeds already run in parallel
	}

	popSize := *population
	if popSize == 0 {
		popSize = 4 + int(3.0*float64(dim)/2.0)
	}

	method := &optimize.CmaEsChol{
		InitStepSize: 0.3,
		Population:   popSize,
	}

	logPath := filepath.Join(*outputDir, "tune_log.csv")
	logFile, err := os.Create(logPath)
	if err != nil {
		log.Fatalf("failed to create log file: %v", err)
	}
	defer logFile.Close()

	evalCount := 0
	bestFitness := 1e18
	var bestParams []float64
	startTime := time.Now()

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			// Clamped values are the ones actually simulated
			clamped := params.Clamp(params.Denormalize(x))
			fitness := evaluator.Evaluate(clamped)
			evalCount++

			if fitness < bestFitness {
				bestFitness = fitness
				bestParams = clamped
			}

			r := evaluator.LastResult()
			rec := TuneRecord{
				Eval:        evalCount,
				Fitness:     fitness,
				GasConstant: clamped[0],
				Viscosity:   clamped[1],
				Damping:     clamped[2],
				DensityErr:  r.densityErr,
				Degenerate:  r.degenerate,
				Pinned:      r.pinned,
			}
			if err := writeRecord(logFile, rec, evalCount == 1); err != nil {
				log.Printf("failed to write log row: %v", err)
			}

			elapsed := time.Since(startTime)
			avgPerEval := elapsed / time.Duration(evalCount)
			remaining := time.Duration(*maxEvals-evalCount) * avgPerEval

			fmt.Printf("Eval %d/%d: fitness=%.4f %s (best=%.4f) | elapsed: %s, ETA: %s\n",
				evalCount, *maxEvals, fitness, r, bestFitness,
				formatDuration(elapsed), formatDuration(remaining))

			return fitness
		},
	}

	fmt.Printf("Starting CMA-ES tuning with %d parameters, population=%d, max_evals=%d\n",
		dim, popSize, *maxEvals)
	fmt.Printf("Particles: %d, seeds per evaluation: %d, ticks per run: %d\n",
		baseCfg.Derived.Grid.Count(), *seeds, *maxTicks)

	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		log.Printf("optimization ended: %v", err)
	}

	// Best params from any evaluation, not just the final mean
	if bestParams == nil && result != nil {
		bestParams = params.Clamp(params.Denormalize(result.X))
	}
	if bestParams == nil {
		log.Fatal("no evaluations completed")
	}

	fmt.Printf("\nTuning complete after %d evaluations in %s\n", evalCount, formatDuration(time.Since(startTime)))
	fmt.Printf("Best fitness: %.4f\n", bestFitness)

	fmt.Println("\nBest parameters:")
	for i, spec := range params.Specs {
		fmt.Printf("  %s: %.6f\n", spec.Path, bestParams[i])
	}

	bestCfg := evaluator.copyConfig()
	params.ApplyToConfig(bestCfg, bestParams)

	configOutPath := filepath.Join(*outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(configOutPath); err != nil {
		log.Printf("failed to write best config: %v", err)
	} else {
		fmt.Printf("\nBest config saved to: %s\n", configOutPath)
	}
}

// writeRecord appends one CSV row, with the header on the first call.
func writeRecord(f *os.File, rec TuneRecord, header bool) error {
	rows := []TuneRecord{rec}
	if header {
		return gocsv.Marshal(rows, f)
	}
	return gocsv.MarshalWithoutHeaders(rows, f)
}
