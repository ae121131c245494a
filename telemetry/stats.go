package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int64   `csv:"-"`
	WindowEndTick   int64   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	Particles int `csv:"particles"`

	// Density distribution (sampled at window end)
	DensityMean float64 `csv:"density_mean"`
	DensityStd  float64 `csv:"density_std"`
	DensityMin  float64 `csv:"density_min"`
	DensityMax  float64 `csv:"density_max"`
	DensityP10  float64 `csv:"density_p10"`
	DensityP50  float64 `csv:"density_p50"`
	DensityP90  float64 `csv:"density_p90"`

	PressureMean float64 `csv:"pressure_mean"`

	// Motion
	MaxSpeed      float64 `csv:"max_speed"`
	KineticEnergy float64 `csv:"kinetic_energy"` // sum of m|v|^2/2
	FoamMean      float64 `csv:"foam_mean"`

	// Degeneracy checks during window
	Checks     int `csv:"checks"`
	Degenerate int `csv:"degenerate"`
}

// DensityStats summarizes a density sample.
type DensityStats struct {
	Mean, Std     float64
	Min, Max      float64
	P10, P50, P90 float64
}

// Percentile returns the p-th quantile of a sorted slice, p in [0, 1].
// Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	switch {
	case p < 0:
		p = 0
	case p > 1:
		p = 1
	}
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}

// ComputeDensityStats calculates spread and percentiles. values is not modified.
func ComputeDensityStats(values []float64) DensityStats {
	if len(values) == 0 {
		return DensityStats{}
	}

	mean, std := stat.PopMeanStdDev(values, nil)

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return DensityStats{
		Mean: mean,
		Std:  std,
		Min:  floats.Min(sorted),
		Max:  floats.Max(sorted),
		P10:  Percentile(sorted, 0.10),
		P50:  Percentile(sorted, 0.50),
		P90:  Percentile(sorted, 0.90),
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStartTick),
		slog.Int64("window_end", s.WindowEndTick),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("particles", s.Particles),
		slog.Float64("density_mean", s.DensityMean),
		slog.Float64("density_std", s.DensityStd),
		slog.Float64("density_min", s.DensityMin),
		slog.Float64("density_max", s.DensityMax),
		slog.Float64("density_p10", s.DensityP10),
		slog.Float64("density_p50", s.DensityP50),
		slog.Float64("density_p90", s.DensityP90),
		slog.Float64("pressure_mean", s.PressureMean),
		slog.Float64("max_speed", s.MaxSpeed),
		slog.Float64("kinetic_energy", s.KineticEnergy),
		slog.Float64("foam_mean", s.FoamMean),
		slog.Int("checks", s.Checks),
		slog.Int("degenerate", s.Degenerate),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"particles", s.Particles,
		"density_mean", s.DensityMean,
		"density_std", s.DensityStd,
		"density_min", s.DensityMin,
		"density_max", s.DensityMax,
		"density_p10", s.DensityP10,
		"density_p50", s.DensityP50,
		"density_p90", s.DensityP90,
		"pressure_mean", s.PressureMean,
		"max_speed", s.MaxSpeed,
		"kinetic_energy", s.KineticEnergy,
		"foam_mean", s.FoamMean,
		"checks", s.Checks,
		"degenerate", s.Degenerate,
	)
}
