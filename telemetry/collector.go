package telemetry

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/sph/fluid"
)

// Collector accumulates check results within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int64
	dt                  float32

	// Current window tracking
	windowStartTick int64

	// Event counters for current window
	checks     int
	degenerate int

	// Scratch, reused across flushes
	densities []float64
	pressures []float64
	speeds    []float64
	foam      []float64
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec float64, dt float32) *Collector {
	ticksPerWindow := int64(windowDurationSec / float64(dt))
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// WindowTicks returns the window length in ticks.
func (c *Collector) WindowTicks() int64 {
	return c.windowDurationTicks
}

// RecordCheck records the outcome of one degeneracy scan.
func (c *Collector) RecordCheck(err error) {
	c.checks++
	if err != nil {
		c.degenerate++
	}
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int64) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Reset starts a new window at tick and drops pending counters.
func (c *Collector) Reset(tick int64) {
	c.windowStartTick = tick
	c.checks = 0
	c.degenerate = 0
}

// Flush produces a WindowStats from the particle state at currentTick and
// resets counters for the next window. foam is the per-particle foam factor in
// the same order as particles, or nil.
func (c *Collector) Flush(currentTick int64, particles []fluid.Particle, foam []float32, mass float32) WindowStats {
	n := len(particles)
	c.densities = c.densities[:0]
	c.pressures = c.pressures[:0]
	c.speeds = c.speeds[:0]
	c.foam = c.foam[:0]

	var kinetic float64
	for i := range particles {
		p := &particles[i]
		speed := float64(p.Velocity.Len())
		c.densities = append(c.densities, float64(p.Density))
		c.pressures = append(c.pressures, float64(p.Pressure))
		c.speeds = append(c.speeds, speed)
		kinetic += 0.5 * float64(mass) * speed * speed
	}
	for _, f := range foam {
		c.foam = append(c.foam, float64(f))
	}

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * float64(c.dt),

		Particles:     n,
		KineticEnergy: kinetic,

		Checks:     c.checks,
		Degenerate: c.degenerate,
	}

	if n > 0 {
		d := ComputeDensityStats(c.densities)
		stats.DensityMean = d.Mean
		stats.DensityStd = d.Std
		stats.DensityMin = d.Min
		stats.DensityMax = d.Max
		stats.DensityP10 = d.P10
		stats.DensityP50 = d.P50
		stats.DensityP90 = d.P90
		stats.PressureMean = stat.Mean(c.pressures, nil)
		stats.MaxSpeed = floats.Max(c.speeds)
	}
	if len(c.foam) > 0 {
		stats.FoamMean = stat.Mean(c.foam, nil)
	}

	c.Reset(currentTick)
	return stats
}
