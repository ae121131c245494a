package telemetry

import (
	"log/slog"
	"time"
)

// Phase is one timed section of a solver tick.
type Phase int

// Phases of a tick in execution order. Check, foam and telemetry only run on
// some ticks.
const (
	PhaseDensityPressure Phase = iota
	PhaseForces
	PhaseIntegrate
	PhaseCheck
	PhaseFoam
	PhaseTelemetry

	NumPhases
)

var phaseNames = [NumPhases]string{
	"density_pressure", "forces", "integrate", "check", "foam", "telemetry",
}

func (ph Phase) String() string {
	if ph < 0 || ph >= NumPhases {
		return "unknown"
	}
	return phaseNames[ph]
}

// Phases lists every phase in execution order.
var Phases = []Phase{
	PhaseDensityPressure, PhaseForces, PhaseIntegrate,
	PhaseCheck, PhaseFoam, PhaseTelemetry,
}

// tickTiming is one tick: per-phase time and which phases ran.
type tickTiming struct {
	total     time.Duration
	phase     [NumPhases]time.Duration
	ran       [NumPhases]bool
	particles int
}

// PerfCollector times solver ticks over a ring of the last window ticks.
type PerfCollector struct {
	ring   []tickTiming
	next   int
	filled int

	cur        tickTiming
	tickStart  time.Time
	phaseStart time.Time
	active     Phase // -1 between phases

	lastFrame time.Time
	frame     time.Duration
}

// NewPerfCollector keeps the last window ticks (60 when window < 1).
func NewPerfCollector(window int) *PerfCollector {
	if window < 1 {
		window = 60
	}
	return &PerfCollector{ring: make([]tickTiming, window), active: -1}
}

// StartTick begins a tick over n particles.
func (p *PerfCollector) StartTick(particles int) {
	p.cur = tickTiming{particles: particles}
	p.tickStart = time.Now()
	p.active = -1
}

// StartPhase closes the running phase, if any, and opens ph.
func (p *PerfCollector) StartPhase(ph Phase) {
	now := time.Now()
	p.closePhase(now)
	p.active = ph
	p.phaseStart = now
	p.cur.ran[ph] = true
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.active >= 0 {
		p.cur.phase[p.active] += now.Sub(p.phaseStart)
		p.active = -1
	}
}

// EndTick closes the tick and stores it in the ring.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	p.closePhase(now)
	p.cur.total = now.Sub(p.tickStart)

	p.ring[p.next] = p.cur
	p.next = (p.next + 1) % len(p.ring)
	if p.filled < len(p.ring) {
		p.filled++
	}
}

// RecordFrame measures the time since the previous call (graphics mode).
func (p *PerfCollector) RecordFrame() {
	now := time.Now()
	if !p.lastFrame.IsZero() {
		p.frame = now.Sub(p.lastFrame)
	}
	p.lastFrame = now
}

// PerfStats summarizes the ticks currently in the window.
type PerfStats struct {
	Ticks int

	AvgTick, MinTick, MaxTick time.Duration
	TicksPerSecond            float64

	// PhaseAvg is the mean over the ticks where the phase ran, PhaseRuns
	// how many those were. PhasePct is the phase's share of all tick time.
	PhaseAvg  [NumPhases]time.Duration
	PhaseRuns [NumPhases]int
	PhasePct  [NumPhases]float64

	// PairNanos is the cost of one (i, j) evaluation in the density and
	// force passes, which each visit n^2 pairs.
	PairNanos float64

	Frame time.Duration
	FPS   float64
}

// Stats aggregates the window.
func (p *PerfCollector) Stats() PerfStats {
	st := PerfStats{Ticks: p.filled, Frame: p.frame}
	if p.frame > 0 {
		st.FPS = float64(time.Second) / float64(p.frame)
	}
	if p.filled == 0 {
		return st
	}

	// The ring fills from index 0, so the first filled entries are valid.
	var total time.Duration
	var sums [NumPhases]time.Duration
	var pairs float64
	st.MinTick = p.ring[0].total
	for _, t := range p.ring[:p.filled] {
		total += t.total
		st.MinTick = min(st.MinTick, t.total)
		st.MaxTick = max(st.MaxTick, t.total)
		for ph := range sums {
			if t.ran[ph] {
				sums[ph] += t.phase[ph]
				st.PhaseRuns[ph]++
			}
		}
		pairs += float64(t.particles) * float64(t.particles)
	}

	st.AvgTick = total / time.Duration(p.filled)
	if st.AvgTick > 0 {
		st.TicksPerSecond = float64(time.Second) / float64(st.AvgTick)
	}
	for ph := range sums {
		if st.PhaseRuns[ph] > 0 {
			st.PhaseAvg[ph] = sums[ph] / time.Duration(st.PhaseRuns[ph])
		}
		if total > 0 {
			st.PhasePct[ph] = float64(sums[ph]) / float64(total) * 100
		}
	}
	if pairs > 0 {
		st.PairNanos = float64(sums[PhaseDensityPressure]+sums[PhaseForces]) / (2 * pairs)
	}
	return st
}

// LogValue groups the timings for slog.Any. Phases that never ran in the
// window are left out.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("ticks", s.Ticks),
		slog.Int64("avg_tick_us", s.AvgTick.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTick.Microseconds()),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
		slog.Float64("pair_ns", s.PairNanos),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}
	for _, ph := range Phases {
		if s.PhaseRuns[ph] > 0 {
			attrs = append(attrs, slog.Float64(ph.String()+"_pct", s.PhasePct[ph]))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfRow is one line of perf.csv.
type PerfRow struct {
	WindowEnd    int64   `csv:"window_end"`
	Ticks        int     `csv:"ticks"`
	AvgTickUS    int64   `csv:"avg_tick_us"`
	MinTickUS    int64   `csv:"min_tick_us"`
	MaxTickUS    int64   `csv:"max_tick_us"`
	TicksPerSec  float64 `csv:"ticks_per_sec"`
	PairNS       float64 `csv:"pair_ns"`
	FPS          float64 `csv:"fps"`
	DensityPct   float64 `csv:"density_pressure_pct"`
	ForcesPct    float64 `csv:"forces_pct"`
	IntegratePct float64 `csv:"integrate_pct"`
	CheckPct     float64 `csv:"check_pct"`
	CheckRuns    int     `csv:"check_runs"`
	FoamPct      float64 `csv:"foam_pct"`
	TelemetryPct float64 `csv:"telemetry_pct"`
}

// Row flattens the stats for perf.csv.
func (s PerfStats) Row(windowEnd int64) PerfRow {
	return PerfRow{
		WindowEnd:    windowEnd,
		Ticks:        s.Ticks,
		AvgTickUS:    s.AvgTick.Microseconds(),
		MinTickUS:    s.MinTick.Microseconds(),
		MaxTickUS:    s.MaxTick.Microseconds(),
		TicksPerSec:  s.TicksPerSecond,
		PairNS:       s.PairNanos,
		FPS:          s.FPS,
		DensityPct:   s.PhasePct[PhaseDensityPressure],
		ForcesPct:    s.PhasePct[PhaseForces],
		IntegratePct: s.PhasePct[PhaseIntegrate],
		CheckPct:     s.PhasePct[PhaseCheck],
		CheckRuns:    s.PhaseRuns[PhaseCheck],
		FoamPct:      s.PhasePct[PhaseFoam],
		TelemetryPct: s.PhasePct[PhaseTelemetry],
	}
}
