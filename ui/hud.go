package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sph/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title          string
	Particles      int
	Tick           uint64
	SimTime        float64
	StepsPerUpdate int
	FPS            int32
	Paused         bool
	Halted         bool
	Status         string
	Stats          telemetry.WindowStats
	RestDensity    float32
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Particles: %d | Tick: %d | t = %.2fs", data.Particles, data.Tick, data.SimTime),
		10, 35, 16, rl.LightGray,
	)
	rl.DrawText(
		fmt.Sprintf("Speed: %dx | FPS: %d", data.StepsPerUpdate, data.FPS),
		10, 55, 16, rl.LightGray,
	)

	statusText, statusColor := "Running", rl.Yellow
	switch {
	case data.Halted:
		statusText, statusColor = "HALTED (numeric degeneracy)", h.renderer.Theme.WarnColor
	case data.Paused:
		statusText = "PAUSED"
	}
	rl.DrawText(statusText, 10, 75, 16, statusColor)
	if data.Status != "" {
		rl.DrawText(data.Status, 10, 95, 14, rl.Gray)
	}

	if data.Stats.Particles > 0 {
		h.drawDensity(10, 120, 260, data)
	}
}

// drawDensity draws the last telemetry window as a small panel.
func (h *HUD) drawDensity(x, y, width int32, data HUDData) {
	r := h.renderer
	padding := r.Theme.Padding
	s := data.Stats

	r.DrawPanel(x, y, width, r.Theme.LineHeight*8+padding*2)
	y += padding
	x += padding

	y = r.DrawSectionHeader(x, y, "Density")
	y = r.DrawLabelValue(x, y, "Mean", fmt.Sprintf("%.1f", s.DensityMean))
	y = r.DrawLabelValue(x, y, "Std", fmt.Sprintf("%.1f", s.DensityStd))
	y = r.DrawLabelValue(x, y, "p10/p50/p90", fmt.Sprintf("%.0f / %.0f / %.0f", s.DensityP10, s.DensityP50, s.DensityP90))
	if data.RestDensity > 0 {
		y = r.DrawBar(x, y, "Mean / rest", float32(s.DensityMean)/data.RestDensity, width-padding*2)
	}
	y = r.DrawLabelValue(x, y, "Max speed", fmt.Sprintf("%.2f m/s", s.MaxSpeed))
	r.DrawBar(x, y, "Foam", float32(s.FoamMean), width-padding*2)
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenWidth, screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders the per-phase timing panel.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	x := p.x
	y := p.y

	rl.DrawText("Solver Performance", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Tick: %s (%.0f/s)", stats.AvgTick.Round(time.Microsecond), stats.TicksPerSecond),
		x, y, 14, rl.Yellow)
	y += 16
	rl.DrawText(fmt.Sprintf("Pair: %.1f ns", stats.PairNanos), x, y, 14, rl.LightGray)
	y += 16

	for _, ph := range telemetry.Phases {
		if stats.PhaseRuns[ph] == 0 {
			rl.DrawText(fmt.Sprintf("%-17s      -", ph), x, y, 12, rl.Gray)
			y += 14
			continue
		}
		pct := stats.PhasePct[ph]

		color := rl.LightGray
		if pct > 50 {
			color = rl.Red
		} else if pct > 25 {
			color = rl.Orange
		}

		rl.DrawText(
			fmt.Sprintf("%-17s %6s %5.1f%% x%d", ph, stats.PhaseAvg[ph].Round(time.Microsecond), pct, stats.PhaseRuns[ph]),
			x, y, 12, color,
		)
		y += 14
	}
}
