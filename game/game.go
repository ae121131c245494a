// Package game runs the interactive raylib view around a simulation.
package game

import (
	"fmt"
	"log/slog"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sph/camera"
	"github.com/pthm-cable/sph/config"
	"github.com/pthm-cable/sph/renderer"
	"github.com/pthm-cable/sph/sim"
	"github.com/pthm-cable/sph/ui"
)

// Screen-space layout.
const (
	controlsWidth = 220
	perfWidth     = 260
)

// Game owns the view state. The simulation is only mutated through sim
// controls; drawing reads a Frame copy.
type Game struct {
	sim   *sim.Sim
	frame *sim.Frame

	camera    *camera.Camera
	particles *renderer.ParticleRenderer

	hud      *ui.HUD
	perf     *ui.PerfPanel
	controls *ui.ControlsPanel
	showPerf bool

	// One-line message shown under the status (snapshot path, errors)
	status ui.StatusLine

	restDensity float32

	screenWidth, screenHeight float32
}

// NewGame wraps a simulation. Must be called after rl.InitWindow.
func NewGame(s *sim.Sim, cfg *config.Config) *Game {
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())

	params := s.Params()
	center := params.Bounds.Min.Add(params.Bounds.Max).Mul(0.5)

	g := &Game{
		sim: s,
		camera: camera.New(w, h, center,
			float32(cfg.Camera.Distance), float32(cfg.Camera.Yaw),
			float32(cfg.Camera.Pitch), float32(cfg.Camera.FOV)),
		particles:    renderer.NewParticleRenderer(params.SmoothingRadius * 0.3),
		hud:          ui.NewHUD(),
		perf:         ui.NewPerfPanel(int32(w)-perfWidth, int32(h)-150),
		controls:     ui.NewControlsPanel(int32(w)-controlsWidth-10, 10, controlsWidth, sim.MaxStepsPerUpdate),
		restDensity:  params.RestDensity,
		screenWidth:  w,
		screenHeight: h,
	}
	g.frame = s.Frame()
	return g
}

// Update advances the simulation and processes input. Errors from the
// simulation are reported in the HUD; a halted run stays on screen.
func (g *Game) Update() {
	g.handleInput()

	now := time.Now()
	if err := g.sim.Update(); err != nil && g.status.Text(now) == "" {
		g.status.Set(err.Error(), now)
	}
	g.sim.RecordFrame()
	g.frame = g.sim.FrameInto(g.frame)
}

// Tick returns the simulation tick.
func (g *Game) Tick() uint64 {
	return g.sim.Tick()
}

func (g *Game) saveSnapshot() {
	path, err := g.sim.SaveSnapshot()
	if err != nil {
		g.status.Set(fmt.Sprintf("snapshot failed: %v", err), time.Now())
		slog.Warn("snapshot failed", "error", err)
		return
	}
	g.status.Set("saved "+path, time.Now())
}

func (g *Game) reset() {
	if err := g.sim.Reset(); err != nil {
		g.status.Set(fmt.Sprintf("reset failed: %v", err), time.Now())
		return
	}
	g.status.Clear()
	g.frame = g.sim.FrameInto(g.frame)
}
