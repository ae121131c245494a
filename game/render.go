package game

import (
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sph/renderer"
	"github.com/pthm-cable/sph/ui"
)

const controlsLegend = "Drag/arrows: orbit | Wheel: zoom | Space: pause | N: step | ,/.: speed | R: reset | S: snapshot | P: perf | Tab: panel"

var (
	background = rl.Color{R: 12, G: 16, B: 22, A: 255}
	boxColor   = rl.Color{R: 120, G: 130, B: 140, A: 255}
)

// Draw renders the current frame.
func (g *Game) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(background)

	rl.BeginMode3D(renderer.Camera3D(g.camera))
	renderer.DrawBounds(g.frame.Bounds, boxColor)
	g.particles.Draw(g.frame, g.camera)
	rl.EndMode3D()

	g.hud.Draw(ui.HUDData{
		Title:          "SPH Fluid",
		Particles:      g.frame.Len(),
		Tick:           g.frame.Tick,
		SimTime:        g.frame.SimTime,
		StepsPerUpdate: g.frame.StepsPerUpdate,
		FPS:            rl.GetFPS(),
		Paused:         g.frame.Paused,
		Halted:         g.frame.Halted,
		Status:         g.status.Text(time.Now()),
		Stats:          g.frame.Stats,
		RestDensity:    g.restDensity,
	})

	actions := g.controls.Draw(g.frame.Paused, g.frame.StepsPerUpdate)
	g.apply(actions)

	if g.showPerf {
		g.perf.Draw(g.sim.Perf())
	}
	g.hud.DrawControls(int32(g.screenWidth), int32(g.screenHeight), controlsLegend)

	rl.EndDrawing()
}

// apply forwards panel clicks to the simulation.
func (g *Game) apply(a ui.ControlActions) {
	if a.TogglePause {
		g.sim.TogglePause()
	}
	if a.Step && g.sim.Paused() {
		if err := g.sim.Step(); err != nil {
			g.status.Set(err.Error(), time.Now())
		}
	}
	if a.Reset {
		g.reset()
	}
	if a.Snapshot {
		g.saveSnapshot()
	}
	if a.StepsPerUpdate != g.sim.StepsPerUpdate() {
		g.sim.SetStepsPerUpdate(a.StepsPerUpdate)
	}
}
