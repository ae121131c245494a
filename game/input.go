package game

import (
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Orbit speed in radians per pixel of mouse drag.
const dragSensitivity = 0.005

// handleInput processes keyboard and mouse input.
func (g *Game) handleInput() {
	g.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		g.sim.TogglePause()
	}

	// Single step while paused
	if rl.IsKeyPressed(rl.KeyN) && g.sim.Paused() {
		if err := g.sim.Step(); err != nil {
			g.status.Set(err.Error(), time.Now())
		}
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) {
		g.sim.SetStepsPerUpdate(g.sim.StepsPerUpdate() - 1)
	}
	if rl.IsKeyPressed(rl.KeyPeriod) {
		g.sim.SetStepsPerUpdate(g.sim.StepsPerUpdate() + 1)
	}

	if rl.IsKeyPressed(rl.KeyR) {
		g.reset()
	}
	if rl.IsKeyPressed(rl.KeyS) {
		g.saveSnapshot()
	}
	if rl.IsKeyPressed(rl.KeyP) {
		g.showPerf = !g.showPerf
	}
	if rl.IsKeyPressed(rl.KeyTab) {
		g.controls.Toggle()
	}

	g.handleCameraInput()
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.screenWidth = w
	g.screenHeight = h

	g.camera.Resize(w, h)
	g.controls.SetPosition(int32(w)-controlsWidth-10, 10)
	g.perf.SetPosition(int32(w)-perfWidth, int32(h)-150)
}

// handleCameraInput processes orbit and zoom controls.
func (g *Game) handleCameraInput() {
	const keyStep = 0.03

	if rl.IsKeyDown(rl.KeyRight) {
		g.camera.Orbit(keyStep, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		g.camera.Orbit(-keyStep, 0)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		g.camera.Orbit(0, keyStep)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		g.camera.Orbit(0, -keyStep)
	}

	// Drag outside the controls panel to orbit
	if rl.IsMouseButtonDown(rl.MouseButtonLeft) && !g.overControls() {
		d := rl.GetMouseDelta()
		g.camera.Orbit(d.X*dragSensitivity, d.Y*dragSensitivity)
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		g.camera.ZoomBy(1 + wheel*0.1)
	}
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		g.camera.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		g.camera.ZoomBy(0.8)
	}

	if rl.IsKeyPressed(rl.KeyHome) {
		g.camera.Reset()
	}
}

func (g *Game) overControls() bool {
	if !g.controls.IsVisible() {
		return false
	}
	m := rl.GetMousePosition()
	return m.X >= g.screenWidth-controlsWidth-10 && m.Y <= 190
}
