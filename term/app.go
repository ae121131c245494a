package term

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/sph/camera"
	"github.com/pthm-cable/sph/config"
	"github.com/pthm-cable/sph/sim"
)

// Orbit step per arrow key press, radians.
const orbitStep = 0.1

// App couples a simulation with a terminal view and keyboard controls.
type App struct {
	screen tcell.Screen
	sim    *sim.Sim
	view   *View
	frame  *sim.Frame

	// One-line message replacing the stats line (snapshot path, errors)
	message string
}

// NewApp creates an app on an initialized screen.
func NewApp(screen tcell.Screen, s *sim.Sim, cfg *config.Config) *App {
	params := s.Params()
	center := params.Bounds.Min.Add(params.Bounds.Max).Mul(0.5)
	w, h := screen.Size()

	cam := camera.New(float32(w), float32((h-statusRows)*2), center,
		float32(cfg.Camera.Distance), float32(cfg.Camera.Yaw),
		float32(cfg.Camera.Pitch), float32(cfg.Camera.FOV))

	return &App{
		screen: screen,
		sim:    s,
		view:   NewView(screen, cam, params.RestDensity),
		frame:  s.Frame(),
	}
}

// HandleEvent applies one input event. It returns false when the user
// asked to quit.
func (a *App) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return a.handleKey(ev)
	case *tcell.EventResize:
		a.screen.Sync()
	}
	return true
}

func (a *App) handleKey(ev *tcell.EventKey) bool {
	cam := a.view.Camera()

	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyLeft:
		cam.Orbit(-orbitStep, 0)
	case tcell.KeyRight:
		cam.Orbit(orbitStep, 0)
	case tcell.KeyUp:
		cam.Orbit(0, orbitStep)
	case tcell.KeyDown:
		cam.Orbit(0, -orbitStep)
	case tcell.KeyHome:
		cam.Reset()
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return false
		case ' ':
			a.sim.TogglePause()
		case 'n':
			if a.sim.Paused() {
				if err := a.sim.Step(); err != nil {
					a.message = err.Error()
				}
			}
		case ',':
			a.sim.SetStepsPerUpdate(a.sim.StepsPerUpdate() - 1)
		case '.':
			a.sim.SetStepsPerUpdate(a.sim.StepsPerUpdate() + 1)
		case '+', '=':
			cam.ZoomBy(1.25)
		case '-':
			cam.ZoomBy(0.8)
		case 'r':
			if err := a.sim.Reset(); err != nil {
				a.message = fmt.Sprintf("reset failed: %v", err)
			} else {
				a.message = ""
			}
		case 's':
			if path, err := a.sim.SaveSnapshot(); err != nil {
				a.message = fmt.Sprintf("snapshot failed: %v", err)
			} else {
				a.message = "saved " + path
			}
		}
	}
	a.frame = a.sim.FrameInto(a.frame)
	return true
}

// Update advances the simulation by one update and refreshes the frame.
func (a *App) Update() {
	if err := a.sim.Update(); err != nil && a.message == "" {
		a.message = err.Error()
	}
	a.frame = a.sim.FrameInto(a.frame)
}

// Draw renders the current frame.
func (a *App) Draw() {
	a.view.Draw(a.frame, a.message)
}

// Frame returns the frame last drawn or about to be drawn.
func (a *App) Frame() *sim.Frame {
	return a.frame
}

// Run drives update and draw at fps until the user quits or ctx is done.
// The screen is not finalized.
func (a *App) Run(ctx context.Context, fps int) error {
	if fps <= 0 {
		fps = 30
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	quit := make(chan struct{})
	defer close(quit)
	go a.screen.ChannelEvents(events, quit)

	slog.Info("terminal view started", "particles", a.sim.Len(), "fps", fps)

	a.Draw()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if ev == nil {
				return nil
			}
			if !a.HandleEvent(ev) {
				return nil
			}
			a.Draw()
		case <-ticker.C:
			a.Update()
			a.Draw()
		}
	}
}
