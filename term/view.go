// Package term renders simulation frames in a terminal with tcell.
package term

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/sph/camera"
	"github.com/pthm-cable/sph/sim"
)

// Rows reserved at the top for status text.
const statusRows = 2

// Density ramp, sparse to dense.
var ramp = []rune(".:-=+*#%@")

var (
	statusStyle = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	infoStyle   = tcell.StyleDefault.Foreground(tcell.ColorGray)
	haltStyle   = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	boxStyle    = tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
)

// View draws frames onto a tcell screen through an orbit camera.
// Terminal cells are about twice as tall as wide, so the camera viewport
// uses two vertical units per row.
type View struct {
	screen tcell.Screen
	camera *camera.Camera

	restDensity float32
	order       []int
}

// NewView creates a view. restDensity scales the density ramp.
func NewView(screen tcell.Screen, cam *camera.Camera, restDensity float32) *View {
	return &View{screen: screen, camera: cam, restDensity: restDensity}
}

// Camera returns the view camera.
func (v *View) Camera() *camera.Camera {
	return v.camera
}

// Draw renders the frame and a status line, then shows the screen.
func (v *View) Draw(frame *sim.Frame, message string) {
	s := v.screen
	s.Clear()

	w, h := s.Size()
	rows := h - statusRows
	if w <= 0 || rows <= 0 {
		s.Show()
		return
	}
	v.camera.Resize(float32(w), float32(rows*2))

	v.drawBounds(frame, w, rows)

	v.order = v.camera.FarToNear(frame.Positions, v.order)
	for _, i := range v.order {
		sx, sy, visible := v.camera.WorldToScreen(frame.Positions[i])
		if !visible {
			continue
		}
		x, y := int(sx), int(sy)/2
		if x < 0 || x >= w || y < 0 || y >= rows {
			continue
		}

		var foam float32
		if i < len(frame.Foam) {
			foam = frame.Foam[i]
		}
		s.SetContent(x, y+statusRows, ShadeRune(frame.Densities[i]/(2*v.restDensity)), nil,
			tcell.StyleDefault.Foreground(FoamColor(foam)))
	}

	v.drawStatus(frame, message, w)
	s.Show()
}

// drawBounds marks the eight box corners.
func (v *View) drawBounds(frame *sim.Frame, w, rows int) {
	lo, hi := frame.Bounds.Min, frame.Bounds.Max
	for c := 0; c < 8; c++ {
		p := lo
		if c&1 != 0 {
			p[0] = hi[0]
		}
		if c&2 != 0 {
			p[1] = hi[1]
		}
		if c&4 != 0 {
			p[2] = hi[2]
		}
		sx, sy, visible := v.camera.WorldToScreen(p)
		if !visible {
			continue
		}
		x, y := int(sx), int(sy)/2
		if x >= 0 && x < w && y >= 0 && y < rows {
			v.screen.SetContent(x, y+statusRows, '+', nil, boxStyle)
		}
	}
}

func (v *View) drawStatus(frame *sim.Frame, message string, w int) {
	state, style := "running", statusStyle
	switch {
	case frame.Halted:
		state, style = "HALTED", haltStyle
	case frame.Paused:
		state = "paused"
	}

	line := fmt.Sprintf("tick %d  t=%.3fs  n=%d  x%d  %s",
		frame.Tick, frame.SimTime, frame.Len(), frame.StepsPerUpdate, state)
	putString(v.screen, 0, 0, w, line, style)

	info := message
	if info == "" && frame.Stats.Particles > 0 {
		st := frame.Stats
		info = fmt.Sprintf("density mean %.1f p10/p50/p90 %.0f/%.0f/%.0f  vmax %.2f  foam %.2f",
			st.DensityMean, st.DensityP10, st.DensityP50, st.DensityP90, st.MaxSpeed, st.FoamMean)
	}
	putString(v.screen, 0, 1, w, info, infoStyle)
}

// ShadeRune maps v in [0, 1] onto the density ramp.
func ShadeRune(v float32) rune {
	i := int(v*float32(len(ramp)-1) + 0.5)
	if i < 0 || v != v {
		i = 0
	}
	if i >= len(ramp) {
		i = len(ramp) - 1
	}
	return ramp[i]
}

// FoamColor blends water blue toward white by foam in [0, 1].
func FoamColor(foam float32) tcell.Color {
	if foam < 0 {
		foam = 0
	}
	if foam > 1 {
		foam = 1
	}
	mix := func(a, b int32) int32 {
		return a + int32(float32(b-a)*foam)
	}
	return tcell.NewRGBColor(mix(40, 235), mix(110, 245), mix(200, 255))
}

func putString(s tcell.Screen, x, y, maxW int, str string, style tcell.Style) {
	for _, r := range str {
		if x >= maxW {
			return
		}
		s.SetContent(x, y, r, nil, style)
		x++
	}
}
