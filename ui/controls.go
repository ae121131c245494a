package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// ControlActions reports what the user clicked this frame.
type ControlActions struct {
	TogglePause    bool
	Step           bool
	Reset          bool
	Snapshot       bool
	StepsPerUpdate int // new value, equal to the input when unchanged
}

// ControlsPanel renders the right-side raygui panel with run controls.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool

	maxSteps int
}

// NewControlsPanel creates a new controls panel. maxSteps bounds the
// speed slider.
func NewControlsPanel(x, y, width int32, maxSteps int) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		visible:  true,
		maxSteps: maxSteps,
	}
}

// SetPosition updates the panel position.
func (c *ControlsPanel) SetPosition(x, y int32) {
	c.x = x
	c.y = y
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Draw renders the panel and returns the actions taken.
func (c *ControlsPanel) Draw(paused bool, stepsPerUpdate int) ControlActions {
	actions := ControlActions{StepsPerUpdate: stepsPerUpdate}
	if !c.visible {
		return actions
	}

	r := c.renderer
	padding := float32(r.Theme.Padding)
	x := float32(c.x) + padding
	y := float32(c.y) + padding
	inner := float32(c.width) - padding*2
	half := (inner - padding) / 2

	r.DrawPanel(c.x, c.y, c.width, 170)

	rl.DrawText("Controls", int32(x), int32(y), 16, rl.White)
	y += 24

	if gui.Button(rl.Rectangle{X: x, Y: y, Width: half, Height: 28}, toggleText(paused, "Resume", "Pause")) {
		actions.TogglePause = true
	}
	if gui.Button(rl.Rectangle{X: x + half + padding, Y: y, Width: half, Height: 28}, "Step") {
		actions.Step = true
	}
	y += 36

	if gui.Button(rl.Rectangle{X: x, Y: y, Width: half, Height: 28}, "Reset") {
		actions.Reset = true
	}
	if gui.Button(rl.Rectangle{X: x + half + padding, Y: y, Width: half, Height: 28}, "Snapshot") {
		actions.Snapshot = true
	}
	y += 40

	rl.DrawText("Steps per frame", int32(x), int32(y), r.Theme.FontSize, r.Theme.LabelColor)
	y += 16
	v := gui.SliderBar(
		rl.Rectangle{X: x, Y: y, Width: inner - 40, Height: 20},
		"", "",
		float32(stepsPerUpdate), 1, float32(c.maxSteps),
	)
	rl.DrawText(fmt.Sprintf("%d", stepsPerUpdate), int32(x+inner-32), int32(y+3), 14, r.Theme.ValueColor)
	if n := int(v + 0.5); n != stepsPerUpdate {
		actions.StepsPerUpdate = n
	}

	return actions
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
