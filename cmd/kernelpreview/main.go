// Kernel preview tool - plots the smoothing kernels and the lattice density
// they produce, with sliders for radius, mass and spacing.
//
// Usage: go run ./cmd/kernelpreview
package main

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	windowWidth  = 1000
	windowHeight = 600
	plotSize     = 512
	panelWidth   = windowWidth - plotSize - 50
	samples      = 128
)

var (
	poly6Color = rl.Color{R: 40, G: 110, B: 200, A: 255}
	spikyColor = rl.Color{R: 200, G: 80, B: 60, A: 255}
	viscColor  = rl.Color{R: 60, G: 160, B: 90, A: 255}
)

func main() {
	rl.InitWindow(windowWidth, windowHeight, "Kernel Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	params := defaultPreview()
	profile := sampleProfile(params.SmoothingRadius, samples)

	for !rl.WindowShouldClose() {
		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		drawPlot(profile, 10, 10)

		density := latticeDensity(params)
		statsY := int32(plotSize + 30)
		rl.DrawText(fmt.Sprintf("Lattice density: %.1f  (rest %.0f, ratio %.2f)",
			density, params.RestDensity, density/params.RestDensity), 15, statsY, 16, rl.DarkGray)
		rl.DrawText(fmt.Sprintf("Mass for rest density: %.5f", restMass(params)), 15, statsY+20, 16, rl.DarkGray)

		// Control panel
		panelX := float32(plotSize + 30)
		panelY := float32(10)

		rl.DrawText("Kernel Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		newH := slider("Smoothing radius h", panelX, &panelY, params.SmoothingRadius, 0.01, 0.1, "%.3f")
		if newH != params.SmoothingRadius {
			params.SmoothingRadius = newH
			profile = sampleProfile(newH, samples)
		}
		params.Mass = slider("Particle mass", panelX, &panelY, params.Mass, 0.001, 0.1, "%.4f")
		params.Spacing = slider("Lattice spacing", panelX, &panelY, params.Spacing, 0.01, 0.1, "%.3f")
		params.RestDensity = slider("Rest density", panelX, &panelY, params.RestDensity, 100, 2000, "%.0f")
		panelY += 10

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Fit Mass") {
			params.Mass = restMass(params)
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Reset All") {
			params = defaultPreview()
			profile = sampleProfile(params.SmoothingRadius, samples)
		}
		panelY += 55

		rl.DrawText("YAML Config:", int32(panelX), int32(panelY), 16, rl.DarkGray)
		panelY += 25
		for _, line := range yamlLines(params) {
			rl.DrawText(line, int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 16
		}

		rl.DrawText("Press C to copy YAML to clipboard", int32(panelX), int32(windowHeight-30), 12, rl.LightGray)
		if rl.IsKeyPressed(rl.KeyC) {
			text := ""
			for _, line := range yamlLines(params) {
				text += line + "\n"
			}
			rl.SetClipboardText(text)
		}

		rl.EndDrawing()
	}
}

// slider draws a labelled slider and advances y.
func slider(label string, x float32, y *float32, value, min, max float32, format string) float32 {
	rl.DrawText(label, int32(x), int32(*y), 14, rl.Gray)
	*y += 18
	v := gui.SliderBar(
		rl.Rectangle{X: x, Y: *y, Width: float32(panelWidth - 80), Height: 20},
		"", "",
		value, min, max,
	)
	rl.DrawText(fmt.Sprintf(format, v), int32(x+float32(panelWidth-70)), int32(*y+2), 16, rl.DarkGray)
	*y += 35
	return v
}

// drawPlot draws the normalized kernel curves over r in [0, h].
func drawPlot(p Profile, x, y int32) {
	rl.DrawRectangleLines(x, y, plotSize, plotSize, rl.DarkGray)
	curve := func(v []float32, color rl.Color) {
		for i := 1; i < len(v); i++ {
			x0 := x + int32(float32(i-1)/float32(len(v)-1)*plotSize)
			x1 := x + int32(float32(i)/float32(len(v)-1)*plotSize)
			y0 := y + plotSize - int32(v[i-1]*plotSize)
			y1 := y + plotSize - int32(v[i]*plotSize)
			rl.DrawLine(x0, y0, x1, y1, color)
		}
	}
	curve(p.Poly6, poly6Color)
	curve(p.Spiky, spikyColor)
	curve(p.Viscosity, viscColor)

	rl.DrawText("poly6", x+plotSize-90, y+10, 14, poly6Color)
	rl.DrawText("|grad spiky|", x+plotSize-90, y+26, 14, spikyColor)
	rl.DrawText("lap viscosity", x+plotSize-90, y+42, 14, viscColor)
	rl.DrawText("r = 0", x, y+plotSize+4, 12, rl.Gray)
	rl.DrawText("r = h", x+plotSize-30, y+plotSize+4, 12, rl.Gray)
}

func yamlLines(p PreviewParams) []string {
	return []string{
		"fluid:",
		fmt.Sprintf("  smoothing_radius: %.4f", p.SmoothingRadius),
		fmt.Sprintf("  mass: %.5f", p.Mass),
		fmt.Sprintf("  rest_density: %.0f", p.RestDensity),
		"grid:",
		fmt.Sprintf("  spacing: %.4f", p.Spacing),
	}
}
