// Package camera provides an orbit camera for viewing the fluid box.
package camera

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// Pitch limit keeps the eye off the poles where the up vector degenerates.
const maxPitch = 1.4

// Clip planes in world units.
const (
	nearPlane = 0.01
	farPlane  = 100.0
)

// Camera orbits a target point at a given distance.
type Camera struct {
	// Target is the point the camera looks at
	Target mgl32.Vec3

	// Distance from eye to target
	Distance float32

	// Yaw around +y and pitch above the xz-plane, radians
	Yaw, Pitch float32

	// Vertical field of view, radians
	FOV float32

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	// Distance constraints
	MinDistance, MaxDistance float32

	home struct {
		distance, yaw, pitch float32
	}

	// Squared eye distances, reused by FarToNear
	depth []float32
}

// New creates a camera looking at target. Angles are in degrees.
func New(viewportW, viewportH float32, target mgl32.Vec3, distance, yawDeg, pitchDeg, fovDeg float32) *Camera {
	c := &Camera{
		Target:      target,
		Distance:    distance,
		Yaw:         mgl32.DegToRad(yawDeg),
		Pitch:       clamp(mgl32.DegToRad(pitchDeg), -maxPitch, maxPitch),
		FOV:         mgl32.DegToRad(fovDeg),
		ViewportW:   viewportW,
		ViewportH:   viewportH,
		MinDistance: distance / 4,
		MaxDistance: distance * 4,
	}
	c.home.distance = c.Distance
	c.home.yaw = c.Yaw
	c.home.pitch = c.Pitch
	return c
}

// Eye returns the camera position in world coordinates.
func (c *Camera) Eye() mgl32.Vec3 {
	cp := float32(math.Cos(float64(c.Pitch)))
	offset := mgl32.Vec3{
		c.Distance * cp * float32(math.Cos(float64(c.Yaw))),
		c.Distance * float32(math.Sin(float64(c.Pitch))),
		c.Distance * cp * float32(math.Sin(float64(c.Yaw))),
	}
	return c.Target.Add(offset)
}

// View returns the world-to-camera matrix.
func (c *Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Eye(), c.Target, mgl32.Vec3{0, 1, 0})
}

// Projection returns the perspective matrix for the current viewport.
func (c *Camera) Projection() mgl32.Mat4 {
	aspect := float32(1)
	if c.ViewportH > 0 {
		aspect = c.ViewportW / c.ViewportH
	}
	return mgl32.Perspective(c.FOV, aspect, nearPlane, farPlane)
}

// WorldToScreen projects p to pixel coordinates with y pointing down.
// visible is false for points behind the eye or outside the view frustum.
func (c *Camera) WorldToScreen(p mgl32.Vec3) (sx, sy float32, visible bool) {
	clip := c.Projection().Mul4(c.View()).Mul4x1(p.Vec4(1))
	w := clip.W()
	if w <= 0 {
		return 0, 0, false
	}
	nx, ny, nz := clip.X()/w, clip.Y()/w, clip.Z()/w

	sx = (nx + 1) / 2 * c.ViewportW
	sy = (1 - ny) / 2 * c.ViewportH
	visible = nx >= -1 && nx <= 1 && ny >= -1 && ny <= 1 && nz >= -1 && nz <= 1
	return sx, sy, visible
}

// FarToNear writes particle indices into dst ordered by decreasing distance
// from the eye and returns it. Equal distances keep index order. positions
// itself is not reordered.
func (c *Camera) FarToNear(positions []mgl32.Vec3, dst []int) []int {
	n := len(positions)
	if cap(dst) < n {
		dst = make([]int, n)
	}
	dst = dst[:n]

	if cap(c.depth) < n {
		c.depth = make([]float32, n)
	}
	depth := c.depth[:n]

	eye := c.Eye()
	for i, p := range positions {
		d := p.Sub(eye)
		depth[i] = d.Dot(d)
		dst[i] = i
	}

	sort.SliceStable(dst, func(a, b int) bool {
		return depth[dst[a]] > depth[dst[b]]
	})
	return dst
}

// Orbit rotates the eye around the target by the given angles in radians.
func (c *Camera) Orbit(dYaw, dPitch float32) {
	c.Yaw = float32(math.Mod(float64(c.Yaw+dYaw), 2*math.Pi))
	c.Pitch = clamp(c.Pitch+dPitch, -maxPitch, maxPitch)
}

// SetDistance sets the eye distance, clamped to min/max.
func (c *Camera) SetDistance(d float32) {
	c.Distance = clamp(d, c.MinDistance, c.MaxDistance)
}

// ZoomBy moves the eye closer by factor (>1 zooms in).
func (c *Camera) ZoomBy(factor float32) {
	if factor <= 0 {
		return
	}
	c.SetDistance(c.Distance / factor)
}

// Resize updates viewport dimensions.
func (c *Camera) Resize(viewportW, viewportH float32) {
	c.ViewportW = viewportW
	c.ViewportH = viewportH
}

// Reset returns the camera to its initial orbit.
func (c *Camera) Reset() {
	c.Distance = c.home.distance
	c.Yaw = c.home.yaw
	c.Pitch = c.home.pitch
}

// clamp restricts a value to a range.
func clamp(x, min, max float32) float32 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
