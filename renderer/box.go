package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/sph/camera"
	"github.com/pthm-cable/sph/fluid"
)

// DrawBounds draws the container as a wireframe cube.
func DrawBounds(b fluid.Bounds, color rl.Color) {
	c := b.Min.Add(b.Max).Mul(0.5)
	size := b.Max.Sub(b.Min)
	rl.DrawCubeWiresV(
		rl.NewVector3(c[0], c[1], c[2]),
		rl.NewVector3(size[0], size[1], size[2]),
		color,
	)
}

// Camera3D converts an orbit camera into the raylib camera for BeginMode3D.
func Camera3D(cam *camera.Camera) rl.Camera3D {
	eye := cam.Eye()
	return rl.Camera3D{
		Position:   rl.NewVector3(eye[0], eye[1], eye[2]),
		Target:     rl.NewVector3(cam.Target[0], cam.Target[1], cam.Target[2]),
		Up:         rl.NewVector3(0, 1, 0),
		Fovy:       mgl32.RadToDeg(cam.FOV),
		Projection: rl.CameraPerspective,
	}
}
