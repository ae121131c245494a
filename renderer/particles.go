// Package renderer draws simulation frames with raylib.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sph/camera"
	"github.com/pthm-cable/sph/sim"
)

// ParticleRenderer draws fluid particles as spheres tinted by foam.
type ParticleRenderer struct {
	Radius float32

	water rl.Color
	foam  rl.Color

	order []int
}

// NewParticleRenderer creates a particle renderer with the given sphere radius.
func NewParticleRenderer(radius float32) *ParticleRenderer {
	return &ParticleRenderer{
		Radius: radius,
		water:  rl.Color{R: 40, G: 110, B: 200, A: 200},
		foam:   rl.Color{R: 235, G: 245, B: 255, A: 230},
	}
}

// Draw renders all particles far to near so translucent spheres blend
// correctly. Must be called between BeginMode3D and EndMode3D.
func (r *ParticleRenderer) Draw(frame *sim.Frame, cam *camera.Camera) {
	r.order = cam.FarToNear(frame.Positions, r.order)

	for _, i := range r.order {
		p := frame.Positions[i]

		color := r.water
		if i < len(frame.Foam) {
			color = rl.ColorLerp(r.water, r.foam, frame.Foam[i])
		}

		rl.DrawSphereEx(rl.NewVector3(p[0], p[1], p[2]), r.Radius, 6, 8, color)
	}
}
