package fluid

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidConfiguration is returned when parameters or grid settings cannot
// produce a usable simulation.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// Bounds is an axis-aligned box.
type Bounds struct {
	Min, Max Vec3
}

// Contains reports whether p lies inside the box, faces included.
func (b Bounds) Contains(p Vec3) bool {
	for a := 0; a < 3; a++ {
		if p[a] < b.Min[a] || p[a] > b.Max[a] {
			return false
		}
	}
	return true
}

// Params holds the physical constants of one simulation.
// A Params value is never modified by the solver.
type Params struct {
	RestDensity     float32 // kg/m^3
	GasConstant     float32 // equation-of-state stiffness
	Viscosity       float32 // dynamic viscosity coefficient
	Mass            float32 // kg per particle
	SmoothingRadius float32 // kernel support h, m
	Gravity         float32 // m/s^2 along +y (negative pulls down)
	Damping         float32 // velocity scale on wall contact, normally negative
	TimeStep        float32 // s
	Bounds          Bounds
}

// Validate checks the parameters that the passes divide by or depend on.
func (p Params) Validate() error {
	fields := []struct {
		name string
		v    float32
	}{
		{"rest_density", p.RestDensity},
		{"gas_constant", p.GasConstant},
		{"viscosity", p.Viscosity},
		{"mass", p.Mass},
		{"smoothing_radius", p.SmoothingRadius},
		{"gravity", p.Gravity},
		{"damping", p.Damping},
		{"time_step", p.TimeStep},
	}
	for _, f := range fields {
		if !finite(f.v) {
			return fmt.Errorf("%w: %s is not finite (%v)", ErrInvalidConfiguration, f.name, f.v)
		}
	}

	if p.SmoothingRadius <= 0 {
		return fmt.Errorf("%w: smoothing_radius must be positive, got %v", ErrInvalidConfiguration, p.SmoothingRadius)
	}
	if p.Mass <= 0 {
		return fmt.Errorf("%w: mass must be positive, got %v", ErrInvalidConfiguration, p.Mass)
	}
	if p.TimeStep <= 0 {
		return fmt.Errorf("%w: time_step must be positive, got %v", ErrInvalidConfiguration, p.TimeStep)
	}
	for a, axis := range [3]string{"x", "y", "z"} {
		lo, hi := p.Bounds.Min[a], p.Bounds.Max[a]
		if !finite(lo) || !finite(hi) || lo >= hi {
			return fmt.Errorf("%w: bounds on %s must satisfy min < max, got [%v, %v]",
				ErrInvalidConfiguration, axis, lo, hi)
		}
	}
	return nil
}

func finite(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
