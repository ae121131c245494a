package fluid

import (
	"fmt"
	"sort"
)

// UnitBox is the [0,1]^3 container used by the built-in presets.
var UnitBox = Bounds{Min: Vec3{0, 0, 0}, Max: Vec3{1, 1, 1}}

// DefaultParams is the water-like parameter set the demo runs with.
func DefaultParams() Params {
	return Params{
		RestDensity:     1000,
		GasConstant:     2000,
		Viscosity:       0.1,
		Mass:            0.02,
		SmoothingRadius: 0.045,
		Gravity:         -9.81,
		Damping:         -0.5,
		TimeStep:        0.005,
		Bounds:          UnitBox,
	}
}

// ZeroGravityParams is a soft, weightless set with a bouncier wall. The
// negative viscosity is kept as-is; it amplifies relative motion.
func ZeroGravityParams() Params {
	return Params{
		RestDensity:     1000,
		GasConstant:     500,
		Viscosity:       -0.5,
		Mass:            0.02,
		SmoothingRadius: 0.045,
		Gravity:         0,
		Damping:         -0.9,
		TimeStep:        0.005,
		Bounds:          UnitBox,
	}
}

var presets = map[string]func() Params{
	"default":      DefaultParams,
	"zero_gravity": ZeroGravityParams,
}

// PresetNames lists the built-in parameter sets in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Preset returns a built-in parameter set by name.
func Preset(name string) (Params, error) {
	fn, ok := presets[name]
	if !ok {
		return Params{}, fmt.Errorf("%w: unknown preset %q (have %v)", ErrInvalidConfiguration, name, PresetNames())
	}
	return fn(), nil
}

// Built-in lattices. Origins keep the whole block inside UnitBox.
var grids = map[string]GridSpec{
	"tiny":  {NumX: 2, NumY: 2, NumZ: 2, Spacing: 0.05, Origin: Vec3{0.45, 0.45, 0.45}},
	"demo":  {NumX: 5, NumY: 5, NumZ: 5, Spacing: 0.05, Origin: Vec3{0.4, 0.4, 0.4}},
	"large": {NumX: 10, NumY: 10, NumZ: 10, Spacing: 0.05, Origin: Vec3{0.25, 0.25, 0.25}},
}

// GridNames lists the built-in lattices in sorted order.
func GridNames() []string {
	names := make([]string, 0, len(grids))
	for name := range grids {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GridPreset returns a built-in lattice by name.
func GridPreset(name string) (GridSpec, error) {
	g, ok := grids[name]
	if !ok {
		return GridSpec{}, fmt.Errorf("%w: unknown grid %q (have %v)", ErrInvalidConfiguration, name, GridNames())
	}
	return g, nil
}
