// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/sph/fluid"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Preset    string          `yaml:"preset"`
	Fluid     FluidConfig     `yaml:"fluid"`
	Grid      GridConfig      `yaml:"grid"`
	Run       RunConfig       `yaml:"run"`
	Foam      FoamConfig      `yaml:"foam"`
	Screen    ScreenConfig    `yaml:"screen"`
	Camera    CameraConfig    `yaml:"camera"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// FluidConfig holds the physical constants. Fields left out of a user file
// keep the value of the selected preset.
type FluidConfig struct {
	RestDensity     float64    `yaml:"rest_density"`     // kg/m^3
	GasConstant     float64    `yaml:"gas_constant"`     // Pressure stiffness
	Viscosity       float64    `yaml:"viscosity"`        // Dynamic viscosity
	Mass            float64    `yaml:"mass"`             // kg per particle
	SmoothingRadius float64    `yaml:"smoothing_radius"` // Kernel support h
	Gravity         float64    `yaml:"gravity"`          // m/s^2 along y
	Damping         float64    `yaml:"damping"`          // Velocity scale on wall contact
	TimeStep        float64    `yaml:"time_step"`        // Seconds per tick
	BoundsMin       [3]float64 `yaml:"bounds_min"`
	BoundsMax       [3]float64 `yaml:"bounds_max"`
}

// GridConfig holds the initial lattice.
type GridConfig struct {
	NumX    int        `yaml:"num_x"`
	NumY    int        `yaml:"num_y"`
	NumZ    int        `yaml:"num_z"`
	Spacing float64    `yaml:"spacing"`
	Origin  [3]float64 `yaml:"origin"`
	Jitter  float64    `yaml:"jitter"` // Fraction of spacing, 0 disables
	Seed    int64      `yaml:"seed"`
}

// RunConfig holds loop settings.
type RunConfig struct {
	StepsPerUpdate   int  `yaml:"steps_per_update"`   // Solver ticks per frame / update
	CheckEvery       int  `yaml:"check_every"`        // Degeneracy scan interval in ticks (0 = off)
	HaltOnDegeneracy bool `yaml:"halt_on_degeneracy"` // Stop instead of logging
	Workers          int  `yaml:"workers"`            // Goroutines per pass (0 = GOMAXPROCS, 1 = serial)
}

// FoamConfig holds the speed ramp used for foam shading.
type FoamConfig struct {
	Threshold float64 `yaml:"threshold"`
	MaxSpeed  float64 `yaml:"max_speed"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// CameraConfig holds the initial orbit camera.
type CameraConfig struct {
	Distance float64 `yaml:"distance"` // From the box center
	Yaw      float64 `yaml:"yaw"`      // Degrees
	Pitch    float64 `yaml:"pitch"`    // Degrees
	FOV      float64 `yaml:"fov"`      // Vertical, degrees
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"` // Simulated seconds per stats window
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Params    fluid.Params     // Fluid section as solver parameters
	Grid      fluid.GridSpec   // Grid section as lattice spec
	Foam      fluid.FoamParams // Foam section as float32 ramp
	ScreenW32 float32          // Screen.Width as float32
	ScreenH32 float32          // Screen.Height as float32
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Set replaces the global configuration.
func Set(cfg *Config) {
	global = cfg
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	return LoadPreset(path, "")
}

// LoadPreset is like Load but selects the named fluid preset, overriding the
// preset key of both the defaults and the user file. Explicit fluid values in
// the user file still win over the preset.
func LoadPreset(path, preset string) (*Config, error) {
	var user []byte
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		user = data
	}

	// First pass only resolves the preset name.
	cfg := &Config{}
	if err := cfg.overlay(user); err != nil {
		return nil, err
	}
	if preset != "" {
		cfg.Preset = preset
	}
	params, err := fluid.Preset(cfg.Preset)
	if err != nil {
		return nil, err
	}

	// Second pass lays defaults and the user file over the preset values.
	name := cfg.Preset
	cfg = &Config{Fluid: FluidFromParams(params)}
	if err := cfg.overlay(user); err != nil {
		return nil, err
	}
	cfg.Preset = name

	if err := cfg.Recompute(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// overlay unmarshals the embedded defaults and then the user file into c.
// Unmarshal only overwrites fields present in each document.
func (c *Config) overlay(user []byte) error {
	if err := yaml.Unmarshal(defaultsYAML, c); err != nil {
		return fmt.Errorf("parsing embedded defaults: %w", err)
	}
	if user != nil {
		if err := yaml.Unmarshal(user, c); err != nil {
			return fmt.Errorf("parsing config file: %w", err)
		}
	}
	return nil
}

// Recompute refreshes derived values after fields were changed in place and
// validates them.
func (c *Config) Recompute() error {
	c.computeDerived()
	return c.Validate()
}

// Validate checks the derived solver inputs. The fluid package owns the rules.
func (c *Config) Validate() error {
	if err := c.Derived.Params.Validate(); err != nil {
		return fmt.Errorf("fluid: %w", err)
	}
	if err := c.Derived.Grid.Validate(); err != nil {
		return fmt.Errorf("grid: %w", err)
	}
	if err := c.Derived.Foam.Validate(); err != nil {
		return fmt.Errorf("foam: %w", err)
	}
	if c.Run.StepsPerUpdate < 1 {
		return fmt.Errorf("run: %w: steps_per_update must be at least 1, got %d",
			fluid.ErrInvalidConfiguration, c.Run.StepsPerUpdate)
	}
	if c.Run.CheckEvery < 0 {
		return fmt.Errorf("run: %w: check_every must not be negative, got %d",
			fluid.ErrInvalidConfiguration, c.Run.CheckEvery)
	}
	if c.Run.Workers < 0 {
		return fmt.Errorf("run: %w: workers must not be negative, got %d",
			fluid.ErrInvalidConfiguration, c.Run.Workers)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.Params = c.Fluid.Params()
	c.Derived.Grid = c.Grid.Spec()
	c.Derived.Foam = fluid.FoamParams{
		Threshold: float32(c.Foam.Threshold),
		MaxSpeed:  float32(c.Foam.MaxSpeed),
	}
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)
}

// Params converts the section to solver parameters.
func (f FluidConfig) Params() fluid.Params {
	return fluid.Params{
		RestDensity:     float32(f.RestDensity),
		GasConstant:     float32(f.GasConstant),
		Viscosity:       float32(f.Viscosity),
		Mass:            float32(f.Mass),
		SmoothingRadius: float32(f.SmoothingRadius),
		Gravity:         float32(f.Gravity),
		Damping:         float32(f.Damping),
		TimeStep:        float32(f.TimeStep),
		Bounds: fluid.Bounds{
			Min: vec3(f.BoundsMin),
			Max: vec3(f.BoundsMax),
		},
	}
}

// FluidFromParams is the inverse of FluidConfig.Params.
func FluidFromParams(p fluid.Params) FluidConfig {
	return FluidConfig{
		RestDensity:     float64(p.RestDensity),
		GasConstant:     float64(p.GasConstant),
		Viscosity:       float64(p.Viscosity),
		Mass:            float64(p.Mass),
		SmoothingRadius: float64(p.SmoothingRadius),
		Gravity:         float64(p.Gravity),
		Damping:         float64(p.Damping),
		TimeStep:        float64(p.TimeStep),
		BoundsMin:       arr3(p.Bounds.Min),
		BoundsMax:       arr3(p.Bounds.Max),
	}
}

// Spec converts the section to a lattice spec.
func (g GridConfig) Spec() fluid.GridSpec {
	return fluid.GridSpec{
		NumX:    g.NumX,
		NumY:    g.NumY,
		NumZ:    g.NumZ,
		Spacing: float32(g.Spacing),
		Origin:  vec3(g.Origin),
		Jitter:  float32(g.Jitter),
		Seed:    g.Seed,
	}
}

// GridFromSpec is the inverse of GridConfig.Spec.
func GridFromSpec(s fluid.GridSpec) GridConfig {
	return GridConfig{
		NumX:    s.NumX,
		NumY:    s.NumY,
		NumZ:    s.NumZ,
		Spacing: float64(s.Spacing),
		Origin:  arr3(s.Origin),
		Jitter:  float64(s.Jitter),
		Seed:    s.Seed,
	}
}

func vec3(a [3]float64) fluid.Vec3 {
	return fluid.Vec3{float32(a[0]), float32(a[1]), float32(a[2])}
}

func arr3(v fluid.Vec3) [3]float64 {
	return [3]float64{float64(v[0]), float64(v[1]), float64(v[2])}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
