// Package config provides configuration loading and access for the sandbox.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/sandfall/elements"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all sandbox configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	World      WorldConfig      `yaml:"world"`
	Simulation SimulationConfig `yaml:"simulation"`
	Brush      BrushConfig      `yaml:"brush"`
	Elements   ElementsConfig   `yaml:"elements"`
	Terrain    TerrainConfig    `yaml:"terrain"`
	Render     RenderConfig     `yaml:"render"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
	CellSize  int `yaml:"cell_size"` // Screen pixels per grid cell at zoom 1
}

// WorldConfig holds grid dimensions in cells.
type WorldConfig struct {
	Width    int `yaml:"width"`    // 0 = screen width / cell size
	Height   int `yaml:"height"`   // 0 = screen height / cell size
	Capacity int `yaml:"capacity"` // Initial particle store capacity
}

// SimulationConfig holds tick loop parameters.
type SimulationConfig struct {
	TickRate         float64 `yaml:"tick_rate"`           // Ticks per second
	MaxTicksPerFrame int     `yaml:"max_ticks_per_frame"` // Owed ticks beyond this are dropped
	Stepper          string  `yaml:"stepper"`             // "falling" or "none"
	Validate         bool    `yaml:"validate"`            // Check the grid/store invariant after every tick
	Seed             int64   `yaml:"seed"`
	StartPaused      bool    `yaml:"start_paused"`
}

// BrushConfig holds the initial brush.
type BrushConfig struct {
	Radius    float64 `yaml:"radius"`
	MinRadius float64 `yaml:"min_radius"`
	MaxRadius float64 `yaml:"max_radius"`
	Step      float64 `yaml:"step"`    // Radius change per wheel notch
	Element   string  `yaml:"element"` // Element name drawn at startup
}

// ElementsConfig lists user-defined elements appended after the built-ins.
type ElementsConfig struct {
	Custom []ElementConfig `yaml:"custom"`
}

// ElementConfig describes one custom element.
type ElementConfig struct {
	Name    string    `yaml:"name"`
	Color   []float32 `yaml:"color"` // RGB or RGBA in [0, 1]
	Gravity float64   `yaml:"gravity"`
	Density float64   `yaml:"density"`
	Flow    int       `yaml:"flow"`
}

// TerrainConfig holds initial dune generation parameters.
type TerrainConfig struct {
	Enabled    bool    `yaml:"enabled"`
	Element    string  `yaml:"element"`
	BaseHeight float64 `yaml:"base_height"` // Fraction of world height
	Amplitude  float64 `yaml:"amplitude"`   // Fraction of world height
	Scale      float64 `yaml:"scale"`       // Noise frequency per cell
	Alpha      float64 `yaml:"alpha"`       // Perlin persistence
	Beta       float64 `yaml:"beta"`        // Perlin lacunarity
	Octaves    int32   `yaml:"octaves"`
	Seed       int64   `yaml:"seed"`
}

// RenderConfig holds pixel mapping settings.
type RenderConfig struct {
	EmptyColor []float32 `yaml:"empty_color"` // RGBA for unclaimed cells
	FlipY      bool      `yaml:"flip_y"`      // World y points up; screens point down
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"` // Seconds per stats window
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	TickDuration time.Duration
	WorldW       int // Effective grid width in cells
	WorldH       int // Effective grid height in cells
	ScreenW32    float32
	ScreenH32    float32
	EmptyColor   elements.Color
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
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse is like Load but reads the overlay from memory.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// computeDerived validates the loaded values and fills Derived.
func (c *Config) computeDerived() error {
	if c.Simulation.TickRate <= 0 {
		return fmt.Errorf("simulation.tick_rate must be positive, got %v", c.Simulation.TickRate)
	}
	if c.Simulation.MaxTicksPerFrame < 1 {
		c.Simulation.MaxTicksPerFrame = 1
	}
	if c.Screen.CellSize < 1 {
		c.Screen.CellSize = 1
	}
	if c.Brush.MinRadius < 0 || c.Brush.MaxRadius < c.Brush.MinRadius {
		return fmt.Errorf("brush radius bounds [%v, %v] invalid", c.Brush.MinRadius, c.Brush.MaxRadius)
	}
	c.Brush.Radius = min(max(c.Brush.Radius, c.Brush.MinRadius), c.Brush.MaxRadius)

	c.Derived.TickDuration = time.Duration(float64(time.Second) / c.Simulation.TickRate)
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)

	// World dimensions default to the screen in cells
	c.Derived.WorldW = c.World.Width
	if c.Derived.WorldW == 0 {
		c.Derived.WorldW = c.Screen.Width / c.Screen.CellSize
	}
	c.Derived.WorldH = c.World.Height
	if c.Derived.WorldH == 0 {
		c.Derived.WorldH = c.Screen.Height / c.Screen.CellSize
	}
	if c.Derived.WorldW <= 0 || c.Derived.WorldH <= 0 {
		return fmt.Errorf("world size %dx%d invalid", c.Derived.WorldW, c.Derived.WorldH)
	}

	empty, err := parseColor(c.Render.EmptyColor)
	if err != nil {
		return fmt.Errorf("render.empty_color: %w", err)
	}
	c.Derived.EmptyColor = empty
	return nil
}

// SetWorldSize overrides the grid dimensions, for frontends whose surface
// decides the world size.
func (c *Config) SetWorldSize(w, h int) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("world size %dx%d invalid", w, h)
	}
	c.World.Width, c.World.Height = w, h
	c.Derived.WorldW, c.Derived.WorldH = w, h
	return nil
}

// Registry builds the element registry: the built-in elements followed by
// elements.custom in file order.
func (c *Config) Registry() (*elements.Registry, error) {
	reg := elements.DefaultRegistry()
	for i, ec := range c.Elements.Custom {
		col, err := parseColor(ec.Color)
		if err != nil {
			return nil, fmt.Errorf("elements.custom[%d] %q: %w", i, ec.Name, err)
		}
		_, err = reg.Register(elements.Element{
			Name:    ec.Name,
			Color:   col,
			Gravity: ec.Gravity,
			Density: ec.Density,
			Flow:    ec.Flow,
		})
		if err != nil {
			return nil, fmt.Errorf("elements.custom[%d]: %w", i, err)
		}
	}
	return reg, nil
}

// parseColor accepts empty (transparent), RGB or RGBA.
func parseColor(v []float32) (elements.Color, error) {
	switch len(v) {
	case 0:
		return elements.Transparent, nil
	case 3:
		return elements.NewRGB(v[0], v[1], v[2])
	case 4:
		return elements.NewColor(v[0], v[1], v[2], v[3])
	default:
		return elements.Color{}, fmt.Errorf("color needs 3 or 4 channels, got %d", len(v))
	}
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
