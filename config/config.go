// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen      ScreenConfig      `yaml:"screen"`
	Arena       ArenaConfig       `yaml:"arena"`
	Physics     PhysicsConfig     `yaml:"physics"`
	Car         CarConfig         `yaml:"car"`
	Sensors     SensorsConfig     `yaml:"sensors"`
	Neural      NeuralConfig      `yaml:"neural"`
	Fitness     FitnessConfig     `yaml:"fitness"`
	Mutation    MutationConfig    `yaml:"mutation"`
	Population  PopulationConfig  `yaml:"population"`
	Track       TrackConfig       `yaml:"track"`
	Leaderboard LeaderboardConfig `yaml:"leaderboard"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// ArenaConfig holds the drivable area. Zero values fall back to the screen size.
type ArenaConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// PhysicsConfig holds simulation physics parameters.
type PhysicsConfig struct {
	DT float64 `yaml:"dt"` // seconds per tick
}

// CarConfig holds vehicle dynamics parameters.
type CarConfig struct {
	HitboxWidth     float64 `yaml:"hitbox_width"`
	HitboxHeight    float64 `yaml:"hitbox_height"`
	MaxSpeed        float64 `yaml:"max_speed"`    // velocity normalisation
	MaxAccel        float64 `yaml:"max_accel"`    // full-throttle acceleration
	SteerWeight     float64 `yaml:"steer_weight"` // radians per unit steering output
	SteerBlend      float64 `yaml:"steer_blend"`  // heading lerp factor, multiplied by dt
	BrakingFactor   float64 `yaml:"braking_factor"`
	Friction        float64 `yaml:"friction"`         // longitudinal, dt-scaled
	LateralFriction float64 `yaml:"lateral_friction"` // instantaneous per tick
}

// SensorsConfig holds ray sensor parameters.
type SensorsConfig struct {
	NumRays         int     `yaml:"num_rays"`
	FieldOfView     float64 `yaml:"field_of_view"`    // degrees, centred on heading
	ReferenceLength float64 `yaml:"reference_length"` // distances are divided by this
	ReachFactor     float64 `yaml:"reach_factor"`     // ray length = reference_length * reach_factor
}

// NeuralConfig holds network topology and initialisation ranges.
type NeuralConfig struct {
	HiddenLayers     []int   `yaml:"hidden_layers"` // Sizes of hidden layers, e.g. [12, 8, 5]
	NumOutputs       int     `yaml:"num_outputs"`
	OutputActivation string  `yaml:"output_activation"`
	HiddenActivation string  `yaml:"hidden_activation"`
	WeightInitRange  float64 `yaml:"weight_init_range"` // weights ~ U[-r, r]
	BiasInitRange    float64 `yaml:"bias_init_range"`   // biases ~ U[-r, r]
}

// FitnessConfig holds the scoring constants.
type FitnessConfig struct {
	SectorBonus           int `yaml:"sector_bonus"`
	LapBonus              int `yaml:"lap_bonus"`
	AverageSpeedFactor    int `yaml:"average_speed_factor"`
	SectorSpeedMultiplier int `yaml:"sector_speed_multiplier"`
	BackSectorPunishment  int `yaml:"back_sector_punishment"`
	BackLapPunishment     int `yaml:"back_lap_punishment"`
	CrashPunishment       int `yaml:"crash_punishment"`
}

// MutationConfig holds the two-stage mutation parameters.
// "Replace" draws a fresh value, "perturb" adds a uniform delta.
type MutationConfig struct {
	WeightReplaceRate  float64 `yaml:"weight_replace_rate"`
	WeightPerturbRate  float64 `yaml:"weight_perturb_rate"`
	BiasReplaceRate    float64 `yaml:"bias_replace_rate"`
	BiasPerturbRate    float64 `yaml:"bias_perturb_rate"`
	WeightReplaceRange float64 `yaml:"weight_replace_range"`
	BiasReplaceRange   float64 `yaml:"bias_replace_range"`
	PerturbRange       float64 `yaml:"perturb_range"`
}

// PopulationConfig holds generation parameters.
type PopulationConfig struct {
	Size      int `yaml:"size"`
	TimeLimit int `yaml:"time_limit"` // ticks per generation
	Workers   int `yaml:"workers"`    // 0 = GOMAXPROCS
}

// PointConfig is a 2D waypoint.
type PointConfig struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// TrackConfig holds the circuit definition.
type TrackConfig struct {
	Width     float64       `yaml:"width"`
	Waypoints []PointConfig `yaml:"waypoints"`
}

// LeaderboardConfig holds lap leaderboard settings.
type LeaderboardConfig struct {
	Capacity int `yaml:"capacity"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	PerfCollectorWindow int `yaml:"perf_collector_window"`
	PerfLogInterval     int `yaml:"perf_log_interval"` // ticks between perf log lines, 0 = off
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32      float32 // Physics.DT as float32
	NumInputs int     // Sensors.NumRays + 6
	ArenaW32  float32 // Effective arena width as float32
	ArenaH32  float32 // Effective arena height as float32
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
	cfg, err := Defaults()
	if err != nil {
		return nil, err
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// Defaults returns a fresh copy of the embedded defaults with derived values filled in.
func Defaults() (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	cfg.computeDerived()
	return cfg, nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Neural.HiddenLayers = append([]int(nil), c.Neural.HiddenLayers...)
	clone.Track.Waypoints = append([]PointConfig(nil), c.Track.Waypoints...)
	return &clone
}

// Validate rejects configurations the simulation cannot run with.
func (c *Config) Validate() error {
	if c.Population.Size < 2 {
		return fmt.Errorf("population.size must be at least 2, got %d", c.Population.Size)
	}
	if c.Population.TimeLimit < 1 {
		return fmt.Errorf("population.time_limit must be positive, got %d", c.Population.TimeLimit)
	}
	if c.Sensors.NumRays < 1 {
		return fmt.Errorf("sensors.num_rays must be positive, got %d", c.Sensors.NumRays)
	}
	if c.Sensors.ReferenceLength <= 0 {
		return fmt.Errorf("sensors.reference_length must be positive, got %g", c.Sensors.ReferenceLength)
	}
	if c.Neural.NumOutputs != 3 {
		return fmt.Errorf("neural.num_outputs must be 3 (throttle, steering, brake), got %d", c.Neural.NumOutputs)
	}
	for i, h := range c.Neural.HiddenLayers {
		if h < 1 {
			return fmt.Errorf("neural.hidden_layers[%d] must be positive, got %d", i, h)
		}
	}
	if c.Physics.DT <= 0 {
		return fmt.Errorf("physics.dt must be positive, got %g", c.Physics.DT)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.Physics.DT)
	c.Derived.NumInputs = c.Sensors.NumRays + 6 // rays + vel.x, vel.y, acc.x, acc.y, steer, sin(heading)

	// Arena dimensions default to screen size if not specified
	arenaW := c.Arena.Width
	if arenaW == 0 {
		arenaW = c.Screen.Width
	}
	arenaH := c.Arena.Height
	if arenaH == 0 {
		arenaH = c.Screen.Height
	}
	c.Derived.ArenaW32 = float32(arenaW)
	c.Derived.ArenaH32 = float32(arenaH)
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
