// Package config loads the simulation settings: defaults, then an optional
// YAML file, then environment overrides. Command line flags are applied on
// top by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables read by Load and ApplyEnv.
const (
	EnvConfig     = "VOXEL_CONFIG"
	EnvSeed       = "VOXEL_SEED"
	EnvViewRadius = "VOXEL_VIEW_RADIUS"
)

// View radius limits in chunks.
const (
	MinViewRadius = 1
	MaxViewRadius = 8
)

// Config is the root configuration.
type Config struct {
	World   WorldConfig   `yaml:"world"`
	Physics PhysicsConfig `yaml:"physics"`
	Sim     SimConfig     `yaml:"sim"`
	Storage StorageConfig `yaml:"storage"`
	Atlas   AtlasConfig   `yaml:"atlas"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
}

type PhysicsConfig struct {
	Gravity float64 `yaml:"gravity"`
	MaxStep float64 `yaml:"max_step"`
	Reach   float64 `yaml:"reach"`
}

type SimConfig struct {
	TickRate    float64       `yaml:"tick_rate"` // fixed updates per second
	MaxFrame    float64       `yaml:"max_frame"` // seconds of real time consumed per frame at most
	FPSLimit    int           `yaml:"fps_limit"` // 0 = unlimited
	MeshWorkers int           `yaml:"mesh_workers"`
	SlowTick    time.Duration `yaml:"slow_tick"`
}

type StorageConfig struct {
	Backend        string  `yaml:"backend"` // none, memory or badger
	Dir            string  `yaml:"dir"`
	Workers        int     `yaml:"workers"`
	SavesPerSecond float64 `yaml:"saves_per_second"`
	Burst          int     `yaml:"burst"`
}

type AtlasConfig struct {
	TileSize int    `yaml:"tile_size"`
	Dir      string `yaml:"dir"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console or json
}

type MetricsConfig struct {
	Addr string `yaml:"addr"` // empty disables the /metrics listener
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		World: defaultWorld(),
		Physics: PhysicsConfig{
			Gravity: -9.8,
			MaxStep: 0.05,
			Reach:   5,
		},
		Sim: SimConfig{
			TickRate:    60,
			MaxFrame:    0.25,
			MeshWorkers: 4,
			SlowTick:    50 * time.Millisecond,
		},
		Storage: StorageConfig{
			Backend:        "memory",
			Dir:            "data/world",
			Workers:        2,
			SavesPerSecond: 200,
			Burst:          16,
		},
		Atlas: AtlasConfig{TileSize: 16},
		Log:   LogConfig{Level: "info", Format: "console"},
	}
}

// Load reads a YAML file over the defaults. An empty path falls back to
// $VOXEL_CONFIG; with neither set the defaults are returned. Environment
// overrides are applied and the result is normalised.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides the seed and view radius from the environment.
func ApplyEnv(cfg *Config) error {
	if v := os.Getenv(EnvSeed); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvSeed, err)
		}
		cfg.World.Seed = seed
	}
	if v := os.Getenv(EnvViewRadius); v != "" {
		r, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvViewRadius, err)
		}
		cfg.World.ViewRadius = r
	}
	return nil
}

// Normalize clamps ranges and rejects values the simulation cannot run with.
func (c *Config) Normalize() error {
	c.World.ViewRadius = ClampViewRadius(c.World.ViewRadius)
	if err := c.World.validate(); err != nil {
		return err
	}
	if c.Physics.MaxStep <= 0 {
		c.Physics.MaxStep = 0.05
	}
	if c.Physics.Reach <= 0 {
		c.Physics.Reach = 5
	}
	if c.Sim.TickRate <= 0 {
		return errors.New("config: sim.tick_rate must be positive")
	}
	if c.Sim.MaxFrame <= 0 {
		c.Sim.MaxFrame = 0.25
	}
	if c.Sim.FPSLimit < 0 {
		c.Sim.FPSLimit = 0
	}
	if c.Sim.MeshWorkers < 1 {
		c.Sim.MeshWorkers = 1
	}
	switch c.Storage.Backend {
	case "none", "memory":
	case "badger":
		if c.Storage.Dir == "" {
			return errors.New("config: storage.dir is required for the badger backend")
		}
	default:
		return fmt.Errorf("config: unknown storage backend %q", c.Storage.Backend)
	}
	if c.Atlas.TileSize <= 0 {
		c.Atlas.TileSize = 16
	}
	return nil
}

// ClampViewRadius limits r to [MinViewRadius, MaxViewRadius].
func ClampViewRadius(r int) int {
	if r < MinViewRadius {
		return MinViewRadius
	}
	if r > MaxViewRadius {
		return MaxViewRadius
	}
	return r
}

// TickDuration is the fixed simulation step in seconds.
func (c SimConfig) TickDuration() float64 { return 1 / c.TickRate }
