package config

import (
	"fmt"

	"voxelcore/internal/world"
)

// WorldConfig selects the terrain generator and chunk layout.
type WorldConfig struct {
	Seed        int64      `yaml:"seed"`
	Generator   string     `yaml:"generator"` // default, flat or empty
	ViewRadius  int        `yaml:"view_radius"`
	ChunkSize   world.Size `yaml:"chunk_size"`
	SeaLevel    int        `yaml:"sea_level"`
	HeightRange float64    `yaml:"height_range"`
	FlatHeight  int        `yaml:"flat_height"`
}

func defaultWorld() WorldConfig {
	gs := world.DefaultGeneratorSettings()
	return WorldConfig{
		Seed:        1337,
		Generator:   "default",
		ViewRadius:  2,
		ChunkSize:   world.DefaultSize,
		SeaLevel:    gs.SeaLevel,
		HeightRange: gs.HeightRange,
		FlatHeight:  4,
	}
}

func (w WorldConfig) validate() error {
	if w.ChunkSize.X <= 0 || w.ChunkSize.Y <= 0 || w.ChunkSize.Z <= 0 {
		return fmt.Errorf("config: world.chunk_size must be positive, got %v", w.ChunkSize)
	}
	switch w.Generator {
	case "default", "flat", "empty":
		return nil
	}
	return fmt.Errorf("config: unknown generator %q", w.Generator)
}

// NewGenerator builds the configured terrain generator.
func (w WorldConfig) NewGenerator() (world.TerrainGenerator, error) {
	switch w.Generator {
	case "default":
		gs := world.DefaultGeneratorSettings()
		gs.SeaLevel = w.SeaLevel
		gs.HeightRange = w.HeightRange
		return world.NewGeneratorWithSettings(w.Seed, gs), nil
	case "flat":
		return world.NewFlatGenerator(w.FlatHeight), nil
	case "empty":
		return world.EmptyGenerator{}, nil
	}
	return nil, fmt.Errorf("config: unknown generator %q", w.Generator)
}
