// Package config handles tilegen configuration loading and management.
package config

import (
	"fmt"
	"time"

	"github.com/Faultbox/tilegen/internal/curve"
	"github.com/Faultbox/tilegen/internal/falloff"
	"github.com/Faultbox/tilegen/internal/noise"
	"github.com/Faultbox/tilegen/internal/region"
	"github.com/Faultbox/tilegen/internal/scheduler"
	"github.com/Faultbox/tilegen/internal/terrain"
)

// Config holds all tilegen settings.
type Config struct {
	Terrain   TerrainConfig     `yaml:"terrain"`
	Scheduler scheduler.Options `yaml:"scheduler"`
	Preview   PreviewConfig     `yaml:"preview"`
	Output    OutputConfig      `yaml:"output"`
	Logging   LoggingConfig     `yaml:"logging"`
}

// TerrainConfig holds tile generation settings.
type TerrainConfig struct {
	Size       int           `yaml:"size"`
	LOD        int           `yaml:"lod"`
	RandomSeed bool          `yaml:"random_seed"` // replace noise.seed with a fresh one on load
	Noise      noise.Params  `yaml:"noise"`
	Falloff    FalloffConfig `yaml:"falloff"`
	Mesh       MeshConfig    `yaml:"mesh"`
	Regions    region.Table  `yaml:"regions"`
}

// FalloffConfig holds edge mask settings.
type FalloffConfig struct {
	Enabled bool                `yaml:"enabled"`
	Shape   falloff.Shape       `yaml:"shape"`
	Compose terrain.Composition `yaml:"compose"`
	A       float64             `yaml:"a"`
	B       float64             `yaml:"b"`
}

// MeshConfig holds height-to-elevation settings.
type MeshConfig struct {
	HeightMultiplier float64     `yaml:"height_multiplier"`
	Curve            curve.Curve `yaml:"curve"`
}

// PreviewConfig holds preview server settings.
type PreviewConfig struct {
	Listen   string        `yaml:"listen"`
	TickRate time.Duration `yaml:"tick_rate"`
}

// OutputConfig holds export settings.
type OutputConfig struct {
	Dir          string  `yaml:"dir"`
	Prefix       string  `yaml:"prefix"`
	Format       string  `yaml:"format"`        // png, bmp or tiff
	SunAzimuth   float64 `yaml:"sun_azimuth"`   // degrees, shaded relief only
	SunElevation float64 `yaml:"sun_elevation"` // degrees above the horizon
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
	JSON    bool   `yaml:"json"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	terrainDefaults := terrain.DefaultSettings()
	meshDefaults := terrain.DefaultMeshSettings()

	return &Config{
		Terrain: TerrainConfig{
			Size:  terrainDefaults.Size,
			LOD:   0,
			Noise: terrainDefaults.Noise,
			Falloff: FalloffConfig{
				Enabled: terrainDefaults.Falloff.Enabled,
				Shape:   terrainDefaults.Falloff.Shape,
				Compose: terrainDefaults.Falloff.Compose,
				A:       terrainDefaults.Falloff.Params.A,
				B:       terrainDefaults.Falloff.Params.B,
			},
			Mesh: MeshConfig{
				HeightMultiplier: meshDefaults.HeightMultiplier,
				Curve:            meshDefaults.Curve,
			},
			Regions: terrainDefaults.Regions,
		},
		Scheduler: scheduler.DefaultOptions(),
		Preview: PreviewConfig{
			Listen:   "127.0.0.1:8080",
			TickRate: 50 * time.Millisecond,
		},
		Output: OutputConfig{
			Dir:          "out",
			Prefix:       "tile",
			Format:       "png",
			SunAzimuth:   315,
			SunElevation: 45,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// BuilderSettings converts the terrain section into builder settings.
func (t TerrainConfig) BuilderSettings() (terrain.Settings, error) {
	s := terrain.Settings{
		Size:    t.Size,
		Noise:   t.Noise,
		Regions: t.Regions,
		Falloff: terrain.FalloffSettings{
			Enabled: t.Falloff.Enabled,
			Shape:   t.Falloff.Shape,
			Compose: t.Falloff.Compose,
			Params:  falloff.Params{A: t.Falloff.A, B: t.Falloff.B},
		},
	}
	if err := s.Validate(); err != nil {
		return terrain.Settings{}, fmt.Errorf("terrain: %w", err)
	}
	return s, nil
}

// MeshSettings converts the mesh section into extraction settings and checks
// the configured LOD against the tile size.
func (t TerrainConfig) MeshSettings() (terrain.MeshSettings, error) {
	if err := t.Mesh.Curve.Validate(); err != nil {
		return terrain.MeshSettings{}, fmt.Errorf("terrain.mesh.curve: %w", err)
	}
	if err := terrain.CheckLOD(t.Size, t.Size, t.LOD); err != nil {
		return terrain.MeshSettings{}, fmt.Errorf("terrain.lod: %w", err)
	}
	return terrain.MeshSettings{
		HeightMultiplier: t.Mesh.HeightMultiplier,
		Curve:            t.Mesh.Curve,
	}, nil
}
