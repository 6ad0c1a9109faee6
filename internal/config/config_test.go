package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Faultbox/tilegen/internal/curve"
	"github.com/Faultbox/tilegen/internal/falloff"
	"github.com/Faultbox/tilegen/internal/noise"
	"github.com/Faultbox/tilegen/internal/region"
	"github.com/Faultbox/tilegen/internal/terrain"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Test terrain defaults
	if cfg.Terrain.Size != 241 {
		t.Errorf("expected size 241, got %d", cfg.Terrain.Size)
	}
	if cfg.Terrain.RandomSeed {
		t.Error("expected random_seed to be false by default")
	}
	if cfg.Terrain.Noise != noise.DefaultParams() {
		t.Errorf("expected default noise params, got %+v", cfg.Terrain.Noise)
	}
	if cfg.Terrain.Falloff.Enabled {
		t.Error("expected falloff to be disabled by default")
	}
	if len(cfg.Terrain.Regions) != len(region.DefaultTable()) {
		t.Errorf("expected default region table, got %d regions", len(cfg.Terrain.Regions))
	}

	// Test scheduler defaults
	if cfg.Scheduler.Workers <= 0 {
		t.Errorf("expected positive worker count, got %d", cfg.Scheduler.Workers)
	}
	if cfg.Scheduler.MaxPending != 64 {
		t.Errorf("expected max pending 64, got %d", cfg.Scheduler.MaxPending)
	}

	// Test preview defaults
	if cfg.Preview.Listen != "127.0.0.1:8080" {
		t.Errorf("expected listen 127.0.0.1:8080, got %s", cfg.Preview.Listen)
	}
	if cfg.Preview.TickRate != 50*time.Millisecond {
		t.Errorf("expected tick rate 50ms, got %v", cfg.Preview.TickRate)
	}

	// Test logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFile(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
terrain:
  size: 121
  lod: 2
  noise:
    seed: 42
    scale: 30
    octaves: 6
    persistence: 0.45
    lacunarity: 2.1
    offset: {x: 10, y: -5}
    normalize: global
    kind: simplex
  falloff:
    enabled: true
    shape: square
    compose: mountains
    a: 2
    b: 3
  mesh:
    height_multiplier: 40
    curve:
      interpolation: linear
      keys:
        - {in: 0, out: 0}
        - {in: 1, out: 0.5}
  regions:
    - {name: water, threshold: 0, color: "#0000ff"}
    - {name: land, threshold: 0.5, color: "#00ff00"}

scheduler:
  workers: 3
  max_pending: 10

preview:
  listen: ":9000"
  tick_rate: 20ms

output:
  dir: "renders"
  format: tiff

logging:
  level: "debug"
  log_file: "tilegen.log"
  json: true
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Load config
	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Verify values were loaded
	tc := cfg.Terrain
	if tc.Size != 121 || tc.LOD != 2 {
		t.Errorf("expected size 121 lod 2, got %d lod %d", tc.Size, tc.LOD)
	}
	wantNoise := noise.Params{
		Seed: 42, Scale: 30, Octaves: 6, Persistence: 0.45, Lacunarity: 2.1,
		Offset:    noise.Offset{X: 10, Y: -5},
		Normalize: noise.NormalizeGlobal,
		Kind:      noise.KindSimplex,
	}
	if tc.Noise != wantNoise {
		t.Errorf("expected noise %+v, got %+v", wantNoise, tc.Noise)
	}
	if !tc.Falloff.Enabled || tc.Falloff.Shape != falloff.ShapeSquare || tc.Falloff.Compose != terrain.ComposeAdd {
		t.Errorf("unexpected falloff config %+v", tc.Falloff)
	}
	if tc.Mesh.HeightMultiplier != 40 || tc.Mesh.Curve.Interpolation != curve.Linear || len(tc.Mesh.Curve.Keys) != 2 {
		t.Errorf("unexpected mesh config %+v", tc.Mesh)
	}
	if len(tc.Regions) != 2 {
		t.Fatalf("expected file regions to replace defaults, got %d", len(tc.Regions))
	}
	if tc.Regions[1].Color != region.RGB(0, 255, 0) {
		t.Errorf("expected green land, got %v", tc.Regions[1].Color)
	}

	if cfg.Scheduler.Workers != 3 || cfg.Scheduler.MaxPending != 10 {
		t.Errorf("unexpected scheduler config %+v", cfg.Scheduler)
	}
	if cfg.Preview.Listen != ":9000" || cfg.Preview.TickRate != 20*time.Millisecond {
		t.Errorf("unexpected preview config %+v", cfg.Preview)
	}
	if cfg.Output.Dir != "renders" || cfg.Output.Format != "tiff" {
		t.Errorf("unexpected output config %+v", cfg.Output)
	}
	// Unset keys keep their defaults
	if cfg.Output.Prefix != "tile" {
		t.Errorf("expected default prefix, got %s", cfg.Output.Prefix)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "tilegen.log" || !cfg.Logging.JSON {
		t.Errorf("unexpected logging config %+v", cfg.Logging)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	// Create temporary config file with invalid YAML
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
terrain:
  size: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Try to load - should error
	cfg := Default()
	err := loadFromFile(cfg, configPath)
	if err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileUnknownEnum(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("terrain:\n  noise:\n    kind: worley\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if err := loadFromFile(Default(), configPath); err == nil {
		t.Error("expected error for unknown noise kind, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	// Just verify it returns a non-empty path
	// Actual path depends on OS
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}

	// Verify path is absolute
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	// Keep the user's real config dir out of the lookup
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	// Save current directory
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	// Create temp directory and change to it
	tmpDir := t.TempDir()
	os.Chdir(tmpDir)

	// No config file exists - should return empty
	path := findConfigFile()
	if path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	// Create config.yaml in current directory
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("terrain:\n  size: 61\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	// Should find it now
	path = findConfigFile()
	if path == "" {
		t.Error("expected to find config.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*Config)
		teardown func()
	}{
		{
			name: "debug flag",
			setup: func() {
				*flagDebug = true
			},
			verify: func(cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() {
				*flagDebug = false
			},
		},
		{
			name: "seed flag",
			setup: func() {
				*flagSeed = "-17"
			},
			verify: func(cfg *Config) {
				if cfg.Terrain.Noise.Seed != -17 {
					t.Errorf("expected seed -17, got %d", cfg.Terrain.Noise.Seed)
				}
			},
			teardown: func() {
				*flagSeed = ""
			},
		},
		{
			name: "random seed flag",
			setup: func() {
				*flagSeed = "random"
			},
			verify: func(cfg *Config) {
				if !cfg.Terrain.RandomSeed {
					t.Error("expected random_seed to be enabled")
				}
			},
			teardown: func() {
				*flagSeed = ""
			},
		},
		{
			name: "size and lod flags",
			setup: func() {
				*flagSize = 61
				*flagLOD = 0
			},
			verify: func(cfg *Config) {
				if cfg.Terrain.Size != 61 {
					t.Errorf("expected size 61, got %d", cfg.Terrain.Size)
				}
				if cfg.Terrain.LOD != 0 {
					t.Errorf("expected lod 0, got %d", cfg.Terrain.LOD)
				}
			},
			teardown: func() {
				*flagSize = 0
				*flagLOD = -1
			},
		},
		{
			name: "listen, out and workers flags",
			setup: func() {
				*flagListen = ":7000"
				*flagOut = "/tmp/tiles"
				*flagWorkers = 2
			},
			verify: func(cfg *Config) {
				if cfg.Preview.Listen != ":7000" {
					t.Errorf("expected listen :7000, got %s", cfg.Preview.Listen)
				}
				if cfg.Output.Dir != "/tmp/tiles" {
					t.Errorf("expected out /tmp/tiles, got %s", cfg.Output.Dir)
				}
				if cfg.Scheduler.Workers != 2 {
					t.Errorf("expected 2 workers, got %d", cfg.Scheduler.Workers)
				}
			},
			teardown: func() {
				*flagListen = ""
				*flagOut = ""
				*flagWorkers = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			tt.setup()
			defer tt.teardown()

			// Apply flags to default config
			cfg := Default()
			if err := applyFlags(cfg); err != nil {
				t.Fatalf("applyFlags failed: %v", err)
			}

			// Verify
			tt.verify(cfg)
		})
	}
}

func TestApplyFlagsInvalidSeed(t *testing.T) {
	*flagSeed = "abc"
	defer func() { *flagSeed = "" }()

	if err := applyFlags(Default()); err == nil {
		t.Error("expected error for non-numeric seed, got nil")
	}
}

func TestLoadPriority(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
terrain:
  size: 121
  noise:
    seed: 5
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Set flag to override config file
	*flagConfig = configPath
	*flagSize = 61
	defer func() {
		*flagConfig = ""
		*flagSize = 0
	}()

	// Load config
	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Size should be from flag (61), not file (121)
	if cfg.Terrain.Size != 61 {
		t.Errorf("expected size 61 from flag, got %d", cfg.Terrain.Size)
	}

	// Seed should be from file (5) since no flag override
	if cfg.Terrain.Noise.Seed != 5 {
		t.Errorf("expected seed 5 from file, got %d", cfg.Terrain.Noise.Seed)
	}
}

func TestLoadRandomSeed(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("terrain:\n  random_seed: true\n  noise:\n    seed: -1\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	defer func() { *flagConfig = "" }()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Terrain.Noise.Seed < 0 {
		t.Errorf("expected a fresh non-negative seed, got %d", cfg.Terrain.Noise.Seed)
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Terrain.Falloff.Enabled = true
	cfg.Terrain.Falloff.Compose = terrain.ComposeAdd
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading saved config: %v", err)
	}
	if !strings.Contains(string(data), "compose: add") {
		t.Errorf("expected enums written as text, got:\n%s", data)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("reloading saved config: %v", err)
	}
	if loaded.Terrain.Falloff != cfg.Terrain.Falloff {
		t.Errorf("expected falloff %+v, got %+v", cfg.Terrain.Falloff, loaded.Terrain.Falloff)
	}
	for i, r := range cfg.Terrain.Regions {
		if loaded.Terrain.Regions[i] != r {
			t.Errorf("region %d: expected %+v, got %+v", i, r, loaded.Terrain.Regions[i])
		}
	}
}

func TestSave(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	path, err := Default().Save()
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected saved config at %s: %v", path, err)
	}
}

func TestBuilderSettings(t *testing.T) {
	cfg := Default()
	cfg.Terrain.Falloff.Enabled = true
	cfg.Terrain.Falloff.A = 4

	s, err := cfg.Terrain.BuilderSettings()
	if err != nil {
		t.Fatalf("BuilderSettings failed: %v", err)
	}
	if !s.Falloff.Enabled || s.Falloff.Params.A != 4 || s.Falloff.Params.B != 2.2 {
		t.Errorf("unexpected falloff settings %+v", s.Falloff)
	}

	cfg.Terrain.Size = 100
	if _, err := cfg.Terrain.BuilderSettings(); !errors.Is(err, terrain.ErrInvalidSize) {
		t.Errorf("expected ErrInvalidSize, got %v", err)
	}
}

func TestMeshSettings(t *testing.T) {
	cfg := Default()

	ms, err := cfg.Terrain.MeshSettings()
	if err != nil {
		t.Fatalf("MeshSettings failed: %v", err)
	}
	if ms.HeightMultiplier != 26 {
		t.Errorf("expected multiplier 26, got %v", ms.HeightMultiplier)
	}

	cfg.Terrain.LOD = 7
	if _, err := cfg.Terrain.MeshSettings(); !errors.Is(err, terrain.ErrUnsupportedLOD) {
		t.Errorf("expected ErrUnsupportedLOD, got %v", err)
	}

	cfg.Terrain.LOD = 0
	cfg.Terrain.Mesh.Curve.Keys = []curve.Key{{In: 1}, {In: 0}}
	if _, err := cfg.Terrain.MeshSettings(); !errors.Is(err, curve.ErrUnsortedKeys) {
		t.Errorf("expected ErrUnsortedKeys, got %v", err)
	}
}
