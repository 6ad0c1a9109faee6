package config

import (
	"flag"
	"fmt"
	"strconv"
)

var (
	flagConfig  = flag.String("config", "", "Path to config file")
	flagDebug   = flag.Bool("debug", false, "Enable debug logging")
	flagSeed    = flag.String("seed", "", `Noise seed, or "random"`)
	flagSize    = flag.Int("size", 0, "Tile size (odd, >= 3)")
	flagLOD     = flag.Int("lod", -1, "Mesh level of detail")
	flagListen  = flag.String("listen", "", "Preview server listen address")
	flagOut     = flag.String("out", "", "Output directory")
	flagWorkers = flag.Int("workers", 0, "Concurrent generation workers")
)

// ParseFlags parses command-line flags from args (usually os.Args[2:], after
// the subcommand).
func ParseFlags(args []string) error {
	return flag.CommandLine.Parse(args)
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) error {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	switch *flagSeed {
	case "":
	case "random":
		cfg.Terrain.RandomSeed = true
	default:
		seed, err := strconv.ParseInt(*flagSeed, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid -seed %q: %w", *flagSeed, err)
		}
		cfg.Terrain.Noise.Seed = seed
		cfg.Terrain.RandomSeed = false
	}
	if *flagSize > 0 {
		cfg.Terrain.Size = *flagSize
	}
	if *flagLOD >= 0 {
		cfg.Terrain.LOD = *flagLOD
	}
	if *flagListen != "" {
		cfg.Preview.Listen = *flagListen
	}
	if *flagOut != "" {
		cfg.Output.Dir = *flagOut
	}
	if *flagWorkers > 0 {
		cfg.Scheduler.Workers = *flagWorkers
	}
	return nil
}
