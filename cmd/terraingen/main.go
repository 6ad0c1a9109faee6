// terraingen generates procedural terrain tiles, exports them and serves a live preview.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/tilegen/internal/config"
	"github.com/Faultbox/tilegen/internal/logger"
	"github.com/Faultbox/tilegen/internal/scheduler"
	"github.com/Faultbox/tilegen/internal/terrain"
)

var (
	flagMode   = flag.String("mode", "all", "render: noise, color, falloff, mesh, shaded or all")
	flagX      = flag.Float64("x", 0, "render: tile center X in grid cells")
	flagY      = flag.Float64("y", 0, "render: tile center Y in grid cells")
	flagFormat = flag.String("format", "", "render: image format (png, bmp, tiff)")
	flagWrite  = flag.Bool("write", false, "config: save to the user config directory")
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	switch command {
	case "help", "-h", "--help":
		printUsage()
		return
	case "render", "serve", "config", "lods":
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err := config.ParseFlags(os.Args[2:]); err != nil {
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := initLogger(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Sugar.Debugf("Config: %+v", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch command {
	case "render":
		err = cmdRender(ctx, cfg)
	case "serve":
		err = cmdServe(ctx, cfg)
	case "config":
		err = cmdConfig(cfg)
	case "lods":
		err = cmdLODs(cfg)
	}
	if err != nil {
		logger.Error(command+" failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`terraingen - procedural terrain tile generator

Usage:
  terraingen <command> [options]

Commands:
  render   Generate one tile and export images and/or an OBJ mesh
  serve    Run the live preview server (HTTP + WebSocket)
  config   Print the effective configuration
  lods     List valid levels of detail for the configured tile size

Options:
  -config <path>   Config file (default ./config.yaml, then user config dir)
  -debug           Enable debug logging
  -seed <n|random> Noise seed
  -size <n>        Tile size (odd, >= 3)
  -lod <n>         Mesh level of detail
  -workers <n>     Concurrent generation workers
  -listen <addr>   serve: listen address
  -out <dir>       render: output directory
  -mode <mode>     render: noise, color, falloff, mesh, shaded or all
  -x, -y <cells>   render: tile center
  -format <fmt>    render: png, bmp or tiff
  -write           config: save to the user config directory

Examples:
  terraingen render -seed 7 -mode all -out ./tiles
  terraingen render -x 240 -y 0 -mode mesh -lod 2
  terraingen serve -listen :8080
  terraingen config -write`)
}

func initLogger(cfg config.LoggingConfig) error {
	if cfg.LogFile == "" {
		return logger.Init(cfg.Level, "")
	}
	fileCfg := logger.DefaultFileConfig(cfg.LogFile)
	fileCfg.JSON = cfg.JSON
	return logger.InitWithFileConfig(cfg.Level, fileCfg, true)
}

// newScheduler builds the tile pipeline described by cfg.
func newScheduler(cfg *config.Config) (*scheduler.Scheduler, error) {
	settings, err := cfg.Terrain.BuilderSettings()
	if err != nil {
		return nil, err
	}
	meshSettings, err := cfg.Terrain.MeshSettings()
	if err != nil {
		return nil, err
	}
	builder, err := terrain.NewBuilder(settings)
	if err != nil {
		return nil, err
	}

	logger.Info("pipeline ready",
		zap.Int("size", settings.Size),
		zap.Int64("seed", settings.Noise.Seed),
		zap.Stringer("noise", settings.Noise.Kind),
		zap.Bool("falloff", settings.Falloff.Enabled),
		zap.Int("workers", cfg.Scheduler.Workers),
	)
	return scheduler.New(builder, meshSettings, cfg.Scheduler), nil
}
