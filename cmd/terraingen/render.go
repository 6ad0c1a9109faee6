package main

import (
	"context"
	"fmt"
	"image"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/tilegen/internal/config"
	"github.com/Faultbox/tilegen/internal/export"
	"github.com/Faultbox/tilegen/internal/falloff"
	"github.com/Faultbox/tilegen/internal/logger"
	"github.com/Faultbox/tilegen/internal/noise"
	"github.com/Faultbox/tilegen/internal/terrain"
)

// renderModes lists what each -mode writes.
var renderModes = map[string][]string{
	"noise":   {"noise"},
	"color":   {"color"},
	"falloff": {"falloff"},
	"mesh":    {"mesh"},
	"shaded":  {"shaded"},
	"all":     {"noise", "color", "falloff", "mesh", "shaded"},
}

func cmdRender(ctx context.Context, cfg *config.Config) error {
	outputs, ok := renderModes[*flagMode]
	if !ok {
		return fmt.Errorf("unknown render mode %q", *flagMode)
	}
	want := make(map[string]bool, len(outputs))
	for _, o := range outputs {
		want[o] = true
	}

	format := export.Format(cfg.Output.Format)
	if *flagFormat != "" {
		format = export.Format(*flagFormat)
	}
	switch format {
	case export.FormatPNG, export.FormatBMP, export.FormatTIFF:
	default:
		return fmt.Errorf("%w: %q", export.ErrUnsupportedFormat, format)
	}

	sched, err := newScheduler(cfg)
	if err != nil {
		return err
	}
	defer sched.Close()

	start := time.Now()
	center := noise.Offset{X: *flagX, Y: *flagY}
	lod := cfg.Terrain.LOD

	var (
		tile    *terrain.TileData
		mesh    *terrain.Mesh
		meshErr error
	)
	needMesh := want["mesh"] || want["shaded"]
	needTile := want["noise"] || want["color"] || needMesh
	if needTile {
		err := sched.RequestHeightField(ctx, center, func(t *terrain.TileData) {
			tile = t
			if !needMesh {
				return
			}
			meshErr = sched.RequestMesh(ctx, t.Heights, lod, func(m *terrain.Mesh) { mesh = m })
		})
		if err != nil {
			return err
		}

		done := func() bool {
			return meshErr != nil || tile != nil && (!needMesh || mesh != nil)
		}
		if err := pollUntil(ctx, sched.Poll, cfg.Preview.TickRate, done); err != nil {
			return err
		}
		if meshErr != nil {
			return fmt.Errorf("requesting mesh: %w", meshErr)
		}
	}

	exp := export.NewExporter(cfg.Output.Dir, cfg.Output.Prefix)
	settings := sched.Builder().Settings()

	var g errgroup.Group
	saveImage := func(name string, img image.Image) {
		g.Go(func() error {
			path, err := exp.Image(name, img, format)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			logger.Info("wrote image", zap.String("kind", name), zap.String("path", path))
			return nil
		})
	}

	if want["noise"] {
		saveImage("noise", export.HeightImage(tile.Heights))
	}
	if want["color"] {
		saveImage("color", export.ColorImage(tile.Colors))
	}
	if want["falloff"] {
		mask := falloff.Shared().Get(settings.Size, settings.Falloff.Shape, settings.Falloff.Params)
		saveImage("falloff", export.HeightImage(mask))
	}
	if want["shaded"] {
		sun := export.SunDirection(cfg.Output.SunAzimuth, cfg.Output.SunElevation)
		saveImage("shaded", export.ShadedImage(tile.Colors, mesh, sun))
	}
	if want["mesh"] {
		g.Go(func() error {
			path, err := exp.Mesh(fmt.Sprintf("mesh_lod%d", lod), mesh)
			if err != nil {
				return fmt.Errorf("mesh: %w", err)
			}
			logger.Info("wrote mesh",
				zap.String("path", path),
				zap.Int("vertices", len(mesh.Positions)),
				zap.Int("triangles", mesh.TriangleCount()),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("render complete", zap.Duration("took", time.Since(start)))
	return nil
}

// pollUntil calls poll once per tick until done reports true.
func pollUntil(ctx context.Context, poll func() int, tick time.Duration, done func() bool) error {
	if tick <= 0 {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		poll()
		if done() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
