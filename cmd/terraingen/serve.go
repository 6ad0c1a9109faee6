package main

import (
	"context"

	"github.com/Faultbox/tilegen/internal/config"
	"github.com/Faultbox/tilegen/internal/logger"
	"github.com/Faultbox/tilegen/internal/preview"
)

func cmdServe(ctx context.Context, cfg *config.Config) error {
	sched, err := newScheduler(cfg)
	if err != nil {
		return err
	}
	defer sched.Close()

	srv := preview.New(sched, preview.Options{
		Listen:   cfg.Preview.Listen,
		TickRate: cfg.Preview.TickRate,
		LOD:      cfg.Terrain.LOD,
	})
	if err := srv.Run(ctx); err != nil {
		return err
	}
	logger.Info("preview server stopped")
	return nil
}
