package ntrace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lukaszgryglicki/ntrace/internal/config"
	"github.com/lukaszgryglicki/ntrace/internal/render"
)

// Run renders the scene described by the config file at cfgPath and saves
// the image and the render state. A cancelled ctx stops the render early;
// whatever was finished is still saved and the cancellation is returned.
func Run(ctx context.Context, cfgPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	scene, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("%s: %w", cfgPath, err)
	}
	scene.Linear = NeverBVH
	scene.Stats = &render.Stats{}
	slog.Debug("scene built", "dim", cfg.Dim, "objects", scene.Mesh.Objects(), "faces", len(scene.Mesh.Faces()))

	if DumpBVH {
		if err := scene.Mesh.DumpBVH(os.Stdout); err != nil {
			return err
		}
	}
	if !NeverBVH {
		slog.Debug("bvh built", "stats", scene.Mesh.BVHStats())
	}
	if cov := scene.EstimateCoverage(coverageProbes); cov == 0 {
		slog.Warn("no geometry in view, the image will be black", "config", cfgPath)
	} else {
		slog.Debug("coverage", "fraction", cov)
	}
	if Resume && !Fast {
		if err := scene.LoadState(cfg.Output.State); err != nil {
			return fmt.Errorf("resume: %w", err)
		}
		slog.Info("resumed", "state", cfg.Output.State, "samples", scene.Samples(0, 0))
	}

	progress, finish := newProgress(cfg.Width * cfg.Height)
	start := time.Now()
	img, err := scene.Render(ctx, render.RenderOptions{
		Fast:     Fast,
		Workers:  Workers,
		TileSize: cfg.TileSize,
		Seed:     cfg.Seed,
		Progress: progress,
	})
	finish()
	interrupted := errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
	if err != nil && !interrupted {
		return err
	}
	slog.Info("rendered", "elapsed", time.Since(start), "width", cfg.Width, "height", cfg.Height, "interrupted", interrupted)
	slog.Debug("paths", "stats", scene.Stats)

	if err := render.SaveImage(cfg.Output.Path, img, cfg.Width, cfg.Height); err != nil {
		return err
	}
	slog.Info("saved image", "path", cfg.Output.Path)
	if !Fast {
		if err := scene.SaveState(cfg.Output.State); err != nil {
			return err
		}
		slog.Debug("saved state", "path", cfg.Output.State)
	}
	if interrupted {
		return fmt.Errorf("render interrupted, partial image saved to %s: %w", cfg.Output.Path, err)
	}
	return nil
}
