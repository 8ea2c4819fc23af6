package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/iafilius/ChartEngine/src/config"
	"github.com/iafilius/ChartEngine/src/logging"
	"github.com/iafilius/ChartEngine/src/render"
)

func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render [panel-id...]",
		Short: "Render panels to PNG files",
		Long: `Render every configured panel, or only the named ones, to <out>/<id>.png.
Panels without drawable data are written as blank placeholders.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd.Context())
			panels, err := a.panels(args)
			if err != nil {
				return err
			}
			n, err := renderAll(cmd.Context(), a, panels)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rendered %d panels to %s\n", n, a.cfg.OutDir)
			return nil
		},
	}
	cmd.Flags().String("out", config.DefaultOutDir, "output directory")
	cmd.Flags().Int("workers", config.DefaultWorkers, "panels rendered concurrently")
	return cmd
}

// renderAll renders panels concurrently, at most cfg.Workers at a time.
func renderAll(ctx context.Context, a *app, panels []config.PanelConfig) (int, error) {
	defer logging.TimeTrack(time.Now(), "render all panels")
	if err := os.MkdirAll(a.cfg.OutDir, 0o755); err != nil {
		return 0, fmt.Errorf("create output directory: %w", err)
	}
	workers := a.cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	var done atomic.Int32
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, p := range panels {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			path := filepath.Join(a.cfg.OutDir, p.ID+".png")
			if err := renderPanel(a, p, path); err != nil {
				return fmt.Errorf("panel %q: %w", p.ID, err)
			}
			done.Add(1)
			return nil
		})
	}
	err := g.Wait()
	return int(done.Load()), err
}

func renderPanel(a *app, p config.PanelConfig, path string) error {
	c, err := a.controller(p, nil)
	if err != nil {
		return err
	}
	size := a.size()
	img, err := c.Render(size)
	if err != nil && !errors.Is(err, render.ErrNoData) {
		return err
	}
	img = render.OrBlank(img, err, size, p.ID)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render.EncodePNG(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	logging.Debugf("[render] wrote %s", path)
	return nil
}
