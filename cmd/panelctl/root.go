package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/iafilius/ChartEngine/src/config"
	"github.com/iafilius/ChartEngine/src/heatmap"
	"github.com/iafilius/ChartEngine/src/logging"
	"github.com/iafilius/ChartEngine/src/panel"
	"github.com/iafilius/ChartEngine/src/query"
	"github.com/iafilius/ChartEngine/src/render"
)

// Version information (set at build time).
var Version = "0.1.0"

var errUnknownPanel = errors.New("unknown panel")

type appKey struct{}

// app is the loaded dashboard shared by the subcommands.
type app struct {
	cfg      *config.Config
	results  []query.Result
	palettes *heatmap.PaletteCache
}

func appFrom(ctx context.Context) *app {
	a, _ := ctx.Value(appKey{}).(*app)
	return a
}

// size returns the configured render size.
func (a *app) size() render.Size {
	if a.cfg.Height <= 0 {
		return render.ChartDimensions(a.cfg.Width)
	}
	return render.Size{Width: a.cfg.Width, Height: a.cfg.Height}
}

// panels returns the configured panels, or the named ones in the given order.
func (a *app) panels(ids []string) ([]config.PanelConfig, error) {
	if len(ids) == 0 {
		return a.cfg.Panels, nil
	}
	out := make([]config.PanelConfig, 0, len(ids))
	for _, id := range ids {
		p, ok := a.cfg.Panel(id)
		if !ok {
			return nil, fmt.Errorf("%w %q", errUnknownPanel, id)
		}
		out = append(out, p)
	}
	return out, nil
}

// controller builds a panel from the loaded results. A nil store keeps
// visibility per controller.
func (a *app) controller(p config.PanelConfig, store panel.VisibilityStore) (*panel.Controller, error) {
	opts, err := p.Options()
	if err != nil {
		return nil, err
	}
	results, missing := p.Select(a.results)
	for _, name := range missing {
		logging.Warnf("[panel] %s: query %q not found in %s", p.ID, name, a.cfg.Input)
	}
	data, err := panel.Build(opts, results)
	if err != nil {
		return nil, fmt.Errorf("panel %q: %w", p.ID, err)
	}
	return panel.NewController(opts, data, store, a.palettes), nil
}

func loadApp(cmd *cobra.Command, cfgFile string) (*app, error) {
	cfg, err := config.LoadConfig(cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}
	logging.SetLogLevel(cfg.LogLevel)
	if used := config.GetConfigFileUsed(); used != "" {
		logging.Debugf("[config] using %s", used)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	results, err := query.Load(cfg.Input)
	if err != nil {
		return nil, err
	}
	logging.Infof("[query] loaded %d query results from %s", len(results), cfg.Input)
	return &app{cfg: cfg, results: results, palettes: heatmap.NewPaletteCache()}, nil
}

func newRootCmd() *cobra.Command {
	var cfgFile string
	root := &cobra.Command{
		Use:     "panelctl",
		Short:   "Build, render and serve dashboard panels",
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			switch cmd.Name() {
			case "help", "completion", "__complete", "version":
				return nil
			}
			a, err := loadApp(cmd, cfgFile)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(context.WithValue(ctx, appKey{}, a))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetErr(os.Stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "dashboard file (default: ./chartengine.yaml)")
	pf.String("input", config.DefaultInput, "query results (.json document or .jsonl)")
	pf.String("log-level", config.DefaultLogLevel, "debug|info|warn|error")
	pf.Int("width", config.DefaultWidth, "image width in pixels")
	pf.Int("height", config.DefaultHeight, "image height in pixels (0 derives it from the width)")

	root.AddCommand(newRenderCmd(), newInspectCmd(), newServeCmd(), newVersionCmd())
	return root
}

// execute runs the root command and reports the error the way main does.
func execute(root *cobra.Command, args ...string) error {
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(root.ErrOrStderr(), "Error: %v\n", err)
		return err
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "panelctl %s\n", Version)
		},
	}
}
