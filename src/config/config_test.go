package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iafilius/ChartEngine/src/align"
	"github.com/iafilius/ChartEngine/src/heatmap"
	"github.com/iafilius/ChartEngine/src/panel"
	"github.com/iafilius/ChartEngine/src/query"
)

const dashboard = `title: Network
input: data/results.json
width: 900
panels:
  - id: latency
    title: Latency
    unit: ms
    kind: timeseries
    queries: [p50, p99]
    null_mode: expand
    null_modes: ["", remove]
    stacked: true
    colors:
      p50: "#33aa33"
  - id: sizes
    kind: histogram
    bucket_count: 20
    merge_all_queries: true
  - id: buckets
    kind: heatmap
    focus_trim: 0.01
    palette_size: 16
`

func writeDashboard(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chartengine.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("config", "", "")
	fs.String("input", DefaultInput, "")
	fs.String("out", DefaultOutDir, "")
	fs.String("log-level", DefaultLogLevel, "")
	fs.Int("workers", DefaultWorkers, "")
	return fs
}

func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfig()
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Empty(t, GetConfigFileUsed())
	assert.ErrorIs(t, cfg.Validate(), ErrNoPanels)
}

func TestLoadConfig_File(t *testing.T) {
	ResetConfig()
	path := writeDashboard(t, dashboard)

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, path, GetConfigFileUsed())

	assert.Equal(t, "Network", cfg.Title)
	assert.Equal(t, "data/results.json", cfg.Input)
	assert.Equal(t, 900, cfg.Width)
	assert.Equal(t, DefaultHeight, cfg.Height)
	assert.Equal(t, DefaultOutDir, cfg.OutDir)
	require.Len(t, cfg.Panels, 3)

	lat := cfg.Panels[0]
	assert.Equal(t, []string{"p50", "p99"}, lat.Queries)
	assert.True(t, lat.Stacked)
	assert.Equal(t, "#33aa33", lat.Colors["p50"])

	heat, ok := cfg.Panel("buckets")
	require.True(t, ok)
	require.NotNil(t, heat.FocusTrim)
	assert.Equal(t, 0.01, *heat.FocusTrim)

	_, ok = cfg.Panel("nope")
	assert.False(t, ok)
}

func TestLoadConfig_DiscoversFileInWorkingDir(t *testing.T) {
	ResetConfig()
	dir := filepath.Dir(writeDashboard(t, dashboard))
	t.Chdir(dir)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, "chartengine.yaml", GetConfigFileUsed())
	assert.Len(t, cfg.Panels, 3)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	ResetConfig()
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	assert.Error(t, err)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	ResetConfig()
	path := writeDashboard(t, dashboard)
	t.Setenv("CHARTENGINE_WIDTH", "640")
	t.Setenv("CHARTENGINE_OUT_DIR", "/tmp/charts")

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 640, cfg.Width)
	assert.Equal(t, "/tmp/charts", cfg.OutDir)
}

func TestLoadConfig_FlagsOverrideEnv(t *testing.T) {
	ResetConfig()
	path := writeDashboard(t, dashboard)
	t.Setenv("CHARTENGINE_INPUT", "from-env.json")
	t.Setenv("CHARTENGINE_WORKERS", "2")

	fs := newFlags()
	require.NoError(t, fs.Parse([]string{"--input", "from-flag.json", "--out", "pngs", "--log-level", "debug", "--config", path}))

	cfg, err := LoadConfig(path, fs)
	require.NoError(t, err)
	assert.Equal(t, "from-flag.json", cfg.Input)
	assert.Equal(t, "pngs", cfg.OutDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	// Unchanged flags do not shadow lower layers.
	assert.Equal(t, 2, cfg.Workers)
}

func TestValidate(t *testing.T) {
	trim := 0.6
	cases := map[string]Config{
		"duplicate id": {LogLevel: "info", Panels: []PanelConfig{{ID: "a"}, {ID: "a"}}},
		"missing id":   {LogLevel: "info", Panels: []PanelConfig{{Title: "x"}}},
		"bad kind":     {LogLevel: "info", Panels: []PanelConfig{{ID: "a", Kind: "pie"}}},
		"bad null":     {LogLevel: "info", Panels: []PanelConfig{{ID: "a", NullModes: []string{"zero"}}}},
		"bad color":    {LogLevel: "info", Panels: []PanelConfig{{ID: "a", Colors: map[string]string{"s": "#zz"}}}},
		"bad stop":     {LogLevel: "info", Panels: []PanelConfig{{ID: "a", PaletteStops: []string{"nope"}}}},
		"bad trim":     {LogLevel: "info", Panels: []PanelConfig{{ID: "a", FocusTrim: &trim}}},
		"bad bucket":   {LogLevel: "info", Panels: []PanelConfig{{ID: "a", BucketSize: -1}}},
		"bad level":    {LogLevel: "loud", Panels: []PanelConfig{{ID: "a"}}},
		"bad size":     {LogLevel: "info", Width: -1, Panels: []PanelConfig{{ID: "a"}}},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, cfg.Validate())
		})
	}

	ok := Config{LogLevel: "warn", Panels: []PanelConfig{{ID: "a", Kind: "bar", NullMode: "Connect"}}}
	assert.NoError(t, ok.Validate())
}

func TestPanelOptions(t *testing.T) {
	ResetConfig()
	cfg, err := LoadConfig(writeDashboard(t, dashboard), nil)
	require.NoError(t, err)

	lat, err := cfg.Panels[0].Options()
	require.NoError(t, err)
	assert.Equal(t, panel.KindTimeSeries, lat.Kind)
	assert.Equal(t, "Latency", lat.Title)
	assert.Equal(t, []align.NullMode{align.Expand, align.Remove}, lat.NullModes)
	assert.Equal(t, heatmap.DefaultFocusTrim, lat.FocusTrim)

	sizes, err := cfg.Panels[1].Options()
	require.NoError(t, err)
	assert.Equal(t, "sizes", sizes.Title)
	assert.Equal(t, 20, sizes.Histogram.BucketCount)
	assert.True(t, sizes.Histogram.MergeAllQueries)

	heat, err := cfg.Panels[2].Options()
	require.NoError(t, err)
	assert.Equal(t, 0.01, heat.FocusTrim)
	assert.Equal(t, 16, heat.PaletteSize)
}

func TestPanelSelect(t *testing.T) {
	results := []query.Result{{Name: "p50"}, {Name: "p90"}, {Name: "p99"}}

	all, missing := PanelConfig{}.Select(results)
	assert.Equal(t, results, all)
	assert.Empty(t, missing)

	got, missing := PanelConfig{Queries: []string{"p99", "gone", "p50"}}.Select(results)
	require.Len(t, got, 3)
	assert.Equal(t, "p99", got[0].Name)
	assert.Equal(t, "gone", got[1].Name)
	assert.Empty(t, got[1].Series)
	assert.Equal(t, "p50", got[2].Name)
	assert.Equal(t, []string{"gone"}, missing)
}
