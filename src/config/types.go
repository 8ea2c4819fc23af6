// Package config loads dashboard configuration: the panels to build and the
// settings of the tools that render them.
package config

import (
	"fmt"
	"strings"

	"github.com/iafilius/ChartEngine/src/align"
	"github.com/iafilius/ChartEngine/src/heatmap"
	"github.com/iafilius/ChartEngine/src/histogram"
	"github.com/iafilius/ChartEngine/src/panel"
	"github.com/iafilius/ChartEngine/src/query"
)

// Default values.
const (
	DefaultInput    = "results.json"
	DefaultOutDir   = "out"
	DefaultLogLevel = "info"
	DefaultWidth    = 1200
	DefaultHeight   = 400
	DefaultListen   = ":8080"
	DefaultWorkers  = 4
)

// Config is a dashboard plus tool settings.
type Config struct {
	Title    string        `koanf:"title"`
	Input    string        `koanf:"input"`
	OutDir   string        `koanf:"out_dir"`
	LogLevel string        `koanf:"log_level"`
	Width    int           `koanf:"width"`
	Height   int           `koanf:"height"`
	Listen   string        `koanf:"listen"`
	Workers  int           `koanf:"workers"`
	Panels   []PanelConfig `koanf:"panels"`
}

// PanelConfig configures one panel.
type PanelConfig struct {
	ID    string `koanf:"id"`
	Title string `koanf:"title"`
	Unit  string `koanf:"unit"`
	Kind  string `koanf:"kind"`
	// Queries names the query results feeding the panel, in order. Empty
	// means every result.
	Queries []string `koanf:"queries"`
	// NullMode applies to every query without an entry in NullModes.
	NullMode  string   `koanf:"null_mode"`
	NullModes []string `koanf:"null_modes"`
	Stacked   bool     `koanf:"stacked"`
	LogScale  bool     `koanf:"log_scale"`

	BucketCount     int     `koanf:"bucket_count"`
	BucketSize      float64 `koanf:"bucket_size"`
	BucketOffset    float64 `koanf:"bucket_offset"`
	MergeAllQueries bool    `koanf:"merge_all_queries"`

	// FocusTrim is the heatmap outlier share trimmed off each end of the
	// bucket axis; nil means heatmap.DefaultFocusTrim.
	FocusTrim    *float64          `koanf:"focus_trim"`
	PaletteSize  int               `koanf:"palette_size"`
	PaletteStops []string          `koanf:"palette_stops"`
	Colors       map[string]string `koanf:"colors"`
	Hint         string            `koanf:"hint"`
}

// Default returns a Config with default settings and no panels.
func Default() *Config {
	return &Config{
		Input:    DefaultInput,
		OutDir:   DefaultOutDir,
		LogLevel: DefaultLogLevel,
		Width:    DefaultWidth,
		Height:   DefaultHeight,
		Listen:   DefaultListen,
		Workers:  DefaultWorkers,
	}
}

// Panel returns the panel with the given id.
func (c *Config) Panel(id string) (PanelConfig, bool) {
	for _, p := range c.Panels {
		if p.ID == id {
			return p, true
		}
	}
	return PanelConfig{}, false
}

var nullModeNames = map[string]bool{"": true, "retain": true, "remove": true, "connect": true, "expand": true}

func nullMode(s string) (align.NullMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if !nullModeNames[s] {
		return align.Retain, fmt.Errorf("unknown null mode %q", s)
	}
	return align.ParseNullMode(s), nil
}

// Options converts the panel config for the panel package.
func (p PanelConfig) Options() (panel.Options, error) {
	kind, err := panel.ParseKind(p.Kind)
	if err != nil {
		return panel.Options{}, fmt.Errorf("panel %q: %w", p.ID, err)
	}
	def, err := nullMode(p.NullMode)
	if err != nil {
		return panel.Options{}, fmt.Errorf("panel %q: %w", p.ID, err)
	}
	n := len(p.Queries)
	if len(p.NullModes) > n {
		n = len(p.NullModes)
	}
	modes := make([]align.NullMode, n)
	for i := range modes {
		modes[i] = def
		if i < len(p.NullModes) && p.NullModes[i] != "" {
			if modes[i], err = nullMode(p.NullModes[i]); err != nil {
				return panel.Options{}, fmt.Errorf("panel %q query %d: %w", p.ID, i, err)
			}
		}
	}
	trim := heatmap.DefaultFocusTrim
	if p.FocusTrim != nil {
		trim = *p.FocusTrim
	}
	title := p.Title
	if title == "" {
		title = p.ID
	}
	return panel.Options{
		ID:        p.ID,
		Title:     title,
		Unit:      p.Unit,
		Kind:      kind,
		NullModes: modes,
		Stacked:   p.Stacked,
		LogScale:  p.LogScale,
		Histogram: histogram.Options{
			BucketCount:     p.BucketCount,
			BucketSize:      p.BucketSize,
			BucketOffset:    p.BucketOffset,
			MergeAllQueries: p.MergeAllQueries,
		},
		FocusTrim:    trim,
		Colors:       p.Colors,
		PaletteSize:  p.PaletteSize,
		PaletteStops: p.PaletteStops,
		Hint:         p.Hint,
	}, nil
}

// Select picks the results feeding the panel, in the configured order.
// A name that matches no result yields an empty result in its slot, so
// per-query settings stay aligned; the second return lists those names.
func (p PanelConfig) Select(results []query.Result) ([]query.Result, []string) {
	if len(p.Queries) == 0 {
		return results, nil
	}
	byName := make(map[string]query.Result, len(results))
	for _, r := range results {
		byName[r.Name] = r
	}
	var out []query.Result
	var missing []string
	for _, name := range p.Queries {
		r, ok := byName[name]
		if !ok {
			missing = append(missing, name)
			r = query.Result{Name: name}
		}
		out = append(out, r)
	}
	return out, missing
}
