package config

import (
	"errors"
	"fmt"

	"github.com/iafilius/ChartEngine/src/logging"
	"github.com/iafilius/ChartEngine/src/render"
)

// ErrNoPanels is returned by Validate for a dashboard without panels.
var ErrNoPanels = errors.New("no panels configured")

// Validate checks the dashboard.
func (c *Config) Validate() error {
	if len(c.Panels) == 0 {
		return ErrNoPanels
	}
	if _, ok := logging.ParseLevel(c.LogLevel); !ok {
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	if c.Width < 0 || c.Height < 0 {
		return fmt.Errorf("width and height must not be negative (got %dx%d)", c.Width, c.Height)
	}
	seen := map[string]bool{}
	for i, p := range c.Panels {
		if p.ID == "" {
			return fmt.Errorf("panel %d: id is required", i)
		}
		if seen[p.ID] {
			return fmt.Errorf("panel %q: duplicate id", p.ID)
		}
		seen[p.ID] = true
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks one panel.
func (p PanelConfig) Validate() error {
	if _, err := p.Options(); err != nil {
		return err
	}
	if p.BucketCount < 0 || p.BucketSize < 0 {
		return fmt.Errorf("panel %q: bucket_count and bucket_size must not be negative", p.ID)
	}
	if p.FocusTrim != nil && (*p.FocusTrim < 0 || *p.FocusTrim >= 0.5) {
		return fmt.Errorf("panel %q: focus_trim must be in [0, 0.5), got %g", p.ID, *p.FocusTrim)
	}
	if p.PaletteSize < 0 {
		return fmt.Errorf("panel %q: palette_size must not be negative", p.ID)
	}
	for _, s := range p.PaletteStops {
		if _, err := render.ParseColor(s); err != nil {
			return fmt.Errorf("panel %q palette: %w", p.ID, err)
		}
	}
	for name, hex := range p.Colors {
		if _, err := render.ParseColor(hex); err != nil {
			return fmt.Errorf("panel %q series %q: %w", p.ID, name, err)
		}
	}
	return nil
}
