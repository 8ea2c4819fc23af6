package panel

import (
	"image"
	"math"
	"time"

	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/iafilius/ChartEngine/src/align"
	"github.com/iafilius/ChartEngine/src/heatmap"
	"github.com/iafilius/ChartEngine/src/logging"
	"github.com/iafilius/ChartEngine/src/render"
	"github.com/iafilius/ChartEngine/src/stack"
)

// Controller is the state of one chart instance: its data, the visibility of
// its series and, for stacked panels, the stacked view. Changing data or
// visibility restacks; the stacked write-back notifies OnChange listeners,
// which may call back into the Controller.
//
// A Controller belongs to the goroutine driving its chart.
type Controller struct {
	opts     Options
	data     Data
	store    VisibilityStore
	palettes *heatmap.PaletteCache
	stacker  *stack.Stacker
	stacked  *stack.Result
	onChange []func()
}

// NewController wraps built data. A nil store keeps visibility in memory; a
// nil palette cache gets a private one.
func NewController(opts Options, data Data, store VisibilityStore, palettes *heatmap.PaletteCache) *Controller {
	if store == nil {
		store = NewMemoryStore()
	}
	if palettes == nil {
		palettes = heatmap.NewPaletteCache()
	}
	c := &Controller{opts: opts, data: data, store: store, palettes: palettes}
	c.stacker = stack.NewStacker(c.hidden)
	c.restack()
	return c
}

// Options returns the panel options.
func (c *Controller) Options() Options { return c.opts }

// Data returns the raw, unstacked panel data.
func (c *Controller) Data() Data { return c.data }

// OnChange registers fn to run after every stacked write-back.
func (c *Controller) OnChange(fn func()) { c.onChange = append(c.onChange, fn) }

// hidden reports whether the 1-based series is hidden.
func (c *Controller) hidden(series int) bool {
	i := series - 1
	if i < 0 || i >= len(c.data.Names) {
		return false
	}
	return c.store.Hidden(c.opts.ID, c.data.Names[i])
}

// Visible reports whether the 1-based series is shown.
func (c *Controller) Visible(series int) bool { return !c.hidden(series) }

// SetVisible shows or hides the 1-based series and restacks.
func (c *Controller) SetVisible(series int, visible bool) {
	i := series - 1
	if i < 0 || i >= len(c.data.Names) {
		return
	}
	c.store.SetHidden(c.opts.ID, c.data.Names[i], !visible)
	c.restack()
}

// SetData replaces the panel data and restacks.
func (c *Controller) SetData(d Data) {
	c.data = d
	c.restack()
}

// Stacked returns the current stacked view, if the panel stacks.
func (c *Controller) Stacked() (stack.Result, bool) {
	if c.stacked == nil {
		return stack.Result{}, false
	}
	return *c.stacked, true
}

func (c *Controller) stacks() bool {
	return c.opts.Stacked && (c.data.Kind == KindTimeSeries || c.data.Kind == KindBar)
}

// restack recomputes the stacked view. It is a no-op while a write-back is
// in progress.
func (c *Controller) restack() bool {
	if !c.stacks() || c.data.Table.Empty() {
		c.stacked = nil
		return false
	}
	return c.stacker.Update(c.data.Table, c)
}

// SetStacked is the stacked write-back.
func (c *Controller) SetStacked(r stack.Result) {
	c.stacked = &r
	for _, fn := range c.onChange {
		fn()
	}
}

// Refresh restacks and reports whether a new stacked view was written.
func (c *Controller) Refresh() bool { return c.restack() }

// seriesColor resolves the color of series i (0-based).
func (c *Controller) seriesColor(i int) drawing.Color {
	if i < len(c.data.Names) {
		if hex, ok := c.opts.Colors[c.data.Names[i]]; ok {
			col, err := render.ParseColor(hex)
			if err == nil {
				return col
			}
			logging.Warnf("[panel] %s: %v", c.opts.ID, err)
		}
	}
	return render.SeriesColor(i)
}

// lines converts the drawn table into render lines.
func (c *Controller) lines() ([]float64, []render.Line, []stack.Band) {
	table := c.data.Table
	var bands []stack.Band
	s, stacked := c.Stacked()
	if stacked {
		table, bands = s.Data, s.Bands
	}
	lines := make([]render.Line, len(table.Series))
	for i := range table.Series {
		name := ""
		if i < len(c.data.Names) {
			name = c.data.Names[i]
		}
		lines[i] = render.Line{
			Name:   name,
			Color:  c.seriesColor(i),
			Values: table.Floats(i),
			Hidden: c.hidden(i + 1),
		}
		if !stacked {
			lines[i].Missing = missingMask(table.Series[i])
		}
	}
	return table.X, lines, bands
}

// missingMask marks the cells no source contributed to, or returns nil when
// there are none.
func missingMask(cells []align.Cell) []bool {
	var mask []bool
	for j, cell := range cells {
		if cell.State != align.Missing {
			continue
		}
		if mask == nil {
			mask = make([]bool, len(cells))
		}
		mask[j] = true
	}
	return mask
}

// Render draws the panel at the given size.
func (c *Controller) Render(size render.Size) (image.Image, error) {
	defer logging.TimeTrack(time.Now(), "render panel "+c.opts.ID)
	if c.data.Empty() {
		return nil, render.ErrNoData
	}
	switch c.data.Kind {
	case KindHistogram:
		x, lines, _ := c.lines()
		return render.BarChart{
			Title: c.opts.Title, Unit: c.opts.Unit, X: x, Width: c.data.BucketSize,
			Lines: lines, LogScale: c.opts.LogScale, Size: size, Hint: c.opts.Hint,
		}.Render()
	case KindBar:
		x, lines, bands := c.lines()
		return render.BarChart{
			Title: c.opts.Title, Unit: c.opts.Unit, X: x, Width: render.BarWidth(x), TimeAxis: true,
			Lines: lines, Bands: bands, LogScale: c.opts.LogScale, Size: size, Hint: c.opts.Hint,
		}.Render()
	case KindHeatmap:
		return c.renderHeatmap(size)
	default:
		x, lines, bands := c.lines()
		return render.TimeSeriesChart{
			Title: c.opts.Title, Unit: c.opts.Unit, X: x, Lines: lines, Bands: bands,
			LogScale: c.opts.LogScale, Size: size, Hint: c.opts.Hint,
		}.Render()
	}
}

// renderHeatmap draws the first visible matrix.
func (c *Controller) renderHeatmap(size render.Size) (image.Image, error) {
	n := c.opts.PaletteSize
	if n <= 0 {
		n = heatmap.DefaultPaletteSize
	}
	palette, err := c.palettes.Get(n, c.opts.PaletteStops)
	if err != nil {
		return nil, err
	}
	trim := c.opts.FocusTrim
	if math.IsNaN(trim) || trim < 0 {
		trim = heatmap.DefaultFocusTrim
	}
	for i, m := range c.data.Heatmaps {
		if c.hidden(i + 1) {
			continue
		}
		return render.HeatmapChart{
			Title: c.opts.Title, Matrix: m, FocusTrim: trim, Palette: palette,
			LogScale: c.opts.LogScale, Size: size, Hint: c.opts.Hint,
		}.Render()
	}
	return nil, render.ErrNoData
}
