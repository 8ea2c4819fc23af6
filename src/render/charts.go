// Package render draws panel data into PNG images with go-chart.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"math"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/iafilius/ChartEngine/src/heatmap"
	"github.com/iafilius/ChartEngine/src/stack"
)

// ErrNoData is returned for a chart with nothing to draw.
var ErrNoData = errors.New("no data to draw")

// Line is one drawable series. NaN values are gaps that break the line.
// Missing marks positions where the series has no sample at all; the line
// runs straight across them. A nil Missing marks nothing.
type Line struct {
	Name    string
	Color   drawing.Color
	Values  []float64
	Missing []bool
	Hidden  bool
}

// ParseColor parses a #rrggbb color.
func ParseColor(hex string) (drawing.Color, error) {
	h := strings.TrimSpace(hex)
	if !strings.HasPrefix(h, "#") {
		h = "#" + h
	}
	c, err := colorful.Hex(h)
	if err != nil {
		return drawing.Color{}, fmt.Errorf("color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return drawing.Color{R: r, G: g, B: b, A: 255}, nil
}

// SeriesColor is the default color of the i-th (0-based) series.
func SeriesColor(i int) drawing.Color { return chart.GetDefaultColor(i) }

func lineStyle(c drawing.Color) chart.Style {
	return chart.Style{StrokeColor: c, StrokeWidth: 1.5, FillColor: c.WithAlpha(64)}
}

func valueMapper(log bool) func(float64) float64 {
	if !log {
		return func(v float64) float64 { return v }
	}
	return func(v float64) float64 {
		if v <= 0 || !finite(v) {
			return math.NaN()
		}
		return math.Log10(v)
	}
}

// renderChart renders ch to an image, paints the layers over it in order and
// overlays the hint.
func renderChart(ch chart.Chart, legend bool, hint string, layers ...func(*image.RGBA) error) (image.Image, error) {
	if legend {
		ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	}
	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render %q: %w", ch.Title, err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("decode %q: %w", ch.Title, err)
	}
	if len(layers) > 0 {
		rgba := toRGBA(img)
		for _, layer := range layers {
			if err := layer(rgba); err != nil {
				return nil, fmt.Errorf("render %q: %w", ch.Title, err)
			}
		}
		img = rgba
	}
	return DrawHint(img, hint), nil
}

func background(hint string) chart.Style {
	bottom := 28
	if hint != "" {
		bottom += 18
	}
	return chart.Style{Padding: chart.Box{Top: 14, Left: 16, Right: 12, Bottom: bottom}}
}

// xRange pads a degenerate range so go-chart accepts it.
func xRange(xs []float64) (float64, float64) {
	lo, hi := xs[0], xs[len(xs)-1]
	if hi <= lo {
		hi = lo + 1000
	}
	return lo, hi
}

// yExtent returns the finite min and max across visible series.
func yExtent(series ...[]float64) (lo, hi float64, ok bool) {
	lo, hi = math.MaxFloat64, -math.MaxFloat64
	for _, s := range series {
		for _, v := range s {
			if !finite(v) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
			ok = true
		}
	}
	return lo, hi, ok
}

// yAxis builds the value axis for data already mapped through valueMapper.
func yAxis(name string, lo, hi float64, log bool) chart.YAxis {
	if log {
		a, b := math.Floor(lo), math.Ceil(hi)
		if b <= a {
			b = a + 1
		}
		return chart.YAxis{Name: name, Range: &chart.ContinuousRange{Min: a, Max: b}, Ticks: LogTicks(a, b)}
	}
	a, b := ZeroBounds(lo, hi)
	return chart.YAxis{Name: name, Range: &chart.ContinuousRange{Min: a, Max: b}, Ticks: NumericTicks(a, b, 6)}
}

// TimeSeriesChart is a line panel over Unix millisecond timestamps. Bands
// use the 1-based series numbering of Lines and are drawn as fills between
// the paired lines.
type TimeSeriesChart struct {
	Title    string
	Unit     string
	X        []float64
	Lines    []Line
	Bands    []stack.Band
	LogScale bool
	Size     Size
	Hint     string
}

// Render draws the chart.
func (c TimeSeriesChart) Render() (image.Image, error) {
	if len(c.X) == 0 {
		return nil, ErrNoData
	}
	to := valueMapper(c.LogScale)
	mapped := make([][]float64, len(c.Lines))
	var visible [][]float64
	for i, l := range c.Lines {
		m := make([]float64, len(l.Values))
		for j, v := range l.Values {
			m[j] = to(v)
		}
		mapped[i] = m
		if !l.Hidden {
			visible = append(visible, m)
		}
	}
	lo, hi, ok := yExtent(visible...)
	if !ok {
		return nil, ErrNoData
	}

	lowerOf := map[int]int{}
	for _, b := range c.Bands {
		lowerOf[b.Series[0]] = b.Series[1]
	}
	var series []chart.Series
	for i, l := range c.Lines {
		if l.Hidden {
			continue
		}
		s := lineSeries{name: l.Name, style: lineStyle(l.Color), xs: c.X, ys: mapped[i]}
		if len(l.Missing) == len(c.X) {
			s.skip = l.Missing
		}
		if lower, has := lowerOf[i+1]; has && lower >= 1 && lower <= len(mapped) && !c.Lines[lower-1].Hidden {
			s.lower = mapped[lower-1]
		}
		series = append(series, s)
	}

	size := c.Size.orDefault()
	xMin, xMax := xRange(c.X)
	ch := chart.Chart{
		Title:      c.Title,
		Width:      size.Width,
		Height:     size.Height,
		Background: background(c.Hint),
		XAxis:      chart.XAxis{Name: "Time", Range: &chart.ContinuousRange{Min: xMin, Max: xMax}, Ticks: TimeTicks(xMin, xMax)},
		YAxis:      yAxis(c.Unit, lo, hi, c.LogScale),
		Series:     series,
	}
	return renderChart(ch, true, c.Hint)
}

// BarChart draws one bar per X position and line. Histograms use bucket
// starts on X with Width set to the bucket size; bar panels use timestamps.
// Bands stack bars on top of their lower series.
type BarChart struct {
	Title    string
	Unit     string
	X        []float64
	Width    float64
	TimeAxis bool
	Lines    []Line
	Bands    []stack.Band
	LogScale bool
	Size     Size
	Hint     string
}

// BarWidth is 80% of the smallest step between ascending xs.
func BarWidth(xs []float64) float64 {
	w := math.MaxFloat64
	for i := 1; i < len(xs); i++ {
		if d := xs[i] - xs[i-1]; d > 0 && d < w {
			w = d
		}
	}
	if w == math.MaxFloat64 {
		return 1000
	}
	return w * 0.8
}

// Render draws the chart.
func (c BarChart) Render() (image.Image, error) {
	if len(c.X) == 0 || !(c.Width > 0) {
		return nil, ErrNoData
	}
	to := valueMapper(c.LogScale)
	mapped := make([][]float64, len(c.Lines))
	var visible [][]float64
	for i, l := range c.Lines {
		m := make([]float64, len(l.Values))
		for j, v := range l.Values {
			m[j] = to(v)
		}
		mapped[i] = m
		if !l.Hidden {
			visible = append(visible, m)
		}
	}
	lo, hi, ok := yExtent(visible...)
	if !ok {
		return nil, ErrNoData
	}
	if c.LogScale {
		// Bars rise from the bottom decade rather than from 0.
		lo = math.Floor(lo)
	}

	lowerOf := map[int]int{}
	for _, b := range c.Bands {
		lowerOf[b.Series[0]] = b.Series[1]
	}
	var series []chart.Series
	for i, l := range c.Lines {
		if l.Hidden {
			continue
		}
		st := lineStyle(l.Color)
		st.FillColor = l.Color.WithAlpha(160)
		st.StrokeWidth = 1
		s := barSeries{name: l.Name, style: st, starts: c.X, width: c.Width, counts: mapped[i]}
		if lower, has := lowerOf[i+1]; has && lower >= 1 && lower <= len(mapped) && !c.Lines[lower-1].Hidden {
			s.base = mapped[lower-1]
		} else if c.LogScale {
			s.base = constant(len(c.X), lo)
		}
		series = append(series, s)
	}

	size := c.Size.orDefault()
	xMin, xMax := c.X[0], c.X[len(c.X)-1]+c.Width
	xa := chart.XAxis{Name: "Bucket", Range: &chart.ContinuousRange{Min: xMin, Max: xMax}, Ticks: NumericTicks(xMin, xMax, 8)}
	if c.TimeAxis {
		xa = chart.XAxis{Name: "Time", Range: &chart.ContinuousRange{Min: xMin, Max: xMax}, Ticks: TimeTicks(xMin, xMax)}
	}
	if !c.LogScale {
		lo = math.Min(lo, 0)
	}
	ch := chart.Chart{
		Title:      c.Title,
		Width:      size.Width,
		Height:     size.Height,
		Background: background(c.Hint),
		XAxis:      xa,
		YAxis:      yAxis(c.Unit, lo, hi, c.LogScale),
		Series:     series,
	}
	return renderChart(ch, true, c.Hint)
}

func constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// HeatmapChart draws a count matrix focused on its populated buckets.
type HeatmapChart struct {
	Title     string
	Matrix    heatmap.Matrix
	FocusTrim float64
	Palette   []drawing.Color
	LogScale  bool
	Size      Size
	Hint      string
}

// Render draws the chart.
func (c HeatmapChart) Render() (image.Image, error) {
	m := c.Matrix
	if len(m.Timestamps) == 0 || m.NumBuckets() == 0 {
		return nil, ErrNoData
	}
	if len(c.Palette) == 0 {
		return nil, errors.New("heatmap palette is empty")
	}
	f := m.Focus(c.FocusTrim)
	if f.Hi < f.Lo {
		return nil, ErrNoData
	}
	cells := m.Cells()
	fills := heatmap.CountsToFills(len(c.Palette))(cells.Counts)

	xMin := m.Timestamps[0]
	xMax := m.Timestamps[len(m.Timestamps)-1]
	if len(m.Timestamps) > 1 {
		xMax += m.Timestamps[1] - m.Timestamps[0]
	}
	if xMax <= xMin {
		xMax = xMin + 1000
	}

	logY := c.LogScale && f.MaxY > 0
	yMin, yMax := f.MinY, f.MaxY
	var ya chart.YAxis
	if logY {
		if yMin <= 0 {
			yMin = firstPositive(f.Ends)
		}
		a, b := math.Log10(yMin), math.Log10(yMax)
		if b <= a {
			b = a + 1
		}
		ya = chart.YAxis{Name: "Bucket", Range: &chart.ContinuousRange{Min: a, Max: b}, Ticks: LogTicks(a, b)}
	} else {
		if yMax <= yMin {
			yMax = yMin + 1
		}
		ya = chart.YAxis{Name: "Bucket", Range: &chart.ContinuousRange{Min: yMin, Max: yMax}, Ticks: NumericTicks(yMin, yMax, 6)}
	}

	size := c.Size.orDefault()
	tiles := &heatmap.Tiles{}
	hs := heatmapSeries{cells: cells, bounds: m.Bounds, fills: fills, palette: c.Palette, logY: logY, layer: tiles}
	ch := chart.Chart{
		Title:      c.Title,
		Width:      size.Width,
		Height:     size.Height,
		Background: background(c.Hint),
		XAxis:      chart.XAxis{Name: "Time", Range: &chart.ContinuousRange{Min: xMin, Max: xMax}, Ticks: TimeTicks(xMin, xMax)},
		YAxis:      ya,
		Series:     []chart.Series{hs},
	}
	return renderChart(ch, false, c.Hint, func(img *image.RGBA) error {
		_, err := tiles.Rasterize(img, c.Palette)
		return err
	})
}

func firstPositive(vs []float64) float64 {
	for _, v := range vs {
		if v > 0 {
			return v
		}
	}
	return 1
}
