package render

import (
	"errors"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/iafilius/ChartEngine/src/heatmap"
)

// canvasPoint maps a data point into the canvas box the way go-chart's own
// series do.
func canvasPoint(canvasBox chart.Box, xrange, yrange chart.Range, x, y float64) (int, int) {
	return canvasBox.Left + xrange.Translate(x), canvasBox.Bottom - yrange.Translate(y)
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// lineSeries strokes a line that breaks at NaN values and runs straight
// across positions marked in skip. When lower is set the area between the
// line and lower is filled first.
type lineSeries struct {
	name  string
	style chart.Style
	xs    []float64
	ys    []float64
	lower []float64
	skip  []bool
}

var _ chart.Series = lineSeries{}

func (s lineSeries) GetName() string           { return s.name }
func (s lineSeries) GetYAxis() chart.YAxisType { return chart.YAxisPrimary }
func (s lineSeries) GetStyle() chart.Style     { return s.style }

func (s lineSeries) Validate() error {
	if len(s.xs) != len(s.ys) {
		return errors.New("line series: x and y lengths differ")
	}
	if s.lower != nil && len(s.lower) != len(s.ys) {
		return errors.New("line series: band length differs")
	}
	if s.skip != nil && len(s.skip) != len(s.ys) {
		return errors.New("line series: skip mask length differs")
	}
	return nil
}

// runs splits 0..n-1 into index runs where every slice in vals is finite.
// Indices marked in skip are left out without ending the run.
func runs(n int, skip []bool, vals ...[]float64) [][]int {
	var out [][]int
	var cur []int
	for i := 0; i < n; i++ {
		if skip != nil && skip[i] {
			continue
		}
		ok := true
		for _, v := range vals {
			if !finite(v[i]) {
				ok = false
				break
			}
		}
		if ok {
			cur = append(cur, i)
			continue
		}
		if len(cur) > 0 {
			out = append(out, cur)
			cur = nil
		}
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

func (s lineSeries) Render(r chart.Renderer, canvasBox chart.Box, xrange, yrange chart.Range, defaults chart.Style) {
	style := s.style.InheritFrom(defaults)
	if s.lower != nil {
		r.SetFillColor(style.GetFillColor())
		for _, run := range runs(len(s.xs), s.skip, s.ys, s.lower) {
			if len(run) < 2 {
				continue
			}
			x, y := canvasPoint(canvasBox, xrange, yrange, s.xs[run[0]], s.ys[run[0]])
			r.MoveTo(x, y)
			for _, i := range run[1:] {
				r.LineTo(canvasPoint(canvasBox, xrange, yrange, s.xs[i], s.ys[i]))
			}
			for k := len(run) - 1; k >= 0; k-- {
				i := run[k]
				r.LineTo(canvasPoint(canvasBox, xrange, yrange, s.xs[i], s.lower[i]))
			}
			r.Close()
		}
		r.Fill()
	}

	r.SetStrokeColor(style.GetStrokeColor())
	r.SetStrokeWidth(style.GetStrokeWidth())
	var dots [][2]int
	for _, run := range runs(len(s.xs), s.skip, s.ys) {
		x, y := canvasPoint(canvasBox, xrange, yrange, s.xs[run[0]], s.ys[run[0]])
		if len(run) == 1 {
			dots = append(dots, [2]int{x, y})
			continue
		}
		r.MoveTo(x, y)
		for _, i := range run[1:] {
			r.LineTo(canvasPoint(canvasBox, xrange, yrange, s.xs[i], s.ys[i]))
		}
	}
	r.Stroke()
	if len(dots) > 0 {
		r.SetFillColor(style.GetStrokeColor())
		for _, d := range dots {
			rectPath(r, d[0]-2, d[1]-2, d[0]+2, d[1]+2)
		}
		r.Fill()
	}
}

func rectPath(r chart.Renderer, x0, y0, x1, y1 int) {
	r.MoveTo(x0, y0)
	r.LineTo(x1, y0)
	r.LineTo(x1, y1)
	r.LineTo(x0, y1)
	r.Close()
}

// barSeries draws one bar per bucket from starts[i] to starts[i]+width,
// rising from base[i] (0 when base is nil) to counts[i].
type barSeries struct {
	name   string
	style  chart.Style
	starts []float64
	width  float64
	counts []float64
	base   []float64
}

var _ chart.Series = barSeries{}

func (s barSeries) GetName() string           { return s.name }
func (s barSeries) GetYAxis() chart.YAxisType { return chart.YAxisPrimary }
func (s barSeries) GetStyle() chart.Style     { return s.style }

func (s barSeries) Validate() error {
	if len(s.starts) != len(s.counts) {
		return errors.New("bar series: bucket and count lengths differ")
	}
	if !(s.width > 0) {
		return errors.New("bar series: bucket width must be positive")
	}
	if s.base != nil && len(s.base) != len(s.counts) {
		return errors.New("bar series: base length differs")
	}
	return nil
}

func (s barSeries) Render(r chart.Renderer, canvasBox chart.Box, xrange, yrange chart.Range, defaults chart.Style) {
	style := s.style.InheritFrom(defaults)
	r.SetFillColor(style.GetFillColor())
	r.SetStrokeColor(style.GetStrokeColor())
	r.SetStrokeWidth(style.GetStrokeWidth())
	drawn := 0
	for i, c := range s.counts {
		b := 0.0
		if s.base != nil && finite(s.base[i]) {
			b = s.base[i]
		}
		if !finite(c) || c == b {
			continue
		}
		x0, y0 := canvasPoint(canvasBox, xrange, yrange, s.starts[i], b)
		x1, y1 := canvasPoint(canvasBox, xrange, yrange, s.starts[i]+s.width, c)
		rectPath(r, x0, y1, x1-1, y0)
		drawn++
	}
	if drawn > 0 {
		r.FillStroke()
	}
}

// heatmapSeries lays the tiles out for the canvas box. go-chart's Renderer
// cannot fill prebuilt paths, so Render only records the tiles in layer; the
// chart rasterizes them onto the finished image, one fill per palette color.
// In log mode the y range is in log10 units.
type heatmapSeries struct {
	cells   heatmap.Cells
	bounds  []float64
	fills   []int
	palette []drawing.Color
	logY    bool
	layer   *heatmap.Tiles
}

var _ chart.Series = heatmapSeries{}

func (s heatmapSeries) GetName() string           { return "" }
func (s heatmapSeries) GetYAxis() chart.YAxisType { return chart.YAxisPrimary }
func (s heatmapSeries) GetStyle() chart.Style     { return chart.Style{} }

func (s heatmapSeries) Validate() error {
	if len(s.fills) != s.cells.Len() {
		return errors.New("heatmap series: fill and cell counts differ")
	}
	if len(s.palette) == 0 {
		return errors.New("heatmap series: empty palette")
	}
	if s.layer == nil {
		return errors.New("heatmap series: no tile layer")
	}
	return nil
}

func (s heatmapSeries) scales(canvasBox chart.Box, xrange, yrange chart.Range) (heatmap.Scale, heatmap.Scale) {
	xs := heatmap.LinearScale{
		DataMin: xrange.GetMin(), DataMax: xrange.GetMax(),
		PixelMin: float64(canvasBox.Left), PixelMax: float64(canvasBox.Right),
	}
	if s.logY {
		return xs, heatmap.LogScale{
			DataMin: math.Pow(10, yrange.GetMin()), DataMax: math.Pow(10, yrange.GetMax()),
			PixelMin: float64(canvasBox.Bottom), PixelMax: float64(canvasBox.Top),
		}
	}
	return xs, heatmap.LinearScale{
		DataMin: yrange.GetMin(), DataMax: yrange.GetMax(),
		PixelMin: float64(canvasBox.Bottom), PixelMax: float64(canvasBox.Top),
	}
}

func (s heatmapSeries) Render(_ chart.Renderer, canvasBox chart.Box, xrange, yrange chart.Range, _ chart.Style) {
	xs, ys := s.scales(canvasBox, xrange, yrange)
	*s.layer = heatmap.BuildTiles(s.cells, s.bounds, xs, ys, s.fills, len(s.palette))
}
