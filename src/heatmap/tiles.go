package heatmap

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Scale maps data values to device pixels.
type Scale interface {
	Min() float64
	Max() float64
	Pixel(v float64) float64
}

// LinearScale maps [DataMin, DataMax] onto [PixelMin, PixelMax]. PixelMin
// may be larger than PixelMax for axes that grow upwards.
type LinearScale struct {
	DataMin, DataMax   float64
	PixelMin, PixelMax float64
}

func (s LinearScale) Min() float64 { return s.DataMin }
func (s LinearScale) Max() float64 { return s.DataMax }

func (s LinearScale) Pixel(v float64) float64 {
	if s.DataMax == s.DataMin {
		return s.PixelMin
	}
	return s.PixelMin + (v-s.DataMin)/(s.DataMax-s.DataMin)*(s.PixelMax-s.PixelMin)
}

// LogScale is a base-10 logarithmic LinearScale. Values at or below zero are
// pinned to DataMin.
type LogScale struct {
	DataMin, DataMax   float64
	PixelMin, PixelMax float64
}

func (s LogScale) Min() float64 { return s.DataMin }
func (s LogScale) Max() float64 { return s.DataMax }

func (s LogScale) Pixel(v float64) float64 {
	lo := math.Log10(s.positive(s.DataMin))
	hi := math.Log10(s.positive(s.DataMax))
	if hi == lo {
		return s.PixelMin
	}
	return s.PixelMin + (math.Log10(s.positive(v))-lo)/(hi-lo)*(s.PixelMax-s.PixelMin)
}

func (s LogScale) positive(v float64) float64 {
	if v > 0 {
		return v
	}
	if s.DataMin > 0 {
		return s.DataMin
	}
	return 1e-9
}

// Rect is a tile in device pixels.
type Rect struct {
	X, Y, W, H float64
}

// Tiles holds one path per palette index. Paths[i] is nil when no tile uses
// color i.
type Tiles struct {
	Paths []*drawing.Path
	Count int
}

func (t *Tiles) add(fill int, r Rect) {
	if t.Paths[fill] == nil {
		t.Paths[fill] = &drawing.Path{}
	}
	p := t.Paths[fill]
	p.MoveTo(r.X, r.Y)
	p.LineTo(r.X+r.W, r.Y)
	p.LineTo(r.X+r.W, r.Y+r.H)
	p.LineTo(r.X, r.Y+r.H)
	p.Close()
	t.Count++
}

// BuildTiles lays out every visible cell as a rectangle on the path of its
// fill color. Columns start at the cell timestamp and are as wide as the time
// increment between columns; rows span bounds[b]..bounds[b+1] on the value
// scale. Tiles are clipped to the scales' pixel extents. Cells outside the
// scales' ranges or with a NoFill color are skipped.
//
// cells.Grid is used when set; otherwise the shape is inferred from Ys.
func BuildTiles(cells Cells, bounds []float64, xScale, yScale Scale, fills []int, paletteSize int) Tiles {
	out := Tiles{Paths: make([]*drawing.Path, max(paletteSize, 0))}
	grid := cells.Grid
	if grid.Rows == 0 {
		grid = InferGrid(cells.Ys)
	}
	if grid.Rows == 0 || cells.Len() == 0 || paletteSize <= 0 {
		return out
	}

	// Time increment between adjacent columns; a single column spans the
	// rest of the visible range.
	var step float64
	if grid.Cols > 1 && grid.Rows < len(cells.Xs) {
		step = cells.Xs[grid.Rows] - cells.Xs[0]
	}
	if step <= 0 {
		step = xScale.Max() - cells.Xs[0]
	}

	xMin, xMax := xScale.Min(), xScale.Max()
	yMin, yMax := yScale.Min(), yScale.Max()
	view := extent(xScale, yScale)
	for i := 0; i < cells.Len() && i < len(fills); i++ {
		fill := fills[i]
		if fill < 0 || fill >= paletteSize {
			continue
		}
		ts := cells.Xs[i]
		if ts < xMin || ts > xMax {
			continue
		}
		b := int(cells.Ys[i])
		if b < 0 || b+1 >= len(bounds) {
			continue
		}
		lo, hi := bounds[b], bounds[b+1]
		if hi <= yMin || lo >= yMax {
			continue
		}
		x0, x1 := xScale.Pixel(ts), xScale.Pixel(ts+step)
		y0, y1 := yScale.Pixel(lo), yScale.Pixel(hi)
		r, ok := view.clip(Rect{
			X: math.Min(x0, x1),
			Y: math.Min(y0, y1),
			W: math.Abs(x1 - x0),
			H: math.Abs(y1 - y0),
		})
		if ok {
			out.add(fill, r)
		}
	}
	return out
}

// extent is the pixel rectangle covered by the two scales.
func extent(xScale, yScale Scale) Rect {
	x0, x1 := xScale.Pixel(xScale.Min()), xScale.Pixel(xScale.Max())
	y0, y1 := yScale.Pixel(yScale.Min()), yScale.Pixel(yScale.Max())
	return Rect{
		X: math.Min(x0, x1),
		Y: math.Min(y0, y1),
		W: math.Abs(x1 - x0),
		H: math.Abs(y1 - y0),
	}
}

// clip intersects r with v; ok is false when nothing is left.
func (v Rect) clip(r Rect) (Rect, bool) {
	x0, y0 := math.Max(r.X, v.X), math.Max(r.Y, v.Y)
	x1, y1 := math.Min(r.X+r.W, v.X+v.W), math.Min(r.Y+r.H, v.Y+v.H)
	if x1 <= x0 || y1 <= y0 {
		return Rect{}, false
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}, true
}

// Filler is the part of a graphic context Fill needs.
type Filler interface {
	SetFillColor(c color.Color)
	Fill(paths ...*drawing.Path)
}

// Fill draws every non-empty path with its palette color, one fill call per
// color, and returns the number of fill calls.
func (t Tiles) Fill(gc Filler, palette []drawing.Color) int {
	calls := 0
	for i, p := range t.Paths {
		if p == nil || p.IsEmpty() || i >= len(palette) {
			continue
		}
		gc.SetFillColor(palette[i])
		gc.Fill(p)
		calls++
	}
	return calls
}

// Rasterize paints the tiles onto img.
func (t Tiles) Rasterize(img *image.RGBA, palette []drawing.Color) (int, error) {
	gc, err := drawing.NewRasterGraphicContext(img)
	if err != nil {
		return 0, fmt.Errorf("raster context: %w", err)
	}
	return t.Fill(gc, palette), nil
}

var _ Filler = (*drawing.RasterGraphicContext)(nil)
