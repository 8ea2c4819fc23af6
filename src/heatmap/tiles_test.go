package heatmap

import (
	"image"
	"image/color"
	"math/rand"
	"sort"
	"testing"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

func TestCountsToFills(t *testing.T) {
	fills := CountsToFills(10)([]float64{0, -1, 1, 5, 9})
	if fills[0] != NoFill || fills[1] != NoFill {
		t.Fatalf("non-positive counts must not be drawn: %v", fills)
	}
	// 1: linear 0, rank 1/3 -> 0.1667 -> 1
	// 5: linear 0.5, rank 2/3 -> 0.5833 -> 5
	// 9: linear 1, rank 1 -> 1 -> clamp 9
	want := []int{1, 5, 9}
	for i, w := range want {
		if fills[i+2] != w {
			t.Fatalf("fills %v want tail %v", fills, want)
		}
	}
}

func TestCountsToFills_AllEqual(t *testing.T) {
	fills := CountsToFills(9)([]float64{3, 3, 0, 3})
	for i, f := range []int{4, 4, NoFill, 4} {
		if fills[i] != f {
			t.Fatalf("fills %v", fills)
		}
	}
	if fills := CountsToFills(0)([]float64{1, 2}); fills[0] != NoFill || fills[1] != NoFill {
		t.Fatalf("empty palette should draw nothing: %v", fills)
	}
}

func TestCountsToFills_Monotonic(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	counts := make([]float64, 500)
	for i := range counts {
		counts[i] = float64(rng.Intn(1000))
		if rng.Intn(10) == 0 {
			counts[i] = rng.Float64() * 1e6
		}
	}
	fills := CountsToFills(32)(counts)
	idx := make([]int, len(counts))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return counts[idx[a]] < counts[idx[b]] })
	for k := 1; k < len(idx); k++ {
		a, b := idx[k-1], idx[k]
		if counts[a] < counts[b] && fills[a] > fills[b] {
			t.Fatalf("count %g -> %d but %g -> %d", counts[a], fills[a], counts[b], fills[b])
		}
	}
}

func TestLinearAndLogScale(t *testing.T) {
	lin := LinearScale{DataMin: 0, DataMax: 10, PixelMin: 100, PixelMax: 0}
	if p := lin.Pixel(5); p != 50 {
		t.Fatalf("linear mid %g", p)
	}
	if p := (LinearScale{DataMin: 1, DataMax: 1, PixelMin: 7}).Pixel(3); p != 7 {
		t.Fatalf("degenerate linear %g", p)
	}
	lg := LogScale{DataMin: 1, DataMax: 100, PixelMin: 0, PixelMax: 200}
	if p := lg.Pixel(10); p != 100 {
		t.Fatalf("log mid %g", p)
	}
	if p := lg.Pixel(0); p != 0 {
		t.Fatalf("log of zero should pin to min, got %g", p)
	}
}

func twoByTwo() (Cells, []float64) {
	// Two columns (t=0, t=10), two buckets [0,1) and [1,4).
	return ConvertToHeatmapData([]float64{0, 10}, []float64{0, 1}, [][]float64{{1, 0}, {2, 5}}), []float64{0, 1, 4}
}

// rectsOf reads back the rectangles added to p.
func rectsOf(p *drawing.Path) []Rect {
	if p == nil {
		return nil
	}
	var out []Rect
	for pts := p.Points; len(pts) >= 8; pts = pts[8:] {
		out = append(out, Rect{X: pts[0], Y: pts[1], W: pts[2] - pts[0], H: pts[5] - pts[1]})
	}
	return out
}

func TestBuildTiles_Geometry(t *testing.T) {
	cells, bounds := twoByTwo()
	xs := LinearScale{DataMin: 0, DataMax: 20, PixelMin: 0, PixelMax: 200}
	// y grows upwards: value 0 at pixel 80, value 4 at pixel 0.
	ys := LinearScale{DataMin: 0, DataMax: 4, PixelMin: 80, PixelMax: 0}
	fills := []int{0, NoFill, 1, 1}
	tiles := BuildTiles(cells, bounds, xs, ys, fills, 2)

	if tiles.Count != 3 {
		t.Fatalf("expected 3 tiles got %d", tiles.Count)
	}
	red, green := rectsOf(tiles.Paths[0]), rectsOf(tiles.Paths[1])
	if len(red) != 1 || len(green) != 2 {
		t.Fatalf("rects per color: %d/%d", len(red), len(green))
	}
	if red[0] != (Rect{X: 0, Y: 60, W: 100, H: 20}) {
		t.Fatalf("first tile %+v", red[0])
	}
	if green[1] != (Rect{X: 100, Y: 0, W: 100, H: 60}) {
		t.Fatalf("second column upper tile %+v", green[1])
	}
}

func TestBuildTiles_ViewportAndInferredShape(t *testing.T) {
	cells, bounds := twoByTwo()
	cells.Grid = Grid{} // force inference
	xs := LinearScale{DataMin: 5, DataMax: 25, PixelMin: 0, PixelMax: 200}
	ys := LinearScale{DataMin: 1, DataMax: 4, PixelMin: 90, PixelMax: 0}
	tiles := BuildTiles(cells, bounds, xs, ys, []int{0, 0, 0, 0}, 1)
	// Only column t=10 is in the x range, only bucket [1,4) in the y range.
	if tiles.Count != 1 {
		t.Fatalf("expected a single visible tile, got %d", tiles.Count)
	}
	if r := rectsOf(tiles.Paths[0]); len(r) != 1 || r[0].X != 50 || r[0].W != 100 {
		t.Fatalf("tiles %+v", r)
	}
}

func TestBuildTiles_ClipsToViewport(t *testing.T) {
	cells, bounds := twoByTwo()
	// The t=10 column spans 10..20 but the x range ends at 16.
	xs := LinearScale{DataMin: 0, DataMax: 16, PixelMin: 0, PixelMax: 160}
	// Bucket [1,4) reaches past the y range, which ends at 2.
	ys := LinearScale{DataMin: 0, DataMax: 2, PixelMin: 100, PixelMax: 0}
	tiles := BuildTiles(cells, bounds, xs, ys, []int{0, 0, 0, 0}, 1)
	got := rectsOf(tiles.Paths[0])
	want := []Rect{
		{X: 0, Y: 50, W: 100, H: 50},
		{X: 0, Y: 0, W: 100, H: 50},
		{X: 100, Y: 50, W: 60, H: 50},
		{X: 100, Y: 0, W: 60, H: 50},
	}
	if len(got) != len(want) {
		t.Fatalf("tiles %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("tile %d: got %+v want %+v", i, got[i], want[i])
		}
	}
}

func TestTiles_FillBatchesByColor(t *testing.T) {
	cells, bounds := twoByTwo()
	xs := LinearScale{DataMin: 0, DataMax: 20, PixelMin: 0, PixelMax: 20}
	ys := LinearScale{DataMin: 0, DataMax: 4, PixelMin: 40, PixelMax: 0}
	palette := []drawing.Color{{R: 255, A: 255}, {G: 255, A: 255}, {B: 255, A: 255}}
	tiles := BuildTiles(cells, bounds, xs, ys, []int{0, 2, 0, 0}, len(palette))

	img := image.NewRGBA(image.Rect(0, 0, 20, 40))
	calls, err := tiles.Rasterize(img, palette)
	if err != nil {
		t.Fatalf("rasterize: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected one fill per used color (2), got %d", calls)
	}
	// Center of the bottom-left tile (t=0, bucket 0 -> y 30..40) is red.
	if c := img.RGBAAt(5, 35); c.R < 200 || c.G > 50 {
		t.Fatalf("bottom-left pixel %+v", c)
	}
	// Top-left tile (t=0, bucket 1 -> y 0..30) is blue.
	if c := img.RGBAAt(5, 15); c.B < 200 {
		t.Fatalf("top-left pixel %+v", c)
	}
}

type recordingFiller struct {
	colors []color.Color
	paths  int
}

func (r *recordingFiller) SetFillColor(c color.Color) { r.colors = append(r.colors, c) }
func (r *recordingFiller) Fill(paths ...*drawing.Path) { r.paths += len(paths) }

func TestTiles_FillSkipsUnusedAndOutOfPalette(t *testing.T) {
	cells, bounds := twoByTwo()
	xs := LinearScale{DataMin: 0, DataMax: 20, PixelMin: 0, PixelMax: 20}
	ys := LinearScale{DataMin: 0, DataMax: 4, PixelMin: 40, PixelMax: 0}
	tiles := BuildTiles(cells, bounds, xs, ys, []int{0, 2, 2, 0}, 3)

	rec := &recordingFiller{}
	palette := []drawing.Color{{R: 255, A: 255}, {G: 255, A: 255}}
	if calls := tiles.Fill(rec, palette); calls != 1 || rec.paths != 1 {
		t.Fatalf("calls=%d paths=%d", calls, rec.paths)
	}
	if rec.colors[0] != palette[0] {
		t.Fatalf("fill color %v", rec.colors[0])
	}
}

func TestPaletteCache(t *testing.T) {
	cache := NewPaletteCache()
	p1, err := cache.Get(16, []string{"#000000", "#ffffff"})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(p1) != 16 || p1[0] != (drawing.Color{A: 255}) || p1[15] != (drawing.Color{R: 255, G: 255, B: 255, A: 255}) {
		t.Fatalf("unexpected endpoints %v .. %v", p1[0], p1[len(p1)-1])
	}
	p2, _ := cache.Get(16, []string{"#000000", "#FFFFFF"})
	if &p1[0] != &p2[0] || cache.Len() != 1 {
		t.Fatalf("expected cached palette reuse, len=%d", cache.Len())
	}
	if _, err := cache.Get(8, nil); err != nil || cache.Len() != 2 {
		t.Fatalf("default stops: err=%v len=%d", err, cache.Len())
	}
	if _, err := cache.Get(8, []string{"nope"}); err == nil {
		t.Fatalf("expected error for bad stop")
	}
	if _, err := Gradient(0, nil); err == nil {
		t.Fatalf("expected error for empty palette")
	}
	cache.Reset()
	if cache.Len() != 0 {
		t.Fatalf("reset left %d entries", cache.Len())
	}
	single, _ := Gradient(3, []string{"#102030"})
	if single[0] != single[2] {
		t.Fatalf("single stop should be flat: %v", single)
	}
}
