package heatmap

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// DefaultStops is the gradient used when a panel does not configure one.
var DefaultStops = []string{"#0d0887", "#6a00a8", "#b12a90", "#e16462", "#fca636", "#f0f921"}

// DefaultPaletteSize is the number of colors a heatmap is drawn with.
const DefaultPaletteSize = 64

// Gradient interpolates count colors across the stops in CIE-Lab space.
func Gradient(count int, stops []string) ([]drawing.Color, error) {
	if count <= 0 {
		return nil, fmt.Errorf("palette size must be positive, got %d", count)
	}
	if len(stops) == 0 {
		stops = DefaultStops
	}
	parsed := make([]colorful.Color, len(stops))
	for i, s := range stops {
		c, err := colorful.Hex(s)
		if err != nil {
			return nil, fmt.Errorf("gradient stop %d: %w", i, err)
		}
		parsed[i] = c
	}
	out := make([]drawing.Color, count)
	for i := range out {
		c := parsed[0]
		if len(parsed) > 1 {
			t := 0.0
			if count > 1 {
				t = float64(i) / float64(count-1)
			}
			seg := t * float64(len(parsed)-1)
			k := int(math.Floor(seg))
			if k > len(parsed)-2 {
				k = len(parsed) - 2
			}
			c = parsed[k].BlendLab(parsed[k+1], seg-float64(k))
		}
		r, g, b := c.Clamped().RGB255()
		out[i] = drawing.Color{R: r, G: g, B: b, A: 255}
	}
	return out, nil
}

// PaletteCache memoizes gradients by (size, stops). It never evicts; call
// Reset to drop everything. Safe for concurrent use.
type PaletteCache struct {
	mu      sync.Mutex
	entries map[string][]drawing.Color
}

// NewPaletteCache returns an empty cache.
func NewPaletteCache() *PaletteCache {
	return &PaletteCache{entries: make(map[string][]drawing.Color)}
}

func paletteKey(count int, stops []string) string {
	return strconv.Itoa(count) + "|" + strings.ToLower(strings.Join(stops, ","))
}

// Get returns the palette for count colors across stops, building it once.
func (c *PaletteCache) Get(count int, stops []string) ([]drawing.Color, error) {
	key := paletteKey(count, stops)
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.entries[key]; ok {
		return p, nil
	}
	p, err := Gradient(count, stops)
	if err != nil {
		return nil, err
	}
	c.entries[key] = p
	return p, nil
}

// Len returns the number of cached palettes.
func (c *PaletteCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Reset empties the cache.
func (c *PaletteCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string][]drawing.Color)
}
