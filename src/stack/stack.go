// Package stack computes cumulative (stacked) series and the fill bands
// between them.
package stack

import (
	"fmt"

	"github.com/iafilius/ChartEngine/src/align"
)

// Band is the fill region between two cumulative curves. Series holds the
// 1-based series indices {upper, lower}; the upper curve is the later series.
type Band struct {
	Series [2]int
}

// Result is the stacked table plus its bands.
type Result struct {
	Data  align.Table
	Bands []Band
}

// Stack accumulates included series in order. Series are addressed with
// 1-based indices (0 is the x-axis), the same numbering excluded receives.
// For every x index the stacked value of series i is the running sum up to
// and including i; gaps contribute 0. Excluded series are passed through
// unchanged and do not contribute to the sum. excluded may be nil.
//
// Panics if a series length differs from the x length.
func Stack(t align.Table, excluded func(series int) bool) Result {
	if excluded == nil {
		excluded = func(int) bool { return false }
	}
	n := len(t.X)
	accum := make([]float64, n)
	out := align.Table{X: append([]float64(nil), t.X...), Series: make([][]align.Cell, len(t.Series))}
	for si, s := range t.Series {
		if len(s) != n {
			panic(fmt.Sprintf("stack: series %d has %d values for %d x positions", si+1, len(s), n))
		}
		if excluded(si + 1) {
			out.Series[si] = append([]align.Cell(nil), s...)
			continue
		}
		stacked := make([]align.Cell, n)
		for i, c := range s {
			if c.Valid() {
				accum[i] += c.Value
			}
			stacked[i] = align.Val(accum[i])
		}
		out.Series[si] = stacked
	}
	return Result{Data: out, Bands: bands(len(t.Series), excluded)}
}

// bands pairs every included series with the next included one.
func bands(count int, excluded func(int) bool) []Band {
	var out []Band
	prev := -1
	for i := 1; i <= count; i++ {
		if excluded(i) {
			continue
		}
		if prev > 0 {
			out = append(out, Band{Series: [2]int{i, prev}})
		}
		prev = i
	}
	return out
}
