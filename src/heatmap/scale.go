package heatmap

import (
	"math"
	"sort"
)

// NoFill marks a cell that gets no tile.
const NoFill = -1

// HybridWeight is the share of the linear component in the color scale; the
// rest comes from the percentile rank. The 50/50 split has no documented
// rationale and is kept as a tunable.
const HybridWeight = 0.5

// CountsToFills returns a mapper from counts to palette indices.
//
// Counts <= 0 (and NaN) map to NoFill. Every other count is placed by a blend
// of its linear position between the smallest and largest positive count and
// its percentile rank among them. When all positive counts are equal they
// map to the middle of the palette. The mapping is monotonic non-decreasing.
func CountsToFills(paletteSize int) func(counts []float64) []int {
	return func(counts []float64) []int {
		fills := make([]int, len(counts))
		valid := make([]float64, 0, len(counts))
		for _, c := range counts {
			if c > 0 {
				valid = append(valid, c)
			}
		}
		if paletteSize <= 0 || len(valid) == 0 {
			for i := range fills {
				fills[i] = NoFill
			}
			return fills
		}
		sort.Float64s(valid)
		lo, hi := valid[0], valid[len(valid)-1]
		for i, c := range counts {
			if !(c > 0) {
				fills[i] = NoFill
				continue
			}
			if hi == lo {
				fills[i] = paletteSize / 2
				continue
			}
			linear := (c - lo) / (hi - lo)
			atOrBelow := sort.Search(len(valid), func(k int) bool { return valid[k] > c })
			rank := float64(atOrBelow) / float64(len(valid))
			hybrid := HybridWeight*linear + (1-HybridWeight)*rank
			idx := int(math.Floor(hybrid * float64(paletteSize)))
			if idx < 0 {
				idx = 0
			}
			if idx > paletteSize-1 {
				idx = paletteSize - 1
			}
			fills[i] = idx
		}
		return fills
	}
}
