package query

import (
	"math"
	"sort"
	"strconv"

	"github.com/iafilius/ChartEngine/src/heatmap"
)

// BucketLabel is the label carrying a cumulative bucket's upper bound.
const BucketLabel = "le"

// HeatmapFromBuckets turns cumulative histogram bucket series (one series
// per "le" bound, summed across all other labels) into a count matrix.
// Counts are de-accumulated per timestamp and clamped at 0. A +Inf bound is
// extrapolated from the width of the bucket before it. ok is false when the
// result carries no bucket series.
func HeatmapFromBuckets(r Result) (m heatmap.Matrix, ok bool) {
	byLE := map[float64]map[float64]float64{}
	tsSet := map[float64]struct{}{}
	for _, s := range r.Series {
		raw, has := s.Labels[BucketLabel]
		if !has {
			continue
		}
		le, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(le) {
			continue
		}
		row, exists := byLE[le]
		if !exists {
			row = map[float64]float64{}
			byLE[le] = row
		}
		for _, p := range s.Values {
			row[p.Timestamp] += p.Float()
			tsSet[p.Timestamp] = struct{}{}
		}
	}
	if len(byLE) == 0 {
		return heatmap.Matrix{}, false
	}

	les := make([]float64, 0, len(byLE))
	for le := range byLE {
		les = append(les, le)
	}
	sort.Float64s(les)
	timestamps := make([]float64, 0, len(tsSet))
	for ts := range tsSet {
		timestamps = append(timestamps, ts)
	}
	sort.Float64s(timestamps)

	counts := make([][]float64, len(timestamps))
	for ti, ts := range timestamps {
		row := make([]float64, len(les))
		prev := 0.0
		for bi, le := range les {
			cum := byLE[le][ts]
			if d := cum - prev; d > 0 {
				row[bi] = d
			}
			if cum > prev {
				prev = cum
			}
		}
		counts[ti] = row
	}

	return heatmap.Matrix{
		Name:       r.Name,
		Bounds:     bucketBounds(les),
		Timestamps: timestamps,
		Counts:     counts,
	}, true
}

// bucketBounds prepends a lower edge to the upper bounds and replaces a
// trailing +Inf with a finite edge.
func bucketBounds(les []float64) []float64 {
	out := make([]float64, 0, len(les)+1)
	first := les[0]
	switch {
	case math.IsInf(first, 1):
		out = append(out, 0)
	case first > 0:
		out = append(out, 0)
	case len(les) > 1 && !math.IsInf(les[1], 1):
		out = append(out, first-(les[1]-first))
	default:
		out = append(out, first-1)
	}
	out = append(out, les...)
	last := len(out) - 1
	if math.IsInf(out[last], 1) {
		prev := out[last-1]
		width := 1.0
		if last >= 2 {
			width = prev - out[last-2]
		}
		if width <= 0 {
			width = 1
		}
		out[last] = prev + width
	}
	return out
}
