// Package heatmap turns time x bucket count matrices into colored tiles.
//
// The pipeline is: merge per-query matrices that share bucket bounds
// (MergeByBounds), flatten to parallel triples (ConvertToHeatmapData), map
// counts to palette indices (CountsToFills), and build one vector path per
// palette color (BuildTiles) so a canvas needs at most one fill per color.
// FocusHeatmap trims sparse buckets off both ends of the value axis.
package heatmap

import (
	"sort"
)

// Matrix holds bucketed counts over time. Bounds has one more entry than
// there are buckets; Counts[t][b] is the count of bucket b at Timestamps[t].
// Rows may be shorter than the bucket count, missing entries read as 0.
type Matrix struct {
	Name       string
	Bounds     []float64
	Timestamps []float64
	Counts     [][]float64
}

// NumBuckets returns len(Bounds)-1, or 0.
func (m Matrix) NumBuckets() int {
	if len(m.Bounds) < 2 {
		return 0
	}
	return len(m.Bounds) - 1
}

// Count returns Counts[t][b], treating absent entries as 0.
func (m Matrix) Count(t, b int) float64 {
	if t >= len(m.Counts) || b >= len(m.Counts[t]) {
		return 0
	}
	return m.Counts[t][b]
}

// Cells flattens the matrix with bucket indices on the y dimension.
func (m Matrix) Cells() Cells {
	idx := make([]float64, m.NumBuckets())
	for i := range idx {
		idx[i] = float64(i)
	}
	return ConvertToHeatmapData(m.Timestamps, idx, m.Counts)
}

func sameBounds(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// MergeByBounds groups matrices with element-wise equal bounds and sums the
// counts of each group per timestamp. A timestamp missing from one member
// contributes zeros. Every output row has exactly NumBuckets entries and the
// timestamps are ascending. Groups keep the order of their first member.
func MergeByBounds(series []Matrix) []Matrix {
	var groups [][]Matrix
	for _, s := range series {
		placed := false
		for gi := range groups {
			if sameBounds(groups[gi][0].Bounds, s.Bounds) {
				groups[gi] = append(groups[gi], s)
				placed = true
				break
			}
		}
		if !placed {
			groups = append(groups, []Matrix{s})
		}
	}

	out := make([]Matrix, 0, len(groups))
	for _, g := range groups {
		out = append(out, sumGroup(g))
	}
	return out
}

func sumGroup(g []Matrix) Matrix {
	n := g[0].NumBuckets()
	byTS := make(map[float64][]float64)
	for _, m := range g {
		for ti, ts := range m.Timestamps {
			row, ok := byTS[ts]
			if !ok {
				row = make([]float64, n)
				byTS[ts] = row
			}
			for b := 0; b < n; b++ {
				row[b] += m.Count(ti, b)
			}
		}
	}
	timestamps := make([]float64, 0, len(byTS))
	for ts := range byTS {
		timestamps = append(timestamps, ts)
	}
	sort.Float64s(timestamps)
	counts := make([][]float64, len(timestamps))
	for i, ts := range timestamps {
		counts[i] = byTS[ts]
	}
	return Matrix{
		Name:       g[0].Name,
		Bounds:     append([]float64(nil), g[0].Bounds...),
		Timestamps: timestamps,
		Counts:     counts,
	}
}

// Grid is the explicit shape of a flattened matrix.
type Grid struct {
	Cols int // timestamps
	Rows int // buckets per timestamp
}

// Len is the number of cells.
func (g Grid) Len() int { return g.Cols * g.Rows }

// Cells is the flattened (timestamp, bucket, count) triple set in
// timestamp-major order, plus its shape.
type Cells struct {
	Xs     []float64
	Ys     []float64
	Counts []float64
	Grid   Grid
}

// Len returns the number of triples.
func (c Cells) Len() int { return len(c.Xs) }

// ConvertToHeatmapData flattens counts row-major: for every timestamp every
// bucket index yields one triple. Missing counts are 0, so ragged or short
// input is accepted.
func ConvertToHeatmapData(timestamps, bucketIndices []float64, counts [][]float64) Cells {
	total := len(timestamps) * len(bucketIndices)
	out := Cells{
		Xs:     make([]float64, 0, total),
		Ys:     make([]float64, 0, total),
		Counts: make([]float64, 0, total),
		Grid:   Grid{Cols: len(timestamps), Rows: len(bucketIndices)},
	}
	for i, ts := range timestamps {
		var row []float64
		if i < len(counts) {
			row = counts[i]
		}
		for j, b := range bucketIndices {
			c := 0.0
			if j < len(row) {
				c = row[j]
			}
			out.Xs = append(out.Xs, ts)
			out.Ys = append(out.Ys, b)
			out.Counts = append(out.Counts, c)
		}
	}
	return out
}

// InferGrid recovers the shape of a flattened set that arrives without one:
// the distance from the end of ys to the last recurrence of ys[0] is the
// number of buckets per column.
func InferGrid(ys []float64) Grid {
	if len(ys) == 0 {
		return Grid{}
	}
	last := 0
	for i := len(ys) - 1; i >= 0; i-- {
		if ys[i] == ys[0] {
			last = i
			break
		}
	}
	rows := len(ys) - last
	return Grid{Cols: len(ys) / rows, Rows: rows}
}
