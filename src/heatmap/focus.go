package heatmap

import "sort"

// DefaultFocusTrim is the share of the total count trimmed off each end of
// the value axis.
const DefaultFocusTrim = 0.01

// Focus is the bucket range a heatmap should zoom to.
type Focus struct {
	Ends   []float64
	Starts []float64
	// Lo and Hi are the inclusive bucket indices kept from the input.
	Lo, Hi     int
	MinY, MaxY float64
}

// DeriveStarts returns starts when it matches ends in length, otherwise ends
// shifted right by one with a leading 0.
func DeriveStarts(ends, starts []float64) []float64 {
	if len(starts) == len(ends) {
		return append([]float64(nil), starts...)
	}
	out := make([]float64, len(ends))
	for i := 1; i < len(ends); i++ {
		out[i] = ends[i-1]
	}
	return out
}

// ComputeBucketTotals sums each bucket index across all timestamps.
func ComputeBucketTotals(counts [][]float64, buckets int) []float64 {
	totals := make([]float64, buckets)
	for _, row := range counts {
		for b := 0; b < buckets && b < len(row); b++ {
			if row[b] > 0 {
				totals[b] += row[b]
			}
		}
	}
	return totals
}

// FindNonZeroRange returns the first and last bucket with a positive total.
func FindNonZeroRange(totals []float64) (lo, hi int, ok bool) {
	lo, hi = -1, -1
	for i, v := range totals {
		if v > 0 {
			if lo < 0 {
				lo = i
			}
			hi = i
		}
	}
	return lo, hi, lo >= 0
}

// FindCumulativeIndex returns the first index whose running sum reaches
// target, or the last index when none does.
func FindCumulativeIndex(cumulative []float64, target float64) int {
	i := sort.Search(len(cumulative), func(i int) bool { return cumulative[i] >= target })
	if i >= len(cumulative) {
		i = len(cumulative) - 1
	}
	return i
}

// FocusHeatmap narrows the bucket axis to where the counts are. Empty
// buckets at both ends are dropped, then buckets holding less than trim of
// the total on either side. The bucket with the highest total always stays
// in range. A zero total keeps the full range.
func FocusHeatmap(ends, starts []float64, counts [][]float64, trim float64) Focus {
	n := len(ends)
	if n == 0 {
		return Focus{Lo: 0, Hi: -1}
	}
	starts = DeriveStarts(ends, starts)
	totals := ComputeBucketTotals(counts, n)

	cumulative := make([]float64, n)
	running := 0.0
	peak := 0
	for i, v := range totals {
		running += v
		cumulative[i] = running
		if v > totals[peak] {
			peak = i
		}
	}
	grand := running

	lo, hi, ok := FindNonZeroRange(totals)
	if grand <= 0 || !ok {
		return sliceFocus(ends, starts, 0, n-1)
	}

	if trim < 0 {
		trim = 0
	}
	if trim >= 0.5 {
		trim = 0.49
	}
	if t := FindCumulativeIndex(cumulative, grand*trim); t > lo {
		lo = t
	}
	if t := FindCumulativeIndex(cumulative, grand*(1-trim)); t < hi {
		hi = t
	}
	if peak < lo {
		lo = peak
	}
	if peak > hi {
		hi = peak
	}
	return sliceFocus(ends, starts, lo, hi)
}

func sliceFocus(ends, starts []float64, lo, hi int) Focus {
	return Focus{
		Ends:   append([]float64(nil), ends[lo:hi+1]...),
		Starts: append([]float64(nil), starts[lo:hi+1]...),
		Lo:     lo,
		Hi:     hi,
		MinY:   starts[lo],
		MaxY:   ends[hi],
	}
}

// Focus applies FocusHeatmap to the matrix bounds.
func (m Matrix) Focus(trim float64) Focus {
	n := m.NumBuckets()
	if n == 0 {
		return Focus{Lo: 0, Hi: -1}
	}
	return FocusHeatmap(m.Bounds[1:], m.Bounds[:n], m.Counts, trim)
}
