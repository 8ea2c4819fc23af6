package histogram

import (
	"math"
	"sort"
	"strconv"

	"github.com/iafilius/ChartEngine/src/align"
)

// DefaultBucketCount is used when a panel does not ask for a bucket count.
const DefaultBucketCount = 30

// bucketDecimals is the rounding applied to bucket keys to absorb float drift.
const bucketDecimals = 9

// SelectBucketSize chooses the bucket width for samples spanning rng.
//
// A positive override is returned unchanged. Otherwise the first preset that
// is larger than rng/bucketCount and not narrower than smallestDelta (the
// resolution of the data) wins. Without a matching preset the raw target is
// used, or 1 for a zero range, so the result is always positive and finite.
func SelectBucketSize(rng float64, bucketCount int, smallestDelta, override float64) float64 {
	if override > 0 && !math.IsInf(override, 0) {
		return override
	}
	if bucketCount <= 0 {
		bucketCount = DefaultBucketCount
	}
	target := rng / float64(bucketCount)
	for _, p := range Presets {
		if p > target && p >= smallestDelta {
			return p
		}
	}
	if rng > 0 && !math.IsInf(target, 0) {
		return target
	}
	return 1
}

// SmallestDelta returns the smallest positive gap between consecutive values
// of an ascending slice, or 0 when there is none.
func SmallestDelta(sorted []float64) float64 {
	smallest := math.Inf(1)
	for i := 1; i < len(sorted); i++ {
		d := sorted[i] - sorted[i-1]
		if d > 0 && d < smallest {
			smallest = d
		}
	}
	if math.IsInf(smallest, 1) {
		return 0
	}
	return smallest
}

// RoundDecimals rounds v to the given number of decimal places.
func RoundDecimals(v float64, decimals int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', decimals, 64), 64)
	if err != nil {
		return v
	}
	return r
}

// FloorToMultiple rounds v down to a multiple of size. Quotients within 1e-9
// of an integer snap to it, so 0.3 with size 0.1 lands in the 0.3 bucket.
func FloorToMultiple(v, size float64) float64 {
	if size <= 0 {
		return v
	}
	q := v / size
	if r := math.Round(q); math.Abs(q-r) < 1e-9 {
		q = r
	}
	return math.Floor(q) * size
}

// BucketOf returns the key function mapping a sample to the start of its bucket.
func BucketOf(size, offset float64) func(float64) float64 {
	return func(v float64) float64 {
		return RoundDecimals(FloorToMultiple(v-offset, size)+offset, bucketDecimals)
	}
}

// Bucket is one histogram cell.
type Bucket struct {
	Value float64
	Count int
}

// Histogram is a list of buckets, ascending by value once sorted.
type Histogram []Bucket

// ByValue orders buckets ascending.
func ByValue(a, b Bucket) bool { return a.Value < b.Value }

// BuildHistogramBuckets counts values per bucket key. When less is non-nil the
// buckets are sorted with it; otherwise they keep first-seen order.
func BuildHistogramBuckets(values []float64, bucketOf func(float64) float64, less func(a, b Bucket) bool) Histogram {
	idx := make(map[float64]int)
	var h Histogram
	for _, v := range values {
		key := bucketOf(v)
		if i, ok := idx[key]; ok {
			h[i].Count++
			continue
		}
		idx[key] = len(h)
		h = append(h, Bucket{Value: key, Count: 1})
	}
	if less != nil {
		sort.SliceStable(h, func(i, j int) bool { return less(h[i], h[j]) })
	}
	return h
}

// Total returns the sum of all counts.
func (h Histogram) Total() int {
	n := 0
	for _, b := range h {
		n += b.Count
	}
	return n
}

// Table lays the histogram out as bucket values plus one count series. The
// histogram must be sorted ascending.
func (h Histogram) Table() align.Table {
	x := make([]float64, len(h))
	counts := make([]align.Cell, len(h))
	for i, b := range h {
		x[i] = b.Value
		counts[i] = align.Val(float64(b.Count))
	}
	return align.Table{X: x, Series: [][]align.Cell{counts}}
}
