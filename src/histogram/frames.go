package histogram

import (
	"math"
	"sort"

	"github.com/iafilius/ChartEngine/src/align"
)

// Options configures Build.
type Options struct {
	// BucketCount is the desired number of buckets; <= 0 means DefaultBucketCount.
	BucketCount int
	// BucketSize overrides the preset selection when positive.
	BucketSize float64
	// BucketOffset shifts bucket boundaries.
	BucketOffset float64
	// MergeAllQueries folds every frame into a single histogram.
	MergeAllQueries bool
}

// Result is a binned panel: bucket values on X, one count series per frame
// (or a single one when merged), led by an empty bin.
type Result struct {
	Table      align.Table
	BucketSize float64
	Samples    int
}

// Build bins every frame (one per query) with a shared bucket width.
//
// Frames are binned independently and then re-aligned with the series
// aligner, because their bucket values differ in count and position. Cells a
// frame did not populate become explicit nulls. A synthetic empty bin one
// bucket before the first is prepended so bar rendering of the first real
// bucket is not truncated. Empty input yields an empty table.
func Build(frames [][]float64, opts Options) Result {
	var all []float64
	for _, f := range frames {
		all = append(all, f...)
	}
	if len(all) == 0 {
		return Result{}
	}

	sorted := append([]float64(nil), all...)
	sort.Float64s(sorted)
	rng := sorted[len(sorted)-1] - sorted[0]
	size := SelectBucketSize(rng, opts.BucketCount, SmallestDelta(sorted), opts.BucketSize)
	bucketOf := BucketOf(size, opts.BucketOffset)

	if opts.MergeAllQueries {
		frames = [][]float64{all}
	}

	tables := make([]align.Table, 0, len(frames))
	for _, f := range frames {
		h := BuildHistogramBuckets(f, bucketOf, ByValue)
		if len(h) == 0 {
			// Keep a series slot for the frame so legend order survives.
			tables = append(tables, align.Table{Series: [][]align.Cell{{}}})
			continue
		}
		tables = append(tables, h.Table())
	}

	merged := align.Normalize(align.MergeAlignedDataTables(tables, nil))
	return Result{
		Table:      withLeadingBin(merged, size),
		BucketSize: size,
		Samples:    len(all),
	}
}

// withLeadingBin returns a new table with an all-null bin one bucket before
// the first one.
func withLeadingBin(t align.Table, size float64) align.Table {
	if t.Empty() {
		return t
	}
	out := align.Table{
		X:      make([]float64, 0, len(t.X)+1),
		Series: make([][]align.Cell, len(t.Series)),
	}
	out.X = append(out.X, RoundDecimals(t.X[0]-size, bucketDecimals))
	out.X = append(out.X, t.X...)
	for i, s := range t.Series {
		ns := make([]align.Cell, 0, len(s)+1)
		ns = append(ns, align.NullCell)
		ns = append(ns, s...)
		out.Series[i] = ns
	}
	return out
}

// Counts sums the non-null cells of every series.
func (r Result) Counts() int {
	n := 0.0
	for _, s := range r.Table.Series {
		for _, c := range s {
			if c.Valid() {
				n += c.Value
			}
		}
	}
	return int(math.Round(n))
}
