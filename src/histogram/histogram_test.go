package histogram

import (
	"math"
	"math/rand"
	"testing"

	"github.com/iafilius/ChartEngine/src/align"
)

func TestPresets(t *testing.T) {
	if Presets[0] != 1e-9 {
		t.Fatalf("first preset %g", Presets[0])
	}
	if last := Presets[len(Presets)-1]; last != 5e9 {
		t.Fatalf("last preset %g", last)
	}
	for i := 1; i < len(Presets); i++ {
		if !(Presets[i] > Presets[i-1]) {
			t.Fatalf("presets not ascending at %d: %g <= %g", i, Presets[i], Presets[i-1])
		}
	}
	if Presets[2] != 2.5e-9 {
		t.Fatalf("expected exact 2.5e-9, got %v", Presets[2])
	}
}

func TestSelectBucketSize(t *testing.T) {
	cases := []struct {
		name     string
		rng      float64
		count    int
		delta    float64
		override float64
		want     float64
	}{
		{"override wins", 99, 10, 1, 7, 7},
		{"target 9.9", 99, 10, 1, 0, 10},
		{"strictly above target", 100, 10, 1, 0, 20},
		{"delta floor", 10, 100, 0.5, 0, 0.5},
		{"delta forces coarser", 10, 100, 3, 0, 4},
		{"zero range", 0, 10, 0, 0, 1e-9},
		{"default count", 30, 0, 0, 0, 2},
		{"negative override ignored", 99, 10, 1, -5, 10},
		{"beyond presets", 1e12, 10, 0, 0, 1e11},
		{"delta beyond presets, zero range", 0, 10, 1e12, 0, 1},
	}
	for _, c := range cases {
		got := SelectBucketSize(c.rng, c.count, c.delta, c.override)
		if got != c.want {
			t.Fatalf("%s: got %g want %g", c.name, got, c.want)
		}
	}
}

// Increasing bucketCount never selects a wider bucket.
func TestSelectBucketSize_Monotonic(t *testing.T) {
	for _, rng := range []float64{0.003, 1, 99, 12345, 7e8} {
		prev := math.Inf(1)
		for count := 1; count <= 200; count++ {
			size := SelectBucketSize(rng, count, 0, 0)
			if size > prev {
				t.Fatalf("rng %g: count %d gave %g > previous %g", rng, count, size, prev)
			}
			if !(size > 0) || math.IsInf(size, 0) {
				t.Fatalf("rng %g count %d: non positive size %g", rng, count, size)
			}
			prev = size
		}
	}
}

func TestSmallestDelta(t *testing.T) {
	if d := SmallestDelta([]float64{1, 1, 1}); d != 0 {
		t.Fatalf("duplicate-only delta %g", d)
	}
	if d := SmallestDelta([]float64{1, 3, 3.5, 10}); d != 0.5 {
		t.Fatalf("delta %g want 0.5", d)
	}
	if d := SmallestDelta(nil); d != 0 {
		t.Fatalf("nil delta %g", d)
	}
}

func TestBucketOf(t *testing.T) {
	cases := []struct {
		size, offset, v, want float64
	}{
		{10, 0, 37, 30},
		{10, 0, -3, -10},
		{0.1, 0, 0.3, 0.3},
		{0.1, 0, 0.35, 0.3},
		{10, 5, 37, 35},
		{10, 5, 34.9, 25},
		{2.5, 0, 7.4, 5},
	}
	for _, c := range cases {
		got := BucketOf(c.size, c.offset)(c.v)
		if got != c.want {
			t.Fatalf("BucketOf(%g,%g)(%g) = %v want %v", c.size, c.offset, c.v, got, c.want)
		}
	}
}

func TestBuildHistogramBuckets(t *testing.T) {
	h := BuildHistogramBuckets([]float64{5, 1, 7, 2, 5}, BucketOf(5, 0), ByValue)
	want := Histogram{{Value: 0, Count: 2}, {Value: 5, Count: 3}}
	if len(h) != len(want) {
		t.Fatalf("got %v want %v", h, want)
	}
	for i := range want {
		if h[i] != want[i] {
			t.Fatalf("bucket %d: got %v want %v", i, h[i], want[i])
		}
	}
	if h.Total() != 5 {
		t.Fatalf("total %d want 5", h.Total())
	}
	unsorted := BuildHistogramBuckets([]float64{9, 1}, BucketOf(5, 0), nil)
	if unsorted[0].Value != 5 || unsorted[1].Value != 0 {
		t.Fatalf("nil comparator should keep first-seen order: %v", unsorted)
	}
	tbl := h.Table()
	if err := tbl.Validate(); err != nil {
		t.Fatalf("table: %v", err)
	}
}

func TestBuild_ExampleScenario(t *testing.T) {
	samples := make([]float64, 100)
	for i := range samples {
		samples[i] = float64(i)
	}
	res := Build([][]float64{samples}, Options{BucketCount: 10})
	if res.BucketSize != 10 {
		t.Fatalf("bucket size %g want 10", res.BucketSize)
	}
	tbl := res.Table
	// Leading empty bin + 10 real buckets.
	if tbl.Len() != 11 {
		t.Fatalf("expected 11 x positions got %d: %v", tbl.Len(), tbl.X)
	}
	if tbl.X[0] != -10 || tbl.Series[0][0].State != align.Null {
		t.Fatalf("missing leading bin: x0=%g cell=%v", tbl.X[0], tbl.Series[0][0])
	}
	for i := 1; i < tbl.Len(); i++ {
		if tbl.X[i] != float64((i-1)*10) {
			t.Fatalf("bucket %d value %g", i, tbl.X[i])
		}
		if c := tbl.Series[0][i]; !c.Valid() || c.Value != 10 {
			t.Fatalf("bucket %d count %v want 10", i, c)
		}
	}
	if res.Counts() != 100 || res.Samples != 100 {
		t.Fatalf("count conservation: %d/%d", res.Counts(), res.Samples)
	}
}

func TestBuild_MultiFrame(t *testing.T) {
	frames := [][]float64{
		{0, 1, 2, 3},
		{20, 21},
		nil,
	}
	res := Build(frames, Options{BucketSize: 10})
	tbl := res.Table
	if len(tbl.Series) != 3 {
		t.Fatalf("expected one series per frame, got %d", len(tbl.Series))
	}
	if err := tbl.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	// x: -10 (leading), 0, 20
	if want := []float64{-10, 0, 20}; len(tbl.X) != 3 || tbl.X[0] != want[0] || tbl.X[1] != want[1] || tbl.X[2] != want[2] {
		t.Fatalf("x = %v want %v", tbl.X, want)
	}
	if c := tbl.Series[0][2]; c.State != align.Null {
		t.Fatalf("frame 0 should have a null at 20, got %v", c)
	}
	if c := tbl.Series[1][1]; c.State != align.Null {
		t.Fatalf("frame 1 should have a null at 0, got %v", c)
	}
	for _, c := range tbl.Series[2] {
		if c.State != align.Null {
			t.Fatalf("empty frame must be all null, got %v", tbl.Series[2])
		}
	}
	if res.Counts() != 6 {
		t.Fatalf("count conservation: %d", res.Counts())
	}

	merged := Build(frames, Options{BucketSize: 10, MergeAllQueries: true})
	if len(merged.Table.Series) != 1 {
		t.Fatalf("merge all: expected one series, got %d", len(merged.Table.Series))
	}
	if c := merged.Table.Series[0][1]; c.Value != 4 {
		t.Fatalf("merge all: bucket 0 count %v", c)
	}
	if merged.Counts() != 6 {
		t.Fatalf("merge all count conservation: %d", merged.Counts())
	}
}

func TestBuild_Degenerate(t *testing.T) {
	if res := Build(nil, Options{}); !res.Table.Empty() {
		t.Fatalf("empty input produced %v", res.Table)
	}
	res := Build([][]float64{{42, 42, 42}}, Options{BucketCount: 10})
	if res.BucketSize <= 0 {
		t.Fatalf("non positive size %g", res.BucketSize)
	}
	if res.Counts() != 3 {
		t.Fatalf("single value counts %d", res.Counts())
	}
}

func TestBuild_CountConservationRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for iter := 0; iter < 100; iter++ {
		frames := make([][]float64, 1+rng.Intn(3))
		total := 0
		for i := range frames {
			n := rng.Intn(50)
			for j := 0; j < n; j++ {
				frames[i] = append(frames[i], rng.NormFloat64()*rng.Float64()*1000)
			}
			total += n
		}
		res := Build(frames, Options{BucketCount: 1 + rng.Intn(40), MergeAllQueries: rng.Intn(2) == 0})
		if res.Counts() != total {
			t.Fatalf("iter %d: counted %d of %d samples", iter, res.Counts(), total)
		}
		if res.BucketSize > 0 {
			for i, f := range frames {
				if got := BuildHistogramBuckets(f, BucketOf(res.BucketSize, 0), ByValue).Total(); got != len(f) {
					t.Fatalf("iter %d frame %d: buckets hold %d of %d samples", iter, i, got, len(f))
				}
			}
		}
		if err := res.Table.Validate(); err != nil {
			t.Fatalf("iter %d: %v", iter, err)
		}
	}
}
