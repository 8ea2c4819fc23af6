package heatmap

import (
	"math/rand"
	"testing"
)

func TestDeriveStarts(t *testing.T) {
	got := DeriveStarts([]float64{1, 2, 4}, nil)
	if got[0] != 0 || got[1] != 1 || got[2] != 2 {
		t.Fatalf("shifted starts %v", got)
	}
	got = DeriveStarts([]float64{1, 2}, []float64{0.5, 1.5})
	if got[0] != 0.5 || got[1] != 1.5 {
		t.Fatalf("explicit starts %v", got)
	}
	// Length mismatch falls back to shifting.
	got = DeriveStarts([]float64{1, 2}, []float64{9})
	if got[0] != 0 || got[1] != 1 {
		t.Fatalf("mismatched starts %v", got)
	}
}

func TestComputeBucketTotalsAndRange(t *testing.T) {
	totals := ComputeBucketTotals([][]float64{{0, 1, 2, 0}, {0, 3}, nil}, 4)
	want := []float64{0, 4, 2, 0}
	for i := range want {
		if totals[i] != want[i] {
			t.Fatalf("totals %v want %v", totals, want)
		}
	}
	lo, hi, ok := FindNonZeroRange(totals)
	if !ok || lo != 1 || hi != 2 {
		t.Fatalf("range %d..%d ok=%v", lo, hi, ok)
	}
	if _, _, ok := FindNonZeroRange([]float64{0, 0}); ok {
		t.Fatalf("all-zero totals reported a range")
	}
}

func TestFindCumulativeIndex(t *testing.T) {
	cum := []float64{0, 1, 5, 10}
	cases := []struct {
		target float64
		want   int
	}{{0, 0}, {0.5, 1}, {1, 1}, {6, 3}, {11, 3}}
	for _, c := range cases {
		if got := FindCumulativeIndex(cum, c.target); got != c.want {
			t.Fatalf("target %g: got %d want %d", c.target, got, c.want)
		}
	}
}

func TestFocusHeatmap_ZeroTotalKeepsFullRange(t *testing.T) {
	ends := []float64{10, 20, 30}
	f := FocusHeatmap(ends, nil, [][]float64{{0, 0, 0}}, DefaultFocusTrim)
	if f.Lo != 0 || f.Hi != 2 || f.MinY != 0 || f.MaxY != 30 {
		t.Fatalf("zero total focus %+v", f)
	}
}

func TestFocusHeatmap_TrimsOutliers(t *testing.T) {
	ends := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	counts := [][]float64{
		{0, 1, 50, 400, 300, 40, 1, 0},
		{0, 0, 60, 500, 200, 30, 0, 0},
	}
	f := FocusHeatmap(ends, nil, counts, 0.05)
	// totals: 0,1,110,900,500,70,1,0 (1582). 5% = 79.1 -> index 2; 95% = 1502.9 -> index 4.
	if f.Lo != 2 || f.Hi != 4 {
		t.Fatalf("focus %d..%d", f.Lo, f.Hi)
	}
	if f.MinY != 2 || f.MaxY != 5 {
		t.Fatalf("scale bounds %g..%g", f.MinY, f.MaxY)
	}
	if len(f.Ends) != 3 || len(f.Starts) != 3 || f.Starts[0] != 2 {
		t.Fatalf("trimmed slices %v / %v", f.Starts, f.Ends)
	}

	untrimmed := FocusHeatmap(ends, nil, counts, 0)
	if untrimmed.Lo != 1 || untrimmed.Hi != 6 {
		t.Fatalf("zero trim should only drop empty buckets: %d..%d", untrimmed.Lo, untrimmed.Hi)
	}
}

func TestFocusHeatmap_ContainsPeak(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for iter := 0; iter < 300; iter++ {
		n := 1 + rng.Intn(20)
		ends := make([]float64, n)
		for i := range ends {
			ends[i] = float64(i + 1)
		}
		counts := make([][]float64, 1+rng.Intn(5))
		for r := range counts {
			counts[r] = make([]float64, n)
			for b := range counts[r] {
				if rng.Intn(3) == 0 {
					counts[r][b] = float64(rng.Intn(100))
				}
			}
		}
		trim := rng.Float64() * 0.6
		f := FocusHeatmap(ends, nil, counts, trim)
		totals := ComputeBucketTotals(counts, n)
		peak := 0
		for i, v := range totals {
			if v > totals[peak] {
				peak = i
			}
		}
		if peak < f.Lo || peak > f.Hi {
			t.Fatalf("iter %d: peak %d outside %d..%d (totals %v trim %.2f)", iter, peak, f.Lo, f.Hi, totals, trim)
		}
		if f.Lo > f.Hi || f.MinY > f.MaxY {
			t.Fatalf("iter %d: inverted focus %+v", iter, f)
		}
	}
}

func TestMatrixFocus(t *testing.T) {
	m := Matrix{Bounds: []float64{0, 1, 2, 3}, Timestamps: []float64{1}, Counts: [][]float64{{0, 5, 0}}}
	f := m.Focus(DefaultFocusTrim)
	if f.Lo != 1 || f.Hi != 1 || f.MinY != 1 || f.MaxY != 2 {
		t.Fatalf("matrix focus %+v", f)
	}
	if f := (Matrix{}).Focus(0); f.Hi != -1 {
		t.Fatalf("empty matrix focus %+v", f)
	}
}
