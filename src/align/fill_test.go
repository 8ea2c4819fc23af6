package align

import (
	"math"
	"testing"
)

func TestGetXAxisTimestamps(t *testing.T) {
	series := [][]Point{
		{{X: 3000, V: 1}, {X: 1000, V: 2}},
		{{X: 2000, V: 3}, {X: 3000, V: 4}},
		nil,
	}
	got := GetXAxisTimestamps(series)
	if want := []float64{1000, 2000, 3000}; !floatsEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
	if got := GetXAxisTimestamps(nil); len(got) != 0 {
		t.Fatalf("expected empty axis, got %v", got)
	}
}

func TestFillMissingXAxisTimestamps(t *testing.T) {
	ts := []float64{1, 2, 3}
	series := [][]Point{
		{{X: 1, V: 10}, {X: 3, V: 30}},
		{{X: 2, V: 0}},
	}
	got := FillMissingXAxisTimestamps(ts, series)
	if !cellsEqual(got[0], []Cell{Val(10), NullCell, Val(30)}) {
		t.Fatalf("series 0: %v", got[0])
	}
	// A real zero is a value, not a gap.
	if !cellsEqual(got[1], []Cell{NullCell, Val(0), NullCell}) {
		t.Fatalf("series 1: %v", got[1])
	}
}

func TestFromPoints_LengthInvariant(t *testing.T) {
	tbl := FromPoints([][]Point{
		{{X: 5, V: 1}},
		{{X: 1, V: 1}, {X: 9, V: 2}},
	})
	if err := tbl.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if tbl.Len() != 3 || len(tbl.Series) != 2 {
		t.Fatalf("unexpected shape: x=%v series=%d", tbl.X, len(tbl.Series))
	}
}

func TestFromFloatsAndFloats(t *testing.T) {
	tbl := FromFloats([]float64{1, 2}, []float64{math.NaN(), 4})
	if tbl.Series[0][0].State != Null || !tbl.Series[0][1].Valid() {
		t.Fatalf("unexpected cells %v", tbl.Series[0])
	}
	fs := tbl.Floats(0)
	if !math.IsNaN(fs[0]) || fs[1] != 4 {
		t.Fatalf("Floats = %v", fs)
	}
}

func TestValidate_DetectsBadTables(t *testing.T) {
	if err := (Table{X: []float64{1, 1}}).Validate(); err == nil {
		t.Fatalf("expected error for duplicate x")
	}
	if err := (Table{X: []float64{1, 2}, Series: [][]Cell{Values(1)}}).Validate(); err == nil {
		t.Fatalf("expected error for short series")
	}
}

func TestFillMissingXAxisTimestamps_NaNSampleIsNull(t *testing.T) {
	series := [][]Point{{{X: 1, V: 5}, {X: 2, V: math.NaN()}}}
	got := FillMissingXAxisTimestamps([]float64{1, 2, 3}, series)
	if !cellsEqual(got[0], []Cell{Val(5), NullCell, NullCell}) {
		t.Fatalf("got %v", got[0])
	}
}
