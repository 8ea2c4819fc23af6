package align

import "sort"

// Point is one raw (timestamp, value) sample of a series.
type Point struct {
	X float64
	V float64
}

// GetXAxisTimestamps returns the sorted, de-duplicated union of timestamps
// across all series.
func GetXAxisTimestamps(series [][]Point) []float64 {
	seen := make(map[float64]struct{})
	for _, s := range series {
		for _, p := range s {
			seen[p.X] = struct{}{}
		}
	}
	out := make([]float64, 0, len(seen))
	for x := range seen {
		out = append(out, x)
	}
	sort.Float64s(out)
	return out
}

// FillMissingXAxisTimestamps builds one value array per series on the given
// timestamp axis, with Null where a series has no sample or a NaN sample.
// When a series holds several samples for one timestamp the last one wins.
func FillMissingXAxisTimestamps(timestamps []float64, series [][]Point) [][]Cell {
	out := make([][]Cell, len(series))
	for si, s := range series {
		byX := make(map[float64]float64, len(s))
		for _, p := range s {
			byX[p.X] = p.V
		}
		vals := make([]Cell, len(timestamps))
		for i, ts := range timestamps {
			if v, ok := byX[ts]; ok && v == v {
				vals[i] = Val(v)
			} else {
				vals[i] = NullCell
			}
		}
		out[si] = vals
	}
	return out
}

// FromPoints aligns raw series onto their common timestamp axis.
func FromPoints(series [][]Point) Table {
	x := GetXAxisTimestamps(series)
	return Table{X: x, Series: FillMissingXAxisTimestamps(x, series)}
}
