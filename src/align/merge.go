package align

import (
	"fmt"
	"sort"
)

// NullMode controls what a null in a source series becomes once the series is
// re-indexed onto a merged x-axis.
type NullMode uint8

const (
	// Retain keeps the null at its original x only. It is the default.
	Retain NullMode = iota
	// Remove drops nulls; the cell stays Missing.
	Remove
	// Expand propagates the null to neighbouring merged positions where this
	// series has no value, so lines are broken across the whole gap.
	Expand
)

func (m NullMode) String() string {
	switch m {
	case Remove:
		return "remove"
	case Expand:
		return "expand"
	}
	return "retain"
}

// ParseNullMode maps a config string to a NullMode, defaulting to Retain.
func ParseNullMode(s string) NullMode {
	switch s {
	case "remove", "connect":
		return Remove
	case "expand":
		return Expand
	}
	return Retain
}

// MergeAlignedDataTables joins tables onto the sorted union of their x values.
// nullModes[ti][si] selects the null handling of series si of table ti; a nil
// or short slice means Retain. Series are emitted in table order.
//
// Panics if a table's series length differs from its x length.
func MergeAlignedDataTables(tables []Table, nullModes [][]NullMode) Table {
	xVals := make(map[float64]struct{})
	for _, t := range tables {
		for _, x := range t.X {
			xVals[x] = struct{}{}
		}
	}
	merged := make([]float64, 0, len(xVals))
	for x := range xVals {
		merged = append(merged, x)
	}
	sort.Float64s(merged)

	alignedLen := len(merged)
	xIdx := make(map[float64]int, alignedLen)
	for i, x := range merged {
		xIdx[x] = i
	}

	out := Table{X: merged}
	for ti, t := range tables {
		for si, ys := range t.Series {
			if len(ys) != len(t.X) {
				panic(fmt.Sprintf("align: table %d series %d has %d values for %d x positions", ti, si, len(ys), len(t.X)))
			}
			mode := nullModeAt(nullModes, ti, si)
			yVals := make([]Cell, alignedLen)
			var nullIdxs []int
			for i, c := range ys {
				at := xIdx[t.X[i]]
				switch c.State {
				case Present:
					yVals[at] = c
				case Null:
					if mode == Remove {
						continue
					}
					yVals[at] = NullCell
					if mode == Expand {
						nullIdxs = append(nullIdxs, at)
					}
				}
			}
			if len(nullIdxs) > 0 {
				sort.Ints(nullIdxs)
				expandNulls(yVals, nullIdxs)
			}
			out.Series = append(out.Series, yVals)
		}
	}
	return out
}

func nullModeAt(modes [][]NullMode, ti, si int) NullMode {
	if ti >= len(modes) || si >= len(modes[ti]) {
		return Retain
	}
	return modes[ti][si]
}

// expandNulls walks outward from every recorded null index and marks cells
// null while they carry no value. Present cells stop the walk. lastNull is
// the furthest index already reached to the right, so runs overlapping an
// earlier expansion are not rescanned.
func expandNulls(yVals []Cell, nullIdxs []int) {
	lastNull := -1
	for _, idx := range nullIdxs {
		if idx <= lastNull {
			continue
		}
		for xi := idx - 1; xi >= 0 && yVals[xi].Empty(); xi-- {
			yVals[xi] = NullCell
		}
		for xi := idx + 1; xi < len(yVals) && yVals[xi].Empty(); xi++ {
			yVals[xi] = NullCell
			lastNull = xi
		}
	}
}
