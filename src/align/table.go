// Package align merges time-indexed value sequences onto one shared x-axis.
//
// A Table is the aligned, column-oriented shape every chart consumes: a
// strictly ascending x-axis plus any number of value series of the same
// length. Cells distinguish "no value known" (Missing) from an explicit gap
// (Null) so that gap handling can be decided per series while merging.
package align

import (
	"fmt"
	"math"
)

// State describes what a Cell holds.
type State uint8

const (
	// Missing means no source contributed a value for this x.
	Missing State = iota
	// Null is an explicit gap.
	Null
	// Present carries a numeric value.
	Present
)

func (s State) String() string {
	switch s {
	case Null:
		return "null"
	case Present:
		return "present"
	}
	return "missing"
}

// Cell is one entry of an aligned series.
type Cell struct {
	Value float64
	State State
}

// Val returns a present cell.
func Val(v float64) Cell { return Cell{Value: v, State: Present} }

// NullCell is an explicit gap.
var NullCell = Cell{State: Null}

// Valid reports whether the cell carries a number.
func (c Cell) Valid() bool { return c.State == Present }

// Empty reports whether the cell has no number (missing or null).
func (c Cell) Empty() bool { return c.State != Present }

// Float returns the value, or NaN for gaps. Charting code uses NaN as its gap marker.
func (c Cell) Float() float64 {
	if c.State != Present {
		return math.NaN()
	}
	return c.Value
}

func (c Cell) String() string {
	if c.State != Present {
		return c.State.String()
	}
	return fmt.Sprintf("%g", c.Value)
}

// Table is an x-axis with parallel value series, len(Series[i]) == len(X).
type Table struct {
	X      []float64
	Series [][]Cell
}

// Len returns the number of x positions.
func (t Table) Len() int { return len(t.X) }

// Empty reports whether the table has no x positions.
func (t Table) Empty() bool { return len(t.X) == 0 }

// Values builds a present-only series.
func Values(vs ...float64) []Cell {
	out := make([]Cell, len(vs))
	for i, v := range vs {
		out[i] = Val(v)
	}
	return out
}

// FromFloats builds a table where NaN marks a null gap.
func FromFloats(x []float64, ys ...[]float64) Table {
	t := Table{X: append([]float64(nil), x...), Series: make([][]Cell, len(ys))}
	for i, y := range ys {
		s := make([]Cell, len(y))
		for j, v := range y {
			if math.IsNaN(v) {
				s[j] = NullCell
			} else {
				s[j] = Val(v)
			}
		}
		t.Series[i] = s
	}
	return t
}

// Floats returns series i with gaps as NaN.
func (t Table) Floats(i int) []float64 {
	out := make([]float64, len(t.Series[i]))
	for j, c := range t.Series[i] {
		out[j] = c.Float()
	}
	return out
}

// Validate checks the length invariant.
func (t Table) Validate() error {
	for i, s := range t.Series {
		if len(s) != len(t.X) {
			return fmt.Errorf("series %d has %d values for %d x positions", i, len(s), len(t.X))
		}
	}
	for i := 1; i < len(t.X); i++ {
		if !(t.X[i] > t.X[i-1]) {
			return fmt.Errorf("x axis not strictly ascending at %d: %g <= %g", i, t.X[i], t.X[i-1])
		}
	}
	return nil
}

// Normalize returns a copy where every Missing cell became an explicit Null.
func Normalize(t Table) Table {
	out := Table{X: append([]float64(nil), t.X...), Series: make([][]Cell, len(t.Series))}
	for i, s := range t.Series {
		ns := make([]Cell, len(s))
		for j, c := range s {
			if c.State == Missing {
				c = NullCell
			}
			ns[j] = c
		}
		out.Series[i] = ns
	}
	return out
}
