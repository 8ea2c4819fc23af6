// Package histogram picks "nice" bucket widths and reduces raw samples into
// bucketed counts laid out as aligned tables.
package histogram

import (
	"strconv"
)

// multipliers applied to every power of ten, same family as axis tick steps
// (1, 2, 2.5, 5) plus 4 for finer control between 2.5 and 5.
var multipliers = []string{"1", "2", "2.5", "4", "5"}

const (
	minPresetExp = -9
	maxPresetExp = 9
)

// Presets is the ascending table of candidate bucket widths, 1e-9 .. 5e9.
var Presets = buildPresets()

func buildPresets() []float64 {
	out := make([]float64, 0, (maxPresetExp-minPresetExp+1)*len(multipliers))
	for e := minPresetExp; e <= maxPresetExp; e++ {
		for _, m := range multipliers {
			// Parse the decimal literal so 2.5e-7 is the nearest float, not 2.5*1e-7.
			v, err := strconv.ParseFloat(m+"e"+strconv.Itoa(e), 64)
			if err != nil {
				panic(err)
			}
			out = append(out, v)
		}
	}
	return out
}
