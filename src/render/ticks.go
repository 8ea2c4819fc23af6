package render

import (
	"math"
	"strconv"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
)

// NiceBounds pads [min, max] by 5% on both sides and rounds outwards to the
// order of magnitude of the span.
func NiceBounds(min, max float64) (float64, float64) {
	if math.IsNaN(min) || math.IsNaN(max) {
		return min, max
	}
	if max <= min {
		max = min + 1
	}
	span := max - min
	pad := span * 0.05
	a := min - pad
	b := max + pad
	mag := math.Pow(10, math.Floor(math.Log10(span)))
	if !math.IsInf(mag, 0) && mag > 0 {
		a = math.Floor(a/mag) * mag
		b = math.Ceil(b/mag) * mag
	}
	return a, b
}

// ZeroBounds is NiceBounds anchored at 0 for non-negative data.
func ZeroBounds(min, max float64) (float64, float64) {
	if min >= 0 {
		if max <= 0 {
			max = 1
		}
		_, hi := NiceBounds(0, max)
		return 0, hi
	}
	return NiceBounds(min, math.Max(max, 0))
}

// NumericTicks returns about n ticks on a 1, 2, 2.5, 5 x 10^k grid within
// [min, max].
func NumericTicks(min, max float64, n int) []chart.Tick {
	if n < 2 || math.IsNaN(min) || math.IsNaN(max) {
		return nil
	}
	if max <= min {
		max = min + 1
	}
	span := max - min
	mag := math.Pow(10, math.Floor(math.Log10(span/float64(n-1))))
	bestStep := mag
	bestScore := math.MaxFloat64
	for _, c := range []float64{1, 2, 2.5, 5, 10} {
		step := c * mag
		count := math.Ceil(span/step) + 1
		if diff := math.Abs(count - float64(n)); diff < bestScore {
			bestScore = diff
			bestStep = step
		}
	}
	var out []chart.Tick
	start := math.Ceil(min/bestStep-1e-9) * bestStep
	for v := start; v <= max+bestStep*1e-9; v += bestStep {
		v = round6(v)
		out = append(out, chart.Tick{Value: v, Label: FormatTick(v)})
	}
	if len(out) < 2 {
		out = []chart.Tick{{Value: min, Label: FormatTick(min)}, {Value: max, Label: FormatTick(max)}}
	}
	return out
}

// LogTicks labels every integer decade in [minExp, maxExp], the axis being
// in log10 units.
func LogTicks(minExp, maxExp float64) []chart.Tick {
	var out []chart.Tick
	for e := math.Ceil(minExp); e <= math.Floor(maxExp); e++ {
		out = append(out, chart.Tick{Value: e, Label: FormatTick(math.Pow(10, e))})
	}
	if len(out) < 2 {
		out = []chart.Tick{
			{Value: minExp, Label: FormatTick(math.Pow(10, minExp))},
			{Value: maxExp, Label: FormatTick(math.Pow(10, maxExp))},
		}
	}
	return out
}

func round6(v float64) float64 { return math.Round(v*1e6) / 1e6 }

// FormatTick gives a compact label for an axis value.
func FormatTick(v float64) string {
	if v == 0 {
		return "0"
	}
	av := math.Abs(v)
	switch {
	case av >= 1e6:
		return strconv.FormatFloat(v, 'g', 3, 64)
	case av >= 100:
		return strconv.FormatInt(int64(math.Round(v)), 10)
	case av >= 10:
		return strconv.FormatFloat(v, 'f', 1, 64)
	case av >= 1:
		return strconv.FormatFloat(v, 'f', 2, 64)
	case av >= 0.01:
		return strconv.FormatFloat(v, 'f', 3, 64)
	default:
		return strconv.FormatFloat(v, 'g', 3, 64)
	}
}

// TimeStep picks a tick interval and label layout for a time span.
func TimeStep(span time.Duration) (time.Duration, string) {
	switch {
	case span <= 2*time.Minute:
		return 10 * time.Second, "15:04:05"
	case span <= 10*time.Minute:
		return time.Minute, "15:04"
	case span <= 30*time.Minute:
		return 5 * time.Minute, "15:04"
	case span <= 2*time.Hour:
		return 10 * time.Minute, "15:04"
	case span <= 6*time.Hour:
		return 30 * time.Minute, "Jan 2 15:04"
	case span <= 24*time.Hour:
		return time.Hour, "Jan 2 15:04"
	case span <= 3*24*time.Hour:
		return 6 * time.Hour, "Jan 2 15:04"
	case span <= 14*24*time.Hour:
		return 24 * time.Hour, "Jan 2"
	default:
		return 7 * 24 * time.Hour, "Jan 2"
	}
}

// TimeTicks returns step-aligned ticks between two Unix millisecond
// timestamps, labelled in UTC.
func TimeTicks(minMs, maxMs float64) []chart.Tick {
	span := time.Duration(maxMs-minMs) * time.Millisecond
	step, layout := TimeStep(span)
	stepMs := float64(step / time.Millisecond)
	var out []chart.Tick
	for v := math.Ceil(minMs/stepMs) * stepMs; v <= maxMs; v += stepMs {
		out = append(out, chart.Tick{Value: v, Label: time.UnixMilli(int64(v)).UTC().Format(layout)})
		if len(out) > 20 {
			break
		}
	}
	if len(out) < 2 {
		out = []chart.Tick{
			{Value: minMs, Label: time.UnixMilli(int64(minMs)).UTC().Format(layout)},
			{Value: maxMs, Label: time.UnixMilli(int64(maxMs)).UTC().Format(layout)},
		}
	}
	return out
}
