// Package panel turns query results into render-ready panel data and keeps
// the per-chart state (stacking guard, series visibility) between redraws.
package panel

import (
	"errors"
	"fmt"
	"strings"

	"github.com/iafilius/ChartEngine/src/align"
	"github.com/iafilius/ChartEngine/src/heatmap"
	"github.com/iafilius/ChartEngine/src/histogram"
	"github.com/iafilius/ChartEngine/src/logging"
	"github.com/iafilius/ChartEngine/src/query"
)

// Kind selects how a panel is built and drawn.
type Kind string

const (
	KindTimeSeries Kind = "timeseries"
	KindBar        Kind = "bar"
	KindHistogram  Kind = "histogram"
	KindHeatmap    Kind = "heatmap"
)

// ErrUnknownKind is returned for an unsupported panel kind.
var ErrUnknownKind = errors.New("unknown panel kind")

// ParseKind parses a kind name, case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindTimeSeries, KindBar, KindHistogram, KindHeatmap:
		return k, nil
	case "graph", "":
		return KindTimeSeries, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Options configures one panel.
type Options struct {
	ID    string
	Title string
	Unit  string
	Kind  Kind
	// NullModes holds the null mode of each query, in query order. Missing
	// entries mean align.Retain.
	NullModes []align.NullMode
	Stacked   bool
	LogScale  bool
	Histogram histogram.Options
	FocusTrim float64
	// Colors overrides series colors by series name (#rrggbb).
	Colors map[string]string
	// PaletteSize and PaletteStops configure heatmap colors.
	PaletteSize  int
	PaletteStops []string
	Hint         string
}

// Data is a built panel. Table holds the aligned series of time series and
// bar panels, or the bucket counts of a histogram (X = bucket starts). Names
// follows the series order of Table. Heatmaps holds one matrix per distinct
// bucket layout.
type Data struct {
	Kind       Kind
	Names      []string
	Table      align.Table
	BucketSize float64
	Samples    int
	Heatmaps   []heatmap.Matrix
}

// Empty reports whether there is nothing to draw.
func (d Data) Empty() bool {
	if d.Kind == KindHeatmap {
		return len(d.Heatmaps) == 0
	}
	return d.Table.Empty()
}

// Build assembles panel data from the results of the panel's queries.
func Build(opts Options, results []query.Result) (Data, error) {
	switch opts.Kind {
	case KindTimeSeries, KindBar, "":
		d := buildSeries(opts, results)
		d.Kind = opts.Kind
		if d.Kind == "" {
			d.Kind = KindTimeSeries
		}
		return d, nil
	case KindHistogram:
		return buildHistogram(opts, results), nil
	case KindHeatmap:
		return buildHeatmap(results), nil
	default:
		return Data{}, fmt.Errorf("panel %q: %w: %q", opts.ID, ErrUnknownKind, opts.Kind)
	}
}

// buildSeries aligns every series of every query onto one shared x axis.
// Each query contributes one table; its null mode applies to all its series.
func buildSeries(opts Options, results []query.Result) Data {
	tables := make([]align.Table, 0, len(results))
	modes := make([][]align.NullMode, 0, len(results))
	var names []string
	for qi, r := range results {
		if len(r.Series) == 0 {
			logging.Warnf("[panel] %s: query %q returned no series", opts.ID, r.Name)
			continue
		}
		points := make([][]align.Point, len(r.Series))
		qm := make([]align.NullMode, len(r.Series))
		mode := align.Retain
		if qi < len(opts.NullModes) {
			mode = opts.NullModes[qi]
		}
		for si, s := range r.Series {
			points[si] = s.Points()
			qm[si] = mode
			names = append(names, r.SeriesName(si))
		}
		tables = append(tables, align.FromPoints(points))
		modes = append(modes, qm)
	}
	if len(tables) == 0 {
		return Data{}
	}
	return Data{Names: names, Table: align.MergeAlignedDataTables(tables, modes)}
}

func buildHistogram(opts Options, results []query.Result) Data {
	frames := make([][]float64, len(results))
	names := make([]string, len(results))
	for i, r := range results {
		frames[i] = r.Samples()
		names[i] = r.Name
	}
	if opts.Histogram.MergeAllQueries {
		names = []string{strings.Join(names, " + ")}
	}
	h := histogram.Build(frames, opts.Histogram)
	if h.Table.Empty() {
		return Data{Kind: KindHistogram}
	}
	logging.Debugf("[panel] %s: %d samples binned at %g", opts.ID, h.Samples, h.BucketSize)
	return Data{Kind: KindHistogram, Names: names, Table: h.Table, BucketSize: h.BucketSize, Samples: h.Samples}
}

func buildHeatmap(results []query.Result) Data {
	var matrices []heatmap.Matrix
	for _, r := range results {
		m, ok := query.HeatmapFromBuckets(r)
		if !ok {
			logging.Warnf("[panel] query %q has no %q bucket series, skipped", r.Name, query.BucketLabel)
			continue
		}
		matrices = append(matrices, m)
	}
	merged := heatmap.MergeByBounds(matrices)
	names := make([]string, len(merged))
	for i, m := range merged {
		names[i] = m.Name
	}
	return Data{Kind: KindHeatmap, Names: names, Heatmaps: merged}
}
