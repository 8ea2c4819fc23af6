// Package query holds the raw query results panels are built from and the
// loader that reads them from disk.
package query

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/iafilius/ChartEngine/src/align"
)

// ErrNoQueries is returned when a results source holds no query.
var ErrNoQueries = errors.New("no query results")

// SamplePair is one (timestamp, value) sample. Timestamps are Unix
// milliseconds; values arrive as strings. On the wire a pair is a two element
// array: [1700000000000, "42.5"]. A JSON null value marks an explicit gap.
type SamplePair struct {
	Timestamp float64
	Value     string
	Null      bool
}

// UnmarshalJSON accepts [ts, "value"], [ts, value] and [ts, null].
func (p *SamplePair) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("sample pair: %w", err)
	}
	if len(raw) != 2 {
		return fmt.Errorf("sample pair: expected 2 elements, got %d", len(raw))
	}
	if err := json.Unmarshal(raw[0], &p.Timestamp); err != nil {
		return fmt.Errorf("sample pair timestamp: %w", err)
	}
	v := bytes.TrimSpace(raw[1])
	if bytes.Equal(v, []byte("null")) {
		p.Null = true
		return nil
	}
	if len(v) > 0 && v[0] == '"' {
		return json.Unmarshal(v, &p.Value)
	}
	p.Value = string(v)
	return nil
}

// MarshalJSON writes the [ts, "value"] form.
func (p SamplePair) MarshalJSON() ([]byte, error) {
	if p.Null {
		return json.Marshal([]interface{}{p.Timestamp, nil})
	}
	return json.Marshal([]interface{}{p.Timestamp, p.Value})
}

// Float returns the leniently parsed value.
func (p SamplePair) Float() float64 { return ParseValue(p.Value) }

// ParseValue parses a sample value. Anything that is not a finite number
// becomes 0 so one bad sample does not fail a whole panel.
func ParseValue(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Series is one labelled sequence of samples.
type Series struct {
	Labels map[string]string `json:"labels,omitempty"`
	Values []SamplePair      `json:"values"`
}

// Points converts the samples to aligner input. Null samples become NaN.
func (s Series) Points() []align.Point {
	out := make([]align.Point, len(s.Values))
	for i, p := range s.Values {
		v := p.Float()
		if p.Null {
			v = math.NaN()
		}
		out[i] = align.Point{X: p.Timestamp, V: v}
	}
	return out
}

// Result is the output of one query of a panel.
type Result struct {
	Name string `json:"name"`
	// Legend is an optional template such as "{{service}} p99".
	Legend string   `json:"legend,omitempty"`
	Series []Series `json:"series"`
}

// Samples returns every non-null value of every series, the frame a
// histogram bins.
func (r Result) Samples() []float64 {
	var out []float64
	for _, s := range r.Series {
		for _, p := range s.Values {
			if !p.Null {
				out = append(out, p.Float())
			}
		}
	}
	return out
}

// SeriesName names series i for legends and color overrides.
func (r Result) SeriesName(i int) string {
	s := r.Series[i]
	if r.Legend != "" {
		name := r.Legend
		for k, v := range s.Labels {
			name = strings.ReplaceAll(name, "{{"+k+"}}", v)
		}
		return name
	}
	if len(s.Labels) == 0 {
		return r.Name
	}
	keys := make([]string, 0, len(s.Labels))
	for k := range s.Labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%q", k, s.Labels[k])
	}
	return r.Name + "{" + strings.Join(parts, ", ") + "}"
}

// Document is the JSON file layout: {"queries": [...]}.
type Document struct {
	Queries []Result `json:"queries"`
}
