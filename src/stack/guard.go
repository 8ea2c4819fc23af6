package stack

import (
	"fmt"

	"github.com/iafilius/ChartEngine/src/align"
)

type guardState uint8

const (
	stateIdle guardState = iota
	stateUpdating
)

func (s guardState) String() string {
	if s == stateUpdating {
		return "updating"
	}
	return "idle"
}

// Sink receives stacked data. Writing to it may synchronously report a data
// change back to the Stacker that produced it.
type Sink interface {
	SetStacked(Result)
}

// Stacker restacks one chart instance whenever its data or series visibility
// changes, ignoring the change notification caused by its own write-back.
//
// It is not safe for concurrent use; it belongs to the goroutine driving the chart.
type Stacker struct {
	state    guardState
	excluded func(series int) bool
}

// NewStacker returns an idle Stacker. excluded reports hidden series (1-based).
func NewStacker(excluded func(series int) bool) *Stacker {
	return &Stacker{excluded: excluded}
}

// Updating reports whether a write-back is in progress.
func (s *Stacker) Updating() bool { return s.state == stateUpdating }

func (s *Stacker) transition(from, to guardState) {
	if s.state != from {
		panic(fmt.Sprintf("stack: illegal transition %s -> %s from state %s", from, to, s.state))
	}
	s.state = to
}

// Update stacks raw and hands the result to sink. It returns false without
// doing anything when called while a previous Update is still writing back.
func (s *Stacker) Update(raw align.Table, sink Sink) bool {
	if s.state == stateUpdating {
		return false
	}
	s.transition(stateIdle, stateUpdating)
	defer s.transition(stateUpdating, stateIdle)
	sink.SetStacked(Stack(raw, s.excluded))
	return true
}
