/*
 * Warden
 * Copyright (C) 2025  The Warden Authors
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU Affero General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU Affero General Public License for more details.
 *
 * You should have received a copy of the GNU Affero General Public License
 * along with this program.  If not, see <http://www.gnu.org/licenses/>.
 */

package eval

import (
	"fmt"
	"log/slog"
	"strings"
)

// Op identifies what an evaluation trace event records.
type Op string

const (
	// OpNode is one condition evaluated to a result.
	OpNode Op = "node"
	// OpEnter is the walk descending into a group.
	OpEnter Op = "enter"
	// OpExit is the walk leaving a group with the group's result.
	OpExit Op = "exit"
	// OpShortCircuit is the rest of a level being skipped because the
	// combinator ahead cannot change the outcome.
	OpShortCircuit Op = "short-circuit"
	// OpCompare is one comparator invocation inside a comparison.
	OpCompare Op = "compare"
	// OpRegex is a pattern applied to a subject.
	OpRegex Op = "regex"
	// OpExpand is a dynamic operand producing its value.
	OpExpand Op = "expand"
	// OpCast is an operand converted to the comparison type.
	OpCast Op = "cast"
	// OpFail is an evaluation step failing.
	OpFail Op = "fail"
)

// Event is one step of an evaluation walk.
type Event struct {
	// Op says what happened.
	Op Op
	// Depth is the group nesting depth at the time.
	Depth int
	// Cond renders the condition or operand involved.
	Cond string
	// Result is the step's outcome where the step has one; expand, cast
	// and failure events do not.
	Result bool
	// Err is set when Op is OpFail.
	Err error
}

// String renders the event indented by its depth.
func (e Event) String() string {
	indent := strings.Repeat("  ", e.Depth)
	if e.Err != nil {
		return fmt.Sprintf("%s%-13s %s error=%v", indent, e.Op, e.Cond, e.Err)
	}
	switch e.Op {
	case OpEnter, OpExpand, OpCast:
		return fmt.Sprintf("%s%-13s %s", indent, e.Op, e.Cond)
	default:
		return fmt.Sprintf("%s%-13s %s -> %t", indent, e.Op, e.Cond, e.Result)
	}
}

// Tracer receives evaluation events. Implementations must be safe for
// use by concurrent evaluations or be scoped to a single one.
type Tracer interface {
	// Enabled reports whether events are wanted at all. The walker
	// skips event construction entirely when it returns false.
	Enabled() bool
	// Emit records one event.
	Emit(Event)
}

// NopTracer discards everything. It is the default.
type NopTracer struct{}

// Enabled implements Tracer.
func (NopTracer) Enabled() bool { return false }

// Emit implements Tracer.
func (NopTracer) Emit(Event) {}

// BufferTracer collects events in order, for tests and the debug CLI.
type BufferTracer []Event

// Enabled implements Tracer.
func (b *BufferTracer) Enabled() bool { return true }

// Emit implements Tracer.
func (b *BufferTracer) Emit(evt Event) { *b = append(*b, evt) }

// SlogTracer emits every event as a debug record.
type SlogTracer struct {
	// Log receives the records.
	Log *slog.Logger
}

// Enabled implements Tracer.
func (t *SlogTracer) Enabled() bool { return t.Log != nil }

// Emit implements Tracer.
func (t *SlogTracer) Emit(evt Event) {
	attrs := []any{"op", string(evt.Op), "depth", evt.Depth, "cond", evt.Cond}
	if evt.Err != nil {
		attrs = append(attrs, "error", evt.Err)
	} else {
		attrs = append(attrs, "result", evt.Result)
	}
	t.Log.Debug("eval", attrs...)
}
