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
	"context"
	"log/slog"
	"time"

	"github.com/gravitational/trace"

	"github.com/wardenhq/warden"
	"github.com/wardenhq/warden/lib/paircmp"
	"github.com/wardenhq/warden/lib/rcode"
	"github.com/wardenhq/warden/lib/request"
	"github.com/wardenhq/warden/lib/tmpl"
)

// Config holds the collaborators an Evaluator needs.
type Config struct {
	// Expander performs placeholder expansion and command execution for
	// the dynamic operand templates.
	Expander tmpl.Expander
	// Comparators answers comparisons against virtual attributes.
	// Optional, defaults to an empty registry.
	Comparators *paircmp.Registry
	// Logger emits evaluation debug records. Optional.
	Logger *slog.Logger
	// Tracer receives step by step evaluation events. Optional,
	// defaults to a tracer that discards everything.
	Tracer Tracer
}

// CheckAndSetDefaults validates the config and fills in defaults.
func (c *Config) CheckAndSetDefaults() error {
	if c.Expander == nil {
		return trace.BadParameter("missing parameter Expander")
	}
	if c.Comparators == nil {
		c.Comparators = paircmp.NewRegistry()
	}
	if c.Logger == nil {
		c.Logger = slog.With(warden.ComponentKey, warden.ComponentEval)
	}
	if c.Tracer == nil {
		c.Tracer = NopTracer{}
	}
	return nil
}

// Evaluator decides condition sequences against requests. It is
// stateless across calls and safe for concurrent use, all per-request
// state lives on the request itself.
type Evaluator struct {
	cfg     Config
	log     *slog.Logger
	metrics *evalMetrics
}

// New returns an Evaluator using the given config.
func New(cfg Config) (*Evaluator, error) {
	if err := cfg.CheckAndSetDefaults(); err != nil {
		return nil, trace.Wrap(err)
	}
	m, err := getMetrics()
	if err != nil {
		return nil, trace.Wrap(err)
	}
	return &Evaluator{
		cfg:     cfg,
		log:     cfg.Logger,
		metrics: m,
	}, nil
}

// Evaluate walks the condition sequence against the request and returns
// its boolean outcome. The prior return code is what rcode nodes compare
// against. Any error aborts the walk with the partial side effects, such
// as published captures, left in place.
func (e *Evaluator) Evaluate(ctx context.Context, req *request.Request, prior rcode.Code, seq Seq) (bool, error) {
	start := time.Now()
	if err := seq.check(); err != nil {
		e.metrics.observe(start, false, err)
		return false, trace.Wrap(err)
	}
	result, err := e.walk(ctx, req, prior, seq)
	e.metrics.observe(start, result, err)
	if err != nil {
		return false, trace.Wrap(err)
	}
	return result, nil
}

// frame is one level of the walk. idx points at the condition being
// evaluated, for suspended parents that is the group just descended
// into. negate is the enclosing group's negation, applied when the
// level's result is decided.
type frame struct {
	seq    Seq
	idx    int
	negate bool
}

// walk runs the sequence without recursing. Combinators short-circuit:
// a false before && or a true before || decides the level immediately
// and the remainder is skipped. Within a run of conditions not joined
// by combinators the last result wins.
func (e *Evaluator) walk(ctx context.Context, req *request.Request, prior rcode.Code, seq Seq) (bool, error) {
	tracer := e.cfg.Tracer
	tracing := tracer.Enabled()

	var stack []frame
	cur := frame{seq: seq}
	result := false

	for {
		c := cur.seq[cur.idx]

		if group, ok := c.Node.(*Group); ok {
			if tracing {
				tracer.Emit(Event{Op: OpEnter, Depth: len(stack), Cond: summary(c)})
			}
			stack = append(stack, cur)
			cur = frame{seq: group.Seq, negate: c.Negate}
			continue
		}

		var err error
		switch n := c.Node.(type) {
		case Constant:
			result = bool(n)
		case *TmplTest:
			result, err = e.evalTmpl(ctx, req, n.Tmpl)
		case *RcodeTest:
			result = n.Code == prior
		case *Comparison:
			result, err = e.evalMap(ctx, req, len(stack), c)
		case Logical:
			err = trace.BadParameter("combinator %s in operand position", n)
		default:
			err = trace.BadParameter("unknown condition node %T", c.Node)
		}
		if err != nil {
			if tracing {
				tracer.Emit(Event{Op: OpFail, Depth: len(stack), Cond: summary(c), Err: err})
			}
			return false, trace.Wrap(err)
		}
		if c.Negate {
			result = !result
		}
		if tracing {
			tracer.Emit(Event{Op: OpNode, Depth: len(stack), Cond: summary(c), Result: result})
		}

		// Advance within the level, short-circuiting past the
		// combinator ahead, or climb back out when the level is done.
		for {
			advanced := false
			if cur.idx+1 < len(cur.seq) {
				next := cur.seq[cur.idx+1]
				if lg, ok := next.Node.(Logical); ok {
					if (lg == LogicalAnd && !result) || (lg == LogicalOr && result) {
						if tracing {
							tracer.Emit(Event{Op: OpShortCircuit, Depth: len(stack), Cond: lg.String(), Result: result})
						}
					} else {
						cur.idx += 2
						advanced = true
					}
				} else {
					cur.idx++
					advanced = true
				}
			}
			if advanced {
				break
			}

			if cur.negate {
				result = !result
			}
			if len(stack) == 0 {
				return result, nil
			}
			cur = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if tracing {
				tracer.Emit(Event{Op: OpExit, Depth: len(stack), Cond: summary(cur.seq[cur.idx]), Result: result})
			}
		}
	}
}

// evalTmpl decides a bare template used as a condition. References are
// true when at least one instance exists, dynamic templates are true
// when their expansion is non-empty. A failed expansion is logged and
// counts as false rather than aborting, so policies can probe
// expansions that may not resolve.
func (e *Evaluator) evalTmpl(ctx context.Context, req *request.Request, t tmpl.Tmpl) (bool, error) {
	switch t := t.(type) {
	case *tmpl.Attr:
		pairs, err := t.Pairs(req)
		if err != nil {
			e.log.DebugContext(ctx, "Truth test reference did not resolve", "tmpl", t.String(), "error", err)
			return false, nil
		}
		return len(pairs) > 0, nil

	case *tmpl.ListRef:
		pairs, err := t.Pairs(req)
		if err != nil {
			e.log.DebugContext(ctx, "Truth test reference did not resolve", "tmpl", t.String(), "error", err)
			return false, nil
		}
		return len(pairs) > 0, nil

	case *tmpl.Xlat:
		out, err := e.cfg.Expander.Expand(ctx, req, t.Raw)
		if err != nil {
			e.log.DebugContext(ctx, "Truth test expansion failed", "tmpl", t.String(), "error", err)
			return false, nil
		}
		return out != "", nil

	case *tmpl.Exec:
		out, err := e.cfg.Expander.Exec(ctx, req, t.Cmdline)
		if err != nil {
			e.log.DebugContext(ctx, "Truth test execution failed", "tmpl", t.String(), "error", err)
			return false, nil
		}
		return out != "", nil
	}

	return false, trace.BadParameter("cannot test %s for truth", t)
}
