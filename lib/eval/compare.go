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
	"fmt"
	"regexp"

	"github.com/gravitational/trace"

	"github.com/wardenhq/warden"
	"github.com/wardenhq/warden/lib/pair"
	"github.com/wardenhq/warden/lib/request"
	"github.com/wardenhq/warden/lib/tmpl"
	"github.com/wardenhq/warden/lib/value"
)

// compareValues applies one operator to one pair of concrete operands.
// Pattern operators route to the regex engine, virtual attributes route
// to the registered comparator, everything else is an ordinary typed
// comparison. A nil lhs is only legal on the virtual path, a nil rhs
// only on the regex path.
func (e *Evaluator) compareValues(ctx context.Context, req *request.Request, depth int, c *Cond, cmp *Comparison, lhs, rhs *value.Value) (bool, error) {
	if cmp.Op.IsRegex() {
		return e.evalRegex(ctx, req, depth, cmp, lhs, rhs)
	}

	if c.Fixup == FixupPaircmp {
		ref, ok := cmp.LHS.(*tmpl.Attr)
		if !ok {
			return false, trace.BadParameter("virtual comparison needs an attribute reference, got %s", cmp.LHS)
		}
		if rhs == nil {
			return false, trace.BadParameter("virtual comparison of %s has no right operand", ref)
		}
		check := &pair.Pair{Attr: ref.Attr, Op: cmp.Op, Value: *rhs}
		verdict, err := e.cfg.Comparators.Compare(ctx, req, check)
		if err != nil {
			return false, trace.Wrap(err)
		}
		result := verdict == 0
		e.traceCompare(depth, cmp.Op, lhs, rhs, result)
		return result, nil
	}

	if lhs == nil || rhs == nil {
		return false, trace.BadParameter("comparison %s is missing an operand", cmp)
	}
	result, err := value.Compare(cmp.Op, *lhs, *rhs)
	if err != nil {
		return false, trace.Wrap(err)
	}
	e.traceCompare(depth, cmp.Op, lhs, rhs, result)
	return result, nil
}

// traceExpand records the value a dynamic operand produced. References
// and literals are not expansions and emit nothing.
func (e *Evaluator) traceExpand(depth int, t tmpl.Tmpl, v *value.Value) {
	if v == nil || !e.cfg.Tracer.Enabled() {
		return
	}
	switch t.(type) {
	case *tmpl.Xlat, *tmpl.Exec, *tmpl.RegexXlat:
	default:
		return
	}
	e.cfg.Tracer.Emit(Event{
		Op:    OpExpand,
		Depth: depth,
		Cond:  fmt.Sprintf("%s -> %q", t, v.String()),
	})
}

func (e *Evaluator) traceCompare(depth int, op value.Op, lhs, rhs *value.Value, result bool) {
	if !e.cfg.Tracer.Enabled() {
		return
	}
	render := func(v *value.Value) string {
		if v == nil {
			return "(virtual)"
		}
		return v.String()
	}
	e.cfg.Tracer.Emit(Event{
		Op:     OpCompare,
		Depth:  depth,
		Cond:   fmt.Sprintf("%s %s %s", render(lhs), op, render(rhs)),
		Result: result,
	})
}

// evalRegex matches one subject string against the comparison's pattern.
// A successful match publishes the capture groups on the request, a
// clean non-match clears any previously published ones, and a failure
// leaves them untouched. The not-match operator inverts the verdict but
// the capture side effects still follow the raw match.
func (e *Evaluator) evalRegex(ctx context.Context, req *request.Request, depth int, cmp *Comparison, subject, pattern *value.Value) (bool, error) {
	if subject == nil {
		return false, trace.BadParameter("regex comparison %s has no subject", cmp)
	}
	if subject.Type() != value.TypeString {
		return false, trace.BadParameter("regex subject must be a string, got %v", subject.Type())
	}

	re, err := e.patternFor(cmp, pattern)
	if err != nil {
		return false, trace.Wrap(err)
	}

	groups := re.FindStringSubmatch(subject.Str())
	matched := groups != nil
	if matched {
		// Patterns that declare no groups still get the legacy slots so
		// %{1}..%{8} read as empty instead of failing to resolve.
		slots := re.NumSubexp() + 1
		if re.NumSubexp() == 0 {
			slots = warden.MaxCaptureGroups + 1
		}
		padded := make([]string, slots)
		copy(padded, groups)
		req.PublishCaptures(padded)
	} else {
		req.ClearCaptures()
	}

	if e.cfg.Tracer.Enabled() {
		e.cfg.Tracer.Emit(Event{
			Op:     OpRegex,
			Depth:  depth,
			Cond:   fmt.Sprintf("%q %s /%s/", subject.Str(), cmp.Op, re.String()),
			Result: matched,
		})
	}

	if cmp.Op == value.OpRegexNotMatch {
		return !matched, nil
	}
	return matched, nil
}

// patternFor returns the compiled pattern for a regex comparison. A
// pattern compiled at load time is used as is. A pattern produced by
// expansion arrives as the realized right operand and is compiled here
// on every evaluation, with the flags carried by its template.
func (e *Evaluator) patternFor(cmp *Comparison, pattern *value.Value) (*regexp.Regexp, error) {
	switch t := cmp.RHS.(type) {
	case *tmpl.Regex:
		return t.Pattern, nil
	case *tmpl.RegexXlat:
		if pattern == nil {
			return nil, trace.BadParameter("pattern %s was not expanded before matching", t)
		}
		if pattern.Type() != value.TypeString {
			return nil, trace.BadParameter("expanded pattern must be a string, got %v", pattern.Type())
		}
		re, err := tmpl.CompileRegex(pattern.Str(), t.Flags)
		if err != nil {
			return nil, trace.Wrap(err)
		}
		e.metrics.regexCompilations.Inc()
		return re, nil
	}
	return nil, trace.BadParameter("%s is not a pattern", cmp.RHS)
}
