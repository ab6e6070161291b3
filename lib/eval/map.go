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

	"github.com/gravitational/trace"

	"github.com/wardenhq/warden/lib/pair"
	"github.com/wardenhq/warden/lib/request"
	"github.com/wardenhq/warden/lib/tmpl"
	"github.com/wardenhq/warden/lib/value"
)

// evalMap evaluates one comparison node. Both operands are realized
// first; when that yields two concrete values the comparison is a single
// operator application. Otherwise the left side names stored attributes
// and each of its instances is compared in order, with the first match
// deciding. An absent attribute compares as no match, an unknown list
// reference is an error.
func (e *Evaluator) evalMap(ctx context.Context, req *request.Request, depth int, c *Cond) (bool, error) {
	cmp, ok := c.Node.(*Comparison)
	if !ok {
		return false, trace.BadParameter("expected a comparison node, got %T", c.Node)
	}

	lhs, err := e.realizeTmpl(ctx, req, cmp.LHS, cmp.RHS)
	if err != nil {
		return false, trace.Wrap(err, "failed evaluating left side of %s", cmp)
	}
	e.traceExpand(depth, cmp.LHS, lhs)
	rhs, err := e.realizeTmpl(ctx, req, cmp.RHS, cmp.LHS)
	if err != nil {
		return false, trace.Wrap(err, "failed evaluating right side of %s", cmp)
	}
	e.traceExpand(depth, cmp.RHS, rhs)

	if lhs != nil && rhs != nil {
		return e.compareValues(ctx, req, depth, c, cmp, lhs, rhs)
	}

	// Virtual attributes have no stored instances to walk, the
	// comparator answers for them directly. Regex comparisons still go
	// through the stored instances below.
	if c.Fixup == FixupPaircmp && !cmp.Op.IsRegex() {
		return e.normaliseAndCompare(ctx, req, depth, c, cmp, nil)
	}

	switch cmp.LHS.(type) {
	case *tmpl.Attr, *tmpl.ListRef:
		pairs, err := refPairs(req, cmp.LHS)
		if err != nil {
			return false, trace.Wrap(err)
		}
		for _, p := range pairs {
			v := p.Value
			matched, err := e.normaliseAndCompare(ctx, req, depth, c, cmp, &v)
			if err != nil {
				return false, trace.Wrap(err)
			}
			if matched {
				return true, nil
			}
		}
		return false, nil

	case *tmpl.RegexXlat:
		// Expanded patterns compare only against a realized right side,
		// which the fast path above already handled.
		return false, trace.BadParameter("cannot use %s as the left side of a comparison", cmp.LHS)

	default:
		if lhs == nil {
			return false, trace.BadParameter("cannot use %s as the left side of a comparison", cmp.LHS)
		}
		return e.normaliseAndCompare(ctx, req, depth, c, cmp, lhs)
	}
}

// normaliseAndCompare compares one concrete left value, nil for virtual
// attributes, against the right template. Attribute and list right sides
// are iterated the same way the left side was, so the comparison is true
// if any instance pairing matches. Both operands are unified to a single
// type before each operator application.
func (e *Evaluator) normaliseAndCompare(ctx context.Context, req *request.Request, depth int, c *Cond, cmp *Comparison, lhs *value.Value) (bool, error) {
	castType := chooseCastType(c, cmp)

	switch t := cmp.RHS.(type) {
	case *tmpl.Attr, *tmpl.ListRef:
		pairs, err := refPairs(req, cmp.RHS)
		if err != nil {
			return false, trace.Wrap(err)
		}
		for _, p := range pairs {
			rhs := p.Value
			castType = checkIntCast(castType, lhs, &rhs)
			cl, cr, err := e.castOperands(depth, castType, lhs, &rhs)
			if err != nil {
				return false, trace.Wrap(err)
			}
			matched, err := e.compareValues(ctx, req, depth, c, cmp, cl, cr)
			if err != nil {
				return false, trace.Wrap(err)
			}
			if matched {
				return true, nil
			}
		}
		return false, nil

	case *tmpl.Literal:
		rhs := t.Value
		return e.castAndCompare(ctx, req, depth, c, cmp, castType, lhs, &rhs)

	case *tmpl.Xlat:
		out, err := e.cfg.Expander.Expand(ctx, req, t.Raw)
		if err != nil {
			return false, trace.Wrap(err, "failed expanding %s", t)
		}
		rhs := value.NewString(out)
		e.traceExpand(depth, t, &rhs)
		return e.castAndCompare(ctx, req, depth, c, cmp, castType, lhs, &rhs)

	case *tmpl.Exec:
		out, err := e.cfg.Expander.Exec(ctx, req, t.Cmdline)
		if err != nil {
			return false, trace.Wrap(err, "failed executing %s", t)
		}
		rhs := value.NewString(out)
		e.traceExpand(depth, t, &rhs)
		return e.castAndCompare(ctx, req, depth, c, cmp, castType, lhs, &rhs)

	case *tmpl.RegexXlat:
		out, err := e.cfg.Expander.ExpandPattern(ctx, req, t.Raw)
		if err != nil {
			return false, trace.Wrap(err, "failed expanding pattern %s", t)
		}
		rhs := value.NewString(out)
		e.traceExpand(depth, t, &rhs)
		return e.castAndCompare(ctx, req, depth, c, cmp, castType, lhs, &rhs)

	case *tmpl.Regex:
		cl, _, err := e.castOperands(depth, castType, lhs, nil)
		if err != nil {
			return false, trace.Wrap(err)
		}
		return e.compareValues(ctx, req, depth, c, cmp, cl, nil)

	default:
		return false, trace.BadParameter("cannot use %s as the right side of a comparison", cmp.RHS)
	}
}

func (e *Evaluator) castAndCompare(ctx context.Context, req *request.Request, depth int, c *Cond, cmp *Comparison, castType value.Type, lhs, rhs *value.Value) (bool, error) {
	castType = checkIntCast(castType, lhs, rhs)
	cl, cr, err := e.castOperands(depth, castType, lhs, rhs)
	if err != nil {
		return false, trace.Wrap(err)
	}
	return e.compareValues(ctx, req, depth, c, cmp, cl, cr)
}

// refPairs resolves an attribute or list reference to the stored pairs
// it names. An attribute that is simply absent resolves to no pairs.
func refPairs(req *request.Request, t tmpl.Tmpl) ([]*pair.Pair, error) {
	switch t := t.(type) {
	case *tmpl.Attr:
		return t.Pairs(req)
	case *tmpl.ListRef:
		return t.Pairs(req)
	}
	return nil, trace.BadParameter("%s does not name stored attributes", t)
}
