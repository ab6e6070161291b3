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

	"github.com/gravitational/trace"

	"github.com/wardenhq/warden/lib/request"
	"github.com/wardenhq/warden/lib/tmpl"
	"github.com/wardenhq/warden/lib/value"
)

// realizeTmpl turns an operand template into a concrete value where that
// is possible without iterating stored attributes. Literals return their
// box; expansion templates expand and cast. Attribute and list references
// and compiled patterns return nil with no error, they are handled by the
// multi-value path. The other operand only informs cast selection.
func (e *Evaluator) realizeTmpl(ctx context.Context, req *request.Request, in, other tmpl.Tmpl) (*value.Value, error) {
	var expanded string
	var err error

	switch t := in.(type) {
	case *tmpl.Attr, *tmpl.ListRef, *tmpl.Regex:
		return nil, nil

	case *tmpl.Literal:
		// The loader boxes casts into the literal; a surviving mismatch
		// means the tree was assembled by hand.
		if t.Cast != value.TypeInvalid && t.Cast != t.Value.Type() {
			return nil, trace.BadParameter("literal %s does not have its cast type %v", t, t.Cast)
		}
		v := t.Value
		return &v, nil

	case *tmpl.Xlat:
		expanded, err = e.cfg.Expander.Expand(ctx, req, t.Raw)
	case *tmpl.Exec:
		expanded, err = e.cfg.Expander.Exec(ctx, req, t.Cmdline)
	case *tmpl.RegexXlat:
		expanded, err = e.cfg.Expander.ExpandPattern(ctx, req, t.Raw)

	default:
		return nil, trace.BadParameter("cannot evaluate %s", in)
	}
	if err != nil {
		return nil, trace.Wrap(err, "failed expanding %s", in)
	}

	box := value.NewString(expanded)
	castType := realizeCastType(in, other)
	if castType != value.TypeString {
		box, err = value.Cast(box, castType)
		if err != nil {
			return nil, trace.Wrap(err)
		}
	}
	return &box, nil
}

// realizeCastType picks the type an expansion result becomes: the
// operand's own cast, the other side's cast, the other side's attribute
// or literal type, and string as the last resort.
func realizeCastType(in, other tmpl.Tmpl) value.Type {
	if ct := in.CastType(); ct != value.TypeInvalid {
		return ct
	}
	if ct := other.CastType(); ct != value.TypeInvalid {
		return ct
	}
	switch o := other.(type) {
	case *tmpl.Attr:
		return o.Attr.Type
	case *tmpl.Literal:
		return o.Value.Type()
	}
	return value.TypeString
}

// chooseCastType picks the type both operands are unified to on the
// multi-value path. No choice here does not mean no cast: two numeric
// looking strings still unify through checkIntCast.
func chooseCastType(c *Cond, cmp *Comparison) value.Type {
	// Patterns only match text.
	if cmp.Op.IsRegex() {
		return value.TypeString
	}
	// Virtual attributes normalize the checked value to their own type.
	if c.Fixup == FixupPaircmp {
		if ref, ok := cmp.LHS.(*tmpl.Attr); ok {
			return ref.Attr.Type
		}
		return value.TypeInvalid
	}
	if ct := cmp.LHS.CastType(); ct != value.TypeInvalid {
		return ct
	}
	if ref, ok := cmp.LHS.(*tmpl.Attr); ok {
		return ref.Attr.Type
	}
	if ref, ok := cmp.RHS.(*tmpl.Attr); ok {
		return ref.Attr.Type
	}
	if lit, ok := cmp.LHS.(*tmpl.Literal); ok {
		return lit.Value.Type()
	}
	if lit, ok := cmp.RHS.(*tmpl.Literal); ok {
		return lit.Value.Type()
	}
	return value.TypeInvalid
}

// checkIntCast upgrades an undecided cast to uint64 when both operands
// are strings spelling decimal numbers, so "9" < "10" compares the way a
// human reads it. The sign is admitted by the digit scan but not by the
// unsigned cast; "-1" fails the cast later rather than comparing wrong.
func checkIntCast(castType value.Type, lhs, rhs *value.Value) value.Type {
	if castType != value.TypeInvalid {
		return castType
	}
	if lhs == nil || rhs == nil {
		return castType
	}
	if lhs.Type() != value.TypeString || rhs.Type() != value.TypeString {
		return castType
	}
	if allDigits(lhs.Str()) && allDigits(rhs.Str()) {
		return value.TypeUint64
	}
	return castType
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	if s[0] == '-' {
		s = s[1:]
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// castOperands unifies both operands to the chosen type. Operands
// already of that type pass through untouched, as does everything when
// no type was chosen.
func (e *Evaluator) castOperands(depth int, castType value.Type, lhs, rhs *value.Value) (*value.Value, *value.Value, error) {
	lhs, err := e.castOperand(depth, castType, lhs, "left")
	if err != nil {
		return nil, nil, trace.Wrap(err)
	}
	rhs, err = e.castOperand(depth, castType, rhs, "right")
	if err != nil {
		return nil, nil, trace.Wrap(err)
	}
	return lhs, rhs, nil
}

func (e *Evaluator) castOperand(depth int, castType value.Type, v *value.Value, side string) (*value.Value, error) {
	if v == nil || castType == value.TypeInvalid || v.Type() == castType {
		return v, nil
	}
	out, err := value.Cast(*v, castType)
	if err != nil {
		return nil, trace.Wrap(err, "failed casting %s operand", side)
	}
	if e.cfg.Tracer.Enabled() {
		e.cfg.Tracer.Emit(Event{
			Op:    OpCast,
			Depth: depth,
			Cond:  fmt.Sprintf("%s operand %v -> %v", side, v.Type(), castType),
		})
	}
	return &out, nil
}
