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

// Package eval evaluates condition trees against requests. A tree is
// built once when a policy loads and is immutable afterwards; any number
// of requests may evaluate it concurrently. All evaluation-time state
// lives on the request or on the stack of the evaluating goroutine.
package eval

import (
	"fmt"

	"github.com/gravitational/trace"

	"github.com/wardenhq/warden/lib/rcode"
	"github.com/wardenhq/warden/lib/tmpl"
	"github.com/wardenhq/warden/lib/value"
)

// Fixup marks work the policy loader performed, or deferred, on a
// condition after parsing. Attr and Type fixups must be resolved before
// evaluation; Paircmp survives to evaluation and routes the comparison
// to a registered comparator.
type Fixup int

const (
	// FixupNone means the condition needed no post-parse work.
	FixupNone Fixup = iota
	// FixupAttr marks an attribute reference that still needs resolving.
	FixupAttr
	// FixupType marks operand types that still need normalizing.
	FixupType
	// FixupPaircmp marks a comparison against a virtual attribute.
	FixupPaircmp
)

var fixupNames = map[Fixup]string{
	FixupNone:    "none",
	FixupAttr:    "attr",
	FixupType:    "type",
	FixupPaircmp: "paircompare",
}

// String returns the fixup's name.
func (f Fixup) String() string {
	if name, ok := fixupNames[f]; ok {
		return name
	}
	return "<invalid>"
}

// FixupFromString returns the fixup with the given name.
func FixupFromString(name string) (Fixup, error) {
	for f, n := range fixupNames {
		if n == name {
			return f, nil
		}
	}
	return FixupNone, trace.BadParameter("unknown fixup %q", name)
}

// Node is the payload of one condition. The set of implementations is
// closed; the walker switches over the concrete types exhaustively.
type Node interface {
	isNode()
}

// Constant is a condition decided when the policy was loaded, e.g. a
// literal that was statically true or false.
type Constant bool

func (Constant) isNode() {}

// TmplTest tests a bare template for truth: an attribute reference is
// true when at least one instance is stored, an expansion when it
// produces non-empty output.
type TmplTest struct {
	// Tmpl is the tested template.
	Tmpl tmpl.Tmpl
}

func (*TmplTest) isNode() {}

// Comparison compares the values of two operand templates.
type Comparison struct {
	// LHS is the left operand.
	LHS tmpl.Tmpl
	// Op is the comparison operator.
	Op value.Op
	// RHS is the right operand.
	RHS tmpl.Tmpl
}

func (*Comparison) isNode() {}

// String renders the comparison the way the policy language spells it.
func (m *Comparison) String() string {
	return fmt.Sprintf("%s %s %s", m.LHS, m.Op, m.RHS)
}

// RcodeTest is true when the previous processing stage returned the
// named result code.
type RcodeTest struct {
	// Code is the expected result code.
	Code rcode.Code
}

func (*RcodeTest) isNode() {}

// Group is a parenthesised sub-sequence evaluated as one condition.
type Group struct {
	// Seq is the enclosed sequence.
	Seq Seq
}

func (*Group) isNode() {}

// Logical joins the conditions on either side of it in a sequence. It is
// never evaluated itself; the walker inspects it to decide whether the
// next condition can change the outcome.
type Logical int

const (
	// LogicalInvalid is the zero combinator.
	LogicalInvalid Logical = iota
	// LogicalAnd is "&&".
	LogicalAnd
	// LogicalOr is "||".
	LogicalOr
)

func (Logical) isNode() {}

// String returns the combinator as written.
func (l Logical) String() string {
	switch l {
	case LogicalAnd:
		return "&&"
	case LogicalOr:
		return "||"
	}
	return "<invalid>"
}

// Cond is one element of a sequence.
type Cond struct {
	// Negate inverts the condition's result.
	Negate bool
	// Fixup records deferred post-parse work, see Fixup.
	Fixup Fixup
	// Node is the condition's payload.
	Node Node
}

// Seq is an ordered run of conditions and the combinators between them.
type Seq []*Cond

// check validates the structural invariants the walker relies on. The
// policy loader guarantees them for trees it builds; programmatically
// assembled trees go through the same gate at evaluation entry.
func (s Seq) check() error {
	if len(s) == 0 {
		return trace.BadParameter("empty condition sequence")
	}
	prevLogical := true
	for i, c := range s {
		if c == nil || c.Node == nil {
			return trace.BadParameter("condition %d is empty", i)
		}
		if lg, ok := c.Node.(Logical); ok {
			if lg != LogicalAnd && lg != LogicalOr {
				return trace.BadParameter("condition %d: bad combinator", i)
			}
			if c.Negate {
				return trace.BadParameter("condition %d: combinator cannot be negated", i)
			}
			if prevLogical {
				return trace.BadParameter("condition %d: combinator without left operand", i)
			}
			if i == len(s)-1 {
				return trace.BadParameter("condition %d: combinator without right operand", i)
			}
			prevLogical = true
			continue
		}
		prevLogical = false
		switch c.Fixup {
		case FixupAttr, FixupType:
			return trace.BadParameter("condition %d: unresolved %v fixup reached evaluation", i, c.Fixup)
		}
		switch n := c.Node.(type) {
		case *Comparison:
			if n.LHS == nil || n.RHS == nil {
				return trace.BadParameter("condition %d: comparison is missing an operand", i)
			}
			if c.Fixup == FixupPaircmp {
				if _, ok := n.LHS.(*tmpl.Attr); !ok {
					return trace.BadParameter("condition %d: paircompare needs an attribute on the left", i)
				}
			}
		case *TmplTest:
			if n.Tmpl == nil {
				return trace.BadParameter("condition %d: test is missing its template", i)
			}
		case *Group:
			if err := n.Seq.check(); err != nil {
				return trace.Wrap(err)
			}
		}
	}
	return nil
}
