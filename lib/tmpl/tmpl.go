/*
 * Warden
 * Copyright (C) 2024  The Warden Authors
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

// Package tmpl defines the sources a condition operand can draw its value
// from. A template is built once, when the policy is loaded, and never
// modified during evaluation; everything produced at evaluation time lives
// on the request or in transient boxes.
package tmpl

import (
	"fmt"

	"github.com/wardenhq/warden/lib/dict"
	"github.com/wardenhq/warden/lib/pair"
	"github.com/wardenhq/warden/lib/request"
	"github.com/wardenhq/warden/lib/value"
)

// Tmpl is one operand source. The set of implementations is closed;
// evaluation switches over the concrete types exhaustively.
type Tmpl interface {
	fmt.Stringer

	// CastType returns the cast written on the operand, or TypeInvalid
	// when none was requested.
	CastType() value.Type

	isTmpl()
}

// Attr references an attribute in one of the request's lists.
type Attr struct {
	// List names the list to search, e.g. "request" or "control".
	List string
	// Attr is the resolved dictionary definition.
	Attr *dict.Attribute
	// Cast is an optional explicit cast on the reference.
	Cast value.Type
}

func (a *Attr) isTmpl() {}

// CastType implements Tmpl.
func (a *Attr) CastType() value.Type { return a.Cast }

// String renders the reference as written in a condition.
func (a *Attr) String() string {
	return a.List + "." + a.Attr.Name
}

// Pairs returns every stored instance of the attribute in order. An
// unknown list is a NotFound error; a known list without the attribute
// returns an empty slice.
func (a *Attr) Pairs(req *request.Request) ([]*pair.Pair, error) {
	list, err := req.List(a.List)
	if err != nil {
		return nil, err
	}
	return list.All(a.Attr), nil
}

// ListRef references a whole list.
type ListRef struct {
	// List names the referenced list.
	List string
}

func (l *ListRef) isTmpl() {}

// CastType implements Tmpl. Lists cannot be cast.
func (l *ListRef) CastType() value.Type { return value.TypeInvalid }

// String renders the reference as written in a condition.
func (l *ListRef) String() string { return l.List + ":" }

// Pairs returns every pair in the list. An unknown list is a NotFound
// error.
func (l *ListRef) Pairs(req *request.Request) ([]*pair.Pair, error) {
	list, err := req.List(l.List)
	if err != nil {
		return nil, err
	}
	return *list, nil
}

// Literal is a constant boxed when the policy was loaded. When a cast is
// present the box already has the cast type; the pair is kept so the
// evaluator can verify the invariant.
type Literal struct {
	// Value is the boxed constant.
	Value value.Value
	// Cast is an optional explicit cast on the operand.
	Cast value.Type
}

func (l *Literal) isTmpl() {}

// CastType implements Tmpl.
func (l *Literal) CastType() value.Type { return l.Cast }

// String renders the constant.
func (l *Literal) String() string {
	if l.Value.Type() == value.TypeString {
		return fmt.Sprintf("%q", l.Value.Str())
	}
	return l.Value.String()
}

// Xlat is a string expanded at evaluation time.
type Xlat struct {
	// Raw is the unexpanded %{...} string.
	Raw string
	// Cast is an optional explicit cast on the operand.
	Cast value.Type
}

func (x *Xlat) isTmpl() {}

// CastType implements Tmpl.
func (x *Xlat) CastType() value.Type { return x.Cast }

// String renders the unexpanded form.
func (x *Xlat) String() string { return fmt.Sprintf("%q", x.Raw) }

// Exec is an external command whose output becomes the operand value.
type Exec struct {
	// Cmdline is the command line, expanded before execution.
	Cmdline string
	// Cast is an optional explicit cast on the operand.
	Cast value.Type
}

func (e *Exec) isTmpl() {}

// CastType implements Tmpl.
func (e *Exec) CastType() value.Type { return e.Cast }

// String renders the command in backticks.
func (e *Exec) String() string { return "`" + e.Cmdline + "`" }
