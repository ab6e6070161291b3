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

// Package pair implements attribute-value pairs and the ordered lists a
// request carries them in. The same attribute may occur any number of
// times in a list; iteration order is insertion order.
package pair

import (
	"fmt"

	"github.com/wardenhq/warden/lib/dict"
	"github.com/wardenhq/warden/lib/value"
)

// Pair binds one value to an attribute. Op records the operator the pair
// was written with; registered comparators receive it when the pair acts
// as a check item, stored pairs usually carry OpEqual.
type Pair struct {
	Attr  *dict.Attribute
	Op    value.Op
	Value value.Value
}

// New returns a stored pair carrying the attribute's value.
func New(attr *dict.Attribute, v value.Value) *Pair {
	return &Pair{Attr: attr, Op: value.OpEqual, Value: v}
}

// String renders the pair the way it would be written in a check list.
func (p *Pair) String() string {
	return fmt.Sprintf("%s %s %s", p.Attr.Name, p.Op, p.Value)
}

// List is an ordered multiset of pairs.
type List []*Pair

// Append adds a pair at the end of the list.
func (l *List) Append(p *Pair) {
	*l = append(*l, p)
}

// Get returns the first pair of the attribute, or nil.
func (l List) Get(attr *dict.Attribute) *Pair {
	for _, p := range l {
		if p.Attr == attr {
			return p
		}
	}
	return nil
}

// All returns every pair of the attribute in insertion order.
func (l List) All(attr *dict.Attribute) []*Pair {
	var out []*Pair
	for _, p := range l {
		if p.Attr == attr {
			out = append(out, p)
		}
	}
	return out
}

// Len returns the number of pairs in the list.
func (l List) Len() int { return len(l) }
