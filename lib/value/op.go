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

package value

import (
	"github.com/gravitational/trace"
)

// Op is a comparison operator as written in a condition.
type Op int

const (
	// OpInvalid is the zero operator.
	OpInvalid Op = iota
	// OpEqual is "==".
	OpEqual
	// OpNotEqual is "!=".
	OpNotEqual
	// OpLessThan is "<".
	OpLessThan
	// OpLessThanEqual is "<=".
	OpLessThanEqual
	// OpGreaterThan is ">".
	OpGreaterThan
	// OpGreaterThanEqual is ">=".
	OpGreaterThanEqual
	// OpRegexMatch is "=~".
	OpRegexMatch
	// OpRegexNotMatch is "!~".
	OpRegexNotMatch
)

var opNames = map[Op]string{
	OpEqual:            "==",
	OpNotEqual:         "!=",
	OpLessThan:         "<",
	OpLessThanEqual:    "<=",
	OpGreaterThan:      ">",
	OpGreaterThanEqual: ">=",
	OpRegexMatch:       "=~",
	OpRegexNotMatch:    "!~",
}

var opsByName = func() map[string]Op {
	out := make(map[string]Op, len(opNames))
	for op, name := range opNames {
		out[name] = op
	}
	return out
}()

// String returns the operator as written in a condition.
func (o Op) String() string {
	if name, ok := opNames[o]; ok {
		return name
	}
	return "<invalid>"
}

// IsRegex reports whether the operator requires the regular expression
// comparator instead of the generic one.
func (o Op) IsRegex() bool {
	return o == OpRegexMatch || o == OpRegexNotMatch
}

// OpFromString resolves an operator token.
func OpFromString(name string) (Op, error) {
	if op, ok := opsByName[name]; ok {
		return op, nil
	}
	return OpInvalid, trace.BadParameter("unknown operator %q", name)
}
