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
	"bytes"
	"net/netip"
	"strings"

	"github.com/gravitational/trace"
)

// Compare applies an ordering or equality operator to two boxes of the same
// type and reports whether the relation holds. Regular expression operators
// are not comparisons between boxes and are rejected here. Address and
// prefix boxes may be mixed; every other type mismatch is an error, callers
// are expected to have unified types before comparing.
func Compare(op Op, a, b Value) (bool, error) {
	if op.IsRegex() {
		return false, trace.BadParameter("operator %v requires the regular expression comparator", op)
	}
	if a.typ == TypeIPAddr || a.typ == TypeIPPrefix || b.typ == TypeIPAddr || b.typ == TypeIPPrefix {
		return compareIP(op, a, b)
	}
	if a.typ != b.typ {
		return false, trace.BadParameter("cannot compare %v to %v", a.typ, b.typ)
	}
	var cmp int
	switch a.typ {
	case TypeString:
		cmp = strings.Compare(a.str, b.str)
	case TypeOctets:
		cmp = bytes.Compare(a.oct, b.oct)
	case TypeBool:
		cmp = boolCmp(a.flag, b.flag)
	case TypeUint32:
		cmp = orderedCmp(a.u32, b.u32)
	case TypeUint64:
		cmp = orderedCmp(a.u64, b.u64)
	case TypeInt64:
		cmp = orderedCmp(a.i64, b.i64)
	case TypeDate:
		cmp = a.date.Compare(b.date)
	default:
		return false, trace.BadParameter("cannot compare %v values", a.typ)
	}
	switch op {
	case OpEqual:
		return cmp == 0, nil
	case OpNotEqual:
		return cmp != 0, nil
	case OpLessThan:
		return cmp < 0, nil
	case OpLessThanEqual:
		return cmp <= 0, nil
	case OpGreaterThan:
		return cmp > 0, nil
	case OpGreaterThanEqual:
		return cmp >= 0, nil
	}
	return false, trace.BadParameter("unknown operator %v", op)
}

// compareIP handles addresses and networks. Equality is exact. The ordering
// operators test containment: a < b holds when a lies strictly inside the
// network b, a > b when a strictly contains b.
func compareIP(op Op, a, b Value) (bool, error) {
	pa, err := asPrefix(a)
	if err != nil {
		return false, trace.Wrap(err)
	}
	pb, err := asPrefix(b)
	if err != nil {
		return false, trace.Wrap(err)
	}
	if pa.Addr().Is4() != pb.Addr().Is4() {
		return false, trace.BadParameter("cannot compare IPv4 with IPv6")
	}
	equal := pa == pb
	switch op {
	case OpEqual:
		return equal, nil
	case OpNotEqual:
		return !equal, nil
	case OpLessThan:
		return !equal && contains(pb, pa), nil
	case OpLessThanEqual:
		return contains(pb, pa), nil
	case OpGreaterThan:
		return !equal && contains(pa, pb), nil
	case OpGreaterThanEqual:
		return contains(pa, pb), nil
	}
	return false, trace.BadParameter("unknown operator %v", op)
}

func asPrefix(v Value) (netip.Prefix, error) {
	switch v.typ {
	case TypeIPAddr:
		return netip.PrefixFrom(v.addr, v.addr.BitLen()), nil
	case TypeIPPrefix:
		return v.prefix, nil
	}
	return netip.Prefix{}, trace.BadParameter("cannot compare %v to an IP value", v.typ)
}

func contains(outer, inner netip.Prefix) bool {
	return outer.Bits() <= inner.Bits() && outer.Contains(inner.Addr())
}

func boolCmp(a, b bool) int {
	switch {
	case a == b:
		return 0
	case b:
		return -1
	default:
		return 1
	}
}

func orderedCmp[T uint32 | uint64 | int64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
