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
	"math"
	"net/netip"
	"time"

	"github.com/gravitational/trace"
)

// Cast converts a box to the target type and returns a new box. The input
// box is never modified. Unrepresentable conversions, out of range numbers
// included, return an error naming both types.
func Cast(v Value, to Type) (Value, error) {
	if v.typ == to {
		return v, nil
	}
	if v.typ == TypeInvalid || to == TypeInvalid {
		return Value{}, trace.BadParameter("cannot cast %v to %v", v.typ, to)
	}
	if v.typ == TypeString {
		out, err := Parse(to, v.str)
		if err != nil {
			return Value{}, trace.BadParameter("cannot cast string %q to %v", v.str, to)
		}
		return out, nil
	}
	switch to {
	case TypeString:
		if v.typ == TypeOctets {
			return NewString(string(v.oct)), nil
		}
		return NewString(v.String()), nil
	case TypeOctets:
		// Only text reinterprets as raw bytes.
	case TypeBool:
		switch v.typ {
		case TypeUint32:
			return NewBool(v.u32 != 0), nil
		case TypeUint64:
			return NewBool(v.u64 != 0), nil
		case TypeInt64:
			return NewBool(v.i64 != 0), nil
		}
	case TypeUint32:
		switch v.typ {
		case TypeBool:
			return NewUint32(boolBit(v.flag)), nil
		case TypeUint64:
			if v.u64 > math.MaxUint32 {
				return Value{}, castRange(v, to)
			}
			return NewUint32(uint32(v.u64)), nil
		case TypeInt64:
			if v.i64 < 0 || v.i64 > math.MaxUint32 {
				return Value{}, castRange(v, to)
			}
			return NewUint32(uint32(v.i64)), nil
		case TypeDate:
			epoch := v.date.Unix()
			if epoch < 0 || epoch > math.MaxUint32 {
				return Value{}, castRange(v, to)
			}
			return NewUint32(uint32(epoch)), nil
		}
	case TypeUint64:
		switch v.typ {
		case TypeBool:
			return NewUint64(uint64(boolBit(v.flag))), nil
		case TypeUint32:
			return NewUint64(uint64(v.u32)), nil
		case TypeInt64:
			if v.i64 < 0 {
				return Value{}, castRange(v, to)
			}
			return NewUint64(uint64(v.i64)), nil
		case TypeDate:
			epoch := v.date.Unix()
			if epoch < 0 {
				return Value{}, castRange(v, to)
			}
			return NewUint64(uint64(epoch)), nil
		}
	case TypeInt64:
		switch v.typ {
		case TypeBool:
			return NewInt64(int64(boolBit(v.flag))), nil
		case TypeUint32:
			return NewInt64(int64(v.u32)), nil
		case TypeUint64:
			if v.u64 > math.MaxInt64 {
				return Value{}, castRange(v, to)
			}
			return NewInt64(int64(v.u64)), nil
		case TypeDate:
			return NewInt64(v.date.Unix()), nil
		}
	case TypeIPAddr:
		if v.typ == TypeIPPrefix && v.prefix.IsSingleIP() {
			return NewIPAddr(v.prefix.Addr()), nil
		}
	case TypeIPPrefix:
		if v.typ == TypeIPAddr {
			return NewIPPrefix(netip.PrefixFrom(v.addr, v.addr.BitLen())), nil
		}
	case TypeDate:
		switch v.typ {
		case TypeUint32:
			return NewDate(time.Unix(int64(v.u32), 0)), nil
		case TypeUint64:
			if v.u64 > math.MaxInt64 {
				return Value{}, castRange(v, to)
			}
			return NewDate(time.Unix(int64(v.u64), 0)), nil
		case TypeInt64:
			return NewDate(time.Unix(v.i64, 0)), nil
		}
	}
	return Value{}, trace.BadParameter("cannot cast %v to %v", v.typ, to)
}

func castRange(v Value, to Type) error {
	return trace.BadParameter("%v value %v out of range for %v", v.typ, v.String(), to)
}

func boolBit(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
