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

// Package value implements the typed data boxes attributes and condition
// operands are made of. A box pairs a wire type with one datum and never
// changes after construction; casting produces a new box.
package value

import (
	"encoding/hex"
	"fmt"
	"net/netip"
	"strconv"
	"strings"
	"time"

	"github.com/gravitational/trace"
)

// Type is the wire type of a boxed datum.
type Type int

const (
	// TypeInvalid marks a box with no value. It doubles as the "no cast
	// requested" marker on templates.
	TypeInvalid Type = iota
	// TypeString is printable text.
	TypeString
	// TypeOctets is a raw byte string.
	TypeOctets
	// TypeBool is a yes/no flag.
	TypeBool
	// TypeUint32 is an unsigned 32-bit integer.
	TypeUint32
	// TypeUint64 is an unsigned 64-bit integer.
	TypeUint64
	// TypeInt64 is a signed 64-bit integer.
	TypeInt64
	// TypeIPAddr is a single IPv4 or IPv6 address.
	TypeIPAddr
	// TypeIPPrefix is an IPv4 or IPv6 network in CIDR form.
	TypeIPPrefix
	// TypeDate is a point in time with second precision.
	TypeDate
)

var typeNames = map[Type]string{
	TypeInvalid:  "invalid",
	TypeString:   "string",
	TypeOctets:   "octets",
	TypeBool:     "bool",
	TypeUint32:   "uint32",
	TypeUint64:   "uint64",
	TypeInt64:    "int64",
	TypeIPAddr:   "ipaddr",
	TypeIPPrefix: "ipprefix",
	TypeDate:     "date",
}

var typesByName = func() map[string]Type {
	out := make(map[string]Type, len(typeNames))
	for typ, name := range typeNames {
		out[name] = typ
	}
	return out
}()

// String returns the canonical type name.
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("type(%d)", int(t))
}

// TypeFromString resolves a canonical type name.
func TypeFromString(name string) (Type, error) {
	if typ, ok := typesByName[name]; ok && typ != TypeInvalid {
		return typ, nil
	}
	return TypeInvalid, trace.BadParameter("unknown value type %q", name)
}

// Value is one immutable typed datum. The zero Value has TypeInvalid and
// represents "no value".
type Value struct {
	typ    Type
	str    string
	oct    []byte
	flag   bool
	u32    uint32
	u64    uint64
	i64    int64
	addr   netip.Addr
	prefix netip.Prefix
	date   time.Time
}

// NewString boxes printable text.
func NewString(s string) Value { return Value{typ: TypeString, str: s} }

// NewOctets boxes a byte string. The slice is copied.
func NewOctets(b []byte) Value {
	out := make([]byte, len(b))
	copy(out, b)
	return Value{typ: TypeOctets, oct: out}
}

// NewBool boxes a flag.
func NewBool(v bool) Value { return Value{typ: TypeBool, flag: v} }

// NewUint32 boxes an unsigned 32-bit integer.
func NewUint32(v uint32) Value { return Value{typ: TypeUint32, u32: v} }

// NewUint64 boxes an unsigned 64-bit integer.
func NewUint64(v uint64) Value { return Value{typ: TypeUint64, u64: v} }

// NewInt64 boxes a signed 64-bit integer.
func NewInt64(v int64) Value { return Value{typ: TypeInt64, i64: v} }

// NewIPAddr boxes a single address.
func NewIPAddr(a netip.Addr) Value { return Value{typ: TypeIPAddr, addr: a} }

// NewIPPrefix boxes a network. The prefix is stored masked.
func NewIPPrefix(p netip.Prefix) Value { return Value{typ: TypeIPPrefix, prefix: p.Masked()} }

// NewDate boxes a point in time, truncated to second precision.
func NewDate(t time.Time) Value { return Value{typ: TypeDate, date: t.Truncate(time.Second)} }

// Type returns the wire type of the box.
func (v Value) Type() Type { return v.typ }

// IsZero reports whether the box holds no value.
func (v Value) IsZero() bool { return v.typ == TypeInvalid }

// Str returns the text datum. Valid only for TypeString.
func (v Value) Str() string { return v.str }

// Bytes returns the raw datum. Valid only for TypeOctets.
func (v Value) Bytes() []byte { return v.oct }

// Bool returns the flag datum. Valid only for TypeBool.
func (v Value) Bool() bool { return v.flag }

// Uint32 returns the datum. Valid only for TypeUint32.
func (v Value) Uint32() uint32 { return v.u32 }

// Uint64 returns the datum. Valid only for TypeUint64.
func (v Value) Uint64() uint64 { return v.u64 }

// Int64 returns the datum. Valid only for TypeInt64.
func (v Value) Int64() int64 { return v.i64 }

// Addr returns the datum. Valid only for TypeIPAddr.
func (v Value) Addr() netip.Addr { return v.addr }

// Prefix returns the datum. Valid only for TypeIPPrefix.
func (v Value) Prefix() netip.Prefix { return v.prefix }

// Date returns the datum. Valid only for TypeDate.
func (v Value) Date() time.Time { return v.date }

// String renders the datum in the form Parse accepts back.
func (v Value) String() string {
	switch v.typ {
	case TypeString:
		return v.str
	case TypeOctets:
		return "0x" + hex.EncodeToString(v.oct)
	case TypeBool:
		if v.flag {
			return "yes"
		}
		return "no"
	case TypeUint32:
		return strconv.FormatUint(uint64(v.u32), 10)
	case TypeUint64:
		return strconv.FormatUint(v.u64, 10)
	case TypeInt64:
		return strconv.FormatInt(v.i64, 10)
	case TypeIPAddr:
		return v.addr.String()
	case TypeIPPrefix:
		return v.prefix.String()
	case TypeDate:
		return v.date.UTC().Format(time.RFC3339)
	}
	return ""
}

// Parse builds a box of the given type from its text form.
func Parse(typ Type, s string) (Value, error) {
	switch typ {
	case TypeString:
		return NewString(s), nil
	case TypeOctets:
		if rest, ok := strings.CutPrefix(s, "0x"); ok {
			raw, err := hex.DecodeString(rest)
			if err != nil {
				return Value{}, trace.BadParameter("bad octet string %q: %v", s, err)
			}
			return NewOctets(raw), nil
		}
		return NewOctets([]byte(s)), nil
	case TypeBool:
		switch strings.ToLower(s) {
		case "yes", "true", "on", "1":
			return NewBool(true), nil
		case "no", "false", "off", "0":
			return NewBool(false), nil
		}
		return Value{}, trace.BadParameter("bad boolean %q", s)
	case TypeUint32:
		n, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return Value{}, trace.BadParameter("bad uint32 %q", s)
		}
		return NewUint32(uint32(n)), nil
	case TypeUint64:
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return Value{}, trace.BadParameter("bad uint64 %q", s)
		}
		return NewUint64(n), nil
	case TypeInt64:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return Value{}, trace.BadParameter("bad int64 %q", s)
		}
		return NewInt64(n), nil
	case TypeIPAddr:
		a, err := netip.ParseAddr(s)
		if err != nil {
			return Value{}, trace.BadParameter("bad IP address %q", s)
		}
		return NewIPAddr(a), nil
	case TypeIPPrefix:
		if p, err := netip.ParsePrefix(s); err == nil {
			return NewIPPrefix(p), nil
		}
		// A bare address parses as a host route.
		a, err := netip.ParseAddr(s)
		if err != nil {
			return Value{}, trace.BadParameter("bad IP prefix %q", s)
		}
		return NewIPPrefix(netip.PrefixFrom(a, a.BitLen())), nil
	case TypeDate:
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return NewDate(t), nil
		}
		if epoch, err := strconv.ParseInt(s, 10, 64); err == nil {
			return NewDate(time.Unix(epoch, 0)), nil
		}
		return Value{}, trace.BadParameter("bad date %q", s)
	}
	return Value{}, trace.BadParameter("cannot parse into %v", typ)
}
