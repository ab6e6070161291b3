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
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		description string
		typ         Type
		input       string
		expect      Value
		wantErr     bool
	}{
		{
			description: "string passes through",
			typ:         TypeString,
			input:       "hello",
			expect:      NewString("hello"),
		},
		{
			description: "hex octets",
			typ:         TypeOctets,
			input:       "0xdeadbeef",
			expect:      NewOctets([]byte{0xde, 0xad, 0xbe, 0xef}),
		},
		{
			description: "raw octets",
			typ:         TypeOctets,
			input:       "abc",
			expect:      NewOctets([]byte("abc")),
		},
		{
			description: "bad hex octets",
			typ:         TypeOctets,
			input:       "0xzz",
			wantErr:     true,
		},
		{
			description: "boolean yes",
			typ:         TypeBool,
			input:       "yes",
			expect:      NewBool(true),
		},
		{
			description: "boolean off",
			typ:         TypeBool,
			input:       "off",
			expect:      NewBool(false),
		},
		{
			description: "uint32 in range",
			typ:         TypeUint32,
			input:       "4294967295",
			expect:      NewUint32(4294967295),
		},
		{
			description: "uint32 overflow",
			typ:         TypeUint32,
			input:       "4294967296",
			wantErr:     true,
		},
		{
			description: "negative uint64 rejected",
			typ:         TypeUint64,
			input:       "-3",
			wantErr:     true,
		},
		{
			description: "int64 negative",
			typ:         TypeInt64,
			input:       "-3",
			expect:      NewInt64(-3),
		},
		{
			description: "ipv4 address",
			typ:         TypeIPAddr,
			input:       "192.0.2.1",
			expect:      NewIPAddr(netip.MustParseAddr("192.0.2.1")),
		},
		{
			description: "cidr prefix",
			typ:         TypeIPPrefix,
			input:       "192.0.2.0/24",
			expect:      NewIPPrefix(netip.MustParsePrefix("192.0.2.0/24")),
		},
		{
			description: "bare address becomes host prefix",
			typ:         TypeIPPrefix,
			input:       "192.0.2.7",
			expect:      NewIPPrefix(netip.MustParsePrefix("192.0.2.7/32")),
		},
		{
			description: "rfc3339 date",
			typ:         TypeDate,
			input:       "2024-06-01T12:00:00Z",
			expect:      NewDate(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)),
		},
		{
			description: "epoch date",
			typ:         TypeDate,
			input:       "1717243200",
			expect:      NewDate(time.Unix(1717243200, 0)),
		},
	}
	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			got, err := Parse(tc.typ, tc.input)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.expect, got)
		})
	}
}

func TestStringRendering(t *testing.T) {
	require.Equal(t, "0xdeadbeef", NewOctets([]byte{0xde, 0xad, 0xbe, 0xef}).String())
	require.Equal(t, "yes", NewBool(true).String())
	require.Equal(t, "18446744073709551615", NewUint64(1<<64-1).String())
	require.Equal(t, "2001:db8::/32", NewIPPrefix(netip.MustParsePrefix("2001:db8::/32")).String())
	require.Equal(t, "", Value{}.String())
}

func TestPrefixStoredMasked(t *testing.T) {
	v := NewIPPrefix(netip.MustParsePrefix("192.0.2.99/24"))
	require.Equal(t, "192.0.2.0/24", v.String())
}

func TestOctetsCopied(t *testing.T) {
	raw := []byte{1, 2, 3}
	v := NewOctets(raw)
	raw[0] = 9
	require.Equal(t, []byte{1, 2, 3}, v.Bytes())
}
