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
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/wardenhq/warden/lib/rcode"
	"github.com/wardenhq/warden/lib/value"
)

func TestDump(t *testing.T) {
	e := newEnv(t)

	seq := Seq{
		negated(grouped(
			cnode(comparison(attrRef("request", e.userName), value.OpEqual, strLit("bob"))),
			and(),
			cnode(&TmplTest{Tmpl: attrRef("control", e.allowed)}),
		)),
		or(),
		cnode(&RcodeTest{Code: rcode.OK}),
		cnode(Constant(true)),
	}

	var sb strings.Builder
	Dump(&sb, seq)

	want := strings.Join([]string{
		"cond group",
		"\tnegate : true",
		"\tchild (",
		"\tcond comparison",
		"\t\tnegate : false",
		"\t\tfixup  : none",
		"\t\tlhs    : request.User-Name",
		"\t\top     : ==",
		"\t\trhs    : \"bob\"",
		"\tcond combinator &&",
		"\tcond test",
		"\t\tnegate : false",
		"\t\ttmpl   : control.Allowed-Group",
		"\t)",
		"cond combinator ||",
		"cond rcode",
		"\tnegate : false",
		"\tcode   : ok",
		"cond constant true",
		"",
	}, "\n")
	require.Empty(t, cmp.Diff(want, sb.String()))
}

func TestSeqString(t *testing.T) {
	e := newEnv(t)

	tests := []struct {
		description string
		seq         Seq
		want        string
	}{
		{
			description: "constants and combinators",
			seq:         Seq{cnode(Constant(true)), and(), negated(Constant(false))},
			want:        "true && !false",
		},
		{
			description: "comparison",
			seq:         Seq{cnode(comparison(attrRef("request", e.nasPort), value.OpLessThanEqual, u32Lit(1024)))},
			want:        "request.NAS-Port <= 1024",
		},
		{
			description: "negated group",
			seq: Seq{negated(grouped(
				cnode(&TmplTest{Tmpl: attrRef("request", e.userName)}),
				or(),
				cnode(&RcodeTest{Code: rcode.Reject}),
			))},
			want: "!(request.User-Name || reject)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			require.Equal(t, tt.want, tt.seq.String())
		})
	}
}
