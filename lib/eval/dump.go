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
	"fmt"
	"io"
	"strings"
)

// String renders the sequence on one line, the way the policy language
// spells it.
func (s Seq) String() string {
	parts := make([]string, 0, len(s))
	for _, c := range s {
		parts = append(parts, summary(c))
	}
	return strings.Join(parts, " ")
}

// summary renders one condition on one line.
func summary(c *Cond) string {
	var sb strings.Builder
	if c.Negate {
		sb.WriteByte('!')
	}
	switch n := c.Node.(type) {
	case Constant:
		if n {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case *TmplTest:
		sb.WriteString(n.Tmpl.String())
	case *Comparison:
		sb.WriteString(n.String())
	case *RcodeTest:
		sb.WriteString(n.Code.String())
	case *Group:
		sb.WriteByte('(')
		sb.WriteString(n.Seq.String())
		sb.WriteByte(')')
	case Logical:
		sb.WriteString(n.String())
	default:
		fmt.Fprintf(&sb, "<%T>", c.Node)
	}
	return sb.String()
}

// Dump writes a multi-line description of the sequence, one block per
// condition, recursing into groups. It shows the tree the evaluator
// walks rather than how the policy was spelled, which makes it the tool
// for chasing down a condition that does not decide the way it reads.
func Dump(w io.Writer, seq Seq) {
	dumpSeq(w, seq, 0)
}

func dumpSeq(w io.Writer, seq Seq, depth int) {
	pad := strings.Repeat("\t", depth)
	for _, c := range seq {
		switch n := c.Node.(type) {
		case Constant:
			fmt.Fprintf(w, "%scond constant %s\n", pad, summary(c))
		case *TmplTest:
			fmt.Fprintf(w, "%scond test\n", pad)
			fmt.Fprintf(w, "%s\tnegate : %t\n", pad, c.Negate)
			fmt.Fprintf(w, "%s\ttmpl   : %s\n", pad, n.Tmpl)
		case *Comparison:
			fmt.Fprintf(w, "%scond comparison\n", pad)
			fmt.Fprintf(w, "%s\tnegate : %t\n", pad, c.Negate)
			fmt.Fprintf(w, "%s\tfixup  : %s\n", pad, c.Fixup)
			fmt.Fprintf(w, "%s\tlhs    : %s\n", pad, n.LHS)
			fmt.Fprintf(w, "%s\top     : %s\n", pad, n.Op)
			fmt.Fprintf(w, "%s\trhs    : %s\n", pad, n.RHS)
		case *RcodeTest:
			fmt.Fprintf(w, "%scond rcode\n", pad)
			fmt.Fprintf(w, "%s\tnegate : %t\n", pad, c.Negate)
			fmt.Fprintf(w, "%s\tcode   : %s\n", pad, n.Code)
		case *Group:
			fmt.Fprintf(w, "%scond group\n", pad)
			fmt.Fprintf(w, "%s\tnegate : %t\n", pad, c.Negate)
			fmt.Fprintf(w, "%s\tchild (\n", pad)
			dumpSeq(w, n.Seq, depth+1)
			fmt.Fprintf(w, "%s\t)\n", pad)
		case Logical:
			fmt.Fprintf(w, "%scond combinator %s\n", pad, n)
		default:
			fmt.Fprintf(w, "%scond unknown %T\n", pad, c.Node)
		}
	}
}
