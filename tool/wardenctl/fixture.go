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

package main

import (
	"context"
	"os"
	"strings"

	"github.com/gravitational/trace"
	"gopkg.in/yaml.v3"

	"github.com/wardenhq/warden"
	"github.com/wardenhq/warden/lib/dict"
	"github.com/wardenhq/warden/lib/eval"
	"github.com/wardenhq/warden/lib/pair"
	"github.com/wardenhq/warden/lib/paircmp"
	"github.com/wardenhq/warden/lib/rcode"
	"github.com/wardenhq/warden/lib/request"
	"github.com/wardenhq/warden/lib/tmpl"
	"github.com/wardenhq/warden/lib/value"
	"github.com/wardenhq/warden/lib/xlat"
)

// A policy fixture declares the dictionary, optional virtual attributes
// and the condition tree. The tree is spelled structurally, one mapping
// per condition, because wardenctl is a diagnostics tool and does not
// parse the policy expression language.
type policyFile struct {
	Dictionary []attrDef    `yaml:"dictionary"`
	Virtual    []virtualDef `yaml:"virtual,omitempty"`
	Conditions []condNode   `yaml:"conditions"`
}

type attrDef struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// virtualDef registers a fixture comparator for a dictionary attribute:
// an equality check against the accept set. Real comparators live in
// server modules, this stands in for them during debugging.
type virtualDef struct {
	Name   string   `yaml:"name"`
	Accept []string `yaml:"accept,omitempty"`
}

type condNode struct {
	Kind     string       `yaml:"kind"`
	Negate   bool         `yaml:"negate,omitempty"`
	Fixup    string       `yaml:"fixup,omitempty"`
	Value    *bool        `yaml:"value,omitempty"`
	Tmpl     *operandNode `yaml:"tmpl,omitempty"`
	LHS      *operandNode `yaml:"lhs,omitempty"`
	Op       string       `yaml:"op,omitempty"`
	RHS      *operandNode `yaml:"rhs,omitempty"`
	Code     string       `yaml:"code,omitempty"`
	Children []condNode   `yaml:"children,omitempty"`
}

// operandNode spells one operand template. Exactly one of the variant
// keys must be set.
type operandNode struct {
	Attr      string  `yaml:"attr,omitempty"`
	List      string  `yaml:"list,omitempty"`
	Literal   *string `yaml:"literal,omitempty"`
	Type      string  `yaml:"type,omitempty"`
	Cast      string  `yaml:"cast,omitempty"`
	Xlat      string  `yaml:"xlat,omitempty"`
	Exec      string  `yaml:"exec,omitempty"`
	Regex     string  `yaml:"regex,omitempty"`
	RegexXlat string  `yaml:"regex_xlat,omitempty"`
	Flags     string  `yaml:"flags,omitempty"`
}

type requestFile struct {
	Prior    string            `yaml:"prior,omitempty"`
	Pairs    []pairDef         `yaml:"pairs"`
	Commands map[string]string `yaml:"commands,omitempty"`
}

type pairDef struct {
	List  string `yaml:"list,omitempty"`
	Attr  string `yaml:"attr"`
	Value string `yaml:"value"`
}

// policy is a loaded policy fixture.
type policy struct {
	dict        *dict.Dict
	comparators *paircmp.Registry
	seq         eval.Seq
}

func loadPolicy(path string) (*policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, trace.ConvertSystemError(err)
	}
	var pf policyFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, trace.Wrap(err, "failed parsing policy fixture %v", path)
	}

	p := &policy{
		dict:        dict.New(),
		comparators: paircmp.NewRegistry(),
	}
	for _, def := range pf.Dictionary {
		typ, err := value.TypeFromString(def.Type)
		if err != nil {
			return nil, trace.Wrap(err, "attribute %q", def.Name)
		}
		if _, err := p.dict.Register(def.Name, typ); err != nil {
			return nil, trace.Wrap(err)
		}
	}
	for _, def := range pf.Virtual {
		attr, err := p.dict.Lookup(def.Name)
		if err != nil {
			return nil, trace.Wrap(err, "virtual attribute %q must be declared in the dictionary", def.Name)
		}
		accept := make(map[string]bool, len(def.Accept))
		for _, v := range def.Accept {
			accept[v] = true
		}
		fn := func(ctx context.Context, req *request.Request, check *pair.Pair) int {
			if check.Op == value.OpEqual && accept[check.Value.String()] {
				return 0
			}
			return 1
		}
		if err := p.comparators.Register(attr, fn); err != nil {
			return nil, trace.Wrap(err)
		}
	}

	seq, err := buildSeq(p.dict, pf.Conditions)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	p.seq = seq
	return p, nil
}

func buildSeq(d *dict.Dict, nodes []condNode) (eval.Seq, error) {
	seq := make(eval.Seq, 0, len(nodes))
	for i, n := range nodes {
		c, err := buildCond(d, n)
		if err != nil {
			return nil, trace.Wrap(err, "condition %d", i)
		}
		seq = append(seq, c)
	}
	return seq, nil
}

func buildCond(d *dict.Dict, n condNode) (*eval.Cond, error) {
	c := &eval.Cond{Negate: n.Negate}
	if n.Fixup != "" {
		f, err := eval.FixupFromString(n.Fixup)
		if err != nil {
			return nil, trace.Wrap(err)
		}
		c.Fixup = f
	}

	switch n.Kind {
	case "constant":
		if n.Value == nil {
			return nil, trace.BadParameter("constant needs a value")
		}
		c.Node = eval.Constant(*n.Value)

	case "test":
		if n.Tmpl == nil {
			return nil, trace.BadParameter("test needs a tmpl")
		}
		op, err := buildOperand(d, n.Tmpl)
		if err != nil {
			return nil, trace.Wrap(err)
		}
		c.Node = &eval.TmplTest{Tmpl: op}

	case "comparison":
		if n.LHS == nil || n.RHS == nil {
			return nil, trace.BadParameter("comparison needs lhs and rhs")
		}
		op, err := value.OpFromString(n.Op)
		if err != nil {
			return nil, trace.Wrap(err)
		}
		lhs, err := buildOperand(d, n.LHS)
		if err != nil {
			return nil, trace.Wrap(err, "left operand")
		}
		rhs, err := buildOperand(d, n.RHS)
		if err != nil {
			return nil, trace.Wrap(err, "right operand")
		}
		c.Node = &eval.Comparison{LHS: lhs, Op: op, RHS: rhs}

	case "rcode":
		code, err := rcode.FromString(n.Code)
		if err != nil {
			return nil, trace.Wrap(err)
		}
		c.Node = &eval.RcodeTest{Code: code}

	case "combinator":
		switch n.Op {
		case "&&":
			c.Node = eval.LogicalAnd
		case "||":
			c.Node = eval.LogicalOr
		default:
			return nil, trace.BadParameter("unknown combinator %q", n.Op)
		}

	case "group":
		child, err := buildSeq(d, n.Children)
		if err != nil {
			return nil, trace.Wrap(err)
		}
		c.Node = &eval.Group{Seq: child}

	default:
		return nil, trace.BadParameter("unknown condition kind %q", n.Kind)
	}
	return c, nil
}

func buildOperand(d *dict.Dict, n *operandNode) (tmpl.Tmpl, error) {
	cast := value.TypeInvalid
	if n.Cast != "" {
		t, err := value.TypeFromString(n.Cast)
		if err != nil {
			return nil, trace.Wrap(err)
		}
		cast = t
	}
	flags, err := parseFlags(n.Flags)
	if err != nil {
		return nil, trace.Wrap(err)
	}

	switch {
	case n.Attr != "":
		list, name := warden.ListPacket, n.Attr
		if i := strings.Index(n.Attr, "."); i >= 0 {
			list, name = n.Attr[:i], n.Attr[i+1:]
		}
		attr, err := d.Lookup(name)
		if err != nil {
			return nil, trace.Wrap(err)
		}
		return &tmpl.Attr{List: list, Attr: attr, Cast: cast}, nil

	case n.List != "":
		return &tmpl.ListRef{List: n.List}, nil

	case n.Literal != nil:
		typ := value.TypeString
		if n.Type != "" {
			typ, err = value.TypeFromString(n.Type)
			if err != nil {
				return nil, trace.Wrap(err)
			}
		}
		v, err := value.Parse(typ, *n.Literal)
		if err != nil {
			return nil, trace.Wrap(err)
		}
		// An explicit cast converts the literal right here, the tree
		// then carries the converted value.
		if cast != value.TypeInvalid {
			v, err = value.Cast(v, cast)
			if err != nil {
				return nil, trace.Wrap(err)
			}
		}
		return &tmpl.Literal{Value: v}, nil

	case n.Xlat != "":
		return &tmpl.Xlat{Raw: n.Xlat, Cast: cast}, nil

	case n.Exec != "":
		return &tmpl.Exec{Cmdline: n.Exec, Cast: cast}, nil

	case n.Regex != "":
		re, err := tmpl.CompileRegex(n.Regex, flags)
		if err != nil {
			return nil, trace.Wrap(err)
		}
		return &tmpl.Regex{Pattern: re, Flags: flags}, nil

	case n.RegexXlat != "":
		return &tmpl.RegexXlat{Raw: n.RegexXlat, Flags: flags}, nil
	}
	return nil, trace.BadParameter("operand needs one of attr, list, literal, xlat, exec, regex or regex_xlat")
}

func parseFlags(s string) (tmpl.Flags, error) {
	var flags tmpl.Flags
	for _, r := range s {
		switch r {
		case 'i':
			flags.IgnoreCase = true
		case 'm':
			flags.Multiline = true
		default:
			return flags, trace.BadParameter("unknown regex flag %q", string(r))
		}
	}
	return flags, nil
}

func loadRequest(path string, p *policy) (*request.Request, rcode.Code, xlat.RunFunc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, rcode.Unknown, nil, trace.ConvertSystemError(err)
	}
	var rf requestFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, rcode.Unknown, nil, trace.Wrap(err, "failed parsing request fixture %v", path)
	}

	req := request.New()
	for i, pd := range rf.Pairs {
		attr, err := p.dict.Lookup(pd.Attr)
		if err != nil {
			return nil, rcode.Unknown, nil, trace.Wrap(err, "pair %d", i)
		}
		v, err := value.Parse(attr.Type, pd.Value)
		if err != nil {
			return nil, rcode.Unknown, nil, trace.Wrap(err, "pair %d", i)
		}
		listName := pd.List
		if listName == "" {
			listName = warden.ListPacket
		}
		list, err := req.List(listName)
		if err != nil {
			return nil, rcode.Unknown, nil, trace.Wrap(err, "pair %d", i)
		}
		list.Append(pair.New(attr, v))
	}

	prior := rcode.Unknown
	if rf.Prior != "" {
		prior, err = rcode.FromString(rf.Prior)
		if err != nil {
			return nil, rcode.Unknown, nil, trace.Wrap(err)
		}
	}

	var runner xlat.RunFunc
	if len(rf.Commands) > 0 {
		cmds := rf.Commands
		runner = func(ctx context.Context, req *request.Request, cmdline string) (string, error) {
			if out, ok := cmds[cmdline]; ok {
				return out, nil
			}
			return "", trace.NotFound("no fixture output for command %q", cmdline)
		}
	}
	return req, prior, runner, nil
}
