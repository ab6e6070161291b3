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
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/gravitational/trace"

	"github.com/wardenhq/warden/lib/eval"
)

// dumpCommand prints the condition tree of a policy fixture, first on
// one line and then expanded node by node.
type dumpCommand struct {
	policyPath string

	out io.Writer
	cmd *kingpin.CmdClause
}

func (c *dumpCommand) Initialize(app *kingpin.Application) {
	c.cmd = app.Command("dump", "Print the condition tree of a policy fixture.")
	c.cmd.Flag("policy", "Path to the policy fixture.").Required().StringVar(&c.policyPath)
}

func (c *dumpCommand) TryRun(ctx context.Context, cmd string) (bool, error) {
	if cmd != c.cmd.FullCommand() {
		return false, nil
	}
	if c.out == nil {
		c.out = os.Stdout
	}
	p, err := loadPolicy(c.policyPath)
	if err != nil {
		return true, trace.Wrap(err)
	}
	fmt.Fprintf(c.out, "%v\n\n", p.seq)
	eval.Dump(c.out, p.seq)
	return true, nil
}
