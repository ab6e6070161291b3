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
	"log/slog"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/fsnotify/fsnotify"
	"github.com/gravitational/trace"
	"github.com/olekukonko/tablewriter"

	"github.com/wardenhq/warden"
	"github.com/wardenhq/warden/lib/eval"
	"github.com/wardenhq/warden/lib/request"
	"github.com/wardenhq/warden/lib/xlat"
)

// evalCommand loads a policy fixture and a request fixture and reports
// whether the condition matches the request.
type evalCommand struct {
	policyPath  string
	requestPath string
	showTrace   bool
	watch       bool

	out io.Writer
	cmd *kingpin.CmdClause
}

func (c *evalCommand) Initialize(app *kingpin.Application) {
	c.cmd = app.Command("eval", "Evaluate a request fixture against a policy fixture.")
	c.cmd.Flag("policy", "Path to the policy fixture.").Required().StringVar(&c.policyPath)
	c.cmd.Flag("request", "Path to the request fixture.").Required().StringVar(&c.requestPath)
	c.cmd.Flag("trace", "Print every evaluation step.").BoolVar(&c.showTrace)
	c.cmd.Flag("watch", "Stay running and re-evaluate whenever a fixture changes.").BoolVar(&c.watch)
}

func (c *evalCommand) TryRun(ctx context.Context, cmd string) (bool, error) {
	if cmd != c.cmd.FullCommand() {
		return false, nil
	}
	if c.out == nil {
		c.out = os.Stdout
	}
	if !c.watch {
		return true, trace.Wrap(c.evalOnce(ctx))
	}
	return true, trace.Wrap(c.watchLoop(ctx))
}

func (c *evalCommand) evalOnce(ctx context.Context) error {
	p, err := loadPolicy(c.policyPath)
	if err != nil {
		return trace.Wrap(err)
	}
	req, prior, runner, err := loadRequest(c.requestPath, p)
	if err != nil {
		return trace.Wrap(err)
	}

	engine, err := xlat.New(xlat.Config{Dict: p.dict, Runner: runner})
	if err != nil {
		return trace.Wrap(err)
	}
	cfg := eval.Config{Expander: engine, Comparators: p.comparators}
	if c.showTrace {
		cfg.Tracer = printTracer{w: c.out}
	}
	ev, err := eval.New(cfg)
	if err != nil {
		return trace.Wrap(err)
	}

	printPairs(c.out, req)
	fmt.Fprintf(c.out, "prior: %v\n", prior)
	fmt.Fprintf(c.out, "condition: %v\n", p.seq)

	matched, err := ev.Evaluate(ctx, req, prior, p.seq)
	if err != nil {
		return trace.Wrap(err)
	}
	if matched {
		fmt.Fprintln(c.out, "result: match")
	} else {
		fmt.Fprintln(c.out, "result: no match")
	}
	return nil
}

func (c *evalCommand) watchLoop(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return trace.Wrap(err)
	}
	defer watcher.Close()
	for _, path := range []string{c.policyPath, c.requestPath} {
		if err := watcher.Add(path); err != nil {
			return trace.ConvertSystemError(err)
		}
	}

	evaluate := func() {
		if err := c.evalOnce(ctx); err != nil {
			slog.ErrorContext(ctx, "Evaluation failed", "error", err)
		}
	}
	evaluate()

	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if evt.Has(fsnotify.Write) || evt.Has(fsnotify.Create) {
				// Editors replace files on save, re-add the path so the
				// watch survives the inode swap.
				_ = watcher.Add(evt.Name)
				fmt.Fprintf(c.out, "\n%v changed\n", evt.Name)
				evaluate()
			}
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.WarnContext(ctx, "Fixture watcher reported an error", "error", werr)
		}
	}
}

// printPairs renders the request attributes as a table, one row per
// pair in list order.
func printPairs(w io.Writer, req *request.Request) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"List", "Attribute", "Value"})
	for _, listName := range []string{warden.ListPacket, warden.ListReply, warden.ListControl, warden.ListState} {
		list, err := req.List(listName)
		if err != nil {
			continue
		}
		for _, p := range *list {
			table.Append([]string{listName, p.Attr.Name, p.Value.String()})
		}
	}
	table.Render()
}

// printTracer streams evaluation events to the terminal as they happen.
type printTracer struct {
	w io.Writer
}

func (p printTracer) Enabled() bool { return true }

func (p printTracer) Emit(evt eval.Event) {
	fmt.Fprintln(p.w, evt.String())
}
