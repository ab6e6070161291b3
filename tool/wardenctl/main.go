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

// Command wardenctl is the debugging companion of the Warden condition
// engine. It loads policy and request fixtures from YAML files and
// evaluates, traces and dumps conditions against them.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/gravitational/trace"

	"github.com/wardenhq/warden/lib/utils"
)

// cliCommand is implemented by every wardenctl subcommand. Initialize
// registers the command with the app, TryRun reports whether the parsed
// command line selected it and, if so, runs it.
type cliCommand interface {
	Initialize(app *kingpin.Application)
	TryRun(ctx context.Context, cmd string) (match bool, err error)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := run(ctx, os.Args[1:]); err != nil {
		utils.FatalError(err)
	}
}

func run(ctx context.Context, args []string) error {
	app := kingpin.New("wardenctl", "Warden condition evaluation debugger.")
	debug := app.Flag("debug", "Enable verbose logging.").Short('d').Bool()

	commands := []cliCommand{
		&evalCommand{},
		&dumpCommand{},
		&versionCommand{},
	}
	for _, c := range commands {
		c.Initialize(app)
	}

	selected, err := app.Parse(args)
	if err != nil {
		return trace.Wrap(err)
	}

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	utils.InitLogger(level)

	for _, c := range commands {
		match, err := c.TryRun(ctx, selected)
		if err != nil {
			return trace.Wrap(err)
		}
		if match {
			return nil
		}
	}
	return trace.NotFound("unknown command %q", selected)
}
