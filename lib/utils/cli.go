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

// Package utils holds small helpers shared by the library and the tools.
package utils

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/gravitational/trace"

	"github.com/wardenhq/warden"
)

// FatalError prints the error to stderr and exits with a non-zero code.
func FatalError(err error) {
	fmt.Fprintln(os.Stderr, "ERROR:", trace.UserMessage(err))
	os.Exit(1)
}

// InitLogger points the default slog logger at stderr with the given
// level, using the text handler tools expect on a terminal.
func InitLogger(level slog.Level) {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}

// PrintVersion prints the human readable version line.
func PrintVersion() {
	if warden.Gitref != "" {
		fmt.Printf("Warden v%v git:%v %v\n", warden.Version, warden.Gitref, runtime.Version())
	} else {
		fmt.Printf("Warden v%v %v\n", warden.Version, runtime.Version())
	}
}
