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

	"github.com/alecthomas/kingpin/v2"

	"github.com/wardenhq/warden/lib/utils"
)

type versionCommand struct {
	cmd *kingpin.CmdClause
}

func (c *versionCommand) Initialize(app *kingpin.Application) {
	c.cmd = app.Command("version", "Print the version of this wardenctl binary.")
}

func (c *versionCommand) TryRun(ctx context.Context, cmd string) (bool, error) {
	if cmd != c.cmd.FullCommand() {
		return false, nil
	}
	utils.PrintVersion()
	return true, nil
}
