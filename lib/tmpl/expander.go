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

package tmpl

import (
	"context"

	"github.com/wardenhq/warden/lib/request"
)

// Expander produces the evaluation-time value of Xlat, Exec and RegexXlat
// templates. Calls are synchronous; the evaluator blocks until the result
// is ready.
type Expander interface {
	// Expand substitutes every %{...} reference in raw.
	Expand(ctx context.Context, req *request.Request, raw string) (string, error)

	// ExpandPattern is Expand with every substituted fragment escaped, so
	// the result is still a valid regular expression pattern and data
	// cannot inject pattern syntax.
	ExpandPattern(ctx context.Context, req *request.Request, raw string) (string, error)

	// Exec expands the command line, runs it, and returns its trimmed
	// output.
	Exec(ctx context.Context, req *request.Request, cmdline string) (string, error)
}
