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

// Package xlat expands %{...} references in strings against a request.
// It resolves attribute references, list qualified references and the
// capture groups of the last regular expression match, in a single pass
// with no recursion into the substituted text.
package xlat

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/gravitational/trace"

	"github.com/wardenhq/warden"
	"github.com/wardenhq/warden/lib/dict"
	"github.com/wardenhq/warden/lib/request"
)

// RunFunc executes an expanded command line and returns its output.
type RunFunc func(ctx context.Context, req *request.Request, cmdline string) (string, error)

// Config holds the engine's collaborators.
type Config struct {
	// Dict resolves attribute names found in references.
	Dict *dict.Dict
	// Runner executes command lines for Exec templates. Without one,
	// execution is refused.
	Runner RunFunc
	// Logger is the engine's logger.
	Logger *slog.Logger
}

// CheckAndSetDefaults validates the config and fills in defaults.
func (c *Config) CheckAndSetDefaults() error {
	if c.Dict == nil {
		return trace.BadParameter("missing parameter Dict")
	}
	if c.Logger == nil {
		c.Logger = slog.With(warden.ComponentKey, warden.ComponentXlat)
	}
	return nil
}

// Engine expands strings. It is safe for concurrent use.
type Engine struct {
	cfg Config
}

// New returns an expansion engine.
func New(cfg Config) (*Engine, error) {
	if err := cfg.CheckAndSetDefaults(); err != nil {
		return nil, trace.Wrap(err)
	}
	return &Engine{cfg: cfg}, nil
}

// Expand substitutes every %{...} reference in raw.
func (e *Engine) Expand(ctx context.Context, req *request.Request, raw string) (string, error) {
	return e.expand(req, raw, nil)
}

// ExpandPattern substitutes every %{...} reference in raw, escaping the
// substituted fragments so they match literally inside a pattern. The
// literal text of raw keeps its pattern syntax.
func (e *Engine) ExpandPattern(ctx context.Context, req *request.Request, raw string) (string, error) {
	return e.expand(req, raw, regexp.QuoteMeta)
}

// Exec expands the command line and hands it to the configured runner.
// Trailing newlines are stripped from the output.
func (e *Engine) Exec(ctx context.Context, req *request.Request, cmdline string) (string, error) {
	if e.cfg.Runner == nil {
		return "", trace.NotImplemented("command execution is not enabled")
	}
	expanded, err := e.expand(req, cmdline, nil)
	if err != nil {
		return "", trace.Wrap(err)
	}
	out, err := e.cfg.Runner(ctx, req, expanded)
	if err != nil {
		return "", trace.Wrap(err, "command %q failed", expanded)
	}
	return strings.TrimRight(out, "\r\n"), nil
}

func (e *Engine) expand(req *request.Request, raw string, escape func(string) string) (string, error) {
	var out strings.Builder
	for i := 0; i < len(raw); {
		if raw[i] != '%' {
			out.WriteByte(raw[i])
			i++
			continue
		}
		if i+1 >= len(raw) {
			return "", trace.BadParameter("dangling %% at end of %q", raw)
		}
		switch raw[i+1] {
		case '%':
			out.WriteByte('%')
			i += 2
		case '{':
			end := strings.IndexByte(raw[i+2:], '}')
			if end < 0 {
				return "", trace.BadParameter("unterminated %%{ in %q", raw)
			}
			ref := raw[i+2 : i+2+end]
			val, err := e.resolve(req, ref)
			if err != nil {
				return "", trace.Wrap(err)
			}
			if escape != nil {
				val = escape(val)
			}
			out.WriteString(val)
			i += end + 3
		default:
			// A bare % before anything else passes through untouched.
			out.WriteByte('%')
			i++
		}
	}
	return out.String(), nil
}

// resolve produces the replacement for one reference. Absent attributes
// and unpublished capture groups expand to the empty string; names that
// cannot be resolved at all are errors.
func (e *Engine) resolve(req *request.Request, ref string) (string, error) {
	if ref == "" {
		return "", trace.BadParameter("empty %%{} reference")
	}
	if idx, err := strconv.Atoi(ref); err == nil {
		if idx < 0 {
			return "", trace.BadParameter("bad capture group %%{%s}", ref)
		}
		val, _ := req.Capture(idx)
		return val, nil
	}
	listName, attrName := warden.ListPacket, ref
	if dot := strings.IndexByte(ref, '.'); dot >= 0 {
		listName, attrName = ref[:dot], ref[dot+1:]
	}
	attr, err := e.cfg.Dict.Lookup(attrName)
	if err != nil {
		return "", trace.BadParameter("cannot expand %%{%s}: %v", ref, err)
	}
	list, err := req.List(listName)
	if err != nil {
		return "", trace.BadParameter("cannot expand %%{%s}: %v", ref, err)
	}
	p := list.Get(attr)
	if p == nil {
		return "", nil
	}
	return p.Value.String(), nil
}
