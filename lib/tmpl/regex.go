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
	"regexp"

	"github.com/gravitational/trace"

	"github.com/wardenhq/warden/lib/value"
)

// Flags are the modifiers written after a pattern, as in /pattern/i.
type Flags struct {
	// IgnoreCase makes matching case insensitive.
	IgnoreCase bool
	// Multiline lets ^ and $ match at line boundaries.
	Multiline bool
}

// String renders the modifiers as written after the closing slash.
func (f Flags) String() string {
	out := ""
	if f.IgnoreCase {
		out += "i"
	}
	if f.Multiline {
		out += "m"
	}
	return out
}

func (f Flags) prefix() string {
	switch {
	case f.IgnoreCase && f.Multiline:
		return "(?im)"
	case f.IgnoreCase:
		return "(?i)"
	case f.Multiline:
		return "(?m)"
	}
	return ""
}

// CompileRegex compiles a pattern with the modifiers applied.
func CompileRegex(pattern string, flags Flags) (*regexp.Regexp, error) {
	re, err := regexp.Compile(flags.prefix() + pattern)
	if err != nil {
		return nil, trace.BadParameter("bad regular expression /%s/%s: %v", pattern, flags, err)
	}
	return re, nil
}

// Regex is a pattern compiled when the policy was loaded. The compiled
// form is owned by the tree and shared by every evaluation.
type Regex struct {
	// Pattern is the compiled pattern, flags included.
	Pattern *regexp.Regexp
	// Flags are kept for rendering.
	Flags Flags
}

func (r *Regex) isTmpl() {}

// CastType implements Tmpl. Patterns always match against text.
func (r *Regex) CastType() value.Type { return value.TypeInvalid }

// String renders the pattern as written.
func (r *Regex) String() string {
	return "/" + r.Pattern.String() + "/" + r.Flags.String()
}

// RegexPattern is a pattern carried as text and compiled at evaluation
// time, for policies loaded without ahead-of-time compilation.
type RegexPattern struct {
	// Pattern is the uncompiled pattern text.
	Pattern string
	// Flags are applied when the pattern compiles.
	Flags Flags
}

func (r *RegexPattern) isTmpl() {}

// CastType implements Tmpl.
func (r *RegexPattern) CastType() value.Type { return value.TypeInvalid }

// String renders the pattern as written.
func (r *RegexPattern) String() string {
	return "/" + r.Pattern + "/" + r.Flags.String()
}

// RegexXlat is a pattern containing expansions. The expanded fragments
// are escaped so attribute values cannot inject pattern syntax, then the
// result compiles like a RegexPattern.
type RegexXlat struct {
	// Raw is the unexpanded pattern text.
	Raw string
	// Flags are applied when the pattern compiles.
	Flags Flags
}

func (r *RegexXlat) isTmpl() {}

// CastType implements Tmpl.
func (r *RegexXlat) CastType() value.Type { return value.TypeInvalid }

// String renders the unexpanded pattern.
func (r *RegexXlat) String() string {
	return "/" + r.Raw + "/" + r.Flags.String()
}
