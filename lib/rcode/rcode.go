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

// Package rcode defines the result codes produced by request processing
// stages. Conditions can test the code returned by the previous stage, so
// the evaluation engine carries it alongside the request.
package rcode

import (
	"github.com/gravitational/trace"
)

// Code is the outcome of a processing stage.
type Code int

const (
	// Unknown means no stage has run yet.
	Unknown Code = iota
	// Reject means the request was actively refused.
	Reject
	// Fail means the stage hit an internal failure.
	Fail
	// OK means the stage succeeded.
	OK
	// Handled means the stage produced the final reply and processing
	// should not continue.
	Handled
	// Invalid means the request was malformed.
	Invalid
	// Disallow means the user is denied by policy.
	Disallow
	// Notfound means the stage could not locate the requested entity.
	Notfound
	// Noop means the stage ran but did nothing.
	Noop
	// Updated means the stage modified the request.
	Updated
)

var codeNames = map[Code]string{
	Reject:   "reject",
	Fail:     "fail",
	OK:       "ok",
	Handled:  "handled",
	Invalid:  "invalid",
	Disallow: "disallow",
	Notfound: "notfound",
	Noop:     "noop",
	Updated:  "updated",
}

var codesByName = func() map[string]Code {
	out := make(map[string]Code, len(codeNames))
	for code, name := range codeNames {
		out[name] = code
	}
	return out
}()

// String returns the canonical lowercase name of the code.
func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "unknown"
}

// FromString resolves a canonical code name.
func FromString(name string) (Code, error) {
	if code, ok := codesByName[name]; ok {
		return code, nil
	}
	return Unknown, trace.BadParameter("unknown result code %q", name)
}
