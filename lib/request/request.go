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

// Package request models the in-flight request conditions evaluate
// against: its named attribute lists and the capture groups published by
// the most recent regular expression match.
package request

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/gravitational/trace"

	"github.com/wardenhq/warden"
	"github.com/wardenhq/warden/lib/pair"
)

// Request is one request being processed. Lists are fixed at construction;
// their contents belong to whoever loads the request.
type Request struct {
	// ID identifies the request in logs and traces.
	ID uuid.UUID

	// Packet holds the attributes received from the client.
	Packet pair.List
	// Reply holds the attributes accumulated for the reply.
	Reply pair.List
	// Control holds server-internal check attributes.
	Control pair.List
	// State holds attributes carried across a multi-round exchange.
	State pair.List

	log      *slog.Logger
	captures []string
}

// New returns an empty request with a fresh ID.
func New() *Request {
	id := uuid.New()
	return &Request{
		ID:  id,
		log: slog.With(warden.ComponentKey, warden.ComponentEval, "request_id", id),
	}
}

// Logger returns the request scoped logger.
func (r *Request) Logger() *slog.Logger {
	if r.log == nil {
		return slog.Default()
	}
	return r.log
}

// SetLogger replaces the request scoped logger.
func (r *Request) SetLogger(log *slog.Logger) {
	r.log = log
}

// List resolves a list reference by name. An unknown name is a NotFound
// error so callers can tell a bad reference from a known, empty list.
func (r *Request) List(name string) (*pair.List, error) {
	switch name {
	case warden.ListPacket:
		return &r.Packet, nil
	case warden.ListReply:
		return &r.Reply, nil
	case warden.ListControl:
		return &r.Control, nil
	case warden.ListState:
		return &r.State, nil
	}
	return nil, trace.NotFound("request has no list %q", name)
}

// PublishCaptures replaces the capture groups visible to %{0}..%{n}
// expansions. Slot 0 is the whole match. The slice is copied.
func (r *Request) PublishCaptures(groups []string) {
	r.captures = make([]string, len(groups))
	copy(r.captures, groups)
}

// ClearCaptures removes all published capture groups.
func (r *Request) ClearCaptures() {
	r.captures = nil
}

// Capture returns the value of one capture group, and whether a group
// with that index is currently published.
func (r *Request) Capture(i int) (string, bool) {
	if i < 0 || i >= len(r.captures) {
		return "", false
	}
	return r.captures[i], true
}
