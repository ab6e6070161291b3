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

// Package paircmp dispatches comparisons against virtual attributes.
// A virtual attribute has no stored values; a module registers a function
// that decides the comparison from the whole request, e.g. a group
// membership check against a directory. Conditions naming one are marked
// when the policy is loaded and bypass the generic comparator entirely.
package paircmp

import (
	"context"
	"sync"

	"github.com/gravitational/trace"

	"github.com/wardenhq/warden/lib/dict"
	"github.com/wardenhq/warden/lib/pair"
	"github.com/wardenhq/warden/lib/request"
)

// CompareFunc decides a comparison against a virtual attribute. The check
// pair carries the operator and value written in the condition. A zero
// return accepts the comparison, any other value rejects it, in the
// manner of strcmp.
type CompareFunc func(ctx context.Context, req *request.Request, check *pair.Pair) int

// Registry maps virtual attributes to their registered comparators.
// Registration happens at startup, lookups happen on every evaluation.
type Registry struct {
	mu     sync.RWMutex
	byAttr map[*dict.Attribute]CompareFunc
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byAttr: make(map[*dict.Attribute]CompareFunc)}
}

// Register installs a comparator for an attribute. An attribute can have
// only one comparator.
func (r *Registry) Register(attr *dict.Attribute, fn CompareFunc) error {
	if attr == nil {
		return trace.BadParameter("missing attribute")
	}
	if fn == nil {
		return trace.BadParameter("missing comparator for %q", attr.Name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byAttr[attr]; ok {
		return trace.AlreadyExists("attribute %q already has a comparator", attr.Name)
	}
	r.byAttr[attr] = fn
	return nil
}

// Registered reports whether the attribute has a comparator. Policy
// loading uses this to mark conditions that must dispatch here.
func (r *Registry) Registered(attr *dict.Attribute) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byAttr[attr]
	return ok
}

// Compare dispatches a check pair to the comparator registered for its
// attribute and returns the comparator's verdict.
func (r *Registry) Compare(ctx context.Context, req *request.Request, check *pair.Pair) (int, error) {
	r.mu.RLock()
	fn, ok := r.byAttr[check.Attr]
	r.mu.RUnlock()
	if !ok {
		return 0, trace.NotFound("attribute %q has no registered comparator", check.Attr.Name)
	}
	return fn(ctx, req, check), nil
}
