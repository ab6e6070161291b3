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

// Package dict holds attribute definitions. The evaluation engine only
// needs an attribute's identity and declared wire type; loading full
// vendor dictionaries is the enclosing server's concern.
package dict

import (
	"strings"

	"github.com/gravitational/trace"

	"github.com/wardenhq/warden/lib/value"
)

// Attribute is one dictionary definition. Definitions are interned: two
// lookups of the same name return the same pointer, so identity comparison
// is enough to tell attributes apart.
type Attribute struct {
	// Name is the canonical attribute name, e.g. "User-Name".
	Name string
	// Type is the declared wire type of the attribute's values.
	Type value.Type
}

// Dict resolves attribute names, case insensitively as on the wire.
type Dict struct {
	attrs map[string]*Attribute
}

// New returns an empty dictionary.
func New() *Dict {
	return &Dict{attrs: make(map[string]*Attribute)}
}

// Register defines an attribute. Redefining a name is an error.
func (d *Dict) Register(name string, typ value.Type) (*Attribute, error) {
	if name == "" {
		return nil, trace.BadParameter("attribute name is empty")
	}
	if typ == value.TypeInvalid {
		return nil, trace.BadParameter("attribute %q has no type", name)
	}
	key := strings.ToLower(name)
	if _, ok := d.attrs[key]; ok {
		return nil, trace.AlreadyExists("attribute %q is already defined", name)
	}
	attr := &Attribute{Name: name, Type: typ}
	d.attrs[key] = attr
	return attr, nil
}

// MustRegister is Register for static tables and tests.
func (d *Dict) MustRegister(name string, typ value.Type) *Attribute {
	attr, err := d.Register(name, typ)
	if err != nil {
		panic(err)
	}
	return attr
}

// Lookup resolves an attribute name.
func (d *Dict) Lookup(name string) (*Attribute, error) {
	if attr, ok := d.attrs[strings.ToLower(name)]; ok {
		return attr, nil
	}
	return nil, trace.NotFound("attribute %q is not defined", name)
}
