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

package dict

import (
	"testing"

	"github.com/gravitational/trace"
	"github.com/stretchr/testify/require"

	"github.com/wardenhq/warden/lib/value"
)

func TestLookupIsCaseInsensitive(t *testing.T) {
	d := New()
	registered, err := d.Register("User-Name", value.TypeString)
	require.NoError(t, err)

	found, err := d.Lookup("user-name")
	require.NoError(t, err)
	require.Same(t, registered, found)

	found, err = d.Lookup("USER-NAME")
	require.NoError(t, err)
	require.Same(t, registered, found)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	d := New()
	_, err := d.Register("User-Name", value.TypeString)
	require.NoError(t, err)
	_, err = d.Register("user-name", value.TypeOctets)
	require.True(t, trace.IsAlreadyExists(err))
}

func TestLookupUnknown(t *testing.T) {
	d := New()
	_, err := d.Lookup("No-Such-Attribute")
	require.True(t, trace.IsNotFound(err))
}

func TestRegisterValidation(t *testing.T) {
	d := New()
	_, err := d.Register("", value.TypeString)
	require.True(t, trace.IsBadParameter(err))
	_, err = d.Register("Framed-Thing", value.TypeInvalid)
	require.True(t, trace.IsBadParameter(err))
}
