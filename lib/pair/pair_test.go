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

package pair

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wardenhq/warden/lib/dict"
	"github.com/wardenhq/warden/lib/value"
)

func TestListKeepsDuplicatesInOrder(t *testing.T) {
	d := dict.New()
	group := d.MustRegister("Group-Id", value.TypeUint32)
	name := d.MustRegister("User-Name", value.TypeString)

	var l List
	l.Append(New(group, value.NewUint32(1)))
	l.Append(New(name, value.NewString("alice")))
	l.Append(New(group, value.NewUint32(2)))
	l.Append(New(group, value.NewUint32(3)))

	require.Equal(t, 4, l.Len())

	first := l.Get(group)
	require.NotNil(t, first)
	require.Equal(t, uint32(1), first.Value.Uint32())

	all := l.All(group)
	require.Len(t, all, 3)
	require.Equal(t, uint32(1), all[0].Value.Uint32())
	require.Equal(t, uint32(2), all[1].Value.Uint32())
	require.Equal(t, uint32(3), all[2].Value.Uint32())

	require.Nil(t, l.Get(d.MustRegister("Absent", value.TypeString)))
}

func TestPairString(t *testing.T) {
	d := dict.New()
	name := d.MustRegister("User-Name", value.TypeString)
	p := New(name, value.NewString("bob"))
	require.Equal(t, "User-Name == bob", p.String())
}
