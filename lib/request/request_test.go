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

package request

import (
	"testing"

	"github.com/gravitational/trace"
	"github.com/stretchr/testify/require"

	"github.com/wardenhq/warden"
	"github.com/wardenhq/warden/lib/dict"
	"github.com/wardenhq/warden/lib/pair"
	"github.com/wardenhq/warden/lib/value"
)

func TestListResolution(t *testing.T) {
	d := dict.New()
	name := d.MustRegister("User-Name", value.TypeString)

	req := New()
	req.Packet.Append(pair.New(name, value.NewString("alice")))

	packet, err := req.List(warden.ListPacket)
	require.NoError(t, err)
	require.Equal(t, 1, packet.Len())

	reply, err := req.List(warden.ListReply)
	require.NoError(t, err)
	require.Equal(t, 0, reply.Len())

	_, err = req.List("outer.request")
	require.True(t, trace.IsNotFound(err))
}

func TestCaptureLifecycle(t *testing.T) {
	req := New()

	_, ok := req.Capture(0)
	require.False(t, ok)

	req.PublishCaptures([]string{"abc123", "123"})

	whole, ok := req.Capture(0)
	require.True(t, ok)
	require.Equal(t, "abc123", whole)

	group, ok := req.Capture(1)
	require.True(t, ok)
	require.Equal(t, "123", group)

	_, ok = req.Capture(2)
	require.False(t, ok)
	_, ok = req.Capture(-1)
	require.False(t, ok)

	// A new match replaces, a failed match clears.
	req.PublishCaptures([]string{"zz"})
	whole, ok = req.Capture(0)
	require.True(t, ok)
	require.Equal(t, "zz", whole)

	req.ClearCaptures()
	_, ok = req.Capture(0)
	require.False(t, ok)
}

func TestPublishCapturesCopies(t *testing.T) {
	req := New()
	groups := []string{"a"}
	req.PublishCaptures(groups)
	groups[0] = "mutated"
	got, ok := req.Capture(0)
	require.True(t, ok)
	require.Equal(t, "a", got)
}
