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

package xlat

import (
	"context"
	"testing"

	"github.com/gravitational/trace"
	"github.com/stretchr/testify/require"

	"github.com/wardenhq/warden/lib/dict"
	"github.com/wardenhq/warden/lib/pair"
	"github.com/wardenhq/warden/lib/request"
	"github.com/wardenhq/warden/lib/value"
)

func newTestEngine(t *testing.T) (*Engine, *request.Request) {
	t.Helper()
	d := dict.New()
	name := d.MustRegister("User-Name", value.TypeString)
	port := d.MustRegister("NAS-Port", value.TypeUint32)
	tier := d.MustRegister("Service-Tier", value.TypeString)

	engine, err := New(Config{Dict: d})
	require.NoError(t, err)

	req := request.New()
	req.Packet.Append(pair.New(name, value.NewString("alice")))
	req.Packet.Append(pair.New(port, value.NewUint32(2048)))
	req.Reply.Append(pair.New(tier, value.NewString("gold")))
	return engine, req
}

func TestExpand(t *testing.T) {
	engine, req := newTestEngine(t)
	ctx := context.Background()

	tests := []struct {
		description string
		input       string
		expect      string
		wantErr     bool
	}{
		{
			description: "plain text passes through",
			input:       "hello world",
			expect:      "hello world",
		},
		{
			description: "attribute reference",
			input:       "user=%{User-Name}",
			expect:      "user=alice",
		},
		{
			description: "default list is the request packet",
			input:       "%{NAS-Port}",
			expect:      "2048",
		},
		{
			description: "list qualified reference",
			input:       "%{reply.Service-Tier}",
			expect:      "gold",
		},
		{
			description: "absent attribute expands empty",
			input:       "[%{reply.User-Name}]",
			expect:      "[]",
		},
		{
			description: "escaped percent",
			input:       "100%%",
			expect:      "100%",
		},
		{
			description: "bare percent passes through",
			input:       "50% off",
			expect:      "50% off",
		},
		{
			description: "unknown attribute name",
			input:       "%{Nonexistent-Thing}",
			wantErr:     true,
		},
		{
			description: "unknown list",
			input:       "%{proxy.User-Name}",
			wantErr:     true,
		},
		{
			description: "unterminated reference",
			input:       "%{User-Name",
			wantErr:     true,
		},
		{
			description: "empty reference",
			input:       "%{}",
			wantErr:     true,
		},
		{
			description: "dangling percent",
			input:       "abc%",
			wantErr:     true,
		},
	}
	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			got, err := engine.Expand(ctx, req, tc.input)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.expect, got)
		})
	}
}

func TestExpandCaptures(t *testing.T) {
	engine, req := newTestEngine(t)
	ctx := context.Background()

	req.PublishCaptures([]string{"abc123", "123"})

	got, err := engine.Expand(ctx, req, "whole=%{0} group=%{1} unset=%{5}")
	require.NoError(t, err)
	require.Equal(t, "whole=abc123 group=123 unset=", got)

	req.ClearCaptures()
	got, err = engine.Expand(ctx, req, "%{0}")
	require.NoError(t, err)
	require.Equal(t, "", got)
}

func TestExpandPatternEscapes(t *testing.T) {
	d := dict.New()
	name := d.MustRegister("User-Name", value.TypeString)
	engine, err := New(Config{Dict: d})
	require.NoError(t, err)

	req := request.New()
	req.Packet.Append(pair.New(name, value.NewString("a.b*c")))

	// Literal pattern text keeps its syntax, substituted data does not.
	got, err := engine.ExpandPattern(context.Background(), req, "^%{User-Name}$")
	require.NoError(t, err)
	require.Equal(t, `^a\.b\*c$`, got)
}

func TestExec(t *testing.T) {
	d := dict.New()
	name := d.MustRegister("User-Name", value.TypeString)

	req := request.New()
	req.Packet.Append(pair.New(name, value.NewString("alice")))

	t.Run("without a runner", func(t *testing.T) {
		engine, err := New(Config{Dict: d})
		require.NoError(t, err)
		_, err = engine.Exec(context.Background(), req, "/bin/check %{User-Name}")
		require.True(t, trace.IsNotImplemented(err))
	})

	t.Run("runner sees the expanded command line", func(t *testing.T) {
		var gotCmdline string
		engine, err := New(Config{
			Dict: d,
			Runner: func(ctx context.Context, req *request.Request, cmdline string) (string, error) {
				gotCmdline = cmdline
				return "ok\n", nil
			},
		})
		require.NoError(t, err)

		out, err := engine.Exec(context.Background(), req, "/bin/check %{User-Name}")
		require.NoError(t, err)
		require.Equal(t, "/bin/check alice", gotCmdline)
		require.Equal(t, "ok", out)
	})
}

func TestConfigValidation(t *testing.T) {
	_, err := New(Config{})
	require.True(t, trace.IsBadParameter(err))
}
