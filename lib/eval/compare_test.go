/*
 * Warden
 * Copyright (C) 2025  The Warden Authors
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

package eval

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wardenhq/warden"
	"github.com/wardenhq/warden/lib/pair"
	"github.com/wardenhq/warden/lib/rcode"
	"github.com/wardenhq/warden/lib/request"
	"github.com/wardenhq/warden/lib/tmpl"
	"github.com/wardenhq/warden/lib/value"
)

func compiled(t *testing.T, pattern string, flags tmpl.Flags) *tmpl.Regex {
	t.Helper()
	re, err := tmpl.CompileRegex(pattern, flags)
	require.NoError(t, err)
	return &tmpl.Regex{Pattern: re, Flags: flags}
}

func TestEvaluateRegexCaptures(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	ev := testEvaluator(t, Config{})

	withUser := func(s string) *request.Request {
		req := request.New()
		req.Packet.Append(pair.New(e.userName, value.NewString(s)))
		return req
	}

	t.Run("match publishes the capture groups", func(t *testing.T) {
		req := withUser("bob@example.com")
		got, err := ev.Evaluate(ctx, req, rcode.Unknown, Seq{
			cnode(comparison(
				attrRef(warden.ListPacket, e.userName),
				value.OpRegexMatch,
				compiled(t, `^([^@]+)@(.*)$`, tmpl.Flags{}),
			)),
		})
		require.NoError(t, err)
		require.True(t, got)

		full, ok := req.Capture(0)
		require.True(t, ok)
		require.Equal(t, "bob@example.com", full)
		login, ok := req.Capture(1)
		require.True(t, ok)
		require.Equal(t, "bob", login)
		domain, ok := req.Capture(2)
		require.True(t, ok)
		require.Equal(t, "example.com", domain)
		_, ok = req.Capture(3)
		require.False(t, ok)
	})

	t.Run("non-match clears previously published groups", func(t *testing.T) {
		req := withUser("bob")
		req.PublishCaptures([]string{"stale"})
		got, err := ev.Evaluate(ctx, req, rcode.Unknown, Seq{
			cnode(comparison(
				attrRef(warden.ListPacket, e.userName),
				value.OpRegexMatch,
				compiled(t, `^admin`, tmpl.Flags{}),
			)),
		})
		require.NoError(t, err)
		require.False(t, got)
		_, ok := req.Capture(0)
		require.False(t, ok)
	})

	t.Run("pattern without groups still fills the legacy slots", func(t *testing.T) {
		req := withUser("bob")
		got, err := ev.Evaluate(ctx, req, rcode.Unknown, Seq{
			cnode(comparison(
				attrRef(warden.ListPacket, e.userName),
				value.OpRegexMatch,
				compiled(t, `bob`, tmpl.Flags{}),
			)),
		})
		require.NoError(t, err)
		require.True(t, got)

		full, ok := req.Capture(0)
		require.True(t, ok)
		require.Equal(t, "bob", full)
		for i := 1; i <= warden.MaxCaptureGroups; i++ {
			v, ok := req.Capture(i)
			require.True(t, ok, "slot %d", i)
			require.Empty(t, v)
		}
		_, ok = req.Capture(warden.MaxCaptureGroups + 1)
		require.False(t, ok)
	})

	t.Run("failure leaves published groups untouched", func(t *testing.T) {
		fake := &fakeExpander{table: map[string]string{"%{pat}": `([`}}
		ev := testEvaluator(t, Config{Expander: fake})
		req := withUser("bob")
		req.PublishCaptures([]string{"kept"})
		_, err := ev.Evaluate(ctx, req, rcode.Unknown, Seq{
			cnode(comparison(
				attrRef(warden.ListPacket, e.userName),
				value.OpRegexMatch,
				&tmpl.RegexXlat{Raw: "%{pat}"},
			)),
		})
		require.Error(t, err)
		v, ok := req.Capture(0)
		require.True(t, ok)
		require.Equal(t, "kept", v)
	})

	t.Run("later instance overrides the miss of an earlier one", func(t *testing.T) {
		req := request.New()
		req.Packet.Append(pair.New(e.tier, value.NewString("bronze")))
		req.Packet.Append(pair.New(e.tier, value.NewString("gold-7")))
		got, err := ev.Evaluate(ctx, req, rcode.Unknown, Seq{
			cnode(comparison(
				attrRef(warden.ListPacket, e.tier),
				value.OpRegexMatch,
				compiled(t, `^gold-(\d+)$`, tmpl.Flags{}),
			)),
		})
		require.NoError(t, err)
		require.True(t, got)
		n, ok := req.Capture(1)
		require.True(t, ok)
		require.Equal(t, "7", n)
	})
}

func TestEvaluateRegexNotMatch(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	ev := testEvaluator(t, Config{})

	withUser := func(s string) *request.Request {
		req := request.New()
		req.Packet.Append(pair.New(e.userName, value.NewString(s)))
		return req
	}

	t.Run("inverts a non-match into true", func(t *testing.T) {
		req := withUser("bob")
		got, err := ev.Evaluate(ctx, req, rcode.Unknown, Seq{
			cnode(comparison(
				attrRef(warden.ListPacket, e.userName),
				value.OpRegexNotMatch,
				compiled(t, `^admin`, tmpl.Flags{}),
			)),
		})
		require.NoError(t, err)
		require.True(t, got)
		_, ok := req.Capture(0)
		require.False(t, ok)
	})

	t.Run("captures still follow the raw match", func(t *testing.T) {
		req := withUser("admin")
		got, err := ev.Evaluate(ctx, req, rcode.Unknown, Seq{
			cnode(comparison(
				attrRef(warden.ListPacket, e.userName),
				value.OpRegexNotMatch,
				compiled(t, `^(admin)`, tmpl.Flags{}),
			)),
		})
		require.NoError(t, err)
		require.False(t, got)
		v, ok := req.Capture(1)
		require.True(t, ok)
		require.Equal(t, "admin", v)
	})
}

func TestEvaluateRegexOperands(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	t.Run("non-string subject is cast to string first", func(t *testing.T) {
		ev := testEvaluator(t, Config{})
		req := request.New()
		req.Packet.Append(pair.New(e.groupID, value.NewUint32(42)))
		got, err := ev.Evaluate(ctx, req, rcode.Unknown, Seq{
			cnode(comparison(
				attrRef(warden.ListPacket, e.groupID),
				value.OpRegexMatch,
				compiled(t, `^42$`, tmpl.Flags{}),
			)),
		})
		require.NoError(t, err)
		require.True(t, got)
	})

	t.Run("literal subject", func(t *testing.T) {
		ev := testEvaluator(t, Config{})
		got, err := ev.Evaluate(ctx, request.New(), rcode.Unknown, Seq{
			cnode(comparison(strLit("hello"), value.OpRegexMatch, compiled(t, `ell`, tmpl.Flags{}))),
		})
		require.NoError(t, err)
		require.True(t, got)
	})

	t.Run("expanded pattern is compiled at evaluation", func(t *testing.T) {
		fake := &fakeExpander{table: map[string]string{"%{pat}": `^b.b$`}}
		ev := testEvaluator(t, Config{Expander: fake})
		req := request.New()
		req.Packet.Append(pair.New(e.userName, value.NewString("bob")))
		got, err := ev.Evaluate(ctx, req, rcode.Unknown, Seq{
			cnode(comparison(
				attrRef(warden.ListPacket, e.userName),
				value.OpRegexMatch,
				&tmpl.RegexXlat{Raw: "%{pat}"},
			)),
		})
		require.NoError(t, err)
		require.True(t, got)
	})

	t.Run("flags apply to expanded patterns", func(t *testing.T) {
		fake := &fakeExpander{table: map[string]string{"%{pat}": `^BOB$`}}
		ev := testEvaluator(t, Config{Expander: fake})
		req := request.New()
		req.Packet.Append(pair.New(e.userName, value.NewString("bob")))
		got, err := ev.Evaluate(ctx, req, rcode.Unknown, Seq{
			cnode(comparison(
				attrRef(warden.ListPacket, e.userName),
				value.OpRegexMatch,
				&tmpl.RegexXlat{Raw: "%{pat}", Flags: tmpl.Flags{IgnoreCase: true}},
			)),
		})
		require.NoError(t, err)
		require.True(t, got)
	})

	t.Run("case flag on a compiled pattern", func(t *testing.T) {
		ev := testEvaluator(t, Config{})
		req := request.New()
		req.Packet.Append(pair.New(e.userName, value.NewString("BoB")))
		got, err := ev.Evaluate(ctx, req, rcode.Unknown, Seq{
			cnode(comparison(
				attrRef(warden.ListPacket, e.userName),
				value.OpRegexMatch,
				compiled(t, `^bob$`, tmpl.Flags{IgnoreCase: true}),
			)),
		})
		require.NoError(t, err)
		require.True(t, got)
	})
}
