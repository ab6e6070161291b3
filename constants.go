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

package warden

const (
	// ComponentKey is the log field under which every component reports itself.
	ComponentKey = "component"

	// ComponentEval is the condition evaluation engine.
	ComponentEval = "eval"

	// ComponentXlat is the string expansion engine.
	ComponentXlat = "xlat"

	// ComponentPaircmp is the registered comparator dispatch path.
	ComponentPaircmp = "paircmp"

	// ComponentCtl is the wardenctl debug tool.
	ComponentCtl = "wardenctl"
)

const (
	// ListPacket is the list of attributes received in the request packet.
	ListPacket = "request"

	// ListReply is the list of attributes accumulated for the reply packet.
	ListReply = "reply"

	// ListControl is the list of server-internal control attributes.
	ListControl = "control"

	// ListState is the list of attributes persisted across a multi-round
	// exchange with the same client.
	ListState = "state"
)

// MaxCaptureGroups is the highest capture group index that can be published
// back to a request after a regular expression match. Patterns without
// explicit groups still reserve this many slots plus the whole-match slot.
const MaxCaptureGroups = 8
