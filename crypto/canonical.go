// Copyright (C) 2025 sage-x-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

package crypto

import "encoding/json"

// CanonicalizePayload builds the bit-exact bytes that get signed for a
// payload: fields sorted lexicographically by key, "timestamp"
// elided (spec §3). encoding/json already serializes map keys in
// sorted order, which is what makes this form stable across peers
// without a bespoke TLV encoder — the same trick the corpus's
// RFC-9421 signature base uses with an explicit field list, just
// generalized to an arbitrary payload shape.
func CanonicalizePayload(payload map[string]interface{}) ([]byte, error) {
	clone := make(map[string]interface{}, len(payload))
	for k, v := range payload {
		if k == "timestamp" {
			continue
		}
		clone[k] = v
	}
	return json.Marshal(clone)
}
