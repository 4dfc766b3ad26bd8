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

import (
	"crypto/rand"
	"time"
)

// GenerateID returns hex(n) cryptographically random bytes, used for
// channel/message/invite primary keys (spec §4.1).
func GenerateID(n int) (string, error) {
	buf, err := GenerateIDBytes(n)
	if err != nil {
		return "", err
	}
	return hexEncode(buf), nil
}

// GenerateIDBytes is GenerateID without the hex encoding, for callers
// that need the raw bytes themselves (e.g. an invite ID, which the
// View keys by its hex form but the wire payload carries as bytes).
func GenerateIDBytes(n int) ([]byte, error) {
	if n <= 0 {
		n = 16
	}
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// NowMillis returns the current time as milliseconds since epoch, the
// timestamp unit used throughout the action envelope (spec §3).
func NowMillis() int64 {
	return time.Now().UnixMilli()
}
