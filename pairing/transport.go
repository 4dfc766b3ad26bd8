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

package pairing

import "context"

// Transport carries the two handshake messages (hello, accept) between
// a joining candidate and the admitting peer (spec §6: "peer transport
// is opaque to the core, but the core assumes authenticated, encrypted
// per-pair channels provided by the transport"). The handshake is a
// single round trip; Transport need not support anything beyond that.
type Transport interface {
	Send(ctx context.Context, v interface{}) error
	Receive(ctx context.Context, v interface{}) error
	Close() error
}
