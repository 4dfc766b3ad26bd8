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

package instance

import "github.com/qalbehabib/syncbase/crypto"

// staleAfterMs is how long the apply loop may go without a successful
// flush before HealthCheck reports it unhealthy — several multiples of
// defaultApplyInterval so a couple of slow ticks don't flap it.
const staleAfterMs = 5_000

// Health reports the apply loop's liveness and writer count (spec §9:
// "reports apply-loop liveness ... and writer count").
type Health struct {
	Healthy       bool
	LastFlushedAt int64
	WriterCount   int
}

// HealthCheck reports whether the apply loop has flushed recently
// enough to be considered live. An Instance that has never flushed
// reports healthy regardless of how long ago it was opened; staleness
// is measured only from the last successful flush.
func (in *Instance) HealthCheck() Health {
	in.mu.RLock()
	lastFlush := in.lastFlush
	in.mu.RUnlock()

	now := crypto.NowMillis()
	healthy := lastFlush == 0 || now-lastFlush < staleAfterMs

	return Health{
		Healthy:       healthy,
		LastFlushedAt: lastFlush,
		WriterCount:   len(in.log.Writers()),
	}
}
