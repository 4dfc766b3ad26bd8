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

// Package logstream defines the append-only multi-writer log the core
// treats as an external collaborator (spec §1): local append, a
// linearized per-writer-causal replay, per-entry writer attribution,
// and writer acknowledgement. memlog and wsrelay are reference bodies
// for this interface so the module runs end to end without a real
// hypercore-like transport.
package logstream

import (
	"context"
	"encoding/hex"

	"github.com/qalbehabib/syncbase/crypto"
)

// WriterKey identifies one writer's append stream by its Ed25519
// public key.
type WriterKey []byte

// Hex is the writer key's canonical textual form, used as a map key
// and as the signer identity the validator and view key rows by.
func (k WriterKey) Hex() string { return hex.EncodeToString(k) }

// Entry is one log record together with the writer that produced it.
type Entry struct {
	Value crypto.Envelope
	From  WriterKey
}

// Log is the append-only multi-writer log spec §1 assumes: local
// append, batched replay, and the set of writers currently known.
type Log interface {
	// Append adds env to the local writer's stream.
	Append(ctx context.Context, env crypto.Envelope) error

	// ReadBatch returns the next batch of entries not yet delivered to
	// this caller, across every known writer, in a linearized,
	// per-writer-causal order.
	ReadBatch(ctx context.Context) ([]Entry, error)

	// Writers lists every writer key this log currently knows about.
	Writers() []WriterKey

	// Ack records that this peer has processed up to entry seq for
	// writer w, advancing that writer's acknowledged frontier.
	Ack(w WriterKey, seq int) error

	// Close releases any resources (connections, goroutines) the log holds.
	Close() error
}
