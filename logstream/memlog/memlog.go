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

// Package memlog is an in-memory logstream.Log: a local append stream
// plus any streams adopted from remote writers (via Adopt, used by
// logstream/wsrelay), replayed in round-robin writer order so no
// single writer can starve another's antecedents out of a batch.
// Duplicate entries across adopts are harmless: the router dedups by
// (type, timestamp, signer) against its own processed-set.
package memlog

import (
	"context"
	"sync"

	"github.com/qalbehabib/syncbase/crypto"
	"github.com/qalbehabib/syncbase/logstream"
)

const defaultBatchSize = 256

// Log is a single peer's view of the multi-writer log, held entirely
// in memory.
type Log struct {
	mu      sync.Mutex
	self    logstream.WriterKey
	streams map[string][]logstream.Entry // writer hex -> its entries, in append order
	order   []string                     // writer hex, in first-seen order
	cursor  map[string]int               // writer hex -> next unread index
	acked   map[string]int               // writer hex -> highest acknowledged index + 1
}

// New creates an empty log for the local writer self.
func New(self logstream.WriterKey) *Log {
	return &Log{
		self:    self,
		streams: make(map[string][]logstream.Entry),
		cursor:  make(map[string]int),
		acked:   make(map[string]int),
	}
}

func (l *Log) ensureWriter(hexKey string) {
	if _, ok := l.streams[hexKey]; !ok {
		l.streams[hexKey] = nil
		l.order = append(l.order, hexKey)
	}
}

// Append adds env to the local writer's own stream.
func (l *Log) Append(ctx context.Context, env crypto.Envelope) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	hexKey := l.self.Hex()
	l.ensureWriter(hexKey)
	l.streams[hexKey] = append(l.streams[hexKey], logstream.Entry{Value: env, From: l.self})
	return nil
}

// Close is a no-op; memlog holds no external resources.
func (l *Log) Close() error { return nil }

// Writers returns every writer key this log has ever seen an entry from.
func (l *Log) Writers() []logstream.WriterKey {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]logstream.WriterKey, 0, len(l.order))
	for _, hexKey := range l.order {
		out = append(out, l.streams[hexKey][0].From)
	}
	return out
}

// Ack advances writer w's acknowledged frontier to seq+1.
func (l *Log) Ack(w logstream.WriterKey, seq int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	hexKey := w.Hex()
	if seq+1 > l.acked[hexKey] {
		l.acked[hexKey] = seq + 1
	}
	return nil
}

// Adopt merges entries received from a remote writer's stream (via
// wsrelay) into this log. Every entry is appended, including ones this
// log already holds; the router's processed-set drops the duplicates.
func (l *Log) Adopt(entries []logstream.Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, e := range entries {
		hexKey := e.From.Hex()
		l.ensureWriter(hexKey)
		l.streams[hexKey] = append(l.streams[hexKey], e)
	}
}

// Snapshot returns every entry this log holds, across every writer, in
// writer-then-append order. Unlike ReadBatch it advances no cursor;
// logstream/wsrelay uses it to diff what has already been gossiped out
// without disturbing the router's own read position.
func (l *Log) Snapshot() []logstream.Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []logstream.Entry
	for _, hexKey := range l.order {
		out = append(out, l.streams[hexKey]...)
	}
	return out
}

// ReadBatch returns up to defaultBatchSize unread entries, round-robin
// across writers in first-seen order, so a batch containing several
// writers' entries does not starve any one writer's tail.
func (l *Log) ReadBatch(ctx context.Context) ([]logstream.Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []logstream.Entry
	progressed := true
	for len(out) < defaultBatchSize && progressed {
		progressed = false
		for _, hexKey := range l.order {
			stream := l.streams[hexKey]
			pos := l.cursor[hexKey]
			if pos >= len(stream) {
				continue
			}
			out = append(out, stream[pos])
			l.cursor[hexKey] = pos + 1
			progressed = true
			if len(out) >= defaultBatchSize {
				break
			}
		}
	}
	return out, nil
}
