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

// Package wsrelay gossips logstream entries between peers over
// gorilla/websocket, in the manner of the corpus's WSServer/WSTransport
// pair: a persistent connection per peer, JSON-framed messages, and
// independent read/write timeouts. It is the module's stand-in for
// "the underlying append-only log's replication transport" that
// spec.md marks out of scope for the core.
package wsrelay

import (
	"context"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/qalbehabib/syncbase/crypto"
	"github.com/qalbehabib/syncbase/logstream"
	"github.com/qalbehabib/syncbase/logstream/memlog"
)

// frame is the wire message gossiped between relays: one log entry.
type frame struct {
	Writer   string          `json:"writer"`
	Envelope crypto.Envelope `json:"envelope"`
}

// Relay gossips a memlog.Log's entries to every connected peer and
// adopts whatever its peers gossip back.
type Relay struct {
	log      *memlog.Log
	upgrader websocket.Upgrader

	mu    sync.Mutex
	peers map[*websocket.Conn]struct{}
	sent  map[string]int // writer hex -> entries already broadcast
}

// New wraps log for gossip. log should be the same instance the
// Instance's router reads from.
func New(log *memlog.Log) *Relay {
	return &Relay{
		log: log,
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
		peers: make(map[*websocket.Conn]struct{}),
		sent:  make(map[string]int),
	}
}

// Handler upgrades inbound HTTP connections to WebSocket peers.
func (r *Relay) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		conn, err := r.upgrader.Upgrade(w, req, nil)
		if err != nil {
			http.Error(w, fmt.Sprintf("wsrelay: upgrade failed: %v", err), http.StatusBadRequest)
			return
		}
		r.serve(req.Context(), conn)
	})
}

// Dial connects outward to a peer relay at url.
func (r *Relay) Dial(ctx context.Context, url string) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("wsrelay: dial %s: %w", url, err)
	}
	go r.serve(ctx, conn)
	return nil
}

func (r *Relay) serve(ctx context.Context, conn *websocket.Conn) {
	r.mu.Lock()
	r.peers[conn] = struct{}{}
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		delete(r.peers, conn)
		r.mu.Unlock()
		_ = conn.Close()
	}()

	for {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		var f frame
		if err := conn.ReadJSON(&f); err != nil {
			return
		}
		writer, err := hex.DecodeString(f.Writer)
		if err != nil {
			continue
		}
		r.log.Adopt([]logstream.Entry{{Value: f.Envelope, From: logstream.WriterKey(writer)}})
	}
}

// Pump broadcasts every not-yet-sent local log entry to every
// connected peer on tick, until ctx is cancelled.
func (r *Relay) Pump(ctx context.Context, tick time.Duration) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.broadcastNew()
		}
	}
}

// broadcastNew does not track which peer an entry arrived from, so a
// fully connected mesh gossips every entry back once to its origin;
// harmless since Adopt on a log that already has the entry is a no-op
// for the router's dedup, but wasteful on a large peer set.
func (r *Relay) broadcastNew() {
	entries := r.log.Snapshot()

	byWriter := make(map[string][]logstream.Entry)
	for _, e := range entries {
		hexKey := e.From.Hex()
		byWriter[hexKey] = append(byWriter[hexKey], e)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for hexKey, writerEntries := range byWriter {
		already := r.sent[hexKey]
		if already >= len(writerEntries) {
			continue
		}
		fresh := writerEntries[already:]
		for peer := range r.peers {
			for _, e := range fresh {
				_ = peer.SetWriteDeadline(time.Now().Add(30 * time.Second))
				_ = peer.WriteJSON(frame{Writer: hexKey, Envelope: e.Value})
			}
		}
		r.sent[hexKey] = len(writerEntries)
	}
}

// PeerCount reports how many peers are currently connected.
func (r *Relay) PeerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.peers)
}

// Close disconnects every peer.
func (r *Relay) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for conn := range r.peers {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		_ = conn.Close()
	}
	r.peers = make(map[*websocket.Conn]struct{})
	return nil
}
