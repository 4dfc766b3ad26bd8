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

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WSTransport implements Transport over a persistent WebSocket
// connection, the way the corpus's agent transport wraps gorilla's
// Conn with read/write deadlines and a mutex against concurrent
// writers.
type WSTransport struct {
	conn         *websocket.Conn
	mu           sync.Mutex
	readTimeout  time.Duration
	writeTimeout time.Duration
}

// DialWSTransport dials url and wraps the resulting connection.
func DialWSTransport(ctx context.Context, url string) (*WSTransport, error) {
	dialer := &websocket.Dialer{HandshakeTimeout: 30 * time.Second}
	conn, resp, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("pairing: websocket dial failed (HTTP %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("pairing: websocket dial failed: %w", err)
	}
	return NewWSTransport(conn), nil
}

// NewWSTransport wraps an already-established connection, e.g. one
// accepted server-side via websocket.Upgrader.
func NewWSTransport(conn *websocket.Conn) *WSTransport {
	return &WSTransport{conn: conn, readTimeout: 60 * time.Second, writeTimeout: 30 * time.Second}
}

// UpgradeWSTransport upgrades an inbound HTTP request to a WebSocket
// connection and wraps it, for the admitting side of a handshake
// served over HTTP.
func UpgradeWSTransport(w http.ResponseWriter, r *http.Request, upgrader *websocket.Upgrader) (*WSTransport, error) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, fmt.Errorf("pairing: websocket upgrade failed: %w", err)
	}
	return NewWSTransport(conn), nil
}

func (t *WSTransport) Send(ctx context.Context, v interface{}) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.conn.SetWriteDeadline(time.Now().Add(t.writeTimeout)); err != nil {
		return fmt.Errorf("pairing: set write deadline: %w", err)
	}
	if err := t.conn.WriteJSON(v); err != nil {
		return fmt.Errorf("pairing: write message: %w", err)
	}
	return nil
}

func (t *WSTransport) Receive(ctx context.Context, v interface{}) error {
	if err := t.conn.SetReadDeadline(time.Now().Add(t.readTimeout)); err != nil {
		return fmt.Errorf("pairing: set read deadline: %w", err)
	}
	if err := t.conn.ReadJSON(v); err != nil {
		return fmt.Errorf("pairing: read message: %w", err)
	}
	return nil
}

func (t *WSTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	_ = t.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return t.conn.Close()
}
