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
	"encoding/json"
	"fmt"
)

// pipeTransport is an in-process Transport backed by channels of
// already-encoded messages, used for same-process pairing (two
// instances in the same test binary) and as the reference Candidates
// feed for InProcessDiscovery.
type pipeTransport struct {
	out chan<- []byte
	in  <-chan []byte
}

// NewPipeTransportPair returns two ends of an in-memory duplex
// channel, wired so Send on one end is Receive on the other.
func NewPipeTransportPair() (a, b Transport) {
	ab := make(chan []byte, 4)
	ba := make(chan []byte, 4)
	return &pipeTransport{out: ab, in: ba}, &pipeTransport{out: ba, in: ab}
}

func (p *pipeTransport) Send(ctx context.Context, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("pairing: encode message: %w", err)
	}
	select {
	case p.out <- b:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *pipeTransport) Receive(ctx context.Context, v interface{}) error {
	select {
	case b, ok := <-p.in:
		if !ok {
			return fmt.Errorf("pairing: transport closed")
		}
		return json.Unmarshal(b, v)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *pipeTransport) Close() error {
	return nil
}
