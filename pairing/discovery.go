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
	"errors"
	"sync"
)

var errDiscoveryClosed = errors.New("pairing: discovery closed")

// Candidate is an inbound pairing attempt surfaced by Discovery: a
// Transport already connected to a peer that wants to join, before its
// invite has even been looked up.
type Candidate struct {
	Transport Transport
}

// Discovery announces this instance under the log's discovery key and
// surfaces inbound candidates (spec §4.6 "Announce on discovery key;
// match candidates to invites" / §6 "peer discovery ... opaque to the
// core"). Real network discovery (DHT, rendezvous server, mDNS) is a
// deployment concern the core only consumes through this interface.
type Discovery interface {
	Announce(ctx context.Context, key []byte) error
	Candidates() <-chan *Candidate
	Close() error
}

// InProcessDiscovery is a reference Discovery for same-process pairing
// (tests, and single-binary demos that pair two instances without a
// real network): Connect hands the admitting side's Discovery a
// Transport as if a candidate had dialed in over the wire.
type InProcessDiscovery struct {
	mu        sync.Mutex
	candidate chan *Candidate
	closed    bool
}

func NewInProcessDiscovery() *InProcessDiscovery {
	return &InProcessDiscovery{candidate: make(chan *Candidate, 8)}
}

func (d *InProcessDiscovery) Announce(ctx context.Context, key []byte) error {
	return nil
}

func (d *InProcessDiscovery) Candidates() <-chan *Candidate {
	return d.candidate
}

// Connect delivers tr to this Discovery's Candidates channel, as the
// admitting side would see an incoming connection.
func (d *InProcessDiscovery) Connect(tr Transport) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return errDiscoveryClosed
	}
	d.candidate <- &Candidate{Transport: tr}
	return nil
}

func (d *InProcessDiscovery) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	close(d.candidate)
	return nil
}
