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

import "sync"

// EventType is the closed set of notifications an Instance emits.
type EventType string

// EventViewChanged fires once per apply-loop iteration that completed
// a flush, whether or not that batch changed any rows (spec §9:
// "typed channel of view-change notifications produced at flush
// boundaries").
const EventViewChanged EventType = "view-changed"

// Event is the value handed to every handler registered via On.
type Event struct {
	Type EventType
	At   int64
}

// emitter fans Event values out to every handler registered for their
// EventType. Handlers run synchronously on the apply loop's goroutine,
// in registration order, matching the corpus's in-process notifier
// style rather than an unbounded worker-per-handler fan-out.
type emitter struct {
	mu       sync.Mutex
	handlers map[EventType][]func(Event)
}

func newEmitter() *emitter {
	return &emitter{handlers: make(map[EventType][]func(Event))}
}

func (e *emitter) on(event EventType, handler func(Event)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers[event] = append(e.handlers[event], handler)
}

func (e *emitter) emit(ev Event) {
	e.mu.Lock()
	handlers := append([]func(Event){}, e.handlers[ev.Type]...)
	e.mu.Unlock()
	for _, h := range handlers {
		h(ev)
	}
}

// On registers handler to run whenever event fires (spec §4.7's
// `on(event, handler)`).
func (in *Instance) On(event EventType, handler func(Event)) {
	in.emitter.on(event, handler)
}
