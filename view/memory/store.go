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

// Package memory implements view.Store in-process, for tests and
// single-peer use, in the manner of the corpus's in-memory session
// store (map + sync.RWMutex, deep-copied rows).
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/qalbehabib/syncbase/view"
)

// tombstone marks a pending delete of a key that is still present in
// committed, so Flush knows to remove it instead of leaving it.
type tombstone struct{}

// Store is an in-memory view.Store. Writes land in a pending overlay
// keyed by collection; Get/Find/FindOne read pending layered over
// committed so a batch observes its own writes before Flush, and Flush
// atomically merges pending into committed under one lock, matching
// the "all or none" commit contract of spec §4.3.
type Store struct {
	mu        sync.RWMutex
	committed map[string]map[string]view.Row
	pending   map[string]map[string]interface{} // value is view.Row or tombstone{}
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		committed: make(map[string]map[string]view.Row),
		pending:   make(map[string]map[string]interface{}),
	}
}

func (s *Store) lookup(collection, key string) (view.Row, bool) {
	if p, ok := s.pending[collection]; ok {
		if v, ok := p[key]; ok {
			if _, isTomb := v.(tombstone); isTomb {
				return nil, false
			}
			return v.(view.Row), true
		}
	}
	row, ok := s.committed[collection][key]
	return row, ok
}

func (s *Store) Get(ctx context.Context, collection, key string) (view.Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.lookup(collection, key)
	if !ok {
		return nil, view.ErrNotFound
	}
	return cloneRow(row), nil
}

func (s *Store) FindOne(ctx context.Context, collection string, query view.Query) (view.Row, error) {
	rows, err := s.Find(ctx, collection, query)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, view.ErrNotFound
	}
	return rows[0], nil
}

func (s *Store) Find(ctx context.Context, collection string, query view.Query) ([]view.Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make(map[string]struct{})
	for k := range s.committed[collection] {
		keys[k] = struct{}{}
	}
	for k, v := range s.pending[collection] {
		if _, isTomb := v.(tombstone); isTomb {
			delete(keys, k)
			continue
		}
		keys[k] = struct{}{}
	}

	ordered := make([]string, 0, len(keys))
	for k := range keys {
		ordered = append(ordered, k)
	}
	sort.Strings(ordered)

	var out []view.Row
	for _, k := range ordered {
		row, ok := s.lookup(collection, k)
		if !ok || !view.Matches(row, query) {
			continue
		}
		out = append(out, cloneRow(row))
	}
	return out, nil
}

func (s *Store) Insert(ctx context.Context, collection, key string, row view.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lookup(collection, key); ok {
		return view.ErrPrimaryKeyConflict
	}
	if s.pending[collection] == nil {
		s.pending[collection] = make(map[string]interface{})
	}
	s.pending[collection][key] = cloneRow(row)
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending[collection] == nil {
		s.pending[collection] = make(map[string]interface{})
	}
	s.pending[collection][key] = tombstone{}
	return nil
}

func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for collection, changes := range s.pending {
		if s.committed[collection] == nil {
			s.committed[collection] = make(map[string]view.Row)
		}
		for key, v := range changes {
			if _, isTomb := v.(tombstone); isTomb {
				delete(s.committed[collection], key)
				continue
			}
			s.committed[collection][key] = v.(view.Row)
		}
	}
	s.pending = make(map[string]map[string]interface{})
	return nil
}

func (s *Store) Close() error { return nil }

func cloneRow(row view.Row) view.Row {
	out := make(view.Row, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}

