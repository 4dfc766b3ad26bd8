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

// Package view implements the typed, ordered key/value materialization
// of the action log (spec §4.3): a Store abstraction with ordered range
// scans, point get, insert, delete and atomic flush, wrapped by six
// typed collections (server, channel, message, user, role, invite).
package view

import (
	"context"
	"errors"
)

// Row is a single collection record. Collections use plain maps rather
// than one Go struct per table so Store stays collection-agnostic; the
// typed collection wrappers in view.go (via the helpers in convert.go)
// convert to and from the struct types callers actually use.
type Row map[string]interface{}

// Query is an equality filter: every field present must match exactly
// for Find/FindOne to select a row.
type Query map[string]interface{}

var (
	// ErrPrimaryKeyConflict is returned by Insert when the key already exists.
	ErrPrimaryKeyConflict = errors.New("view: primary key conflict")
	// ErrNotFound is returned by Get and FindOne when no row matches.
	ErrNotFound = errors.New("view: row not found")
)

// Store is the ordered key/value abstraction spec §1 assumes an
// external collaborator provides. Collection names partition the
// keyspace; keys are ordered lexicographically within a collection.
type Store interface {
	// Get returns the row stored under key in collection, or ErrNotFound.
	Get(ctx context.Context, collection, key string) (Row, error)

	// FindOne returns the first row (by key order) in collection whose
	// fields match every entry in query, or ErrNotFound.
	FindOne(ctx context.Context, collection string, query Query) (Row, error)

	// Find returns every row in collection matching query, in key order.
	Find(ctx context.Context, collection string, query Query) ([]Row, error)

	// Insert adds row under key in collection. Returns
	// ErrPrimaryKeyConflict if key already exists, visible to the
	// current in-flight batch or already committed.
	Insert(ctx context.Context, collection, key string, row Row) error

	// Delete removes key from collection. Deleting an absent key is a
	// no-op success.
	Delete(ctx context.Context, collection, key string) error

	// Flush durably and atomically commits every Insert/Delete issued
	// since the last Flush. Readers never observe a partially
	// committed batch.
	Flush(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}

// Matches reports whether row satisfies every equality filter in
// query. Optional fields are frequently stored as pointers (*string,
// *int64) while callers query by value, so comparison dereferences
// both sides before comparing.
func Matches(row Row, query Query) bool {
	for k, want := range query {
		got, ok := row[k]
		if !ok || deref(got) != deref(want) {
			return false
		}
	}
	return true
}

func deref(v interface{}) interface{} {
	switch p := v.(type) {
	case *string:
		if p == nil {
			return nil
		}
		return *p
	case *int64:
		if p == nil {
			return nil
		}
		return *p
	case *int32:
		if p == nil {
			return nil
		}
		return *p
	default:
		return v
	}
}
