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

// Package syncerr defines the closed error taxonomy every component
// surfaces to its caller (spec §7): MalformedAction, BadSignature,
// Unauthorized, NotFound, Conflict, Expired, Timeout, Transport,
// Internal.
package syncerr

import (
	"errors"
	"fmt"
)

// Kind is one of the closed set of error kinds in spec §7.
type Kind string

const (
	KindMalformedAction Kind = "malformed_action"
	KindBadSignature    Kind = "bad_signature"
	KindUnauthorized    Kind = "unauthorized"
	KindNotFound        Kind = "not_found"
	KindConflict        Kind = "conflict"
	KindExpired         Kind = "expired"
	KindTimeout         Kind = "timeout"
	KindTransport       Kind = "transport"
	KindInternal        Kind = "internal"
)

// Error wraps a Kind with the operation that failed and, optionally,
// the underlying cause. Two Errors compare equal under errors.Is when
// their Kind matches, regardless of Op or Err.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Is implements the errors.Is contract by Kind: errors.Is(err,
// syncerr.Of(syncerr.KindNotFound)) style comparisons match any Error
// of the same Kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// New builds an Error of the given kind for operation op, wrapping
// cause (which may be nil).
func New(kind Kind, op string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Err: cause}
}

// Of returns a zero-cause sentinel of kind, suitable for errors.Is
// comparisons: errors.Is(err, syncerr.Of(syncerr.KindExpired)).
func Of(kind Kind) *Error {
	return &Error{Kind: kind}
}

// KindOf extracts the Kind of err if it is (or wraps) a *Error, and
// ok=false otherwise.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}
