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

// Package codec implements the bit-exact binary wire format for every
// action payload (spec §4.2, §6): a one-byte type tag followed by a
// schema-bound body.
package codec

import "errors"

// ActionType is the closed enumeration of action type tags (spec §6).
type ActionType byte

const (
	CreateServer ActionType = iota
	UpdateServer
	CreateChannel
	UpdateChannel
	DeleteChannel
	SendMessage
	EditMessage
	DeleteMessage
	SetRole
	CreateInvite
	ClaimInvite
	RevokeInvite
)

// TypeString is the wire-visible action type string (spec §6 table).
func (t ActionType) TypeString() string {
	s, ok := typeStrings[t]
	if !ok {
		return ""
	}
	return s
}

var typeStrings = map[ActionType]string{
	CreateServer:  "@server/create-server",
	UpdateServer:  "@server/update-server",
	CreateChannel: "@server/create-channel",
	UpdateChannel: "@server/update-channel",
	DeleteChannel: "@server/delete-channel",
	SendMessage:   "@server/send-message",
	EditMessage:   "@server/edit-message",
	DeleteMessage: "@server/delete-message",
	SetRole:       "@server/set-role",
	CreateInvite:  "@server/create-invite",
	ClaimInvite:   "@server/claim-invite",
	RevokeInvite:  "@server/revoke-invite",
}

var stringTypes = func() map[string]ActionType {
	m := make(map[string]ActionType, len(typeStrings))
	for t, s := range typeStrings {
		m[s] = t
	}
	return m
}()

// ActionTypeFromString resolves a wire-visible type string back to its
// ActionType. ok is false for any string not in the registry.
func ActionTypeFromString(s string) (ActionType, bool) {
	t, ok := stringTypes[s]
	return t, ok
}

// Errors returned by Encode/Decode (spec §4.2).
var (
	ErrUnknownActionType = errors.New("codec: unknown action type")
	ErrMalformedAction   = errors.New("codec: malformed action payload")
)
