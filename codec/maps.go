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

package codec

import (
	"encoding/json"
	"fmt"
)

// NewPayload allocates the zero-value payload struct for t, so a caller
// can unmarshal a crypto.Envelope's map[string]interface{} payload into
// it without a type switch of its own.
func NewPayload(t ActionType) (interface{}, error) {
	switch t {
	case CreateServer, UpdateServer:
		return &ServerPayload{}, nil
	case CreateChannel, UpdateChannel, DeleteChannel:
		return &ChannelPayload{}, nil
	case SendMessage, EditMessage, DeleteMessage:
		return &MessagePayload{}, nil
	case ClaimInvite:
		return &UserPayload{}, nil
	case SetRole:
		return &RolePayload{}, nil
	case CreateInvite, RevokeInvite:
		return &InvitePayload{}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownActionType, t)
	}
}

// PayloadFromMap converts a crypto.Envelope's generic payload map into
// the concrete struct matching t, round-tripping through JSON so the
// struct tags added to each payload type do the field-name mapping.
func PayloadFromMap(t ActionType, m map[string]interface{}) (interface{}, error) {
	p, err := NewPayload(t)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal payload map: %v", ErrMalformedAction, err)
	}
	if err := json.Unmarshal(b, p); err != nil {
		return nil, fmt.Errorf("%w: unmarshal payload: %v", ErrMalformedAction, err)
	}
	return p, nil
}

// PayloadToMap is the inverse of PayloadFromMap: it flattens a concrete
// payload struct back into the map[string]interface{} shape a
// crypto.Envelope carries on the wire.
func PayloadToMap(payload interface{}) (map[string]interface{}, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("unmarshal payload map: %w", err)
	}
	return m, nil
}
