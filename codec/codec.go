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

import "fmt"

// Encode serializes payload as the body for actionType, prefixed with
// its one-byte tag. payload must be the concrete *XPayload matching
// actionType's schema (spec §6); a mismatch is a programmer error and
// returns ErrMalformedAction rather than panicking.
func Encode(actionType ActionType, payload interface{}) ([]byte, error) {
	var body []byte
	switch actionType {
	case CreateServer, UpdateServer:
		p, ok := payload.(*ServerPayload)
		if !ok {
			return nil, fmt.Errorf("%w: expected *ServerPayload for %s", ErrMalformedAction, actionType.TypeString())
		}
		body = p.encode()
	case CreateChannel, UpdateChannel, DeleteChannel:
		p, ok := payload.(*ChannelPayload)
		if !ok {
			return nil, fmt.Errorf("%w: expected *ChannelPayload for %s", ErrMalformedAction, actionType.TypeString())
		}
		body = p.encode()
	case SendMessage, EditMessage, DeleteMessage:
		p, ok := payload.(*MessagePayload)
		if !ok {
			return nil, fmt.Errorf("%w: expected *MessagePayload for %s", ErrMalformedAction, actionType.TypeString())
		}
		body = p.encode()
	case SetRole:
		p, ok := payload.(*RolePayload)
		if !ok {
			return nil, fmt.Errorf("%w: expected *RolePayload for %s", ErrMalformedAction, actionType.TypeString())
		}
		body = p.encode()
	case CreateInvite, RevokeInvite:
		p, ok := payload.(*InvitePayload)
		if !ok {
			return nil, fmt.Errorf("%w: expected *InvitePayload for %s", ErrMalformedAction, actionType.TypeString())
		}
		body = p.encode()
	case ClaimInvite:
		p, ok := payload.(*UserPayload)
		if !ok {
			return nil, fmt.Errorf("%w: expected *UserPayload for %s", ErrMalformedAction, actionType.TypeString())
		}
		body = p.encode()
	default:
		return nil, fmt.Errorf("%w: tag %d", ErrUnknownActionType, actionType)
	}
	out := make([]byte, 0, len(body)+1)
	out = append(out, byte(actionType))
	out = append(out, body...)
	return out, nil
}

// Decode reads the one-byte type tag off data and dispatches to the
// matching schema decoder, returning the concrete *XPayload as an
// interface{} alongside its ActionType.
func Decode(data []byte) (ActionType, interface{}, error) {
	if len(data) == 0 {
		return 0, nil, fmt.Errorf("%w: empty payload", ErrMalformedAction)
	}
	t := ActionType(data[0])
	body := data[1:]

	var (
		payload interface{}
		err     error
	)
	switch t {
	case CreateServer, UpdateServer:
		payload, err = decodeServerPayload(body)
	case CreateChannel, UpdateChannel, DeleteChannel:
		payload, err = decodeChannelPayload(body)
	case SendMessage, EditMessage, DeleteMessage:
		payload, err = decodeMessagePayload(body)
	case SetRole:
		payload, err = decodeRolePayload(body)
	case CreateInvite, RevokeInvite:
		payload, err = decodeInvitePayload(body)
	case ClaimInvite:
		payload, err = decodeUserPayload(body)
	default:
		return 0, nil, fmt.Errorf("%w: tag %d", ErrUnknownActionType, t)
	}
	if err != nil {
		return 0, nil, err
	}
	return t, payload, nil
}
