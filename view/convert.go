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

package view

import "encoding/hex"

// Row fields are stored as interface{} (strings, float64/int64, nested
// slices) so both the in-memory and JSONB-backed stores can hold them
// uniformly; these helpers are the single place that casts back and
// forth, in the manner of the corpus's Scan-into-struct store methods.

func serverToRow(s *Server) Row {
	return Row{
		"id": s.ID, "name": s.Name, "createdAt": s.CreatedAt,
		"description": s.Description, "avatar": s.Avatar,
	}
}

func rowToServer(r Row) *Server {
	return &Server{
		ID:          str(r["id"]),
		Name:        str(r["name"]),
		CreatedAt:   i64(r["createdAt"]),
		Description: strPtr(r["description"]),
		Avatar:      strPtr(r["avatar"]),
	}
}

func channelToRow(c *Channel) Row {
	return Row{
		"id": c.ID, "channelId": c.ChannelID, "name": c.Name, "type": c.Type,
		"topic": c.Topic, "createdBy": c.CreatedBy, "createdAt": c.CreatedAt,
		"position": c.Position,
	}
}

func rowToChannel(r Row) *Channel {
	return &Channel{
		ID:        str(r["id"]),
		ChannelID: str(r["channelId"]),
		Name:      str(r["name"]),
		Type:      str(r["type"]),
		Topic:     strPtr(r["topic"]),
		CreatedBy: str(r["createdBy"]),
		CreatedAt: i64(r["createdAt"]),
		Position:  int32(i64(r["position"])),
	}
}

func messageToRow(m *Message) Row {
	return Row{
		"id": m.ID, "channelId": m.ChannelID, "author": m.Author, "content": m.Content,
		"timestamp": m.Timestamp, "editedAt": m.EditedAt, "deletedAt": m.DeletedAt,
		"deletedBy": m.DeletedBy, "attachments": m.Attachments,
	}
}

func rowToMessage(r Row) *Message {
	msg := &Message{
		ID:        str(r["id"]),
		ChannelID: str(r["channelId"]),
		Author:    str(r["author"]),
		Content:   str(r["content"]),
		Timestamp: i64(r["timestamp"]),
		EditedAt:  i64Ptr(r["editedAt"]),
		DeletedAt: i64Ptr(r["deletedAt"]),
		DeletedBy: strPtr(r["deletedBy"]),
	}
	if a, ok := r["attachments"].([]string); ok {
		msg.Attachments = a
	} else if a, ok := r["attachments"].([]interface{}); ok {
		for _, v := range a {
			if s, ok := v.(string); ok {
				msg.Attachments = append(msg.Attachments, s)
			}
		}
	}
	return msg
}

func userToRow(u *User) Row {
	return Row{
		"id": u.ID, "publicKey": u.PublicKey, "username": u.Username, "joinedAt": u.JoinedAt,
		"inviteCode": u.InviteCode, "avatar": u.Avatar, "status": u.Status,
	}
}

func rowToUser(r Row) *User {
	return &User{
		ID:         str(r["id"]),
		PublicKey:  str(r["publicKey"]),
		Username:   str(r["username"]),
		JoinedAt:   i64(r["joinedAt"]),
		InviteCode: strPtr(r["inviteCode"]),
		Avatar:     strPtr(r["avatar"]),
		Status:     strPtr(r["status"]),
	}
}

func roleToRow(r *Role) Row {
	return Row{
		"userId": r.UserID, "serverId": r.ServerID, "role": r.Role,
		"updatedAt": r.UpdatedAt, "updatedBy": r.UpdatedBy,
	}
}

func rowToRole(r Row) *Role {
	return &Role{
		UserID:    str(r["userId"]),
		ServerID:  str(r["serverId"]),
		Role:      str(r["role"]),
		UpdatedAt: i64(r["updatedAt"]),
		UpdatedBy: str(r["updatedBy"]),
	}
}

func inviteToRow(inv *Invite) Row {
	return Row{
		"id": hex.EncodeToString(inv.ID), "invite": hex.EncodeToString(inv.Invite),
		"publicKey": hex.EncodeToString(inv.PublicKey), "expires": inv.Expires,
		"serverId": inv.ServerID, "createdBy": inv.CreatedBy, "code": inv.Code,
		"revokedAt": inv.RevokedAt, "claimedBy": inv.ClaimedBy,
	}
}

func rowToInvite(r Row) *Invite {
	inv := &Invite{
		ID:        hexBytes(r["id"]),
		Invite:    hexBytes(r["invite"]),
		PublicKey: hexBytes(r["publicKey"]),
		Expires:   i64(r["expires"]),
		ServerID:  strPtr(r["serverId"]),
		CreatedBy: strPtr(r["createdBy"]),
		Code:      strPtr(r["code"]),
		RevokedAt: i64Ptr(r["revokedAt"]),
	}
	if c, ok := r["claimedBy"].([]string); ok {
		inv.ClaimedBy = c
	} else if c, ok := r["claimedBy"].([]interface{}); ok {
		for _, v := range c {
			if s, ok := v.(string); ok {
				inv.ClaimedBy = append(inv.ClaimedBy, s)
			}
		}
	}
	return inv
}

func str(v interface{}) string {
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

func strPtr(v interface{}) *string {
	switch p := v.(type) {
	case nil:
		return nil
	case *string:
		return p
	case string:
		return &p
	default:
		return nil
	}
}

func i64(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

func i64Ptr(v interface{}) *int64 {
	switch p := v.(type) {
	case nil:
		return nil
	case *int64:
		return p
	case int64:
		return &p
	case float64:
		n := int64(p)
		return &n
	default:
		return nil
	}
}

func hexBytes(v interface{}) []byte {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil
	}
	return b
}
