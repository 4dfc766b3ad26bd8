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
	"fmt"
	"strings"
)

// attachmentSep joins the attachments list into the single string the
// codec stores on the wire (spec §9 Open Question, resolved: transport
// is a list of opaque strings, storage MAY join them so long as
// encode/decode round-trips).
const attachmentSep = "\x1f"

// ServerPayload is the body of create-server / update-server. JSON
// tags fix the map[string]interface{} field names the crypto envelope
// carries (see PayloadToMap/PayloadFromMap in maps.go).
type ServerPayload struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	CreatedAt   int64   `json:"createdAt"`
	Description *string `json:"description,omitempty"`
	Avatar      *string `json:"avatar,omitempty"`
}

func (p *ServerPayload) encode() []byte {
	e := newEncoder()
	e.writeString(p.ID)
	e.writeString(p.Name)
	e.writeInt64(p.CreatedAt)
	e.writeOptString(p.Description)
	e.writeOptString(p.Avatar)
	return e.bytes()
}

func decodeServerPayload(b []byte) (*ServerPayload, error) {
	d := newDecoder(b)
	p := &ServerPayload{}
	var err error
	if p.ID, err = d.readString(); err != nil {
		return nil, err
	}
	if p.Name, err = d.readString(); err != nil {
		return nil, err
	}
	if p.CreatedAt, err = d.readInt64(); err != nil {
		return nil, err
	}
	if p.Description, err = d.readOptString(); err != nil {
		return nil, err
	}
	if p.Avatar, err = d.readOptString(); err != nil {
		return nil, err
	}
	if p.ID == "" || p.Name == "" {
		return nil, fmt.Errorf("%w: server requires id and name", ErrMalformedAction)
	}
	return p, nil
}

// ChannelPayload is the body of create-channel / update-channel / delete-channel.
type ChannelPayload struct {
	ID        string  `json:"id"`
	ChannelID string  `json:"channelId"`
	Name      string  `json:"name"`
	Type      string  `json:"type"`
	Topic     *string `json:"topic,omitempty"`
	CreatedBy string  `json:"createdBy"`
	CreatedAt int64   `json:"createdAt"`
	Position  int32   `json:"position"`
}

func (p *ChannelPayload) encode() []byte {
	e := newEncoder()
	e.writeString(p.ID)
	e.writeString(p.ChannelID)
	e.writeString(p.Name)
	e.writeString(p.Type)
	e.writeOptString(p.Topic)
	e.writeString(p.CreatedBy)
	e.writeInt64(p.CreatedAt)
	e.writeInt32(p.Position)
	return e.bytes()
}

func decodeChannelPayload(b []byte) (*ChannelPayload, error) {
	d := newDecoder(b)
	p := &ChannelPayload{}
	var err error
	if p.ID, err = d.readString(); err != nil {
		return nil, err
	}
	if p.ChannelID, err = d.readString(); err != nil {
		return nil, err
	}
	if p.Name, err = d.readString(); err != nil {
		return nil, err
	}
	if p.Type, err = d.readString(); err != nil {
		return nil, err
	}
	if p.Topic, err = d.readOptString(); err != nil {
		return nil, err
	}
	if p.CreatedBy, err = d.readString(); err != nil {
		return nil, err
	}
	if p.CreatedAt, err = d.readInt64(); err != nil {
		return nil, err
	}
	if p.Position, err = d.readInt32(); err != nil {
		return nil, err
	}
	if p.ChannelID == "" || p.Name == "" {
		return nil, fmt.Errorf("%w: channel requires channelId and name", ErrMalformedAction)
	}
	return p, nil
}

// MessagePayload is the body of send-message / edit-message / delete-message.
type MessagePayload struct {
	ID          string   `json:"id"`
	ChannelID   string   `json:"channelId"`
	Author      string   `json:"author"`
	Content     string   `json:"content"`
	Timestamp   int64    `json:"timestamp"`
	EditedAt    *int64   `json:"editedAt,omitempty"`
	DeletedAt   *int64   `json:"deletedAt,omitempty"`
	DeletedBy   *string  `json:"deletedBy,omitempty"`
	Attachments []string `json:"attachments,omitempty"`
}

func (p *MessagePayload) encode() []byte {
	e := newEncoder()
	e.writeString(p.ID)
	e.writeString(p.ChannelID)
	e.writeString(p.Author)
	e.writeString(p.Content)
	e.writeInt64(p.Timestamp)
	e.writeOptInt64(p.EditedAt)
	e.writeOptInt64(p.DeletedAt)
	e.writeOptString(p.DeletedBy)
	var joined *string
	if len(p.Attachments) > 0 {
		s := strings.Join(p.Attachments, attachmentSep)
		joined = &s
	}
	e.writeOptString(joined)
	return e.bytes()
}

func decodeMessagePayload(b []byte) (*MessagePayload, error) {
	d := newDecoder(b)
	p := &MessagePayload{}
	var err error
	if p.ID, err = d.readString(); err != nil {
		return nil, err
	}
	if p.ChannelID, err = d.readString(); err != nil {
		return nil, err
	}
	if p.Author, err = d.readString(); err != nil {
		return nil, err
	}
	if p.Content, err = d.readString(); err != nil {
		return nil, err
	}
	if p.Timestamp, err = d.readInt64(); err != nil {
		return nil, err
	}
	if p.EditedAt, err = d.readOptInt64(); err != nil {
		return nil, err
	}
	if p.DeletedAt, err = d.readOptInt64(); err != nil {
		return nil, err
	}
	if p.DeletedBy, err = d.readOptString(); err != nil {
		return nil, err
	}
	joined, err := d.readOptString()
	if err != nil {
		return nil, err
	}
	if joined != nil && *joined != "" {
		p.Attachments = strings.Split(*joined, attachmentSep)
	}
	if p.ID == "" || p.ChannelID == "" {
		return nil, fmt.Errorf("%w: message requires id and channelId", ErrMalformedAction)
	}
	return p, nil
}

// UserPayload is the body of claim-invite (its payload schema is "user").
type UserPayload struct {
	ID         string  `json:"id"`
	PublicKey  string  `json:"publicKey"`
	Username   string  `json:"username"`
	JoinedAt   int64   `json:"joinedAt"`
	InviteCode *string `json:"code,omitempty"`
	Avatar     *string `json:"avatar,omitempty"`
	Status     *string `json:"status,omitempty"`
}

func (p *UserPayload) encode() []byte {
	e := newEncoder()
	e.writeString(p.ID)
	e.writeString(p.PublicKey)
	e.writeString(p.Username)
	e.writeInt64(p.JoinedAt)
	e.writeOptString(p.InviteCode)
	e.writeOptString(p.Avatar)
	e.writeOptString(p.Status)
	return e.bytes()
}

func decodeUserPayload(b []byte) (*UserPayload, error) {
	d := newDecoder(b)
	p := &UserPayload{}
	var err error
	if p.ID, err = d.readString(); err != nil {
		return nil, err
	}
	if p.PublicKey, err = d.readString(); err != nil {
		return nil, err
	}
	if p.Username, err = d.readString(); err != nil {
		return nil, err
	}
	if p.JoinedAt, err = d.readInt64(); err != nil {
		return nil, err
	}
	if p.InviteCode, err = d.readOptString(); err != nil {
		return nil, err
	}
	if p.Avatar, err = d.readOptString(); err != nil {
		return nil, err
	}
	if p.Status, err = d.readOptString(); err != nil {
		return nil, err
	}
	if p.ID == "" {
		return nil, fmt.Errorf("%w: user requires id", ErrMalformedAction)
	}
	return p, nil
}

// RolePayload is the body of set-role.
type RolePayload struct {
	UserID    string `json:"userId"`
	ServerID  string `json:"serverId"`
	Role      string `json:"role"`
	UpdatedAt int64  `json:"updatedAt"`
	UpdatedBy string `json:"updatedBy"`
}

func (p *RolePayload) encode() []byte {
	e := newEncoder()
	e.writeString(p.UserID)
	e.writeString(p.ServerID)
	e.writeString(p.Role)
	e.writeInt64(p.UpdatedAt)
	e.writeString(p.UpdatedBy)
	return e.bytes()
}

func decodeRolePayload(b []byte) (*RolePayload, error) {
	d := newDecoder(b)
	p := &RolePayload{}
	var err error
	if p.UserID, err = d.readString(); err != nil {
		return nil, err
	}
	if p.ServerID, err = d.readString(); err != nil {
		return nil, err
	}
	if p.Role, err = d.readString(); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = d.readInt64(); err != nil {
		return nil, err
	}
	if p.UpdatedBy, err = d.readString(); err != nil {
		return nil, err
	}
	if p.UserID == "" || p.Role == "" {
		return nil, fmt.Errorf("%w: role requires userId and role", ErrMalformedAction)
	}
	return p, nil
}

// InvitePayload is the body of create-invite / revoke-invite. ID and
// PublicKey are raw bytes per spec §3 ("invite [id] (raw bytes)").
type InvitePayload struct {
	ID        []byte  `json:"id"`
	Invite    []byte  `json:"invite"`
	PublicKey []byte  `json:"publicKey"`
	Expires   int64   `json:"expires"`
	ServerID  *string `json:"serverId,omitempty"`
	CreatedBy *string `json:"createdBy,omitempty"`
	Code      *string `json:"code,omitempty"`
}

func (p *InvitePayload) encode() []byte {
	e := newEncoder()
	e.writeBytes(p.ID)
	e.writeBytes(p.Invite)
	e.writeBytes(p.PublicKey)
	e.writeInt64(p.Expires)
	e.writeOptString(p.ServerID)
	e.writeOptString(p.CreatedBy)
	e.writeOptString(p.Code)
	return e.bytes()
}

func decodeInvitePayload(b []byte) (*InvitePayload, error) {
	d := newDecoder(b)
	p := &InvitePayload{}
	var err error
	if p.ID, err = d.readBytes(); err != nil {
		return nil, err
	}
	if p.Invite, err = d.readBytes(); err != nil {
		return nil, err
	}
	if p.PublicKey, err = d.readBytes(); err != nil {
		return nil, err
	}
	if p.Expires, err = d.readInt64(); err != nil {
		return nil, err
	}
	if p.ServerID, err = d.readOptString(); err != nil {
		return nil, err
	}
	if p.CreatedBy, err = d.readOptString(); err != nil {
		return nil, err
	}
	if p.Code, err = d.readOptString(); err != nil {
		return nil, err
	}
	if len(p.ID) == 0 {
		return nil, fmt.Errorf("%w: invite requires id", ErrMalformedAction)
	}
	return p, nil
}
