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

// Server is the single per-instance guild row (spec §3).
type Server struct {
	ID          string
	Name        string
	CreatedAt   int64
	Description *string
	Avatar      *string
}

// Channel row; Name is unique within the server (the create-channel
// handler refuses a colliding name, and the validator rejects a
// colliding rename).
type Channel struct {
	ID        string
	ChannelID string
	Name      string
	Type      string
	Topic     *string
	CreatedBy string
	CreatedAt int64
	Position  int32
}

// Message row, keyed by (ID, ChannelID). DeletedAt marks a soft delete.
type Message struct {
	ID          string
	ChannelID   string
	Author      string
	Content     string
	Timestamp   int64
	EditedAt    *int64
	DeletedAt   *int64
	DeletedBy   *string
	Attachments []string
}

// User row, created exactly once per admitted signer.
type User struct {
	ID         string
	PublicKey  string
	Username   string
	JoinedAt   int64
	InviteCode *string
	Avatar     *string
	Status     *string
}

const (
	RoleOwner     = "OWNER"
	RoleAdmin     = "ADMIN"
	RoleModerator = "MODERATOR"
	RoleMember    = "MEMBER"
	RoleGuest     = "GUEST"
)

// Role is the exactly-one-per-user role assignment.
type Role struct {
	UserID    string
	ServerID  string
	Role      string
	UpdatedAt int64
	UpdatedBy string
}

// Invite row. ID is raw bytes hex-encoded for use as a Store key.
type Invite struct {
	ID        []byte
	Invite    []byte
	PublicKey []byte
	Expires   int64
	ServerID  *string
	CreatedBy *string
	Code      *string

	RevokedAt *int64
	ClaimedBy []string
}

const (
	collServer  = "server"
	collChannel = "channel"
	collMessage = "message"
	collUser    = "user"
	collRole    = "role"
	collInvite  = "invite"
)
