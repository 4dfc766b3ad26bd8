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

// Package validator implements the pure (action, view) -> bool
// authorization and structural checks of spec §4.4: one function per
// action kind, a closed role-to-permission mapping, and the signature
// check that gates every action but an optimistic claim-invite.
package validator

import "github.com/qalbehabib/syncbase/view"

// Permission is one of the closed set of capabilities a role may hold.
type Permission string

const (
	PermManageServer   Permission = "MANAGE_SERVER"
	PermManageChannels Permission = "MANAGE_CHANNELS"
	PermSendMessages   Permission = "SEND_MESSAGES"
	PermDeleteMessages Permission = "DELETE_MESSAGES"
	PermSetRole        Permission = "SET_ROLE"
	PermCreateInvites  Permission = "CREATE_INVITES"
	PermManageInvites  Permission = "MANAGE_INVITES"
	PermEditServer     Permission = "EDIT_SERVER"
	PermEditChannel    Permission = "EDIT_CHANNEL"
	PermDeleteChannel  Permission = "DELETE_CHANNEL"
)

// rolePermissions is the closed role -> permission-set mapping of spec §4.4.
var rolePermissions = map[string]map[Permission]struct{}{
	view.RoleOwner: set(
		PermManageServer, PermManageChannels, PermSendMessages, PermDeleteMessages,
		PermSetRole, PermCreateInvites, PermManageInvites, PermEditServer,
		PermEditChannel, PermDeleteChannel,
	),
	view.RoleAdmin: set(
		PermManageServer, PermManageChannels, PermSendMessages, PermDeleteMessages,
		PermSetRole, PermCreateInvites, PermManageInvites, PermEditChannel,
	),
	view.RoleModerator: set(
		PermSendMessages, PermDeleteMessages, PermCreateInvites, PermManageInvites,
	),
	view.RoleMember: set(PermSendMessages),
	view.RoleGuest:  set(),
}

func set(perms ...Permission) map[Permission]struct{} {
	m := make(map[Permission]struct{}, len(perms))
	for _, p := range perms {
		m[p] = struct{}{}
	}
	return m
}

// HasPermission reports whether role carries perm. An unknown role
// carries no permissions.
func HasPermission(role string, perm Permission) bool {
	perms, ok := rolePermissions[role]
	if !ok {
		return false
	}
	_, ok = perms[perm]
	return ok
}

// canSetRole implements the set-role authority rule of spec §4.4: OWNER
// may assign any role; ADMIN may assign MODERATOR or MEMBER only;
// every other role may not set-role at all.
func canSetRole(signerRole, targetRole string) bool {
	switch signerRole {
	case view.RoleOwner:
		return true
	case view.RoleAdmin:
		return targetRole == view.RoleModerator || targetRole == view.RoleMember
	default:
		return false
	}
}
