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

package instance

import (
	"context"
	"errors"

	"github.com/qalbehabib/syncbase/codec"
	"github.com/qalbehabib/syncbase/crypto"
	"github.com/qalbehabib/syncbase/invite"
	"github.com/qalbehabib/syncbase/syncerr"
	"github.com/qalbehabib/syncbase/validator"
	"github.com/qalbehabib/syncbase/view"
)

// Every write API below builds a payload, signs it via AppendAction,
// and returns as soon as the entry is appended — the authoritative
// state appears only after the apply loop processes it (spec §4.7).
// Permission is still checked here, against the local view's current
// snapshot, so a caller lacking the role gets an immediate
// syncerr.KindUnauthorized rather than a silently-dropped entry (spec
// §7: "permission-denied is always explicit").

// Initialize appends create-server for this instance's one server row
// (idempotent at apply time if one already exists) and grants this
// signer the OWNER role.
func (in *Instance) Initialize(ctx context.Context, name string, description *string) error {
	id, err := crypto.GenerateID(16)
	if err != nil {
		return syncerr.New(syncerr.KindInternal, "instance.Initialize", err)
	}
	payload := map[string]interface{}{
		"id":        id,
		"name":      name,
		"createdAt": crypto.NowMillis(),
	}
	if description != nil {
		payload["description"] = *description
	}
	return in.AppendAction(ctx, codec.CreateServer, payload)
}

// GetServerInfo returns the single server row, or NotFound before
// Initialize's action has been applied.
func (in *Instance) GetServerInfo(ctx context.Context) (*view.Server, error) {
	s, err := in.v.GetTheServer(ctx)
	if err != nil {
		return nil, translateViewErr("instance.GetServerInfo", err)
	}
	return s, nil
}

// requirePermission fetches the local signer's currently-applied role
// and fails closed with KindUnauthorized if it lacks perm.
func (in *Instance) requirePermission(ctx context.Context, op string, perm validator.Permission) error {
	ok, err := in.HasPermission(ctx, perm)
	if err != nil {
		return err
	}
	if !ok {
		return syncerr.New(syncerr.KindUnauthorized, op, nil)
	}
	return nil
}

// HasPermission reports whether this instance's signer currently
// carries perm, per its last-applied role (spec §4.7's
// `has_permission(perm)`).
func (in *Instance) HasPermission(ctx context.Context, perm validator.Permission) (bool, error) {
	role, err := in.v.GetRole(ctx, in.SignerHex())
	if err != nil {
		if errors.Is(err, view.ErrNotFound) {
			return false, nil
		}
		return false, syncerr.New(syncerr.KindInternal, "instance.HasPermission", err)
	}
	return validator.HasPermission(role.Role, perm), nil
}

// CreateChannel appends create-channel and returns the projected
// channelId (the authoritative row, including whether the name
// collided with an existing channel, appears only after apply).
func (in *Instance) CreateChannel(ctx context.Context, name, channelType string, topic *string) (string, error) {
	if err := in.requirePermission(ctx, "instance.CreateChannel", validator.PermManageChannels); err != nil {
		return "", err
	}
	channelID, err := crypto.GenerateID(16)
	if err != nil {
		return "", syncerr.New(syncerr.KindInternal, "instance.CreateChannel", err)
	}
	payload := map[string]interface{}{
		"id":        channelID,
		"channelId": channelID,
		"name":      name,
		"type":      channelType,
		"createdBy": in.SignerHex(),
		"createdAt": crypto.NowMillis(),
	}
	if topic != nil {
		payload["topic"] = *topic
	}
	if err := in.AppendAction(ctx, codec.CreateChannel, payload); err != nil {
		return "", err
	}
	return channelID, nil
}

// UpdateChannel appends update-channel; nil fields leave the existing
// row's value unchanged at apply time.
func (in *Instance) UpdateChannel(ctx context.Context, channelID string, name, topic *string, position *int32) error {
	if err := in.requirePermission(ctx, "instance.UpdateChannel", validator.PermManageChannels); err != nil {
		return err
	}
	payload := map[string]interface{}{"channelId": channelID}
	if name != nil {
		payload["name"] = *name
	}
	if topic != nil {
		payload["topic"] = *topic
	}
	if position != nil {
		payload["position"] = *position
	}
	return in.AppendAction(ctx, codec.UpdateChannel, payload)
}

// DeleteChannel appends delete-channel.
func (in *Instance) DeleteChannel(ctx context.Context, channelID string) error {
	if err := in.requirePermission(ctx, "instance.DeleteChannel", validator.PermManageChannels); err != nil {
		return err
	}
	return in.AppendAction(ctx, codec.DeleteChannel, map[string]interface{}{"channelId": channelID})
}

// GetChannel returns channelID's row, or NotFound.
func (in *Instance) GetChannel(ctx context.Context, channelID string) (*view.Channel, error) {
	c, err := in.v.GetChannel(ctx, channelID)
	if err != nil {
		return nil, translateViewErr("instance.GetChannel", err)
	}
	return c, nil
}

// ListChannels returns every channel row.
func (in *Instance) ListChannels(ctx context.Context) ([]*view.Channel, error) {
	cs, err := in.v.ListChannels(ctx)
	if err != nil {
		return nil, syncerr.New(syncerr.KindInternal, "instance.ListChannels", err)
	}
	return cs, nil
}

// SendMessage appends send-message and returns the projected message
// id; author is stamped from the signer at apply time, not from this
// payload (spec §8: "m.author = signer_of(originating_send_message(m))").
func (in *Instance) SendMessage(ctx context.Context, channelID, content string, attachments []string) (string, error) {
	if err := in.requirePermission(ctx, "instance.SendMessage", validator.PermSendMessages); err != nil {
		return "", err
	}
	id, err := crypto.GenerateID(16)
	if err != nil {
		return "", syncerr.New(syncerr.KindInternal, "instance.SendMessage", err)
	}
	payload := map[string]interface{}{
		"id":        id,
		"channelId": channelID,
		"content":   content,
		"timestamp": crypto.NowMillis(),
	}
	if len(attachments) > 0 {
		payload["attachments"] = attachments
	}
	if err := in.AppendAction(ctx, codec.SendMessage, payload); err != nil {
		return "", err
	}
	return id, nil
}

// EditMessage appends edit-message. Ownership (signer == author) is
// enforced by the validator at apply time, not pre-checked here, since
// it depends on the target row rather than the signer's role.
func (in *Instance) EditMessage(ctx context.Context, channelID, messageID, content string) error {
	payload := map[string]interface{}{
		"id":        messageID,
		"channelId": channelID,
		"content":   content,
		"timestamp": crypto.NowMillis(),
	}
	return in.AppendAction(ctx, codec.EditMessage, payload)
}

// DeleteMessage appends delete-message (soft delete).
func (in *Instance) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	payload := map[string]interface{}{
		"id":        messageID,
		"channelId": channelID,
		"timestamp": crypto.NowMillis(),
	}
	return in.AppendAction(ctx, codec.DeleteMessage, payload)
}

// GetMessages returns every message in channelID (spec §8 scenario 2:
// "get_messages{X} returns one row").
func (in *Instance) GetMessages(ctx context.Context, channelID string) ([]*view.Message, error) {
	ms, err := in.v.ListMessages(ctx, channelID)
	if err != nil {
		return nil, syncerr.New(syncerr.KindInternal, "instance.GetMessages", err)
	}
	return ms, nil
}

// SetRole appends set-role for userID. The signer must carry SET_ROLE;
// which target roles it may assign (OWNER any, ADMIN only
// MODERATOR/MEMBER) is enforced by the validator at apply time against
// the signer's own role.
func (in *Instance) SetRole(ctx context.Context, userID, role string) error {
	if err := in.requirePermission(ctx, "instance.SetRole", validator.PermSetRole); err != nil {
		return err
	}
	server, err := in.GetServerInfo(ctx)
	if err != nil {
		return err
	}
	payload := map[string]interface{}{
		"userId":    userID,
		"serverId":  server.ID,
		"role":      role,
		"updatedAt": crypto.NowMillis(),
	}
	return in.AppendAction(ctx, codec.SetRole, payload)
}

// CreateInvite mints an invite and appends create-invite, returning
// the transportable token (spec §4.6's create flow).
func (in *Instance) CreateInvite(ctx context.Context, expiresInMinutes int) (*invite.Invite, error) {
	if err := in.requirePermission(ctx, "instance.CreateInvite", validator.PermCreateInvites); err != nil {
		return nil, err
	}
	server, err := in.GetServerInfo(ctx)
	var serverID *string
	if err == nil {
		serverID = &server.ID
	}
	inv, err := in.invites.Create(ctx, serverID, expiresInMinutes)
	if err != nil {
		return nil, syncerr.New(syncerr.KindInternal, "instance.CreateInvite", err)
	}
	return inv, nil
}

// ClaimInvite appends claim-invite for token under username, without
// itself running the blind-pairing handshake — use Join when the
// candidate still needs to derive session keys from an open Transport.
func (in *Instance) ClaimInvite(ctx context.Context, token, username string) (*invite.Invite, error) {
	inv, err := in.invites.Claim(ctx, token, in.signer, username)
	if err != nil {
		if errors.Is(err, invite.ErrExpired) {
			return nil, syncerr.New(syncerr.KindExpired, "instance.ClaimInvite", err)
		}
		return nil, syncerr.New(syncerr.KindMalformedAction, "instance.ClaimInvite", err)
	}
	return inv, nil
}

// RevokeInvite appends revoke-invite for id.
func (in *Instance) RevokeInvite(ctx context.Context, id []byte) error {
	if err := in.requirePermission(ctx, "instance.RevokeInvite", validator.PermManageInvites); err != nil {
		return err
	}
	if err := in.invites.Revoke(ctx, id); err != nil {
		return syncerr.New(syncerr.KindInternal, "instance.RevokeInvite", err)
	}
	return nil
}

func translateViewErr(op string, err error) error {
	if errors.Is(err, view.ErrNotFound) {
		return syncerr.New(syncerr.KindNotFound, op, err)
	}
	return syncerr.New(syncerr.KindInternal, op, err)
}
