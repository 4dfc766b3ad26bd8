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

package router

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/qalbehabib/syncbase/codec"
	"github.com/qalbehabib/syncbase/crypto"
	"github.com/qalbehabib/syncbase/internal/metrics"
	"github.com/qalbehabib/syncbase/view"
)

func hexDecode(s string) ([]byte, error) { return hex.DecodeString(s) }

// dispatch executes the per-type handler for an already-validated
// action (spec §4.5 step 2d). applied is false only for a genuine
// handler-level refusal (e.g. a channel name collision); err is
// non-nil only for a view I/O failure.
func dispatch(ctx context.Context, v *view.View, t codec.ActionType, signerHex string, payload interface{}) (bool, error) {
	switch t {
	case codec.CreateServer:
		return applyCreateServer(ctx, v, signerHex, payload)
	case codec.UpdateServer:
		return applyUpdateServer(ctx, v, payload)
	case codec.CreateChannel:
		return applyCreateChannel(ctx, v, payload)
	case codec.UpdateChannel:
		return applyUpdateChannel(ctx, v, payload)
	case codec.DeleteChannel:
		return applyDeleteChannel(ctx, v, payload)
	case codec.SendMessage:
		return applySendMessage(ctx, v, signerHex, payload)
	case codec.EditMessage:
		return applyEditMessage(ctx, v, payload)
	case codec.DeleteMessage:
		return applyDeleteMessage(ctx, v, signerHex, payload)
	case codec.SetRole:
		return applySetRole(ctx, v, signerHex, payload)
	case codec.CreateInvite:
		return applyCreateInvite(ctx, v, signerHex, payload)
	case codec.ClaimInvite:
		return applyClaimInvite(ctx, v, payload)
	case codec.RevokeInvite:
		return applyRevokeInvite(ctx, v, payload)
	default:
		return false, fmt.Errorf("router: no handler for action type %d", t)
	}
}

func notFound(err error) bool { return errors.Is(err, view.ErrNotFound) }

func conflict(err error) bool { return errors.Is(err, view.ErrPrimaryKeyConflict) }

// applyCreateServer is a no-op if the server row already exists
// (spec §4.5 "create-server: no-op if a server already exists");
// otherwise it inserts the server, the signer's user row, and an
// OWNER role for the signer.
func applyCreateServer(ctx context.Context, v *view.View, signerHex string, payload interface{}) (bool, error) {
	p, ok := payload.(*codec.ServerPayload)
	if !ok {
		return false, nil
	}
	has, err := v.HasServer(ctx)
	if err != nil {
		return false, err
	}
	if has {
		return true, nil
	}

	s := &view.Server{ID: p.ID, Name: p.Name, CreatedAt: p.CreatedAt, Description: p.Description, Avatar: p.Avatar}
	if err := v.CreateServer(ctx, s); err != nil && !conflict(err) {
		return false, err
	}

	now := crypto.NowMillis()
	u := &view.User{ID: signerHex, PublicKey: signerHex, Username: defaultUsername(signerHex), JoinedAt: now}
	if err := v.CreateUser(ctx, u); err != nil && !conflict(err) {
		return false, err
	}

	role := &view.Role{UserID: signerHex, ServerID: p.ID, Role: view.RoleOwner, UpdatedAt: now, UpdatedBy: signerHex}
	return true, v.SetRole(ctx, role)
}

func applyUpdateServer(ctx context.Context, v *view.View, payload interface{}) (bool, error) {
	p, ok := payload.(*codec.ServerPayload)
	if !ok {
		return false, nil
	}
	existing, err := v.GetServer(ctx, p.ID)
	if err != nil {
		if notFound(err) {
			return false, nil
		}
		return false, err
	}
	merged := *existing
	if p.Name != "" {
		merged.Name = p.Name
	}
	if p.Description != nil {
		merged.Description = p.Description
	}
	if p.Avatar != nil {
		merged.Avatar = p.Avatar
	}
	return true, v.UpdateServer(ctx, &merged)
}

// applyCreateChannel no-ops on an existing channelId and refuses
// (applied=false) on a colliding name (spec §4.5).
func applyCreateChannel(ctx context.Context, v *view.View, payload interface{}) (bool, error) {
	p, ok := payload.(*codec.ChannelPayload)
	if !ok {
		return false, nil
	}
	if _, err := v.GetChannel(ctx, p.ChannelID); err == nil {
		return true, nil
	} else if !notFound(err) {
		return false, err
	}
	if other, err := v.FindChannelByName(ctx, p.Name); err == nil && other.ChannelID != p.ChannelID {
		return false, nil
	} else if err != nil && !notFound(err) {
		return false, err
	}

	c := &view.Channel{
		ID: p.ID, ChannelID: p.ChannelID, Name: p.Name, Type: p.Type,
		Topic: p.Topic, CreatedBy: p.CreatedBy, CreatedAt: p.CreatedAt, Position: p.Position,
	}
	if err := v.CreateChannel(ctx, c); err != nil && !conflict(err) {
		return false, err
	}
	return true, nil
}

func applyUpdateChannel(ctx context.Context, v *view.View, payload interface{}) (bool, error) {
	p, ok := payload.(*codec.ChannelPayload)
	if !ok {
		return false, nil
	}
	existing, err := v.GetChannel(ctx, p.ChannelID)
	if err != nil {
		if notFound(err) {
			return false, nil
		}
		return false, err
	}
	if p.Name != "" && p.Name != existing.Name {
		if other, err := v.FindChannelByName(ctx, p.Name); err == nil && other.ChannelID != p.ChannelID {
			return false, nil
		} else if err != nil && !notFound(err) {
			return false, err
		}
	}

	merged := *existing
	if p.Name != "" {
		merged.Name = p.Name
	}
	if p.Type != "" {
		merged.Type = p.Type
	}
	if p.Topic != nil {
		merged.Topic = p.Topic
	}
	merged.Position = p.Position
	return true, v.UpdateChannel(ctx, &merged)
}

func applyDeleteChannel(ctx context.Context, v *view.View, payload interface{}) (bool, error) {
	p, ok := payload.(*codec.ChannelPayload)
	if !ok {
		return false, nil
	}
	return true, v.DeleteChannel(ctx, p.ChannelID)
}

func applySendMessage(ctx context.Context, v *view.View, signerHex string, payload interface{}) (bool, error) {
	p, ok := payload.(*codec.MessagePayload)
	if !ok {
		return false, nil
	}
	if _, err := v.GetMessage(ctx, p.ChannelID, p.ID); err == nil {
		return true, nil
	} else if !notFound(err) {
		return false, err
	}
	m := &view.Message{
		ID: p.ID, ChannelID: p.ChannelID, Author: signerHex, Content: p.Content,
		Timestamp: p.Timestamp, Attachments: p.Attachments,
	}
	if err := v.CreateMessage(ctx, m); err != nil && !conflict(err) {
		return false, err
	}
	return true, nil
}

// applyEditMessage rewrites the row and stamps editedAt (soft-edit,
// the message row is never deleted).
func applyEditMessage(ctx context.Context, v *view.View, payload interface{}) (bool, error) {
	p, ok := payload.(*codec.MessagePayload)
	if !ok {
		return false, nil
	}
	existing, err := v.GetMessage(ctx, p.ChannelID, p.ID)
	if err != nil {
		if notFound(err) {
			return false, nil
		}
		return false, err
	}
	merged := *existing
	if p.Content != "" {
		merged.Content = p.Content
	}
	editedAt := p.Timestamp
	merged.EditedAt = &editedAt
	return true, v.UpdateMessage(ctx, &merged)
}

// applyDeleteMessage soft-deletes: deletedAt/deletedBy are stamped,
// the row stays (spec §4.5 "soft-delete via deletedAt is the accepted
// pattern").
func applyDeleteMessage(ctx context.Context, v *view.View, signerHex string, payload interface{}) (bool, error) {
	p, ok := payload.(*codec.MessagePayload)
	if !ok {
		return false, nil
	}
	existing, err := v.GetMessage(ctx, p.ChannelID, p.ID)
	if err != nil {
		if notFound(err) {
			return false, nil
		}
		return false, err
	}
	merged := *existing
	deletedAt := p.Timestamp
	merged.DeletedAt = &deletedAt
	by := signerHex
	merged.DeletedBy = &by
	return true, v.UpdateMessage(ctx, &merged)
}

func applySetRole(ctx context.Context, v *view.View, signerHex string, payload interface{}) (bool, error) {
	p, ok := payload.(*codec.RolePayload)
	if !ok {
		return false, nil
	}
	role := &view.Role{UserID: p.UserID, ServerID: p.ServerID, Role: p.Role, UpdatedAt: p.UpdatedAt, UpdatedBy: signerHex}
	return true, v.SetRole(ctx, role)
}

func applyCreateInvite(ctx context.Context, v *view.View, signerHex string, payload interface{}) (bool, error) {
	p, ok := payload.(*codec.InvitePayload)
	if !ok {
		return false, nil
	}
	if _, err := v.GetInvite(ctx, p.ID); err == nil {
		return true, nil
	} else if !notFound(err) {
		return false, err
	}
	createdBy := signerHex
	inv := &view.Invite{
		ID: p.ID, Invite: p.Invite, PublicKey: p.PublicKey, Expires: p.Expires,
		ServerID: p.ServerID, CreatedBy: &createdBy, Code: p.Code,
	}
	if err := v.CreateInvite(ctx, inv); err != nil && !conflict(err) {
		return false, err
	}
	metrics.InvitesCreated.Inc()
	metrics.ActiveInvites.Inc()
	return true, nil
}

// applyClaimInvite is idempotent by signer (spec §4.5): a user row
// already present for the claimant means the claim already landed.
func applyClaimInvite(ctx context.Context, v *view.View, payload interface{}) (bool, error) {
	p, ok := payload.(*codec.UserPayload)
	if !ok {
		return false, nil
	}
	has, err := v.HasUser(ctx, p.ID)
	if err != nil {
		return false, err
	}
	if has {
		return true, nil
	}

	u := &view.User{
		ID: p.ID, PublicKey: p.PublicKey, Username: p.Username, JoinedAt: p.JoinedAt,
		InviteCode: p.InviteCode, Avatar: p.Avatar, Status: p.Status,
	}
	if err := v.CreateUser(ctx, u); err != nil {
		if !conflict(err) {
			return false, err
		}
		return true, nil
	}

	serverID, err := claimServerID(ctx, v, p)
	if err != nil {
		return false, err
	}
	role := &view.Role{UserID: p.ID, ServerID: serverID, Role: view.RoleMember, UpdatedAt: p.JoinedAt, UpdatedBy: p.ID}
	if err := v.SetRole(ctx, role); err != nil {
		return false, err
	}
	metrics.InvitesClaimed.Inc()
	return true, nil
}

// claimServerID resolves the server the claimant is joining: the
// invite's own serverId field, falling back to the instance's single
// server row (every invite belongs to the one server a View holds).
func claimServerID(ctx context.Context, v *view.View, p *codec.UserPayload) (string, error) {
	if p.InviteCode != nil {
		if id, err := hexDecode(*p.InviteCode); err == nil {
			if inv, err := v.GetInvite(ctx, id); err == nil && inv.ServerID != nil {
				return *inv.ServerID, nil
			}
		}
	}
	s, err := v.GetTheServer(ctx)
	if err != nil {
		return "", nil
	}
	return s.ID, nil
}

func applyRevokeInvite(ctx context.Context, v *view.View, payload interface{}) (bool, error) {
	p, ok := payload.(*codec.InvitePayload)
	if !ok {
		return false, nil
	}
	inv, err := v.GetInvite(ctx, p.ID)
	if err != nil {
		if notFound(err) {
			return false, nil
		}
		return false, err
	}
	now := crypto.NowMillis()
	inv.RevokedAt = &now
	if err := v.UpdateInvite(ctx, inv); err != nil {
		return false, err
	}
	metrics.InvitesRevoked.Inc()
	metrics.ActiveInvites.Dec()
	return true, nil
}

func defaultUsername(signerHex string) string {
	n := 8
	if len(signerHex) < n {
		n = len(signerHex)
	}
	return "user-" + signerHex[:n]
}
