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

package validator

import (
	"context"
	"encoding/hex"
	"errors"

	"github.com/qalbehabib/syncbase/codec"
	"github.com/qalbehabib/syncbase/crypto"
	"github.com/qalbehabib/syncbase/view"
)

// Action is the (envelope, decoded payload) pair the validator checks
// against the current view. Optimistic marks an entry the router
// accepted without a prior signature check (spec §4.4 allows this only
// for claim-invite).
type Action struct {
	Envelope   *crypto.Envelope
	Type       codec.ActionType
	Payload    interface{}
	Optimistic bool
}

func (a *Action) signerHex() string {
	return hex.EncodeToString(a.Envelope.Signer)
}

// Validate runs the structural and authorization check for a.Type
// against v, returning false (never an error) for any failed check;
// err is non-nil only for a view I/O failure unrelated to validity.
func Validate(ctx context.Context, a *Action, v *view.View) (bool, error) {
	if !(a.Optimistic && a.Type == codec.ClaimInvite) {
		if !crypto.VerifyEnvelope(a.Envelope) {
			return false, nil
		}
	}

	switch a.Type {
	case codec.CreateServer:
		return validateCreateServer(ctx, a, v)
	case codec.UpdateServer:
		return validateUpdateServer(ctx, a, v)
	case codec.CreateChannel:
		return validateCreateChannel(ctx, a, v)
	case codec.UpdateChannel:
		return validateUpdateChannel(ctx, a, v)
	case codec.DeleteChannel:
		return validateDeleteChannel(ctx, a, v)
	case codec.SendMessage:
		return validateSendMessage(ctx, a, v)
	case codec.EditMessage:
		return validateEditMessage(ctx, a, v)
	case codec.DeleteMessage:
		return validateDeleteMessage(ctx, a, v)
	case codec.SetRole:
		return validateSetRole(ctx, a, v)
	case codec.CreateInvite:
		return validateCreateInvite(ctx, a, v)
	case codec.ClaimInvite:
		return validateClaimInvite(ctx, a, v)
	case codec.RevokeInvite:
		return validateRevokeInvite(ctx, a, v)
	default:
		return false, nil
	}
}

// signerRole fetches the signer's current role, defaulting to an empty
// (no-permission) role if the signer has never been assigned one.
func signerRole(ctx context.Context, v *view.View, signer string) string {
	r, err := v.GetRole(ctx, signer)
	if err != nil {
		return ""
	}
	return r.Role
}

func notFound(err error) bool {
	return errors.Is(err, view.ErrNotFound)
}

func validateCreateServer(ctx context.Context, a *Action, v *view.View) (bool, error) {
	p, ok := a.Payload.(*codec.ServerPayload)
	if !ok || p.ID == "" || p.Name == "" {
		return false, nil
	}
	has, err := v.HasServer(ctx)
	if err != nil {
		return false, err
	}
	return !has, nil
}

func validateUpdateServer(ctx context.Context, a *Action, v *view.View) (bool, error) {
	p, ok := a.Payload.(*codec.ServerPayload)
	if !ok || p.ID == "" {
		return false, nil
	}
	if _, err := v.GetServer(ctx, p.ID); err != nil {
		if notFound(err) {
			return false, nil
		}
		return false, err
	}
	role := signerRole(ctx, v, a.signerHex())
	return HasPermission(role, PermManageServer), nil
}

func validateCreateChannel(ctx context.Context, a *Action, v *view.View) (bool, error) {
	p, ok := a.Payload.(*codec.ChannelPayload)
	if !ok || p.ChannelID == "" || p.Name == "" {
		return false, nil
	}
	has, err := v.HasServer(ctx)
	if err != nil {
		return false, err
	}
	if !has {
		return false, nil
	}
	role := signerRole(ctx, v, a.signerHex())
	return HasPermission(role, PermManageChannels), nil
}

func validateUpdateChannel(ctx context.Context, a *Action, v *view.View) (bool, error) {
	p, ok := a.Payload.(*codec.ChannelPayload)
	if !ok || p.ChannelID == "" {
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
	role := signerRole(ctx, v, a.signerHex())
	return HasPermission(role, PermManageChannels), nil
}

func validateDeleteChannel(ctx context.Context, a *Action, v *view.View) (bool, error) {
	p, ok := a.Payload.(*codec.ChannelPayload)
	if !ok || p.ChannelID == "" {
		return false, nil
	}
	if _, err := v.GetChannel(ctx, p.ChannelID); err != nil {
		if notFound(err) {
			return false, nil
		}
		return false, err
	}
	role := signerRole(ctx, v, a.signerHex())
	return HasPermission(role, PermManageChannels), nil
}

func validateSendMessage(ctx context.Context, a *Action, v *view.View) (bool, error) {
	p, ok := a.Payload.(*codec.MessagePayload)
	if !ok || p.ID == "" || p.ChannelID == "" || p.Content == "" || p.Timestamp == 0 {
		return false, nil
	}
	if _, err := v.GetChannel(ctx, p.ChannelID); err != nil {
		if notFound(err) {
			return false, nil
		}
		return false, err
	}
	role := signerRole(ctx, v, a.signerHex())
	return HasPermission(role, PermSendMessages), nil
}

func validateEditMessage(ctx context.Context, a *Action, v *view.View) (bool, error) {
	p, ok := a.Payload.(*codec.MessagePayload)
	if !ok || p.ID == "" || p.ChannelID == "" {
		return false, nil
	}
	existing, err := v.GetMessage(ctx, p.ChannelID, p.ID)
	if err != nil {
		if notFound(err) {
			return false, nil
		}
		return false, err
	}
	return existing.Author == a.signerHex(), nil
}

func validateDeleteMessage(ctx context.Context, a *Action, v *view.View) (bool, error) {
	p, ok := a.Payload.(*codec.MessagePayload)
	if !ok || p.ID == "" || p.ChannelID == "" {
		return false, nil
	}
	existing, err := v.GetMessage(ctx, p.ChannelID, p.ID)
	if err != nil {
		if notFound(err) {
			return false, nil
		}
		return false, err
	}
	if existing.Author == a.signerHex() {
		return true, nil
	}
	role := signerRole(ctx, v, a.signerHex())
	return HasPermission(role, PermDeleteMessages), nil
}

func validateSetRole(ctx context.Context, a *Action, v *view.View) (bool, error) {
	p, ok := a.Payload.(*codec.RolePayload)
	if !ok || p.UserID == "" || p.Role == "" {
		return false, nil
	}
	has, err := v.HasServer(ctx)
	if err != nil {
		return false, err
	}
	if !has {
		return false, nil
	}
	role := signerRole(ctx, v, a.signerHex())
	return canSetRole(role, p.Role), nil
}

func validateCreateInvite(ctx context.Context, a *Action, v *view.View) (bool, error) {
	p, ok := a.Payload.(*codec.InvitePayload)
	if !ok || len(p.ID) == 0 {
		return false, nil
	}
	has, err := v.HasServer(ctx)
	if err != nil {
		return false, err
	}
	if !has {
		return false, nil
	}
	if _, err := v.GetInvite(ctx, p.ID); err == nil {
		return false, nil
	} else if !notFound(err) {
		return false, err
	}
	role := signerRole(ctx, v, a.signerHex())
	return HasPermission(role, PermCreateInvites), nil
}

// validateClaimInvite implements spec §4.6's claim flow: the claimant
// carries user.code = hex(inviteId), the only handle it has to the
// invite it is redeeming.
func validateClaimInvite(ctx context.Context, a *Action, v *view.View) (bool, error) {
	p, ok := a.Payload.(*codec.UserPayload)
	if !ok || p.ID == "" || p.InviteCode == nil {
		return false, nil
	}
	id, err := hex.DecodeString(*p.InviteCode)
	if err != nil {
		return false, nil
	}
	inv, err := v.GetInvite(ctx, id)
	if err != nil {
		if notFound(err) {
			return false, nil
		}
		return false, err
	}
	if inv.RevokedAt != nil {
		return false, nil
	}
	if inv.Expires != 0 && p.JoinedAt > inv.Expires {
		return false, nil
	}
	has, err := v.HasUser(ctx, p.ID)
	if err != nil {
		return false, err
	}
	return !has, nil
}

func validateRevokeInvite(ctx context.Context, a *Action, v *view.View) (bool, error) {
	p, ok := a.Payload.(*codec.InvitePayload)
	if !ok || len(p.ID) == 0 {
		return false, nil
	}
	if _, err := v.GetInvite(ctx, p.ID); err != nil {
		if notFound(err) {
			return false, nil
		}
		return false, err
	}
	role := signerRole(ctx, v, a.signerHex())
	return HasPermission(role, PermManageInvites), nil
}
