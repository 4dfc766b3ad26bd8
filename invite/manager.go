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

package invite

import (
	"context"
	"encoding/hex"
	"errors"
	"sync"

	"github.com/qalbehabib/syncbase/codec"
	"github.com/qalbehabib/syncbase/crypto"
	"github.com/qalbehabib/syncbase/internal/metrics"
	"github.com/qalbehabib/syncbase/view"
)

// ErrExpired is returned by Claim when the decoded token's expiry has
// already passed at the local wall clock.
var ErrExpired = errors.New("invite: expired")

// Host is the narrow borrow InviteMgr needs from its owning instance
// (spec §9's re-architecture note: components hold a handle to the
// instance exposing only append_action / view_read / current_signer,
// never the reverse). The instance package implements this.
type Host interface {
	AppendAction(ctx context.Context, actionType codec.ActionType, payload map[string]interface{}) error
	View() *view.View
	CurrentSigner() *crypto.KeyPair
}

// Manager is the InviteMgr component of spec §4.6: it turns a Generate
// result into a signed create-invite action, turns a token back into a
// claim-invite action, and answers lifecycle questions (revoked,
// expired) against the View.
//
// keypairs holds, per invite this Manager created, the one-shot Ed25519
// keypair Generate minted for it. That keypair is never appended to the
// log — every other peer only ever sees its public half via the invite
// row — so an admitting instance must keep it in local memory to sign
// the accept message of a future pairing handshake (spec §4.6).
type Manager struct {
	host Host

	mu       sync.Mutex
	keypairs map[string]*crypto.KeyPair // hex(invite id) -> keypair
}

func NewManager(host Host) *Manager {
	return &Manager{host: host, keypairs: make(map[string]*crypto.KeyPair)}
}

// Create generates an invite, appends create-invite, and returns the
// transportable token. serverID is optional: omitted, a single-server
// instance's claim flow falls back to its one server row.
func (m *Manager) Create(ctx context.Context, serverID *string, expiresInMinutes int) (*Invite, error) {
	inv, kp, err := Generate(expiresInMinutes)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.keypairs[hex.EncodeToString(inv.ID)] = kp
	m.mu.Unlock()

	createdBy := hex.EncodeToString(m.host.CurrentSigner().PublicKey())
	payload := map[string]interface{}{
		"id":        inv.ID,
		"invite":    inv.Raw(),
		"publicKey": inv.PublicKey,
		"expires":   inv.Expires,
		"createdBy": createdBy,
	}
	if serverID != nil {
		payload["serverId"] = *serverID
	}
	if err := m.host.AppendAction(ctx, codec.CreateInvite, payload); err != nil {
		return nil, err
	}
	return inv, nil
}

// Revoke appends revoke-invite for the given invite id and forgets its
// local keypair, so no further admission can be completed for it.
func (m *Manager) Revoke(ctx context.Context, id []byte) error {
	if err := m.host.AppendAction(ctx, codec.RevokeInvite, map[string]interface{}{"id": id}); err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.keypairs, hex.EncodeToString(id))
	m.mu.Unlock()
	return nil
}

// Claim decodes token, checks the invite's local lifecycle state, and
// appends claim-invite on behalf of signer — the joining peer's own
// keypair, not the invite's blind-pairing key (spec §4.6's claim flow:
// "Append claim-invite {user.id=signerHex, user.code=hex(inviteId)}").
// Pairing (matching candidate to invite, exchanging the shared log key)
// happens before Claim is ever called; Claim only performs the
// log-level membership half.
func (m *Manager) Claim(ctx context.Context, token string, signer *crypto.KeyPair, username string) (*Invite, error) {
	id, publicKey, expires, err := DecodeToken(token)
	if err != nil {
		return nil, err
	}
	now := crypto.NowMillis()
	if expires != 0 && now > expires {
		metrics.InvitesExpired.Inc()
		return nil, ErrExpired
	}
	signerHex := hex.EncodeToString(signer.PublicKey())
	code := hex.EncodeToString(id)
	payload := map[string]interface{}{
		"id":        signerHex,
		"publicKey": signerHex,
		"username":  username,
		"joinedAt":  now,
		"code":      code,
	}
	if err := m.host.AppendAction(ctx, codec.ClaimInvite, payload); err != nil {
		return nil, err
	}
	return &Invite{ID: id, PublicKey: publicKey, Expires: expires, Token: token}, nil
}

// Lookup returns the invite row an id resolves to in the local view.
func (m *Manager) Lookup(ctx context.Context, id []byte) (*view.Invite, error) {
	return m.host.View().GetInvite(ctx, id)
}

// IsActive reports whether the invite is neither revoked nor expired
// at the given wall-clock time (spec §4.6's lifecycle: ACTIVE ->
// EXPIRED | REVOKED | CLAIMED-by-N; claimed invites stay active since
// spec places no limit on the number of claimants per invite).
func (m *Manager) IsActive(ctx context.Context, id []byte, now int64) (bool, error) {
	inv, err := m.Lookup(ctx, id)
	if err != nil {
		return false, err
	}
	if inv.RevokedAt != nil {
		return false, nil
	}
	if inv.Expires != 0 && now > inv.Expires {
		return false, nil
	}
	return true, nil
}

// Resolve answers a pairing.InviteResolver: the keypair this Manager
// retained for id (nil if id was created elsewhere, or never created
// locally) together with whether the invite is still active. Only a
// Manager that itself ran Create for id can complete an admission.
func (m *Manager) Resolve(ctx context.Context, id []byte) (*crypto.KeyPair, bool, error) {
	m.mu.Lock()
	kp := m.keypairs[hex.EncodeToString(id)]
	m.mu.Unlock()
	if kp == nil {
		return nil, false, nil
	}
	active, err := m.IsActive(ctx, id, crypto.NowMillis())
	if err != nil {
		return nil, false, err
	}
	return kp, active, nil
}
