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

package pairing

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/qalbehabib/syncbase/crypto"
	"github.com/qalbehabib/syncbase/internal/metrics"
	"github.com/qalbehabib/syncbase/invite"
)

// ErrRejected is returned to a candidate whose invite the admitter
// could not find or whose lifecycle state is no longer ACTIVE (spec
// §4.6's admit flow: "if missing or expired, drop").
var ErrRejected = errors.New("pairing: invite not found or no longer active")

// ErrBadSignature is returned when the admitter's accept message fails
// to verify against the invite's public key — the candidate's only
// handle on "is this really the peer that holds this invite".
var ErrBadSignature = errors.New("pairing: admitter signature invalid")

// hello is the candidate's opening message: which invite it is
// redeeming and its ephemeral ECDH public key.
type hello struct {
	InviteID []byte `json:"inviteId"`
	Eph      []byte `json:"eph"`
}

// accept is the admitter's reply: its own ephemeral ECDH public key,
// signed with the invite's keypair so the candidate can authenticate
// it without a prior trust relationship beyond the token itself.
type accept struct {
	Accepted  bool   `json:"accepted"`
	Eph       []byte `json:"eph,omitempty"`
	Signature []byte `json:"signature,omitempty"`
}

// Join runs the candidate side of the handshake over tr: decode token,
// send hello, wait for the admitter's signed accept, verify it against
// the invite's own public key, and derive the session keys both sides
// now hold independently.
func Join(ctx context.Context, tr Transport, token string) (*SessionKeys, *invite.Invite, error) {
	id, invitePub, expires, err := invite.DecodeToken(token)
	if err != nil {
		return nil, nil, err
	}
	if expires != 0 && crypto.NowMillis() > expires {
		return nil, nil, invite.ErrExpired
	}

	eph, err := NewEphemeralKey()
	if err != nil {
		return nil, nil, err
	}
	if err := tr.Send(ctx, &hello{InviteID: id, Eph: eph.Public()}); err != nil {
		return nil, nil, err
	}

	var resp accept
	if err := tr.Receive(ctx, &resp); err != nil {
		return nil, nil, err
	}
	if !resp.Accepted {
		return nil, nil, ErrRejected
	}
	if !crypto.Verify(resp.Signature, resp.Eph, invitePub) {
		return nil, nil, ErrBadSignature
	}

	shared, err := eph.SharedSecret(resp.Eph)
	if err != nil {
		return nil, nil, err
	}
	keys, err := DeriveSessionKeys(shared, hex.EncodeToString(id), eph.Public(), resp.Eph)
	if err != nil {
		return nil, nil, err
	}
	return keys, &invite.Invite{ID: id, PublicKey: invitePub, Expires: expires, Token: token}, nil
}

// InviteResolver answers, for an invite id the admitter only learns
// from the candidate's hello, whether it is still active and the
// keypair Generate minted for it — the same function invite.Manager
// exposes over its local (unreplicated) per-invite key material, so
// Admit has no direct dependency on view.View or the log.
type InviteResolver func(ctx context.Context, id []byte) (kp *crypto.KeyPair, active bool, err error)

// Admit runs the admitting side of the handshake over tr: read the
// candidate's hello, resolve its invite via resolve, and — if still
// active — reply with a signed accept and derive the same session
// keys the candidate derived. Only the peer that created the invite
// holds its keypair, so only that peer can complete an admission for it.
func Admit(ctx context.Context, tr Transport, resolve InviteResolver) (*SessionKeys, []byte, error) {
	start := time.Now()
	metrics.CandidatesInFlight.Inc()
	defer metrics.CandidatesInFlight.Dec()

	var msg hello
	if err := tr.Receive(ctx, &msg); err != nil {
		return nil, nil, err
	}

	inviteKP, active, err := resolve(ctx, msg.InviteID)
	if err != nil {
		return nil, nil, err
	}
	if !active || inviteKP == nil {
		_ = tr.Send(ctx, &accept{Accepted: false})
		metrics.CandidatesDropped.WithLabelValues("inactive_invite").Inc()
		return nil, msg.InviteID, ErrRejected
	}

	eph, err := NewEphemeralKey()
	if err != nil {
		return nil, nil, err
	}
	sig, err := inviteKP.Sign(eph.Public())
	if err != nil {
		return nil, nil, fmt.Errorf("pairing: sign accept: %w", err)
	}
	if err := tr.Send(ctx, &accept{Accepted: true, Eph: eph.Public(), Signature: sig}); err != nil {
		return nil, nil, err
	}

	shared, err := eph.SharedSecret(msg.Eph)
	if err != nil {
		return nil, nil, err
	}
	keys, err := DeriveSessionKeys(shared, hex.EncodeToString(msg.InviteID), eph.Public(), msg.Eph)
	if err != nil {
		return nil, nil, err
	}
	metrics.HandshakeDuration.Observe(time.Since(start).Seconds())
	return keys, msg.InviteID, nil
}
