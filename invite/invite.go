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

// Package invite implements the InviteMgr of spec §4.6: generating
// invite identities, encoding them as a base-32 token for out-of-band
// transport, and binding the blind-pairing result back to log-level
// membership via the create-invite/claim-invite/revoke-invite actions.
package invite

import (
	"encoding/base32"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/qalbehabib/syncbase/crypto"
)

const (
	idLen     = 16
	pubKeyLen = 32
	tokenLen  = idLen + pubKeyLen + 8
)

// tokenEncoding is RFC 4648's base-32 alphabet lowercased, per spec §6
// ("RFC 4648-compatible lowercase alphabet is acceptable").
var tokenEncoding = base32.NewEncoding("abcdefghijklmnopqrstuvwxyz234567").WithPadding(base32.NoPadding)

var (
	// ErrMalformedToken is returned when a token fails to decode to the
	// fixed (id, publicKey, expires) layout.
	ErrMalformedToken = errors.New("invite: malformed token")
	// ErrTokenWhitespace is returned for any token containing whitespace,
	// rejected rather than trimmed (spec §6).
	ErrTokenWhitespace = errors.New("invite: token must not contain whitespace")
)

// Invite is a freshly generated invite identity: the fields that become
// create-invite's payload, plus the token handed to the candidate out of
// band.
type Invite struct {
	ID        []byte
	PublicKey []byte
	Expires   int64
	Token     string
}

// Raw returns the packed (id, publicKey, expires) bytes the token
// encodes — the "invite (opaque token)" bytes the invite collection
// row stores alongside its own id (spec §3).
func (inv *Invite) Raw() []byte {
	return packToken(inv.ID, inv.PublicKey, inv.Expires)
}

// Generate creates a fresh invite identity: a random id, a one-shot
// blind-pairing keypair, and an absolute expiry. expiresInMinutes <= 0
// means the invite never expires. The returned KeyPair is the caller's
// only copy of the invite's secret half; InviteMgr never persists it —
// only PublicKey is ever written to the log.
func Generate(expiresInMinutes int) (*Invite, *crypto.KeyPair, error) {
	id, err := crypto.GenerateIDBytes(idLen)
	if err != nil {
		return nil, nil, err
	}
	kp, err := crypto.NewEphemeralKeyPair()
	if err != nil {
		return nil, nil, err
	}
	var expires int64
	if expiresInMinutes > 0 {
		expires = crypto.NowMillis() + int64(expiresInMinutes)*60_000
	}
	pub := append([]byte(nil), kp.PublicKey()...)
	inv := &Invite{ID: id, PublicKey: pub, Expires: expires}
	inv.Token = EncodeToken(id, pub, expires)
	return inv, kp, nil
}

// EncodeToken packs (id, publicKey, expires) and base-32 encodes the
// result — the textual form spec §6 hands a claimant out of band.
func EncodeToken(id, publicKey []byte, expires int64) string {
	return tokenEncoding.EncodeToString(packToken(id, publicKey, expires))
}

// DecodeToken is EncodeToken's exact inverse. Any whitespace in the
// input is rejected outright rather than trimmed (spec §6).
func DecodeToken(token string) (id, publicKey []byte, expires int64, err error) {
	if containsWhitespace(token) {
		return nil, nil, 0, ErrTokenWhitespace
	}
	raw, err := tokenEncoding.DecodeString(token)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	if len(raw) != tokenLen {
		return nil, nil, 0, ErrMalformedToken
	}
	id = append([]byte(nil), raw[:idLen]...)
	publicKey = append([]byte(nil), raw[idLen:idLen+pubKeyLen]...)
	expires = int64(binary.BigEndian.Uint64(raw[idLen+pubKeyLen:]))
	return id, publicKey, expires, nil
}

func packToken(id, publicKey []byte, expires int64) []byte {
	buf := make([]byte, 0, tokenLen)
	buf = append(buf, id...)
	buf = append(buf, publicKey...)
	var expBuf [8]byte
	binary.BigEndian.PutUint64(expBuf[:], uint64(expires))
	return append(buf, expBuf[:]...)
}

func containsWhitespace(s string) bool {
	return strings.IndexFunc(s, unicode.IsSpace) >= 0
}
