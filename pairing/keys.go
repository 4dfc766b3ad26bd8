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

// Package pairing implements the blind-pairing handshake of spec
// §4.6: a joining candidate and the admitting peer each hold a fresh
// X25519 ephemeral key, exchange public halves over a Transport, and
// derive matching session keys without ever putting the ECDH output
// on the wire.
package pairing

import (
	"bytes"
	"crypto/ecdh"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// handshakeLabel binds every derivation to this protocol and its
// version, the same role "a2a/handshake v1" plays in the corpus's
// NewSecureSessionFromHandshake.
const handshakeLabel = "syncbase/pairing v1"

// EphemeralKey is a one-shot X25519 keypair used for a single
// handshake's ECDH exchange.
type EphemeralKey struct {
	priv *ecdh.PrivateKey
	pub  *ecdh.PublicKey
}

// NewEphemeralKey generates a fresh X25519 keypair.
func NewEphemeralKey() (*EphemeralKey, error) {
	priv, err := ecdh.X25519().GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("pairing: generate ephemeral key: %w", err)
	}
	return &EphemeralKey{priv: priv, pub: priv.PublicKey()}, nil
}

// Public returns the raw 32-byte X25519 public key.
func (k *EphemeralKey) Public() []byte {
	return k.pub.Bytes()
}

// SharedSecret computes the raw ECDH output against peerPub. The
// result must never be used directly as a key — only as HKDF input.
func (k *EphemeralKey) SharedSecret(peerPub []byte) ([]byte, error) {
	pub, err := ecdh.X25519().NewPublicKey(peerPub)
	if err != nil {
		return nil, fmt.Errorf("pairing: invalid peer key: %w", err)
	}
	secret, err := k.priv.ECDH(pub)
	if err != nil {
		return nil, fmt.Errorf("pairing: ecdh: %w", err)
	}
	return secret, nil
}

// SessionKeys are the two keys a completed handshake yields: ServerKey
// opens the shared log (spec's blind-pairing "serverKey"), Encryption
// Key encrypts message content ("encryptionKey").
type SessionKeys struct {
	ServerKey     []byte
	EncryptionKey []byte
}

// DeriveSessionKeys mirrors the corpus's NewSecureSessionFromHandshake
// construction exactly:
//
//  1. salt := SHA256(label || contextID || canonicalOrder(selfEph, peerEph))
//  2. sessionSeed := HKDF-Extract(sha256, sharedSecret, salt)
//  3. one HKDF-expand per purpose, keyed off sessionSeed and salt.
//
// contextID binds the derivation to this specific invite (its hex id),
// so two invites sharing a coincidental ECDH output (impossible in
// practice, but the binding is cheap) still diverge.
func DeriveSessionKeys(sharedSecret []byte, contextID string, selfEph, peerEph []byte) (*SessionKeys, error) {
	if len(sharedSecret) == 0 {
		return nil, fmt.Errorf("pairing: empty shared secret")
	}
	if len(selfEph) == 0 || len(peerEph) == 0 {
		return nil, fmt.Errorf("pairing: missing ephemeral key")
	}

	lo, hi := canonicalOrder(selfEph, peerEph)
	h := sha256.New()
	h.Write([]byte(handshakeLabel))
	h.Write([]byte(contextID))
	h.Write(lo)
	h.Write(hi)
	salt := h.Sum(nil)

	sessionSeed := hkdf.Extract(sha256.New, sharedSecret, salt)

	serverKey := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, sessionSeed, salt, []byte("server")), serverKey); err != nil {
		return nil, fmt.Errorf("pairing: derive server key: %w", err)
	}
	encKey := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, sessionSeed, salt, []byte("encryption")), encKey); err != nil {
		return nil, fmt.Errorf("pairing: derive encryption key: %w", err)
	}
	return &SessionKeys{ServerKey: serverKey, EncryptionKey: encKey}, nil
}

// canonicalOrder returns a, b in lexicographic order so both peers
// feed identical salt bytes regardless of which one is "self".
func canonicalOrder(a, b []byte) (lo, hi []byte) {
	if bytes.Compare(a, b) <= 0 {
		return a, b
	}
	return b, a
}
