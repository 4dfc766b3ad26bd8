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

package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

// DeriveKeyPair derives a deterministic Ed25519 keypair from a seed
// phrase: phrase -> sha256 -> 32-byte seed -> ed25519.NewKeyFromSeed.
// The same phrase always yields the same keypair, which is what lets a
// peer rejoin with the same writer identity across restarts.
func DeriveKeyPair(phrase string) (*KeyPair, error) {
	if phrase == "" {
		return nil, ErrInvalidSeed
	}
	sum := sha256.Sum256([]byte(phrase))
	priv := ed25519.NewKeyFromSeed(sum[:])
	return &KeyPair{
		public:  priv.Public().(ed25519.PublicKey),
		private: priv,
	}, nil
}

// NewEphemeralKeyPair generates a random Ed25519 keypair, unlike
// DeriveKeyPair it cannot be reconstructed from a phrase. Used for
// one-shot identities such as an invite's blind-pairing key.
func NewEphemeralKeyPair() (*KeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return &KeyPair{public: pub, private: priv}, nil
}

// NewPublicKeyPair wraps a raw public key in a read-only KeyPair,
// usable only for Verify. Used to check signatures of entries
// attributed to peers whose secret key this instance never holds.
func NewPublicKeyPair(pub []byte) (*KeyPair, error) {
	if len(pub) != ed25519.PublicKeySize {
		return nil, ErrInvalidPublicKey
	}
	cp := make([]byte, ed25519.PublicKeySize)
	copy(cp, pub)
	return &KeyPair{public: ed25519.PublicKey(cp)}, nil
}

// Sign signs message with the keypair's secret key. Fails with
// ErrNoSecretKey if the keypair was opened read-only (§4.1).
func (kp *KeyPair) Sign(message []byte) ([]byte, error) {
	if kp.private == nil {
		return nil, ErrNoSecretKey
	}
	return ed25519.Sign(kp.private, message), nil
}

// Verify reports whether sig is a valid detached signature over
// message by this keypair's public key. It never panics on malformed
// input — any structural error (wrong sizes) just yields false.
func (kp *KeyPair) Verify(message, sig []byte) bool {
	if len(kp.public) != ed25519.PublicKeySize || len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(kp.public, message, sig)
}

// Verify checks a detached signature against a raw public key without
// needing a KeyPair. Returns false on any structural error, per the
// constant-time, fail-closed contract in spec §4.1.
func Verify(sig, message, signer []byte) bool {
	if len(signer) != ed25519.PublicKeySize || len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(signer, message, sig)
}

func hexEncode(b []byte) string {
	return hex.EncodeToString(b)
}
