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
	"errors"
)

// Common errors returned by this package.
var (
	ErrNoSecretKey      = errors.New("crypto: instance opened read-only, no secret key available")
	ErrInvalidSignature = errors.New("crypto: invalid signature")
	ErrInvalidPublicKey = errors.New("crypto: invalid public key length")
	ErrInvalidSeed      = errors.New("crypto: seed phrase must not be empty")
)

// KeyPair is a deterministically-derived Ed25519 writer identity. A
// KeyPair opened without its seed (public key only) can verify but not
// sign; Sign then fails with ErrNoSecretKey.
type KeyPair struct {
	public  ed25519.PublicKey
	private ed25519.PrivateKey // nil for a read-only (public-only) KeyPair
}

// PublicKey returns the raw 32-byte Ed25519 public key.
func (kp *KeyPair) PublicKey() ed25519.PublicKey {
	return kp.public
}

// CanSign reports whether this KeyPair holds a secret key.
func (kp *KeyPair) CanSign() bool {
	return kp.private != nil
}
