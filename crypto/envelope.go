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

// Envelope is the only thing the log carries (spec §3).
type Envelope struct {
	Type      string                 `json:"type"`
	Payload   map[string]interface{} `json:"payload"`
	Signer    []byte                 `json:"signer"`
	Signature []byte                 `json:"signature"`
}

// CreateSignedAction builds a signed Envelope for actionType and
// payload. If payload has no "timestamp" key, one is injected with
// NowMillis() before signing; the signature itself is computed over
// the canonical form with "timestamp" elided, so a peer may stamp
// locally without invalidating a remote signature (spec §4.1).
func CreateSignedAction(kp *KeyPair, actionType string, payload map[string]interface{}) (*Envelope, error) {
	body := make(map[string]interface{}, len(payload)+1)
	for k, v := range payload {
		body[k] = v
	}
	if _, ok := body["timestamp"]; !ok {
		body["timestamp"] = NowMillis()
	}

	canon, err := CanonicalizePayload(body)
	if err != nil {
		return nil, err
	}
	sig, err := kp.Sign(canon)
	if err != nil {
		return nil, err
	}

	return &Envelope{
		Type:      actionType,
		Payload:   body,
		Signer:    append([]byte(nil), kp.PublicKey()...),
		Signature: sig,
	}, nil
}

// VerifyEnvelope checks the envelope's signature over the canonical
// form of its payload. Structural errors (malformed payload) fail
// closed, returning false rather than propagating an error, matching
// Verify's fail-closed contract.
func VerifyEnvelope(e *Envelope) bool {
	canon, err := CanonicalizePayload(e.Payload)
	if err != nil {
		return false
	}
	return Verify(e.Signature, canon, e.Signer)
}
