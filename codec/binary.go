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

package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// encoder writes schema bodies as: uvarint-length-prefixed byte
// strings and fixed-width integers, in field declaration order. This
// TLV-free length-prefixed form is the canonical encoding of the wire
// body (not to be confused
// with the JSON canonicalization crypto.CanonicalizePayload uses for
// the signed bytes — the two serve different contracts).
type encoder struct {
	buf bytes.Buffer
}

func newEncoder() *encoder { return &encoder{} }

func (e *encoder) bytes() []byte { return e.buf.Bytes() }

func (e *encoder) writeBytes(b []byte) {
	var lenBuf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(lenBuf[:], uint64(len(b)))
	e.buf.Write(lenBuf[:n])
	e.buf.Write(b)
}

func (e *encoder) writeString(s string) {
	e.writeBytes([]byte(s))
}

// writeOptString encodes a *string as a one-byte presence flag
// followed by the string when present.
func (e *encoder) writeOptString(s *string) {
	if s == nil {
		e.buf.WriteByte(0)
		return
	}
	e.buf.WriteByte(1)
	e.writeString(*s)
}

func (e *encoder) writeInt64(v int64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(v))
	e.buf.Write(b[:])
}

func (e *encoder) writeOptInt64(v *int64) {
	if v == nil {
		e.buf.WriteByte(0)
		return
	}
	e.buf.WriteByte(1)
	e.writeInt64(*v)
}

func (e *encoder) writeInt32(v int32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(v))
	e.buf.Write(b[:])
}

// decoder is the inverse of encoder over a fixed byte slice.
type decoder struct {
	buf []byte
	pos int
}

func newDecoder(b []byte) *decoder { return &decoder{buf: b} }

func (d *decoder) readBytes() ([]byte, error) {
	length, n := binary.Uvarint(d.buf[d.pos:])
	if n <= 0 {
		return nil, fmt.Errorf("%w: truncated length prefix", ErrMalformedAction)
	}
	d.pos += n
	if d.pos+int(length) > len(d.buf) {
		return nil, fmt.Errorf("%w: truncated body", ErrMalformedAction)
	}
	out := d.buf[d.pos : d.pos+int(length)]
	d.pos += int(length)
	return out, nil
}

func (d *decoder) readString() (string, error) {
	b, err := d.readBytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (d *decoder) readOptString() (*string, error) {
	flag, err := d.readByte()
	if err != nil {
		return nil, err
	}
	if flag == 0 {
		return nil, nil
	}
	s, err := d.readString()
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (d *decoder) readByte() (byte, error) {
	if d.pos >= len(d.buf) {
		return 0, fmt.Errorf("%w: truncated byte", ErrMalformedAction)
	}
	b := d.buf[d.pos]
	d.pos++
	return b, nil
}

func (d *decoder) readInt64() (int64, error) {
	if d.pos+8 > len(d.buf) {
		return 0, fmt.Errorf("%w: truncated int64", ErrMalformedAction)
	}
	v := int64(binary.BigEndian.Uint64(d.buf[d.pos : d.pos+8]))
	d.pos += 8
	return v, nil
}

func (d *decoder) readOptInt64() (*int64, error) {
	flag, err := d.readByte()
	if err != nil {
		return nil, err
	}
	if flag == 0 {
		return nil, nil
	}
	v, err := d.readInt64()
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (d *decoder) readInt32() (int32, error) {
	if d.pos+4 > len(d.buf) {
		return 0, fmt.Errorf("%w: truncated int32", ErrMalformedAction)
	}
	v := int32(binary.BigEndian.Uint32(d.buf[d.pos : d.pos+4]))
	d.pos += 4
	return v, nil
}

func (d *decoder) done() bool {
	return d.pos >= len(d.buf)
}
