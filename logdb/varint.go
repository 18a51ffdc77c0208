// Copyright 2026 The Detcore Authors
// This file is part of Detcore.
//
// Detcore is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Detcore is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Detcore. If not, see <http://www.gnu.org/licenses/>.

package logdb

import "io"

// Least-significant-digit-first base-128 encoding with a +1 bias on every
// digit after the first, eliminating redundant representations. See
// spec.md §4.1 "Varint encoding". This is the on-disk length encoding for
// keys and values; it is distinct from the fixed 4-byte little-endian
// length that the running hash absorbs for the same value (spec.md §6).

// encodeVarint appends the base-128 encoding of n to dst and returns the
// extended slice.
func encodeVarint(dst []byte, n uint64) []byte {
	for {
		b := byte(n % 128)
		if n > 127 {
			b |= 0x80
		}
		dst = append(dst, b)
		if n < 128 {
			return dst
		}
		n = (n / 128) - 1
	}
}

// decodeVarint reads a base-128 encoded integer one byte at a time from r.
// A short read propagates to the caller so that load() can tell a torn tail
// from a real I/O error: io.EOF when no byte was available at all,
// io.ErrUnexpectedEOF when the stream ends after a continuation byte.
func decodeVarint(r io.Reader) (uint64, error) {
	var result, base uint64 = 0, 1
	var b [1]byte
	for {
		if _, err := io.ReadFull(r, b[:]); err != nil {
			if err == io.EOF && base > 1 {
				err = io.ErrUnexpectedEOF
			}
			return 0, err
		}
		add := uint64(b[0] & 0x7F)
		if base > 1 {
			add++
		}
		result += base * add
		if b[0] < 128 {
			return result, nil
		}
		base *= 128
	}
}
