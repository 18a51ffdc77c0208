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

package hdkey

import "errors"

// Error taxonomy from spec.md §7: HDKey has exactly two failure modes.
var (
	// ErrMissingKey is returned when an operation needs a private or
	// public component that the HDKey does not have (spec.md §4.2
	// "Fails if no private and no cached public").
	ErrMissingKey = errors.New("hdkey: no usable key material present")

	// ErrCryptoFailure covers point decode/encode failures: malformed
	// SEC1 encodings, off-curve points, and anything the underlying
	// curve library itself refuses.
	ErrCryptoFailure = errors.New("hdkey: curve operation failed")
)
