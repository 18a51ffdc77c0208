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

import (
	"errors"

	pkgerrors "github.com/pkg/errors"
)

// Sentinel errors matching the taxonomy of spec.md §7: IoError, Corrupt,
// ReadOnlyViolation. NotFound is "soft" (spec.md) and surfaces as a boolean
// return from Read/Exists rather than an error.
var (
	// ErrCorrupt covers every on-disk integrity failure: bad magic, bad
	// mode byte, oversized key/value, and checksum mismatch.
	ErrCorrupt = errors.New("logdb: corrupt frame")

	// ErrReadOnly is returned by Write/Erase against a read-only database.
	ErrReadOnly = errors.New("logdb: read-only violation")

	// ErrClosed is returned by Write, Erase and Flush against a database
	// that has not been opened (or has already been closed).
	ErrClosed = errors.New("logdb: database not open")

	// ErrLocked is returned by Open when another writer already holds the
	// advisory cross-process lock on this path. Additive to spec.md: the
	// spec's single-writer model assumes this can't happen, the flock
	// makes that assumption hold across process boundaries too.
	ErrLocked = errors.New("logdb: file locked by another writer")

	// ErrKeyTooLarge is returned by Write when a key is not strictly
	// smaller than the key cap in effect: 4096 bytes (spec.md §3/§6), or
	// a tighter cap set with WithSizeCaps.
	ErrKeyTooLarge = errors.New("logdb: key at or above size cap")

	// ErrValueTooLarge is returned by Write when a value is not strictly
	// smaller than the value cap in effect: 1048576 bytes (spec.md §3/§6),
	// or a tighter cap set with WithSizeCaps.
	ErrValueTooLarge = errors.New("logdb: value at or above size cap")

	// ErrExists is returned by Write when overwrite=false and the key is
	// already present with a different value.
	ErrExists = errors.New("logdb: key already exists")
)

// wrap attaches a stack trace via pkg/errors without changing the sentinel
// identity seen by errors.Is at call sites.
func wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return pkgerrors.Wrap(err, msg)
}
