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
	"encoding"
	"hash"

	sha256simd "github.com/minio/sha256-simd"
	pkgerrors "github.com/pkg/errors"
)

// runningHash is the cumulative SHA-256 state described in spec.md §3
// (RunningHash) and §9 ("running SHA-256 state carried across frames").
// Every frame's checksum is computed over a *tentative* fork of this state
// (clone, extend, finalize-a-copy-of-the-clone) so that a bad frame never
// mutates the committed state (spec.md §4.1 steps 2 and 4).
//
// minio/sha256-simd mirrors stdlib crypto/sha256's digest type, including
// its encoding.BinaryMarshaler/BinaryUnmarshaler support, which is what
// makes forking an in-progress hash state possible without re-hashing
// everything from the start of the file.
type runningHash struct {
	h hash.Hash
}

func newRunningHash() *runningHash {
	return &runningHash{h: sha256simd.New()}
}

func (r *runningHash) write(p []byte) {
	r.h.Write(p)
}

// clone forks the current state into an independent runningHash that can
// be extended and finalized without affecting r.
func (r *runningHash) clone() (*runningHash, error) {
	marshaler, ok := r.h.(encoding.BinaryMarshaler)
	if !ok {
		return nil, pkgerrors.New("logdb: sha256 state is not cloneable")
	}
	state, err := marshaler.MarshalBinary()
	if err != nil {
		return nil, pkgerrors.Wrap(err, "logdb: marshal hash state")
	}
	clone := sha256simd.New()
	unmarshaler, ok := clone.(encoding.BinaryUnmarshaler)
	if !ok {
		return nil, pkgerrors.New("logdb: sha256 state is not restorable")
	}
	if err := unmarshaler.UnmarshalBinary(state); err != nil {
		return nil, pkgerrors.Wrap(err, "logdb: restore hash state")
	}
	return &runningHash{h: clone}, nil
}

// sum8 finalizes a *copy* of r's state (r itself is left untouched and can
// keep absorbing bytes) and returns the first 8 bytes of the digest, the
// on-disk checksum width from spec.md §6.
func (r *runningHash) sum8() ([8]byte, error) {
	var out [8]byte
	clone, err := r.clone()
	if err != nil {
		return out, err
	}
	full := clone.h.Sum(nil)
	copy(out[:], full[:8])
	return out, nil
}
