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

// Package hdkey implements deterministic child key derivation over
// secp256k1 (spec.md §4.2). It deliberately predates BIP-32: there is no
// hardened-derivation bit and no rejection of degenerate L or child keys.
// Reproducing the canonical test vectors bit-exactly requires keeping it
// that way - do not "fix" this to match BIP-32.
package hdkey

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"time"
)

// HDKey is the tuple (chaincode, compressed_flag, private?, public?)
// described in spec.md §3. At least one of the private/public components
// is present once the key leaves the zero value.
type HDKey struct {
	chaincode [32]byte

	compressed bool

	hasSecret bool
	secret    [32]byte

	hasPublic bool
	pubkey    []byte

	metrics *Metrics
}

// SetMetrics attaches a Prometheus instrument set to be updated by Derive.
// A nil *Metrics (the default) disables instrumentation.
func (k *HDKey) SetMetrics(m *Metrics) { k.metrics = m }

// SetMaster derives the root chaincode and secret from seed via
// SHA-512(seed), splitting the 64-byte digest into secret = digest[0:32],
// chaincode = digest[32:64] (spec.md §4.2). The result carries a private
// key with no cached public key.
func (k *HDKey) SetMaster(seed []byte, compressed bool) {
	digest := sha512.Sum512(seed)

	k.compressed = compressed
	copy(k.secret[:], digest[:32])
	copy(k.chaincode[:], digest[32:64])
	k.hasSecret = true
	k.hasPublic = false
	k.pubkey = nil
}

// SetPublic installs a public-only HDKey. compressed_flag is inferred from
// the encoded key's length, not passed explicitly (spec.md §4.2).
func (k *HDKey) SetPublic(chaincode [32]byte, pubkey []byte) {
	k.chaincode = chaincode
	k.compressed = len(pubkey) < 65
	k.pubkey = append([]byte(nil), pubkey...)
	k.hasPublic = true
	k.hasSecret = false
	k.secret = [32]byte{}
}

// SetSecret installs a private HDKey, optionally with a precomputed
// encoded public key. A nil pubkey leaves the public component uncached;
// GetPubKey will compute and cache it lazily.
func (k *HDKey) SetSecret(chaincode, secret [32]byte, pubkey []byte, compressed bool) {
	k.chaincode = chaincode
	k.secret = secret
	k.compressed = compressed
	k.hasSecret = true
	if pubkey != nil {
		k.pubkey = append([]byte(nil), pubkey...)
		k.hasPublic = true
	} else {
		k.pubkey = nil
		k.hasPublic = false
	}
}

// GetPubKey returns the SEC1-encoded public key, computing and caching it
// from the private scalar (secret·G) if it is not already cached. Fails
// with ErrMissingKey if neither a public key nor a secret is present.
func (k *HDKey) GetPubKey() ([]byte, error) {
	if k.hasPublic {
		return append([]byte(nil), k.pubkey...), nil
	}
	if !k.hasSecret {
		return nil, ErrMissingKey
	}
	encoded, err := scalarBaseMultEncode(k.secret, k.compressed)
	if err != nil {
		return nil, err
	}
	k.pubkey = encoded
	k.hasPublic = true
	return append([]byte(nil), encoded...), nil
}

// GetSecret returns the raw 32-byte private scalar and the key's
// compressed_flag. Fails with ErrMissingKey if no secret is present.
func (k *HDKey) GetSecret() ([32]byte, bool, error) {
	if !k.hasSecret {
		return [32]byte{}, false, ErrMissingKey
	}
	return k.secret, k.compressed, nil
}

// Neuter produces, in out, a public-only HDKey sharing this key's
// chaincode, compressed_flag and encoded public key (spec.md §4.2).
func (k *HDKey) Neuter(out *HDKey) error {
	pub, err := k.GetPubKey()
	if err != nil {
		return err
	}
	out.chaincode = k.chaincode
	out.compressed = k.compressed
	out.pubkey = pub
	out.hasPublic = true
	out.hasSecret = false
	out.secret = [32]byte{}
	out.metrics = k.metrics
	return nil
}

// Derive computes, in out, the index-th child of k (spec.md §4.2):
//
//  1. ensure k's public key is materialized
//  2. m = HMAC-SHA512(key=chaincode, msg=pubkey || big_endian_u32(index))
//  3. child chaincode = m[32:64]
//  4. L = big-endian 256-bit integer from m[0:32]
//  5. if k has a secret: child secret = d*L mod n
//  6. else: child public point = L * P (P = k's public point)
//
// out inherits k's compressed_flag. There is no hardened-derivation bit
// and no rejection of L >= n or a resulting zero/infinity key - matching
// spec.md's deliberate pre-BIP32 semantics exactly is required to
// reproduce the canonical test vectors.
func (k *HDKey) Derive(out *HDKey, index uint32) (err error) {
	start := time.Now()
	privateMode := k.hasSecret
	defer func() { k.metrics.observeDerive(privateMode, time.Since(start), err) }()

	pub, err := k.GetPubKey()
	if err != nil {
		return err
	}

	var idxBytes [4]byte
	binary.BigEndian.PutUint32(idxBytes[:], index)

	mac := hmac.New(sha512.New, k.chaincode[:])
	mac.Write(pub)
	mac.Write(idxBytes[:])
	m := mac.Sum(nil)

	var childChain [32]byte
	copy(childChain[:], m[32:64])
	var l [32]byte
	copy(l[:], m[0:32])

	out.chaincode = childChain
	out.compressed = k.compressed
	out.metrics = k.metrics

	if k.hasSecret {
		childSecret := mulModOrder(k.secret[:], l[:])
		out.secret = childSecret
		out.hasSecret = true
		out.hasPublic = false
		out.pubkey = nil
		return nil
	}

	childPub, err := scalarMultEncode(pub, l, k.compressed)
	if err != nil {
		return err
	}
	out.pubkey = childPub
	out.hasPublic = true
	out.hasSecret = false
	out.secret = [32]byte{}
	return nil
}

// HasPrivate reports whether a secret is present.
func (k *HDKey) HasPrivate() bool { return k.hasSecret }

// HasPublic reports whether a public key (cached or derivable) is present.
func (k *HDKey) HasPublic() bool { return k.hasPublic || k.hasSecret }

// Chaincode returns the HDKey's 32-byte chaincode.
func (k *HDKey) Chaincode() [32]byte { return k.chaincode }

// Compressed reports the HDKey's compressed_flag.
func (k *HDKey) Compressed() bool { return k.compressed }
