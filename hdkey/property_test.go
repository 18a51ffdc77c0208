// Copyright 2026 The Detcore Authors
// This file is part of Detcore.

package hdkey

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// TestPropertyPublicPrivateAgreement is spec.md §8's "Property
// (public/private agreement)": repeatedly deriving a private HDKey and its
// neutered sibling along the same path yields equal encoded public keys at
// every step, for any seed and any path.
func TestPropertyPublicPrivateAgreement(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.SliceOfN(rapid.Byte(), 1, 64).Draw(rt, "seed")
		compressed := rapid.Bool().Draw(rt, "compressed")

		var priv HDKey
		priv.SetMaster(seed, compressed)
		var pub HDKey
		require.NoError(rt, priv.Neuter(&pub))

		depth := rapid.IntRange(1, 6).Draw(rt, "depth")
		for i := 0; i < depth; i++ {
			index := rapid.Uint32().Draw(rt, "index")

			var childPriv, childPub HDKey
			require.NoError(rt, priv.Derive(&childPriv, index))
			require.NoError(rt, pub.Derive(&childPub, index))

			fromPriv, err := childPriv.GetPubKey()
			require.NoError(rt, err)
			fromPub, err := childPub.GetPubKey()
			require.NoError(rt, err)
			require.True(rt, bytes.Equal(fromPriv, fromPub))

			priv, pub = childPriv, childPub
		}
	})
}

// TestPropertyCompressedConsistency is spec.md §8's "Property (compressed
// consistency)": changing compressed_flag changes only the encoding, not
// the underlying point.
func TestPropertyCompressedConsistency(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.SliceOfN(rapid.Byte(), 1, 64).Draw(rt, "seed")

		var compressedKey HDKey
		compressedKey.SetMaster(seed, true)
		compressedPub, err := compressedKey.GetPubKey()
		require.NoError(rt, err)

		secret, _, err := compressedKey.GetSecret()
		require.NoError(rt, err)

		var uncompressedKey HDKey
		uncompressedKey.SetSecret(compressedKey.Chaincode(), secret, nil, false)
		uncompressedPub, err := uncompressedKey.GetPubKey()
		require.NoError(rt, err)

		require.Len(rt, compressedPub, 33)
		require.Len(rt, uncompressedPub, 65)

		x1, y1, err := decodePoint(compressedPub)
		require.NoError(rt, err)
		x2, y2, err := decodePoint(uncompressedPub)
		require.NoError(rt, err)
		require.Equal(rt, 0, x1.Cmp(x2))
		require.Equal(rt, 0, y1.Cmp(y2))
	})
}
