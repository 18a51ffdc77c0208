// Copyright 2026 The Detcore Authors
// This file is part of Detcore.

package hdkey

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetMasterThenGetPubKeyCachesResult(t *testing.T) {
	var k HDKey
	k.SetMaster([]byte("seed"), true)
	require.True(t, k.HasPrivate())
	require.False(t, k.hasPublic)

	pub1, err := k.GetPubKey()
	require.NoError(t, err)
	require.True(t, k.hasPublic)

	pub2, err := k.GetPubKey()
	require.NoError(t, err)
	require.True(t, bytes.Equal(pub1, pub2))
}

func TestGetPubKeyFailsWithNoKeyMaterial(t *testing.T) {
	var k HDKey
	_, err := k.GetPubKey()
	require.ErrorIs(t, err, ErrMissingKey)
}

func TestGetSecretFailsOnPublicOnlyKey(t *testing.T) {
	var master HDKey
	master.SetMaster([]byte("seed"), true)

	var pubOnly HDKey
	require.NoError(t, master.Neuter(&pubOnly))

	_, _, err := pubOnly.GetSecret()
	require.ErrorIs(t, err, ErrMissingKey)
}

func TestNeuterPreservesChaincodeAndFlag(t *testing.T) {
	var master HDKey
	master.SetMaster([]byte("seed"), false)

	var pubOnly HDKey
	require.NoError(t, master.Neuter(&pubOnly))

	require.Equal(t, master.Chaincode(), pubOnly.Chaincode())
	require.Equal(t, master.Compressed(), pubOnly.Compressed())
	require.False(t, pubOnly.HasPrivate())
	require.True(t, pubOnly.HasPublic())
}

func TestSetPublicInfersCompressedFromLength(t *testing.T) {
	var master HDKey
	master.SetMaster([]byte("seed"), true)
	compressedPub, err := master.GetPubKey()
	require.NoError(t, err)
	require.Len(t, compressedPub, 33)

	var k HDKey
	k.SetPublic(master.Chaincode(), compressedPub)
	require.True(t, k.Compressed())

	var masterU HDKey
	masterU.SetMaster([]byte("seed2"), false)
	uncompressedPub, err := masterU.GetPubKey()
	require.NoError(t, err)
	require.Len(t, uncompressedPub, 65)

	var k2 HDKey
	k2.SetPublic(masterU.Chaincode(), uncompressedPub)
	require.False(t, k2.Compressed())
}

func TestCompressedConsistency(t *testing.T) {
	var k HDKey
	k.SetMaster([]byte("seed"), true)
	compressed, err := k.GetPubKey()
	require.NoError(t, err)

	secret, _, err := k.GetSecret()
	require.NoError(t, err)

	var k2 HDKey
	k2.SetSecret(k.Chaincode(), secret, nil, false)
	uncompressed, err := k2.GetPubKey()
	require.NoError(t, err)

	x1, y1, err := decodePoint(compressed)
	require.NoError(t, err)
	x2, y2, err := decodePoint(uncompressed)
	require.NoError(t, err)
	require.Equal(t, 0, x1.Cmp(x2))
	require.Equal(t, 0, y1.Cmp(y2))
}

func TestDeriveChildInheritsCompressedFlag(t *testing.T) {
	var k HDKey
	k.SetMaster([]byte("seed"), true)

	var child HDKey
	require.NoError(t, k.Derive(&child, 7))
	require.True(t, child.Compressed())
	require.True(t, child.HasPrivate())
	require.False(t, child.hasPublic)
}
