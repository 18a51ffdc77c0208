// Copyright 2026 The Detcore Authors
// This file is part of Detcore.

package logdb

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVarintRoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 127, 128, 129, 255, 256, 16383, 16384, 1 << 20, 1 << 32, ^uint64(0)}
	for _, n := range cases {
		enc := encodeVarint(nil, n)
		got, err := decodeVarint(bytes.NewReader(enc))
		require.NoError(t, err)
		require.Equalf(t, n, got, "round trip of %d via %x", n, enc)
	}
}

func TestVarintNoRedundantEncodings(t *testing.T) {
	// The +1 bias means each value has exactly one encoding; two distinct
	// inputs below a width boundary must not collide after round trip.
	seen := map[string]uint64{}
	for n := uint64(0); n < 50000; n++ {
		enc := string(encodeVarint(nil, n))
		if prev, ok := seen[enc]; ok {
			t.Fatalf("encoding collision: %d and %d both encode to %x", prev, n, enc)
		}
		seen[enc] = n
	}
}

func TestVarintShortReadPropagates(t *testing.T) {
	enc := encodeVarint(nil, 1<<20)
	// truncate to simulate a torn tail mid-varint
	_, err := decodeVarint(bytes.NewReader(enc[:len(enc)-1]))
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestVarintEmptyReadIsEOF(t *testing.T) {
	_, err := decodeVarint(bytes.NewReader(nil))
	require.ErrorIs(t, err, io.EOF)
}
