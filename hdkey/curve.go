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

import (
	"math/big"

	secp256k1 "github.com/erigontech/secp256k1"
	"github.com/holiman/uint256"
)

// curve is the package-wide secp256k1 parameter set, backed by the same
// cgo binding the rest of the node's signing path uses.
var curve = secp256k1.S256()

// curveOrder256 is the group order n as a uint256.Int, used for the
// private-branch child-key reduction (spec.md §4.2 step 5: "d·L mod n").
// uint256 replaces math/big there because the scalar arithmetic is a single
// fixed-width multiply-mod with no arbitrary-precision growth.
var curveOrder256 = uint256.MustFromBig(curve.Params().N)

func bigFromBE32(b []byte) *big.Int {
	return new(big.Int).SetBytes(b)
}

// mulModOrder computes a*b mod n using fixed-width 256-bit arithmetic and
// returns the 32-byte big-endian result, zero-padded at the high end.
func mulModOrder(a, b []byte) [32]byte {
	x := uint256.MustFromBig(bigFromBE32(a))
	y := uint256.MustFromBig(bigFromBE32(b))
	var z uint256.Int
	z.MulMod(x, y, curveOrder256)
	return z.Bytes32()
}

// scalarBaseMultEncode computes d*G and encodes it per compressed.
func scalarBaseMultEncode(secret [32]byte, compressed bool) ([]byte, error) {
	x, y := curve.ScalarBaseMult(secret[:])
	if x.Sign() == 0 && y.Sign() == 0 {
		return nil, ErrCryptoFailure
	}
	return encodePoint(x, y, compressed), nil
}

// scalarMultEncode computes k*P (P given as SEC1-encoded bytes) and
// encodes the result per compressed.
func scalarMultEncode(point []byte, scalar [32]byte, compressed bool) ([]byte, error) {
	x, y, err := decodePoint(point)
	if err != nil {
		return nil, err
	}
	rx, ry := curve.ScalarMult(x, y, scalar[:])
	if rx.Sign() == 0 && ry.Sign() == 0 {
		return nil, ErrCryptoFailure
	}
	return encodePoint(rx, ry, compressed), nil
}

// encodePoint renders (x,y) as a SEC1 point: 33-byte compressed
// (0x02/0x03 prefix by y-parity) or 65-byte uncompressed (0x04 prefix).
func encodePoint(x, y *big.Int, compressed bool) []byte {
	xb := leftPad32(x.Bytes())
	if compressed {
		prefix := byte(0x02)
		if y.Bit(0) == 1 {
			prefix = 0x03
		}
		out := make([]byte, 0, 33)
		out = append(out, prefix)
		return append(out, xb[:]...)
	}
	yb := leftPad32(y.Bytes())
	out := make([]byte, 0, 65)
	out = append(out, 0x04)
	out = append(out, xb[:]...)
	out = append(out, yb[:]...)
	return out
}

// decodePoint parses a SEC1-encoded point, recovering y from x for the
// compressed form via the curve equation y^2 = x^3 + 7 (secp256k1 has
// a=0). p ≡ 3 (mod 4), so the square root is a single modular
// exponentiation.
func decodePoint(data []byte) (*big.Int, *big.Int, error) {
	switch {
	case len(data) == 65 && data[0] == 0x04:
		x := bigFromBE32(data[1:33])
		y := bigFromBE32(data[33:65])
		if !curve.IsOnCurve(x, y) {
			return nil, nil, ErrCryptoFailure
		}
		return x, y, nil

	case len(data) == 33 && (data[0] == 0x02 || data[0] == 0x03):
		x := bigFromBE32(data[1:33])
		y, err := decompressY(x, data[0] == 0x03)
		if err != nil {
			return nil, nil, err
		}
		return x, y, nil

	default:
		return nil, nil, ErrCryptoFailure
	}
}

func decompressY(x *big.Int, odd bool) (*big.Int, error) {
	params := curve.Params()
	p := params.P

	// rhs = x^3 + 7 mod p
	rhs := new(big.Int).Mul(x, x)
	rhs.Mul(rhs, x)
	rhs.Add(rhs, params.B)
	rhs.Mod(rhs, p)

	// exp = (p+1)/4, valid since secp256k1's p ≡ 3 (mod 4)
	exp := new(big.Int).Add(p, big.NewInt(1))
	exp.Rsh(exp, 2)
	y := new(big.Int).Exp(rhs, exp, p)

	check := new(big.Int).Mul(y, y)
	check.Mod(check, p)
	if check.Cmp(rhs) != 0 {
		return nil, ErrCryptoFailure
	}
	if y.Bit(0) == 1 != odd {
		y.Sub(p, y)
	}
	return y, nil
}

func leftPad32(b []byte) [32]byte {
	var out [32]byte
	if len(b) > 32 {
		b = b[len(b)-32:]
	}
	copy(out[32-len(b):], b)
	return out
}
