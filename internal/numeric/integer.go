// Copyright 2017 The go-ethereum Authors
// (original work)
// Copyright 2024 The Erigon Authors
// (further modifications)
// Copyright 2026 The Detcore Authors
// (adapted for detcore)
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

// Package numeric holds small integer helpers shared by the config loader,
// the LogDB byte counters and the HDKey derivation index encoding.
package numeric

import (
	"fmt"
	"math/bits"
	"strconv"
)

// HexOrDecimal32 marshals a uint32 as hex in YAML/JSON text form and accepts
// either hex ("0x12345678") or decimal on the way back in. Used by
// config.HDKeyConfig.DefaultDeriveIndex.
type HexOrDecimal32 uint32

func (i *HexOrDecimal32) UnmarshalText(input []byte) error {
	n, ok := ParseUint32(string(input))
	if !ok {
		return fmt.Errorf("invalid hex or decimal integer %q", input)
	}
	*i = HexOrDecimal32(n)
	return nil
}

func (i HexOrDecimal32) MarshalText() ([]byte, error) {
	return []byte(fmt.Sprintf("%#x", uint32(i))), nil
}

// ParseUint32 parses s as an integer in decimal or hexadecimal syntax.
// The empty string parses as zero.
func ParseUint32(s string) (uint32, bool) {
	if s == "" {
		return 0, true
	}
	if len(s) >= 2 && (s[:2] == "0x" || s[:2] == "0X") {
		v, err := strconv.ParseUint(s[2:], 16, 32)
		return uint32(v), err == nil
	}
	v, err := strconv.ParseUint(s, 10, 32)
	return uint32(v), err == nil
}

// SafeAdd returns x+y and whether the addition overflowed a uint64. LogDB's
// UsedBytes/WrittenBytes counters are advisory lifetime sums (spec: "advisory
// only") but must not silently wrap on a long-lived file.
func SafeAdd(x, y uint64) (uint64, bool) {
	sum, carryOut := bits.Add64(x, y, 0)
	return sum, carryOut != 0
}

// SafeSub returns x-y and whether the subtraction underflowed. Used when a
// key's prior contribution is removed from UsedBytes on overwrite or erase.
func SafeSub(x, y uint64) (uint64, bool) {
	diff, borrow := bits.Sub64(x, y, 0)
	return diff, borrow != 0
}
