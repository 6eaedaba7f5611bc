// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

import (
	"fmt"
	"math/bits"
)

const (
	formatPoly  = 0x537  // x^10+x^8+x^5+x^4+x^2+x+1
	formatMask  = 0x5412 // 101010000010010
	versionPoly = 0x1f25 // x^12+x^11+x^10+x^9+x^8+x^5+x^2+1
)

// BCHRemainder returns the remainder of dividing data by poly,
// after shifting data left by the degree of poly, as polynomials
// over GF(2).
func BCHRemainder(data, poly uint32) uint32 {
	n := bits.Len32(poly) - 1
	if n < 1 || bits.Len32(data)+n > 32 {
		panic(RuntimeError(fmt.Sprintf("BCH code of %#x by %#x", data, poly)))
	}
	r := data << n
	for l := bits.Len32(r); l > n; l = bits.Len32(r) {
		r ^= poly << (l - 1 - n)
	}
	return r
}

// FormatBits returns the 15-bit format information for level l and
// mask m: two bits of level, three bits of mask and ten check bits,
// XORed with 0x5412.
func FormatBits(l Level, m int) uint16 {
	if !l.IsValid() {
		panic(RuntimeError("level " + l.String() + " out of range"))
	}
	if m < 0 || m > 7 {
		panic(RuntimeError(fmt.Sprintf("mask %d out of range", m)))
	}
	// Level bits are 01, 00, 11, 10 for L, M, Q, H.
	d := uint32(l^1)<<3 | uint32(m)
	return uint16((d<<10 | BCHRemainder(d, formatPoly)) ^ formatMask)
}

// VersionBits returns the 18-bit version information for v:
// six bits of version and twelve check bits.
func VersionBits(v Version) uint32 {
	if !v.IsValid() {
		panic(RuntimeError("version " + v.String() + " out of range"))
	}
	d := uint32(v)
	return d<<12 | BCHRemainder(d, versionPoly)
}
