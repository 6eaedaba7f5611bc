// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gf256 implements arithmetic over the Galois Field GF(256)
// and Reed-Solomon encoding over it.
package gf256 // import "github.com/unixdj/qrmatrix/gf256"

import "strconv"

// A Field represents an instance of GF(256) defined by a specific
// polynomial.
type Field struct {
	log [256]byte // log[0] is unused
	exp [256]byte // exp[255] == exp[0] == 1
}

// NewField returns a new field corresponding to the polynomial poly
// and generator α.  The Reed-Solomon encoding in QR codes uses
// polynomial 0x11d with generator 2.
//
// NewField panics if poly is not a degree-8 polynomial or α does not
// generate every non-zero element of the field.
func NewField(poly, α int) *Field {
	if poly < 0x100 || poly >= 0x200 {
		panic("gf256: invalid polynomial: " + strconv.Itoa(poly))
	}
	var f Field
	x := 1
	for i := 0; i < 255; i++ {
		if x == 1 && i != 0 {
			panic("gf256: invalid generator " + strconv.Itoa(α) +
				" for polynomial " + strconv.Itoa(poly))
		}
		f.exp[i] = byte(x)
		f.log[x] = byte(i)
		x = mul(x, α, poly)
	}
	f.exp[255] = f.exp[0]
	return &f
}

// mul returns the product x*y mod poly, a GF(256) multiplication
// without tables.
func mul(x, y, poly int) int {
	z := 0
	for x > 0 {
		if x&1 != 0 {
			z ^= y
		}
		x >>= 1
		y <<= 1
		if y&0x100 != 0 {
			y ^= poly
		}
	}
	return z
}

// Add returns the sum of x and y in the field.
func (f *Field) Add(x, y byte) byte {
	return x ^ y
}

// Exp returns the base-α exponential of e in the field.
func (f *Field) Exp(e int) byte {
	if e %= 255; e < 0 {
		e += 255
	}
	return f.exp[e]
}

// Log returns the base-α logarithm of x in the field.
// Log panics if x is 0, which has no logarithm.
func (f *Field) Log(x byte) int {
	if x == 0 {
		panic("gf256: log of zero")
	}
	return int(f.log[x])
}

// Inv returns the multiplicative inverse of x in the field.
// If x == 0, Inv returns 0.
func (f *Field) Inv(x byte) byte {
	if x == 0 {
		return 0
	}
	return f.exp[255-int(f.log[x])]
}

// Mul returns the product of x and y in the field.
func (f *Field) Mul(x, y byte) byte {
	if x == 0 || y == 0 {
		return 0
	}
	return f.exp[(int(f.log[x])+int(f.log[y]))%255]
}

// Gen returns the Reed-Solomon generator polynomial of degree e,
// (x - α⁰)(x - α¹)...(x - αᵉ⁻¹), with coefficients listed from the
// highest degree down.  The first coefficient is always 1.
func (f *Field) Gen(e int) []byte {
	p := make([]byte, 1, e+1)
	p[0] = 1
	for i := 0; i < e; i++ {
		// p *= x + αⁱ
		c := f.Exp(i)
		p = append(p, 0)
		for j := len(p) - 1; j > 0; j-- {
			p[j] ^= f.Mul(p[j-1], c)
		}
	}
	return p
}

// An RSEncoder implements Reed-Solomon encoding over a given field
// using a given number of error correction bytes.
type RSEncoder struct {
	f    *Field
	c    int
	lgen []int // logarithms of generator coefficients, -1 for 0
}

// NewRSEncoder returns a new Reed-Solomon encoder over the given field
// and number of error correction bytes.
func NewRSEncoder(f *Field, c int) *RSEncoder {
	if c < 1 || c > 254 {
		panic("gf256: invalid check byte count: " + strconv.Itoa(c))
	}
	gen := f.Gen(c)
	lgen := make([]int, len(gen))
	for i, v := range gen {
		lgen[i] = -1
		if v != 0 {
			lgen[i] = f.Log(v)
		}
	}
	return &RSEncoder{f: f, c: c, lgen: lgen}
}

// Check returns the number of error correction bytes.
func (rs *RSEncoder) Check() int { return rs.c }

// ECC writes to check the error correction bytes for data: the
// remainder of data·xᶜ divided by the generator polynomial.
// ECC panics if check is shorter than the number of error
// correction bytes.  The encoder keeps no state between calls.
func (rs *RSEncoder) ECC(data []byte, check []byte) {
	if len(check) < rs.c {
		panic("gf256: invalid check byte length")
	}
	f := rs.f
	// Long division with the remainder kept in rem.  The leading
	// generator coefficient is 1, so the divisor term is always
	// the leading remainder term.
	rem := make([]byte, rs.c)
	for _, d := range data {
		k := d ^ rem[0]
		copy(rem, rem[1:])
		rem[rs.c-1] = 0
		if k == 0 {
			continue
		}
		lk := int(f.log[k])
		for j, lg := range rs.lgen[1:] {
			if lg >= 0 {
				rem[j] ^= f.exp[(lk+lg)%255]
			}
		}
	}
	copy(check, rem)
}
