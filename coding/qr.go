// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package coding implements low-level QR coding details.
package coding // import "github.com/unixdj/qrmatrix/coding"

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/unixdj/qrmatrix/gf256"
)

var (
	ErrLevel   = errors.New("qr: invalid level")
	ErrVersion = errors.New("qr: invalid version")
	ErrMode    = errors.New("qr: invalid mode")
	ErrEmpty   = errors.New("qr: no data to encode")
)

// A RuntimeError reports misuse of an encoded code or a broken
// internal invariant.  Internal errors panic with a RuntimeError.
type RuntimeError string

func (e RuntimeError) Error() string { return "qr: " + string(e) }

// Field is the field for QR error correction.
var Field = gf256.NewField(0x11d, 2)

// A Version represents a QR version.
// The version specifies the size of the QR code:
// a QR code with version v has 4v+17 pixels on a side.
// Versions run from 1 to 40: the larger the version,
// the more information the code can store.
type Version int

const (
	MinVersion Version = 1  // Minimum QR version
	MaxVersion Version = 40 // Maximum QR version
)

func (v Version) String() string { return strconv.Itoa(int(v)) }

// IsValid reports whether v is between MinVersion and MaxVersion.
func (v Version) IsValid() bool { return MinVersion <= v && v <= MaxVersion }

// Size returns the number of pixels on a side of a code of version v.
func (v Version) Size() int { return int(v)*4 + 17 }

// QR version size classes.  The class determines the length of the
// character count field.
const (
	Class0 = iota // QR versions 1 to 9
	Class1        // QR versions 10 to 26
	Class2        // QR versions 27 to 40
)

var sizeClass = [3]struct {
	min, max Version
}{
	{1, 9}, {10, 26}, {27, 40},
}

// SizeClass returns the size class of v, as documented under Class0.
func (v Version) SizeClass() int {
	if v <= 9 {
		return Class0
	}
	if v <= 26 {
		return Class1
	}
	return Class2
}

// ClassRange returns the lowest and highest version in size class.
func ClassRange(class int) (min, max Version) {
	if class < Class0 || class > Class2 {
		panic(RuntimeError("size class " + strconv.Itoa(class) +
			" out of range"))
	}
	return sizeClass[class].min, sizeClass[class].max
}

// info returns the table entry for v and l.
func (v Version) info(l Level) (*version, level) {
	if !v.IsValid() {
		panic(RuntimeError("version " + v.String() + " out of range"))
	}
	if !l.IsValid() {
		panic(RuntimeError("level " + l.String() + " out of range"))
	}
	vt := &vtab[v]
	return vt, vt.level[l]
}

// Bytes returns the total number of codewords, data and check,
// in a QR code of version v.
func (v Version) Bytes() int {
	vt, _ := v.info(L)
	return vt.bytes
}

// Remainder returns the number of bits left in a QR code of version v
// after placing all codewords.
func (v Version) Remainder() int {
	vt, _ := v.info(L)
	return vt.remainder
}

// DataBytes returns the number of data bytes that can be
// stored in a QR code with the given version and level.
func (v Version) DataBytes(l Level) int {
	vt, lev := v.info(l)
	return vt.bytes - lev.nblock*lev.check
}

// DataBits returns the number of data bits that can be
// stored in a QR code with the given version and level.
func (v Version) DataBits(l Level) int {
	return v.DataBytes(l) * 8
}

// Alignment returns the row and column coordinates of alignment
// pattern centres in a QR code of version v, in increasing order.
// Version 1 has none.
func (v Version) Alignment() []int {
	vt, _ := v.info(L)
	if vt.apos == 0 {
		return nil
	}
	pos := []int{6, vt.apos}
	if vt.astride != 0 {
		for x := vt.apos + vt.astride; x < v.Size()-6; x += vt.astride {
			pos = append(pos, x)
		}
	}
	return pos
}

// A BlockLayout describes the Reed-Solomon blocks of a QR code.
// Data codewords fill Short blocks of DataLen codewords followed by
// Blocks-Short blocks of DataLen+1 codewords.  Every block has Check
// check codewords.
type BlockLayout struct {
	Blocks  int // number of blocks
	Short   int // number of blocks with DataLen data codewords
	DataLen int // data codewords in a short block
	Check   int // check codewords per block
}

// Layout returns the block layout for the given version and level.
func (v Version) Layout(l Level) BlockLayout {
	vt, lev := v.info(l)
	nd := vt.bytes - lev.nblock*lev.check
	db := nd / lev.nblock
	return BlockLayout{
		Blocks:  lev.nblock,
		Short:   (db+1)*lev.nblock - nd,
		DataLen: db,
		Check:   lev.check,
	}
}

// A Level represents a QR error correction level.
// From least to most tolerant of errors, they are L, M, Q, H.
type Level int

const (
	L Level = iota // 20% redundant
	M              // 38% redundant
	Q              // 55% redundant
	H              // 65% redundant
)

func (l Level) String() string {
	if l.IsValid() {
		return "LMQH"[l : l+1]
	}
	return strconv.Itoa(int(l))
}

// IsValid reports whether l is one of L, M, Q and H.
func (l Level) IsValid() bool { return L <= l && l <= H }

// ParseLevel returns the level named by a single letter, L, M, Q or H,
// in either case.
func ParseLevel(s string) (Level, error) {
	if len(s) == 1 {
		for i := 0; i < 8; i++ {
			if s[0] == "LMQHlmqh"[i] {
				return Level(i & 3), nil
			}
		}
	}
	return 0, ErrLevel
}

// Bits is a buffer of bits written most significant bit first.
type Bits struct {
	b    []byte
	nbit int
}

// NewBits returns Bits with enough capacity for a QR code of the
// given version and level.
func NewBits(v Version, l Level) *Bits {
	n := v.Bytes()
	if v.Layout(l).Blocks > 1 {
		n <<= 1
	}
	return &Bits{b: make([]byte, 0, n)}
}

func (b *Bits) Reset() {
	b.b = b.b[:0]
	b.nbit = 0
}

// Bits returns the number of bits written to b.
func (b *Bits) Bits() int {
	return b.nbit
}

// Bytes returns the bytes written to b.
// Bytes panics if b does not hold a whole number of bytes.
func (b *Bits) Bytes() []byte {
	if b.nbit%8 != 0 {
		panic(RuntimeError("fractional byte"))
	}
	return b.b
}

func (b *Bits) growTo(n int) {
	if cap(b.b) < n {
		nb := make([]byte, len(b.b), n)
		copy(nb, b.b)
		b.b = nb
	}
}

// Add adds n bytes to b and returns the added slice.
func (b *Bits) Add(n int) []byte {
	if b.nbit%8 != 0 {
		panic(RuntimeError("fractional byte"))
	}
	b.growTo(len(b.b) + n)
	start := len(b.b)
	b.b = b.b[:start+n]
	b.nbit = 8 * len(b.b)
	return b.b[start:]
}

// Write writes the nbit low bits of v to b.
func (b *Bits) Write(v uint32, nbit int) {
	v <<= 32 - nbit
	if rem := -b.nbit & 7; rem != 0 {
		b.b[len(b.b)-1] |= byte(v >> (32 - rem))
		if rem >= nbit {
			b.nbit += nbit
			return
		}
		b.nbit += rem
		nbit -= rem
		v <<= rem
	}
	for n := nbit; n > 0; n -= 8 {
		b.b = append(b.b, byte(v>>24))
		v <<= 8
	}
	b.nbit += nbit
}

// Pad adds the terminator and padding to b, filling the data capacity
// of the given version and level.  The terminator is up to 4 zero
// bits, then zero bits up to a byte boundary, then alternating 0xec
// and 0x11 bytes.  Pad panics if b holds more than the capacity.
func (b *Bits) Pad(v Version, l Level) {
	nb := v.DataBits(l)
	if b.nbit > nb {
		panic(RuntimeError(fmt.Sprintf("%d bits exceed %d-bit capacity",
			b.nbit, nb)))
	}
	b.growTo(v.Bytes())
	b.Write(0, min(4, nb-b.nbit))
	b.nbit = len(b.b) * 8
	for pad := byte(0xec); b.nbit < nb; pad ^= 0xec ^ 0x11 {
		b.b = append(b.b, pad)
		b.nbit += 8
	}
}

// AddCheckBytes adds terminator, padding and check bytes to b for the
// given QR version and level.  The data bytes are followed by check
// bytes for each block in turn.
func (b *Bits) AddCheckBytes(v Version, l Level) {
	b.Pad(v, l)
	lay := v.Layout(l)
	dat := b.Bytes()
	db := lay.DataLen
	rs := gf256.NewRSEncoder(Field, lay.Check)
	for i := 0; i < lay.Blocks; i++ {
		if i == lay.Short {
			db++
		}
		rs.ECC(dat[:db], b.Add(lay.Check))
		dat = dat[db:]
	}
	if len(b.Bytes()) != v.Bytes() {
		panic(RuntimeError("codeword count mismatch"))
	}
}

// interleave interleaves nblock blocks from src to dst, which must be
// of equal length.  Blocks that are one byte longer come last.
func interleave(dst, src []byte, nblock int) {
	db := len(src) / nblock
	extra := dst[db*nblock:]
	dst = dst[:db*nblock]
	normal := nblock - len(extra)
	for i := 0; i < nblock; i++ {
		for j, v := range src[:db] {
			dst[j*nblock+i] = v
		}
		src = src[db:]
		if i >= normal {
			extra[i-normal] = src[0]
			src = src[1:]
		}
	}
}

// deinterleave reverses interleave.
func deinterleave(dst, src []byte, nblock int) {
	db := len(src) / nblock
	extra := src[db*nblock:]
	src = src[:db*nblock]
	normal := nblock - len(extra)
	for i := 0; i < nblock; i++ {
		for j := range dst[:db] {
			dst[j] = src[j*nblock+i]
		}
		dst = dst[db:]
		if i >= normal {
			dst[0] = extra[i-normal]
			dst = dst[1:]
		}
	}
}

// Permute returns a BitStream reading data and check bits in b
// with blocks interleaved for the given QR code version and level:
// the first data byte of each block, then the second, and so on,
// then the check bytes in the same manner.
// The BitStream may use the same underlying buffer.
func (b *Bits) Permute(v Version, l Level) BitStream {
	src := b.Bytes()
	if len(src) != v.Bytes() {
		panic(RuntimeError("wrong data length"))
	}
	dst := src
	if nblock := v.Layout(l).Blocks; nblock != 1 {
		if cap(src) < len(src)*2 {
			dst = make([]byte, len(src))
		} else {
			dst = src[len(src) : len(src)*2]
		}
		nd := v.DataBytes(l)
		interleave(dst[:nd], src[:nd], nblock)
		interleave(dst[nd:], src[nd:], nblock)
	}
	return NewBitStream(dst)
}

// Deinterleave returns the codewords of a QR code of the given version
// and level in block order, reversing Permute: all data bytes, then
// the check bytes of each block in turn.
func Deinterleave(stream []byte, v Version, l Level) []byte {
	if len(stream) != v.Bytes() {
		panic(RuntimeError("wrong data length"))
	}
	dst := make([]byte, len(stream))
	nd := v.DataBytes(l)
	nblock := v.Layout(l).Blocks
	deinterleave(dst[:nd], stream[:nd], nblock)
	deinterleave(dst[nd:], stream[nd:], nblock)
	return dst
}

// BitStream reads bits from the underlying buffer.
type BitStream struct {
	b   []byte
	pos int
}

// NewBitStream returns a BitStream reading from b.
func NewBitStream(b []byte) BitStream { return BitStream{b: b} }

// Bytes returns the data underlying s.
func (s *BitStream) Bytes() []byte { return s.b }

// Len returns the number of unread bits in s.
func (s *BitStream) Len() int { return len(s.b)*8 - s.pos }

// Next returns the next bit from s as 0 or 1.
// Past end of buffer Next returns 0.
func (s *BitStream) Next() byte {
	var b byte
	if i := s.pos >> 3; i < len(s.b) {
		b = s.b[i] >> (7 &^ s.pos) & 1
		s.pos++
	}
	return b
}

// CapacityError reports data too long for a QR code.
type CapacityError struct {
	Bits    int     // encoded length of the data
	Max     int     // capacity of the code
	Version Version // largest version tried
	Level   Level
}

func (e CapacityError) Error() string {
	return fmt.Sprintf("qr: cannot encode %d bits into %d-bit code "+
		"(version %v, level %v)", e.Bits, e.Max, e.Version, e.Level)
}

// A Scoring selects the rules used to choose the mask pattern.
type Scoring int

const (
	// Standard sums penalties for runs of five or more same-colour
	// pixels, 2x2 boxes, finder-like 1:1:3:1:1 patterns flanked by
	// four light pixels and colour imbalance.  See Code.Penalty.
	Standard Scoring = iota

	// Compat reproduces the mask choice of earlier encoders that
	// count same-colour neighbours.  See Code.CompatPenalty.
	Compat
)

func (s Scoring) String() string {
	switch s {
	case Standard:
		return "standard"
	case Compat:
		return "compat"
	}
	return strconv.Itoa(int(s))
}

// A Code is a square pixel grid.
type Code struct {
	Bitmap []byte // 1 is black, 0 is white
	Size   int    // number of pixels on a side
	Stride int    // number of bytes per row
	Mask   int    // mask pattern
}

// Black reports whether the pixel at column x, row y is black.
// Pixels outside the code are white.
func (c *Code) Black(x, y int) bool {
	return 0 <= x && x < c.Size && 0 <= y && y < c.Size &&
		c.Bitmap[y*c.Stride+x>>3]&(0x80>>(x&7)) != 0
}

// Encoder encodes a QR code.
type Encoder struct {
	p       *Plan
	b       *Bits
	scoring Scoring
}

func newEncoder(p *Plan) *Encoder {
	return &Encoder{p: p, b: NewBits(p.Version, p.Level)}
}

// NewEncoder returns an Encoder for the given version and level.
func NewEncoder(version Version, level Level) (*Encoder, error) {
	p, err := makePlan(version, level)
	if err != nil {
		return nil, err
	}
	return newEncoder(p), nil
}

// SetScoring sets the rules for choosing the mask.
// The default is Standard.
func (e *Encoder) SetScoring(s Scoring) { e.scoring = s }

// Write adds text to e.  Write returns an error if a segment is
// invalid or the text does not fit in the code.
func (e *Encoder) Write(text ...Segment) error {
	class := e.p.Version.SizeClass()
	n := e.b.Bits()
	for _, t := range text {
		if !t.Mode.IsValid() {
			return SegmentError(t)
		}
		n += t.EncodedLength(class)
	}
	if n > e.p.DataBits {
		return CapacityError{n, e.p.DataBits, e.p.Version, e.p.Level}
	}
	for _, t := range text {
		if err := t.Encode(e.b, class); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) Reset() { e.b.Reset() }

// Code returns a QR code containing data written to e and resets e.
func (e *Encoder) Code() (*Code, error) {
	defer e.b.Reset()
	p := e.p
	if e.b.Bits() > p.DataBits {
		return nil, CapacityError{e.b.Bits(), p.DataBits, p.Version,
			p.Level}
	}
	e.b.AddCheckBytes(p.Version, p.Level)
	bits := e.b.Permute(p.Version, p.Level)
	// Now we have the checksum bytes and the data bytes.
	// Construct the bitmap consisting of data and checksum bits.
	data := make([]byte, len(p.Map))
	p.Serialise(bits, data)
	return p.choose(data, e.scoring), nil
}

// Encode is a wrapper around Write and Code.
func (e *Encoder) Encode(text ...Segment) (*Code, error) {
	if err := e.Write(text...); err != nil {
		e.Reset()
		return nil, err
	}
	return e.Code()
}

// Encode encodes text using an Encoder with the given version and level.
func Encode(version Version, level Level, text ...Segment) (*Code, error) {
	e, err := NewEncoder(version, level)
	if err != nil {
		return nil, err
	}
	return e.Encode(text...)
}

// A version describes metadata associated with a version.
type version struct {
	apos      int // second alignment pattern coordinate, 0 if none
	astride   int // distance between further alignment coordinates
	bytes     int // total number of codewords
	remainder int // bits left after the codewords
	level     [4]level
}

type level struct {
	nblock int // number of blocks
	check  int // check bytes per block
}
