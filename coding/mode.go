// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

import (
	"fmt"
	"strconv"
	"strings"
)

// A Mode is a QR data encoding mode.
type Mode int

const (
	Numeric      Mode = iota // decimal digits
	Alphanumeric             // digits, upper case letters and " $%*+-./:"
	Byte                     // arbitrary bytes
)

// A modeEncoder implements a QR segment encoding.
type modeEncoder struct {
	name      string
	aliases   []string
	indicator uint32 // 4-bit mode indicator
	count     [3]int // character count length per size class
	group     int    // characters packed together
	bits      [4]int // bits per group of 0 to group characters

	// accepts reports whether c may be encoded.
	accepts func(c byte) bool

	// pack returns the value for a group of 1 to group characters.
	pack func(s string) uint32
}

// bitmap for alphanumeric characters, from ' ' to '_'
const alphaMask = 0x07fffffe_07ffec31

const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ $%*+-./:"

var modes = [...]modeEncoder{
	Numeric: {
		name:      "numeric",
		aliases:   []string{"number", "num", "n"},
		indicator: 1,
		count:     [3]int{10, 12, 14},
		group:     3,
		bits:      [4]int{0, 4, 7, 10},
		accepts:   func(c byte) bool { return c-'0' < 10 },
		pack: func(s string) uint32 {
			var v uint32
			for i := 0; i < len(s); i++ {
				v = v*10 + uint32(s[i]-'0')
			}
			return v
		},
	},
	Alphanumeric: {
		name:      "alphanumeric",
		aliases:   []string{"alpha", "alnum", "a"},
		indicator: 2,
		count:     [3]int{9, 11, 13},
		group:     2,
		bits:      [4]int{0, 6, 11},
		accepts: func(c byte) bool {
			return uint64(1)<<(c-' ')&alphaMask != 0
		},
		pack: func(s string) uint32 {
			var v uint32
			for i := 0; i < len(s); i++ {
				v = v*45 + uint32(strings.IndexByte(alphabet, s[i]))
			}
			return v
		},
	},
	Byte: {
		name:      "byte",
		aliases:   []string{"8bit", "byte_8bit", "b"},
		indicator: 4,
		count:     [3]int{8, 16, 16},
		group:     1,
		bits:      [4]int{0, 8},
		accepts:   func(byte) bool { return true },
		pack:      func(s string) uint32 { return uint32(s[0]) },
	},
}

func (m Mode) String() string {
	if m.IsValid() {
		return modes[m].name
	}
	return strconv.Itoa(int(m))
}

// IsValid reports whether m is one of Numeric, Alphanumeric and Byte.
func (m Mode) IsValid() bool { return Numeric <= m && m <= Byte }

func (m Mode) enc() *modeEncoder {
	if !m.IsValid() {
		panic(RuntimeError("mode " + m.String() + " out of range"))
	}
	return &modes[m]
}

// ParseMode returns the mode named by s.  Each mode has its full
// name and a few aliases, matched regardless of case.
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(s)
	for i := range modes {
		if s == modes[i].name {
			return Mode(i), nil
		}
		for _, a := range modes[i].aliases {
			if s == a {
				return Mode(i), nil
			}
		}
	}
	return 0, ErrMode
}

// Indicator returns the 4-bit mode indicator of m.
func (m Mode) Indicator() uint32 { return m.enc().indicator }

// CountLength returns the length of the character count field of m
// in size class.
func (m Mode) CountLength(class int) int {
	ClassRange(class)
	return m.enc().count[class]
}

// Length returns the number of bits needed to encode
// n characters in mode m, excluding the header.
func (m Mode) Length(n int) int {
	e := m.enc()
	return n/e.group*e.bits[e.group] + e.bits[n%e.group]
}

// Accepts reports whether every byte of s can be encoded in mode m.
func (m Mode) Accepts(s string) bool {
	e := m.enc()
	for i := 0; i < len(s); i++ {
		if !e.accepts(s[i]) {
			return false
		}
	}
	return true
}

// Detect returns the narrowest mode that accepts s.
func Detect(s string) Mode {
	for m := Numeric; m < Byte; m++ {
		if m.Accepts(s) {
			return m
		}
	}
	return Byte
}

// A Segment is a run of text encoded in a single mode.
type Segment struct {
	Text string
	Mode Mode
}

// A SegmentError is returned for a segment with an invalid mode or
// with text that cannot be encoded in its mode.
type SegmentError Segment

func (e SegmentError) Error() string {
	if !e.Mode.IsValid() {
		return fmt.Sprintf("qr: invalid mode %v", e.Mode)
	}
	return fmt.Sprintf("qr: non-%v string %#q", e.Mode, e.Text)
}

// IsValid reports whether seg's text can be encoded in its mode.
func (seg Segment) IsValid() bool {
	return seg.Mode.IsValid() && seg.Mode.Accepts(seg.Text)
}

// EncodedLength returns the number of bits needed to encode seg in a
// QR code of size class, including the mode indicator and the
// character count.
func (seg Segment) EncodedLength(class int) int {
	return 4 + seg.Mode.CountLength(class) + seg.Mode.Length(len(seg.Text))
}

// Encode writes seg to b for a QR code of size class.
// Encode returns a SegmentError if seg is invalid.
// Encode panics if the character count overflows its field.
func (seg Segment) Encode(b *Bits, class int) error {
	if !seg.IsValid() {
		return SegmentError(seg)
	}
	e := seg.Mode.enc()
	n := len(seg.Text)
	cl := e.count[class]
	if n >= 1<<cl {
		panic(RuntimeError(fmt.Sprintf("%d characters overflow "+
			"%d-bit count", n, cl)))
	}
	b.Write(e.indicator, 4)
	b.Write(uint32(n), cl)
	for s := seg.Text; len(s) > 0; {
		g := min(e.group, len(s))
		b.Write(e.pack(s[:g]), e.bits[g])
		s = s[g:]
	}
	return nil
}
