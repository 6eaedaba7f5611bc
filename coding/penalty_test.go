// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

import (
	"testing"

	"github.com/go-quicktest/qt"
)

// line returns a pixel line from a string of '#' and '.'.
func line(s string) []bool {
	b := make([]bool, len(s))
	for i := range s {
		b[i] = s[i] == '#'
	}
	return b
}

func TestLinePenalty(t *testing.T) {
	tests := []struct {
		line   string
		pen    int
		compat int
	}{
		{"#.###.#", 2 * FindPP, FindPP},
		{"....#.###.#.", 2 * FindPP, FindPP},
		{"#.###.##....#", FindPP, FindPP},
		{"#.###.#.#", FindPP, FindPP},
		{"#####", RunPP, 0},
		{".......", RunPP + 2, 0},
		{"##.##.##.##", 0, 0},
	}
	for _, test := range tests {
		qt.Check(t, qt.Equals(linePenalty(line(test.line)), test.pen),
			qt.Commentf("%s", test.line))
		qt.Check(t, qt.Equals(compatFinders(line(test.line)), test.compat),
			qt.Commentf("%s", test.line))
	}
}

func newCode(siz int, black func(x, y int) bool) *Code {
	c := &Code{Size: siz, Stride: (siz + 7) >> 3}
	c.Bitmap = make([]byte, c.Stride*siz)
	for y := 0; y < siz; y++ {
		for x := 0; x < siz; x++ {
			if black(x, y) {
				c.Bitmap[y*c.Stride+x>>3] |= 0x80 >> (x & 7)
			}
		}
	}
	return c
}

func TestPenalty(t *testing.T) {
	tests := []struct {
		name   string
		black  func(x, y int) bool
		pen    int
		compat int
	}{
		// 42 runs of 21, 400 boxes, 50% off balance
		{"black", func(x, y int) bool { return true }, 42*19 + 400*BoxPP + 10*BalPP,
			19*19*6 + 400*BoxPP + 100},
		{"white", func(x, y int) bool { return false }, 42*19 + 400*BoxPP + 10*BalPP,
			19*19*6 + 400*BoxPP + 100},
		{"chequered", func(x, y int) bool { return (x+y)%2 == 0 }, 0, 100},
	}
	for _, test := range tests {
		c := newCode(21, test.black)
		qt.Check(t, qt.Equals(c.Penalty(), test.pen), qt.Commentf("%s", test.name))
		qt.Check(t, qt.Equals(c.CompatPenalty(), test.compat),
			qt.Commentf("%s", test.name))
	}
}

func TestBlack(t *testing.T) {
	c := newCode(21, func(x, y int) bool { return x == 20 && y == 3 })
	qt.Check(t, qt.IsTrue(c.Black(20, 3)))
	qt.Check(t, qt.IsFalse(c.Black(3, 20)))
	qt.Check(t, qt.IsFalse(c.Black(21, 3)))
	qt.Check(t, qt.IsFalse(c.Black(-1, 3)))
}
