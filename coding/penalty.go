// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

// Penalty points.
const (
	MinRun = 5  // shortest penalised run
	RunPP  = 3  // run of MinRun pixels; one more per extra pixel
	BoxPP  = 3  // 2x2 box of one colour
	FindPP = 40 // finder-like pattern
	BalPP  = 10 // per 5% deviation from 50% black

	compatNeighbours = 5   // same-colour neighbours before penalty
	compatBalance    = 100 // fixed balance penalty
)

// finder-like patterns in an 11-pixel window, 1 black
const (
	findLeft  = 0x05d // 00001011101
	findRight = 0x5d0 // 10111010000
	findMask  = 0x7ff
)

// line copies row y of c into line, or column y if col.
func (c *Code) line(line []bool, y int, col bool) []bool {
	line = line[:0]
	for x := 0; x < c.Size; x++ {
		if col {
			line = append(line, c.Black(y, x))
		} else {
			line = append(line, c.Black(x, y))
		}
	}
	return line
}

// linePenalty returns the penalty for runs and finder-like patterns
// in line.  Pixels beyond both ends count as white.
func linePenalty(line []bool) int {
	p := 0
	run := 1
	for i := 1; i <= len(line); i++ {
		if i < len(line) && line[i] == line[i-1] {
			run++
			continue
		}
		if run >= MinRun {
			p += RunPP + run - MinRun
		}
		run = 1
	}
	var w uint32
	for i := 0; i < len(line)+4; i++ {
		w <<= 1
		if i < len(line) && line[i] {
			w |= 1
		}
		w &= findMask
		if w == findLeft || w == findRight {
			p += FindPP
		}
	}
	return p
}

// Penalty returns the penalty value for c:
//
//   - RunPP+n-MinRun for each run of n >= MinRun same-colour pixels
//     in a row or column;
//   - BoxPP for each 2x2 box of one colour, overlapping boxes
//     counted separately;
//   - FindPP for each 1:1:3:1:1 pattern in a row or column with
//     four white pixels on either side, the pixels around the code
//     counting as white;
//   - BalPP for each full 5% by which the share of black pixels
//     deviates from half.
func (c *Code) Penalty() int {
	siz := c.Size
	p := 0
	buf := make([]bool, 0, siz)
	for y := 0; y < siz; y++ {
		p += linePenalty(c.line(buf, y, false))
		p += linePenalty(c.line(buf, y, true))
	}
	p += c.boxPenalty()
	dark := 0
	for y := 0; y < siz; y++ {
		for x := 0; x < siz; x++ {
			if c.Black(x, y) {
				dark++
			}
		}
	}
	n := siz * siz
	return p + abs(20*dark-10*n)/n*BalPP
}

func (c *Code) boxPenalty() int {
	p := 0
	for y := 1; y < c.Size; y++ {
		for x := 1; x < c.Size; x++ {
			b := c.Black(x, y)
			if b == c.Black(x-1, y) && b == c.Black(x, y-1) &&
				b == c.Black(x-1, y-1) {
				p += BoxPP
			}
		}
	}
	return p
}

// CompatPenalty returns the penalty value for c under the rules of
// earlier encoders:
//
//   - for each pixel with n > 5 same-colour pixels among its eight
//     neighbours, RunPP+n-5;
//   - BoxPP for each 2x2 box of one colour;
//   - FindPP for each 1011101 sequence in a row or column, regardless
//     of the surrounding pixels;
//   - a fixed 100 in place of the balance penalty.
func (c *Code) CompatPenalty() int {
	siz := c.Size
	p := 0
	for y := 0; y < siz; y++ {
		for x := 0; x < siz; x++ {
			b := c.Black(x, y)
			same := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					xx, yy := x+dx, y+dy
					if dx == 0 && dy == 0 || xx < 0 || xx >= siz ||
						yy < 0 || yy >= siz {
						continue
					}
					if c.Black(xx, yy) == b {
						same++
					}
				}
			}
			if same > compatNeighbours {
				p += RunPP + same - compatNeighbours
			}
		}
	}
	p += c.boxPenalty()
	buf := make([]bool, 0, siz)
	for y := 0; y < siz; y++ {
		p += compatFinders(c.line(buf, y, false))
		p += compatFinders(c.line(buf, y, true))
	}
	return p + compatBalance
}

func compatFinders(line []bool) int {
	p := 0
	var w uint32
	for i, b := range line {
		w = w<<1 & 0x7f
		if b {
			w |= 1
		}
		if i >= 6 && w == 0x5d {
			p += FindPP
		}
	}
	return p
}
