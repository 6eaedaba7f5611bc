// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

import (
	"fmt"
	"sync"
)

// A Plan describes how to construct a QR code
// with a specific version and level.
//
// Each bitmap has Size rows of Stride bytes, with the leftmost pixel
// of a row in the most significant bit of its first byte.
type Plan struct {
	Version  Version
	Level    Level
	DataBits int // number of data bits before check bytes
	Size     int // number of pixels on a side
	Stride   int // number of bytes per row

	// Map marks function pixels: finder, separator, alignment and
	// timing patterns, the dark pixel and version and format
	// information.  Data and check bits go in the remaining pixels.
	Map []byte

	// Info marks format and version information and the dark pixel.
	Info []byte

	// Base holds black function pixels with the format information
	// area left white.
	Base []byte

	// Format holds black format information pixels for each mask.
	Format [8][]byte

	// Mask holds each mask pattern, limited to data pixels.
	Mask [8][]byte
}

var plans [MaxVersion + 1][H + 1]struct {
	once sync.Once
	p    *Plan
}

// makePlan returns a shared Plan for version and level.
func makePlan(version Version, level Level) (*Plan, error) {
	if !version.IsValid() {
		return nil, ErrVersion
	}
	if !level.IsValid() {
		return nil, ErrLevel
	}
	p := &plans[version][level]
	p.once.Do(func() { p.p = vplan(version, level) })
	return p.p, nil
}

// NewPlan returns a Plan for a QR code with the given version and
// level.
func NewPlan(version Version, level Level) (*Plan, error) {
	pp, err := makePlan(version, level)
	if err != nil {
		return nil, err
	}
	p := *pp
	n := len(p.Map)
	buf := make([]byte, 0, n*(3+2*len(p.Mask)))
	cp := func(b []byte) []byte {
		buf = append(buf, b...)
		return buf[len(buf)-n:]
	}
	p.Map = cp(p.Map)
	p.Info = cp(p.Info)
	p.Base = cp(p.Base)
	for i := range p.Mask {
		p.Format[i] = cp(p.Format[i])
		p.Mask[i] = cp(p.Mask[i])
	}
	return &p, nil
}

// pixel addresses the pixel at column x, row y.
func (p *Plan) pixel(x, y int) (int, byte) {
	return y*p.Stride + x>>3, 0x80 >> (x & 7)
}

// IsFunction reports whether the pixel at column x, row y
// is a function pixel.
func (p *Plan) IsFunction(x, y int) bool {
	i, bit := p.pixel(x, y)
	return p.Map[i]&bit != 0
}

// function marks the pixel at column x, row y as a function pixel
// of the given colour.
func (p *Plan) function(x, y int, black bool) {
	i, bit := p.pixel(x, y)
	p.Map[i] |= bit
	if black {
		p.Base[i] |= bit
	}
}

// info marks the pixel at column x, row y as an information pixel
// of the given colour.
func (p *Plan) info(x, y int, black bool) {
	p.function(x, y, black)
	i, bit := p.pixel(x, y)
	p.Info[i] |= bit
}

// finder draws a finder pattern with its top left corner at column x,
// row y, and the separator around it, clipped to the code.
func (p *Plan) finder(x, y int) {
	for dy := -1; dy <= 7; dy++ {
		for dx := -1; dx <= 7; dx++ {
			xx, yy := x+dx, y+dy
			if xx < 0 || xx >= p.Size || yy < 0 || yy >= p.Size {
				continue
			}
			d := max(abs(dx-3), abs(dy-3))
			p.function(xx, yy, d != 2 && d != 4)
		}
	}
}

// align draws an alignment pattern centred at column x, row y.
func (p *Plan) align(x, y int) {
	for dy := -2; dy <= 2; dy++ {
		for dx := -2; dx <= 2; dx++ {
			p.function(x+dx, y+dy, max(abs(dx), abs(dy)) != 1)
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// formatPixel returns the column and row of the two copies of
// format bit i, counting from the least significant bit.
func formatPixel(i, siz int) (x1, y1, x2, y2 int) {
	x1 = 8
	switch {
	case i < 6:
		y1 = i
	case i < 8:
		y1 = i + 1
	default:
		y1 = siz - 15 + i
	}
	y2 = 8
	switch {
	case i < 8:
		x2 = siz - 1 - i
	case i == 8:
		x2 = 7
	default:
		x2 = 14 - i
	}
	return
}

// vplan creates a Plan for the given version and level.
func vplan(v Version, l Level) *Plan {
	siz := v.Size()
	p := &Plan{
		Version:  v,
		Level:    l,
		DataBits: v.DataBits(l),
		Size:     siz,
		Stride:   (siz + 7) >> 3,
	}
	n := p.Stride * siz
	buf := make([]byte, n*(3+2*len(p.Mask)))
	alloc := func() []byte {
		b := buf[:n:n]
		buf = buf[n:]
		return b
	}
	p.Map, p.Info, p.Base = alloc(), alloc(), alloc()

	// Finder patterns with separators.
	p.finder(0, 0)
	p.finder(siz-7, 0)
	p.finder(0, siz-7)

	// Alignment patterns, except where they overlap finders.
	pos := v.Alignment()
	for _, y := range pos {
		for _, x := range pos {
			if !p.IsFunction(x, y) {
				p.align(x, y)
			}
		}
	}

	// Timing patterns.
	for i := 8; i < siz-8; i++ {
		p.function(i, 6, i&1 == 0)
		p.function(6, i, i&1 == 0)
	}

	// Format information area, white for now.
	for i := 0; i < 15; i++ {
		x1, y1, x2, y2 := formatPixel(i, siz)
		p.info(x1, y1, false)
		p.info(x2, y2, false)
	}

	// Dark pixel.
	p.info(8, siz-8, true)

	// Version information.
	if v >= 7 {
		vb := VersionBits(v)
		for i := 0; i < 18; i++ {
			black := vb>>i&1 != 0
			a, b := i/3, i%3+siz-11
			p.info(b, a, black)
			p.info(a, b, black)
		}
	}

	for m := range p.Mask {
		p.Format[m] = alloc()
		p.fplan(m)
		p.Mask[m] = alloc()
		p.mplan(m)
	}

	if got, want := p.dataPixels(), v.Bytes()*8+v.Remainder(); got != want {
		panic(RuntimeError(fmt.Sprintf("version %v: %d data pixels, "+
			"want %d", v, got, want)))
	}
	return p
}

// fplan draws the format information for mask m.
func (p *Plan) fplan(m int) {
	fb := FormatBits(p.Level, m)
	b := p.Format[m]
	for i := 0; i < 15; i++ {
		if fb>>i&1 == 0 {
			continue
		}
		x1, y1, x2, y2 := formatPixel(i, p.Size)
		j, bit := p.pixel(x1, y1)
		b[j] |= bit
		j, bit = p.pixel(x2, y2)
		b[j] |= bit
	}
}

// maskFunc reports whether mask m inverts the pixel at row i, column j.
func maskFunc(m, i, j int) bool {
	switch m {
	case 0:
		return (i+j)%2 == 0
	case 1:
		return i%2 == 0
	case 2:
		return j%3 == 0
	case 3:
		return (i+j)%3 == 0
	case 4:
		return (i/2+j/3)%2 == 0
	case 5:
		return i*j%2+i*j%3 == 0
	case 6:
		return (i*j%2+i*j%3)%2 == 0
	case 7:
		return (i*j%3+(i+j)%2)%2 == 0
	}
	panic(RuntimeError(fmt.Sprintf("mask %d out of range", m)))
}

// mplan draws mask pattern m over the data pixels.
func (p *Plan) mplan(m int) {
	b := p.Mask[m]
	for y := 0; y < p.Size; y++ {
		for x := 0; x < p.Size; x++ {
			if !p.IsFunction(x, y) && maskFunc(m, y, x) {
				i, bit := p.pixel(x, y)
				b[i] |= bit
			}
		}
	}
}

// walk calls f for each data pixel in placement order.  Pixels are
// visited in two-column strips from the right edge, moving upwards
// in the first strip and alternating direction in each following
// strip, the right pixel before the left one.  The vertical timing
// pattern column is skipped.
func (p *Plan) walk(f func(x, y int)) {
	siz := p.Size
	up := true
	for x := siz - 1; x > 0; x -= 2 {
		if x == 6 {
			x--
		}
		for k := 0; k < siz; k++ {
			y := k
			if up {
				y = siz - 1 - k
			}
			for _, xx := range [2]int{x, x - 1} {
				if !p.IsFunction(xx, y) {
					f(xx, y)
				}
			}
		}
		up = !up
	}
}

func (p *Plan) dataPixels() int {
	n := 0
	p.walk(func(int, int) { n++ })
	return n
}

// Serialise writes bits from s into the data pixels of data, which
// must have the dimensions of the Plan's bitmaps.  The pixels left
// after the bits run out are remainder bits and stay white.
// Serialise panics if s does not hold exactly the codewords of the
// Plan's version.
func (p *Plan) Serialise(s BitStream, data []byte) {
	if got, want := s.Len(), p.Version.Bytes()*8; got != want {
		panic(RuntimeError(fmt.Sprintf("version %v: %d bits to place, "+
			"want %d", p.Version, got, want)))
	}
	p.walk(func(x, y int) {
		if s.Next() != 0 {
			i, bit := p.pixel(x, y)
			data[i] |= bit
		}
	})
}

// choose applies each mask to data and returns the code with the
// lowest penalty under scoring.  Ties go to the lower mask.
func (p *Plan) choose(data []byte, scoring Scoring) *Code {
	cand := &Code{Size: p.Size, Stride: p.Stride,
		Bitmap: make([]byte, len(data))}
	eval := cand
	if scoring == Compat {
		eval = &Code{Size: p.Size, Stride: p.Stride,
			Bitmap: make([]byte, len(data))}
	}
	best, bestPen := make([]byte, len(data)), 0
	for m := range p.Mask {
		mask := p.Mask[m]
		for i, b := range data {
			cand.Bitmap[i] = p.Base[i] | (b ^ mask[i])
		}
		var pen int
		switch scoring {
		case Compat:
			for i, b := range cand.Bitmap {
				eval.Bitmap[i] = b &^ p.Info[i]
			}
			pen = eval.CompatPenalty()
		default:
			pen = eval.Penalty()
		}
		if m == 0 || pen < bestPen {
			best, cand.Bitmap = cand.Bitmap, best
			bestPen = pen
			cand.Mask = m
		}
	}
	for i, f := range p.Format[cand.Mask] {
		best[i] |= f
	}
	cand.Bitmap = best
	return cand
}
