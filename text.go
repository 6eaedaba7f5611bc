// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qr

import (
	"bufio"
	"io"
	"strings"
)

// WriteText writes the modules of c to w, one line per row, each
// module as dark or light, surrounded by c.Border light modules.
func (c *Code) WriteText(w io.Writer, dark, light string) error {
	b := bufio.NewWriter(w)
	if err := c.writeText(b, dark, light); err != nil {
		return err
	}
	return b.Flush()
}

func (c *Code) writeText(b *bufio.Writer, dark, light string) error {
	bord := max(c.Border, 0)
	row := make([]byte, 0, (c.Size+2*bord)*max(len(dark), len(light))+1)
	for y := -bord; y < c.Size+bord; y++ {
		row = row[:0]
		for x := -bord; x < c.Size+bord; x++ {
			if c.Black(x, y) {
				row = append(row, dark...)
			} else {
				row = append(row, light...)
			}
		}
		row = append(row, '\n')
		if _, err := b.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// Text returns the modules of c as text, as written by WriteText.
func (c *Code) Text(dark, light string) string {
	var s strings.Builder
	bord := max(c.Border, 0)
	s.Grow((c.Size + 2*bord) * ((c.Size+2*bord)*max(len(dark), len(light)) + 1))
	c.WriteText(&s, dark, light)
	return s.String()
}

// String returns the modules of c as text, dark modules as "x" and
// light ones as spaces.
func (c *Code) String() string {
	return c.Text("x", " ")
}
