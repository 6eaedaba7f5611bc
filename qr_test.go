// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qr

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/go-quicktest/qt"
	"github.com/google/go-cmp/cmp"
	"golang.org/x/text/encoding/charmap"

	"github.com/unixdj/qrmatrix/coding"
)

const (
	bbc     = "www.bbc.co.uk/programmes/b0090blw"
	numeric = "279042272585972554922067893753871413584876543211601021503002"
)

var goldenTests = []struct {
	file    string
	text    string
	version int
	level   Level
	scoring Scoring
	mask    int
}{
	{"compat-1-L-duncan", "duncan", 1, L, Compat, 5},
	{"compat-1-M-duncan", "duncan", 1, M, Compat, 1},
	{"compat-1-Q-duncan", "duncan", 1, Q, Compat, 5},
	{"compat-1-H-duncan", "duncan", 1, H, Compat, 5},
	{"compat-3-H-duncan", "duncan", 3, H, Compat, 3},
	{"compat-5-H-duncan", "duncan", 5, H, Compat, 6},
	{"compat-10-H-duncan", "duncan", 10, H, Compat, 3},
	{"compat-4-L-bbc", bbc, 4, L, Compat, 4},
	{"compat-4-M-bbc", bbc, 4, M, Compat, 4},
	{"compat-4-Q-bbc", bbc, 4, Q, Compat, 6},
	{"compat-4-H-bbc", bbc, 0, H, Compat, 3},
	{"compat-2-H-utf8", "тест", 0, H, Compat, 5},
	{"compat-1-H-DUNCAN", "DUNCAN", 1, H, Compat, 5},
	{"compat-2-M-numeric", numeric, 2, M, Compat, 2},
	{"standard-1-L-duncan", "duncan", 1, L, Standard, 6},
	{"standard-1-M-duncan", "duncan", 1, M, Standard, 2},
	{"standard-1-Q-duncan", "duncan", 1, Q, Standard, 3},
	{"standard-1-H-duncan", "duncan", 1, H, Standard, 3},
	{"standard-3-H-duncan", "duncan", 3, H, Standard, 6},
	{"standard-5-H-duncan", "duncan", 5, H, Standard, 1},
	{"standard-10-H-duncan", "duncan", 10, H, Standard, 0},
	{"standard-4-L-bbc", bbc, 4, L, Standard, 6},
	{"standard-4-M-bbc", bbc, 4, M, Standard, 5},
	{"standard-4-Q-bbc", bbc, 4, Q, Standard, 3},
	{"standard-4-H-bbc", bbc, 0, H, Standard, 4},
	{"standard-2-H-utf8", "тест", 0, H, Standard, 1},
	{"standard-1-H-DUNCAN", "DUNCAN", 1, H, Standard, 5},
	{"standard-2-M-numeric", numeric, 2, M, Standard, 1},
}

func TestGolden(t *testing.T) {
	for _, test := range goldenTests {
		t.Run(test.file, func(t *testing.T) {
			want, err := os.ReadFile(filepath.Join("testdata",
				test.file+".golden"))
			qt.Assert(t, qt.IsNil(err))
			c, err := Encode(test.text, WithVersion(test.version),
				WithLevel(test.level), WithScoring(test.scoring))
			qt.Assert(t, qt.IsNil(err))
			if diff := cmp.Diff(string(want), c.String()); diff != "" {
				t.Errorf("modules differ (-want +got):\n%s", diff)
			}
			qt.Check(t, qt.Equals(c.Mask(), test.mask))
			qt.Check(t, qt.Equals(c.Level(), test.level))
			if test.version != 0 {
				qt.Check(t, qt.Equals(c.Version(), test.version))
			}
		})
	}
}

func TestFirstRow(t *testing.T) {
	tests := []struct {
		text  string
		opts  []Option
		dark  string
		light string
		want  string
	}{
		{"duncan", []Option{WithVersion(1)}, "x", " ",
			"xxxxxxx xx x  xxxxxxx\n"},
		{"duncan", []Option{WithVersion(1)}, "q", "n",
			"qqqqqqqnqqnqnnqqqqqqq\n"},
		{"duncan", []Option{WithVersion(1)}, "@", " ",
			"@@@@@@@ @@ @  @@@@@@@\n"},
		{"DUNCAN", []Option{WithVersion(1), WithLevel(H)}, "x", " ",
			"xxxxxxx xxx   xxxxxxx\n"},
		{numeric, []Option{WithVersion(2), WithLevel(M),
			WithMode(Numeric)}, "x", " ",
			"xxxxxxx   x x x   xxxxxxx\n"},
	}
	for _, test := range tests {
		c, err := Encode(test.text,
			append(test.opts, WithScoring(Compat))...)
		qt.Assert(t, qt.IsNil(err))
		s := c.Text(test.dark, test.light)
		i := strings.IndexByte(s, '\n')
		qt.Check(t, qt.Equals(s[:i+1], test.want))
	}
}

func TestAutoSelect(t *testing.T) {
	tests := []struct {
		text    string
		opts    []Option
		version int
		mode    Mode
	}{
		{strings.Repeat("1", 17), nil, 1, Numeric},
		{strings.Repeat("X", 10), nil, 1, Alphanumeric},
		{strings.Repeat("x", 7), nil, 1, Byte},
		{"1234567890", []Option{WithVersion(1)}, 1, Numeric},
		{"2 1058 657682", nil, 2, Alphanumeric},
		{"40952", []Option{WithVersion(1)}, 1, Numeric},
		{"40932", []Option{WithVersion(1)}, 1, Numeric},
		{"a", nil, 1, Byte},
		{"тест", nil, 2, Byte},
		{strings.Repeat("1", 289), []Option{WithMode(Numeric)}, 11, Numeric},
		{strings.Repeat("A", 175), []Option{WithMode(Alphanumeric)}, 11, Alphanumeric},
		{strings.Repeat("a", 383), []Option{WithMode(Byte)}, 21, Byte},
		{"123", []Option{WithMode(Byte)}, 1, Byte},
		{"ABC", []Option{WithMode(Byte)}, 1, Byte},
	}
	for _, test := range tests {
		c, err := Encode(test.text, test.opts...)
		qt.Assert(t, qt.IsNil(err), qt.Commentf("%.20q", test.text))
		qt.Check(t, qt.Equals(c.Version(), test.version),
			qt.Commentf("%.20q", test.text))
		qt.Check(t, qt.Equals(c.Mode(), test.mode))
		qt.Check(t, qt.Equals(c.Level(), H))
		qt.Check(t, qt.Equals(c.Size, 4*test.version+17))
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		text string
		opts []Option
		is   error
		re   string
	}{
		{"duncan", []Option{WithVersion(41)}, ErrVersion, "qr: invalid version"},
		{"duncan", []Option{WithVersion(-1)}, ErrVersion, "qr: invalid version"},
		{"duncan", []Option{WithLevel(Level(4))}, ErrLevel, "qr: invalid level"},
		{"duncan", []Option{WithMode(Mode(7))}, ErrMode, "qr: invalid mode"},
		{"", nil, ErrEmpty, "qr: no data to encode"},
		{"12a", []Option{WithMode(Numeric)}, nil, "qr: non-numeric string `12a`"},
		{"duncan", []Option{WithMode(Alphanumeric)}, nil,
			"qr: non-alphanumeric string `duncan`"},
		{strings.Repeat("a", 10), []Option{WithVersion(1)}, nil,
			`qr: cannot encode 92 bits into 72-bit code \(version 1, level H\)`},
		{strings.Repeat("a", 1274), nil, nil,
			`qr: cannot encode 10212 bits into 10208-bit code \(version 40, level H\)`},
		{"тест", []Option{WithCharset(charmap.ISO8859_1)}, nil,
			"qr: cannot convert `тест`: .*"},
	}
	for _, test := range tests {
		_, err := Encode(test.text, test.opts...)
		qt.Check(t, qt.ErrorAs(err, new(*ValidationError)))
		if test.is != nil {
			qt.Check(t, qt.ErrorIs(err, test.is))
		}
		qt.Check(t, qt.ErrorMatches(err, test.re))
	}
}

func TestCapacityError(t *testing.T) {
	_, err := Encode(strings.Repeat("7", 42), WithVersion(1))
	var ce coding.CapacityError
	qt.Assert(t, qt.IsTrue(errors.As(err, &ce)))
	qt.Check(t, qt.Equals(ce, coding.CapacityError{
		Bits: 4 + 10 + 140, Max: 72, Version: 1, Level: coding.H}))
	// 71 bits leave room for one bit of terminator.
	_, err = Encode(strings.Repeat("7", 17), WithVersion(1))
	qt.Check(t, qt.IsNil(err))
}

func TestParseLevel(t *testing.T) {
	for _, s := range []string{"l", "m", "q", "h", "L", "M", "Q", "H"} {
		_, err := ParseLevel(s)
		qt.Check(t, qt.IsNil(err))
	}
	for _, s := range strings.Split("a b c d e f g i j k n o p r s t u v w x y z", " ") {
		_, err := ParseLevel(s)
		qt.Check(t, qt.ErrorIs(err, ErrLevel))
		qt.Check(t, qt.ErrorAs(err, new(*ValidationError)))
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		s    string
		mode Mode
	}{
		{"numeric", Numeric},
		{"number", Numeric},
		{"Alphanumeric", Alphanumeric},
		{"alpha", Alphanumeric},
		{"byte", Byte},
		{"8bit", Byte},
		{"byte_8bit", Byte},
	}
	for _, test := range tests {
		m, err := ParseMode(test.s)
		qt.Check(t, qt.IsNil(err))
		qt.Check(t, qt.Equals(m, test.mode))
	}
	_, err := ParseMode("kanji")
	qt.Check(t, qt.ErrorIs(err, ErrMode))
}

func TestModule(t *testing.T) {
	c, err := Encode("duncan")
	qt.Assert(t, qt.IsNil(err))
	_, err = c.Module(0, 999999)
	var re coding.RuntimeError
	qt.Check(t, qt.ErrorAs(err, &re))
	qt.Check(t, qt.ErrorMatches(err,
		`qr: invalid row/column pair \(0, 999999\)`))
	_, err = c.Module(-1, 0)
	qt.Check(t, qt.Not(qt.IsNil(err)))

	m := c.Modules()
	qt.Assert(t, qt.HasLen(m, c.Size))
	for row := range m {
		qt.Assert(t, qt.HasLen(m[row], c.Size))
		for col, want := range m[row] {
			got, err := c.Module(row, col)
			qt.Assert(t, qt.IsNil(err))
			qt.Assert(t, qt.Equals(got, want))
			qt.Assert(t, qt.Equals(c.Black(col, row), want))
		}
	}
	// Finder pattern corners and the dark module.
	qt.Check(t, qt.IsTrue(m[0][0]))
	qt.Check(t, qt.IsTrue(m[0][c.Size-1]))
	qt.Check(t, qt.IsTrue(m[c.Size-1][0]))
	qt.Check(t, qt.IsTrue(m[c.Size-8][8]))
	qt.Check(t, qt.IsFalse(c.Black(-1, 0)))
	qt.Check(t, qt.IsFalse(c.Black(0, c.Size)))
}

func TestSize(t *testing.T) {
	for v := 1; v <= 40; v++ {
		c, err := Encode("1", WithVersion(v), WithLevel(L))
		qt.Assert(t, qt.IsNil(err))
		qt.Check(t, qt.Equals(c.Size, 4*v+17))
		qt.Check(t, qt.Equals(c.Version(), v))
	}
}

func TestVersionMonotonic(t *testing.T) {
	for _, l := range []Level{L, H} {
		last := 0
		for n := 1; n <= 2900; n += 37 {
			c, err := Encode(strings.Repeat("q", n), WithLevel(l))
			if err != nil {
				qt.Assert(t, qt.ErrorAs(err, new(coding.CapacityError)))
				break
			}
			qt.Assert(t, qt.IsTrue(c.Version() >= last))
			if c.Version() > 1 {
				// One version down is too small.
				_, err := Encode(strings.Repeat("q", n), WithLevel(l),
					WithVersion(c.Version()-1))
				qt.Check(t, qt.ErrorAs(err, new(coding.CapacityError)))
			}
			last = c.Version()
		}
	}
}

// formatInfo reads both copies of the format information from c.
func formatInfo(c *Code) (a, b uint32) {
	n := c.Size
	for i := 14; i >= 0; i-- {
		var row, col int
		switch {
		case i < 6:
			row = i
		case i < 8:
			row = i + 1
		default:
			row = n - 15 + i
		}
		switch {
		case i < 8:
			col = n - 1 - i
		case i == 8:
			col = 7
		default:
			col = 14 - i
		}
		a <<= 1
		if c.Black(8, row) {
			a |= 1
		}
		b <<= 1
		if c.Black(col, 8) {
			b |= 1
		}
	}
	return a, b
}

// versionInfo reads both copies of the version information from c.
func versionInfo(c *Code) (a, b uint32) {
	n := c.Size
	for i := 17; i >= 0; i-- {
		a <<= 1
		if c.Black(i%3+n-11, i/3) {
			a |= 1
		}
		b <<= 1
		if c.Black(i/3, i%3+n-11) {
			b |= 1
		}
	}
	return a, b
}

func TestFormatAndVersionInfo(t *testing.T) {
	for _, test := range goldenTests {
		c, err := Encode(test.text, WithVersion(test.version),
			WithLevel(test.level), WithScoring(test.scoring))
		qt.Assert(t, qt.IsNil(err))
		a, b := formatInfo(c)
		qt.Check(t, qt.Equals(a, b))
		want := coding.FormatBits(coding.Level(test.level), c.Mask())
		qt.Check(t, qt.Equals(a, uint32(want)), qt.Commentf("%s", test.file))
		qt.Check(t, qt.Equals(coding.BCHRemainder(a^0x5412, 0x537), 0))
		if c.Version() >= 7 {
			a, b := versionInfo(c)
			qt.Check(t, qt.Equals(a, b))
			qt.Check(t, qt.Equals(a>>12, uint32(c.Version())))
			qt.Check(t, qt.Equals(coding.BCHRemainder(a, 0x1f25), 0))
		}
	}
}

func TestDeterministic(t *testing.T) {
	want, err := Encode(bbc, WithLevel(Q))
	qt.Assert(t, qt.IsNil(err))
	var wg sync.WaitGroup
	got := make([]*Code, 8)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i], _ = Encode(bbc, WithLevel(Q))
		}(i)
	}
	wg.Wait()
	for _, c := range got {
		qt.Check(t, qt.DeepEquals(c.Modules(), want.Modules()))
		qt.Check(t, qt.Equals(c.Mask(), want.Mask()))
	}
}

func TestCharset(t *testing.T) {
	c1, err := Encode("café", WithCharset(charmap.ISO8859_1))
	qt.Assert(t, qt.IsNil(err))
	c2, err := EncodeBytes([]byte("caf\xe9"))
	qt.Assert(t, qt.IsNil(err))
	qt.Check(t, qt.DeepEquals(c1.Bitmap, c2.Bitmap))
	qt.Check(t, qt.Equals(c1.Mode(), Byte))

	// Numeric text is not converted.
	c1, err = Encode("123", WithCharset(charmap.CodePage037))
	qt.Assert(t, qt.IsNil(err))
	c2, err = Encode("123")
	qt.Assert(t, qt.IsNil(err))
	qt.Check(t, qt.DeepEquals(c1.Bitmap, c2.Bitmap))

	// EncodeBytes never converts.
	c1, err = EncodeBytes([]byte("café"), WithCharset(charmap.ISO8859_1))
	qt.Assert(t, qt.IsNil(err))
	c2, err = Encode("café")
	qt.Assert(t, qt.IsNil(err))
	qt.Check(t, qt.DeepEquals(c1.Bitmap, c2.Bitmap))
}

func TestBorder(t *testing.T) {
	c, err := Encode("duncan", WithScoring(Compat))
	qt.Assert(t, qt.IsNil(err))
	c.Border = 2
	lines := strings.Split(c.Text("#", "."), "\n")
	qt.Assert(t, qt.HasLen(lines, c.Size+4+1))
	qt.Check(t, qt.Equals(lines[0], strings.Repeat(".", c.Size+4)))
	qt.Check(t, qt.Equals(lines[2], "..#######.##.#..#######.."))
	qt.Check(t, qt.Equals(lines[len(lines)-1], ""))

	var b strings.Builder
	qt.Assert(t, qt.IsNil(c.WriteText(&b, "#", ".")))
	qt.Check(t, qt.Equals(b.String(), c.Text("#", ".")))
}
