// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package qr encodes text and bytes as QR code module matrices.

Encode picks the narrowest mode that holds the text (numeric,
alphanumeric or byte) and the smallest version that fits it at the
requested error correction level, unless told otherwise by options:

	c, err := qr.Encode("HELLO WORLD", qr.WithLevel(qr.M))
	if err != nil {
		log.Fatal(err)
	}
	fmt.Print(c)

The result is a Code: a square grid of dark and light modules without
the quiet zone.  Rendering it is left to the caller, except for a
plain text dump.
*/
package qr // import "github.com/unixdj/qrmatrix"

import (
	"fmt"

	"golang.org/x/text/encoding"

	"github.com/unixdj/qrmatrix/coding"
)

// Errors wrapped by ValidationError.
var (
	ErrLevel   = coding.ErrLevel
	ErrVersion = coding.ErrVersion
	ErrMode    = coding.ErrMode
	ErrEmpty   = coding.ErrEmpty
)

// A ValidationError reports input rejected before encoding: an invalid
// level, version or mode, text not encodable in the requested mode or
// data too long for the version.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return e.Err.Error() }

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(err error) error { return &ValidationError{err} }

// A Level denotes a QR error correction level.
// From least to most tolerant of errors, they are L, M, Q, H.
type Level int

const (
	L Level = iota // 20% redundant
	M              // 38% redundant
	Q              // 55% redundant
	H              // 65% redundant
)

func (l Level) String() string { return coding.Level(l).String() }

// ParseLevel returns the level named by s: L, M, Q or H in either case.
func ParseLevel(s string) (Level, error) {
	l, err := coding.ParseLevel(s)
	if err != nil {
		return 0, invalid(err)
	}
	return Level(l), nil
}

// A Mode denotes a QR data encoding mode.
type Mode int

const (
	Numeric      = Mode(coding.Numeric)      // decimal digits
	Alphanumeric = Mode(coding.Alphanumeric) // 0-9, A-Z and " $%*+-./:"
	Byte         = Mode(coding.Byte)         // any bytes
)

func (m Mode) String() string { return coding.Mode(m).String() }

// ParseMode returns the mode named by s: "numeric", "alphanumeric" or
// "byte", or one of their aliases such as "number", "alpha" and
// "8bit".
func ParseMode(s string) (Mode, error) {
	m, err := coding.ParseMode(s)
	if err != nil {
		return 0, invalid(err)
	}
	return Mode(m), nil
}

// A Scoring selects the rules for choosing the mask pattern.
type Scoring = coding.Scoring

const (
	Standard = coding.Standard // penalties for runs, boxes, finder-like patterns, balance
	Compat   = coding.Compat   // neighbour counts, as earlier encoders
)

type config struct {
	mode    Mode
	modeSet bool
	level   Level
	version int
	charset encoding.Encoding
	scoring Scoring
}

// An Option configures Encode and EncodeBytes.
type Option func(*config)

// WithMode sets the encoding mode.  Text not representable in the mode
// is rejected.  By default the narrowest mode for the text is used.
func WithMode(m Mode) Option {
	return func(c *config) { c.mode, c.modeSet = m, true }
}

// WithLevel sets the error correction level.  The default is H.
func WithLevel(l Level) Option {
	return func(c *config) { c.level = l }
}

// WithVersion sets the version, from 1 to 40.  Data that does not fit
// the version is rejected.  Zero, the default, selects the smallest
// version that fits.
func WithVersion(v int) Option {
	return func(c *config) { c.version = v }
}

// WithCharset makes Encode convert byte mode text from UTF-8 to the
// character set of e before encoding, for example to ISO 8859-1 with
// charmap.ISO8859_1.  By default byte mode carries UTF-8.
func WithCharset(e encoding.Encoding) Option {
	return func(c *config) { c.charset = e }
}

// WithScoring sets the mask selection rules.  The default is Standard.
func WithScoring(s Scoring) Option {
	return func(c *config) { c.scoring = s }
}

// Encode returns an encoding of text.
// All errors are of type *ValidationError.
func Encode(text string, opts ...Option) (*Code, error) {
	return encode(text, true, opts)
}

// EncodeBytes returns an encoding of data, which is never converted
// to another character set.
func EncodeBytes(data []byte, opts ...Option) (*Code, error) {
	return encode(string(data), false, opts)
}

func encode(text string, convert bool, opts []Option) (*Code, error) {
	cfg := config{level: H}
	for _, o := range opts {
		o(&cfg)
	}
	l := coding.Level(cfg.level)
	if !l.IsValid() {
		return nil, invalid(ErrLevel)
	}
	if cfg.version < 0 || cfg.version > int(coding.MaxVersion) {
		return nil, invalid(ErrVersion)
	}
	if text == "" {
		return nil, invalid(ErrEmpty)
	}
	mode := coding.Detect(text)
	if cfg.modeSet {
		if mode = coding.Mode(cfg.mode); !mode.IsValid() {
			return nil, invalid(ErrMode)
		}
	}
	seg := coding.Segment{Text: text, Mode: mode}
	if !seg.IsValid() {
		return nil, invalid(coding.SegmentError(seg))
	}
	if convert && mode == coding.Byte && cfg.charset != nil {
		s, err := cfg.charset.NewEncoder().String(text)
		if err != nil {
			return nil, invalid(fmt.Errorf("qr: cannot convert %#q: %w",
				text, err))
		}
		seg.Text = s
	}
	v, err := pickVersion(seg, l, coding.Version(cfg.version))
	if err != nil {
		return nil, invalid(err)
	}

	// Build and execute plan.
	e, err := coding.NewEncoder(v, l)
	if err != nil {
		return nil, invalid(err)
	}
	e.SetScoring(cfg.scoring)
	cc, err := e.Encode(seg)
	if err != nil {
		return nil, invalid(err)
	}
	return &Code{
		Bitmap:  cc.Bitmap,
		Size:    cc.Size,
		Stride:  cc.Stride,
		version: v,
		level:   cfg.level,
		mode:    Mode(mode),
		mask:    cc.Mask,
	}, nil
}

// pickVersion returns version v if seg fits in it, or if v is zero,
// the smallest version seg fits in.  The segment length depends on
// the size class, so each class is tried in turn.
func pickVersion(seg coding.Segment, l coding.Level, v coding.Version) (coding.Version, error) {
	if v != 0 {
		n, max := seg.EncodedLength(v.SizeClass()), v.DataBits(l)
		if n > max {
			return 0, coding.CapacityError{Bits: n, Max: max,
				Version: v, Level: l}
		}
		return v, nil
	}
	var n int
	for class := coding.Class0; class <= coding.Class2; class++ {
		v, max := coding.ClassRange(class)
		if n = seg.EncodedLength(class); max.DataBits(l) < n {
			continue
		}
		// Find version in the size class.
		for v < max {
			if mid := (v + max) / 2; mid.DataBits(l) < n {
				v = mid + 1
			} else {
				max = mid
			}
		}
		return v, nil
	}
	return 0, coding.CapacityError{Bits: n,
		Max: coding.MaxVersion.DataBits(l), Version: coding.MaxVersion,
		Level: l}
}

// A Code is a square grid of QR modules, excluding the quiet zone.
type Code struct {
	Bitmap []byte // 1 is dark, 0 is light
	Size   int    // number of modules on a side
	Stride int    // number of bytes per row
	Border int    // quiet zone width for text output

	version coding.Version
	level   Level
	mode    Mode
	mask    int
}

// Version returns the QR version of c, from 1 to 40.
func (c *Code) Version() int { return int(c.version) }

// Level returns the error correction level of c.
func (c *Code) Level() Level { return c.level }

// Mode returns the mode the data in c is encoded in.
func (c *Code) Mode() Mode { return c.mode }

// Mask returns the mask pattern of c, from 0 to 7.
func (c *Code) Mask() int { return c.mask }

// Black reports whether the module at column x, row y is dark.
// Modules outside the code are light.
func (c *Code) Black(x, y int) bool {
	return 0 <= x && x < c.Size && 0 <= y && y < c.Size &&
		c.Bitmap[y*c.Stride+x>>3]&(0x80>>(x&7)) != 0
}

// Module reports whether the module at row, col is dark.
// Coordinates outside the code yield a coding.RuntimeError.
func (c *Code) Module(row, col int) (bool, error) {
	if row < 0 || row >= c.Size || col < 0 || col >= c.Size {
		return false, coding.RuntimeError(fmt.Sprintf(
			"invalid row/column pair (%d, %d)", row, col))
	}
	return c.Black(col, row), nil
}

// Modules returns a copy of the modules of c, indexed by row, then
// column.  True is dark.
func (c *Code) Modules() [][]bool {
	all := make([]bool, c.Size*c.Size)
	m := make([][]bool, c.Size)
	for y := range m {
		m[y] = all[y*c.Size : (y+1)*c.Size : (y+1)*c.Size]
		for x := range m[y] {
			m[y][x] = c.Black(x, y)
		}
	}
	return m
}
