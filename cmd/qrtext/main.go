// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Qrtext prints a QR code as text.
package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"github.com/pborman/getopt/v2"
	"golang.org/x/text/encoding/charmap"

	"github.com/unixdj/qrmatrix"
)

var g struct {
	dark, light string      // module glyphs
	border      int         // quiet zone
	rev         bool        // reverse colours
	latin1      bool        // Latin-1 byte mode
	compat      bool        // compatible mask scoring
	debug       bool        // debug logging
	opts        []qr.Option // encoder options
}

var logger = log.NewWithOptions(os.Stderr, log.Options{
	Prefix: "qrtext",
})

func printUsage(w io.Writer) {
	cl := getopt.CommandLine
	fmt.Fprint(w, "QR code text printer\nUsage: ", cl.Program(), " ",
		cl.UsageLine(), ` [string ...]
If no string is given, data is read from standard input and the final
newline is stripped.  Defaults: level H, smallest version, narrowest
mode, UTF-8 byte mode.

`)
	var b bytes.Buffer
	cl.PrintOptions(&b)
	w.Write(b.Bytes())
}

type opt func()

func (opt) String() string                    { return "" }
func (o opt) Set(string, getopt.Option) error { o(); return nil }

func usage() {
	printUsage(os.Stderr)
	os.Exit(2)
}

func help() {
	printUsage(os.Stdout)
	os.Exit(0)
}

func version() {
	fmt.Println(`qrtext version 0.1.0
Copyright (c) 2011 The Go Authors
Copyright (c) 2025 Vadim Vygonets`)
	os.Exit(0)
}

func parseFlags() {
	getopt.SetUsage(usage)
	getopt.Flag(opt(help), 'h', "show this help").SetFlag()
	getopt.Flag(opt(version), 'V', "print version and copyright").SetFlag()
	getopt.Flag(&g.latin1, '1', "convert byte mode text to Latin-1")
	getopt.Flag(&g.compat, 'c', "choose the mask as earlier encoders do")
	getopt.Flag(&g.rev, 'i', "invert colours")
	getopt.Flag(&g.debug, 'D', "log encoding details")
	getopt.Flag(&g.border, 'm', `quiet zone modules `+
		`[4 if standard output is a TTY, otherwise 0]`, "margin")
	getopt.Flag(&g.dark, 'd', `dark module text `+
		`[full blocks if standard output is a TTY, otherwise "x"]`,
		"glyph")
	getopt.Flag(&g.light, 'w', `light module text [spaces]`, "glyph")
	ver := getopt.Unsigned('v', 0, &getopt.UnsignedLimit{Base: 0, Bits: 8, Min: 0, Max: 40},
		"QR code version, 0 for smallest", "ver")
	lev := getopt.Enum('l',
		[]string{"l", "m", "q", "h", "L", "M", "Q", "H"}, "h",
		"error correction level, lowest to highest", "l|m|q|h")
	mode := getopt.String('M', "", "encoding mode: numeric, "+
		"alphanumeric or byte [narrowest possible]", "mode")

	getopt.Parse()
	tty := isatty.IsTerminal(uintptr(syscall.Stdout))
	if !getopt.IsSet('d') {
		g.dark = "x"
		if tty {
			g.dark = "██"
		}
	}
	if !getopt.IsSet('w') {
		g.light = strings.Repeat(" ", max(len([]rune(g.dark)), 1))
	}
	if !getopt.IsSet('m') && tty {
		g.border = 4
	}
	if g.rev {
		g.dark, g.light = g.light, g.dark
	}
	if g.debug {
		logger.SetLevel(log.DebugLevel)
	}

	l, err := qr.ParseLevel(*lev)
	if err != nil {
		logger.Fatal(err)
	}
	g.opts = append(g.opts, qr.WithLevel(l), qr.WithVersion(int(*ver)))
	if *mode != "" {
		m, err := qr.ParseMode(*mode)
		if err != nil {
			logger.Fatal(err, "mode", *mode)
		}
		g.opts = append(g.opts, qr.WithMode(m))
	}
	if g.latin1 {
		g.opts = append(g.opts, qr.WithCharset(charmap.ISO8859_1))
	}
	if g.compat {
		g.opts = append(g.opts, qr.WithScoring(qr.Compat))
	}
}

func main() {
	parseFlags()

	var s string
	if args := getopt.Args(); len(args) != 0 {
		s = strings.Join(args, " ")
	} else {
		var b strings.Builder
		if _, err := io.Copy(&b, os.Stdin); err != nil {
			logger.Fatal(err)
		}
		s, _ = strings.CutSuffix(
			strings.ReplaceAll(b.String(), "\r\n", "\n"), "\n")
	}

	c, err := qr.Encode(s, g.opts...)
	if err != nil {
		logger.Fatal(err)
	}
	logger.Debug("encoded", "bytes", len(s), "version", c.Version(),
		"mode", c.Mode(), "level", c.Level(), "mask", c.Mask())
	c.Border = g.border
	if err := c.WriteText(os.Stdout, g.dark, g.light); err != nil {
		logger.Fatal(err)
	}
}
