// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/dustin/go-humanize"
	"golang.org/x/term"

	"github.com/usbarmory/psram-example/mem"
	"github.com/usbarmory/psram-example/memtest"
	"github.com/usbarmory/psram-example/report"
)

const maxBufferSize = 102400

// window represents a mapped physical memory window.
type window interface {
	mem.Memory
	Release()
}

var mapMemory = func(start uint, size int) (window, error) {
	w, err := mem.Map(start, size)

	if err != nil {
		return nil, err
	}

	return w, nil
}

// Indicator drives the fault indicator, when set.
var Indicator report.Indicator

func init() {
	Add(Cmd{
		Name:    "peek",
		Args:    2,
		Pattern: regexp.MustCompile(`^peek ([[:xdigit:]]+) (\d+)$`),
		Syntax:  "<hex addr> <size>",
		Help:    "memory display (use with caution)",
		Fn:      memReadCmd,
	})

	Add(Cmd{
		Name:    "poke",
		Args:    2,
		Pattern: regexp.MustCompile(`^poke ([[:xdigit:]]+) ([[:xdigit:]]+)$`),
		Syntax:  "<hex addr> <hex value>",
		Help:    "memory write   (use with caution)",
		Fn:      memWriteCmd,
	})

	Add(Cmd{
		Name:    "memtest",
		Args:    3,
		Pattern: regexp.MustCompile(`^memtest(?: ([[:xdigit:]]+) (\d+)(?: ([[:xdigit:]]+))?)?$`),
		Syntax:  "(<hex addr> <size> (hex pattern)?)?",
		Help:    "external memory write/read/verify test",
		Fn:      memTestCmd,
	})

	Add(Cmd{
		Name:    "led",
		Args:    1,
		Pattern: regexp.MustCompile(`^led (on|off)$`),
		Syntax:  "<on|off>",
		Help:    "set fault indicator",
		Fn:      ledCmd,
	})
}

func parseRange(addrArg string, sizeArg string) (addr uint, size uint, err error) {
	a, err := strconv.ParseUint(addrArg, 16, 32)

	if err != nil {
		return 0, 0, fmt.Errorf("invalid address, %v", err)
	}

	s, err := strconv.ParseUint(sizeArg, 10, 32)

	if err != nil {
		return 0, 0, fmt.Errorf("invalid size, %v", err)
	}

	if (a%mem.WordSize) != 0 || (s%mem.WordSize) != 0 {
		return 0, 0, errors.New("only 32-bit aligned accesses are supported")
	}

	if s > maxBufferSize {
		return 0, 0, fmt.Errorf("size argument must be <= %d", maxBufferSize)
	}

	if a+s > 1<<32 {
		return 0, 0, errors.New("range exceeds 32-bit address space")
	}

	return uint(a), uint(s), nil
}

func mapRegion(addr uint, size uint) (r *mem.Region, w window, err error) {
	if size == 0 {
		return nil, nil, mem.ErrInvalidSize
	}

	if w, err = mapMemory(addr, int(size)); err != nil {
		return
	}

	if r, err = mem.NewRegion(addr, size, w); err != nil {
		w.Release()
		return nil, nil, err
	}

	return
}

func memReadCmd(_ *term.Terminal, arg []string) (res string, err error) {
	addr, size, err := parseRange(arg[0], arg[1])

	if err != nil {
		return
	}

	r, w, err := mapRegion(addr, size)

	if err != nil {
		return
	}
	defer w.Release()

	return report.HexDump(fmt.Sprintf("%#.8x", addr), r.Bytes()), nil
}

func memWriteCmd(_ *term.Terminal, arg []string) (res string, err error) {
	addr, _, err := parseRange(arg[0], "4")

	if err != nil {
		return
	}

	val, err := strconv.ParseUint(arg[1], 16, 32)

	if err != nil {
		return "", fmt.Errorf("invalid data, %v", err)
	}

	r, w, err := mapRegion(addr, mem.WordSize)

	if err != nil {
		return
	}
	defer w.Release()

	err = r.Write(0, uint32(val))

	return
}

func memTestCmd(_ *term.Terminal, arg []string) (res string, err error) {
	addr := uint(mem.TestStart)
	size := uint(mem.TestSize)
	patterns := memtest.DefaultPatterns

	if len(arg[0]) > 0 {
		if addr, size, err = parseRange(arg[0], arg[1]); err != nil {
			return
		}

		if len(arg[2]) > 0 {
			p, err := strconv.ParseUint(arg[2], 16, 32)

			if err != nil {
				return "", fmt.Errorf("invalid pattern, %v", err)
			}

			patterns = []uint32{uint32(p)}
		}
	}

	if mem.OverlapsExternal(addr, size) && !mem.Ready() {
		return "", mem.ErrNotReady
	}

	if mem.OverlapsFirmware(addr, size) {
		return "", errors.New("range overlaps firmware memory")
	}

	r, w, err := mapRegion(addr, size)

	if err != nil {
		return
	}
	defer w.Release()

	return runTest(r, patterns)
}

func runTest(r *mem.Region, patterns []uint32) (string, error) {
	var buf bytes.Buffer

	reporter := &report.Reporter{
		Output:    &buf,
		Indicator: Indicator,
	}

	fmt.Fprintf(&buf, "testing %s (%s)\n", r, humanize.IBytes(uint64(r.Size)))

	results, err := memtest.Run(r, patterns...)

	if err != nil {
		return "", err
	}

	for _, res := range results {
		fmt.Fprintln(&buf, report.Summary(res))

		if reporter.Check("memory read-write test failed", res) == report.Halt {
			buf.WriteString(report.HexDump("Read Data", r.Bytes()))
			return buf.String(), nil
		}
	}

	buf.WriteString("memory read-write successful")

	return buf.String(), nil
}

func ledCmd(_ *term.Terminal, arg []string) (res string, err error) {
	if Indicator == nil {
		return "", errors.New("unavailable")
	}

	return "", Indicator(arg[0] == "on")
}
