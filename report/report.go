// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package report renders memory verification outcomes and decides whether
// the caller may continue.
//
// A failed verification is treated as a hardware fault: Check returns Halt
// and the caller is expected to stop making progress (the firmware turns the
// fault LED on and blocks forever) rather than retry or recover.
package report

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/usbarmory/tamago/bits"

	"github.com/usbarmory/psram-example/memtest"
)

// Action represents the caller policy following a verification.
type Action int

const (
	// Continue indicates that all verified words read back correctly.
	Continue Action = iota
	// Halt indicates a fault, forward progress must be suspended.
	Halt
)

func (a Action) String() string {
	switch a {
	case Continue:
		return "continue"
	case Halt:
		return "halt"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

const banner = "===================================================="

// ErrHalt is returned by Verify on a failed verification, callers which own
// the boot flow stop forward progress on it while others report it.
var ErrHalt = errors.New("memory fault")

// Indicator drives a fault indicator output (e.g. a LED).
type Indicator func(on bool) error

// Reporter formats verification results on a console sink.
type Reporter struct {
	// Output is the console sink, output is discarded when nil
	Output io.Writer
	// Indicator is asserted on failure, when not nil
	Indicator Indicator
}

// Check returns Continue when res carries no mismatch, otherwise it writes a
// failure block, asserts the indicator and returns Halt.
func (r *Reporter) Check(label string, res *memtest.Result) Action {
	if res.OK() {
		return Continue
	}

	w := r.Output

	if w == nil {
		w = io.Discard
	}

	fmt.Fprint(w, Failure(label, res))

	if r.Indicator != nil {
		if err := r.Indicator(true); err != nil {
			log.Printf("could not assert fault indicator, %v", err)
		}
	}

	return Halt
}

// Verify runs Check over each result, it returns ErrHalt, wrapped with the
// failing range, on the first one requiring a Halt.
func (r *Reporter) Verify(label string, results []*memtest.Result) error {
	for _, res := range results {
		if r.Check(label, res) == Halt {
			return fmt.Errorf("%w at %#.8x-%#.8x, pattern %#.8x", ErrHalt, res.Start, res.Start+res.Size, res.Pattern)
		}
	}

	return nil
}

// Failure renders the failure block of a verification result.
func Failure(label string, res *memtest.Result) string {
	var buf strings.Builder

	buf.WriteString("\n" + banner + "\n")
	fmt.Fprintf(&buf, "FAIL: %s\n", label)
	fmt.Fprintf(&buf, "Error Code: %#x\n", res.Count)

	for i, off := range res.Offsets {
		val := res.Values[i]
		low, high := StuckBits(res.Pattern, val)

		fmt.Fprintf(&buf, "Read data doesn't match written data at %#.8x (offset %#x): read %#.8x expected %#.8x\n",
			res.Start+off, off, val, res.Pattern)
		fmt.Fprintf(&buf, "  stuck low:%s stuck high:%s\n", bitList(low), bitList(high))
	}

	fmt.Fprintf(&buf, "Test failed for %d address location(s).\n", res.Count)
	buf.WriteString(banner + "\n")

	return buf.String()
}

// Summary renders a single line outcome of a verification result.
func Summary(res *memtest.Result) string {
	status := "ok"

	if !res.OK() {
		status = fmt.Sprintf("%d mismatch(es)", res.Count)
	}

	return fmt.Sprintf("pattern %#.8x over %#.8x-%#.8x: %s", res.Pattern, res.Start, res.Start+res.Size, status)
}

// StuckBits returns the bit positions which read back as 0 while written as
// 1 (low) and as 1 while written as 0 (high).
func StuckBits(pattern uint32, val uint32) (low []int, high []int) {
	lowMask := pattern &^ val
	highMask := val &^ pattern

	for pos := 0; pos < 32; pos++ {
		if bits.Get(&lowMask, pos, 1) == 1 {
			low = append(low, pos)
		}

		if bits.Get(&highMask, pos, 1) == 1 {
			high = append(high, pos)
		}
	}

	return
}

func bitList(pos []int) string {
	if len(pos) == 0 {
		return " -"
	}

	var buf strings.Builder

	for _, p := range pos {
		fmt.Fprintf(&buf, " %d", p)
	}

	return buf.String()
}
