// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package memtest implements a single pass write/read/verify exerciser for
// memory regions.
//
// Each pass writes a 32-bit pattern across the whole region in ascending
// order, then reads it back in the same order, so that no read of a region
// is ever interleaved with its writes. Complementary patterns probe both
// stuck-at-0 and stuck-at-1 faults.
package memtest

import (
	"github.com/usbarmory/psram-example/mem"
)

// Reference test patterns.
const (
	Pattern1 = 0xa5a5a5a5
	Pattern2 = 0x5a5a5a5a
)

// DefaultPatterns are the complementary patterns of the reference test.
var DefaultPatterns = []uint32{Pattern1, Pattern2}

// Result represents the outcome of a single verification pass.
type Result struct {
	// Start is the verified region base address
	Start uint
	// Size is the verified region size in bytes
	Size uint
	// Pattern is the written test pattern
	Pattern uint32

	// Count is the number of words which did not read back Pattern
	Count int
	// Offsets lists, in ascending order, the byte offsets of mismatching
	// words.
	Offsets []uint
	// Values lists the values read back at each entry of Offsets.
	Values []uint32
}

// OK returns whether every word read back the written pattern.
func (res *Result) OK() bool {
	return res.Count == 0
}

// Verify writes pattern to every word of r, reads all words back and reports
// mismatches. The region size is validated before any access.
func Verify(r *mem.Region, pattern uint32) (res *Result, err error) {
	if err = r.Validate(); err != nil {
		return
	}

	n := r.Words()

	for i := 0; i < n; i++ {
		if err = r.Write(i, pattern); err != nil {
			return
		}
	}

	res = &Result{
		Start:   r.Start,
		Size:    r.Size,
		Pattern: pattern,
	}

	for i := 0; i < n; i++ {
		val, err := r.Read(i)

		if err != nil {
			return nil, err
		}

		if val != pattern {
			res.Count++
			res.Offsets = append(res.Offsets, uint(i)*mem.WordSize)
			res.Values = append(res.Values, val)
		}
	}

	return
}

// Run verifies r once for each pattern, in order, and stops after the first
// pass reporting mismatches.
func Run(r *mem.Region, patterns ...uint32) (results []*Result, err error) {
	for _, pattern := range patterns {
		res, err := Verify(r, pattern)

		if err != nil {
			return results, err
		}

		results = append(results, res)

		if !res.OK() {
			break
		}
	}

	return
}
