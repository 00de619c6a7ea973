// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usbarmory/psram-example/mem"
	"github.com/usbarmory/psram-example/memtest"
)

func rows(t *testing.T, dump string) []string {
	t.Helper()

	require.True(t, strings.HasSuffix(dump, "\n"))
	lines := strings.Split(strings.TrimSuffix(dump, "\n"), "\n")
	require.GreaterOrEqual(t, len(lines), 2)

	return lines[2:]
}

func TestHexDump64(t *testing.T) {
	data := make([]byte, 64)

	for i := range data {
		data[i] = byte(i)
	}

	dump := HexDump("Read Data", data)

	assert.True(t, strings.HasPrefix(dump, "Read Data (64 bytes):\n-------------------------\n"))

	r := rows(t, dump)
	require.Len(t, r, 4)

	for _, row := range r {
		assert.Len(t, strings.Fields(row), 16)
		assert.False(t, strings.HasSuffix(row, " "))
	}

	assert.Equal(t, "0x00 0x01 0x02 0x03 0x04 0x05 0x06 0x07 0x08 0x09 0x0A 0x0B 0x0C 0x0D 0x0E 0x0F", r[0])
	assert.Equal(t, "0x30", strings.Fields(r[3])[0])
}

func TestHexDumpPartial(t *testing.T) {
	dump := HexDump("Read Data", []byte{0xa5, 0x5a, 0x00, 0xff, 0x10})

	r := rows(t, dump)
	require.Len(t, r, 1)
	assert.Equal(t, "0xA5 0x5A 0x00 0xFF 0x10", r[0])
	assert.False(t, strings.HasSuffix(dump, "\n\n"))
}

func TestHexDumpDeterministic(t *testing.T) {
	data := bytes.Repeat([]byte{0xa5}, 20)
	assert.Equal(t, HexDump("x", data), HexDump("x", data))
}

func TestHexDumpEmpty(t *testing.T) {
	assert.Equal(t, "empty (0 bytes):\n-------------------------\n", HexDump("empty", nil))
}

func TestCheckContinue(t *testing.T) {
	var out bytes.Buffer
	var asserted bool

	r := &Reporter{
		Output: &out,
		Indicator: func(on bool) error {
			asserted = on
			return nil
		},
	}

	res := &memtest.Result{Start: mem.TestStart, Size: mem.TestSize, Pattern: memtest.Pattern1}

	assert.Equal(t, Continue, r.Check("PSRAM read-write test failed", res))
	assert.Empty(t, out.String())
	assert.False(t, asserted)
}

func TestCheckHalt(t *testing.T) {
	var out bytes.Buffer
	var asserted bool

	r := &Reporter{
		Output: &out,
		Indicator: func(on bool) error {
			asserted = on
			return nil
		},
	}

	res := &memtest.Result{
		Start:   mem.TestStart,
		Size:    mem.TestSize,
		Pattern: memtest.Pattern1,
		Count:   1,
		Offsets: []uint{32},
		Values:  []uint32{0},
	}

	assert.Equal(t, Halt, r.Check("PSRAM read-write test failed", res))
	assert.True(t, asserted)

	s := out.String()

	assert.Contains(t, s, "FAIL: PSRAM read-write test failed\n")
	assert.Contains(t, s, "Error Code: 0x1\n")
	assert.Contains(t, s, "at 0x82800020 (offset 0x20): read 0x00000000 expected 0xa5a5a5a5")
	assert.Contains(t, s, "stuck low: 0 2 5 7 8 10 13 15 16 18 21 23 24 26 29 31 stuck high: -")
	assert.Contains(t, s, "Test failed for 1 address location(s).")
	assert.Equal(t, 2, strings.Count(s, banner))
}

func TestVerify(t *testing.T) {
	var out bytes.Buffer
	var led []bool

	r := &Reporter{
		Output: &out,
		Indicator: func(on bool) error {
			led = append(led, on)
			return nil
		},
	}

	ok := &memtest.Result{Start: mem.XIPStart, Size: mem.XIPSize, Pattern: memtest.Pattern1}
	bad := &memtest.Result{
		Start:   mem.XIPStart,
		Size:    mem.XIPSize,
		Pattern: memtest.Pattern2,
		Count:   1,
		Offsets: []uint{4},
		Values:  []uint32{0x5a5a5a5b},
	}

	require.NoError(t, r.Verify("XIP window read-write test failed", []*memtest.Result{ok, ok}))
	assert.Empty(t, out.String())
	assert.Empty(t, led)

	err := r.Verify("XIP window read-write test failed", []*memtest.Result{ok, bad, bad})
	require.ErrorIs(t, err, ErrHalt)
	assert.Contains(t, err.Error(), "at 0x8e000000-0x90000000, pattern 0x5a5a5a5a")

	assert.Equal(t, 1, strings.Count(out.String(), "FAIL: XIP window read-write test failed"))
	assert.Equal(t, []bool{true}, led)
}

func TestCheckIndicatorError(t *testing.T) {
	r := &Reporter{
		Indicator: func(bool) error {
			return errors.New("no LED")
		},
	}

	res := &memtest.Result{Pattern: memtest.Pattern2, Count: 1, Offsets: []uint{0}, Values: []uint32{0xffffffff}}

	assert.Equal(t, Halt, r.Check("test", res))
}

func TestStuckBits(t *testing.T) {
	low, high := StuckBits(0x5a5a5a5a, 0x5a5a5a5b)
	assert.Empty(t, low)
	assert.Equal(t, []int{0}, high)

	low, high = StuckBits(0x80000001, 0x00000001)
	assert.Equal(t, []int{31}, low)
	assert.Empty(t, high)
}

func TestSummary(t *testing.T) {
	res := &memtest.Result{Start: mem.TestStart, Size: mem.TestSize, Pattern: memtest.Pattern2}
	assert.Equal(t, "pattern 0x5a5a5a5a over 0x82800000-0x82800040: ok", Summary(res))

	res.Count = 2
	assert.Equal(t, "pattern 0x5a5a5a5a over 0x82800000-0x82800040: 2 mismatch(es)", Summary(res))

	assert.Equal(t, "halt", Halt.String())
	assert.Equal(t, "continue", Continue.String())
}

func TestEndToEnd(t *testing.T) {
	ram := mem.NewRAM(mem.TestSize)
	region, err := mem.NewRegion(mem.TestStart, mem.TestSize, ram)
	require.NoError(t, err)

	r := &Reporter{}

	results, err := memtest.Run(region, memtest.DefaultPatterns...)
	require.NoError(t, err)

	for _, res := range results {
		assert.Equal(t, Continue, r.Check("PSRAM read-write test failed", res))
	}

	r2 := rows(t, HexDump("Read Data", region.Bytes()))
	require.Len(t, r2, 4)
	assert.Equal(t, strings.Repeat("0x5A ", 15)+"0x5A", r2[0])
}
