// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package mem

// This example memory layout splits the USB armory Mk II 512MB DDR in a lower
// half, left unused by the Go runtime and exercised as external memory under
// test, and an upper half holding the Security Monitor. The XIP applet runs
// from the top of external memory.
const (
	// External memory under test
	ExternalStart = 0x80000000
	ExternalSize  = 0x10000000 // 256MB

	// Reference test window within external memory
	TestOffset = 0x02800000
	TestStart  = ExternalStart + TestOffset
	TestSize   = 64

	// Secure Monitor
	SecureStart = 0x90000000
	SecureSize  = 0x05f00000 // 95MB

	// Secure Monitor DMA
	SecureDMAStart = 0x95f00000
	SecureDMASize  = 0x00100000 // 1MB

	// XIP applet, executed in place from external memory
	XIPStart = ExternalStart + ExternalSize - XIPSize
	XIPSize  = 0x02000000 // 32MB
)

// WordSize is the access width, in bytes, of all region accessors.
const WordSize = 4

// WithinXIP returns whether an address falls within the XIP applet window.
func WithinXIP(addr uint) bool {
	return addr >= XIPStart && addr < XIPStart+XIPSize
}

// WithinExternal returns whether an address falls within the external memory
// window under test.
func WithinExternal(addr uint) bool {
	return addr >= ExternalStart && addr < ExternalStart+ExternalSize
}

// Overlaps returns whether range [addr, addr+size) intersects
// [start, start+length), computed without 32-bit wrap around.
func Overlaps(addr uint, size uint, start uint, length uint) bool {
	if size == 0 || length == 0 {
		return false
	}

	return uint64(addr) < uint64(start)+uint64(length) &&
		uint64(addr)+uint64(size) > uint64(start)
}

// OverlapsExternal returns whether a range intersects external memory.
func OverlapsExternal(addr uint, size uint) bool {
	return Overlaps(addr, size, ExternalStart, ExternalSize)
}

// OverlapsFirmware returns whether a range intersects memory owned by the
// Security Monitor or the XIP applet.
func OverlapsFirmware(addr uint, size uint) bool {
	return Overlaps(addr, size, SecureStart, SecureDMAStart+SecureDMASize-SecureStart) ||
		Overlaps(addr, size, XIPStart, XIPSize)
}
