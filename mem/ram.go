// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package mem

import (
	"encoding/binary"
)

// RAM is a Memory backend over a Go byte slice, it is used for regions
// allocated on the heap and under emulation.
type RAM []byte

// NewRAM allocates a zeroed RAM backend of the given size.
func NewRAM(size int) RAM {
	return make(RAM, size)
}

// Len returns the backend size in bytes.
func (m RAM) Len() int {
	return len(m)
}

// Read32 implements Memory.
func (m RAM) Read32(off uint) uint32 {
	return binary.LittleEndian.Uint32(m[off : off+WordSize])
}

// Write32 implements Memory.
func (m RAM) Write32(off uint, val uint32) {
	binary.LittleEndian.PutUint32(m[off:off+WordSize], val)
}
