// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package mem

import (
	"errors"
	"sync/atomic"
	"unsafe"
)

// ErrUnmapped is returned when a physical window cannot be mapped on the
// running target.
var ErrUnmapped = errors.New("physical memory mapping unsupported")

// Window is a Memory backend over a physical address window, every access is
// performed as a single 32-bit load or store.
type Window struct {
	// Start is the window physical address
	Start uint

	buf     []byte
	release func()
}

// Map returns a Window over the physical range [start, start+size), it must
// be released after use.
func Map(start uint, size int) (w *Window, err error) {
	if size <= 0 || size%WordSize != 0 || start%WordSize != 0 {
		return nil, ErrInvalidSize
	}

	return mapWindow(start, size)
}

func (w *Window) word(off uint) *uint32 {
	return (*uint32)(unsafe.Pointer(&w.buf[off : off+WordSize][0]))
}

// Read32 implements Memory.
func (w *Window) Read32(off uint) uint32 {
	return atomic.LoadUint32(w.word(off))
}

// Write32 implements Memory.
func (w *Window) Write32(off uint, val uint32) {
	atomic.StoreUint32(w.word(off), val)
}

// Len returns the window size in bytes.
func (w *Window) Len() int {
	return len(w.buf)
}

// Release frees the window mapping.
func (w *Window) Release() {
	if w.release != nil {
		w.release()
		w.release = nil
	}

	w.buf = nil
}
