// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package mem

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	// ErrInvalidSize is returned for regions whose size is not a positive
	// multiple of WordSize.
	ErrInvalidSize = errors.New("region size must be a positive multiple of 4")
	// ErrOutOfBounds is returned by word accessors for indices outside the
	// region, and for regions larger than their backend.
	ErrOutOfBounds = errors.New("word index out of region bounds")
)

// Memory represents a word addressable memory backend, offsets are in bytes
// and always 32-bit aligned.
type Memory interface {
	Read32(off uint) uint32
	Write32(off uint, val uint32)
}

// sized is implemented by backends which know their own extent.
type sized interface {
	Len() int
}

// Region represents a view over externally managed memory, it is not owned
// by this package and must not be accessed concurrently while in use.
type Region struct {
	// Start is the region base address
	Start uint
	// Size is the region size in bytes
	Size uint
	// Memory is the backend serving region accesses, offsets passed to it
	// are relative to Start.
	Memory Memory
}

// NewRegion returns a region over the given memory backend, the size must be
// a positive multiple of WordSize.
func NewRegion(start uint, size uint, m Memory) (r *Region, err error) {
	r = &Region{
		Start:  start,
		Size:   size,
		Memory: m,
	}

	if err = r.Validate(); err != nil {
		return nil, err
	}

	return
}

// Validate checks the region size invariant, and that the backend, when its
// extent is known, covers the whole region.
func (r *Region) Validate() error {
	if r.Size == 0 || r.Size%WordSize != 0 {
		return fmt.Errorf("%w (%d)", ErrInvalidSize, r.Size)
	}

	if r.Memory == nil {
		return errors.New("region has no memory backend")
	}

	if m, ok := r.Memory.(sized); ok && uint64(m.Len()) < uint64(r.Size) {
		return fmt.Errorf("%w (backend %d bytes, region %d bytes)", ErrOutOfBounds, m.Len(), r.Size)
	}

	return nil
}

// End returns the address following the last region byte.
func (r *Region) End() uint {
	return r.Start + r.Size
}

// Words returns the number of 32-bit words within the region.
func (r *Region) Words() int {
	return int(r.Size / WordSize)
}

// Read returns the 32-bit word at index i.
func (r *Region) Read(i int) (uint32, error) {
	if i < 0 || i >= r.Words() {
		return 0, fmt.Errorf("%w (%d)", ErrOutOfBounds, i)
	}

	return r.Memory.Read32(uint(i) * WordSize), nil
}

// Write sets the 32-bit word at index i.
func (r *Region) Write(i int, val uint32) error {
	if i < 0 || i >= r.Words() {
		return fmt.Errorf("%w (%d)", ErrOutOfBounds, i)
	}

	r.Memory.Write32(uint(i)*WordSize, val)

	return nil
}

// Bytes returns a copy of the region content, words are encoded in memory
// (little-endian) order.
func (r *Region) Bytes() []byte {
	buf := make([]byte, r.Words()*WordSize)

	for i := 0; i < r.Words(); i++ {
		binary.LittleEndian.PutUint32(buf[i*WordSize:], r.Memory.Read32(uint(i)*WordSize))
	}

	return buf
}

func (r *Region) String() string {
	return fmt.Sprintf("%#.8x-%#.8x", r.Start, r.End())
}
