// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package mem

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegionSize(t *testing.T) {
	for _, size := range []uint{0, 1, 3, 5, 62} {
		r, err := NewRegion(TestStart, size, NewRAM(64))

		assert.Nil(t, r)
		assert.ErrorIs(t, err, ErrInvalidSize, "size %d", size)
	}

	r, err := NewRegion(TestStart, 4, NewRAM(4))
	require.NoError(t, err)

	assert.Equal(t, 1, r.Words())
	assert.Equal(t, uint(TestStart+4), r.End())
}

func TestRegionNoBackend(t *testing.T) {
	_, err := NewRegion(TestStart, 16, nil)

	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidSize))
}

func TestRegionBackendTooSmall(t *testing.T) {
	r, err := NewRegion(TestStart, 64, NewRAM(16))

	assert.Nil(t, r)
	assert.ErrorIs(t, err, ErrOutOfBounds)

	r, err = NewRegion(TestStart, 16, NewRAM(64))
	require.NoError(t, err)
	assert.Equal(t, 4, r.Words())

	r = &Region{Start: TestStart, Size: 8, Memory: NewRAM(4)}
	assert.ErrorIs(t, r.Validate(), ErrOutOfBounds)
}

func TestRegionBounds(t *testing.T) {
	r, err := NewRegion(TestStart, 16, NewRAM(16))
	require.NoError(t, err)

	require.NoError(t, r.Write(3, 0xdeadbeef))

	val, err := r.Read(3)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xdeadbeef), val)

	assert.ErrorIs(t, r.Write(4, 0), ErrOutOfBounds)
	assert.ErrorIs(t, r.Write(-1, 0), ErrOutOfBounds)

	_, err = r.Read(4)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestRegionBytes(t *testing.T) {
	ram := NewRAM(8)
	r, err := NewRegion(TestStart, 8, ram)
	require.NoError(t, err)

	require.NoError(t, r.Write(0, 0x11223344))
	require.NoError(t, r.Write(1, 0xa5a5a5a5))

	assert.Equal(t, []byte{0x44, 0x33, 0x22, 0x11, 0xa5, 0xa5, 0xa5, 0xa5}, r.Bytes())
	assert.Equal(t, []byte(ram), r.Bytes())
	assert.Equal(t, "0x82800000-0x82800008", r.String())
}

func TestWithin(t *testing.T) {
	assert.True(t, WithinXIP(XIPStart))
	assert.False(t, WithinXIP(XIPStart+XIPSize))
	assert.True(t, WithinExternal(TestStart))
	assert.False(t, WithinExternal(SecureStart))

	assert.True(t, WithinExternal(XIPStart))
	assert.True(t, WithinExternal(XIPStart+XIPSize-1))
	assert.False(t, WithinExternal(XIPStart+XIPSize))
	assert.False(t, Overlaps(TestStart, TestSize, XIPStart, XIPSize))
}

func TestOverlaps(t *testing.T) {
	assert.True(t, OverlapsExternal(ExternalStart-4, 8))
	assert.False(t, OverlapsExternal(ExternalStart-4, 4))
	assert.True(t, OverlapsExternal(ExternalStart+ExternalSize-4, 4))
	assert.False(t, OverlapsExternal(ExternalStart+ExternalSize, 4))
	assert.False(t, OverlapsExternal(TestStart, 0))

	assert.True(t, OverlapsFirmware(SecureStart-4, 8))
	assert.True(t, OverlapsFirmware(SecureDMAStart, 4))
	assert.False(t, OverlapsFirmware(SecureDMAStart+SecureDMASize, 4))
	assert.True(t, OverlapsFirmware(XIPStart, 4))
	assert.False(t, OverlapsFirmware(TestStart, TestSize))

	// no wrap around at the top of the 32-bit address space
	assert.False(t, Overlaps(0xfffffffc, 8, 0, 0x10))
	assert.True(t, Overlaps(0xfffffffc, 4, 0xfffffff0, 0x10))
}
