// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tamago
// +build tamago

package mem

import (
	"github.com/usbarmory/tamago/dma"
)

func mapWindow(start uint, size int) (*Window, error) {
	r := &dma.Region{
		Start: uint32(start),
		Size:  size,
	}

	r.Init()

	addr, buf := r.Reserve(size, 0)

	return &Window{
		Start: uint(addr),
		buf:   buf,
		release: func() {
			r.Release(addr)
		},
	}, nil
}
