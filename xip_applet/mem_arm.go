// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tamago && arm
// +build tamago,arm

package main

import (
	_ "unsafe"

	"github.com/usbarmory/psram-example/mem"
)

//go:linkname ramStart runtime.ramStart
var ramStart uint32 = mem.XIPStart

//go:linkname ramSize runtime.ramSize
var ramSize uint32 = mem.XIPSize

//go:linkname ramStackOffset runtime.ramStackOffset
var ramStackOffset uint32 = 0x100
