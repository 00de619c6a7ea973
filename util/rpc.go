// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package util

// LEDStatus represents an RPC LED state request.
type LEDStatus struct {
	// Name is the LED name
	Name string
	// On is the LED state
	On bool
}

// XIPReport represents the addresses observed by the XIP applet while
// executing from external memory.
type XIPReport struct {
	// Main is the address of the applet main function
	Main uint
	// Func is the address of a non-inlined applet function
	Func uint
	// Data is the address of initialized applet data
	Data uint
	// Heap is the address of a heap allocated applet buffer
	Heap uint
	// Passes is the number of successful scratch memory verifications
	Passes int
}
