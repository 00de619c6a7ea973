// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tamago && arm
// +build tamago,arm

package main

import (
	"errors"
	"fmt"
	"log"

	usbarmory "github.com/usbarmory/tamago/board/usbarmory/mk2"

	"github.com/usbarmory/psram-example/mem"
	"github.com/usbarmory/psram-example/util"
)

// RPC represents the receiver for applet <--> monitor RPC over system calls.
type RPC struct{}

// LED receives a LED state request.
func (r *RPC) LED(led util.LEDStatus, _ *bool) error {
	switch led.Name {
	case faultLED:
		return errors.New("LED is reserved for fault indication")
	case "blue", "Blue", "BLUE":
		return usbarmory.LED(led.Name, led.On)
	default:
		return errors.New("invalid LED")
	}
}

// Report receives the addresses observed by the applet while executing in
// place, and cross checks them against the applet ELF image.
func (r *RPC) Report(report util.XIPReport, _ *bool) error {
	addrs := []struct {
		name string
		addr uint
	}{
		{"main", report.Main},
		{"func", report.Func},
		{"data", report.Data},
		{"heap", report.Heap},
	}

	for _, a := range addrs {
		log.Printf("SM applet %s at %#.8x (xip:%v)", a.name, a.addr, mem.WithinXIP(a.addr))

		if !mem.WithinExternal(a.addr) {
			return fmt.Errorf("applet %s address %#x outside external memory", a.name, a.addr)
		}

		if !mem.WithinXIP(a.addr) {
			return fmt.Errorf("applet %s address %#x outside XIP window", a.name, a.addr)
		}
	}

	sym, err := util.LookupSym("main.main")

	if err != nil {
		return err
	}

	if uint(sym.Value) != report.Main {
		return fmt.Errorf("applet main.main mismatch (ELF:%#x reported:%#x)", sym.Value, report.Main)
	}

	log.Printf("SM applet verified %d scratch pass(es) in place", report.Passes)

	return nil
}
