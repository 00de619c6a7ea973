// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tamago && arm
// +build tamago,arm

package main

import (
	"log"
	"os"
	"reflect"
	"runtime"
	"time"
	"unsafe"

	"github.com/usbarmory/GoTEE/applet"
	"github.com/usbarmory/GoTEE/syscall"

	"github.com/usbarmory/psram-example/mem"
	"github.com/usbarmory/psram-example/memtest"
	"github.com/usbarmory/psram-example/report"
	"github.com/usbarmory/psram-example/util"
)

const scratchSize = 4096

// patterns is initialized data, placed by the linker in the XIP window.
var patterns = [...]uint32{memtest.Pattern1, memtest.Pattern2}

func init() {
	log.SetFlags(log.Ltime)
	log.SetOutput(os.Stdout)
}

//go:noinline
func funcAddr(fn interface{}) uint {
	return uint(reflect.ValueOf(fn).Pointer())
}

func logAddr(name string, addr uint) {
	log.Printf("applet %s at %#.8x (xip:%v)", name, addr, mem.WithinXIP(addr))
}

// scratchTest verifies a heap buffer, which lives in external memory as
// well, and returns the number of successful passes.
func scratchTest(buf []byte) (passes int) {
	r, err := mem.NewRegion(uint(uintptr(unsafe.Pointer(&buf[0]))), uint(len(buf)), mem.RAM(buf))

	if err != nil {
		log.Printf("applet scratch region error, %v", err)
		return
	}

	results, err := memtest.Run(r, patterns[:]...)

	if err != nil {
		log.Printf("applet scratch test error, %v", err)
		return
	}

	for _, res := range results {
		log.Printf("applet %s", report.Summary(res))

		if !res.OK() {
			log.Print(report.Failure("applet scratch read-write test failed", res))
			break
		}

		passes++
	}

	return
}

func main() {
	log.Printf("%s/%s (%s) • XIP applet", runtime.GOOS, runtime.GOARCH, runtime.Version())

	buf := make([]byte, scratchSize)

	xip := util.XIPReport{
		Main: funcAddr(main),
		Func: funcAddr(scratchTest),
		Data: uint(uintptr(unsafe.Pointer(&patterns[0]))),
		Heap: uint(uintptr(unsafe.Pointer(&buf[0]))),
	}

	logAddr("main", xip.Main)
	logAddr("func", xip.Func)
	logAddr("data", xip.Data)
	logAddr("heap", xip.Heap)

	xip.Passes = scratchTest(buf)

	if err := syscall.Call("RPC.Report", xip, nil); err != nil {
		log.Printf("applet received RPC error: %v", err)
	}

	ledStatus := util.LEDStatus{
		Name: "blue",
		On:   true,
	}

	for i := 0; i < 4; i++ {
		if err := syscall.Call("RPC.LED", ledStatus, nil); err != nil {
			log.Printf("applet received RPC error: %v", err)
		}

		ledStatus.On = !ledStatus.On
		time.Sleep(250 * time.Millisecond)
	}

	log.Printf("applet says goodbye")

	applet.Exit()
}
