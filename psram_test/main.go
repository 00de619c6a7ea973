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
	"os"
	"runtime"
	"time"
	_ "unsafe"

	"github.com/dustin/go-humanize"

	usbarmory "github.com/usbarmory/tamago/board/usbarmory/mk2"
	"github.com/usbarmory/tamago/dma"
	"github.com/usbarmory/tamago/soc/imx6"
	"github.com/usbarmory/tamago/soc/imx6/usb"

	"github.com/usbarmory/imx-usbnet"

	"github.com/usbarmory/psram-example/cmd"
	"github.com/usbarmory/psram-example/mem"
	"github.com/usbarmory/psram-example/memtest"
	"github.com/usbarmory/psram-example/report"
	"github.com/usbarmory/psram-example/util"
)

const (
	sshPort = 22
	IP      = "10.0.0.1"
	MAC     = "1a:55:89:a2:69:41"
	hostMAC = "1a:55:89:a2:69:42"
)

// faultLED is asserted when external memory fails verification.
const faultLED = "white"

//go:linkname ramStart runtime.ramStart
var ramStart uint32 = mem.SecureStart

//go:linkname ramSize runtime.ramSize
var ramSize uint32 = mem.SecureSize

var console *util.Console

func init() {
	log.SetFlags(log.Ltime)
	log.SetOutput(os.Stdout)

	// Move DMA region to prevent overlap with the external memory under
	// test and the XIP applet.
	dma.Init(mem.SecureDMAStart, mem.SecureDMASize)

	if imx6.Native {
		if err := imx6.SetARMFreq(900); err != nil {
			panic(fmt.Sprintf("WARNING: error setting ARM frequency: %v", err))
		}

		debugConsole, _ := usbarmory.DetectDebugAccessory(250 * time.Millisecond)
		<-debugConsole
	}

	cmd.Banner = fmt.Sprintf("%s/%s (%s) • external memory read-write in XIP mode", runtime.GOOS, runtime.GOARCH, runtime.Version())
	cmd.Indicator = faultIndicator
	cmd.XIP = xip

	log.Print(cmd.Banner)
}

func faultIndicator(on bool) error {
	return usbarmory.LED(faultLED, on)
}

// halt suspends forward progress after a memory fault, it never returns.
func halt() {
	log.Printf("SM halted on memory fault")

	for {
		time.Sleep(time.Hour)
	}
}

// memoryTest performs the reference write/read/verify test of each pattern
// over the reference external memory window.
func memoryTest() (action report.Action, err error) {
	w, err := mem.Map(mem.TestStart, mem.TestSize)

	if err != nil {
		return
	}
	defer w.Release()

	r, err := mem.NewRegion(mem.TestStart, mem.TestSize, w)

	if err != nil {
		return
	}

	reporter := &report.Reporter{
		Output:    os.Stdout,
		Indicator: faultIndicator,
	}

	for _, pattern := range memtest.DefaultPatterns {
		log.Printf("writing data %#x to %s memory starting from %#x", pattern, humanize.IBytes(uint64(r.Size)), r.Start)

		res, err := memtest.Verify(r, pattern)

		if err != nil {
			return report.Halt, err
		}

		log.Printf("reading from memory at %#x", r.Start)
		fmt.Print(report.HexDump("Read Data", r.Bytes()))

		if action = reporter.Check("PSRAM read-write test failed", res); action == report.Halt {
			return action, nil
		}
	}

	return report.Continue, nil
}

func main() {
	defer log.Printf("SM says goodbye")

	if err := mem.Init(&controller{}, mem.DefaultPSRAMConfig); err != nil {
		log.Fatalf("PSRAM init failed, %v", err)
	}

	action, err := memoryTest()

	if err != nil {
		log.Fatalf("PSRAM read-write test error, %v", err)
	}

	if action == report.Halt {
		halt()
	}

	log.Printf("PSRAM read-write successful")

	if err = xip(); errors.Is(err, report.ErrHalt) {
		halt()
	} else if err != nil {
		log.Printf("SM could not run XIP applet, %v", err)
	}

	if !imx6.Native {
		return
	}

	iface, err := usbnet.Init(IP, MAC, hostMAC, 1)

	if err != nil {
		log.Fatalf("SM could not initialize USB networking, %v", err)
	}

	iface.EnableICMP()

	listener, err := iface.ListenerTCP4(sshPort)

	if err != nil {
		log.Fatalf("SM could not initialize SSH listener, %v", err)
	}

	console = &util.Console{
		Banner:   cmd.Banner,
		Help:     cmd.Help,
		Handler:  cmd.Handle,
		Listener: listener,
	}

	if err = console.Start(); err != nil {
		log.Fatalf("SM could not initialize SSH server, %v", err)
	}

	usb.USB1.Init()
	usb.USB1.DeviceMode()
	usb.USB1.Reset()

	// never returns
	usb.USB1.Start(iface.Device())
}
