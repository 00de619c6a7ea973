// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tamago && arm
// +build tamago,arm

package main

import (
	_ "embed"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/usbarmory/tamago/arm"
	"github.com/usbarmory/tamago/dma"

	"github.com/usbarmory/GoTEE/monitor"

	"github.com/usbarmory/armory-boot/exec"

	"github.com/usbarmory/psram-example/mem"
	"github.com/usbarmory/psram-example/memtest"
	"github.com/usbarmory/psram-example/report"
	"github.com/usbarmory/psram-example/util"
)

// This example embeds the XIP applet ELF binary within the firmware
// executable, using Go embed package.

//go:embed assets/xip_applet.elf
var appletELF []byte

// errExit is returned by the applet handler on a clean applet exit.
var errExit = errors.New("exit")

var xipRegion *dma.Region

func init() {
	xipRegion = &dma.Region{
		Start: mem.XIPStart,
		Size:  mem.XIPSize,
	}

	xipRegion.Init()
	xipRegion.Reserve(mem.XIPSize, 0)
}

// verifyXIP exercises the whole XIP window before code is placed in it, a
// fault is returned as report.ErrHalt.
func verifyXIP() (err error) {
	if !mem.Ready() {
		return mem.ErrNotReady
	}

	w, err := mem.Map(mem.XIPStart, mem.XIPSize)

	if err != nil {
		return
	}
	defer w.Release()

	r, err := mem.NewRegion(mem.XIPStart, mem.XIPSize, w)

	if err != nil {
		return
	}

	log.Printf("SM verifying %s XIP window %s", humanize.IBytes(uint64(r.Size)), r)

	results, err := memtest.Run(r, memtest.DefaultPatterns...)

	if err != nil {
		return
	}

	for _, res := range results {
		log.Printf("SM %s", report.Summary(res))
	}

	reporter := &report.Reporter{
		Output:    os.Stdout,
		Indicator: faultIndicator,
	}

	return reporter.Verify("XIP window read-write test failed", results)
}

// loadApplet loads a TamaGo unikernel in the XIP window of external memory.
func loadApplet() (ta *monitor.ExecCtx, err error) {
	if !mem.Ready() {
		return nil, mem.ErrNotReady
	}

	if !mem.WithinExternal(uint(xipRegion.Start)) || !mem.WithinExternal(uint(xipRegion.Start)+uint(xipRegion.Size)-1) {
		return nil, fmt.Errorf("XIP window %#x outside external memory", xipRegion.Start)
	}

	image := &exec.ELFImage{
		Region: xipRegion,
		ELF:    appletELF,
	}

	if err = image.Load(); err != nil {
		return
	}

	// monitor.Load grants user mode access to the XIP window
	if ta, err = monitor.Load(image.Entry(), image.Region, true); err != nil {
		return nil, fmt.Errorf("SM could not load applet, %v", err)
	}

	log.Printf("SM loaded applet addr:%#x entry:%#x size:%d", ta.Memory.Start, ta.R15, len(appletELF))

	if !mem.WithinXIP(uint(ta.R15)) {
		return nil, fmt.Errorf("applet entry %#x outside XIP window", ta.R15)
	}

	// set applet as ELF debugging target
	util.SetDebugTarget(image.ELF)

	// register RPC receiver
	ta.Server.Register(&RPC{})

	// set stack pointer to the end of applet memory
	ta.R13 = mem.XIPStart + mem.XIPSize

	// override default handler to improve logging
	ta.Handler = goHandler

	return
}

func run(ctx *monitor.ExecCtx) (err error) {
	mode := arm.ModeName(int(ctx.SPSR) & 0x1f)

	log.Printf("SM starting mode:%s sp:%#.8x pc:%#.8x", mode, ctx.R13, ctx.R15)

	if err = ctx.Run(); errors.Is(err, errExit) {
		err = nil
	}

	log.Printf("SM stopped mode:%s sp:%#.8x lr:%#.8x pc:%#.8x err:%v", mode, ctx.R13, ctx.R14, ctx.R15, err)

	if err != nil {
		pcLine, _ := util.PCToLine(uint64(ctx.R15))
		lrLine, _ := util.PCToLine(uint64(ctx.R14))

		if pcLine != "" || lrLine != "" {
			log.Printf("stack trace:\n  %s\n  %s", pcLine, lrLine)
		}
	}

	return
}

// xip verifies the XIP window, then loads and runs the applet in place.
func xip() (err error) {
	if err = verifyXIP(); err != nil {
		return
	}

	ta, err := loadApplet()

	if err != nil {
		return
	}

	return run(ta)
}
