// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tamago && arm
// +build tamago,arm

package main

import (
	"github.com/usbarmory/GoTEE/monitor"
	"github.com/usbarmory/GoTEE/syscall"

	"github.com/usbarmory/psram-example/util"
)

// goHandler overrides the GoTEE default handler to avoid interleaved logs, as
// the monitor and applet contexts are logging simultaneously.
func goHandler(ctx *monitor.ExecCtx) (err error) {
	switch ctx.R0 {
	case syscall.SYS_WRITE:
		if console != nil && console.Term != nil {
			util.BufferedTermLog(byte(ctx.R1), console.Term)
		} else {
			util.BufferedStdoutLog(byte(ctx.R1))
		}
	case syscall.SYS_EXIT:
		if ctx.Debug {
			ctx.Print()
		}

		return errExit
	default:
		err = monitor.SecureHandler(ctx)
	}

	return
}
