// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package util

import (
	"bytes"
	"io"
	"os"
	"sync"

	"golang.org/x/term"
)

const outputLimit = 1024
const flushChr = 0x0a // \n

// appletOutput collects XIP applet characters, received one at a time over
// the write system call, so that its lines never interleave with monitor
// logs.
var appletOutput struct {
	sync.Mutex
	buf bytes.Buffer
}

func buffer(c byte) (line []byte) {
	appletOutput.Lock()
	defer appletOutput.Unlock()

	buf := &appletOutput.buf
	buf.WriteByte(c)

	if c == flushChr || buf.Len() > outputLimit {
		line = append(line, buf.Bytes()...)
		buf.Reset()
	}

	return
}

// BufferedLog buffers applet output, complete lines are flushed to w.
func BufferedLog(c byte, w io.Writer) {
	if line := buffer(c); len(line) > 0 {
		w.Write(line)
	}
}

// BufferedStdoutLog buffers applet output, complete lines are flushed to
// the standard output.
func BufferedStdoutLog(c byte) {
	BufferedLog(c, os.Stdout)
}

// BufferedTermLog buffers applet output, complete lines are flushed to the
// terminal in a distinct color.
func BufferedTermLog(c byte, t *term.Terminal) {
	line := buffer(c)

	if len(line) == 0 {
		return
	}

	t.Write(t.Escape.Green)
	t.Write(line)
	t.Write(t.Escape.Reset)
}
