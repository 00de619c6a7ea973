// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package cmd

import (
	"errors"

	"golang.org/x/term"
)

// XIP loads and runs the execute-in-place applet, when set.
var XIP func() error

func init() {
	Add(Cmd{
		Name: "xip",
		Help: "run applet in place from external memory",
		Fn:   xipCmd,
	})
}

func xipCmd(_ *term.Terminal, _ []string) (string, error) {
	if XIP == nil {
		return "", errors.New("unavailable")
	}

	return "", XIP()
}
