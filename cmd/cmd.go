// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package cmd implements the diagnostic console commands.
package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"
	"text/tabwriter"

	"golang.org/x/term"
)

// CmdFn represents a command handler.
type CmdFn func(term *term.Terminal, arg []string) (res string, err error)

// Cmd represents a console command.
type Cmd struct {
	Name    string
	Args    int
	Pattern *regexp.Regexp
	Syntax  string
	Help    string
	Fn      CmdFn
}

var cmds = make(map[string]*Cmd)

// Banner is shown on console sessions start.
var Banner string

func init() {
	Add(Cmd{
		Name: "help",
		Help: "this help",
		Fn: func(term *term.Terminal, _ []string) (string, error) {
			return Help(term), nil
		},
	})

	Add(Cmd{
		Name:    "exit, quit",
		Args:    1,
		Pattern: regexp.MustCompile(`^(exit|quit)$`),
		Help:    "close session",
		Fn: func(_ *term.Terminal, _ []string) (string, error) {
			return "logout", io.EOF
		},
	})
}

// Add registers a console command.
func Add(cmd Cmd) {
	cmds[cmd.Name] = &cmd
}

// Help returns the registered commands help.
func Help(term *term.Terminal) string {
	var help bytes.Buffer
	var names []string

	t := tabwriter.NewWriter(&help, 16, 8, 0, '\t', tabwriter.TabIndent)

	for name := range cmds {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		_, _ = fmt.Fprintf(t, "%s\t%s\t # %s\n", cmds[name].Name, cmds[name].Syntax, cmds[name].Help)
	}

	_ = t.Flush()

	if term != nil {
		return string(term.Escape.Cyan) + help.String() + string(term.Escape.Reset)
	}

	return help.String()
}

func lookup(line string) (cmd *Cmd, arg []string, err error) {
	for _, c := range cmds {
		if c.Pattern == nil {
			if c.Name == line {
				return c, nil, nil
			}

			continue
		}

		if m := c.Pattern.FindStringSubmatch(line); len(m) > 0 && (len(m)-1 == c.Args) {
			return c, m[1:], nil
		}
	}

	return nil, nil, errors.New("unknown command, type `help`")
}

// Handle executes a console command line and writes its output to the
// terminal.
func Handle(term *term.Terminal, line string) (err error) {
	line = strings.TrimSpace(line)

	if len(line) == 0 {
		return
	}

	cmd, arg, err := lookup(line)

	if err != nil {
		return
	}

	res, err := cmd.Fn(term, arg)

	if len(res) > 0 && term != nil {
		fmt.Fprintln(term, res)
	}

	return
}
