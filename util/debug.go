// Copyright 2022 The Armored Witness OS authors. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package util

import (
	"bytes"
	"debug/elf"
	"debug/gosym"
	"errors"
	"fmt"
	"sync"
)

var debugTarget struct {
	sync.Mutex

	elf      []byte
	symTable *gosym.Table
}

// SetDebugTarget sets the ELF image used for symbol lookups.
func SetDebugTarget(buf []byte) {
	debugTarget.Lock()
	defer debugTarget.Unlock()

	debugTarget.elf = buf
	debugTarget.symTable = nil
}

func target() ([]byte, error) {
	if len(debugTarget.elf) == 0 {
		return nil, errors.New("no debug target")
	}

	return debugTarget.elf, nil
}

// LookupSym returns the named symbol from the debug target.
func LookupSym(name string) (*elf.Symbol, error) {
	debugTarget.Lock()
	defer debugTarget.Unlock()

	buf, err := target()

	if err != nil {
		return nil, err
	}

	exe, err := elf.NewFile(bytes.NewReader(buf))

	if err != nil {
		return nil, err
	}

	syms, err := exe.Symbols()

	if err != nil {
		return nil, err
	}

	for _, sym := range syms {
		if sym.Name == name {
			return &sym, nil
		}
	}

	return nil, fmt.Errorf("symbol %s not found", name)
}

func goSymTable(buf []byte) (symTable *gosym.Table, err error) {
	exe, err := elf.NewFile(bytes.NewReader(buf))

	if err != nil {
		return
	}

	text := exe.Section(".text")
	pclntab := exe.Section(".gopclntab")
	symtab := exe.Section(".gosymtab")

	if text == nil || pclntab == nil {
		return nil, errors.New("missing Go symbol sections")
	}

	lineTableData, err := pclntab.Data()

	if err != nil {
		return
	}

	lineTable := gosym.NewLineTable(lineTableData, text.Addr)

	var symTableData []byte

	if symtab != nil {
		if symTableData, err = symtab.Data(); err != nil {
			return
		}
	}

	return gosym.NewTable(symTableData, lineTable)
}

// PCToLine resolves a program counter of the debug target to its source
// file and line.
func PCToLine(pc uint64) (s string, err error) {
	debugTarget.Lock()
	defer debugTarget.Unlock()

	buf, err := target()

	if err != nil {
		return
	}

	if debugTarget.symTable == nil {
		if debugTarget.symTable, err = goSymTable(buf); err != nil {
			return
		}
	}

	file, line, fn := debugTarget.symTable.PCToLine(pc)

	if fn == nil {
		return "", fmt.Errorf("pc %#x not found", pc)
	}

	return fmt.Sprintf("%s:%d %s", file, line, fn.Name), nil
}
