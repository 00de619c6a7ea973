// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package mem

import (
	"errors"
	"fmt"
	"sync"
)

// ErrNotReady is returned when external memory is accessed before its
// controller initialization.
var ErrNotReady = errors.New("memory controller not initialized")

// Controller represents the external memory controller, its configuration is
// opaque to this package and passed through untouched.
type Controller interface {
	Init(config interface{}) error
}

// PSRAMConfig holds the SMIF parameters of a serial PSRAM device.
type PSRAMConfig struct {
	ReadIDCmd       uint8
	ManufacturerID  uint8
	KnownGoodDie    uint8
	QuadReadCmd     uint8
	QuadWriteCmd    uint8
	SelectHoldDelay uint8
	SubPageNr       uint8
}

// DefaultPSRAMConfig holds the PSRAM device parameters of the reference
// design.
var DefaultPSRAMConfig = &PSRAMConfig{
	ReadIDCmd:       0x9f,
	ManufacturerID:  0x0d,
	KnownGoodDie:    0x5d,
	QuadReadCmd:     0xeb,
	QuadWriteCmd:    0x38,
	SelectHoldDelay: 0x01,
	SubPageNr:       0x01,
}

var (
	mu    sync.Mutex
	ready bool
)

// Init initializes the external memory controller, it must succeed before any
// region within external memory is accessed.
func Init(c Controller, config interface{}) (err error) {
	mu.Lock()
	defer mu.Unlock()

	if c == nil {
		return errors.New("missing memory controller")
	}

	if err = c.Init(config); err != nil {
		ready = false
		return fmt.Errorf("memory controller initialization failed, %w", err)
	}

	ready = true

	return
}

// Ready returns whether the external memory controller has been initialized.
func Ready() bool {
	mu.Lock()
	defer mu.Unlock()

	return ready
}
