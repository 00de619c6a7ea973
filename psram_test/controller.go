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

	"github.com/usbarmory/tamago/arm"
	"github.com/usbarmory/tamago/soc/imx6"

	"github.com/usbarmory/psram-example/mem"
)

// controller brings up external memory on the USB armory Mk II.
//
// The DDR controller (MMDC) is already configured by the boot ROM through
// the image Device Configuration Data, therefore initialization only needs
// to validate the device parameters and map the external window.
type controller struct{}

// memoryAttr flags first-level sections as normal (cacheable, bufferable)
// memory.
const memoryAttr = arm.TTE_CACHEABLE | arm.TTE_BUFFERABLE | arm.TTE_SECTION

func (c *controller) Init(config interface{}) (err error) {
	cfg, ok := config.(*mem.PSRAMConfig)

	if !ok || cfg == nil {
		return errors.New("invalid device configuration")
	}

	if cfg.ReadIDCmd == 0 || cfg.QuadReadCmd == 0 || cfg.QuadWriteCmd == 0 {
		return fmt.Errorf("incomplete device configuration %+v", *cfg)
	}

	log.Printf("SM external memory device id:%#.2x kgd:%#.2x read:%#.2x write:%#.2x",
		cfg.ManufacturerID, cfg.KnownGoodDie, cfg.QuadReadCmd, cfg.QuadWriteCmd)

	imx6.ARM.ConfigureMMU(mem.ExternalStart, mem.ExternalStart+mem.ExternalSize, memoryAttr|arm.TTE_AP_001<<10)

	return
}
