// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tamago && arm
// +build tamago,arm

package main

import (
	_ "unsafe"

	"github.com/f-secure-foundry/tamago/dma"
)

// Override usbarmory pkg ramSize, to reserve the end of external RAM for the
// DCP hashing engine DMA descriptors.

//go:linkname ramSize runtime.ramSize
var ramSize uint32 = 0x1ff00000 // 511MB
// last 1MB of external RAM
var dmaStart uint32 = 0x9ff00000

// 1MB
var dmaSize = 0x100000

func init() {
	dma.Init(dmaStart, dmaSize)
}
