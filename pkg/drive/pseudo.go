// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package drive

import (
	"time"

	"github.com/open-source-firmware/go-tcg-drive/pkg/drive/sgio"
)

// pseudoDrive stands in for a block storage device the host exposes without
// a native security transport. Commands go through whatever SCSI translation
// the host offers, identity comes from host properties.
type pseudoDrive struct {
	h       *Handle
	host    Host
	exec    sgio.Executor
	timeout time.Duration
}

func (d *pseudoDrive) SendCmd(cmd Command, proto SecurityProtocol, comID uint16, buf []byte) (uint8, int) {
	if !d.h.IsOpen() {
		return StatusFailure, 0
	}
	return SendSecurityProtocol(d.exec, cmd, proto, comID, buf, d.timeout)
}

func (d *pseudoDrive) Identify(info *DeviceInfo) bool {
	_, err := d.host.Introspect(d.h, info)
	return err == nil
}

func (d *pseudoDrive) IsOpen() bool {
	return d.h.IsOpen()
}

func (d *pseudoDrive) Variant() Variant {
	return VariantPseudo
}

func (d *pseudoDrive) Close() error {
	return d.h.Close()
}
