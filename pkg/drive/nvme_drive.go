// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package drive

import (
	"time"
)

type nvmeDrive struct {
	h       *Handle
	admin   NVMeAdmin
	timeout time.Duration
}

func (d *nvmeDrive) SendCmd(cmd Command, proto SecurityProtocol, comID uint16, buf []byte) (uint8, int) {
	if !d.h.IsOpen() {
		return StatusFailure, 0
	}
	var err error
	switch cmd {
	case IFRecv:
		err = d.admin.SecurityReceive(uint8(proto), comID, buf, d.timeout)
	case IFSend:
		err = d.admin.SecuritySend(uint8(proto), comID, buf, d.timeout)
	default:
		return StatusFailure, 0
	}
	if err != nil {
		return StatusFailure, 0
	}
	return StatusSuccess, len(buf)
}

func (d *nvmeDrive) Identify(info *DeviceInfo) bool {
	return identifyUsingNVMe(d.admin, info, d.timeout)
}

func (d *nvmeDrive) IsOpen() bool {
	return d.h.IsOpen()
}

func (d *nvmeDrive) Variant() Variant {
	return VariantNVMe
}

func (d *nvmeDrive) Close() error {
	return d.h.Close()
}

func identifyUsingNVMe(admin NVMeAdmin, info *DeviceInfo, timeout time.Duration) bool {
	buf, err := NewAlignedBuffer(nvmeIdentifyLength)
	if err != nil {
		return false
	}
	defer buf.Release()
	if err := admin.IdentifyController(buf.Bytes(), timeout); err != nil {
		return false
	}
	id, err := parseNVMeIdentify(buf.Bytes())
	if err != nil || isZero(id.ModelNumber[:]) {
		return false
	}
	HardCopy(info.PasswordSalt[:], id.SerialNumber[:])
	HardCopy(info.SerialNum[:], id.SerialNumber[:])
	HardCopy(info.ModelNum[:], id.ModelNumber[:])
	HardCopy(info.FirmwareRev[:], id.Firmware[:])
	return true
}
