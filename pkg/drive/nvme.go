// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package drive

import (
	"time"
)

const (
	NVME_ADMIN_IDENTIFY = 0x06
	NVME_SECURITY_SEND  = 0x81
	NVME_SECURITY_RECV  = 0x82

	nvmeIdentifyLength = 4096
)

// NVMeAdmin is the native NVMe admin command path of a host.
type NVMeAdmin interface {
	SecuritySend(proto uint8, sps uint16, data []byte, timeout time.Duration) error
	SecurityReceive(proto uint8, sps uint16, data []byte, timeout time.Duration) error
	IdentifyController(data []byte, timeout time.Duration) error
}

// nvmeSecurityCDW10 packs SECP and SPSP for Security Send/Receive.
func nvmeSecurityCDW10(proto uint8, sps uint16) uint32 {
	return uint32(proto)<<24 | uint32(sps)<<8
}

type nvmeIdentity struct {
	VendorID     uint16
	SerialNumber [20]byte
	ModelNumber  [40]byte
	Firmware     [8]byte
	IEEEOUI      [3]byte
}

// parseNVMeIdentify decodes the controller identify data structure. NVMe
// integers are little endian.
func parseNVMeIdentify(raw []byte) (*nvmeIdentity, error) {
	if len(raw) < 76 {
		return nil, ErrDeviceNotSupported
	}
	id := &nvmeIdentity{VendorID: uint16(raw[0]) | uint16(raw[1])<<8}
	copy(id.SerialNumber[:], raw[4:24])
	copy(id.ModelNumber[:], raw[24:64])
	copy(id.Firmware[:], raw[64:72])
	// stored least significant byte first
	id.IEEEOUI = [3]byte{raw[75], raw[74], raw[73]}
	return id, nil
}
