// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package drive

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strconv"
)

// StorageBusType is STORAGE_BUS_TYPE from <winioctl.h>.
type StorageBusType uint32

const (
	BusTypeUnknown StorageBusType = 0x00
	BusTypeScsi    StorageBusType = 0x01
	BusTypeAtapi   StorageBusType = 0x02
	BusTypeAta     StorageBusType = 0x03
	BusType1394    StorageBusType = 0x04
	BusTypeSsa     StorageBusType = 0x05
	BusTypeFibre   StorageBusType = 0x06
	BusTypeUsb     StorageBusType = 0x07
	BusTypeRAID    StorageBusType = 0x08
	BusTypeiScsi   StorageBusType = 0x09
	BusTypeSas     StorageBusType = 0x0A
	BusTypeSata    StorageBusType = 0x0B
	BusTypeSd      StorageBusType = 0x0C
	BusTypeMmc     StorageBusType = 0x0D
	BusTypeVirtual StorageBusType = 0x0E
	BusTypeFile    StorageBusType = 0x0F
	BusTypeSpaces  StorageBusType = 0x10
	BusTypeNvme    StorageBusType = 0x11
)

func (b StorageBusType) DevType() DevType {
	switch b {
	case BusTypeAta, BusTypeSata:
		return DevTypeATA
	case BusTypeUsb:
		return DevTypeUSB
	case BusTypeNvme:
		return DevTypeNVMe
	case BusTypeSas:
		return DevTypeSAS
	}
	return DevTypeOther
}

// STORAGE_DEVICE_DESCRIPTOR offsets
const (
	sddSize                  = 4
	sddDeviceType            = 8
	sddRemovableMedia        = 10
	sddVendorIDOffset        = 12
	sddProductIDOffset       = 16
	sddProductRevisionOffset = 20
	sddSerialNumberOffset    = 24
	sddBusType               = 28
	sddHeaderLength          = 36
)

// StorageDeviceDescriptor is the decoded STORAGE_DEVICE_DESCRIPTOR. Strings
// whose offset was zero are empty.
type StorageDeviceDescriptor struct {
	DeviceType      uint8
	RemovableMedia  bool
	BusType         StorageBusType
	VendorID        []byte
	ProductID       []byte
	ProductRevision []byte
	SerialNumber    []byte
}

func ParseStorageDeviceDescriptor(b []byte) (*StorageDeviceDescriptor, error) {
	if len(b) < sddHeaderLength {
		return nil, fmt.Errorf("storage device descriptor of %d bytes is truncated", len(b))
	}
	if size := int(binary.LittleEndian.Uint32(b[sddSize:])); size < len(b) && size >= sddHeaderLength {
		b = b[:size]
	}
	return &StorageDeviceDescriptor{
		DeviceType:      b[sddDeviceType],
		RemovableMedia:  b[sddRemovableMedia] != 0,
		BusType:         StorageBusType(binary.LittleEndian.Uint32(b[sddBusType:])),
		VendorID:        descriptorString(b, sddVendorIDOffset),
		ProductID:       descriptorString(b, sddProductIDOffset),
		ProductRevision: descriptorString(b, sddProductRevisionOffset),
		SerialNumber:    descriptorString(b, sddSerialNumberOffset),
	}, nil
}

// descriptorString follows the offset stored at field to a NUL terminated
// string. A zero offset means the string is absent.
func descriptorString(b []byte, field int) []byte {
	off := int(binary.LittleEndian.Uint32(b[field:]))
	if off == 0 || off >= len(b) {
		return nil
	}
	s := b[off:]
	if i := bytes.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}
	return bytes.Clone(s)
}

func applyStorageDescriptor(d *StorageDeviceDescriptor, info *DeviceInfo) Properties {
	HardCopy(info.VendorID[:], d.VendorID)
	HardCopy(info.ModelNum[:], d.ProductID)
	HardCopy(info.FirmwareRev[:], d.ProductRevision)
	HardCopy(info.SerialNum[:], d.SerialNumber)
	info.DevType = d.BusType.DevType()
	return Properties{
		"VendorId":        string(d.VendorID),
		"ProductId":       string(d.ProductID),
		"ProductRevision": string(d.ProductRevision),
		"SerialNumber":    string(d.SerialNumber),
		"BusType":         strconv.Itoa(int(d.BusType)),
		"RemovableMedia":  strconv.FormatBool(d.RemovableMedia),
	}
}
