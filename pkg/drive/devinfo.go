// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package drive

import (
	"bytes"
	"fmt"

	"github.com/open-source-firmware/go-tcg-drive/pkg/drive/quirk"
)

// DevType is the interface class a device was resolved to.
type DevType int

const (
	DevTypeUnknown DevType = iota
	DevTypeATA
	DevTypeSATA
	DevTypeSAS
	DevTypeSCSI
	DevTypeNVMe
	DevTypeUSB
	DevTypeOther
)

func (t DevType) String() string {
	switch t {
	case DevTypeATA:
		return "ATA"
	case DevTypeSATA:
		return "SATA"
	case DevTypeSAS:
		return "SAS"
	case DevTypeSCSI:
		return "SCSI"
	case DevTypeNVMe:
		return "NVMe"
	case DevTypeUSB:
		return "USB"
	case DevTypeOther:
		return "OTHER"
	}
	return "UNKNOWN"
}

func (t DevType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Fixed field widths of DeviceInfo.
const (
	VendorIDLength             = 8
	ModelNumLength             = 40
	FirmwareRevLength          = 8
	SerialNumLength            = 20
	ManufacturerNameLength     = 32
	PhysicalInterconnectLength = 32
	InterconnectLocationLength = 16
	PasswordSaltLength         = 20
	WorldWideNameLength        = 8
)

// SSC records which Level 0 features a device reported.
type SSC struct {
	TPer       bool
	Locking    bool
	Enterprise bool
	Opal1      bool
	Opal2      bool
	Opalite    bool
	Pyrite1    bool
	Pyrite2    bool
	Ruby1      bool
}

// Any reports whether any security subsystem class was discovered.
func (s SSC) Any() bool {
	return s.Enterprise || s.Opal1 || s.Opal2 || s.Opalite || s.Pyrite1 || s.Pyrite2 || s.Ruby1
}

// DeviceInfo is the identification record filled progressively by introspection,
// the inquiry chain and Level 0 discovery. Text fields are fixed width and
// either untouched (all NUL) or fully overwritten and padded.
type DeviceInfo struct {
	DevType                      DevType
	DevSize                      uint64
	VendorID                     [VendorIDLength]byte
	ModelNum                     [ModelNumLength]byte
	FirmwareRev                  [FirmwareRevLength]byte
	SerialNum                    [SerialNumLength]byte
	ManufacturerName             [ManufacturerNameLength]byte
	PhysicalInterconnect         [PhysicalInterconnectLength]byte
	PhysicalInterconnectLocation [InterconnectLocationLength]byte
	PasswordSalt                 [PasswordSaltLength]byte
	WorldWideName                [WorldWideNameLength]byte
	WorldWideNameSynthetic       bool
	SSC                          SSC
}

func fieldString(b []byte) string {
	return string(bytes.Trim(b, " \x00"))
}

func (i *DeviceInfo) Vendor() string       { return fieldString(i.VendorID[:]) }
func (i *DeviceInfo) Model() string        { return fieldString(i.ModelNum[:]) }
func (i *DeviceInfo) Firmware() string     { return fieldString(i.FirmwareRev[:]) }
func (i *DeviceInfo) Serial() string       { return fieldString(i.SerialNum[:]) }
func (i *DeviceInfo) Manufacturer() string { return fieldString(i.ManufacturerName[:]) }
func (i *DeviceInfo) Interconnect() string { return fieldString(i.PhysicalInterconnect[:]) }
func (i *DeviceInfo) InterconnectLocation() string {
	return fieldString(i.PhysicalInterconnectLocation[:])
}

// HasWorldWideName reports whether a WWN, hardware or synthetic, is recorded.
func (i *DeviceInfo) HasWorldWideName() bool {
	return !isZero(i.WorldWideName[:])
}

// Fingerprint returns the inquiry identity the quirk table is keyed on.
func (i *DeviceInfo) Fingerprint() quirk.Fingerprint {
	return quirk.NewFingerprint(i.VendorID[:], i.ModelNum[:], i.FirmwareRev[:])
}

func (i *DeviceInfo) String() string {
	return fmt.Sprintf("Type=%s, Vendor=%s, Model=%s, Serial=%s, Firmware=%s, Size=%d",
		i.DevType, i.Vendor(), i.Model(), i.Serial(), i.Firmware(), i.DevSize)
}
