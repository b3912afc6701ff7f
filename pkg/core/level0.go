// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/open-source-firmware/go-tcg-drive/pkg/core/feature"
	"github.com/open-source-firmware/go-tcg-drive/pkg/drive"
)

var ErrNotSupported = errors.New("device does not support TCG Storage Core")

// Level 0 discovery header: length of parameter data, major, minor, reserved, vendor specific
const (
	level0HeaderLength = 48
	level0VendorOffset = 16
)

// Level0Discovery structure as described in TCG Storage Architecture Core Spec v2.01 rev 1.00
// (missing data length field, which is only required for parsing)
type Level0Discovery struct {
	MajorVersion                   int
	MinorVersion                   int
	Vendor                         [32]byte
	TPer                           *feature.TPer
	Locking                        *feature.Locking
	Geometry                       *feature.Geometry
	SecureMsg                      *feature.SecureMsg
	Enterprise                     *feature.Enterprise
	OpalV1                         *feature.OpalV1
	SingleUser                     *feature.SingleUser
	DataStore                      *feature.DataStore
	OpalV2                         *feature.OpalV2
	Opalite                        *feature.Opalite
	PyriteV1                       *feature.PyriteV1
	PyriteV2                       *feature.PyriteV2
	RubyV1                         *feature.RubyV1
	LockingLBA                     *feature.LockingLBA
	BlockSID                       *feature.BlockSID
	NamespaceLocking               *feature.NamespaceLocking
	DataRemoval                    *feature.DataRemoval
	NamespaceGeometry              *feature.NamespaceGeometry
	ShadowMBRForMultipleNamespaces *feature.ShadowMBRForMultipleNamespaces
	SeagatePorts                   *feature.SeagatePorts
	UnknownFeatures                []uint16
}

// ParseDiscovery0 decodes a raw Level 0 discovery response. Unknown feature
// codes are recorded, not rejected.
func ParseDiscovery0(raw []byte) (*Level0Discovery, error) {
	if len(raw) < level0HeaderLength {
		return nil, fmt.Errorf("level 0 discovery response of %d bytes is truncated", len(raw))
	}
	size := int(binary.BigEndian.Uint32(raw[0:4]))
	if size == 0 {
		return nil, ErrNotSupported
	}
	// the length field does not count itself
	end := size + 4
	if end > len(raw) {
		end = len(raw)
	}
	if end < level0HeaderLength {
		return nil, fmt.Errorf("level 0 discovery length %d is shorter than its header", size)
	}
	d0 := &Level0Discovery{
		MajorVersion: int(binary.BigEndian.Uint16(raw[4:6])),
		MinorVersion: int(binary.BigEndian.Uint16(raw[6:8])),
	}
	copy(d0.Vendor[:], raw[level0VendorOffset:level0HeaderLength])

	descs, err := feature.ParseDescriptors(raw[level0HeaderLength:end])
	if err != nil {
		return nil, fmt.Errorf("failed to parse Level 0 discovery: %w", err)
	}
	for _, desc := range descs {
		if err := d0.decode(desc); err != nil {
			return nil, fmt.Errorf("failed to parse %s feature: %w", desc.Code, err)
		}
	}
	return d0, nil
}

func (d0 *Level0Discovery) decode(desc feature.Descriptor) error {
	var err error
	b := desc.Data
	switch desc.Code {
	case feature.CodeTPer:
		d0.TPer, err = feature.ReadTPerFeature(b)
	case feature.CodeLocking:
		d0.Locking, err = feature.ReadLockingFeature(b)
	case feature.CodeGeometry:
		d0.Geometry, err = feature.ReadGeometryFeature(b)
	case feature.CodeSecureMsg:
		d0.SecureMsg, err = feature.ReadSecureMsgFeature(b)
	case feature.CodeEnterprise:
		d0.Enterprise, err = feature.ReadEnterpriseFeature(b)
	case feature.CodeOpalV1:
		d0.OpalV1, err = feature.ReadOpalV1Feature(b)
	case feature.CodeSingleUser:
		d0.SingleUser, err = feature.ReadSingleUserFeature(b)
	case feature.CodeDataStore:
		d0.DataStore, err = feature.ReadDataStoreFeature(b)
	case feature.CodeOpalV2:
		d0.OpalV2, err = feature.ReadOpalV2Feature(b)
	case feature.CodeOpalite:
		d0.Opalite, err = feature.ReadOpaliteFeature(b)
	case feature.CodePyriteV1:
		d0.PyriteV1, err = feature.ReadPyriteV1Feature(b)
	case feature.CodePyriteV2:
		d0.PyriteV2, err = feature.ReadPyriteV2Feature(b)
	case feature.CodeRubyV1:
		d0.RubyV1, err = feature.ReadRubyV1Feature(b)
	case feature.CodeLockingLBA:
		d0.LockingLBA, err = feature.ReadLockingLBAFeature(b)
	case feature.CodeBlockSID:
		d0.BlockSID, err = feature.ReadBlockSIDFeature(b)
	case feature.CodeNamespaceLocking:
		d0.NamespaceLocking, err = feature.ReadNamespaceLockingFeature(b)
	case feature.CodeDataRemoval:
		d0.DataRemoval, err = feature.ReadDataRemovalFeature(b)
	case feature.CodeNamespaceGeometry:
		d0.NamespaceGeometry, err = feature.ReadNamespaceGeometryFeature(b)
	case feature.CodeShadowMBRForMultipleNamespaces:
		d0.ShadowMBRForMultipleNamespaces, err = feature.ReadShadowMBRForMultipleNamespacesFeature(b)
	case feature.CodeSeagatePorts:
		d0.SeagatePorts, err = feature.ReadSeagatePorts(b)
	default:
		d0.UnknownFeatures = append(d0.UnknownFeatures, uint16(desc.Code))
	}
	return err
}

// SSC summarizes which security subsystem classes were reported.
func (d0 *Level0Discovery) SSC() drive.SSC {
	return drive.SSC{
		TPer:       d0.TPer != nil,
		Locking:    d0.Locking != nil,
		Enterprise: d0.Enterprise != nil,
		Opal1:      d0.OpalV1 != nil,
		Opal2:      d0.OpalV2 != nil,
		Opalite:    d0.Opalite != nil,
		Pyrite1:    d0.PyriteV1 != nil,
		Pyrite2:    d0.PyriteV2 != nil,
		Ruby1:      d0.RubyV1 != nil,
	}
}

// ParseDiscovery0Features fills the SSC flags of info from a raw Level 0
// discovery response. It is the drive.Discovery0Parser of this package.
func ParseDiscovery0Features(raw []byte, info *drive.DeviceInfo) error {
	d0, err := ParseDiscovery0(raw)
	if err != nil {
		return err
	}
	info.SSC = d0.SSC()
	return nil
}

// Discovery0 performs a Level 0 SSC discovery on d.
func Discovery0(d drive.Device) (*Level0Discovery, error) {
	var d0 *Level0Discovery
	var info drive.DeviceInfo
	err := drive.Discovery0(d, &info, func(raw []byte, _ *drive.DeviceInfo) error {
		var err error
		d0, err = ParseDiscovery0(raw)
		return err
	})
	if err != nil {
		return nil, err
	}
	return d0, nil
}
