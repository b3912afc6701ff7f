// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Level 0 discovery feature descriptor decoding

package feature

import (
	"encoding/binary"
	"errors"
	"fmt"
)

type FeatureCode uint16

const (
	CodeTPer                           FeatureCode = 0x0001
	CodeLocking                        FeatureCode = 0x0002
	CodeGeometry                       FeatureCode = 0x0003
	CodeSecureMsg                      FeatureCode = 0x0004
	CodeEnterprise                     FeatureCode = 0x0100
	CodeOpalV1                         FeatureCode = 0x0200
	CodeSingleUser                     FeatureCode = 0x0201
	CodeDataStore                      FeatureCode = 0x0202
	CodeOpalV2                         FeatureCode = 0x0203
	CodeOpalite                        FeatureCode = 0x0301
	CodePyriteV1                       FeatureCode = 0x0302
	CodePyriteV2                       FeatureCode = 0x0303
	CodeRubyV1                         FeatureCode = 0x0304
	CodeLockingLBA                     FeatureCode = 0x0401
	CodeBlockSID                       FeatureCode = 0x0402
	CodeNamespaceLocking               FeatureCode = 0x0403
	CodeDataRemoval                    FeatureCode = 0x0404
	CodeNamespaceGeometry              FeatureCode = 0x0405
	CodeShadowMBRForMultipleNamespaces FeatureCode = 0x0407
	CodeSeagatePorts                   FeatureCode = 0xC001
)

var codeNames = map[FeatureCode]string{
	CodeTPer:                           "TPer",
	CodeLocking:                        "Locking",
	CodeGeometry:                       "Geometry Reporting",
	CodeSecureMsg:                      "Secure Messaging",
	CodeEnterprise:                     "Enterprise",
	CodeOpalV1:                         "Opal SSC V1.00",
	CodeSingleUser:                     "Single User Mode",
	CodeDataStore:                      "DataStore Table",
	CodeOpalV2:                         "Opal SSC V2.00",
	CodeOpalite:                        "Opalite",
	CodePyriteV1:                       "Pyrite SSC V1.00",
	CodePyriteV2:                       "Pyrite SSC V2.00",
	CodeRubyV1:                         "Ruby SSC V1.00",
	CodeLockingLBA:                     "Locking LBA Ranges Control",
	CodeBlockSID:                       "Block SID Authentication",
	CodeNamespaceLocking:               "Configurable Namespace Locking",
	CodeDataRemoval:                    "Supported Data Removal Mechanism",
	CodeNamespaceGeometry:              "Namespace Geometry Reporting",
	CodeShadowMBRForMultipleNamespaces: "Shadow MBR for Multiple Namespaces",
	CodeSeagatePorts:                   "Seagate Port Locking",
}

func (c FeatureCode) String() string {
	if n, ok := codeNames[c]; ok {
		return n
	}
	return fmt.Sprintf("Feature(%#04x)", uint16(c))
}

var ErrTruncated = errors.New("feature descriptor truncated")

// DescriptorHeaderLength is the size of the code, version and length fields.
const DescriptorHeaderLength = 4

// Descriptor is one feature descriptor of a Level 0 discovery response. Data
// excludes the descriptor header.
type Descriptor struct {
	Code    FeatureCode
	Version uint8
	Data    []byte
}

// ParseDescriptors splits the feature area following the Level 0 header.
func ParseDescriptors(b []byte) ([]Descriptor, error) {
	var ds []Descriptor
	for len(b) > 0 {
		if len(b) < DescriptorHeaderLength {
			return ds, fmt.Errorf("%w: %d trailing bytes", ErrTruncated, len(b))
		}
		n := int(b[3])
		if DescriptorHeaderLength+n > len(b) {
			return ds, fmt.Errorf("%w: feature %#04x claims %d bytes", ErrTruncated, binary.BigEndian.Uint16(b), n)
		}
		ds = append(ds, Descriptor{
			Code:    FeatureCode(binary.BigEndian.Uint16(b)),
			Version: b[2] >> 4,
			Data:    b[DescriptorHeaderLength : DescriptorHeaderLength+n],
		})
		b = b[DescriptorHeaderLength+n:]
	}
	return ds, nil
}

// fields reads big endian values at fixed offsets of a descriptor body and
// remembers the first out of range access.
type fields struct {
	b   []byte
	err error
}

func (f *fields) span(off, n int) []byte {
	if off+n > len(f.b) {
		if f.err == nil {
			f.err = fmt.Errorf("%w: need %d bytes, have %d", ErrTruncated, off+n, len(f.b))
		}
		return make([]byte, n)
	}
	return f.b[off : off+n]
}

func (f *fields) u8(off int) uint8             { return f.span(off, 1)[0] }
func (f *fields) u16(off int) uint16           { return binary.BigEndian.Uint16(f.span(off, 2)) }
func (f *fields) u32(off int) uint32           { return binary.BigEndian.Uint32(f.span(off, 4)) }
func (f *fields) u64(off int) uint64           { return binary.BigEndian.Uint64(f.span(off, 8)) }
func (f *fields) bit(off int, mask uint8) bool { return f.u8(off)&mask != 0 }

func (f *fields) commonSSC() CommonSSC {
	return CommonSSC{BaseComID: f.u16(0), NumComID: f.u16(2)}
}

type TPer struct {
	SyncSupported       bool
	AsyncSupported      bool
	AckNakSupported     bool
	BufferMgmtSupported bool
	StreamingSupported  bool
	ComIDMgmtSupported  bool
}

type Locking struct {
	LockingSupported bool
	LockingEnabled   bool
	Locked           bool
	MediaEncryption  bool
	MBREnabled       bool
	MBRDone          bool
	MBRShadowing     bool
}

type CommonSSC struct {
	BaseComID uint16
	NumComID  uint16
}

type Geometry struct {
	Align                bool
	LogicalBlockSize     uint32
	AlignmentGranularity uint64
	LowestAlignedLBA     uint64
}

type SecureMsg struct {
	Activated   bool
	NumberOfSPs uint16
}

type Enterprise struct {
	CommonSSC
	RangeCrossingBehavior bool
}

type OpalV1 struct {
	CommonSSC
}

type SingleUser struct {
	NumberLockingObjectsSupported uint32
	Policy                        bool
	Any                           bool
	All                           bool
}

type DataStore struct {
	MaxTables          uint16
	MaxSizeTables      uint32
	TableSizeAlignment uint32
}

type OpalV2 struct {
	CommonSSC
	RangeCrossingBehavior         bool
	NumLockingSPAdminSupported    uint16
	NumLockingSPUserSupported     uint16
	InitialCPINSIDIndicator       uint8
	BehaviorCPINSIDuponTPerRevert uint8
}

// Opalite and both Pyrite revisions share one layout.
type Opalite struct {
	CommonSSC
	InitialCPINSIDIndicator       uint8
	BehaviorCPINSIDuponTPerRevert uint8
}

type PyriteV1 Opalite

type PyriteV2 Opalite

// 3.1.1.5 Ruby SSC V1.00 Feature (Feature Code = 0x0304)
type RubyV1 OpalV2

type LockingLBA struct {
	Raw []byte
}

type BlockSID struct {
	LockingSPFreezeLockState      bool
	LockingSPFreezeLockSupported  bool
	SIDAuthenticationBlockedState bool
	SIDValueState                 bool
	HardwareReset                 bool
}

type NamespaceLocking struct {
	Range_C                   bool
	Range_P                   bool
	SUM_C                     bool
	MaximumKeyCount           uint32
	UnusedKeyCount            uint32
	MaximumRangesPerNamespace uint32
}

type DataRemoval struct {
	OperationProcessing bool
	SupportedMechanisms uint8
	TimeFormat          uint8
	// Per mechanism bit, in units selected by TimeFormat
	Times [6]uint16
}

type NamespaceGeometry Geometry

type SeagatePort struct {
	PortIdentifier int32
	PortLocked     uint8
}

type ShadowMBRForMultipleNamespaces struct {
	ANS_C bool
}

type SeagatePorts struct {
	Ports []SeagatePort
}

func ReadTPerFeature(b []byte) (*TPer, error) {
	f := fields{b: b}
	return &TPer{
		SyncSupported:       f.bit(0, 0x01),
		AsyncSupported:      f.bit(0, 0x02),
		AckNakSupported:     f.bit(0, 0x04),
		BufferMgmtSupported: f.bit(0, 0x08),
		StreamingSupported:  f.bit(0, 0x10),
		ComIDMgmtSupported:  f.bit(0, 0x40),
	}, f.err
}

func ReadLockingFeature(b []byte) (*Locking, error) {
	f := fields{b: b}
	return &Locking{
		LockingSupported: f.bit(0, 0x01),
		LockingEnabled:   f.bit(0, 0x02),
		Locked:           f.bit(0, 0x04),
		MediaEncryption:  f.bit(0, 0x08),
		MBREnabled:       f.bit(0, 0x10),
		MBRDone:          f.bit(0, 0x20),
		// the bit reports MBR shadowing as NOT supported
		MBRShadowing: !f.bit(0, 0x40),
	}, f.err
}

func ReadGeometryFeature(b []byte) (*Geometry, error) {
	f := fields{b: b}
	return &Geometry{
		Align:                f.bit(0, 0x01),
		LogicalBlockSize:     f.u32(8),
		AlignmentGranularity: f.u64(12),
		LowestAlignedLBA:     f.u64(20),
	}, f.err
}

func ReadSecureMsgFeature(b []byte) (*SecureMsg, error) {
	f := fields{b: b}
	return &SecureMsg{Activated: f.bit(0, 0x01), NumberOfSPs: f.u16(2)}, f.err
}

func ReadEnterpriseFeature(b []byte) (*Enterprise, error) {
	f := fields{b: b}
	return &Enterprise{CommonSSC: f.commonSSC(), RangeCrossingBehavior: f.bit(4, 0x01)}, f.err
}

func ReadOpalV1Feature(b []byte) (*OpalV1, error) {
	f := fields{b: b}
	return &OpalV1{CommonSSC: f.commonSSC()}, f.err
}

func ReadSingleUserFeature(b []byte) (*SingleUser, error) {
	f := fields{b: b}
	return &SingleUser{
		NumberLockingObjectsSupported: f.u32(0),
		Policy:                        f.bit(4, 0x04),
		All:                           f.bit(4, 0x02),
		Any:                           f.bit(4, 0x01),
	}, f.err
}

func ReadDataStoreFeature(b []byte) (*DataStore, error) {
	f := fields{b: b}
	return &DataStore{
		MaxTables:          f.u16(2),
		MaxSizeTables:      f.u32(4),
		TableSizeAlignment: f.u32(8),
	}, f.err
}

func ReadOpalV2Feature(b []byte) (*OpalV2, error) {
	f := fields{b: b}
	return &OpalV2{
		CommonSSC:                     f.commonSSC(),
		RangeCrossingBehavior:         f.bit(4, 0x01),
		NumLockingSPAdminSupported:    f.u16(5),
		NumLockingSPUserSupported:     f.u16(7),
		InitialCPINSIDIndicator:       f.u8(9),
		BehaviorCPINSIDuponTPerRevert: f.u8(10),
	}, f.err
}

func ReadOpaliteFeature(b []byte) (*Opalite, error) {
	f := fields{b: b}
	return &Opalite{
		CommonSSC:                     f.commonSSC(),
		InitialCPINSIDIndicator:       f.u8(9),
		BehaviorCPINSIDuponTPerRevert: f.u8(10),
	}, f.err
}

func ReadPyriteV1Feature(b []byte) (*PyriteV1, error) {
	o, err := ReadOpaliteFeature(b)
	return (*PyriteV1)(o), err
}

func ReadPyriteV2Feature(b []byte) (*PyriteV2, error) {
	o, err := ReadOpaliteFeature(b)
	return (*PyriteV2)(o), err
}

func ReadRubyV1Feature(b []byte) (*RubyV1, error) {
	o, err := ReadOpalV2Feature(b)
	return (*RubyV1)(o), err
}

func ReadLockingLBAFeature(b []byte) (*LockingLBA, error) {
	return &LockingLBA{Raw: append([]byte(nil), b...)}, nil
}

func ReadBlockSIDFeature(b []byte) (*BlockSID, error) {
	f := fields{b: b}
	return &BlockSID{
		SIDValueState:                 f.bit(0, 0x01),
		SIDAuthenticationBlockedState: f.bit(0, 0x02),
		LockingSPFreezeLockSupported:  f.bit(0, 0x04),
		LockingSPFreezeLockState:      f.bit(0, 0x08),
		HardwareReset:                 f.bit(1, 0x01),
	}, f.err
}

func ReadNamespaceLockingFeature(b []byte) (*NamespaceLocking, error) {
	f := fields{b: b}
	return &NamespaceLocking{
		Range_C:                   f.bit(0, 0x80),
		Range_P:                   f.bit(0, 0x40),
		SUM_C:                     f.bit(0, 0x20),
		MaximumKeyCount:           f.u32(4),
		UnusedKeyCount:            f.u32(8),
		MaximumRangesPerNamespace: f.u32(12),
	}, f.err
}

func ReadDataRemovalFeature(b []byte) (*DataRemoval, error) {
	f := fields{b: b}
	d := &DataRemoval{
		OperationProcessing: f.bit(1, 0x01),
		SupportedMechanisms: f.u8(2),
		TimeFormat:          f.u8(3),
	}
	for i := range d.Times {
		d.Times[i] = f.u16(4 + 2*i)
	}
	return d, f.err
}

func ReadNamespaceGeometryFeature(b []byte) (*NamespaceGeometry, error) {
	g, err := ReadGeometryFeature(b)
	return (*NamespaceGeometry)(g), err
}

func ReadShadowMBRForMultipleNamespacesFeature(b []byte) (*ShadowMBRForMultipleNamespaces, error) {
	f := fields{b: b}
	return &ShadowMBRForMultipleNamespaces{ANS_C: f.bit(0, 0x01)}, f.err
}

func ReadSeagatePorts(b []byte) (*SeagatePorts, error) {
	p := &SeagatePorts{}
	for ; len(b) >= 8; b = b[8:] {
		p.Ports = append(p.Ports, SeagatePort{
			PortIdentifier: int32(binary.BigEndian.Uint32(b)),
			PortLocked:     b[4],
		})
	}
	return p, nil
}
