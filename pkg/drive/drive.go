// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package drive

import (
	"bytes"
	"crypto/x509"
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	ErrNotSupported       = errors.New("operation is not supported")
	ErrDeviceNotSupported = errors.New("device is not supported")
	ErrAccessDenied       = errors.New("access to device denied")
	ErrNotFound           = errors.New("device not found")
	ErrNotOpen            = errors.New("device is not open")
	ErrDeviceTypeUnknown  = errors.New("device type unknown")
	ErrCommand            = errors.New("device command failed")
	ErrBufferAlloc        = errors.New("aligned buffer allocation failed")
)

type SecurityProtocol int

const (
	SecurityProtocolInformation   SecurityProtocol = 0
	SecurityProtocolTCGManagement SecurityProtocol = 1
	SecurityProtocolTCGTPer       SecurityProtocol = 2
)

// Command selects the direction of a security protocol transfer.
type Command uint8

const (
	IFSend Command = iota
	IFRecv
)

func (c Command) String() string {
	switch c {
	case IFSend:
		return "IF_SEND"
	case IFRecv:
		return "IF_RECV"
	}
	return fmt.Sprintf("Command(%d)", uint8(c))
}

// Status bytes returned by SendCmd.
const (
	StatusSuccess uint8 = 0x00
	StatusFailure uint8 = 0xff
)

// Variant names the transport a Device speaks.
type Variant int

const (
	VariantSCSI Variant = iota
	VariantSATA
	VariantNVMe
	VariantPseudo
)

func (v Variant) String() string {
	switch v {
	case VariantSCSI:
		return "SCSI"
	case VariantSATA:
		return "SATA"
	case VariantNVMe:
		return "NVMe"
	case VariantPseudo:
		return "BlockStorageDevice"
	}
	return fmt.Sprintf("Variant(%d)", int(v))
}

// Device is an opened, identified drive. Each Device owns exactly one Handle.
type Device interface {
	// SendCmd issues a security protocol transfer and reports StatusSuccess or
	// StatusFailure along with the number of bytes actually transferred.
	SendCmd(cmd Command, proto SecurityProtocol, comID uint16, buf []byte) (uint8, int)
	// Identify refreshes info from the device.
	Identify(info *DeviceInfo) bool
	IsOpen() bool
	Variant() Variant
	Close() error
}

// Receive is SendCmd(IFRecv) with the status folded into an error.
func Receive(d Device, proto SecurityProtocol, sps uint16, buf []byte) error {
	if !d.IsOpen() {
		return ErrNotOpen
	}
	if status, _ := d.SendCmd(IFRecv, proto, sps, buf); status != StatusSuccess {
		return fmt.Errorf("%w: IF_RECV protocol %#02x sps %#04x", ErrCommand, int(proto), sps)
	}
	return nil
}

// Send is SendCmd(IFSend) with the status folded into an error.
func Send(d Device, proto SecurityProtocol, sps uint16, buf []byte) error {
	if !d.IsOpen() {
		return ErrNotOpen
	}
	if status, _ := d.SendCmd(IFSend, proto, sps, buf); status != StatusSuccess {
		return fmt.Errorf("%w: IF_SEND protocol %#02x sps %#04x", ErrCommand, int(proto), sps)
	}
	return nil
}

// Returns a list of supported security protocols.
func SecurityProtocols(d Device) ([]SecurityProtocol, error) {
	buf, err := NewAlignedBuffer(MinBufferLength)
	if err != nil {
		return nil, err
	}
	defer buf.Release()
	raw := buf.Bytes()
	if err := Receive(d, SecurityProtocolInformation, 0, raw); err != nil {
		return nil, err
	}
	n := int(binary.BigEndian.Uint16(raw[6:8]))
	if 8+n > len(raw) {
		return nil, fmt.Errorf("security protocol list of %d entries overruns response", n)
	}
	res := []SecurityProtocol{}
	for _, p := range raw[8 : 8+n] {
		res = append(res, SecurityProtocol(p))
	}
	return res, nil
}

// Returns the X.509 security certificate from the drive.
func Certificate(d Device) ([]*x509.Certificate, error) {
	buf, err := NewAlignedBuffer(2 * MinBufferLength)
	if err != nil {
		return nil, err
	}
	defer buf.Release()
	raw := buf.Bytes()
	if err := Receive(d, SecurityProtocolInformation, 1, raw); err != nil {
		return nil, err
	}
	size := int(binary.BigEndian.Uint16(raw[2:4]))
	if size == 0 {
		return nil, nil
	}
	if 4+size > len(raw) {
		return nil, fmt.Errorf("failed to read certificate: %d bytes overruns response", size)
	}
	return x509.ParseCertificates(bytes.Clone(raw[4 : 4+size]))
}
