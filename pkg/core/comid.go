// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

import (
	"encoding/binary"
	"fmt"

	"github.com/open-source-firmware/go-tcg-drive/pkg/drive"
)

type ComID int
type ComIDRequest [4]byte

const ComIDInvalid ComID = -1

var (
	ComIDRequestVerifyComIDValid ComIDRequest = [4]byte{0x00, 0x00, 0x00, 0x01}
	ComIDRequestStackReset       ComIDRequest = [4]byte{0x00, 0x00, 0x00, 0x02}
)

// ComIDState is the answer to a VERIFY_COMID_VALID request.
type ComIDState uint32

const (
	ComIDStateInvalid ComIDState = iota
	ComIDStateInactive
	ComIDStateIssued
	ComIDStateAssociated
)

func (s ComIDState) String() string {
	switch s {
	case ComIDStateInvalid:
		return "Invalid"
	case ComIDStateInactive:
		return "Inactive"
	case ComIDStateIssued:
		return "Issued"
	case ComIDStateAssociated:
		return "Associated"
	}
	return fmt.Sprintf("ComIDState(%d)", uint32(s))
}

func comIDBuffer() (*drive.AlignedBuffer, []byte, error) {
	buf, err := drive.NewAlignedBuffer(512)
	if err != nil {
		return nil, nil, err
	}
	return buf, buf.Bytes(), nil
}

// GetComID requests a dynamically allocated (extended) ComID from the TPer.
func GetComID(d drive.Device) (ComID, error) {
	buf, raw, err := comIDBuffer()
	if err != nil {
		return ComIDInvalid, err
	}
	defer buf.Release()
	if err := drive.Receive(d, drive.SecurityProtocolTCGTPer, 0, raw); err != nil {
		return ComIDInvalid, err
	}
	c := binary.BigEndian.Uint16(raw[0:2])
	ce := binary.BigEndian.Uint16(raw[2:4])
	return ComID(uint32(c) + uint32(ce)<<16), nil
}

// HandleComIDRequest sends a ComID management request and returns the
// request specific response payload.
func HandleComIDRequest(d drive.Device, comID ComID, req ComIDRequest) ([]byte, error) {
	buf, raw, err := comIDBuffer()
	if err != nil {
		return nil, err
	}
	defer buf.Release()
	binary.BigEndian.PutUint16(raw[0:2], uint16(comID&0xffff))
	binary.BigEndian.PutUint16(raw[2:4], uint16((comID>>16)&0xffff))
	copy(raw[4:8], req[:])
	if err := drive.Send(d, drive.SecurityProtocolTCGTPer, uint16(comID&0xffff), raw); err != nil {
		return nil, err
	}

	clear(raw)
	if err := drive.Receive(d, drive.SecurityProtocolTCGTPer, uint16(comID&0xffff), raw); err != nil {
		return nil, err
	}
	if got := ComIDRequest(raw[4:8]); got != req {
		return nil, fmt.Errorf("%w: response to request %x carries request code %x", drive.ErrCommand, req, got)
	}
	size := int(binary.BigEndian.Uint16(raw[10:12]))
	if 12+size > len(raw) {
		return nil, fmt.Errorf("%w: ComID response of %d bytes overruns buffer", drive.ErrCommand, size)
	}
	return append([]byte(nil), raw[12:12+size]...), nil
}

// VerifyComID reports the state of comID.
func VerifyComID(d drive.Device, comID ComID) (ComIDState, error) {
	res, err := HandleComIDRequest(d, comID, ComIDRequestVerifyComIDValid)
	if err != nil {
		return ComIDStateInvalid, err
	}
	if len(res) < 4 {
		return ComIDStateInvalid, fmt.Errorf("%w: short VERIFY_COMID_VALID response", drive.ErrCommand)
	}
	return ComIDState(binary.BigEndian.Uint32(res[0:4])), nil
}

// Validate a ComID.
func IsComIDValid(d drive.Device, comID ComID) (bool, error) {
	state, err := VerifyComID(d, comID)
	if err != nil {
		return false, err
	}
	return state == ComIDStateIssued || state == ComIDStateAssociated, nil
}

// Reset the state of the synchronous protocol stack.
func StackReset(d drive.Device, comID ComID) error {
	res, err := HandleComIDRequest(d, comID, ComIDRequestStackReset)
	if err != nil {
		return err
	}
	if len(res) < 4 {
		// TODO: Implement stack reset pending re-poll
		return fmt.Errorf("stack reset is probably Pending, which is not supported")
	}
	if binary.BigEndian.Uint32(res[0:4]) != 0 {
		return fmt.Errorf("stack reset reported failure")
	}
	return nil
}

// BaseComID returns the static ComID of the first SSC reported in d0.
func (d0 *Level0Discovery) BaseComID() ComID {
	switch {
	case d0.OpalV2 != nil:
		return ComID(d0.OpalV2.BaseComID)
	case d0.PyriteV1 != nil:
		return ComID(d0.PyriteV1.BaseComID)
	case d0.PyriteV2 != nil:
		return ComID(d0.PyriteV2.BaseComID)
	case d0.Enterprise != nil:
		return ComID(d0.Enterprise.BaseComID)
	case d0.RubyV1 != nil:
		return ComID(d0.RubyV1.BaseComID)
	case d0.Opalite != nil:
		return ComID(d0.Opalite.BaseComID)
	case d0.OpalV1 != nil:
		return ComID(d0.OpalV1.BaseComID)
	}
	return ComIDInvalid
}

// FindComID prefers a ComID issued by the TPer and falls back to the static
// ComID of the reported SSC.
func FindComID(d drive.Device, d0 *Level0Discovery) ComID {
	if auto, err := GetComID(d); err == nil && auto > 0 {
		return auto
	}
	return d0.BaseComID()
}
