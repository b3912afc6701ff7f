// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

import (
	"encoding/binary"
	"testing"

	"github.com/open-source-firmware/go-tcg-drive/pkg/drive"
)

// comIDDevice answers TPer protocol requests from a canned ComID and
// echoes ComID management requests with state.
type comIDDevice struct {
	comID   uint32
	state   uint32
	pending ComIDRequest
	sends   int
}

func (c *comIDDevice) SendCmd(cmd drive.Command, proto drive.SecurityProtocol, comID uint16, buf []byte) (uint8, int) {
	if proto != drive.SecurityProtocolTCGTPer {
		return drive.StatusFailure, 0
	}
	switch cmd {
	case drive.IFSend:
		c.sends++
		copy(c.pending[:], buf[4:8])
	case drive.IFRecv:
		if comID == 0 {
			binary.BigEndian.PutUint16(buf[0:2], uint16(c.comID))
			binary.BigEndian.PutUint16(buf[2:4], uint16(c.comID>>16))
			return drive.StatusSuccess, len(buf)
		}
		copy(buf[4:8], c.pending[:])
		binary.BigEndian.PutUint16(buf[10:12], 4)
		binary.BigEndian.PutUint32(buf[12:16], c.state)
	}
	return drive.StatusSuccess, len(buf)
}

func (c *comIDDevice) Identify(*drive.DeviceInfo) bool { return true }
func (c *comIDDevice) IsOpen() bool                    { return true }
func (c *comIDDevice) Variant() drive.Variant          { return drive.VariantSCSI }
func (c *comIDDevice) Close() error                    { return nil }

func TestGetComID(t *testing.T) {
	d := &comIDDevice{comID: 0x00011001}
	got, err := GetComID(d)
	if err != nil {
		t.Fatalf("GetComID failed: %v", err)
	}
	if got != 0x00011001 {
		t.Errorf("Unexpected ComID %#x", got)
	}
}

func TestComIDValidity(t *testing.T) {
	testCases := []struct {
		state ComIDState
		valid bool
	}{
		{ComIDStateInvalid, false},
		{ComIDStateInactive, false},
		{ComIDStateIssued, true},
		{ComIDStateAssociated, true},
	}
	for _, tc := range testCases {
		d := &comIDDevice{state: uint32(tc.state)}
		valid, err := IsComIDValid(d, 0x1001)
		if err != nil {
			t.Fatalf("IsComIDValid failed: %v", err)
		}
		if valid != tc.valid {
			t.Errorf("State %s: got valid=%v", tc.state, valid)
		}
	}
	if err := StackReset(&comIDDevice{}, 0x1001); err != nil {
		t.Errorf("StackReset failed: %v", err)
	}
	if err := StackReset(&comIDDevice{state: 1}, 0x1001); err == nil {
		t.Errorf("Expected StackReset failure to be reported")
	}
}

func TestFindComID(t *testing.T) {
	d0, err := ParseDiscovery0(level0(t, tperDescriptor, opal2Descriptor))
	if err != nil {
		t.Fatalf("ParseDiscovery0 failed: %v", err)
	}
	if got := FindComID(&comIDDevice{}, d0); got != 0x0800 {
		t.Errorf("Unexpected static ComID %#x", got)
	}
	if got := FindComID(&comIDDevice{comID: 0x1004}, d0); got != 0x1004 {
		t.Errorf("Unexpected issued ComID %#x", got)
	}
	if got := (&Level0Discovery{}).BaseComID(); got != ComIDInvalid {
		t.Errorf("Unexpected ComID without SSC %d", got)
	}
}
