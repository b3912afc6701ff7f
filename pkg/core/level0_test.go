// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/open-source-firmware/go-tcg-drive/pkg/core/feature"
	"github.com/open-source-firmware/go-tcg-drive/pkg/drive"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("bad fixture %q: %v", s, err)
	}
	return b
}

// level0 assembles a discovery response with the given raw descriptors,
// padded to the size a transport would return.
func level0(t *testing.T, descriptors ...string) []byte {
	t.Helper()
	raw := make([]byte, 48)
	binary.BigEndian.PutUint16(raw[6:], 1)
	for _, d := range descriptors {
		raw = append(raw, mustHex(t, d)...)
	}
	binary.BigEndian.PutUint32(raw[0:], uint32(len(raw)-4))
	return append(raw, make([]byte, 2048-len(raw))...)
}

const (
	tperDescriptor    = "0001100c" + "110000000000000000000000"
	lockingDescriptor = "0002100c" + "090000000000000000000000"
	opal2Descriptor   = "02032010" + "08000001" + "0000040008" + "0000" + "0000000000"
	pyrite2Descriptor = "03031010" + "04000001" + "0000000000" + "0001" + "0000000000"
	vendorDescriptor  = "e0001004" + "deadbeef"
	seagateDescriptor = "c0011010" + "0000000101000000" + "0000000200000000"
	truncatedGeometry = "00031001" + "01"
)

func TestParseDiscovery0(t *testing.T) {
	d0, err := ParseDiscovery0(level0(t, tperDescriptor, lockingDescriptor, opal2Descriptor, vendorDescriptor, seagateDescriptor))
	if err != nil {
		t.Fatalf("ParseDiscovery0 failed: %v", err)
	}
	if d0.MajorVersion != 0 || d0.MinorVersion != 1 {
		t.Errorf("Unexpected version %d.%d", d0.MajorVersion, d0.MinorVersion)
	}
	if diff := cmp.Diff(&feature.TPer{SyncSupported: true, StreamingSupported: true}, d0.TPer); diff != "" {
		t.Errorf("Unexpected TPer feature (-want +got):\n%s", diff)
	}
	wantLocking := &feature.Locking{LockingSupported: true, MediaEncryption: true, MBRShadowing: true}
	if diff := cmp.Diff(wantLocking, d0.Locking); diff != "" {
		t.Errorf("Unexpected Locking feature (-want +got):\n%s", diff)
	}
	wantOpal := &feature.OpalV2{
		CommonSSC:                  feature.CommonSSC{BaseComID: 0x0800, NumComID: 1},
		NumLockingSPAdminSupported: 4,
		NumLockingSPUserSupported:  8,
	}
	if diff := cmp.Diff(wantOpal, d0.OpalV2); diff != "" {
		t.Errorf("Unexpected Opal V2 feature (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]uint16{0xe000}, d0.UnknownFeatures); diff != "" {
		t.Errorf("Unexpected unknown features (-want +got):\n%s", diff)
	}
	if d0.SeagatePorts == nil || len(d0.SeagatePorts.Ports) != 2 || d0.SeagatePorts.Ports[0].PortLocked != 1 {
		t.Errorf("Unexpected Seagate ports %+v", d0.SeagatePorts)
	}
	want := drive.SSC{TPer: true, Locking: true, Opal2: true}
	if got := d0.SSC(); got != want {
		t.Errorf("Unexpected SSC, got %+v want %+v", got, want)
	}
}

func TestParseDiscovery0Pyrite(t *testing.T) {
	d0, err := ParseDiscovery0(level0(t, tperDescriptor, pyrite2Descriptor))
	if err != nil {
		t.Fatalf("ParseDiscovery0 failed: %v", err)
	}
	want := &feature.PyriteV2{
		CommonSSC:                     feature.CommonSSC{BaseComID: 0x0400, NumComID: 1},
		BehaviorCPINSIDuponTPerRevert: 1,
	}
	if diff := cmp.Diff(want, d0.PyriteV2); diff != "" {
		t.Errorf("Unexpected Pyrite V2 feature (-want +got):\n%s", diff)
	}
	if ssc := d0.SSC(); !ssc.Pyrite2 || !ssc.Any() {
		t.Errorf("Unexpected SSC %+v", ssc)
	}
}

func TestParseDiscovery0Errors(t *testing.T) {
	if _, err := ParseDiscovery0(make([]byte, 2048)); !errors.Is(err, ErrNotSupported) {
		t.Errorf("Expected ErrNotSupported for empty response, got %v", err)
	}
	if _, err := ParseDiscovery0(make([]byte, 16)); err == nil {
		t.Errorf("Expected error for truncated header")
	}
	if _, err := ParseDiscovery0(level0(t, truncatedGeometry)); !errors.Is(err, feature.ErrTruncated) {
		t.Errorf("Expected ErrTruncated, got %v", err)
	}
}

func TestParseDiscovery0Features(t *testing.T) {
	var info drive.DeviceInfo
	if err := ParseDiscovery0Features(level0(t, tperDescriptor, opal2Descriptor), &info); err != nil {
		t.Fatalf("ParseDiscovery0Features failed: %v", err)
	}
	if !info.SSC.TPer || !info.SSC.Opal2 || info.SSC.Enterprise {
		t.Errorf("Unexpected SSC %+v", info.SSC)
	}
}
