// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package drive

import (
	"encoding/hex"
	"errors"
	"testing"

	"github.com/open-source-firmware/go-tcg-drive/pkg/drive/sgio"
)

func TestSendSecurityProtocol(t *testing.T) {
	target := &fakeTarget{security: []byte{0x00, 0x00, 0x00, 0x10}}
	buf := make([]byte, 512)
	status, n := SendSecurityProtocol(target, IFRecv, SecurityProtocolTCGManagement, 0x0001, buf, 0)
	if status != StatusSuccess {
		t.Fatalf("Unexpected status %#02x", status)
	}
	if n != 4 {
		t.Errorf("Unexpected transfer length %d", n)
	}
	if got, want := hex.EncodeToString(target.cdbs[0]), "a20100018000000000010000"; got != want {
		t.Errorf("Unexpected CDB, got %s want %s", got, want)
	}

	status, _ = SendSecurityProtocol(target, IFSend, SecurityProtocolTCGManagement, 0x07fe, buf, 0)
	if status != StatusSuccess {
		t.Fatalf("Unexpected status %#02x", status)
	}
	if got, want := hex.EncodeToString(target.cdbs[1]), "b50107fe8000000000010000"; got != want {
		t.Errorf("Unexpected CDB, got %s want %s", got, want)
	}
}

func TestSendSecurityProtocolFailure(t *testing.T) {
	testCases := []struct {
		name string
		exec sgio.Executor
		cmd  Command
		buf  []byte
	}{
		{"check condition", &fakeTarget{result: illegalRequest}, IFRecv, make([]byte, 512)},
		{"busy", &fakeTarget{result: &sgio.Result{Status: sgio.StatusBusy}}, IFRecv, make([]byte, 512)},
		{"host fault", &fakeTarget{result: &sgio.Result{HostStatus: 0x07}}, IFSend, make([]byte, 512)},
		{"submission error", sgio.ExecutorFunc(func(*sgio.Request) (*sgio.Result, error) {
			return nil, errors.New("ioctl failed")
		}), IFRecv, make([]byte, 512)},
		{"unknown command", &fakeTarget{}, Command(7), make([]byte, 512)},
		{"unaligned length", &fakeTarget{}, IFRecv, make([]byte, 100)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			status, n := SendSecurityProtocol(tc.exec, tc.cmd, SecurityProtocolTCGManagement, 0x0001, tc.buf, 0)
			if status != StatusFailure || n != 0 {
				t.Errorf("Expected failure, got %#02x/%d", status, n)
			}
		})
	}
}

func TestSendATATrusted(t *testing.T) {
	target := &fakeTarget{}
	status, _ := SendATATrusted(target, IFRecv, SecurityProtocolTCGManagement, 0x07fe, make([]byte, 1024), 0)
	if status != StatusSuccess {
		t.Fatalf("Unexpected status %#02x", status)
	}
	if got, want := hex.EncodeToString(target.cdbs[0]), "a1080e010200fe07005c0000"; got != want {
		t.Errorf("Unexpected CDB, got %s want %s", got, want)
	}
}

func TestSendATATrustedSend(t *testing.T) {
	target := &fakeTarget{}
	status, _ := SendATATrusted(target, IFSend, SecurityProtocolTCGTPer, 0x0004, make([]byte, 512), 0)
	if status != StatusSuccess {
		t.Fatalf("Unexpected status %#02x", status)
	}
	if got, want := hex.EncodeToString(target.cdbs[0]), "a10a060201000400005e0000"; got != want {
		t.Errorf("Unexpected CDB, got %s want %s", got, want)
	}

	target = &fakeTarget{result: illegalRequest}
	if status, n := SendATATrusted(target, IFSend, SecurityProtocolTCGTPer, 0x0004, make([]byte, 512), 0); status != StatusFailure || n != 0 {
		t.Errorf("Expected failure, got %#02x/%d", status, n)
	}
}
