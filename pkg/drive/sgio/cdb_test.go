package sgio

import (
	"encoding/hex"
	"testing"
)

func TestSecurityProtocolCDB(t *testing.T) {
	testCases := []struct {
		name   string
		in     bool
		proto  uint8
		sps    uint16
		length int
		want   string
	}{
		{"level 0 discovery", true, 0x01, 0x0001, 512, "a20100018000000000010000"},
		{"security out", false, 0x01, 0x07fe, 2048, "b50107fe8000000000040000"},
		{"protocol information", true, 0x00, 0x0000, 2048, "a20000008000000000040000"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cdb, err := SecurityProtocolCDB(tc.in, tc.proto, tc.sps, tc.length)
			if err != nil {
				t.Fatalf("SecurityProtocolCDB failed: %v", err)
			}
			if got := hex.EncodeToString(cdb[:]); got != tc.want {
				t.Errorf("Unexpected CDB, got %s want %s", got, tc.want)
			}
		})
	}
}

func TestSecurityProtocolCDBUnaligned(t *testing.T) {
	if _, err := SecurityProtocolCDB(true, 1, 1, 100); err == nil {
		t.Errorf("Expected error for unaligned transfer length")
	}
}

func TestInquiryCDB(t *testing.T) {
	testCases := []struct {
		name  string
		evpd  bool
		page  uint8
		alloc uint16
		want  string
	}{
		{"standard", false, 0x80, 36, "120000002400"},
		{"page 00", true, 0x00, 255, "12010000ff00"},
		{"page 80", true, 0x80, 255, "12018000ff00"},
		{"page 89", true, 0x89, 572, "120189023c00"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cdb := InquiryCDB(tc.evpd, tc.page, tc.alloc)
			if got := hex.EncodeToString(cdb[:]); got != tc.want {
				t.Errorf("Unexpected CDB, got %s want %s", got, tc.want)
			}
		})
	}
}

func TestATATrustedCDB(t *testing.T) {
	rcv, err := ATATrustedCDB(true, 0x01, 0x07fe, 1024)
	if err != nil {
		t.Fatalf("ATATrustedCDB failed: %v", err)
	}
	if got, want := hex.EncodeToString(rcv[:]), "a1080e010200fe07005c0000"; got != want {
		t.Errorf("Unexpected receive CDB, got %s want %s", got, want)
	}
	snd, err := ATATrustedCDB(false, 0x01, 0x07fe, 512)
	if err != nil {
		t.Fatalf("ATATrustedCDB failed: %v", err)
	}
	if got, want := hex.EncodeToString(snd[:]), "a10a06010100fe07005e0000"; got != want {
		t.Errorf("Unexpected send CDB, got %s want %s", got, want)
	}
	if _, err := ATATrustedCDB(true, 1, 1, 512*256); err == nil {
		t.Errorf("Expected error for oversized sector count")
	}
}
