// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package drive

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"

	"github.com/open-source-firmware/go-tcg-drive/pkg/drive/quirk"
	"github.com/open-source-firmware/go-tcg-drive/pkg/drive/sgio"
)

func scsiTarget(vendor, product string, withATA bool) *fakeTarget {
	target := newTarget(vendor, product, map[uint8][]byte{
		0x00: vpdPage(0x00, []byte{0x00, 0x80, 0x83}),
		0x80: vpdPage(0x80, []byte("VPDSERIAL")),
	})
	if withATA {
		target.identify = identifyData("ATASERIAL", "FW01", product)
	}
	return target
}

func newTestFactory(devices map[string]*fakeDevice) (*Factory, *fakeHost) {
	host := &fakeHost{devices: devices}
	f := NewFactory(host)
	f.Quirks = testQuirks
	logger, _ := test.NewNullLogger()
	f.Log = logger
	return f, host
}

func TestFactorySCSI(t *testing.T) {
	testCases := []struct {
		name        string
		devType     DevType
		withATA     bool
		wantVariant Variant
		wantType    DevType
		wantSerial  string
	}{
		{"sas", DevTypeSCSI, false, VariantSCSI, DevTypeSAS, "VPDSERIAL"},
		{"sata behind sat", DevTypeSCSI, true, VariantSATA, DevTypeSATA, "VPDSERIAL"},
		{"sas transport", DevTypeSAS, false, VariantSCSI, DevTypeSAS, "VPDSERIAL"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f, _ := newTestFactory(map[string]*fakeDevice{
				"/dev/sda": {devType: tc.devType, model: "HOSTMODEL", target: scsiTarget("SEAGATE", "ST4000", tc.withATA)},
			})
			var info DeviceInfo
			d, err := f.Get("/dev/sda", &info)
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if d == nil {
				t.Fatalf("Expected a device")
			}
			defer d.Close()
			if got := d.Variant(); got != tc.wantVariant {
				t.Errorf("Unexpected variant, got %s want %s", got, tc.wantVariant)
			}
			if info.DevType != tc.wantType {
				t.Errorf("Unexpected device type, got %s want %s", info.DevType, tc.wantType)
			}
			if got := info.Serial(); got != tc.wantSerial {
				t.Errorf("Unexpected serial, got %q want %q", got, tc.wantSerial)
			}
			if got := info.Model(); got != "ST4000" {
				t.Errorf("INQUIRY must override host model, got %q", got)
			}
			if !d.IsOpen() {
				t.Errorf("Device must be open")
			}
		})
	}
}

func TestFactoryUSB(t *testing.T) {
	testCases := []struct {
		name        string
		model       string
		withATA     bool
		wantVariant Variant
		wantNil     bool
	}{
		{"sata bridge", "Generic Bridge", true, VariantSATA, false},
		{"scsi bridge", "Generic Bridge", false, VariantSCSI, false},
		{"avoid sata", "PSSD T7", false, VariantSCSI, false},
		{"avoid sas", "Portable SSD T5", false, 0, true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			target := scsiTarget("Samsung", tc.model, tc.withATA)
			f, _ := newTestFactory(map[string]*fakeDevice{
				"/dev/sdb": {devType: DevTypeUSB, vendor: "Samsung", model: tc.model, target: target},
			})
			var info DeviceInfo
			d, err := f.Get("/dev/sdb", &info)
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if tc.wantNil {
				if d != nil {
					t.Fatalf("Expected no device, got %s", d.Variant())
				}
				return
			}
			if d == nil {
				t.Fatalf("Expected a device")
			}
			if got := d.Variant(); got != tc.wantVariant {
				t.Errorf("Unexpected variant, got %s want %s", got, tc.wantVariant)
			}
			if info.DevType != DevTypeUSB {
				t.Errorf("USB device type must be kept, got %s", info.DevType)
			}
		})
	}
}

func TestFactoryUSBAvoidSATASkipsIdentify(t *testing.T) {
	target := scsiTarget("Samsung", "PSSD T7", false)
	f, _ := newTestFactory(map[string]*fakeDevice{
		"/dev/sdb": {devType: DevTypeUSB, vendor: "Samsung", model: "PSSD T7", target: target},
	})
	var info DeviceInfo
	if _, err := f.Get("/dev/sdb", &info); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	// the SAT attempt would lead with a lenient INQUIRY, the SCSI attempt
	// runs the full chain first and ATA IDENTIFY last
	ops := target.opcodes()
	if len(ops) == 0 || ops[len(ops)-1] != sgio.ATA_PASSTHROUGH {
		t.Fatalf("Unexpected command sequence %x", ops)
	}
	for _, op := range ops[:len(ops)-1] {
		if op != sgio.SCSI_INQUIRY {
			t.Errorf("Unexpected command sequence %x", ops)
		}
	}
}

func TestFactoryNVMe(t *testing.T) {
	nvmeIdentify := make([]byte, nvmeIdentifyLength)
	copy(nvmeIdentify[4:], "NVMESERIAL")
	copy(nvmeIdentify[24:], "Samsung SSD 970 EVO")
	copy(nvmeIdentify[64:], "2B2QEXE7")

	testCases := []struct {
		name        string
		model       string
		admin       NVMeAdmin
		wantVariant Variant
	}{
		{"native", "Samsung SSD 970", &fakeNVMe{identify: nvmeIdentify}, VariantNVMe},
		{"no native path", "Samsung SSD 970", nil, VariantPseudo},
		{"identify fails", "Samsung SSD 970", &fakeNVMe{}, VariantPseudo},
		{"accept pseudo", "SSD AP0512", &fakeNVMe{identify: nvmeIdentify}, VariantPseudo},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dev := &fakeDevice{devType: DevTypeNVMe, vendor: "APPLE", model: tc.model, serial: "HOSTSERIAL", nvme: tc.admin}
			f, _ := newTestFactory(map[string]*fakeDevice{"/dev/nvme0n1": dev})
			var info DeviceInfo
			d, err := f.Get("/dev/nvme0n1", &info)
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if d == nil {
				t.Fatalf("Expected a device")
			}
			if got := d.Variant(); got != tc.wantVariant {
				t.Errorf("Unexpected variant, got %s want %s", got, tc.wantVariant)
			}
			wantSerial := "HOSTSERIAL"
			if tc.wantVariant == VariantNVMe {
				wantSerial = "NVMESERIAL"
			}
			if got := info.Serial(); got != wantSerial {
				t.Errorf("Unexpected serial, got %q want %q", got, wantSerial)
			}
		})
	}
}

func TestFactoryRejects(t *testing.T) {
	testCases := []struct {
		name    string
		dev     *fakeDevice
		wantErr error
	}{
		{"ata", &fakeDevice{devType: DevTypeATA, target: scsiTarget("ATA", "X", true)}, nil},
		{"other", &fakeDevice{devType: DevTypeOther}, nil},
		{"introspection failure", &fakeDevice{devType: DevTypeSCSI, broken: true}, nil},
		{"scsi without inquiry", &fakeDevice{devType: DevTypeSCSI, target: &fakeTarget{}}, nil},
		{"access denied", &fakeDevice{denied: true}, ErrAccessDenied},
		{"missing", &fakeDevice{missing: true}, ErrNotFound},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f, host := newTestFactory(map[string]*fakeDevice{"/dev/sdc": tc.dev})
			var info DeviceInfo
			d, err := f.Get("/dev/sdc", &info)
			if d != nil {
				t.Errorf("Expected no device, got %s", d.Variant())
			}
			if !errors.Is(err, tc.wantErr) || (tc.wantErr == nil && err != nil) {
				t.Errorf("Unexpected error, got %v want %v", err, tc.wantErr)
			}
			// every handle opened for a rejected device must be closed
			if tc.wantErr == nil && host.closed != len(host.opened) {
				t.Errorf("Opened %d handles but closed %d", len(host.opened), host.closed)
			}
		})
	}
}

func TestFactoryScratchInfo(t *testing.T) {
	// the failed SAT attempt must not leave its INQUIRY identity behind
	target := scsiTarget("Samsung", "Portable SSD T5", false)
	target.inquiry = standardInquiry("BRIDGE", "USB3 BRIDGE", "0001")
	f, _ := newTestFactory(map[string]*fakeDevice{
		"/dev/sdd": {devType: DevTypeUSB, vendor: "Samsung", model: "Portable SSD T5", serial: "HOST", target: target},
	})
	var info DeviceInfo
	d, _ := f.Get("/dev/sdd", &info)
	if d != nil {
		t.Fatalf("Expected no device")
	}
	if got := info.Vendor(); got != "Samsung" {
		t.Errorf("Unexpected vendor %q", got)
	}
	if got := info.Serial(); got != "HOST" {
		t.Errorf("Unexpected serial %q", got)
	}
}

func TestFactorySaltAndWorldWideName(t *testing.T) {
	f, _ := newTestFactory(map[string]*fakeDevice{
		"/dev/nvme0n1": {devType: DevTypeNVMe, model: "Virtual NVMe", serial: "SERIAL01"},
	})
	var info DeviceInfo
	d, err := f.Get("/dev/nvme0n1", &info)
	if err != nil || d == nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got := string(info.PasswordSalt[:8]); got != "SERIAL01" {
		t.Errorf("Unexpected salt %q", got)
	}
	if !info.HasWorldWideName() || !info.WorldWideNameSynthetic {
		t.Errorf("Expected a synthetic WWN, got %x/%v", info.WorldWideName, info.WorldWideNameSynthetic)
	}
	if got := info.WorldWideName[0] >> 4; got != 3 {
		t.Errorf("Synthetic WWN must use NAA 3, got %d", got)
	}

	var again DeviceInfo
	if _, err := f.Get("/dev/nvme0n1", &again); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if again.WorldWideName != info.WorldWideName {
		t.Errorf("Synthetic WWN must be stable, got %x and %x", again.WorldWideName, info.WorldWideName)
	}
}

func TestFactoryDefaultQuirks(t *testing.T) {
	f := NewFactory(&fakeHost{})
	var info DeviceInfo
	HardCopy(info.VendorID[:], []byte("Samsung"))
	HardCopy(info.ModelNum[:], []byte("PSSD T7"))
	if flags := f.Quirks.Resolve(info.Fingerprint()); flags.Any() {
		t.Errorf("Expected no default quirks, got %s", flags)
	}
}

func TestFactoryCustomQuirks(t *testing.T) {
	target := scsiTarget("ACME", "Bridge", true)
	f, _ := newTestFactory(map[string]*fakeDevice{
		"/dev/sde": {devType: DevTypeUSB, vendor: "ACME", model: "Bridge", target: target},
	})
	f.Quirks = quirk.NewTable(quirk.Entry{Vendor: "ACME", Flags: quirk.Flags{AvoidSlowSATATimeout: true, AvoidSlowSASTimeout: true}})
	var info DeviceInfo
	d, err := f.Get("/dev/sde", &info)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if d != nil {
		t.Errorf("Expected both transports to be skipped, got %s", d.Variant())
	}
	if len(target.cdbs) != 0 {
		t.Errorf("Expected no transport attempt, got opcodes %x", target.opcodes())
	}
}
