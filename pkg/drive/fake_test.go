// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package drive

import (
	"time"

	"github.com/open-source-firmware/go-tcg-drive/pkg/drive/quirk"
	"github.com/open-source-firmware/go-tcg-drive/pkg/drive/sgio"
)

// testQuirks holds the workarounds the factory and inquiry tests exercise.
var testQuirks = quirk.NewTable(
	quirk.Entry{Vendor: "Samsung", Product: "PSSD T7", Flags: quirk.Flags{AvoidSlowSATATimeout: true}},
	quirk.Entry{Vendor: "Samsung", Product: "Portable SSD T5", Flags: quirk.Flags{AvoidSlowSASTimeout: true}},
	quirk.Entry{Vendor: "Innostor", Flags: quirk.Flags{ReverseSerialNumber: true}},
	quirk.Entry{Vendor: "APPLE", Product: "SSD AP", Flags: quirk.Flags{AcceptPseudoDeviceImmediately: true}},
)

var illegalRequest = &sgio.Result{
	Status:       sgio.StatusCheckCondition,
	DriverStatus: sgio.DRIVER_SENSE,
	Sense:        []byte{0x72, 0x05, 0x20, 0x00},
}

// fakeTarget answers INQUIRY, ATA IDENTIFY and the security protocol
// commands from canned data. Anything it has no answer for is rejected as an
// illegal request.
type fakeTarget struct {
	inquiry  []byte
	pages    map[uint8][]byte
	identify []byte
	security []byte
	// result overrides the outcome of security protocol commands.
	result *sgio.Result

	cdbs [][]byte
}

func (f *fakeTarget) Execute(req *sgio.Request) (*sgio.Result, error) {
	f.cdbs = append(f.cdbs, append([]byte(nil), req.CDB...))
	var resp []byte
	switch {
	case req.CDB[0] == sgio.SCSI_INQUIRY && req.CDB[1]&0x01 != 0:
		resp = f.pages[req.CDB[2]]
	case req.CDB[0] == sgio.SCSI_INQUIRY:
		resp = f.inquiry
	case req.CDB[0] == sgio.ATA_PASSTHROUGH && req.CDB[9] == sgio.ATA_IDENTIFY_DEVICE:
		resp = f.identify
	case req.CDB[0] == sgio.SCSI_SECURITY_IN, req.CDB[0] == sgio.SCSI_SECURITY_OUT, req.CDB[0] == sgio.ATA_PASSTHROUGH:
		if f.result != nil {
			return f.result, nil
		}
		resp = f.security
		if resp == nil {
			resp = []byte{}
		}
	}
	if resp == nil {
		return illegalRequest, nil
	}
	n := copy(req.Data, resp)
	return &sgio.Result{Status: sgio.StatusGood, Residual: len(req.Data) - n}, nil
}

func (f *fakeTarget) opcodes() []byte {
	ops := make([]byte, 0, len(f.cdbs))
	for _, cdb := range f.cdbs {
		ops = append(ops, cdb[0])
	}
	return ops
}

func standardInquiry(vendor, product, rev string) []byte {
	b := make([]byte, sgio.InquiryStandardLength)
	b[2] = 0x06
	copy(b[8:16], pad(vendor, 8))
	copy(b[16:32], pad(product, 16))
	copy(b[32:36], pad(rev, 4))
	return b
}

func pad(s string, n int) []byte {
	b := []byte(s)
	for len(b) < n {
		b = append(b, ' ')
	}
	return b[:n]
}

func vpdPage(page uint8, payload []byte) []byte {
	return append([]byte{0x00, page, byte(len(payload) >> 8), byte(len(payload))}, payload...)
}

func identifyData(serial, firmware, model string) []byte {
	b := make([]byte, 512)
	copy(b[20:40], sgio.ATABytes(pad(serial, 20)))
	copy(b[46:54], sgio.ATABytes(pad(firmware, 8)))
	copy(b[54:94], sgio.ATABytes(pad(model, 40)))
	return b
}

type fakeHandleOps struct {
	closed *int
}

func (o fakeHandleOps) Close(fd uintptr) error {
	if o.closed != nil {
		*o.closed++
	}
	return nil
}

func (o fakeHandleOps) Alive(fd uintptr) bool { return true }

type fakeNVMe struct {
	identify []byte
	sent     []uint32
}

func (n *fakeNVMe) SecuritySend(proto uint8, sps uint16, data []byte, timeout time.Duration) error {
	n.sent = append(n.sent, nvmeSecurityCDW10(proto, sps))
	return nil
}

func (n *fakeNVMe) SecurityReceive(proto uint8, sps uint16, data []byte, timeout time.Duration) error {
	n.sent = append(n.sent, nvmeSecurityCDW10(proto, sps))
	return nil
}

func (n *fakeNVMe) IdentifyController(data []byte, timeout time.Duration) error {
	copy(data, n.identify)
	return nil
}

// fakeHost serves a fixed set of devices.
type fakeHost struct {
	devices map[string]*fakeDevice
	extra   []string
	ordered bool
	opened  []string
	closed  int
}

type fakeDevice struct {
	devType DevType
	vendor  string
	model   string
	serial  string
	denied  bool
	missing bool
	broken  bool
	target  *fakeTarget
	nvme    NVMeAdmin
}

func (h *fakeHost) Name() string { return "fake" }

func (h *fakeHost) Candidates() ([]string, error) {
	refs := append([]string(nil), h.extra...)
	for ref := range h.devices {
		refs = append(refs, ref)
	}
	return refs, nil
}

func (h *fakeHost) Ordered() bool { return h.ordered }

func (h *fakeHost) Match(ref string) bool {
	_, ok := h.devices[ref]
	return ok
}

func (h *fakeHost) Open(ref string) (*Handle, error) {
	h.opened = append(h.opened, ref)
	d, ok := h.devices[ref]
	switch {
	case !ok, d.missing:
		return nil, ErrNotFound
	case d.denied:
		return nil, ErrAccessDenied
	}
	return NewHandle(ref, 3, fakeHandleOps{closed: &h.closed}), nil
}

func (h *fakeHost) Introspect(hd *Handle, info *DeviceInfo) (Properties, error) {
	d := h.devices[hd.Ref()]
	if d.broken {
		return nil, ErrCommand
	}
	HardCopy(info.VendorID[:], []byte(d.vendor))
	HardCopy(info.ModelNum[:], []byte(d.model))
	HardCopy(info.SerialNum[:], []byte(d.serial))
	info.DevType = d.devType
	return Properties{"model": d.model}, nil
}

func (h *fakeHost) Executor(hd *Handle) sgio.Executor {
	if t := h.devices[hd.Ref()].target; t != nil {
		return t
	}
	return &fakeTarget{}
}

func (h *fakeHost) NVMe(hd *Handle) NVMeAdmin {
	return h.devices[hd.Ref()].nvme
}
