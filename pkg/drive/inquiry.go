// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package drive

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/open-source-firmware/go-tcg-drive/pkg/drive/quirk"
	"github.com/open-source-firmware/go-tcg-drive/pkg/drive/sgio"
)

// StagePolicy decides when a VPD stage of the inquiry chain runs.
type StagePolicy int

const (
	// StageIfDeclared runs the stage when page 00 lists the page. A declared
	// page that then fails rejects the device.
	StageIfDeclared StagePolicy = iota
	// StageRequired runs the stage regardless of page 00 and rejects the
	// device when it fails.
	StageRequired
	StageDisabled
)

func (p StagePolicy) String() string {
	switch p {
	case StageIfDeclared:
		return "if-declared"
	case StageRequired:
		return "required"
	case StageDisabled:
		return "disabled"
	}
	return fmt.Sprintf("StagePolicy(%d)", int(p))
}

func ParseStagePolicy(s string) (StagePolicy, error) {
	for _, p := range []StagePolicy{StageIfDeclared, StageRequired, StageDisabled} {
		if p.String() == s {
			return p, nil
		}
	}
	return StageDisabled, fmt.Errorf("unknown stage policy %q", s)
}

type Stage struct {
	Page   uint8
	Policy StagePolicy
}

// InquiryConfig drives IdentifyUsingInquiry. The standard INQUIRY and page 00
// always run; Stages follow in order.
type InquiryConfig struct {
	Stages []Stage
	// AllowPage00Failure accepts devices that only answer the standard
	// INQUIRY, as many USB bridges do.
	AllowPage00Failure bool
	Timeout            time.Duration
}

func DefaultInquiryConfig() InquiryConfig {
	return InquiryConfig{
		Stages: []Stage{
			{Page: sgio.VPDUnitSerialNumber, Policy: StageIfDeclared},
			{Page: sgio.VPDDeviceIdentification, Policy: StageDisabled},
			{Page: sgio.VPDATAInformation, Policy: StageDisabled},
		},
		AllowPage00Failure: true,
	}
}

type inquirer struct {
	exec   sgio.Executor
	cfg    InquiryConfig
	quirks *quirk.Table
	log    logrus.FieldLogger
	flags  quirk.Flags
}

// IdentifyUsingInquiry runs the standard INQUIRY followed by the VPD chain
// and merges what it learns into info. It reports whether the device is
// identifiable through SCSI.
func IdentifyUsingInquiry(e sgio.Executor, info *DeviceInfo, cfg InquiryConfig, quirks *quirk.Table, log logrus.FieldLogger) bool {
	if log == nil {
		log = logrus.StandardLogger()
	}
	q := &inquirer{exec: e, cfg: cfg, quirks: quirks, log: log}
	return q.identify(info)
}

func (q *inquirer) query(page uint8, length int) ([]byte, error) {
	buf, err := NewAlignedBuffer(length)
	if err != nil {
		return nil, err
	}
	defer buf.Release()
	raw := buf.Bytes()
	if _, err := sgio.InquiryVPD(q.exec, page, raw, q.cfg.Timeout); err != nil {
		return nil, err
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, nil
}

func (q *inquirer) standard() (sgio.InquiryResponse, error) {
	buf, err := NewAlignedBuffer(sgio.InquiryStandardLength)
	if err != nil {
		return sgio.InquiryResponse{}, err
	}
	defer buf.Release()
	return sgio.SCSIInquiry(q.exec, buf.Bytes(), q.cfg.Timeout)
}

func (q *inquirer) identify(info *DeviceInfo) bool {
	std, err := q.standard()
	if err != nil {
		q.log.Debugf("Standard INQUIRY failed: %v", err)
		return false
	}
	HardCopy(info.VendorID[:], std.VendorIdent[:])
	HardCopy(info.ModelNum[:], std.ProductIdent[:])
	HardCopy(info.FirmwareRev[:], std.ProductRev[:])
	fp := quirk.NewFingerprint(std.VendorIdent[:], std.ProductIdent[:], std.ProductRev[:])
	q.flags = q.quirks.Resolve(fp)
	q.log.Debugf("INQUIRY %s quirks %s", fp, q.flags)

	raw, err := q.query(sgio.VPDSupportedPages, sgio.InquiryVPDLength)
	var pages []uint8
	if err == nil {
		pages, err = sgio.ParseSupportedPages(raw)
	}
	if err != nil {
		q.log.Debugf("VPD page 00 unavailable: %v", err)
		return q.cfg.AllowPage00Failure
	}
	declared := map[uint8]bool{}
	for _, p := range pages {
		declared[p] = true
	}
	if !declared[sgio.VPDSupportedPages] || !declared[sgio.VPDDeviceIdentification] {
		q.log.Debugf("VPD page 00 lists %x without mandatory pages 00 and 83", pages)
		return false
	}

	for _, s := range q.cfg.Stages {
		switch {
		case s.Policy == StageDisabled:
			continue
		case s.Policy == StageIfDeclared && !declared[s.Page]:
			continue
		}
		if err := q.runStage(s.Page, info); err != nil {
			q.log.Debugf("VPD page %02x failed: %v", s.Page, err)
			return false
		}
	}
	return true
}

func (q *inquirer) runStage(page uint8, info *DeviceInfo) error {
	length := sgio.InquiryVPDLength
	if page == sgio.VPDATAInformation {
		length = sgio.InquiryATAInformationLen
	}
	raw, err := q.query(page, length)
	if err != nil {
		return err
	}
	switch page {
	case sgio.VPDUnitSerialNumber:
		serial, err := sgio.ParseUnitSerialNumber(raw)
		if err != nil {
			return err
		}
		HardCopy(info.PasswordSalt[:], serial)
		if q.flags.ReverseSerialNumber {
			reverseCString(serial)
		}
		HardCopy(info.SerialNum[:], serial)
	case sgio.VPDDeviceIdentification:
		naa, ok, err := sgio.ParseDeviceIdentification(raw)
		if err != nil {
			return err
		}
		if ok {
			info.WorldWideName = naa
			info.WorldWideNameSynthetic = false
		}
	case sgio.VPDATAInformation:
		ata, err := sgio.ParseATAInformation(raw)
		if err != nil {
			return err
		}
		SoftCopy(info.SerialNum[:], sgio.ATABytes(ata.Identify.Serial[:]))
		SoftCopy(info.ModelNum[:], sgio.ATABytes(ata.Identify.Model[:]))
		SoftCopy(info.FirmwareRev[:], sgio.ATABytes(ata.Identify.Firmware[:]))
		if wwn := ata.Identify.WorldWideName(); !info.HasWorldWideName() && !isZero(wwn[:]) {
			info.WorldWideName = wwn
			info.WorldWideNameSynthetic = false
		}
	}
	return nil
}
