// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package drive

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/open-source-firmware/go-tcg-drive/pkg/drive/quirk"
	"github.com/open-source-firmware/go-tcg-drive/pkg/drive/sgio"
)

// scsiDrive speaks SCSI SECURITY PROTOCOL, or ATA TRUSTED commands through
// SAT when variant is VariantSATA.
type scsiDrive struct {
	h       *Handle
	exec    sgio.Executor
	variant Variant
	inquiry InquiryConfig
	quirks  *quirk.Table
	log     logrus.FieldLogger
}

func (d *scsiDrive) SendCmd(cmd Command, proto SecurityProtocol, comID uint16, buf []byte) (uint8, int) {
	if !d.h.IsOpen() {
		return StatusFailure, 0
	}
	if d.variant == VariantSATA {
		return SendATATrusted(d.exec, cmd, proto, comID, buf, d.inquiry.Timeout)
	}
	return SendSecurityProtocol(d.exec, cmd, proto, comID, buf, d.inquiry.Timeout)
}

func (d *scsiDrive) Identify(info *DeviceInfo) bool {
	if d.variant == VariantSATA {
		IdentifyUsingInquiry(d.exec, info, InquiryConfig{Timeout: d.inquiry.Timeout, AllowPage00Failure: true}, d.quirks, d.log)
		return identifyUsingATA(d.exec, info, d.inquiry.Timeout)
	}
	return IdentifyUsingInquiry(d.exec, info, d.inquiry, d.quirks, d.log)
}

func (d *scsiDrive) IsOpen() bool {
	return d.h.IsOpen()
}

func (d *scsiDrive) Variant() Variant {
	return d.variant
}

func (d *scsiDrive) Close() error {
	return d.h.Close()
}

// identifyUsingATA issues ATA IDENTIFY DEVICE through the SAT layer.
func identifyUsingATA(e sgio.Executor, info *DeviceInfo, timeout time.Duration) bool {
	id, err := sgio.ATAIdentify(e, timeout)
	if err != nil || !id.Valid() {
		return false
	}
	serial := sgio.ATABytes(id.Serial[:])
	HardCopy(info.PasswordSalt[:], serial)
	HardCopy(info.SerialNum[:], serial)
	HardCopy(info.ModelNum[:], sgio.ATABytes(id.Model[:]))
	HardCopy(info.FirmwareRev[:], sgio.ATABytes(id.Firmware[:]))
	if wwn := id.WorldWideName(); !isZero(wwn[:]) {
		info.WorldWideName = wwn
		info.WorldWideNameSynthetic = false
	}
	return true
}
