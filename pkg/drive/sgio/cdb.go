// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Copyright 2021 Christian Svensson. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sgio

import (
	"encoding/binary"
	"fmt"
)

const (
	ATA_PASSTHROUGH     = 0xa1
	ATA_TRUSTED_RCV     = 0x5c
	ATA_TRUSTED_SND     = 0x5e
	ATA_IDENTIFY_DEVICE = 0xec

	SCSI_INQUIRY      = 0x12
	SCSI_SECURITY_IN  = 0xa2
	SCSI_SECURITY_OUT = 0xb5

	PIO_DATA_IN  = 4
	PIO_DATA_OUT = 5

	// Transfer length unit of the SECURITY PROTOCOL commands when INC_512 is set.
	SecurityBlockSize = 512
)

// Vital product data pages
const (
	VPDSupportedPages        = 0x00
	VPDUnitSerialNumber      = 0x80
	VPDDeviceIdentification  = 0x83
	VPDATAInformation        = 0x89
	InquiryStandardLength    = 36
	InquiryVPDLength         = 255
	InquiryATAInformationLen = 572
)

// InquiryCDB builds an INQUIRY(6). With evpd unset the page code must be zero.
func InquiryCDB(evpd bool, page uint8, allocation uint16) CDB6 {
	cdb := CDB6{SCSI_INQUIRY}
	if evpd {
		cdb[1] = 0x01
		cdb[2] = page
	}
	binary.BigEndian.PutUint16(cdb[3:], allocation)
	return cdb
}

// SecurityProtocolCDB builds a SECURITY PROTOCOL IN (in) or OUT (!in) CDB
// with INC_512 set. length must be a multiple of SecurityBlockSize.
func SecurityProtocolCDB(in bool, proto uint8, sps uint16, length int) (CDB12, error) {
	if length%SecurityBlockSize != 0 {
		return CDB12{}, fmt.Errorf("security protocol transfer of %d bytes is not 512-byte aligned", length)
	}
	cdb := CDB12{SCSI_SECURITY_OUT}
	if in {
		cdb[0] = SCSI_SECURITY_IN
	}
	cdb[1] = proto
	binary.BigEndian.PutUint16(cdb[2:], sps)
	// Seagate 7E200 series seems to require INC_512 to be set, and all other
	// drives tested seem to be fine with it, so we only support 512 byte aligned
	cdb[4] = 1 << 7 // INC_512 = 1
	binary.BigEndian.PutUint32(cdb[6:], uint32(length/SecurityBlockSize))
	return cdb, nil
}

// ATATrustedCDB builds an ATA PASS-THROUGH(12) wrapping TRUSTED RECEIVE (in)
// or TRUSTED SEND (!in).
func ATATrustedCDB(in bool, proto uint8, comID uint16, length int) (CDB12, error) {
	if length%SecurityBlockSize != 0 || length/SecurityBlockSize > 0xff {
		return CDB12{}, fmt.Errorf("ATA trusted transfer of %d bytes cannot be expressed in sectors", length)
	}
	cdb := CDB12{ATA_PASSTHROUGH}
	if in {
		cdb[1] = PIO_DATA_IN << 1
		cdb[2] = 0x0E
		cdb[9] = ATA_TRUSTED_RCV
	} else {
		cdb[1] = PIO_DATA_OUT << 1
		cdb[2] = 0x06
		cdb[9] = ATA_TRUSTED_SND
	}
	cdb[3] = proto
	cdb[4] = uint8(length / SecurityBlockSize)
	cdb[6] = uint8(comID & 0xff)
	cdb[7] = uint8((comID & 0xff00) >> 8)
	return cdb, nil
}

// ATA Passthrough via SCSI (which is what Linux uses for all ATA these days)
func ATAIdentifyCDB() CDB12 {
	cdb := CDB12{ATA_PASSTHROUGH}
	cdb[1] = PIO_DATA_IN << 1
	cdb[2] = 0x0E
	cdb[4] = 1
	cdb[9] = ATA_IDENTIFY_DEVICE
	return cdb
}
