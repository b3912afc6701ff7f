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
	"errors"
	"fmt"
	"strings"
)

var ErrShortResponse = errors.New("response buffer too short")

// Field locates a value inside a response buffer.
type Field struct {
	Offset int
	Length int
}

// Bytes returns the field's slice of b, or nil if b does not cover it.
func (f Field) Bytes(b []byte) []byte {
	if f.Offset < 0 || f.Offset+f.Length > len(b) {
		return nil
	}
	return b[f.Offset : f.Offset+f.Length]
}

// Standard INQUIRY data
var (
	InquiryPeripheral = Field{0, 1}
	InquiryVersion    = Field{2, 1}
	InquiryVendorID   = Field{8, 8}
	InquiryProductID  = Field{16, 16}
	InquiryProductRev = Field{32, 4}
)

// VPD page header and bodies
var (
	VPDPageCode   = Field{1, 1}
	VPDPageLength = Field{2, 2}
	VPDPayload    = 4

	ATAInfoSATVendorID   = Field{8, 8}
	ATAInfoSATProductID  = Field{16, 16}
	ATAInfoSATProductRev = Field{32, 4}
	ATAInfoCommandCode   = Field{56, 1}
	ATAInfoIdentifyData  = Field{60, 512}
)

// ATA IDENTIFY DEVICE data, words are little endian with byte swapped strings
var (
	IdentifySerial   = Field{20, 20}
	IdentifyFirmware = Field{46, 8}
	IdentifyModel    = Field{54, 40}
	IdentifyWWN      = Field{216, 8}
)

// SCSI INQUIRY response
type InquiryResponse struct {
	Peripheral   byte // peripheral qualifier, device type
	Version      byte
	VendorIdent  [8]byte
	ProductIdent [16]byte
	ProductRev   [4]byte
}

func (inq InquiryResponse) String() string {
	return fmt.Sprintf("Type=0x%x, Vendor=%s, Product=%s, Revision=%s",
		inq.Peripheral,
		strings.TrimSpace(string(inq.VendorIdent[:])),
		strings.TrimSpace(string(inq.ProductIdent[:])),
		strings.TrimSpace(string(inq.ProductRev[:])))
}

func ParseStandardInquiry(b []byte) (InquiryResponse, error) {
	var resp InquiryResponse
	if len(b) < InquiryStandardLength {
		return resp, ErrShortResponse
	}
	resp.Peripheral = InquiryPeripheral.Bytes(b)[0]
	resp.Version = InquiryVersion.Bytes(b)[0]
	copy(resp.VendorIdent[:], InquiryVendorID.Bytes(b))
	copy(resp.ProductIdent[:], InquiryProductID.Bytes(b))
	copy(resp.ProductRev[:], InquiryProductRev.Bytes(b))
	return resp, nil
}

// vpdBody validates the page header and returns the page payload.
func vpdBody(b []byte, page uint8) ([]byte, error) {
	if len(b) < VPDPayload {
		return nil, ErrShortResponse
	}
	if got := VPDPageCode.Bytes(b)[0]; got != page {
		return nil, fmt.Errorf("VPD page code %#02x, expected %#02x", got, page)
	}
	n := int(binary.BigEndian.Uint16(VPDPageLength.Bytes(b)))
	if VPDPayload+n > len(b) {
		n = len(b) - VPDPayload
	}
	return b[VPDPayload : VPDPayload+n], nil
}

// ParseSupportedPages decodes VPD page 00.
func ParseSupportedPages(b []byte) ([]uint8, error) {
	body, err := vpdBody(b, VPDSupportedPages)
	if err != nil {
		return nil, err
	}
	pages := make([]uint8, len(body))
	copy(pages, body)
	return pages, nil
}

// ParseUnitSerialNumber decodes VPD page 80. The serial is returned as
// reported, including any padding.
func ParseUnitSerialNumber(b []byte) ([]byte, error) {
	body, err := vpdBody(b, VPDUnitSerialNumber)
	if err != nil {
		return nil, err
	}
	serial := make([]byte, len(body))
	copy(serial, body)
	return serial, nil
}

// ParseDeviceIdentification decodes VPD page 83 and returns the first NAA
// designator associated with the logical unit.
func ParseDeviceIdentification(b []byte) ([8]byte, bool, error) {
	var naa [8]byte
	body, err := vpdBody(b, VPDDeviceIdentification)
	if err != nil {
		return naa, false, err
	}
	for len(body) >= 4 {
		association := (body[1] >> 4) & 0x3
		designatorType := body[1] & 0x0f
		n := int(body[3])
		if 4+n > len(body) {
			break
		}
		if designatorType == 0x3 && association == 0 && n >= 8 {
			copy(naa[:], body[4:12])
			return naa, true, nil
		}
		body = body[4+n:]
	}
	return naa, false, nil
}

// ATAInformation is VPD page 89 as reported by a SAT layer.
type ATAInformation struct {
	SATVendor   [8]byte
	SATProduct  [16]byte
	SATRevision [4]byte
	Identify    IdentifyDeviceResponse
}

func ParseATAInformation(b []byte) (ATAInformation, error) {
	var info ATAInformation
	if _, err := vpdBody(b, VPDATAInformation); err != nil {
		return info, err
	}
	id := ATAInfoIdentifyData.Bytes(b)
	if id == nil {
		return info, ErrShortResponse
	}
	copy(info.SATVendor[:], ATAInfoSATVendorID.Bytes(b))
	copy(info.SATProduct[:], ATAInfoSATProductID.Bytes(b))
	copy(info.SATRevision[:], ATAInfoSATProductRev.Bytes(b))
	var err error
	info.Identify, err = ParseIdentifyDevice(id)
	return info, err
}

// ATA IDENTFY DEVICE response, strings kept in wire order
type IdentifyDeviceResponse struct {
	Serial   [20]byte
	Firmware [8]byte
	Model    [40]byte
	WWN      [8]byte
}

func ParseIdentifyDevice(b []byte) (IdentifyDeviceResponse, error) {
	var id IdentifyDeviceResponse
	if len(b) < 512 {
		return id, ErrShortResponse
	}
	copy(id.Serial[:], IdentifySerial.Bytes(b))
	copy(id.Firmware[:], IdentifyFirmware.Bytes(b))
	copy(id.Model[:], IdentifyModel.Bytes(b))
	copy(id.WWN[:], IdentifyWWN.Bytes(b))
	return id, nil
}

// Valid reports whether the device filled in a model number.
func (id IdentifyDeviceResponse) Valid() bool {
	return strings.TrimRight(string(id.Model[:]), " \x00") != ""
}

// WorldWideName decodes words 108-111 into NAA byte order.
func (id IdentifyDeviceResponse) WorldWideName() [8]byte {
	var wwn [8]byte
	copy(wwn[:], ATABytes(id.WWN[:]))
	return wwn
}

// ATABytes undoes the per-word byte swap of ATA strings.
func ATABytes(b []byte) []byte {
	out := make([]byte, len(b))
	for i := 0; i < len(b)/2; i++ {
		out[i*2] = b[i*2+1]
		out[i*2+1] = b[i*2]
	}
	return out
}

func ATAString(b []byte) string {
	return string(ATABytes(b))
}

func (id IdentifyDeviceResponse) String() string {
	return fmt.Sprintf("Serial=%s, Firmware=%s, Model=%s",
		strings.TrimSpace(ATAString(id.Serial[:])),
		strings.TrimSpace(ATAString(id.Firmware[:])),
		strings.TrimSpace(ATAString(id.Model[:])))
}

// Sense is the decoded key of fixed (0x70/0x71) or descriptor (0x72/0x73) sense data.
type Sense struct {
	ResponseCode uint8
	Key          uint8
	ASC          uint8
	ASCQ         uint8
}

func ParseSense(b []byte) (Sense, bool) {
	if len(b) < 1 {
		return Sense{}, false
	}
	s := Sense{ResponseCode: b[0] & 0x7f}
	switch s.ResponseCode {
	case 0x70, 0x71:
		if len(b) < 3 {
			return s, false
		}
		s.Key = b[2] & 0x0f
		if len(b) >= 14 {
			s.ASC = b[12]
			s.ASCQ = b[13]
		}
	case 0x72, 0x73:
		if len(b) < 4 {
			return s, false
		}
		s.Key = b[1] & 0x0f
		s.ASC = b[2]
		s.ASCQ = b[3]
	default:
		return s, false
	}
	return s, true
}
