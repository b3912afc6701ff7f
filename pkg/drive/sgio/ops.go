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
	"time"
)

// INQUIRY - Returns parsed inquiry data, read into buf.
func SCSIInquiry(e Executor, buf []byte, timeout time.Duration) (InquiryResponse, error) {
	if _, err := Inquiry(e, buf, timeout); err != nil {
		return InquiryResponse{}, err
	}
	return ParseStandardInquiry(buf)
}

// Inquiry issues a standard INQUIRY into buf.
func Inquiry(e Executor, buf []byte, timeout time.Duration) (int, error) {
	cdb := InquiryCDB(false, 0, uint16(len(buf)))
	return SendCDB(e, cdb[:], CDBFromDevice, buf, timeout)
}

// InquiryVPD issues an EVPD INQUIRY for page into buf.
func InquiryVPD(e Executor, page uint8, buf []byte, timeout time.Duration) (int, error) {
	cdb := InquiryCDB(true, page, uint16(len(buf)))
	return SendCDB(e, cdb[:], CDBFromDevice, buf, timeout)
}

func ATAIdentify(e Executor, timeout time.Duration) (IdentifyDeviceResponse, error) {
	respBuf := make([]byte, 512)
	cdb := ATAIdentifyCDB()
	if _, err := SendCDB(e, cdb[:], CDBFromDevice, respBuf, timeout); err != nil {
		return IdentifyDeviceResponse{}, err
	}
	return ParseIdentifyDevice(respBuf)
}

// SCSI SECURITY IN
func SCSISecurityIn(e Executor, proto uint8, sps uint16, resp []byte, timeout time.Duration) (int, error) {
	cdb, err := SecurityProtocolCDB(true, proto, sps, len(resp))
	if err != nil {
		return 0, err
	}
	return SendCDB(e, cdb[:], CDBFromDevice, resp, timeout)
}

// SCSI SECURITY OUT
func SCSISecurityOut(e Executor, proto uint8, sps uint16, in []byte, timeout time.Duration) (int, error) {
	cdb, err := SecurityProtocolCDB(false, proto, sps, len(in))
	if err != nil {
		return 0, err
	}
	return SendCDB(e, cdb[:], CDBToDevice, in, timeout)
}

// ATA TRUSTED RECEIVE
func ATATrustedReceive(e Executor, proto uint8, comID uint16, resp []byte, timeout time.Duration) (int, error) {
	cdb, err := ATATrustedCDB(true, proto, comID, len(resp))
	if err != nil {
		return 0, err
	}
	return SendCDB(e, cdb[:], CDBFromDevice, resp, timeout)
}

// ATA TRUSTED SEND
func ATATrustedSend(e Executor, proto uint8, comID uint16, in []byte, timeout time.Duration) (int, error) {
	cdb, err := ATATrustedCDB(false, proto, comID, len(in))
	if err != nil {
		return 0, err
	}
	return SendCDB(e, cdb[:], CDBToDevice, in, timeout)
}
