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

//go:build linux

package sgio

import (
	"runtime"
	"unsafe"

	"github.com/dswarbrick/smart/ioctl"
)

const SG_IO = 0x2285

// SCSI generic ioctl header, defined as sg_io_hdr_t in <scsi/sg.h>
type sgIoHdr struct {
	interface_id    int32        // 'S' for SCSI generic (required)
	dxfer_direction CDBDirection // data transfer direction
	cmd_len         uint8        // SCSI command length (<= 16 bytes)
	mx_sb_len       uint8        // max length to write to sbp
	iovec_count     uint16       //nolint:structcheck,unused // 0 implies no scatter gather
	dxfer_len       uint32       // byte count of data transfer
	dxferp          uintptr      // points to data transfer memory or scatter gather list
	cmdp            uintptr      // points to command to perform
	sbp             uintptr      // points to sense_buffer memory
	timeout         uint32       // MAX_UINT -> no timeout (unit: millisec)
	flags           uint32       //nolint:structcheck,unused // 0 -> default, see SG_FLAG...
	pack_id         int32        //nolint:structcheck,unused // unused internally (normally)
	usr_ptr         uintptr      //nolint:structcheck,unused // unused internally
	status          uint8        // SCSI status
	masked_status   uint8        //nolint:structcheck,unused // shifted, masked scsi status
	msg_status      uint8        //nolint:structcheck,unused // messaging level data (optional)
	sb_len_wr       uint8        // byte count actually written to sbp
	host_status     uint16       // errors from host adapter
	driver_status   uint16       // errors from software driver
	resid           int32        // dxfer_len - actual_transferred
	duration        uint32       //nolint:structcheck,unused // time taken by cmd (unit: millisec)
	info            uint32       //nolint:structcheck,unused // auxiliary information
}

type sgExecutor struct {
	fd uintptr
}

// NewExecutor returns an Executor issuing SG_IO on fd.
func NewExecutor(fd uintptr) Executor {
	return &sgExecutor{fd: fd}
}

func (e *sgExecutor) Execute(req *Request) (*Result, error) {
	senseBuf := make([]byte, SenseBufferLength)

	hdr := sgIoHdr{
		interface_id:    'S',
		dxfer_direction: req.Direction,
		timeout:         uint32(req.timeout().Milliseconds()),
		cmd_len:         uint8(len(req.CDB)),
		mx_sb_len:       uint8(len(senseBuf)),
		cmdp:            uintptr(unsafe.Pointer(&req.CDB[0])),
		sbp:             uintptr(unsafe.Pointer(&senseBuf[0])),
	}
	if len(req.Data) > 0 {
		hdr.dxfer_len = uint32(len(req.Data))
		hdr.dxferp = uintptr(unsafe.Pointer(&req.Data[0]))
	} else {
		hdr.dxfer_direction = CDBNoData
	}

	err := ioctl.Ioctl(e.fd, SG_IO, uintptr(unsafe.Pointer(&hdr)))
	runtime.KeepAlive(req)
	if err != nil {
		return nil, err
	}

	return &Result{
		Status:       hdr.status,
		HostStatus:   hdr.host_status,
		DriverStatus: hdr.driver_status,
		Residual:     int(hdr.resid),
		Sense:        senseBuf[:hdr.sb_len_wr],
	}, nil
}
