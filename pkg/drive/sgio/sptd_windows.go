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

//go:build windows

package sgio

import (
	"runtime"
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	IOCTL_SCSI_PASS_THROUGH_DIRECT = 0x4D014

	SCSI_IOCTL_DATA_OUT         = 0
	SCSI_IOCTL_DATA_IN          = 1
	SCSI_IOCTL_DATA_UNSPECIFIED = 2
)

// SCSI_PASS_THROUGH_DIRECT from <ntddscsi.h>
type scsiPassThroughDirect struct {
	Length             uint16
	ScsiStatus         uint8
	PathId             uint8
	TargetId           uint8
	Lun                uint8
	CdbLength          uint8
	SenseInfoLength    uint8
	DataIn             uint8
	DataTransferLength uint32
	TimeOutValue       uint32 // seconds
	DataBuffer         uintptr
	SenseInfoOffset    uint32
	Cdb                [16]byte
}

type scsiPassThroughDirectWithSense struct {
	sptd  scsiPassThroughDirect
	sense [SenseBufferLength]byte
}

type sptdExecutor struct {
	h windows.Handle
}

// NewExecutor returns an Executor issuing IOCTL_SCSI_PASS_THROUGH_DIRECT on the handle fd.
func NewExecutor(fd uintptr) Executor {
	return &sptdExecutor{h: windows.Handle(fd)}
}

func (e *sptdExecutor) Execute(req *Request) (*Result, error) {
	var p scsiPassThroughDirectWithSense
	p.sptd.Length = uint16(unsafe.Sizeof(p.sptd))
	p.sptd.CdbLength = uint8(copy(p.sptd.Cdb[:], req.CDB))
	p.sptd.SenseInfoLength = SenseBufferLength
	p.sptd.SenseInfoOffset = uint32(unsafe.Offsetof(p.sense))
	p.sptd.TimeOutValue = uint32((req.timeout() + 999999999) / 1000000000)

	switch {
	case len(req.Data) == 0:
		p.sptd.DataIn = SCSI_IOCTL_DATA_UNSPECIFIED
	case req.Direction == CDBToDevice:
		p.sptd.DataIn = SCSI_IOCTL_DATA_OUT
	default:
		p.sptd.DataIn = SCSI_IOCTL_DATA_IN
	}
	if len(req.Data) > 0 {
		p.sptd.DataTransferLength = uint32(len(req.Data))
		p.sptd.DataBuffer = uintptr(unsafe.Pointer(&req.Data[0]))
	}

	var returned uint32
	size := uint32(unsafe.Sizeof(p))
	err := windows.DeviceIoControl(e.h, IOCTL_SCSI_PASS_THROUGH_DIRECT,
		(*byte)(unsafe.Pointer(&p)), size, (*byte)(unsafe.Pointer(&p)), size, &returned, nil)
	runtime.KeepAlive(req)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Status:   p.sptd.ScsiStatus,
		Residual: len(req.Data) - int(p.sptd.DataTransferLength),
	}
	if res.Status != StatusGood {
		res.Sense = append([]byte(nil), p.sense[:p.sptd.SenseInfoLength]...)
	}
	return res, nil
}
