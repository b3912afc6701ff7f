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

// SCSI generic IO functions.

package sgio

import (
	"errors"
	"fmt"
	"time"
)

type CDBDirection int32

const (
	CDBNoData     CDBDirection = -1
	CDBToDevice   CDBDirection = -2
	CDBFromDevice CDBDirection = -3

	DefaultTimeout = 60 * time.Second

	SenseBufferLength = 32

	// SCSI target status codes, see http://www.t10.org/lists/2status.htm
	StatusGood           = 0x00
	StatusCheckCondition = 0x02
	StatusBusy           = 0x08

	SENSE_ILLEGAL_REQUEST = 0x5

	DRIVER_SENSE = 0x8
)

var (
	ErrIllegalRequest = errors.New("illegal SCSI request")
	ErrUnsupported    = errors.New("SCSI pass-through is not supported on this platform")
)

// SCSI CDB types
type (
	CDB6  [6]byte
	CDB12 [12]byte
)

// Request is a single pass-through submission.
type Request struct {
	CDB       []byte
	Direction CDBDirection
	Data      []byte
	// Zero selects DefaultTimeout.
	Timeout time.Duration
}

func (r *Request) timeout() time.Duration {
	if r.Timeout <= 0 {
		return DefaultTimeout
	}
	return r.Timeout
}

// Result is what the host reported back for a submission that reached the target.
type Result struct {
	Status       uint8
	HostStatus   uint16
	DriverStatus uint16
	Residual     int
	Sense        []byte
}

// Faulted reports a host adapter or driver level failure.
func (r *Result) Faulted() bool {
	ds := r.DriverStatus & 0x0f
	return r.HostStatus != 0 || (ds != 0 && ds != DRIVER_SENSE)
}

// Transferred returns the number of bytes actually moved for a request of size requested.
func (r *Result) Transferred(requested int) int {
	n := requested - r.Residual
	if n < 0 {
		return 0
	}
	if n > requested {
		return requested
	}
	return n
}

// Err converts a non-GOOD outcome into an error.
func (r *Result) Err() error {
	if !r.Faulted() && r.Status == StatusGood {
		return nil
	}
	if s, ok := ParseSense(r.Sense); ok && s.Key == SENSE_ILLEGAL_REQUEST {
		return ErrIllegalRequest
	}
	return &StatusError{
		Status:       r.Status,
		HostStatus:   r.HostStatus,
		DriverStatus: r.DriverStatus,
		Sense:        r.Sense,
	}
}

type StatusError struct {
	Status       uint8
	HostStatus   uint16
	DriverStatus uint16
	Sense        []byte
}

func (e *StatusError) Error() string {
	if s, ok := ParseSense(e.Sense); ok {
		return fmt.Sprintf("SCSI status: %#02x, sense key: %#02x, asc: %#02x, ascq: %#02x",
			e.Status, s.Key, s.ASC, s.ASCQ)
	}
	return fmt.Sprintf("SCSI status: %#02x, host status: %#02x, driver status: %#02x",
		e.Status, e.HostStatus, e.DriverStatus)
}

// Executor submits a CDB to a device. An error is returned only when the
// submission itself failed; target status is carried in Result.
type Executor interface {
	Execute(req *Request) (*Result, error)
}

type ExecutorFunc func(req *Request) (*Result, error)

func (f ExecutorFunc) Execute(req *Request) (*Result, error) {
	return f(req)
}

// SendCDB submits cdb and folds the target status into the returned error.
func SendCDB(e Executor, cdb []byte, dir CDBDirection, buf []byte, timeout time.Duration) (int, error) {
	if len(buf) == 0 {
		dir = CDBNoData
	}
	res, err := e.Execute(&Request{CDB: cdb, Direction: dir, Data: buf, Timeout: timeout})
	if err != nil {
		return 0, err
	}
	if err := res.Err(); err != nil {
		return 0, err
	}
	return res.Transferred(len(buf)), nil
}

type unsupportedExecutor struct{}

func (unsupportedExecutor) Execute(*Request) (*Result, error) {
	return nil, ErrUnsupported
}
