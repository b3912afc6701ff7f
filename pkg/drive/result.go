// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package drive

import (
	"errors"
	"fmt"
)

// ResultCode is the outcome of identifying a device reference.
type ResultCode uint8

const (
	Success ResultCode = iota
	CommandError
	DeviceAccessDenied
	DeviceNotOpen
	DeviceTypeUnknown
)

func (c ResultCode) String() string {
	switch c {
	case Success:
		return "SUCCESS"
	case CommandError:
		return "COMMAND_ERROR"
	case DeviceAccessDenied:
		return "DEVICE_ACCESS_DENIED"
	case DeviceNotOpen:
		return "DEVICE_NOT_OPEN"
	case DeviceTypeUnknown:
		return "DEVICE_TYPE_UNKNOWN"
	}
	return fmt.Sprintf("ResultCode(%d)", uint8(c))
}

// Code classifies err. Anything unrecognized is a CommandError.
func Code(err error) ResultCode {
	switch {
	case err == nil:
		return Success
	case errors.Is(err, ErrAccessDenied):
		return DeviceAccessDenied
	case errors.Is(err, ErrNotOpen):
		return DeviceNotOpen
	case errors.Is(err, ErrDeviceTypeUnknown):
		return DeviceTypeUnknown
	}
	return CommandError
}
