// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package drive

import (
	"fmt"
)

// ComIDDiscoveryL0 is the ComID Level 0 discovery is read from.
const ComIDDiscoveryL0 uint16 = 0x0001

// Discovery0Parser decodes a Level 0 discovery response into info.
type Discovery0Parser func(raw []byte, info *DeviceInfo) error

// Discovery0 reads the Level 0 discovery response of d and hands it to parse.
func Discovery0(d Device, info *DeviceInfo, parse Discovery0Parser) error {
	if !d.IsOpen() {
		return ErrNotOpen
	}
	buf, err := NewAlignedBuffer(MinBufferLength)
	if err != nil {
		return err
	}
	defer buf.Release()
	raw := buf.Bytes()

	if status, _ := d.SendCmd(IFRecv, SecurityProtocolTCGManagement, ComIDDiscoveryL0, raw); status != StatusSuccess {
		return fmt.Errorf("%w: level 0 discovery status %#02x", ErrCommand, status)
	}
	if parse == nil {
		return nil
	}
	if err := parse(raw, info); err != nil {
		return fmt.Errorf("%w: %w", ErrCommand, err)
	}
	return nil
}
