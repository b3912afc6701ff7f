// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package drive

import (
	"time"

	"github.com/open-source-firmware/go-tcg-drive/pkg/drive/sgio"
)

// SendSecurityProtocol issues SECURITY PROTOCOL IN or OUT and reduces the
// outcome to StatusSuccess or StatusFailure plus the bytes transferred.
func SendSecurityProtocol(e sgio.Executor, cmd Command, proto SecurityProtocol, comID uint16, buf []byte, timeout time.Duration) (uint8, int) {
	switch cmd {
	case IFRecv:
		return reduce(sgio.SCSISecurityIn(e, uint8(proto), comID, buf, timeout))
	case IFSend:
		return reduce(sgio.SCSISecurityOut(e, uint8(proto), comID, buf, timeout))
	}
	return StatusFailure, 0
}

// SendATATrusted is SendSecurityProtocol for ATA devices behind a SAT layer.
func SendATATrusted(e sgio.Executor, cmd Command, proto SecurityProtocol, comID uint16, buf []byte, timeout time.Duration) (uint8, int) {
	switch cmd {
	case IFRecv:
		return reduce(sgio.ATATrustedReceive(e, uint8(proto), comID, buf, timeout))
	case IFSend:
		return reduce(sgio.ATATrustedSend(e, uint8(proto), comID, buf, timeout))
	}
	return StatusFailure, 0
}

// reduce folds any submission or target failure into StatusFailure.
func reduce(n int, err error) (uint8, int) {
	if err != nil {
		return StatusFailure, 0
	}
	return StatusSuccess, n
}
