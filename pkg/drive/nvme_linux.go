// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package drive

import (
	"runtime"
	"time"
	"unsafe"

	"github.com/dswarbrick/smart/ioctl"
)

var NVME_IOCTL_ADMIN_CMD = ioctl.Iowr('N', 0x41, unsafe.Sizeof(nvmePassthruCommand{}))

// Defined in <linux/nvme_ioctl.h>
type nvmePassthruCommand struct {
	opcode       uint8
	flags        uint8  //nolint:structcheck,unused
	rsvd1        uint16 //nolint:structcheck,unused
	nsid         uint32
	cdw2         uint32 //nolint:structcheck,unused
	cdw3         uint32 //nolint:structcheck,unused
	metadata     uint64 //nolint:structcheck,unused
	addr         uint64
	metadata_len uint32 //nolint:structcheck,unused
	data_len     uint32
	cdw10        uint32
	cdw11        uint32
	cdw12        uint32 //nolint:structcheck,unused
	cdw13        uint32 //nolint:structcheck,unused
	cdw14        uint32 //nolint:structcheck,unused
	cdw15        uint32 //nolint:structcheck,unused
	timeout_ms   uint32
	result       uint32 //nolint:structcheck,unused
}

type linuxNVMe struct {
	fd uintptr
}

func newNVMeAdmin(fd uintptr) NVMeAdmin {
	return &linuxNVMe{fd: fd}
}

func (n *linuxNVMe) submit(cmd *nvmePassthruCommand, data []byte, timeout time.Duration) error {
	if len(data) > 0 {
		cmd.addr = uint64(uintptr(unsafe.Pointer(&data[0])))
		cmd.data_len = uint32(len(data))
	}
	if timeout > 0 {
		cmd.timeout_ms = uint32(timeout.Milliseconds())
	}
	// TODO: Replace with https://go-review.googlesource.com/c/sys/+/318210/ if accepted
	err := ioctl.Ioctl(n.fd, NVME_IOCTL_ADMIN_CMD, uintptr(unsafe.Pointer(cmd)))
	runtime.KeepAlive(data)
	return err
}

func (n *linuxNVMe) SecuritySend(proto uint8, sps uint16, data []byte, timeout time.Duration) error {
	return n.submit(&nvmePassthruCommand{
		opcode: NVME_SECURITY_SEND,
		cdw10:  nvmeSecurityCDW10(proto, sps),
		cdw11:  uint32(len(data)),
	}, data, timeout)
}

func (n *linuxNVMe) SecurityReceive(proto uint8, sps uint16, data []byte, timeout time.Duration) error {
	return n.submit(&nvmePassthruCommand{
		opcode: NVME_SECURITY_RECV,
		cdw10:  nvmeSecurityCDW10(proto, sps),
		cdw11:  uint32(len(data)),
	}, data, timeout)
}

func (n *linuxNVMe) IdentifyController(data []byte, timeout time.Duration) error {
	return n.submit(&nvmePassthruCommand{
		opcode: NVME_ADMIN_IDENTIFY,
		nsid:   0, // Namespace 0, since we are identifying the controller
		cdw10:  1, // Identify controller
	}, data, timeout)
}
