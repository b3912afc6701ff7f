// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package drive

import (
	"encoding/binary"
	"fmt"
	"regexp"
	"strconv"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/open-source-firmware/go-tcg-drive/pkg/drive/sgio"
)

const (
	IOCTL_STORAGE_QUERY_PROPERTY     = 0x2D1400
	IOCTL_DISK_GET_DRIVE_GEOMETRY_EX = 0x700A0

	storageDeviceProperty = 0
	propertyStandardQuery = 0

	// DISK_GEOMETRY precedes DiskSize in DISK_GEOMETRY_EX
	diskGeometryLength = 24
)

var windowsDevRef = regexp.MustCompile(`^\\\\\.\\PhysicalDrive[0-9]+$`)

// STORAGE_PROPERTY_QUERY
type storagePropertyQuery struct {
	PropertyID           uint32
	QueryType            uint32
	AdditionalParameters [1]byte
}

type windowsHost struct {
	maxDisks int
}

func NewHost(opts HostOptions) Host {
	opts = opts.withDefaults()
	return &windowsHost{maxDisks: opts.MaxDisks}
}

func (w *windowsHost) Name() string {
	return "windows"
}

func (w *windowsHost) Candidates() ([]string, error) {
	refs := make([]string, 0, w.maxDisks)
	for i := 0; i < w.maxDisks; i++ {
		refs = append(refs, fmt.Sprintf(`\\.\PhysicalDrive%d`, i))
	}
	return refs, nil
}

func (w *windowsHost) Ordered() bool {
	return true
}

func (w *windowsHost) Match(ref string) bool {
	return windowsDevRef.MatchString(ref)
}

func (w *windowsHost) Open(ref string) (*Handle, error) {
	return OpenHandle(ref)
}

func (w *windowsHost) Introspect(h *Handle, info *DeviceInfo) (Properties, error) {
	handle := windows.Handle(h.Fd())
	query := storagePropertyQuery{PropertyID: storageDeviceProperty, QueryType: propertyStandardQuery}
	buf := make([]byte, 1024)
	var returned uint32
	if err := windows.DeviceIoControl(handle, IOCTL_STORAGE_QUERY_PROPERTY,
		(*byte)(unsafe.Pointer(&query)), uint32(unsafe.Sizeof(query)),
		&buf[0], uint32(len(buf)), &returned, nil); err != nil {
		return nil, fmt.Errorf("IOCTL_STORAGE_QUERY_PROPERTY on %s: %w", h.Ref(), err)
	}
	d, err := ParseStorageDeviceDescriptor(buf[:returned])
	if err != nil {
		return nil, err
	}
	props := applyStorageDescriptor(d, info)

	geometry := make([]byte, 256)
	if err := windows.DeviceIoControl(handle, IOCTL_DISK_GET_DRIVE_GEOMETRY_EX,
		nil, 0, &geometry[0], uint32(len(geometry)), &returned, nil); err == nil && returned >= diskGeometryLength+8 {
		info.DevSize = binary.LittleEndian.Uint64(geometry[diskGeometryLength:])
		props["DiskSize"] = strconv.FormatUint(info.DevSize, 10)
	}
	return props, nil
}

func (w *windowsHost) Executor(h *Handle) sgio.Executor {
	return sgio.NewExecutor(h.Fd())
}

func (w *windowsHost) NVMe(h *Handle) NVMeAdmin {
	return newNVMeAdmin(h.Fd())
}
