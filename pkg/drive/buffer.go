// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package drive

import (
	"fmt"
	"unsafe"
)

const (
	// IOBufferAlignment satisfies O_DIRECT style DMA constraints on every host.
	IOBufferAlignment = 4096
	MinBufferLength   = 2048
)

// AlignedBuffer is a zeroed transfer buffer whose first byte sits on an
// IOBufferAlignment boundary.
type AlignedBuffer struct {
	raw []byte
	buf []byte
}

func NewAlignedBuffer(size int) (*AlignedBuffer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: invalid size %d", ErrBufferAlloc, size)
	}
	rounded := (size + IOBufferAlignment - 1) / IOBufferAlignment * IOBufferAlignment
	raw := make([]byte, rounded+IOBufferAlignment)
	off := 0
	if rem := int(uintptr(unsafe.Pointer(&raw[0])) % IOBufferAlignment); rem != 0 {
		off = IOBufferAlignment - rem
	}
	return &AlignedBuffer{raw: raw, buf: raw[off : off+size : off+rounded]}, nil
}

// Bytes returns the aligned region. It is nil after Release.
func (b *AlignedBuffer) Bytes() []byte {
	return b.buf
}

func (b *AlignedBuffer) Release() {
	b.raw = nil
	b.buf = nil
}
