// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build linux || darwin

package drive

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

type unixHandleOps struct{}

func (unixHandleOps) Close(fd uintptr) error {
	return unix.Close(int(fd))
}

func (unixHandleOps) Alive(fd uintptr) bool {
	_, err := unix.FcntlInt(fd, unix.F_GETFL, 0)
	return !errors.Is(err, unix.EBADF)
}

// OpenHandle opens ref for reading and writing.
func OpenHandle(ref string) (*Handle, error) {
	fd, err := unix.Open(ref, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, classifyOpenError(ref, err)
	}
	return NewHandle(ref, uintptr(fd), unixHandleOps{}), nil
}

func classifyOpenError(ref string, err error) error {
	switch {
	case errors.Is(err, unix.EACCES), errors.Is(err, unix.EPERM), errors.Is(err, unix.EROFS):
		return fmt.Errorf("%w: %s", ErrAccessDenied, ref)
	case errors.Is(err, unix.ENOENT), errors.Is(err, unix.ENXIO), errors.Is(err, unix.ENODEV):
		return fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	return fmt.Errorf("open %s: %w", ref, err)
}
