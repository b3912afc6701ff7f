// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package drive

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows"
)

type windowsHandleOps struct{}

func (windowsHandleOps) Close(fd uintptr) error {
	return windows.CloseHandle(windows.Handle(fd))
}

func (windowsHandleOps) Alive(fd uintptr) bool {
	_, err := windows.GetFileType(windows.Handle(fd))
	return !errors.Is(err, windows.ERROR_INVALID_HANDLE)
}

// OpenHandle opens ref for reading and writing.
func OpenHandle(ref string) (*Handle, error) {
	name, err := windows.UTF16PtrFromString(ref)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", ref, err)
	}
	h, err := windows.CreateFile(name,
		windows.GENERIC_READ|windows.GENERIC_WRITE,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE,
		nil, windows.OPEN_EXISTING, 0, 0)
	if err != nil {
		return nil, classifyOpenError(ref, err)
	}
	return NewHandle(ref, uintptr(h), windowsHandleOps{}), nil
}

func classifyOpenError(ref string, err error) error {
	switch {
	case errors.Is(err, windows.ERROR_ACCESS_DENIED):
		return fmt.Errorf("%w: %s", ErrAccessDenied, ref)
	case errors.Is(err, windows.ERROR_FILE_NOT_FOUND), errors.Is(err, windows.ERROR_PATH_NOT_FOUND):
		return fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	return fmt.Errorf("open %s: %w", ref, err)
}
