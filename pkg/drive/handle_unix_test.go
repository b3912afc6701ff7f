// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build linux || darwin

package drive

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/sys/unix"
)

func tempDevice(t *testing.T) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "disk")
	if err != nil {
		t.Fatalf("CreateTemp failed: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	return f.Name()
}

func TestUnixHandleInvalidated(t *testing.T) {
	path := tempDevice(t)
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		t.Fatalf("open %s failed: %v", path, err)
	}
	h := NewHandle(path, uintptr(fd), unixHandleOps{})
	if !h.IsOpen() {
		t.Fatalf("Expected a freshly opened handle to be open")
	}

	if err := unix.Close(fd); err != nil {
		t.Fatalf("unix.Close failed: %v", err)
	}
	if h.IsOpen() {
		t.Errorf("Handle reported open after its descriptor was closed")
	}
	if got := h.State(); got != HandleClosed {
		t.Errorf("Unexpected state %s", got)
	}
	if err := h.Close(); err != nil {
		t.Errorf("Close of an invalidated handle failed: %v", err)
	}
	if err := h.Close(); err != nil {
		t.Errorf("Second close failed: %v", err)
	}
}

func TestOpenHandle(t *testing.T) {
	path := tempDevice(t)
	h, err := OpenHandle(path)
	if err != nil {
		t.Fatalf("OpenHandle failed: %v", err)
	}
	fd := h.Fd()
	if !h.IsOpen() || h.Ref() != path {
		t.Fatalf("Unexpected handle for %s", h.Ref())
	}
	if err := h.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := unix.FcntlInt(fd, unix.F_GETFL, 0); !errors.Is(err, unix.EBADF) {
		t.Errorf("Expected the descriptor to be released, got %v", err)
	}
	if err := h.Close(); err != nil {
		t.Errorf("Second close failed: %v", err)
	}

	_, err = OpenHandle(filepath.Join(t.TempDir(), "missing"))
	if got := HandleStateOf(nil, err); !errors.Is(err, ErrNotFound) || got != HandleClosed {
		t.Errorf("Unexpected result for a missing device: %v (%s)", err, got)
	}
}
