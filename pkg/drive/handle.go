// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package drive

import (
	"errors"
	"sync"
)

type HandleState int

const (
	HandleClosed HandleState = iota
	HandleOpen
	HandleAccessDenied
)

func (s HandleState) String() string {
	switch s {
	case HandleOpen:
		return "Open"
	case HandleAccessDenied:
		return "AccessDenied"
	}
	return "Closed"
}

// HandleOps is the host specific implementation behind a Handle.
type HandleOps interface {
	Close(fd uintptr) error
	// Alive reports false only when the host says the descriptor is invalid.
	Alive(fd uintptr) bool
}

// Handle is an opened read/write OS handle on a device reference. A Handle
// is owned by exactly one Device and is never shared.
type Handle struct {
	ref string
	fd  uintptr
	ops HandleOps

	mu     sync.Mutex
	closed bool
}

func NewHandle(ref string, fd uintptr, ops HandleOps) *Handle {
	return &Handle{ref: ref, fd: fd, ops: ops}
}

func (h *Handle) Ref() string {
	return h.ref
}

func (h *Handle) Fd() uintptr {
	return h.fd
}

// IsOpen asks the host whether the descriptor is still valid.
func (h *Handle) IsOpen() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return !h.closed && h.ops.Alive(h.fd)
}

// Close releases the OS handle. Closing twice, or closing a handle the
// host already invalidated, is a no-op.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	// already invalidated by the host
	if !h.ops.Alive(h.fd) {
		return nil
	}
	return h.ops.Close(h.fd)
}

func (h *Handle) State() HandleState {
	if h.IsOpen() {
		return HandleOpen
	}
	return HandleClosed
}

// HandleStateOf classifies the outcome of an open call.
func HandleStateOf(h *Handle, err error) HandleState {
	switch {
	case errors.Is(err, ErrAccessDenied):
		return HandleAccessDenied
	case err != nil || h == nil:
		return HandleClosed
	}
	return h.State()
}
