// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !linux && !darwin && !windows

package drive

import (
	"github.com/open-source-firmware/go-tcg-drive/pkg/drive/sgio"
)

type unsupportedHost struct{}

func NewHost(opts HostOptions) Host {
	return unsupportedHost{}
}

func (unsupportedHost) Name() string                  { return "unsupported" }
func (unsupportedHost) Candidates() ([]string, error) { return nil, ErrNotSupported }
func (unsupportedHost) Ordered() bool                 { return true }
func (unsupportedHost) Match(ref string) bool         { return false }

func (unsupportedHost) Open(ref string) (*Handle, error) {
	return nil, ErrNotSupported
}

func (unsupportedHost) Introspect(h *Handle, info *DeviceInfo) (Properties, error) {
	return nil, ErrNotSupported
}

func (unsupportedHost) Executor(h *Handle) sgio.Executor {
	return sgio.NewExecutor(h.Fd())
}

func (unsupportedHost) NVMe(h *Handle) NVMeAdmin {
	return nil
}
