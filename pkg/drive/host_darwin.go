// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package drive

import (
	"context"
	"fmt"
	"os/exec"
	"path"
	"regexp"
	"time"

	"github.com/open-source-firmware/go-tcg-drive/pkg/drive/sgio"
)

var darwinDevRef = regexp.MustCompile(`^/dev/disk([0-9]|[1-9][0-9])$`)

// IORegistryRunner returns the XML plist of the block storage devices in the
// I/O registry.
type IORegistryRunner func(ctx context.Context) ([]byte, error)

func runIOReg(ctx context.Context) ([]byte, error) {
	return exec.CommandContext(ctx, "ioreg", "-a", "-r", "-c", "IOBlockStorageDevice").Output()
}

type darwinHost struct {
	maxDisks int
	ioreg    IORegistryRunner
}

func NewHost(opts HostOptions) Host {
	opts = opts.withDefaults()
	return &darwinHost{maxDisks: opts.MaxDisks, ioreg: runIOReg}
}

func (d *darwinHost) Name() string {
	return "darwin"
}

func (d *darwinHost) Candidates() ([]string, error) {
	refs := make([]string, 0, d.maxDisks)
	for i := 0; i < d.maxDisks; i++ {
		refs = append(refs, fmt.Sprintf("/dev/disk%d", i))
	}
	return refs, nil
}

func (d *darwinHost) Ordered() bool {
	return true
}

func (d *darwinHost) Match(ref string) bool {
	return darwinDevRef.MatchString(ref)
}

func (d *darwinHost) Open(ref string) (*Handle, error) {
	return OpenHandle(ref)
}

func (d *darwinHost) Introspect(h *Handle, info *DeviceInfo) (Properties, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	out, err := d.ioreg(ctx)
	if err != nil {
		return nil, fmt.Errorf("ioreg: %w", err)
	}
	devices, err := ParseIORegistry(out)
	if err != nil {
		return nil, err
	}
	device, media := FindMedia(devices, path.Base(h.Ref()))
	if device == nil {
		return nil, fmt.Errorf("%w: no I/O registry entry for %s", ErrNotFound, h.Ref())
	}
	return applyIORegistry(device, media, info), nil
}

func (d *darwinHost) Executor(h *Handle) sgio.Executor {
	return sgio.NewExecutor(h.Fd())
}

func (d *darwinHost) NVMe(h *Handle) NVMeAdmin {
	return newNVMeAdmin(h.Fd())
}
