// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package drive

import (
	"fmt"
	"path"
	"regexp"
	"unsafe"

	"github.com/dswarbrick/smart/ioctl"
	"github.com/spf13/afero"
	"golang.org/x/sys/unix"

	"github.com/open-source-firmware/go-tcg-drive/pkg/drive/sgio"
)

var linuxDevRef = regexp.MustCompile(`^/dev/(sd[a-z]|nvme[0-9]+n[0-9]+)$`)

type linuxHost struct {
	fs      afero.Fs
	devDir  string
	udevDir string
}

func NewHost(opts HostOptions) Host {
	opts = opts.withDefaults()
	return &linuxHost{fs: opts.Fs, devDir: "/dev", udevDir: "/run/udev/data"}
}

func (l *linuxHost) Name() string {
	return "linux"
}

func (l *linuxHost) Candidates() ([]string, error) {
	entries, err := afero.ReadDir(l.fs, l.devDir)
	if err != nil {
		return nil, err
	}
	refs := make([]string, 0, len(entries))
	for _, e := range entries {
		refs = append(refs, path.Join(l.devDir, e.Name()))
	}
	return refs, nil
}

func (l *linuxHost) Ordered() bool {
	return false
}

func (l *linuxHost) Match(ref string) bool {
	return linuxDevRef.MatchString(ref)
}

func (l *linuxHost) Open(ref string) (*Handle, error) {
	return OpenHandle(ref)
}

func (l *linuxHost) Introspect(h *Handle, info *DeviceInfo) (Properties, error) {
	var size uint64
	if err := ioctl.Ioctl(h.Fd(), unix.BLKGETSIZE64, uintptr(unsafe.Pointer(&size))); err != nil {
		return nil, fmt.Errorf("BLKGETSIZE64 on %s: %w", h.Ref(), err)
	}

	var st unix.Stat_t
	if err := unix.Fstat(int(h.Fd()), &st); err != nil {
		return nil, fmt.Errorf("stat %s: %w", h.Ref(), err)
	}
	rdev := uint64(st.Rdev) //nolint:unconvert
	record := path.Join(l.udevDir, fmt.Sprintf("b%d:%d", unix.Major(rdev), unix.Minor(rdev)))
	f, err := l.fs.Open(record)
	if err != nil {
		return nil, fmt.Errorf("udev record for %s: %w", h.Ref(), err)
	}
	defer f.Close()
	props, err := ParseUdevRecord(f)
	if err != nil {
		return nil, fmt.Errorf("udev record %s: %w", record, err)
	}

	info.DevSize = size
	applyUdevProperties(props, info)
	return props, nil
}

func (l *linuxHost) Executor(h *Handle) sgio.Executor {
	return sgio.NewExecutor(h.Fd())
}

func (l *linuxHost) NVMe(h *Handle) NVMeAdmin {
	return newNVMeAdmin(h.Fd())
}
