// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package drive

import (
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/open-source-firmware/go-tcg-drive/pkg/drive/sgio"
)

// Properties are the raw host properties read for a device, keyed by the
// host's own property names.
type Properties map[string]string

func (p Properties) String() string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(k)
		sb.WriteString("=")
		sb.WriteString(p[k])
	}
	return sb.String()
}

// Host abstracts the device namespace and native property store of an
// operating system. Exactly one implementation is compiled in per OS.
type Host interface {
	Name() string
	// Candidates lists every reference in the host device namespace.
	Candidates() ([]string, error)
	// Ordered reports whether Candidates already returns presentation order.
	Ordered() bool
	// Match reports whether ref has the shape of a supported device
	// reference. It performs no I/O.
	Match(ref string) bool
	Open(ref string) (*Handle, error)
	// Introspect fills info from native host properties. It fails when not
	// even the minimal identity can be established.
	Introspect(h *Handle, info *DeviceInfo) (Properties, error)
	Executor(h *Handle) sgio.Executor
	// NVMe returns the native NVMe admin path for h, or nil when the host
	// has none.
	NVMe(h *Handle) NVMeAdmin
}

const DefaultMaxDisks = 64

// HostOptions tunes the host implementation returned by NewHost.
type HostOptions struct {
	// MaxDisks bounds the device numbers probed on hosts whose namespace is
	// synthesized rather than listed.
	MaxDisks int
	// Fs backs every file read made outside of device handles.
	Fs afero.Fs
}

func (o HostOptions) withDefaults() HostOptions {
	if o.MaxDisks <= 0 {
		o.MaxDisks = DefaultMaxDisks
	}
	if o.Fs == nil {
		o.Fs = afero.NewOsFs()
	}
	return o
}

// DefaultHost returns the host implementation of the running OS.
func DefaultHost() Host {
	return NewHost(HostOptions{})
}
