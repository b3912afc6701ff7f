// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scan

import (
	"bytes"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/open-source-firmware/go-tcg-drive/pkg/core"
	"github.com/open-source-firmware/go-tcg-drive/pkg/drive"
)

// Entry is one identified device of a scan.
type Entry struct {
	Ref     string
	Info    drive.DeviceInfo
	Variant drive.Variant
	// Nil for devices kept without a successful Level 0 discovery.
	Level0 *core.Level0Discovery
}

type Report struct {
	// Refs are all enumerated device references, identified or not.
	Refs         []string
	Entries      []Entry
	AccessDenied bool
}

// Scan enumerates the host of f and identifies every reference. Devices
// that cannot be identified are left out of Entries. When any reference
// was denied the scan stops before identification and the returned error
// wraps drive.ErrAccessDenied.
func Scan(f *drive.Factory, log logrus.FieldLogger) (*Report, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	e, err := drive.Enumerate(f.Host)
	if err != nil {
		return nil, err
	}
	r := &Report{Refs: e.Refs, AccessDenied: e.AccessDenied}
	if e.AccessDenied {
		log.Error("You do not have permission to access the raw device(s) in write mode")
		log.Warn("Perhaps you might try to run as administrator")
		return r, fmt.Errorf("scan %s devices: %w", f.Host.Name(), drive.ErrAccessDenied)
	}

	for _, ref := range e.Refs {
		c, err := core.NewCore(ref, core.WithFactory(f), core.WithGenericIfNotTPer(), core.WithLogger(log))
		if err != nil {
			log.WithField("device", ref).Debugf("Skipping: %v", err)
			continue
		}
		r.Entries = append(r.Entries, Entry{
			Ref:     ref,
			Info:    c.Info,
			Variant: c.Variant(),
			Level0:  c.Level0Discovery,
		})
		c.Close()
	}
	return r, nil
}

// TypeCode is the five character device type column of the scan table.
func TypeCode(t drive.DevType) string {
	switch t {
	case drive.DevTypeATA, drive.DevTypeSATA:
		return "ATA"
	case drive.DevTypeSAS, drive.DevTypeSCSI:
		return "SAS"
	case drive.DevTypeNVMe:
		return "NVME"
	case drive.DevTypeUSB:
		return "USB"
	case drive.DevTypeOther:
		return "OTHER"
	}
	return "UNKWN"
}

// cString returns b up to its first NUL.
func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

// SSCFeatures names the security subsystem classes reported in l0.
func SSCFeatures(l0 *core.Level0Discovery) []string {
	feat := []string{}
	if l0 == nil {
		return feat
	}
	if l0.Enterprise != nil {
		feat = append(feat, "Enterprise")
	}
	if l0.OpalV1 != nil {
		feat = append(feat, "Opal 1")
	}
	if l0.OpalV2 != nil {
		feat = append(feat, "Opal 2")
	}
	if l0.Opalite != nil {
		feat = append(feat, "Opalite")
	}
	if l0.PyriteV1 != nil {
		feat = append(feat, "Pyrite 1")
	}
	if l0.PyriteV2 != nil {
		feat = append(feat, "Pyrite 2")
	}
	if l0.RubyV1 != nil {
		feat = append(feat, "Ruby 1")
	}
	return feat
}

// LockingState renders the locking flags of l0 as a short state string.
func LockingState(l0 *core.Level0Discovery) string {
	if l0 == nil {
		return "-"
	}
	state := ""
	if l := l0.Locking; l != nil {
		if l.LockingEnabled {
			state += "L"
		} else if l.LockingSupported {
			state += "l"
		}
		if l.MBREnabled {
			if l.MBRDone {
				state += "m"
			} else {
				state += "M"
			}
		}
		if l.MediaEncryption {
			state += "E"
		}
	}
	if b := l0.BlockSID; b != nil {
		if !b.SIDValueState {
			state += "P"
		}
		if b.SIDAuthenticationBlockedState {
			state += "!"
		}
	}
	return state
}
