// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package quirk maps a device's inquiry identity to probing workarounds.
package quirk

import (
	"bytes"
	"fmt"
	"strings"
)

const (
	VendorLength      = 8
	ProductLength     = 16
	RevisionLength    = 4
	FingerprintLength = VendorLength + ProductLength + RevisionLength
)

// Fingerprint is vendor, product and revision laid out as in a standard
// INQUIRY response.
type Fingerprint [FingerprintLength]byte

func NewFingerprint(vendor, product, revision []byte) Fingerprint {
	var fp Fingerprint
	copy(fp[:VendorLength], vendor)
	copy(fp[VendorLength:VendorLength+ProductLength], limit(product, ProductLength))
	copy(fp[VendorLength+ProductLength:], limit(revision, RevisionLength))
	return fp
}

func limit(b []byte, n int) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}

func trim(b []byte) string {
	return string(bytes.Trim(b, " \x00"))
}

func (f Fingerprint) Vendor() string   { return trim(f[:VendorLength]) }
func (f Fingerprint) Product() string  { return trim(f[VendorLength : VendorLength+ProductLength]) }
func (f Fingerprint) Revision() string { return trim(f[VendorLength+ProductLength:]) }

func (f Fingerprint) String() string {
	return fmt.Sprintf("%s/%s/%s", f.Vendor(), f.Product(), f.Revision())
}

type Flags struct {
	ReverseSerialNumber           bool
	AvoidSlowSATATimeout          bool
	AvoidSlowSASTimeout           bool
	AcceptPseudoDeviceImmediately bool
}

func (f Flags) Any() bool {
	return f.ReverseSerialNumber || f.AvoidSlowSATATimeout || f.AvoidSlowSASTimeout || f.AcceptPseudoDeviceImmediately
}

func (f Flags) union(o Flags) Flags {
	return Flags{
		ReverseSerialNumber:           f.ReverseSerialNumber || o.ReverseSerialNumber,
		AvoidSlowSATATimeout:          f.AvoidSlowSATATimeout || o.AvoidSlowSATATimeout,
		AvoidSlowSASTimeout:           f.AvoidSlowSASTimeout || o.AvoidSlowSASTimeout,
		AcceptPseudoDeviceImmediately: f.AcceptPseudoDeviceImmediately || o.AcceptPseudoDeviceImmediately,
	}
}

var flagNames = []struct {
	name string
	set  func(*Flags)
	get  func(Flags) bool
}{
	{"reverse-serial-number", func(f *Flags) { f.ReverseSerialNumber = true }, func(f Flags) bool { return f.ReverseSerialNumber }},
	{"avoid-slow-sata-timeout", func(f *Flags) { f.AvoidSlowSATATimeout = true }, func(f Flags) bool { return f.AvoidSlowSATATimeout }},
	{"avoid-slow-sas-timeout", func(f *Flags) { f.AvoidSlowSASTimeout = true }, func(f Flags) bool { return f.AvoidSlowSASTimeout }},
	{"accept-pseudo-device-immediately", func(f *Flags) { f.AcceptPseudoDeviceImmediately = true }, func(f Flags) bool { return f.AcceptPseudoDeviceImmediately }},
}

func (f Flags) String() string {
	var names []string
	for _, n := range flagNames {
		if n.get(f) {
			names = append(names, n.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ",")
}

// ParseFlags builds Flags from their kebab-case names.
func ParseFlags(names []string) (Flags, error) {
	var f Flags
next:
	for _, name := range names {
		for _, n := range flagNames {
			if n.name == name {
				n.set(&f)
				continue next
			}
		}
		return f, fmt.Errorf("unknown quirk %q", name)
	}
	return f, nil
}

// Entry matches a fingerprint when each non-empty field is a prefix of the
// corresponding trimmed fingerprint field.
type Entry struct {
	Vendor   string
	Product  string
	Revision string
	Flags    Flags
}

func (e Entry) matches(fp Fingerprint) bool {
	return strings.HasPrefix(fp.Vendor(), e.Vendor) &&
		strings.HasPrefix(fp.Product(), e.Product) &&
		strings.HasPrefix(fp.Revision(), e.Revision)
}

// Table is an immutable list of quirk entries. There are no built-in
// entries; every workaround comes from configuration.
type Table struct {
	entries []Entry
}

func NewTable(entries ...Entry) *Table {
	return &Table{entries: append([]Entry(nil), entries...)}
}

// Resolve returns the union of the flags of every matching entry.
func (t *Table) Resolve(fp Fingerprint) Flags {
	var f Flags
	if t == nil {
		return f
	}
	for _, e := range t.entries {
		if e.matches(fp) {
			f = f.union(e.Flags)
		}
	}
	return f
}
