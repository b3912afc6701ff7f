// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package drive

import (
	"errors"
	"fmt"
	"sort"
)

// Enumeration is the outcome of listing a host's device namespace.
type Enumeration struct {
	Refs []string
	// AccessDenied is set when any candidate could not be opened for lack
	// of permission.
	AccessDenied bool
}

// IsDevRef reports whether ref is a supported device reference that can be
// opened read/write. denied is set when the open failed for lack of
// permission. Refs that do not match the host pattern cause no I/O.
func IsDevRef(host Host, ref string) (ok bool, denied bool) {
	if !host.Match(ref) {
		return false, false
	}
	h, err := host.Open(ref)
	if err != nil {
		return false, errors.Is(err, ErrAccessDenied)
	}
	h.Close()
	return true, false
}

// Enumerate lists the supported device references of host. It fails only
// when the namespace itself cannot be listed.
func Enumerate(host Host) (*Enumeration, error) {
	candidates, err := host.Candidates()
	if err != nil {
		return nil, fmt.Errorf("enumerate %s devices: %w", host.Name(), err)
	}
	e := &Enumeration{Refs: []string{}}
	seen := map[string]bool{}
	for _, ref := range candidates {
		if seen[ref] {
			continue
		}
		seen[ref] = true
		ok, denied := IsDevRef(host, ref)
		if denied {
			e.AccessDenied = true
		}
		if ok {
			e.Refs = append(e.Refs, ref)
		}
	}
	if !host.Ordered() {
		sort.Strings(e.Refs)
	}
	return e, nil
}
