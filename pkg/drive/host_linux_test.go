// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package drive

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
)

func TestLinuxHostCandidates(t *testing.T) {
	fs := afero.NewMemMapFs()
	for _, name := range []string{"sda", "sda1", "sdb", "nvme0", "nvme0n1", "nvme0n1p1", "null"} {
		if err := afero.WriteFile(fs, "/dev/"+name, nil, 0o600); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
	}
	host := NewHost(HostOptions{Fs: fs})
	refs, err := host.Candidates()
	if err != nil {
		t.Fatalf("Candidates failed: %v", err)
	}
	var matched []string
	for _, ref := range refs {
		if host.Match(ref) {
			matched = append(matched, ref)
		}
	}
	want := []string{"/dev/nvme0n1", "/dev/sda", "/dev/sdb"}
	if diff := cmp.Diff(want, matched); diff != "" {
		t.Errorf("Unexpected refs (-want +got):\n%s", diff)
	}
	if host.Ordered() {
		t.Errorf("Linux device listing is not presentation ordered")
	}
}

func TestLinuxHostCandidatesMissingDir(t *testing.T) {
	host := NewHost(HostOptions{Fs: afero.NewMemMapFs()})
	if _, err := host.Candidates(); err == nil {
		t.Errorf("Expected error when /dev cannot be listed")
	}
}
