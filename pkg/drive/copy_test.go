// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package drive

import (
	"bytes"
	"errors"
	"testing"
	"unsafe"
)

func TestHardCopy(t *testing.T) {
	dst := []byte("OLDVALUE")
	HardCopy(dst, []byte("AB"))
	if want := []byte("AB\x00\x00\x00\x00\x00\x00"); !bytes.Equal(dst, want) {
		t.Errorf("Unexpected copy, got %q want %q", dst, want)
	}

	HardCopy(dst, make([]byte, 4))
	if want := []byte("AB\x00\x00\x00\x00\x00\x00"); !bytes.Equal(dst, want) {
		t.Errorf("All-zero source must not touch the destination, got %q", dst)
	}

	HardCopy(dst, []byte("0123456789"))
	if want := []byte("01234567"); !bytes.Equal(dst, want) {
		t.Errorf("Unexpected truncated copy, got %q want %q", dst, want)
	}

	HardCopyFill(dst, []byte("XY"), ' ')
	if want := []byte("XY      "); !bytes.Equal(dst, want) {
		t.Errorf("Unexpected filled copy, got %q want %q", dst, want)
	}
}

func TestSoftCopy(t *testing.T) {
	testCases := []struct {
		name string
		dst  string
		want string
	}{
		{"empty", "\x00\x00\x00\x00", "SRC\x00"},
		{"blank", "  \x00\x00", "SRC\x00"},
		{"occupied", "AB\x00\x00", "AB\x00\x00"},
		{"nul then text", "\x00A\x00\x00", "\x00A\x00\x00"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dst := []byte(tc.dst)
			SoftCopy(dst, []byte("SRC"))
			if string(dst) != tc.want {
				t.Errorf("Unexpected copy, got %q want %q", dst, tc.want)
			}
		})
	}
}

func TestReverseCString(t *testing.T) {
	b := []byte("ABCD\x00XY")
	reverseCString(b)
	if want := "DCBA\x00XY"; string(b) != want {
		t.Errorf("Unexpected reversal, got %q want %q", b, want)
	}
	b = []byte("ABC")
	reverseCString(b)
	if want := "CBA"; string(b) != want {
		t.Errorf("Unexpected reversal, got %q want %q", b, want)
	}
}

func TestAlignedBuffer(t *testing.T) {
	buf, err := NewAlignedBuffer(100)
	if err != nil {
		t.Fatalf("NewAlignedBuffer failed: %v", err)
	}
	defer buf.Release()
	if got := len(buf.Bytes()); got != 100 {
		t.Errorf("Unexpected length %d", got)
	}
	if addr := uintptr(unsafe.Pointer(&buf.Bytes()[0])); addr%IOBufferAlignment != 0 {
		t.Errorf("Buffer at %#x is not aligned", addr)
	}
	if !isZero(buf.Bytes()) {
		t.Errorf("Buffer must start zeroed")
	}
	if _, err := NewAlignedBuffer(-1); !errors.Is(err, ErrBufferAlloc) {
		t.Errorf("Expected ErrBufferAlloc for negative size, got %v", err)
	}
}
