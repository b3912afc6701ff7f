// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package drive

func isZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}

// HardCopy overwrites all of dst with src, NUL padded. An all-zero src leaves
// dst untouched.
func HardCopy(dst, src []byte) {
	HardCopyFill(dst, src, 0)
}

// HardCopyFill is HardCopy with an explicit pad byte.
func HardCopyFill(dst, src []byte, fill byte) {
	if isZero(src) {
		return
	}
	n := copy(dst, src)
	for i := n; i < len(dst); i++ {
		dst[i] = fill
	}
}

// SoftCopy is HardCopy restricted to destinations that hold nothing but
// leading blanks followed by NULs.
func SoftCopy(dst, src []byte) {
	if isZero(src) || !isBlank(dst) {
		return
	}
	HardCopy(dst, src)
}

func isBlank(b []byte) bool {
	i := 0
	for i < len(b) && b[i] == ' ' {
		i++
	}
	return isZero(b[i:])
}

// reverseCString reverses b up to its first NUL in place.
func reverseCString(b []byte) {
	n := 0
	for n < len(b) && b[n] != 0 {
		n++
	}
	for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}
