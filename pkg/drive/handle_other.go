// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !linux && !darwin && !windows

package drive

func OpenHandle(ref string) (*Handle, error) {
	return nil, ErrNotSupported
}
