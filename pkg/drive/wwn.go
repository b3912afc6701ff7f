// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package drive

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
)

// parseWWN decodes the 0x-prefixed NAA form udev and sysfs report.
func parseWWN(s string) ([WorldWideNameLength]byte, bool) {
	var wwn [WorldWideNameLength]byte
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "naa.")
	if len(s) < 2*WorldWideNameLength {
		return wwn, false
	}
	b, err := hex.DecodeString(s[:2*WorldWideNameLength])
	if err != nil || isZero(b) {
		return wwn, false
	}
	copy(wwn[:], b)
	return wwn, true
}

// synthesizeWWN fabricates a locally assigned NAA 3 name from model and
// serial when the device reported none.
func synthesizeWWN(info *DeviceInfo) {
	if info.HasWorldWideName() || info.Serial() == "" {
		return
	}
	sum := sha1.Sum([]byte(info.Model() + "\x00" + info.Serial()))
	copy(info.WorldWideName[:], sum[:WorldWideNameLength])
	info.WorldWideName[0] = 0x30 | info.WorldWideName[0]&0x0f
	info.WorldWideNameSynthetic = true
}
