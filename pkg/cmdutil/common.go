// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmdutil

import (
	"fmt"

	"github.com/open-source-firmware/go-tcg-drive/pkg/core/hash"
	"github.com/open-source-firmware/go-tcg-drive/pkg/drive"
)

type PasswordEmbed struct {
	Password string `required:"" env:"PASS" type:"password" help:"Authentication password"`
	Hash     string `optional:"" env:"HASH" default:"dta" enum:"sedutil-dta,sedutil-sha512,dta,sha1,sha512" help:"Use dta (sha1) or sha512 for password hashing"`
}

// GenerateHash hashes the password with the salt recorded for the device.
func (t *PasswordEmbed) GenerateHash(info *drive.DeviceInfo) ([]byte, error) {
	salt := info.PasswordSalt[:]
	if isBlank(salt) {
		return nil, fmt.Errorf("device %s reported no serial number to salt the password with", info.Model())
	}

	switch t.Hash {
	// Drive-Trust-Alliance uses sha1
	case "sedutil-dta", "sha1", "dta":
		return hash.HashSedutilDTA(t.Password, salt), nil
	// ChubbyAnt uses sha512
	case "sedutil-sha512", "sha512":
		return hash.HashSedutil512(t.Password, salt), nil
	default:
		return nil, fmt.Errorf("unknown hash method %q", t.Hash)
	}
}

func isBlank(b []byte) bool {
	for _, c := range b {
		if c != 0 && c != ' ' {
			return false
		}
	}
	return true
}
