// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hash

import (
	"bytes"
	"crypto/sha1"
	"crypto/sha512"

	"golang.org/x/crypto/pbkdf2"
)

// SaltLength is the width of a device password salt.
const SaltLength = 20

// Salt normalizes a device password salt the way sedutil sees the serial
// number: space padded to SaltLength, NUL padding replaced.
func Salt(salt []byte) []byte {
	s := bytes.TrimRight(salt, "\x00")
	if len(s) > SaltLength {
		s = s[:SaltLength]
	}
	out := bytes.Repeat([]byte{' '}, SaltLength)
	copy(out, s)
	return out
}

func HashSedutilDTA(password string, salt []byte) []byte {
	// This needs to match https://github.com/Drive-Trust-Alliance/sedutil/
	return pbkdf2.Key([]byte(password), Salt(salt), 75000, 32, sha1.New)
}

func HashSedutil512(password string, salt []byte) []byte {
	// This needs to match https://github.com/ChubbyAnt/sedutil/
	return pbkdf2.Key([]byte(password), Salt(salt), 500000, 32, sha512.New)
}
