// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package drive

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// ParseUdevRecord reads the E: property lines of a udev database record
// (/run/udev/data/b<major>:<minor>).
func ParseUdevRecord(r io.Reader) (Properties, error) {
	props := Properties{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "E:") {
			continue
		}
		k, v, ok := strings.Cut(line[2:], "=")
		if !ok || k == "" {
			continue
		}
		props[k] = v
	}
	return props, scanner.Err()
}

// udevDevType maps the udev bus properties of a block device.
func udevDevType(props Properties) DevType {
	uas := props["ID_USB_DRIVER"] == "uas"
	switch props["ID_BUS"] {
	case "scsi":
		return DevTypeSCSI
	case "usb":
		if uas {
			return DevTypeSAS
		}
		// sedutil leaves plain usb-storage as OTHER; USB gets the SATA then SCSI attempts instead
		return DevTypeUSB
	case "ata":
		if uas {
			return DevTypeSATA
		}
		return DevTypeATA
	case "nvme":
		return DevTypeNVMe
	}
	return DevTypeOther
}

// applyUdevProperties copies udev identity properties into info.
func applyUdevProperties(props Properties, info *DeviceInfo) {
	for _, p := range []struct {
		key string
		dst []byte
	}{
		{"ID_SERIAL_SHORT", info.SerialNum[:]},
		{"ID_MODEL", info.ModelNum[:]},
		{"ID_REVISION", info.FirmwareRev[:]},
		{"ID_VENDOR", info.VendorID[:]},
		{"ID_VENDOR_FROM_DATABASE", info.ManufacturerName[:]},
		{"ID_BUS", info.PhysicalInterconnect[:]},
	} {
		if v, ok := props[p.key]; ok {
			HardCopy(p.dst, []byte(v))
		}
	}
	// ID_MODEL and ID_VENDOR have spaces replaced by underscores
	for _, p := range []struct {
		key string
		dst []byte
	}{
		{"ID_MODEL_ENC", info.ModelNum[:]},
		{"ID_VENDOR_ENC", info.VendorID[:]},
	} {
		if v, ok := props[p.key]; ok {
			HardCopy(p.dst, []byte(decodeUdevEnc(v)))
		}
	}
	if wwn, ok := parseWWN(props["ID_WWN"]); ok {
		info.WorldWideName = wwn
		info.WorldWideNameSynthetic = false
	}
	info.DevType = udevDevType(props)
}

// decodeUdevEnc undoes the \xHH escaping of udev *_ENC properties and drops
// the trailing padding.
func decodeUdevEnc(v string) string {
	var b strings.Builder
	for i := 0; i < len(v); i++ {
		if v[i] == '\\' && i+3 < len(v) && v[i+1] == 'x' {
			if c, err := strconv.ParseUint(v[i+2:i+4], 16, 8); err == nil {
				b.WriteByte(byte(c))
				i += 3
				continue
			}
		}
		b.WriteByte(v[i])
	}
	return strings.TrimRight(b.String(), " ")
}
